// Package reporting backs the staff area: the sales summary and CSV exports.
package reporting

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/brenpaiva/ecommerce-store/internal/cart"
	"github.com/brenpaiva/ecommerce-store/internal/models"
)

var ErrUnknownReport = errors.New("reporting: unknown report")

type Summary struct {
	Orders  int             `json:"qtde_pedidos"`
	Revenue decimal.Decimal `json:"faturamento"`
	Units   int             `json:"qtde_produtos"`
}

// Summarize totals every finalized order.
func Summarize(tx *gorm.DB) (*Summary, error) {
	var orders []models.Order
	if err := cart.Preload(tx).Where("finalized = ?", true).Find(&orders).Error; err != nil {
		return nil, err
	}

	s := &Summary{Revenue: decimal.Zero}
	for _, o := range orders {
		s.Orders++
		s.Revenue = s.Revenue.Add(o.Total())
		s.Units += o.Quantity()
	}
	return s, nil
}

type orderRow struct {
	ID              uint   `csv:"id"`
	CustomerID      uint   `csv:"cliente_id"`
	Status          string `csv:"status"`
	Finalized       bool   `csv:"finalizado"`
	TransactionCode string `csv:"codigo_transacao"`
	AddressID       string `csv:"endereco_id"`
	CreatedAt       string `csv:"criado_em"`
	FinalizedAt     string `csv:"data_finalizacao"`
	Quantity        int    `csv:"quantidade_total"`
	Total           string `csv:"preco_total"`
}

type customerRow struct {
	ID     uint   `csv:"id"`
	Name   string `csv:"nome"`
	Email  string `csv:"email"`
	Phone  string `csv:"telefone"`
	UserID string `csv:"usuario_id"`
}

type addressRow struct {
	ID         uint   `csv:"id"`
	CustomerID uint   `csv:"cliente_id"`
	Street     string `csv:"rua"`
	Number     int    `csv:"numero"`
	Complement string `csv:"complemento"`
	PostalCode string `csv:"cep"`
	City       string `csv:"cidade"`
	State      string `csv:"estado"`
}

type report func(tx *gorm.DB, w io.Writer) error

var reports = map[string]report{
	"orders":    exportOrders,
	"customers": exportCustomers,
	"addresses": exportAddresses,
}

// Portuguese report names used by older back-office links.
var aliases = map[string]string{
	"pedido":   "orders",
	"cliente":  "customers",
	"endereco": "addresses",
}

// Canonical returns the report's canonical name, or "" when unknown.
func Canonical(name string) string {
	if alias, ok := aliases[name]; ok {
		name = alias
	}
	if _, ok := reports[name]; !ok {
		return ""
	}
	return name
}

// Filename is the attachment name for a report exported at t.
func Filename(name string, t time.Time) string {
	return fmt.Sprintf("%s-%s.csv", Canonical(name), t.Format("20060102-150405"))
}

// Export writes every row of the named report as CSV with a header line.
func Export(tx *gorm.DB, name string, w io.Writer) error {
	canonical := Canonical(name)
	if canonical == "" {
		return fmt.Errorf("%w: %q", ErrUnknownReport, name)
	}
	return reports[canonical](tx, w)
}

func exportOrders(tx *gorm.DB, w io.Writer) error {
	var orders []models.Order
	if err := cart.Preload(tx).Where("finalized = ?", true).Order("id").Find(&orders).Error; err != nil {
		return err
	}
	rows := make([]*orderRow, 0, len(orders))
	for _, o := range orders {
		row := &orderRow{
			ID:              o.ID,
			CustomerID:      o.CustomerID,
			Status:          string(o.Status),
			Finalized:       o.Finalized,
			TransactionCode: o.TransactionCode,
			AddressID:       optionalID(o.AddressID),
			CreatedAt:       o.CreatedAt.UTC().Format(time.RFC3339),
			Quantity:        o.Quantity(),
			Total:           o.Total().StringFixed(2),
		}
		if o.FinalizedAt != nil {
			row.FinalizedAt = o.FinalizedAt.UTC().Format(time.RFC3339)
		}
		rows = append(rows, row)
	}
	return gocsv.Marshal(rows, w)
}

func exportCustomers(tx *gorm.DB, w io.Writer) error {
	var customers []models.Customer
	if err := tx.Order("id").Find(&customers).Error; err != nil {
		return err
	}
	rows := make([]*customerRow, 0, len(customers))
	for _, c := range customers {
		rows = append(rows, &customerRow{ID: c.ID, Name: c.Name, Email: c.Email, Phone: c.Phone, UserID: optionalID(c.UserID)})
	}
	return gocsv.Marshal(rows, w)
}

func exportAddresses(tx *gorm.DB, w io.Writer) error {
	var addresses []models.Address
	if err := tx.Order("id").Find(&addresses).Error; err != nil {
		return err
	}
	rows := make([]*addressRow, 0, len(addresses))
	for _, a := range addresses {
		rows = append(rows, &addressRow{
			ID:         a.ID,
			CustomerID: a.CustomerID,
			Street:     a.Street,
			Number:     a.Number,
			Complement: a.Complement,
			PostalCode: a.PostalCode,
			City:       a.City,
			State:      a.State,
		})
	}
	return gocsv.Marshal(rows, w)
}

func optionalID(id *uint) string {
	if id == nil {
		return ""
	}
	return strconv.FormatUint(uint64(*id), 10)
}
