package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/brenpaiva/ecommerce-store/internal/reporting"
)

// GET /admin
func AdminSummary(c *gin.Context) {
	s, err := reporting.Summarize(conn(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"qtde_pedidos":  s.Orders,
		"faturamento":   s.Revenue.StringFixed(2),
		"qtde_produtos": s.Units,
	})
}

// GET /admin/export/:report
func ExportReport(c *gin.Context) {
	name := c.Param("report")
	if reporting.Canonical(name) == "" {
		fail(c, fmt.Errorf("%w: %q", reporting.ErrUnknownReport, name))
		return
	}

	var buf bytes.Buffer
	if err := reporting.Export(conn(c), name, &buf); err != nil {
		fail(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", reporting.Filename(name, time.Now())))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}
