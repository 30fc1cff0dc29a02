package models

// All lists every model in migration order.
func All() []interface{} {
	return []interface{}{
		&Group{},
		&User{},
		&Customer{},
		&Category{},
		&Type{},
		&Color{},
		&Product{},
		&StockItem{},
		&Address{},
		&Order{},
		&OrderLine{},
		&Payment{},
		&Banner{},
		&OutboxEvent{},
	}
}
