package model

import "github.com/shopspring/decimal"

// CreditCard is a card whose purchases are grouped into monthly invoices.
type CreditCard struct {
	ID         string
	Name       string
	Limit      decimal.Decimal
	ClosingDay int // 1-31, statement closes
	DueDay     int // 1-31, payment due
	Color      string
	Context    Context
	BankID     string // branding only
}
