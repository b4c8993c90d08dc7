package model

import "github.com/shopspring/decimal"

// Account is a bank account whose balance moves with settled transactions.
type Account struct {
	ID             string
	Name           string
	BankID         string
	InitialBalance decimal.Decimal
	Balance        decimal.Decimal
	IsFavorite     bool
	Context        Context
}
