package model

import (
	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

// Goal accumulates the amounts of transactions that reference it.
type Goal struct {
	ID            string
	Name          string
	TargetAmount  decimal.Decimal
	CurrentAmount decimal.Decimal
	Deadline      civil.Date // zero = no deadline
	Context       Context
}

// Progress returns CurrentAmount / TargetAmount, or zero for an empty target.
func (g Goal) Progress() decimal.Decimal {
	if !g.TargetAmount.IsPositive() {
		return decimal.Zero
	}
	return g.CurrentAmount.Div(g.TargetAmount)
}
