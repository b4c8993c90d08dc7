// Package summary builds the month overview shown on the dashboard.
package summary

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/cardledger/cardledger/internal/invoice"
	"github.com/cardledger/cardledger/internal/model"
)

// Overview totals one month of one context.
type Overview struct {
	Context  model.Context
	Year     int
	Month    time.Month
	Income   decimal.Decimal
	Expenses decimal.Decimal // non-credit expenses by date plus card invoices due this month
	Net      decimal.Decimal
	Balance  decimal.Decimal // sum of account balances
	Invoices []invoice.Statement
}

// Month computes the overview. Credit purchases count on their invoice's
// due month rather than their purchase date.
func Month(snap model.Snapshot, ctx model.Context, year int, month time.Month) Overview {
	o := Overview{
		Context:  ctx,
		Year:     year,
		Month:    month,
		Income:   decimal.Zero,
		Expenses: decimal.Zero,
		Balance:  decimal.Zero,
	}

	for _, t := range snap.Transactions {
		if t.Context != ctx || t.Date.Year != year || t.Date.Month != month {
			continue
		}
		switch {
		case t.Type == model.TypeIncome:
			o.Income = o.Income.Add(t.Amount)
		case !t.IsCredit():
			o.Expenses = o.Expenses.Add(t.Amount)
		}
	}

	o.Invoices = invoice.DueIn(snap.Cards, ctx, year, month, snap.Transactions)
	for _, s := range o.Invoices {
		o.Expenses = o.Expenses.Add(s.Total)
	}

	for _, a := range snap.Accounts {
		if a.Context == ctx {
			o.Balance = o.Balance.Add(a.Balance)
		}
	}

	o.Net = o.Income.Sub(o.Expenses)
	return o
}
