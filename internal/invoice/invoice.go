// Package invoice computes credit-card statements from the transaction
// ledger. Every view that shows invoice totals goes through this package.
package invoice

import (
	"sort"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/cardledger/cardledger/internal/billing"
	"github.com/cardledger/cardledger/internal/model"
)

// Statement is one card invoice: the purchases billed on a due date.
type Statement struct {
	CardID       string
	DueDate      civil.Date
	Period       billing.Period
	Transactions []model.Transaction
	Total        decimal.Decimal
	Outstanding  decimal.Decimal // charged expenses not yet settled; pending ones are planned only
}

// IsPaid reports whether nothing in the statement remains unsettled.
func (s Statement) IsPaid() bool {
	return s.Outstanding.IsZero()
}

// CycleOf returns the billing cycle of card.
func CycleOf(card model.CreditCard) billing.Cycle {
	return billing.Cycle{ClosingDay: card.ClosingDay, DueDay: card.DueDay}
}

// DueDate normalizes any date in the due month to the card's actual due date.
func DueDate(card model.CreditCard, dueMonth civil.Date) civil.Date {
	return billing.DayIn(dueMonth.Year, dueMonth.Month, card.DueDay)
}

// PeriodTransactions returns the card's expenses dated inside the period
// billed on the invoice due in dueDate's month, ordered by date.
func PeriodTransactions(card model.CreditCard, dueDate civil.Date, ledger []model.Transaction) []model.Transaction {
	period := CycleOf(card).InvoicePeriod(dueDate)

	var out []model.Transaction
	for _, t := range ledger {
		if t.CardID != card.ID || t.Type != model.TypeExpense {
			continue
		}
		if !period.Contains(t.Date) {
			continue
		}
		out = append(out, t.Clone())
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})
	return out
}

// Total sums the invoice due in dueDate's month.
func Total(card model.CreditCard, dueDate civil.Date, ledger []model.Transaction) decimal.Decimal {
	return sum(PeriodTransactions(card, dueDate, ledger))
}

// Build assembles the full statement due in dueDate's month.
func Build(card model.CreditCard, dueDate civil.Date, ledger []model.Transaction) Statement {
	txns := PeriodTransactions(card, dueDate, ledger)
	outstanding := decimal.Zero
	for _, t := range txns {
		if t.State == model.StateCharged {
			outstanding = outstanding.Add(t.Amount)
		}
	}
	return Statement{
		CardID:       card.ID,
		DueDate:      DueDate(card, dueDate),
		Period:       CycleOf(card).InvoicePeriod(dueDate),
		Transactions: txns,
		Total:        sum(txns),
		Outstanding:  outstanding,
	}
}

// Current returns the statement that a purchase made today would land on.
func Current(card model.CreditCard, today civil.Date, ledger []model.Transaction) Statement {
	return Build(card, CycleOf(card).DueDateFor(today), ledger)
}

// DueIn returns the statements of every card in ctx that fall due in the
// given month, in card order. Used by the calendar view.
func DueIn(cards []model.CreditCard, ctx model.Context, year int, month time.Month, ledger []model.Transaction) []Statement {
	due := civil.Date{Year: year, Month: month, Day: 1}
	var out []Statement
	for _, c := range cards {
		if c.Context != ctx {
			continue
		}
		out = append(out, Build(c, due, ledger))
	}
	return out
}

func sum(txns []model.Transaction) decimal.Decimal {
	total := decimal.Zero
	for _, t := range txns {
		total = total.Add(t.Amount)
	}
	return total
}
