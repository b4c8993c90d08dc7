// Package recurrence expands installment plans and recurring templates into
// concrete dated transactions.
package recurrence

import (
	"fmt"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/cardledger/cardledger/internal/billing"
	"github.com/cardledger/cardledger/internal/model"
)

// Default instance counts for recurring templates.
const (
	DefaultBoundedCount  = 12
	DefaultInfiniteCount = 24
)

// Horizon bounds how many instances a recurring template produces.
type Horizon struct {
	Bounded  int // recurrence.Infinite == false
	Infinite int // recurrence.Infinite == true
}

// DefaultHorizon returns 12 bounded and 24 infinite instances.
func DefaultHorizon() Horizon {
	return Horizon{Bounded: DefaultBoundedCount, Infinite: DefaultInfiniteCount}
}

// Expand turns a template into its instances. Installment plans take
// precedence over recurrence. card is the template's card for credit
// templates and may be nil when the card is unknown.
//
// Instances are returned without IDs; the caller assigns them.
func Expand(tmpl model.Transaction, card *model.CreditCard, h Horizon) []model.Transaction {
	if tmpl.Installments != nil && tmpl.Installments.Total > 1 {
		return expandInstallments(tmpl)
	}
	return expandRecurring(tmpl, card, h)
}

// SplitAmount divides amount into n parts truncated to cents. The last part
// absorbs the remainder so the parts always sum to amount.
func SplitAmount(amount decimal.Decimal, n int) []decimal.Decimal {
	if n < 1 {
		return nil
	}
	parts := make([]decimal.Decimal, n)
	share := amount.Div(decimal.NewFromInt(int64(n))).Truncate(2)
	rest := amount
	for i := 0; i < n-1; i++ {
		parts[i] = share
		rest = rest.Sub(share)
	}
	parts[n-1] = rest
	return parts
}

func expandInstallments(tmpl model.Transaction) []model.Transaction {
	total := tmpl.Installments.Total
	amounts := SplitAmount(tmpl.Amount, total)

	out := make([]model.Transaction, total)
	for i := 0; i < total; i++ {
		inst := instance(tmpl)
		inst.Amount = amounts[i]
		inst.Date = billing.ShiftMonths(tmpl.Date, i)
		inst.Installments = &model.Installments{Current: i + 1, Total: total}
		inst.Description = fmt.Sprintf("%s (%d/%d)", tmpl.Description, i+1, total)
		out[i] = inst
	}
	return out
}

func expandRecurring(tmpl model.Transaction, card *model.CreditCard, h Horizon) []model.Transaction {
	rec := recurrenceOf(tmpl)
	count := h.Bounded
	if rec.Infinite {
		count = h.Infinite
	}
	day := rec.Day
	if day == 0 {
		day = tmpl.Date.Day
	}

	out := make([]model.Transaction, 0, count)
	for i := 0; i < count; i++ {
		y, m := billing.AddMonths(tmpl.Date.Year, tmpl.Date.Month, i)
		date := billing.DayIn(y, m, day)
		if tmpl.IsCredit() && card != nil {
			date = invoiceDate(date, card)
		}

		inst := instance(tmpl)
		inst.Date = date
		if i > 0 {
			inst.State = inst.State.Unsettled()
		}
		out = append(out, inst)
	}
	return out
}

// invoiceDate moves a recurring credit charge onto the card's due day,
// one month later when the charge lands on or after the closing day.
func invoiceDate(date civil.Date, card *model.CreditCard) civil.Date {
	y, m := date.Year, date.Month
	if !date.Before(billing.DayIn(y, m, card.ClosingDay)) {
		y, m = billing.AddMonths(y, m, 1)
	}
	return billing.DayIn(y, m, card.DueDay)
}

// recurrenceOf returns the template's recurrence, or the default for
// fixed and subscription templates saved without one.
func recurrenceOf(tmpl model.Transaction) model.Recurrence {
	if tmpl.Recurrence != nil {
		return *tmpl.Recurrence
	}
	return model.Recurrence{
		Frequency: model.FrequencyMonthly,
		Infinite:  tmpl.SubType == model.SubTypeSubscription,
	}
}

func instance(tmpl model.Transaction) model.Transaction {
	inst := tmpl.Clone()
	inst.ID = ""
	inst.Recurrence = nil
	inst.Installments = nil
	return inst
}
