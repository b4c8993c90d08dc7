package ledger

import (
	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/cardledger/cardledger/internal/model"
)

// Validate decides whether candidate can be committed against the current
// ledger. Pending candidates are never checked. accounts must already reflect
// the reversal of the instance being replaced when excludeID is set.
//
// The returned error is an InsufficientBalanceError or an
// InsufficientCreditLimitError.
func Validate(candidate model.Transaction, txns []model.Transaction, cards []model.CreditCard, accounts []model.Account, excludeID string, today civil.Date) error {
	if candidate.State == model.StatePending {
		return nil
	}

	if !candidate.IsCredit() && candidate.AccountID != "" && candidate.Type == model.TypeExpense {
		if acct, ok := findAccount(accounts, candidate.AccountID); ok {
			if acct.Balance.LessThan(candidate.Amount) {
				return InsufficientBalanceError{
					AccountID: acct.ID,
					Available: acct.Balance,
					Requested: candidate.Amount,
				}
			}
		}
	}

	if candidate.IsCredit() && candidate.CardID != "" {
		if card, ok := findCard(cards, candidate.CardID); ok {
			available := card.Limit.Sub(UsedLimit(card.ID, txns, excludeID, today))
			if available.LessThan(candidate.Amount) {
				return InsufficientCreditLimitError{
					CardID:    card.ID,
					Available: available,
					Requested: candidate.Amount,
				}
			}
		}
	}

	return nil
}

// UsedLimit sums the card's unsettled expenses, skipping excludeID and
// subscription charges dated in a month after today's.
func UsedLimit(cardID string, txns []model.Transaction, excludeID string, today civil.Date) decimal.Decimal {
	used := decimal.Zero
	for _, t := range txns {
		if t.CardID != cardID || t.Type != model.TypeExpense || t.IsPaid() {
			continue
		}
		if excludeID != "" && t.ID == excludeID {
			continue
		}
		if t.SubType == model.SubTypeSubscription && inLaterMonth(t.Date, today) {
			continue
		}
		used = used.Add(t.Amount)
	}
	return used
}

func inLaterMonth(d, today civil.Date) bool {
	if d.Year != today.Year {
		return d.Year > today.Year
	}
	return d.Month > today.Month
}

func findAccount(accounts []model.Account, id string) (model.Account, bool) {
	for _, a := range accounts {
		if a.ID == id {
			return a, true
		}
	}
	return model.Account{}, false
}

func findCard(cards []model.CreditCard, id string) (model.CreditCard, bool) {
	for _, c := range cards {
		if c.ID == id {
			return c, true
		}
	}
	return model.CreditCard{}, false
}
