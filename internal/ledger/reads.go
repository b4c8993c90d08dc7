package ledger

import (
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/cardledger/cardledger/internal/invoice"
	"github.com/cardledger/cardledger/internal/model"
	"github.com/cardledger/cardledger/internal/summary"
)

// Filter selects transactions. Empty fields match everything; From and To
// are inclusive and ignored when zero.
type Filter struct {
	Context   model.Context
	CardID    string
	AccountID string
	GoalID    string
	From      civil.Date
	To        civil.Date
}

func (f Filter) match(t model.Transaction) bool {
	switch {
	case f.Context != "" && t.Context != f.Context:
		return false
	case f.CardID != "" && t.CardID != f.CardID:
		return false
	case f.AccountID != "" && t.AccountID != f.AccountID:
		return false
	case f.GoalID != "" && t.GoalID != f.GoalID:
		return false
	case f.From.IsValid() && t.Date.Before(f.From):
		return false
	case f.To.IsValid() && t.Date.After(f.To):
		return false
	}
	return true
}

// Snapshot returns a deep copy of the full ledger state.
func (s *Store) Snapshot() model.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Transaction returns one transaction by id.
func (s *Store) Transaction(txnID string) (model.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := indexOfTransaction(s.state.Transactions, txnID)
	if idx < 0 {
		return model.Transaction{}, NotFoundError{Kind: KindTransaction, ID: txnID}
	}
	return s.state.Transactions[idx].Clone(), nil
}

// Transactions returns the transactions matching f in insertion order.
func (s *Store) Transactions(f Filter) []model.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []model.Transaction
	for _, t := range s.state.Transactions {
		if f.match(t) {
			out = append(out, t.Clone())
		}
	}
	return out
}

// Card returns one card by id.
func (s *Store) Card(cardID string) (model.CreditCard, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.card(cardID)
}

func (s *Store) card(cardID string) (model.CreditCard, error) {
	c, ok := findCard(s.state.Cards, cardID)
	if !ok {
		return model.CreditCard{}, NotFoundError{Kind: KindCard, ID: cardID}
	}
	return c, nil
}

// Account returns one account by id.
func (s *Store) Account(accountID string) (model.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := findAccount(s.state.Accounts, accountID)
	if !ok {
		return model.Account{}, NotFoundError{Kind: KindAccount, ID: accountID}
	}
	return a, nil
}

// Goal returns one goal by id.
func (s *Store) Goal(goalID string) (model.Goal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := indexOfGoal(s.state.Goals, goalID)
	if idx < 0 {
		return model.Goal{}, NotFoundError{Kind: KindGoal, ID: goalID}
	}
	return s.state.Goals[idx], nil
}

// Invoice returns the card statement due in dueDate's month.
func (s *Store) Invoice(cardID string, dueDate civil.Date) (invoice.Statement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.card(cardID)
	if err != nil {
		return invoice.Statement{}, err
	}
	return invoice.Build(c, dueDate, s.state.Transactions), nil
}

// CurrentInvoice returns the statement that today's purchases land on.
func (s *Store) CurrentInvoice(cardID string) (invoice.Statement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.card(cardID)
	if err != nil {
		return invoice.Statement{}, err
	}
	return invoice.Current(c, s.clock.Today(), s.state.Transactions), nil
}

// StatementsDueIn returns every statement of ctx due in the given month.
func (s *Store) StatementsDueIn(ctx model.Context, year int, month time.Month) []invoice.Statement {
	s.mu.Lock()
	defer s.mu.Unlock()
	return invoice.DueIn(s.state.Cards, ctx, year, month, s.state.Transactions)
}

// AvailableCredit returns the card's limit minus its used limit, computed
// exactly as the validator does.
func (s *Store) AvailableCredit(cardID string) (decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.card(cardID)
	if err != nil {
		return decimal.Zero, err
	}
	return c.Limit.Sub(UsedLimit(c.ID, s.state.Transactions, "", s.clock.Today())), nil
}

// Overview returns the dashboard totals for one month.
func (s *Store) Overview(ctx model.Context, year int, month time.Month) summary.Overview {
	s.mu.Lock()
	defer s.mu.Unlock()
	return summary.Month(s.state, ctx, year, month)
}
