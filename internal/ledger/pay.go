package ledger

import (
	"cloud.google.com/go/civil"

	"github.com/cardledger/cardledger/internal/invoice"
	"github.com/cardledger/cardledger/internal/model"
)

// PayInvoice settles every charged expense on the card statement due in
// dueDate's month through accountID. Pending charges stay pending. The account must cover the outstanding
// amount; either every charge is settled or none is.
func (s *Store) PayInvoice(cardID string, dueDate civil.Date, accountID string) (invoice.Statement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.card(cardID)
	if err != nil {
		return invoice.Statement{}, err
	}
	acct, ok := findAccount(s.state.Accounts, accountID)
	if !ok {
		return invoice.Statement{}, NotFoundError{Kind: KindAccount, ID: accountID}
	}

	stmt := invoice.Build(c, dueDate, s.state.Transactions)
	if stmt.IsPaid() {
		return stmt, nil
	}
	if acct.Balance.LessThan(stmt.Outstanding) {
		err := InsufficientBalanceError{AccountID: acct.ID, Available: acct.Balance, Requested: stmt.Outstanding}
		s.log.Info().Err(err).Str("card_id", c.ID).Msg("invoice payment rejected")
		return invoice.Statement{}, err
	}

	next := s.state.Clone()
	var ids []string
	for _, t := range stmt.Transactions {
		if t.State != model.StateCharged {
			continue
		}
		idx := indexOfTransaction(next.Transactions, t.ID)
		if idx < 0 {
			continue
		}
		old := next.Transactions[idx]
		paid := old.Clone()
		paid.AccountID = acct.ID
		paid.State = model.StateSettled
		applyEffects(&next, old, true)
		applyEffects(&next, paid, false)
		next.Transactions[idx] = paid
		ids = append(ids, t.ID)
	}

	change := Change{
		Action: "pay_invoice",
		Kind:   KindCard,
		IDs:    ids,
		Detail: c.Name + " due " + stmt.DueDate.String() + " " + stmt.Outstanding.StringFixed(2),
	}
	if err := s.commit(next, change); err != nil {
		return invoice.Statement{}, err
	}
	return invoice.Build(c, dueDate, next.Transactions), nil
}
