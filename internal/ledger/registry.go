package ledger

import (
	"fmt"

	"github.com/cardledger/cardledger/internal/invoice"
	"github.com/cardledger/cardledger/internal/model"
)

// AddCard registers a credit card. Card days are validated here so billing
// computations never see an invalid cycle.
func (s *Store) AddCard(c model.CreditCard) (model.CreditCard, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := invoice.CycleOf(c).Validate(c.ID); err != nil {
		return model.CreditCard{}, err
	}
	if c.ID == "" {
		c.ID = s.ids.NewID()
	} else if indexOfCard(s.state.Cards, c.ID) >= 0 {
		return model.CreditCard{}, fmt.Errorf("card %s: %w", c.ID, ErrDuplicateID)
	}

	next := s.state.Clone()
	next.Cards = append(next.Cards, c)
	if err := s.commit(next, Change{Action: "add", Kind: KindCard, IDs: []string{c.ID}, Detail: c.Name}); err != nil {
		return model.CreditCard{}, err
	}
	return c, nil
}

// UpdateCard replaces a card's settings. Existing transactions are not
// touched; invoices are recomputed from the new cycle on the next read.
func (s *Store) UpdateCard(c model.CreditCard) (model.CreditCard, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := invoice.CycleOf(c).Validate(c.ID); err != nil {
		return model.CreditCard{}, err
	}
	idx := indexOfCard(s.state.Cards, c.ID)
	if idx < 0 {
		return model.CreditCard{}, NotFoundError{Kind: KindCard, ID: c.ID}
	}

	next := s.state.Clone()
	next.Cards[idx] = c
	if err := s.commit(next, Change{Action: "update", Kind: KindCard, IDs: []string{c.ID}, Detail: c.Name}); err != nil {
		return model.CreditCard{}, err
	}
	return c, nil
}

// RemoveCard deletes a card. Its transactions stay in the ledger with an
// orphaned card id.
func (s *Store) RemoveCard(cardID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := indexOfCard(s.state.Cards, cardID)
	if idx < 0 {
		return NotFoundError{Kind: KindCard, ID: cardID}
	}

	next := s.state.Clone()
	name := next.Cards[idx].Name
	next.Cards = append(next.Cards[:idx], next.Cards[idx+1:]...)
	return s.commit(next, Change{Action: "remove", Kind: KindCard, IDs: []string{cardID}, Detail: name})
}

// AddAccount registers an account. Its balance starts at InitialBalance
// plus any settled transactions that already reference its id.
func (s *Store) AddAccount(a model.Account) (model.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := checkCents(a); err != nil {
		return model.Account{}, err
	}
	if a.ID == "" {
		a.ID = s.ids.NewID()
	} else if indexOfAccount(s.state.Accounts, a.ID) >= 0 {
		return model.Account{}, fmt.Errorf("account %s: %w", a.ID, ErrDuplicateID)
	}
	a.Balance = a.InitialBalance.Add(settledTotal(s.state.Transactions, a.ID))

	next := s.state.Clone()
	next.Accounts = append(next.Accounts, a)
	if err := s.commit(next, Change{Action: "add", Kind: KindAccount, IDs: []string{a.ID}, Detail: a.Name}); err != nil {
		return model.Account{}, err
	}
	return a, nil
}

// UpdateAccount replaces an account's details. The live balance is owned by
// the ledger: a changed InitialBalance shifts it by the difference, and any
// Balance supplied by the caller is ignored.
func (s *Store) UpdateAccount(a model.Account) (model.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := checkCents(a); err != nil {
		return model.Account{}, err
	}
	idx := indexOfAccount(s.state.Accounts, a.ID)
	if idx < 0 {
		return model.Account{}, NotFoundError{Kind: KindAccount, ID: a.ID}
	}

	next := s.state.Clone()
	old := next.Accounts[idx]
	a.Balance = old.Balance.Add(a.InitialBalance.Sub(old.InitialBalance))
	next.Accounts[idx] = a
	if err := s.commit(next, Change{Action: "update", Kind: KindAccount, IDs: []string{a.ID}, Detail: a.Name}); err != nil {
		return model.Account{}, err
	}
	return a, nil
}

// RemoveAccount deletes an account. Transactions keep their account id.
func (s *Store) RemoveAccount(accountID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := indexOfAccount(s.state.Accounts, accountID)
	if idx < 0 {
		return NotFoundError{Kind: KindAccount, ID: accountID}
	}

	next := s.state.Clone()
	name := next.Accounts[idx].Name
	next.Accounts = append(next.Accounts[:idx], next.Accounts[idx+1:]...)
	return s.commit(next, Change{Action: "remove", Kind: KindAccount, IDs: []string{accountID}, Detail: name})
}

// AddGoal registers a goal. CurrentAmount is derived from linked transactions.
func (s *Store) AddGoal(g model.Goal) (model.Goal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if g.ID == "" {
		g.ID = s.ids.NewID()
	} else if indexOfGoal(s.state.Goals, g.ID) >= 0 {
		return model.Goal{}, fmt.Errorf("goal %s: %w", g.ID, ErrDuplicateID)
	}
	g.CurrentAmount = goalTotal(s.state.Transactions, g.ID)

	next := s.state.Clone()
	next.Goals = append(next.Goals, g)
	if err := s.commit(next, Change{Action: "add", Kind: KindGoal, IDs: []string{g.ID}, Detail: g.Name}); err != nil {
		return model.Goal{}, err
	}
	return g, nil
}

// UpdateGoal replaces a goal's details, keeping its accumulated amount.
func (s *Store) UpdateGoal(g model.Goal) (model.Goal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := indexOfGoal(s.state.Goals, g.ID)
	if idx < 0 {
		return model.Goal{}, NotFoundError{Kind: KindGoal, ID: g.ID}
	}

	next := s.state.Clone()
	g.CurrentAmount = next.Goals[idx].CurrentAmount
	next.Goals[idx] = g
	if err := s.commit(next, Change{Action: "update", Kind: KindGoal, IDs: []string{g.ID}, Detail: g.Name}); err != nil {
		return model.Goal{}, err
	}
	return g, nil
}

// RemoveGoal deletes a goal. Transactions keep their goal id.
func (s *Store) RemoveGoal(goalID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := indexOfGoal(s.state.Goals, goalID)
	if idx < 0 {
		return NotFoundError{Kind: KindGoal, ID: goalID}
	}

	next := s.state.Clone()
	name := next.Goals[idx].Name
	next.Goals = append(next.Goals[:idx], next.Goals[idx+1:]...)
	return s.commit(next, Change{Action: "remove", Kind: KindGoal, IDs: []string{goalID}, Detail: name})
}

// checkCents rejects initial balances that the snapshot files cannot hold.
func checkCents(a model.Account) error {
	if !a.InitialBalance.Equal(a.InitialBalance.Truncate(2)) {
		return fmt.Errorf("account %s: initial balance %s has more than 2 decimal places", a.ID, a.InitialBalance)
	}
	return nil
}
