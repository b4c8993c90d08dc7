package ledger

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/cardledger/cardledger/internal/clock"
	"github.com/cardledger/cardledger/internal/id"
	"github.com/cardledger/cardledger/internal/model"
	"github.com/cardledger/cardledger/internal/recurrence"
)

// Change describes one committed mutation, for persistence and audit.
type Change struct {
	Action string
	Kind   Kind
	IDs    []string
	Detail string
}

// Persister durably stores the state produced by a mutation. Save is called
// before the new state becomes visible; an error aborts the mutation.
type Persister interface {
	Save(snap model.Snapshot, change Change) error
}

// Options wires a Store's collaborators. Zero values select defaults.
type Options struct {
	Persister Persister // nil = memory only
	Clock     clock.Clock
	IDs       id.Generator
	Horizon   recurrence.Horizon
	Logger    *zerolog.Logger
}

// Store owns transactions, cards, accounts and goals, and keeps account
// balances and goal progress in step with the transactions that reference
// them. All methods are safe for concurrent use; mutations are serialized.
type Store struct {
	mu        sync.Mutex
	state     model.Snapshot
	persister Persister
	clock     clock.Clock
	ids       id.Generator
	horizon   recurrence.Horizon
	log       zerolog.Logger
}

// NewStore creates a Store from a previously persisted snapshot.
func NewStore(snap model.Snapshot, opts Options) *Store {
	s := &Store{
		state:     snap.Clone(),
		persister: opts.Persister,
		clock:     opts.Clock,
		ids:       opts.IDs,
		horizon:   opts.Horizon,
		log:       zerolog.Nop(),
	}
	if s.clock == nil {
		s.clock = clock.System{}
	}
	if s.ids == nil {
		s.ids = id.UUID{}
	}
	if s.horizon.Bounded <= 0 || s.horizon.Infinite <= 0 {
		s.horizon = recurrence.DefaultHorizon()
	}
	if opts.Logger != nil {
		s.log = *opts.Logger
	}
	return s
}

// Add inserts a transaction. Installment plans and recurring templates are
// expanded into independent instances with fresh ids. Returns the inserted
// instances. On any error nothing changes.
func (s *Store) Add(t model.Transaction) ([]model.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := t.Validate(); err != nil {
		return nil, err
	}
	if err := Validate(t, s.state.Transactions, s.state.Cards, s.state.Accounts, "", s.clock.Today()); err != nil {
		s.logRejection(t, err)
		return nil, err
	}

	instances, err := s.instancesOf(t)
	if err != nil {
		return nil, err
	}

	next := s.state.Clone()
	ids := make([]string, len(instances))
	for i, inst := range instances {
		applyEffects(&next, inst, false)
		next.Transactions = append(next.Transactions, inst)
		ids[i] = inst.ID
	}

	change := Change{Action: "add", Kind: KindTransaction, IDs: ids, Detail: describe(t, len(instances))}
	if err := s.commit(next, change); err != nil {
		return nil, err
	}

	out := make([]model.Transaction, len(instances))
	for i, inst := range instances {
		out[i] = inst.Clone()
	}
	return out, nil
}

// Update replaces one stored instance in place. It never re-expands: editing
// one installment or recurring instance leaves its siblings untouched.
func (s *Store) Update(t model.Transaction) (model.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := t.Validate(); err != nil {
		return model.Transaction{}, err
	}
	idx := indexOfTransaction(s.state.Transactions, t.ID)
	if idx < 0 {
		return model.Transaction{}, NotFoundError{Kind: KindTransaction, ID: t.ID}
	}

	next := s.state.Clone()
	applyEffects(&next, next.Transactions[idx], true)

	// next.Accounts now holds the post-reversal balances.
	if err := Validate(t, s.state.Transactions, s.state.Cards, next.Accounts, t.ID, s.clock.Today()); err != nil {
		s.logRejection(t, err)
		return model.Transaction{}, err
	}

	updated := t.Clone()
	applyEffects(&next, updated, false)
	next.Transactions[idx] = updated

	change := Change{Action: "update", Kind: KindTransaction, IDs: []string{t.ID}, Detail: describe(t, 1)}
	if err := s.commit(next, change); err != nil {
		return model.Transaction{}, err
	}
	return updated.Clone(), nil
}

// Remove deletes one instance and reverses its balance and goal effects.
func (s *Store) Remove(txnID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := indexOfTransaction(s.state.Transactions, txnID)
	if idx < 0 {
		return NotFoundError{Kind: KindTransaction, ID: txnID}
	}

	next := s.state.Clone()
	old := next.Transactions[idx]
	applyEffects(&next, old, true)
	next.Transactions = append(next.Transactions[:idx], next.Transactions[idx+1:]...)

	return s.commit(next, Change{Action: "remove", Kind: KindTransaction, IDs: []string{txnID}, Detail: describe(old, 1)})
}

// instancesOf expands t if needed and assigns ids.
func (s *Store) instancesOf(t model.Transaction) ([]model.Transaction, error) {
	if !t.NeedsExpansion() {
		inst := t.Clone()
		if inst.ID == "" {
			inst.ID = s.ids.NewID()
		} else if indexOfTransaction(s.state.Transactions, inst.ID) >= 0 {
			return nil, fmt.Errorf("transaction %s: %w", inst.ID, ErrDuplicateID)
		}
		return []model.Transaction{inst}, nil
	}

	if inst := t.Installments; inst != nil && inst.Total > 1 {
		minimum := decimal.New(int64(inst.Total), -2)
		if t.Amount.LessThan(minimum) {
			return nil, fmt.Errorf("%w: %s cannot be split into %d installments of at least 0.01",
				model.ErrInvalidTransaction, t.Amount.StringFixed(2), inst.Total)
		}
	}

	var card *model.CreditCard
	if t.IsCredit() {
		if c, ok := findCard(s.state.Cards, t.CardID); ok {
			card = &c
		}
	}
	instances := recurrence.Expand(t, card, s.horizon)
	for i := range instances {
		instances[i].ID = s.ids.NewID()
	}
	return instances, nil
}

// commit persists next and makes it the current state.
func (s *Store) commit(next model.Snapshot, change Change) error {
	if s.persister != nil {
		if err := s.persister.Save(next, change); err != nil {
			return fmt.Errorf("persisting %s %s: %w", change.Action, change.Kind, err)
		}
	}
	s.state = next
	s.log.Debug().
		Str("action", change.Action).
		Str("kind", string(change.Kind)).
		Strs("ids", change.IDs).
		Msg(change.Detail)
	return nil
}

func (s *Store) logRejection(t model.Transaction, err error) {
	s.log.Info().
		Err(err).
		Str("transaction_id", t.ID).
		Str("card_id", t.CardID).
		Str("account_id", t.AccountID).
		Str("amount", t.Amount.StringFixed(2)).
		Msg("transaction rejected")
}

// applyEffects moves the balance of t's account (settled only) and the
// progress of t's goal. reverse undoes a previous application.
func applyEffects(snap *model.Snapshot, t model.Transaction, reverse bool) {
	if t.AccountID != "" && t.IsPaid() {
		if i := indexOfAccount(snap.Accounts, t.AccountID); i >= 0 {
			delta := t.SignedAmount()
			if reverse {
				delta = delta.Neg()
			}
			snap.Accounts[i].Balance = snap.Accounts[i].Balance.Add(delta)
		}
	}
	if t.GoalID != "" {
		if i := indexOfGoal(snap.Goals, t.GoalID); i >= 0 {
			delta := t.Amount
			if reverse {
				delta = delta.Neg()
			}
			snap.Goals[i].CurrentAmount = snap.Goals[i].CurrentAmount.Add(delta)
		}
	}
}

func describe(t model.Transaction, n int) string {
	desc := fmt.Sprintf("%s %s %s", t.Type, t.Amount.StringFixed(2), t.Description)
	if n > 1 {
		desc = fmt.Sprintf("%s (%d instances)", desc, n)
	}
	return desc
}

// settledTotal sums the signed settled amounts that reference accountID.
func settledTotal(txns []model.Transaction, accountID string) decimal.Decimal {
	total := decimal.Zero
	for _, t := range txns {
		if t.AccountID == accountID && t.IsPaid() {
			total = total.Add(t.SignedAmount())
		}
	}
	return total
}

// goalTotal sums the amounts of transactions linked to goalID.
func goalTotal(txns []model.Transaction, goalID string) decimal.Decimal {
	total := decimal.Zero
	for _, t := range txns {
		if t.GoalID == goalID {
			total = total.Add(t.Amount)
		}
	}
	return total
}

func indexOfTransaction(txns []model.Transaction, txnID string) int {
	if txnID == "" {
		return -1
	}
	for i, t := range txns {
		if t.ID == txnID {
			return i
		}
	}
	return -1
}

func indexOfAccount(accounts []model.Account, accountID string) int {
	for i, a := range accounts {
		if a.ID == accountID {
			return i
		}
	}
	return -1
}

func indexOfCard(cards []model.CreditCard, cardID string) int {
	for i, c := range cards {
		if c.ID == cardID {
			return i
		}
	}
	return -1
}

func indexOfGoal(goals []model.Goal, goalID string) int {
	for i, g := range goals {
		if g.ID == goalID {
			return i
		}
	}
	return -1
}
