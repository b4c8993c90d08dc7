package ledger

import (
	"bytes"
	"errors"
	"sync"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/cardledger/cardledger/internal/clock"
	"github.com/cardledger/cardledger/internal/id"
	"github.com/cardledger/cardledger/internal/model"
)

var today = civil.Date{Year: 2025, Month: time.November, Day: 15}

func day(y, m, d int) civil.Date {
	return civil.Date{Year: y, Month: time.Month(m), Day: d}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// memPersister records saved snapshots and can be told to fail.
type memPersister struct {
	saves   []model.Snapshot
	changes []Change
	fail    bool
}

func (m *memPersister) Save(snap model.Snapshot, change Change) error {
	if m.fail {
		return errors.New("disk full")
	}
	m.saves = append(m.saves, snap.Clone())
	m.changes = append(m.changes, change)
	return nil
}

func newTestStore(snap model.Snapshot) (*Store, *memPersister) {
	p := &memPersister{}
	s := NewStore(snap, Options{
		Persister: p,
		Clock:     clock.Fixed(today),
		IDs:       id.NewSequence("id"),
	})
	return s, p
}

func checking(balance string) model.Account {
	return model.Account{
		ID:             "checking",
		Name:           "Checking",
		InitialBalance: dec(balance),
		Balance:        dec(balance),
		Context:        model.ContextPersonal,
	}
}

func visa(limit string) model.CreditCard {
	return model.CreditCard{
		ID:         "visa",
		Name:       "Visa",
		Limit:      dec(limit),
		ClosingDay: 20,
		DueDay:     27,
		Context:    model.ContextPersonal,
	}
}

func debitExpense(amount string) model.Transaction {
	return model.Transaction{
		Type:          model.TypeExpense,
		SubType:       model.SubTypeDaily,
		Amount:        dec(amount),
		Date:          today,
		Description:   "Groceries",
		PaymentMethod: model.PaymentDebit,
		AccountID:     "checking",
		Context:       model.ContextPersonal,
		State:         model.StateSettled,
	}
}

func creditExpense(amount string) model.Transaction {
	return model.Transaction{
		Type:          model.TypeExpense,
		SubType:       model.SubTypeDaily,
		Amount:        dec(amount),
		Date:          today,
		Description:   "Shoes",
		PaymentMethod: model.PaymentCredit,
		CardID:        "visa",
		Context:       model.ContextPersonal,
		State:         model.StateCharged,
	}
}

// syncBuffer is a bytes.Buffer safe for use as a log sink.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
