package ledger

import (
	"errors"
	"math/rand"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardledger/cardledger/internal/model"
)

func TestAddUpdateRemove_Balance(t *testing.T) {
	s, _ := newTestStore(model.Snapshot{Accounts: []model.Account{checking("1000")}})

	added, err := s.Add(debitExpense("300"))
	require.NoError(t, err)
	require.Len(t, added, 1)
	assert.Equal(t, "id-1", added[0].ID)

	acct, err := s.Account("checking")
	require.NoError(t, err)
	assert.Equal(t, "700.00", acct.Balance.StringFixed(2))

	edit := added[0]
	edit.Amount = dec("500")
	_, err = s.Update(edit)
	require.NoError(t, err)
	acct, _ = s.Account("checking")
	assert.Equal(t, "500.00", acct.Balance.StringFixed(2))

	require.NoError(t, s.Remove(edit.ID))
	acct, _ = s.Account("checking")
	assert.Equal(t, "1000.00", acct.Balance.StringFixed(2))
	assert.Empty(t, s.Transactions(Filter{}))
}

func TestAdd_CreditLimitRejected(t *testing.T) {
	s, p := newTestStore(model.Snapshot{Cards: []model.CreditCard{visa("1000")}})

	_, err := s.Add(creditExpense("1200"))
	var limErr InsufficientCreditLimitError
	require.True(t, errors.As(err, &limErr))
	assert.Equal(t, "1000.00", limErr.Available.StringFixed(2))
	assert.Equal(t, "1200.00", limErr.Requested.StringFixed(2))

	assert.Empty(t, s.Transactions(Filter{}))
	assert.Empty(t, p.saves, "nothing persisted")
}

func TestRejectionLeavesStateUntouched(t *testing.T) {
	goal := model.Goal{ID: "trip", Name: "Trip", TargetAmount: dec("5000")}
	s, _ := newTestStore(model.Snapshot{
		Accounts: []model.Account{checking("100")},
		Cards:    []model.CreditCard{visa("100")},
		Goals:    []model.Goal{goal},
	})
	ok := debitExpense("60")
	ok.GoalID = "trip"
	_, err := s.Add(ok)
	require.NoError(t, err)
	before := s.Snapshot()

	big := debitExpense("50")
	big.GoalID = "trip"
	_, err = s.Add(big)
	require.Error(t, err)

	plan := creditExpense("600")
	plan.Installments = &model.Installments{Current: 1, Total: 6}
	_, err = s.Add(plan)
	require.Error(t, err)

	edit := s.Transactions(Filter{})[0]
	edit.Amount = dec("101")
	_, err = s.Update(edit)
	require.Error(t, err)

	assert.Equal(t, before, s.Snapshot())
}

func TestPersistFailureLeavesStateUntouched(t *testing.T) {
	s, p := newTestStore(model.Snapshot{Accounts: []model.Account{checking("1000")}})
	added, err := s.Add(debitExpense("100"))
	require.NoError(t, err)
	before := s.Snapshot()

	p.fail = true
	_, err = s.Add(debitExpense("100"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	require.Error(t, s.Remove(added[0].ID))

	assert.Equal(t, before, s.Snapshot())
}

func TestUpdate_UsesPostReversalBalance(t *testing.T) {
	s, _ := newTestStore(model.Snapshot{Accounts: []model.Account{checking("1000")}})
	added, err := s.Add(debitExpense("300"))
	require.NoError(t, err)

	edit := added[0]
	edit.Amount = dec("1000")
	_, err = s.Update(edit)
	require.NoError(t, err, "old 300 is reversed before checking")
	acct, _ := s.Account("checking")
	assert.True(t, acct.Balance.IsZero())

	edit.Amount = dec("1000.01")
	_, err = s.Update(edit)
	var balErr InsufficientBalanceError
	require.True(t, errors.As(err, &balErr))
	assert.Equal(t, "1000.00", balErr.Available.StringFixed(2))
	acct, _ = s.Account("checking")
	assert.True(t, acct.Balance.IsZero(), "rejected update keeps balance")
}

func TestUpdate_MovesBetweenAccounts(t *testing.T) {
	savings := checking("500")
	savings.ID = "savings"
	s, _ := newTestStore(model.Snapshot{Accounts: []model.Account{checking("1000"), savings}})
	added, err := s.Add(debitExpense("200"))
	require.NoError(t, err)

	edit := added[0]
	edit.AccountID = "savings"
	_, err = s.Update(edit)
	require.NoError(t, err)

	a, _ := s.Account("checking")
	b, _ := s.Account("savings")
	assert.Equal(t, "1000.00", a.Balance.StringFixed(2))
	assert.Equal(t, "300.00", b.Balance.StringFixed(2))
}

func TestUpdate_SettlementToggle(t *testing.T) {
	s, _ := newTestStore(model.Snapshot{Accounts: []model.Account{checking("1000")}})
	tx := debitExpense("250")
	tx.State = model.StatePending
	added, err := s.Add(tx)
	require.NoError(t, err)
	acct, _ := s.Account("checking")
	assert.Equal(t, "1000.00", acct.Balance.StringFixed(2), "pending does not move money")

	edit := added[0]
	edit.State = model.StateSettled
	_, err = s.Update(edit)
	require.NoError(t, err)
	acct, _ = s.Account("checking")
	assert.Equal(t, "750.00", acct.Balance.StringFixed(2))

	edit.State = model.StateCharged
	_, err = s.Update(edit)
	require.NoError(t, err)
	acct, _ = s.Account("checking")
	assert.Equal(t, "1000.00", acct.Balance.StringFixed(2))
}

func TestNotFound(t *testing.T) {
	s, _ := newTestStore(model.Snapshot{Accounts: []model.Account{checking("1000")}})

	tx := debitExpense("1")
	tx.ID = "missing"
	_, err := s.Update(tx)
	var nf NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, KindTransaction, nf.Kind)
	assert.Equal(t, "missing", nf.ID)

	added, err := s.Add(debitExpense("1"))
	require.NoError(t, err)
	require.NoError(t, s.Remove(added[0].ID))
	err = s.Remove(added[0].ID)
	require.True(t, errors.As(err, &nf), "second remove reports not found")

	_, err = s.Transaction("missing")
	assert.True(t, errors.As(err, &nf))
}

func TestAdd_DuplicateID(t *testing.T) {
	s, _ := newTestStore(model.Snapshot{Accounts: []model.Account{checking("1000")}})
	tx := debitExpense("1")
	tx.ID = "fixed-id"
	_, err := s.Add(tx)
	require.NoError(t, err)

	_, err = s.Add(tx)
	assert.ErrorIs(t, err, ErrDuplicateID)
}

func TestAdd_InvalidShape(t *testing.T) {
	s, _ := newTestStore(model.Snapshot{})
	tx := debitExpense("0")
	_, err := s.Add(tx)
	assert.ErrorIs(t, err, model.ErrInvalidTransaction)
}

func TestAdd_Installments(t *testing.T) {
	s, _ := newTestStore(model.Snapshot{Accounts: []model.Account{checking("2000")}})
	tx := debitExpense("1000")
	tx.SubType = model.SubTypeInstallment
	tx.Date = day(2025, 1, 10)
	tx.Installments = &model.Installments{Current: 1, Total: 4}

	added, err := s.Add(tx)
	require.NoError(t, err)
	require.Len(t, added, 4)
	for i, inst := range added {
		assert.NotEmpty(t, inst.ID)
		assert.Equal(t, i+1, inst.Installments.Current)
		assert.Equal(t, "250.00", inst.Amount.StringFixed(2))
	}
	assert.Equal(t, day(2025, 4, 10), added[3].Date)

	acct, _ := s.Account("checking")
	assert.Equal(t, "1000.00", acct.Balance.StringFixed(2), "settled installments all move money")

	// Siblings are independent.
	edit := added[1]
	edit.Amount = dec("100")
	_, err = s.Update(edit)
	require.NoError(t, err)
	third, err := s.Transaction(added[2].ID)
	require.NoError(t, err)
	assert.Equal(t, "250.00", third.Amount.StringFixed(2))
	assert.Len(t, s.Transactions(Filter{}), 4, "update does not re-expand")
}

func TestAdd_InstallmentsBelowOneCentEach(t *testing.T) {
	s, p := newTestStore(model.Snapshot{Cards: []model.CreditCard{visa("1000")}})
	tx := creditExpense("0.03")
	tx.SubType = model.SubTypeInstallment
	tx.Installments = &model.Installments{Current: 1, Total: 4}

	_, err := s.Add(tx)
	assert.ErrorIs(t, err, model.ErrInvalidTransaction)
	assert.Empty(t, s.Transactions(Filter{}))
	assert.Empty(t, p.saves)

	tx.Amount = dec("0.04")
	added, err := s.Add(tx)
	require.NoError(t, err)
	require.Len(t, added, 4)
	for _, inst := range added {
		assert.Equal(t, "0.01", inst.Amount.StringFixed(2))
		_, err := s.Update(inst)
		assert.NoError(t, err, "stored instances stay editable")
	}
}

func TestAdd_RecurringOnlyFirstSettled(t *testing.T) {
	s, _ := newTestStore(model.Snapshot{Accounts: []model.Account{checking("5000")}})
	tx := debitExpense("1500")
	tx.SubType = model.SubTypeFixed
	tx.Description = "Rent"
	tx.Recurrence = &model.Recurrence{Frequency: model.FrequencyMonthly, Day: 5}

	added, err := s.Add(tx)
	require.NoError(t, err)
	require.Len(t, added, 12)
	assert.True(t, added[0].IsPaid())
	for _, inst := range added[1:] {
		assert.False(t, inst.IsPaid())
		assert.Equal(t, model.StatusPaid, inst.Status())
	}

	acct, _ := s.Account("checking")
	assert.Equal(t, "3500.00", acct.Balance.StringFixed(2))
}

func TestAdd_CreditSubscriptionUsesCardDays(t *testing.T) {
	card := visa("1000")
	card.ClosingDay = 10
	card.DueDay = 20
	s, _ := newTestStore(model.Snapshot{Cards: []model.CreditCard{card}})

	tx := creditExpense("39.90")
	tx.SubType = model.SubTypeSubscription
	tx.Date = day(2025, 11, 15)
	tx.Recurrence = &model.Recurrence{Frequency: model.FrequencyMonthly, Day: 15}

	added, err := s.Add(tx)
	require.NoError(t, err)
	require.Len(t, added, 24)
	assert.Equal(t, day(2025, 12, 20), added[0].Date)
	assert.Equal(t, day(2026, 1, 20), added[1].Date)

	// Future-month subscription charges do not encumber the limit.
	avail, err := s.AvailableCredit("visa")
	require.NoError(t, err)
	assert.Equal(t, "1000.00", avail.StringFixed(2))
}

func TestGoalProgress(t *testing.T) {
	s, _ := newTestStore(model.Snapshot{Accounts: []model.Account{checking("1000")}})
	_, err := s.AddGoal(model.Goal{ID: "trip", Name: "Trip", TargetAmount: dec("3000")})
	require.NoError(t, err)

	tx := debitExpense("200")
	tx.Type = model.TypeIncome
	tx.GoalID = "trip"
	added, err := s.Add(tx)
	require.NoError(t, err)

	g, _ := s.Goal("trip")
	assert.Equal(t, "200.00", g.CurrentAmount.StringFixed(2))

	edit := added[0]
	edit.Amount = dec("350")
	_, err = s.Update(edit)
	require.NoError(t, err)
	g, _ = s.Goal("trip")
	assert.Equal(t, "350.00", g.CurrentAmount.StringFixed(2))

	require.NoError(t, s.Remove(edit.ID))
	g, _ = s.Goal("trip")
	assert.True(t, g.CurrentAmount.IsZero())
}

func TestChangesArePersisted(t *testing.T) {
	s, p := newTestStore(model.Snapshot{Accounts: []model.Account{checking("1000")}})
	added, err := s.Add(debitExpense("10"))
	require.NoError(t, err)
	require.NoError(t, s.Remove(added[0].ID))

	require.Len(t, p.changes, 2)
	assert.Equal(t, "add", p.changes[0].Action)
	assert.Equal(t, []string{added[0].ID}, p.changes[0].IDs)
	assert.Equal(t, "remove", p.changes[1].Action)
	assert.Len(t, p.saves[0].Transactions, 1)
	assert.Empty(t, p.saves[1].Transactions)
}

func TestLogsRejections(t *testing.T) {
	var buf syncBuffer
	log := zerolog.New(&buf)
	s := NewStore(model.Snapshot{Accounts: []model.Account{checking("10")}}, Options{Logger: &log})

	_, err := s.Add(debitExpense("20"))
	require.Error(t, err)
	assert.Contains(t, buf.String(), "transaction rejected")
	assert.Contains(t, buf.String(), `"account_id":"checking"`)
}

// Random operation sequences must keep every account balance equal to its
// initial balance plus its settled transactions, and every goal equal to the
// sum of its linked transactions.
func TestBalancesAndGoalsStayConsistentUnderRandomOperations(t *testing.T) {
	savings := checking("300")
	savings.ID = "savings"
	s, _ := newTestStore(model.Snapshot{
		Accounts: []model.Account{checking("1000"), savings},
		Cards:    []model.CreditCard{visa("800")},
		Goals:    []model.Goal{{ID: "g1", TargetAmount: dec("1000")}, {ID: "g2", TargetAmount: dec("1000")}},
	})

	rng := rand.New(rand.NewSource(42))
	accounts := []string{"checking", "savings", "gone"}
	goals := []string{"", "g1", "g2"}
	states := []model.State{model.StatePending, model.StateCharged, model.StateSettled}
	amounts := []string{"10", "25.50", "99.99", "250", "700"}

	randomTxn := func() model.Transaction {
		tx := debitExpense(amounts[rng.Intn(len(amounts))])
		if rng.Intn(2) == 0 {
			tx.Type = model.TypeIncome
		}
		tx.AccountID = accounts[rng.Intn(len(accounts))]
		tx.GoalID = goals[rng.Intn(len(goals))]
		tx.State = states[rng.Intn(len(states))]
		if rng.Intn(4) == 0 {
			tx.PaymentMethod = model.PaymentCredit
			tx.CardID = "visa"
			tx.AccountID = ""
		}
		switch rng.Intn(6) {
		case 0:
			tx.Installments = &model.Installments{Current: 1, Total: 3}
		case 1:
			tx.SubType = model.SubTypeFixed
		}
		return tx
	}

	for i := 0; i < 400; i++ {
		existing := s.Transactions(Filter{})
		before := s.Snapshot()
		var err error
		switch op := rng.Intn(3); {
		case op == 0 || len(existing) == 0:
			_, err = s.Add(randomTxn())
		case op == 1:
			edit := randomTxn()
			edit.ID = existing[rng.Intn(len(existing))].ID
			_, err = s.Update(edit)
		default:
			err = s.Remove(existing[rng.Intn(len(existing))].ID)
		}
		if err != nil {
			require.Equal(t, before, s.Snapshot(), "step %d: rejected op changed state", i)
		}

		snap := s.Snapshot()
		for _, a := range snap.Accounts {
			want := a.InitialBalance.Add(settledTotal(snap.Transactions, a.ID))
			require.True(t, want.Equal(a.Balance), "step %d: account %s balance %s, want %s", i, a.ID, a.Balance, want)
		}
		for _, g := range snap.Goals {
			want := goalTotal(snap.Transactions, g.ID)
			require.True(t, want.Equal(g.CurrentAmount), "step %d: goal %s amount %s, want %s", i, g.ID, g.CurrentAmount, want)
		}
	}
}

func TestConcurrentAdds(t *testing.T) {
	s, _ := newTestStore(model.Snapshot{Accounts: []model.Account{checking("0")}})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tx := debitExpense("10")
			tx.Type = model.TypeIncome
			_, err := s.Add(tx)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	acct, _ := s.Account("checking")
	assert.Equal(t, "200.00", acct.Balance.StringFixed(2))
	assert.Len(t, s.Transactions(Filter{}), 20)
}

func TestTransactionsFilter(t *testing.T) {
	s, _ := newTestStore(model.Snapshot{
		Accounts: []model.Account{checking("1000")},
		Cards:    []model.CreditCard{visa("1000")},
	})
	_, err := s.Add(debitExpense("10"))
	require.NoError(t, err)
	cc := creditExpense("20")
	cc.Date = day(2025, 10, 1)
	_, err = s.Add(cc)
	require.NoError(t, err)
	pj := debitExpense("30")
	pj.Context = model.ContextBusiness
	_, err = s.Add(pj)
	require.NoError(t, err)

	assert.Len(t, s.Transactions(Filter{}), 3)
	assert.Len(t, s.Transactions(Filter{CardID: "visa"}), 1)
	assert.Len(t, s.Transactions(Filter{AccountID: "checking"}), 2)
	assert.Len(t, s.Transactions(Filter{Context: model.ContextBusiness}), 1)
	assert.Len(t, s.Transactions(Filter{From: day(2025, 11, 1)}), 2)
	assert.Len(t, s.Transactions(Filter{To: day(2025, 10, 31)}), 1)
}
