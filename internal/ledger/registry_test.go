package ledger

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardledger/cardledger/internal/model"
)

func TestAddCard_ValidatesCycle(t *testing.T) {
	tests := []struct {
		name    string
		closing int
		due     int
		wantErr bool
	}{
		{"valid", 20, 27, false},
		{"closing after due", 25, 5, false},
		{"closing zero", 0, 10, true},
		{"due too large", 10, 32, true},
		{"same day", 10, 10, false},
		{"negative", -1, 10, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, p := newTestStore(model.Snapshot{})
			c := visa("1000")
			c.ClosingDay = tt.closing
			c.DueDay = tt.due

			_, err := s.AddCard(c)
			if tt.wantErr {
				var cfgErr InvalidCardConfigurationError
				require.True(t, errors.As(err, &cfgErr))
				assert.Equal(t, "visa", cfgErr.CardID)
				assert.Empty(t, p.saves)
				return
			}
			require.NoError(t, err)
			got, err := s.Card("visa")
			require.NoError(t, err)
			assert.Equal(t, tt.closing, got.ClosingDay)
		})
	}
}

func TestAddCard_AssignsIDAndRejectsDuplicate(t *testing.T) {
	s, _ := newTestStore(model.Snapshot{Cards: []model.CreditCard{visa("1000")}})

	c := visa("500")
	c.ID = ""
	added, err := s.AddCard(c)
	require.NoError(t, err)
	assert.Equal(t, "id-1", added.ID)

	_, err = s.AddCard(visa("500"))
	assert.ErrorIs(t, err, ErrDuplicateID)
}

func TestUpdateCard(t *testing.T) {
	s, _ := newTestStore(model.Snapshot{Cards: []model.CreditCard{visa("1000")}})

	c := visa("2000")
	c.DueDay = 5
	_, err := s.UpdateCard(c)
	require.NoError(t, err)
	got, _ := s.Card("visa")
	assert.Equal(t, "2000.00", got.Limit.StringFixed(2))
	assert.Equal(t, 5, got.DueDay)

	c.DueDay = 40
	_, err = s.UpdateCard(c)
	assert.Error(t, err)

	c = visa("1")
	c.ID = "amex"
	_, err = s.UpdateCard(c)
	var nf NotFoundError
	assert.True(t, errors.As(err, &nf))
}

func TestRemoveCard_KeepsTransactions(t *testing.T) {
	s, _ := newTestStore(model.Snapshot{Cards: []model.CreditCard{visa("1000")}})
	_, err := s.Add(creditExpense("100"))
	require.NoError(t, err)

	require.NoError(t, s.RemoveCard("visa"))
	assert.Len(t, s.Transactions(Filter{CardID: "visa"}), 1)

	// Orphaned card ids skip the limit check.
	_, err = s.Add(creditExpense("5000"))
	assert.NoError(t, err)

	_, err = s.Invoice("visa", day(2025, 11, 27))
	var nf NotFoundError
	assert.True(t, errors.As(err, &nf))
	assert.Equal(t, KindCard, nf.Kind)
}

func TestAddAccount_DerivesBalance(t *testing.T) {
	s, _ := newTestStore(model.Snapshot{})

	// Recorded against an account that does not exist yet.
	income := debitExpense("400")
	income.Type = model.TypeIncome
	_, err := s.Add(income)
	require.NoError(t, err)

	a := checking("1000")
	a.Balance = dec("99999")
	got, err := s.AddAccount(a)
	require.NoError(t, err)
	assert.Equal(t, "1400.00", got.Balance.StringFixed(2))

	_, err = s.AddAccount(checking("1"))
	assert.ErrorIs(t, err, ErrDuplicateID)
}

func TestAccount_RejectsSubCentInitialBalance(t *testing.T) {
	s, p := newTestStore(model.Snapshot{Accounts: []model.Account{checking("1000")}})

	a := checking("10.005")
	a.ID = "savings"
	_, err := s.AddAccount(a)
	assert.ErrorContains(t, err, "more than 2 decimal places")

	_, err = s.UpdateAccount(checking("999.999"))
	assert.ErrorContains(t, err, "more than 2 decimal places")
	assert.Empty(t, p.saves)
}

func TestUpdateAccount_ShiftsByInitialBalanceDelta(t *testing.T) {
	s, _ := newTestStore(model.Snapshot{Accounts: []model.Account{checking("1000")}})
	_, err := s.Add(debitExpense("300"))
	require.NoError(t, err)

	a := checking("1500")
	a.Name = "Main"
	a.Balance = dec("0")
	got, err := s.UpdateAccount(a)
	require.NoError(t, err)
	assert.Equal(t, "1200.00", got.Balance.StringFixed(2))

	stored, _ := s.Account("checking")
	assert.Equal(t, "Main", stored.Name)
	assert.Equal(t, "1200.00", stored.Balance.StringFixed(2))
}

func TestRemoveAccount_DoesNotCascade(t *testing.T) {
	s, _ := newTestStore(model.Snapshot{Accounts: []model.Account{checking("1000")}})
	added, err := s.Add(debitExpense("300"))
	require.NoError(t, err)

	require.NoError(t, s.RemoveAccount("checking"))
	_, err = s.Account("checking")
	assert.Error(t, err)

	tx, err := s.Transaction(added[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "checking", tx.AccountID)

	// Removing a transaction of a deleted account is still allowed.
	require.NoError(t, s.Remove(added[0].ID))
	assert.Error(t, s.RemoveAccount("checking"))
}

func TestGoals(t *testing.T) {
	s, _ := newTestStore(model.Snapshot{Accounts: []model.Account{checking("1000")}})
	saved := debitExpense("150")
	saved.Type = model.TypeIncome
	saved.GoalID = "house"
	_, err := s.Add(saved)
	require.NoError(t, err)

	g, err := s.AddGoal(model.Goal{ID: "house", Name: "House", TargetAmount: dec("600"), CurrentAmount: dec("1")})
	require.NoError(t, err)
	assert.Equal(t, "150.00", g.CurrentAmount.StringFixed(2))
	assert.Equal(t, "0.25", g.Progress().StringFixed(2))

	g.Name = "Apartment"
	g.CurrentAmount = dec("0")
	g, err = s.UpdateGoal(g)
	require.NoError(t, err)
	assert.Equal(t, "Apartment", g.Name)
	assert.Equal(t, "150.00", g.CurrentAmount.StringFixed(2))

	require.NoError(t, s.RemoveGoal("house"))
	var nf NotFoundError
	assert.True(t, errors.As(s.RemoveGoal("house"), &nf))
	assert.Len(t, s.Transactions(Filter{GoalID: "house"}), 1)
}
