package storage

import (
	"fmt"
	"io"
	"strconv"

	"github.com/cardledger/cardledger/internal/model"
)

// Headers for the registry files.
const (
	CardsHeader    = "id,name,limit,closing_day,due_day,color,context,bank_id"
	AccountsHeader = "id,name,bank_id,initial_balance,balance,is_favorite,context"
	GoalsHeader    = "id,name,target_amount,current_amount,deadline,context"
)

const (
	cardFields     = 8
	colCardName    = 1
	colCardLimit   = 2
	colCardClosing = 3
	colCardDue     = 4
	colCardColor   = 5
	colCardContext = 6
	colCardBank    = 7
)

// ReadCards reads cards.csv.
func ReadCards(r io.Reader) ([]model.CreditCard, error) {
	cards, err := readTable(r, CardsHeader, UnmarshalCard)
	if err != nil {
		return nil, fmt.Errorf("cards: %w", err)
	}
	return cards, nil
}

// WriteCards writes cards.csv.
func WriteCards(w io.Writer, cards []model.CreditCard) error {
	return writeTable(w, CardsHeader, cards, MarshalCard)
}

// MarshalCard converts a CreditCard to a CSV row.
func MarshalCard(c model.CreditCard) []string {
	row := make([]string, cardFields)
	row[0] = c.ID
	row[colCardName] = c.Name
	row[colCardLimit] = formatAmount(c.Limit)
	row[colCardClosing] = strconv.Itoa(c.ClosingDay)
	row[colCardDue] = strconv.Itoa(c.DueDay)
	row[colCardColor] = c.Color
	row[colCardContext] = string(c.Context)
	row[colCardBank] = c.BankID
	return row
}

// UnmarshalCard converts a CSV row to a CreditCard.
func UnmarshalCard(record []string) (model.CreditCard, error) {
	if len(record) != cardFields {
		return model.CreditCard{}, fmt.Errorf("expected %d fields, got %d", cardFields, len(record))
	}
	if err := requireID(record[0]); err != nil {
		return model.CreditCard{}, err
	}

	limit, err := parseAmount("limit", record[colCardLimit])
	if err != nil {
		return model.CreditCard{}, err
	}
	closing, err := parseInt("closing_day", record[colCardClosing])
	if err != nil {
		return model.CreditCard{}, err
	}
	due, err := parseInt("due_day", record[colCardDue])
	if err != nil {
		return model.CreditCard{}, err
	}

	return model.CreditCard{
		ID:         record[0],
		Name:       record[colCardName],
		Limit:      limit,
		ClosingDay: closing,
		DueDay:     due,
		Color:      record[colCardColor],
		Context:    model.Context(record[colCardContext]),
		BankID:     record[colCardBank],
	}, nil
}

const (
	accountFields   = 7
	colAcctName     = 1
	colAcctBank     = 2
	colAcctInitial  = 3
	colAcctBalance  = 4
	colAcctFavorite = 5
	colAcctContext  = 6
)

// ReadAccounts reads accounts.csv.
func ReadAccounts(r io.Reader) ([]model.Account, error) {
	accounts, err := readTable(r, AccountsHeader, UnmarshalAccount)
	if err != nil {
		return nil, fmt.Errorf("accounts: %w", err)
	}
	return accounts, nil
}

// WriteAccounts writes accounts.csv.
func WriteAccounts(w io.Writer, accounts []model.Account) error {
	return writeTable(w, AccountsHeader, accounts, MarshalAccount)
}

// MarshalAccount converts an Account to a CSV row.
func MarshalAccount(a model.Account) []string {
	row := make([]string, accountFields)
	row[0] = a.ID
	row[colAcctName] = a.Name
	row[colAcctBank] = a.BankID
	row[colAcctInitial] = formatAmount(a.InitialBalance)
	row[colAcctBalance] = formatAmount(a.Balance)
	row[colAcctFavorite] = strconv.FormatBool(a.IsFavorite)
	row[colAcctContext] = string(a.Context)
	return row
}

// UnmarshalAccount converts a CSV row to an Account.
func UnmarshalAccount(record []string) (model.Account, error) {
	if len(record) != accountFields {
		return model.Account{}, fmt.Errorf("expected %d fields, got %d", accountFields, len(record))
	}
	if err := requireID(record[0]); err != nil {
		return model.Account{}, err
	}

	initial, err := parseAmount("initial_balance", record[colAcctInitial])
	if err != nil {
		return model.Account{}, err
	}
	balance, err := parseAmount("balance", record[colAcctBalance])
	if err != nil {
		return model.Account{}, err
	}
	favorite, err := parseBool("is_favorite", record[colAcctFavorite])
	if err != nil {
		return model.Account{}, err
	}

	return model.Account{
		ID:             record[0],
		Name:           record[colAcctName],
		BankID:         record[colAcctBank],
		InitialBalance: initial,
		Balance:        balance,
		IsFavorite:     favorite,
		Context:        model.Context(record[colAcctContext]),
	}, nil
}

const (
	goalFields     = 6
	colGoalName    = 1
	colGoalTarget  = 2
	colGoalCurrent = 3
	colGoalDue     = 4
	colGoalContext = 5
)

// ReadGoals reads goals.csv.
func ReadGoals(r io.Reader) ([]model.Goal, error) {
	goals, err := readTable(r, GoalsHeader, UnmarshalGoal)
	if err != nil {
		return nil, fmt.Errorf("goals: %w", err)
	}
	return goals, nil
}

// WriteGoals writes goals.csv.
func WriteGoals(w io.Writer, goals []model.Goal) error {
	return writeTable(w, GoalsHeader, goals, MarshalGoal)
}

// MarshalGoal converts a Goal to a CSV row.
func MarshalGoal(g model.Goal) []string {
	row := make([]string, goalFields)
	row[0] = g.ID
	row[colGoalName] = g.Name
	row[colGoalTarget] = formatAmount(g.TargetAmount)
	row[colGoalCurrent] = formatAmount(g.CurrentAmount)
	row[colGoalDue] = formatDate(g.Deadline)
	row[colGoalContext] = string(g.Context)
	return row
}

// UnmarshalGoal converts a CSV row to a Goal.
func UnmarshalGoal(record []string) (model.Goal, error) {
	if len(record) != goalFields {
		return model.Goal{}, fmt.Errorf("expected %d fields, got %d", goalFields, len(record))
	}
	if err := requireID(record[0]); err != nil {
		return model.Goal{}, err
	}

	target, err := parseAmount("target_amount", record[colGoalTarget])
	if err != nil {
		return model.Goal{}, err
	}
	current, err := parseAmount("current_amount", record[colGoalCurrent])
	if err != nil {
		return model.Goal{}, err
	}
	deadline, err := parseDate("deadline", record[colGoalDue])
	if err != nil {
		return model.Goal{}, err
	}

	return model.Goal{
		ID:            record[0],
		Name:          record[colGoalName],
		TargetAmount:  target,
		CurrentAmount: current,
		Deadline:      deadline,
		Context:       model.Context(record[colGoalContext]),
	}, nil
}
