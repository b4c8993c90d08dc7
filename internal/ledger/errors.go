package ledger

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/cardledger/cardledger/internal/billing"
)

// ErrDuplicateID is returned when inserting an entity whose id already exists.
var ErrDuplicateID = errors.New("duplicate id")

// InvalidCardConfigurationError reports card days outside 1-31.
type InvalidCardConfigurationError = billing.InvalidCardConfigurationError

// InsufficientBalanceError rejects an expense larger than the account balance.
type InsufficientBalanceError struct {
	AccountID string
	Available decimal.Decimal
	Requested decimal.Decimal
}

func (e InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient balance in account %s: available %s, requested %s",
		e.AccountID, e.Available.StringFixed(2), e.Requested.StringFixed(2))
}

// InsufficientCreditLimitError rejects a charge larger than the card's free limit.
type InsufficientCreditLimitError struct {
	CardID    string
	Available decimal.Decimal
	Requested decimal.Decimal
}

func (e InsufficientCreditLimitError) Error() string {
	return fmt.Sprintf("insufficient credit limit on card %s: available %s, requested %s",
		e.CardID, e.Available.StringFixed(2), e.Requested.StringFixed(2))
}

// Kind names the entity collection a NotFoundError refers to.
type Kind string

const (
	KindTransaction Kind = "transaction"
	KindCard        Kind = "card"
	KindAccount     Kind = "account"
	KindGoal        Kind = "goal"
)

// NotFoundError reports an update or removal of an id the ledger does not hold.
type NotFoundError struct {
	Kind Kind
	ID   string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
}
