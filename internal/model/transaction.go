package model

import (
	"errors"
	"fmt"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

// ErrInvalidTransaction is wrapped by every shape violation reported by Transaction.Validate.
var ErrInvalidTransaction = errors.New("invalid transaction")

// TransactionType is the direction of a money movement.
type TransactionType string

const (
	TypeIncome  TransactionType = "income"
	TypeExpense TransactionType = "expense"
)

// SubType determines how a transaction is expanded on insert.
type SubType string

const (
	SubTypeDaily        SubType = "daily"
	SubTypeFixed        SubType = "fixed"
	SubTypeInstallment  SubType = "installment"
	SubTypeSubscription SubType = "subscription"
)

// PaymentMethod is how a transaction is paid.
type PaymentMethod string

const (
	PaymentCredit   PaymentMethod = "credit"
	PaymentDebit    PaymentMethod = "debit"
	PaymentCash     PaymentMethod = "cash"
	PaymentPix      PaymentMethod = "pix"
	PaymentTransfer PaymentMethod = "transfer"
	PaymentBoleto   PaymentMethod = "boleto"
)

// Context partitions personal and business finances.
type Context string

const (
	ContextPersonal Context = "PF"
	ContextBusiness Context = "PJ"
)

// Frequency of a recurrence. Only monthly is supported.
type Frequency string

const FrequencyMonthly Frequency = "monthly"

// Installments places one instance inside an installment plan.
type Installments struct {
	Current int
	Total   int
}

// Recurrence is carried by a template that expands into monthly instances.
type Recurrence struct {
	Frequency Frequency
	Day       int // 0 = day of the template date
	Infinite  bool
}

// Transaction is one dated money movement. Amount is always positive; the
// sign comes from Type.
type Transaction struct {
	ID            string
	Type          TransactionType
	SubType       SubType
	Amount        decimal.Decimal
	Date          civil.Date
	Category      string
	Description   string
	PaymentMethod PaymentMethod
	CardID        string // set iff PaymentMethod == PaymentCredit
	AccountID     string
	Context       Context
	State         State
	Installments  *Installments
	Recurrence    *Recurrence
	GoalID        string
}

// Status is the workflow axis of State.
func (t Transaction) Status() Status { return t.State.Status() }

// IsPaid reports whether money has actually moved.
func (t Transaction) IsPaid() bool { return t.State.IsPaid() }

// IsCredit reports whether the transaction is charged to a credit card.
func (t Transaction) IsCredit() bool { return t.PaymentMethod == PaymentCredit }

// SignedAmount returns Amount for income and -Amount for expenses.
func (t Transaction) SignedAmount() decimal.Decimal {
	if t.Type == TypeExpense {
		return t.Amount.Neg()
	}
	return t.Amount
}

// NeedsExpansion reports whether inserting t produces more than one instance.
func (t Transaction) NeedsExpansion() bool {
	if t.Installments != nil && t.Installments.Total > 1 {
		return true
	}
	if t.SubType == SubTypeFixed || t.SubType == SubTypeSubscription {
		return true
	}
	return t.Recurrence != nil
}

// Clone returns a copy that shares no pointers with t.
func (t Transaction) Clone() Transaction {
	c := t
	if t.Installments != nil {
		inst := *t.Installments
		c.Installments = &inst
	}
	if t.Recurrence != nil {
		rec := *t.Recurrence
		c.Recurrence = &rec
	}
	return c
}

// Validate checks the shape of a transaction independently of ledger state.
func (t Transaction) Validate() error {
	invalid := func(format string, args ...any) error {
		return fmt.Errorf("%w: %s", ErrInvalidTransaction, fmt.Sprintf(format, args...))
	}

	switch t.Type {
	case TypeIncome, TypeExpense:
	default:
		return invalid("unknown type %q", t.Type)
	}
	switch t.SubType {
	case SubTypeDaily, SubTypeFixed, SubTypeInstallment, SubTypeSubscription:
	default:
		return invalid("unknown sub type %q", t.SubType)
	}
	switch t.PaymentMethod {
	case PaymentCredit, PaymentDebit, PaymentCash, PaymentPix, PaymentTransfer, PaymentBoleto:
	default:
		return invalid("unknown payment method %q", t.PaymentMethod)
	}
	switch t.Context {
	case ContextPersonal, ContextBusiness:
	default:
		return invalid("unknown context %q", t.Context)
	}
	if _, err := ParseState(string(t.State)); err != nil {
		return invalid("%v", err)
	}
	if !t.Amount.IsPositive() {
		return invalid("amount must be positive, got %s", t.Amount)
	}
	if !t.Amount.Equal(t.Amount.Truncate(2)) {
		return invalid("amount %s has more than 2 decimal places", t.Amount)
	}
	if !t.Date.IsValid() {
		return invalid("invalid date %s", t.Date)
	}
	if t.IsCredit() && t.CardID == "" {
		return invalid("credit transaction without card")
	}
	if !t.IsCredit() && t.CardID != "" {
		return invalid("card %s set on %s transaction", t.CardID, t.PaymentMethod)
	}
	if inst := t.Installments; inst != nil {
		if inst.Total < 1 || inst.Current < 1 || inst.Current > inst.Total {
			return invalid("installment %d/%d out of range", inst.Current, inst.Total)
		}
	}
	if rec := t.Recurrence; rec != nil {
		if rec.Frequency != FrequencyMonthly {
			return invalid("unsupported recurrence frequency %q", rec.Frequency)
		}
		if rec.Day < 0 || rec.Day > 31 {
			return invalid("recurrence day %d out of range", rec.Day)
		}
	}
	return nil
}
