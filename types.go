package cardledger

import (
	"github.com/cardledger/cardledger/internal/invoice"
	"github.com/cardledger/cardledger/internal/ledger"
	"github.com/cardledger/cardledger/internal/model"
	"github.com/cardledger/cardledger/internal/summary"
)

// Domain types.
type (
	Transaction     = model.Transaction
	CreditCard      = model.CreditCard
	Account         = model.Account
	Goal            = model.Goal
	Snapshot        = model.Snapshot
	Installments    = model.Installments
	Recurrence      = model.Recurrence
	State           = model.State
	Context         = model.Context
	TransactionType = model.TransactionType
	SubType         = model.SubType
	PaymentMethod   = model.PaymentMethod

	Store     = ledger.Store
	Filter    = ledger.Filter
	Statement = invoice.Statement
	Overview  = summary.Overview
)

// Errors returned by Store operations.
type (
	InsufficientBalanceError      = ledger.InsufficientBalanceError
	InsufficientCreditLimitError  = ledger.InsufficientCreditLimitError
	InvalidCardConfigurationError = ledger.InvalidCardConfigurationError
	NotFoundError                 = ledger.NotFoundError
)

var (
	ErrInvalidTransaction = model.ErrInvalidTransaction
	ErrDuplicateID        = ledger.ErrDuplicateID
)

const (
	StatePending = model.StatePending
	StateCharged = model.StateCharged
	StateSettled = model.StateSettled

	ContextPersonal = model.ContextPersonal
	ContextBusiness = model.ContextBusiness

	TypeIncome  = model.TypeIncome
	TypeExpense = model.TypeExpense

	SubTypeDaily        = model.SubTypeDaily
	SubTypeFixed        = model.SubTypeFixed
	SubTypeInstallment  = model.SubTypeInstallment
	SubTypeSubscription = model.SubTypeSubscription

	PaymentCredit   = model.PaymentCredit
	PaymentDebit    = model.PaymentDebit
	PaymentCash     = model.PaymentCash
	PaymentPix      = model.PaymentPix
	PaymentTransfer = model.PaymentTransfer
	PaymentBoleto   = model.PaymentBoleto

	FrequencyMonthly = model.FrequencyMonthly
)
