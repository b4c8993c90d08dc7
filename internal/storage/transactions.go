package storage

import (
	"fmt"
	"io"
	"strconv"

	"github.com/cardledger/cardledger/internal/model"
)

// TransactionsHeader is the CSV header for transactions.csv.
const TransactionsHeader = "id,type,sub_type,amount,date,category,description,payment_method,card_id,account_id,context,status,is_paid,installment_current,installment_total,recurrence_frequency,recurrence_day,recurrence_infinite,goal_id"

const (
	txnFields      = 19
	colTxnID       = 0
	colType        = 1
	colSubType     = 2
	colAmount      = 3
	colDate        = 4
	colCategory    = 5
	colDesc        = 6
	colMethod      = 7
	colCardID      = 8
	colAccountID   = 9
	colContext     = 10
	colStatus      = 11
	colIsPaid      = 12
	colInstCurrent = 13
	colInstTotal   = 14
	colRecFreq     = 15
	colRecDay      = 16
	colRecInfinite = 17
	colGoalID      = 18
)

// ReadTransactions reads all transactions from a transactions.csv reader.
func ReadTransactions(r io.Reader) ([]model.Transaction, error) {
	txns, err := readTable(r, TransactionsHeader, UnmarshalTransaction)
	if err != nil {
		return nil, fmt.Errorf("transactions: %w", err)
	}
	return txns, nil
}

// WriteTransactions writes transactions.csv including the header.
func WriteTransactions(w io.Writer, txns []model.Transaction) error {
	return writeTable(w, TransactionsHeader, txns, MarshalTransaction)
}

// MarshalTransaction converts a Transaction to a CSV row. The settlement
// state is stored as the status and is_paid pair.
func MarshalTransaction(t model.Transaction) []string {
	row := make([]string, txnFields)
	row[colTxnID] = t.ID
	row[colType] = string(t.Type)
	row[colSubType] = string(t.SubType)
	row[colAmount] = formatAmount(t.Amount)
	row[colDate] = formatDate(t.Date)
	row[colCategory] = t.Category
	row[colDesc] = t.Description
	row[colMethod] = string(t.PaymentMethod)
	row[colCardID] = t.CardID
	row[colAccountID] = t.AccountID
	row[colContext] = string(t.Context)
	row[colStatus] = string(t.Status())
	row[colIsPaid] = strconv.FormatBool(t.IsPaid())

	if inst := t.Installments; inst != nil {
		row[colInstCurrent] = strconv.Itoa(inst.Current)
		row[colInstTotal] = strconv.Itoa(inst.Total)
	}
	if rec := t.Recurrence; rec != nil {
		row[colRecFreq] = string(rec.Frequency)
		row[colRecDay] = formatInt(rec.Day)
		row[colRecInfinite] = strconv.FormatBool(rec.Infinite)
	}

	row[colGoalID] = t.GoalID
	return row
}

// UnmarshalTransaction converts a CSV row to a Transaction.
func UnmarshalTransaction(record []string) (model.Transaction, error) {
	if len(record) != txnFields {
		return model.Transaction{}, fmt.Errorf("expected %d fields, got %d", txnFields, len(record))
	}
	if err := requireID(record[colTxnID]); err != nil {
		return model.Transaction{}, err
	}

	amount, err := parseAmount("amount", record[colAmount])
	if err != nil {
		return model.Transaction{}, err
	}
	date, err := parseDate("date", record[colDate])
	if err != nil {
		return model.Transaction{}, err
	}
	isPaid, err := parseBool("is_paid", record[colIsPaid])
	if err != nil {
		return model.Transaction{}, err
	}
	state, err := model.StateOf(model.Status(record[colStatus]), isPaid)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("transaction %s: %w", record[colTxnID], err)
	}

	t := model.Transaction{
		ID:            record[colTxnID],
		Type:          model.TransactionType(record[colType]),
		SubType:       model.SubType(record[colSubType]),
		Amount:        amount,
		Date:          date,
		Category:      record[colCategory],
		Description:   record[colDesc],
		PaymentMethod: model.PaymentMethod(record[colMethod]),
		CardID:        record[colCardID],
		AccountID:     record[colAccountID],
		Context:       model.Context(record[colContext]),
		State:         state,
		GoalID:        record[colGoalID],
	}

	if record[colInstTotal] != "" {
		current, err := parseInt("installment_current", record[colInstCurrent])
		if err != nil {
			return model.Transaction{}, err
		}
		total, err := parseInt("installment_total", record[colInstTotal])
		if err != nil {
			return model.Transaction{}, err
		}
		t.Installments = &model.Installments{Current: current, Total: total}
	}

	if record[colRecFreq] != "" {
		day, err := parseInt("recurrence_day", record[colRecDay])
		if err != nil {
			return model.Transaction{}, err
		}
		infinite, err := parseBool("recurrence_infinite", record[colRecInfinite])
		if err != nil {
			return model.Transaction{}, err
		}
		t.Recurrence = &model.Recurrence{
			Frequency: model.Frequency(record[colRecFreq]),
			Day:       day,
			Infinite:  infinite,
		}
	}

	return t, nil
}
