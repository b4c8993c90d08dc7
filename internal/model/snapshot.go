package model

// Snapshot is the complete persisted state of a ledger.
type Snapshot struct {
	Transactions []Transaction
	Cards        []CreditCard
	Accounts     []Account
	Goals        []Goal
}

// Clone returns a deep copy of s.
func (s Snapshot) Clone() Snapshot {
	c := Snapshot{
		Transactions: make([]Transaction, len(s.Transactions)),
		Cards:        append([]CreditCard(nil), s.Cards...),
		Accounts:     append([]Account(nil), s.Accounts...),
		Goals:        append([]Goal(nil), s.Goals...),
	}
	for i, t := range s.Transactions {
		c.Transactions[i] = t.Clone()
	}
	return c
}
