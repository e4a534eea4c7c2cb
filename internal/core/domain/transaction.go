package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction represents a single, balanced financial event composed of two
// or more entries. The sum of debits always equals the sum of credits across
// Entries, and that sum is strictly positive.
type Transaction struct {
	TransactionID string    `json:"transactionID"` // Primary key (UUID)
	Date          time.Time `json:"date"`
	Description   string    `json:"description"`
	Reference     string    `json:"reference"` // Optional external reference
	AuditFields

	Entries []Entry `json:"entries"` // In original insertion order
}

// TotalDebits returns the sum of the debit side of the transaction, which for
// a balanced transaction is its economic value.
func (t Transaction) TotalDebits() decimal.Decimal {
	sum := decimal.Zero
	for _, e := range t.Entries {
		sum = sum.Add(e.Debit)
	}
	return sum
}

// Entry is one debit or credit line within a transaction. Entries are owned
// by their transaction and have no existence outside it. Exactly one of
// Debit/Credit is nonzero.
type Entry struct {
	EntryID       string          `json:"entryID"`
	TransactionID string          `json:"transactionID"`
	AccountID     string          `json:"accountID"`
	Debit         decimal.Decimal `json:"debit"`
	Credit        decimal.Decimal `json:"credit"`
	Description   string          `json:"description"`
	LineNo        int             `json:"lineNo"` // 1-based position within the transaction
}

// LedgerLine is one row of an account's transaction history: an entry joined
// with its transaction header, annotated with the signed effect on the
// account and the running balance after it.
type LedgerLine struct {
	TransactionID    string          `json:"transactionID"`
	Date             time.Time       `json:"date"`
	Description      string          `json:"description"`
	Reference        string          `json:"reference"`
	EntryDescription string          `json:"entryDescription"`
	Debit            decimal.Decimal `json:"debit"`
	Credit           decimal.Decimal `json:"credit"`
	Effect           decimal.Decimal `json:"effect"`
	RunningBalance   decimal.Decimal `json:"runningBalance"`
}
