package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction represents a balanced financial event. Its entry lines live in
// Entry rows keyed by TransactionID.
type Transaction struct {
	TransactionID string    `db:"transaction_id"` // Primary key (UUID)
	Date          time.Time `db:"date"`
	Description   string    `db:"description"`
	Reference     string    `db:"reference"` // Nullable
	AuditFields
}

// Entry represents a single debit or credit line within a transaction.
// Exactly one of Debit/Credit is nonzero.
type Entry struct {
	EntryID       string          `db:"entry_id"`       // Primary key (UUID)
	TransactionID string          `db:"transaction_id"` // FK -> Transaction, cascade on delete
	AccountID     string          `db:"account_id"`     // FK -> Account, restrict on delete
	Debit         decimal.Decimal `db:"debit"`
	Credit        decimal.Decimal `db:"credit"`
	Description   string          `db:"description"` // Nullable
	LineNo        int             `db:"line_no"`     // 1-based position, preserves insertion order
}
