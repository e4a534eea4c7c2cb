package domain

import (
	"github.com/shopspring/decimal"
)

// AccountType defines the fundamental accounting type of an account.
type AccountType string

const (
	Asset     AccountType = "ASSET"
	Liability AccountType = "LIABILITY"
	Equity    AccountType = "EQUITY"
	Revenue   AccountType = "REVENUE"
	Expense   AccountType = "EXPENSE"
)

// IsValid reports whether t is one of the closed set of account types.
func (t AccountType) IsValid() bool {
	switch t {
	case Asset, Liability, Equity, Revenue, Expense:
		return true
	}
	return false
}

// IsDebitNormal reports whether accounts of this type carry a normal debit
// balance. Assets and expenses increase with debits; liabilities, equity and
// revenue increase with credits.
func (t AccountType) IsDebitNormal() bool {
	return t == Asset || t == Expense
}

// Account represents one bucket in the chart of accounts. The AccountID is a
// caller-supplied code (e.g. "1110") and is immutable after creation, as is
// CreatedAt. Accounts form a forest via ParentAccountID; the parent graph is
// kept acyclic by the account service.
type Account struct {
	AccountID       string      `json:"accountID"`
	Name            string      `json:"name"`
	AccountType     AccountType `json:"accountType"`
	ParentAccountID string      `json:"parentAccountID"` // Empty when the account is a root
	Description     string      `json:"description"`
	IsActive        bool        `json:"isActive"` // Inactive accounts reject new entries
	AuditFields

	// Balance is the signed sum of all posted entries referencing this
	// account, cached for read performance. It is only ever written inside
	// the same database transaction that changes the underlying entries.
	Balance decimal.Decimal `json:"balance"`
}
