package services

import (
	"context"
	"iter"

	"github.com/openbooks/ledger_app/internal/core/domain"
	"github.com/openbooks/ledger_app/internal/dto"
	"github.com/shopspring/decimal"
)

// AccountReaderSvc defines read operations for account data
type AccountReaderSvc interface {
	// GetAccountByID retrieves a specific account by its code.
	GetAccountByID(ctx context.Context, accountID string) (*domain.Account, error)

	// GetAccountsByIDs retrieves multiple accounts by their codes.
	GetAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error)

	// ListHierarchy yields the full chart of accounts in depth-first
	// preorder: each parent before its children, siblings by code ascending.
	// The sequence is built over a committed snapshot and can be iterated
	// more than once.
	ListHierarchy(ctx context.Context) (iter.Seq[domain.Account], error)
}

// AccountWriterSvc defines write operations for account data
type AccountWriterSvc interface {
	// CreateAccount persists a new account.
	CreateAccount(ctx context.Context, req dto.CreateAccountRequest) (*domain.Account, error)

	// UpdateAccount updates an existing account's editable fields.
	UpdateAccount(ctx context.Context, accountID string, req dto.UpdateAccountRequest) (*domain.Account, error)

	// DeleteAccount removes an account that carries no balance, no children
	// and no posted entries.
	DeleteAccount(ctx context.Context, accountID string) error

	// SetAccountActive activates or deactivates an account. Deactivation
	// blocks new entries but leaves history and balance intact.
	SetAccountActive(ctx context.Context, accountID string, active bool) (*domain.Account, error)

	// ToggleAccount flips the account's active flag.
	ToggleAccount(ctx context.Context, accountID string) (*domain.Account, error)
}

// AccountCalculatorSvc defines calculation operations for account data
type AccountCalculatorSvc interface {
	// GetAccountBalance returns the account's current balance under its
	// normal balance convention.
	GetAccountBalance(ctx context.Context, accountID string) (decimal.Decimal, error)
}

// AccountSvcFacade combines all account-related service interfaces
type AccountSvcFacade interface {
	AccountReaderSvc
	AccountWriterSvc
	AccountCalculatorSvc
}
