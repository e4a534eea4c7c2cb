package repositories

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/openbooks/ledger_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// AccountReader defines read operations for account data.
type AccountReader interface {
	// FindAccountByID retrieves a specific account by its code.
	FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error)

	// FindAccountsByIDs retrieves multiple accounts by their codes. Codes
	// that do not exist are simply absent from the returned map.
	FindAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error)

	// ListAccounts retrieves all accounts ordered by code ascending.
	ListAccounts(ctx context.Context) ([]domain.Account, error)

	// HasChildAccounts reports whether any account references accountID as
	// its parent.
	HasChildAccounts(ctx context.Context, accountID string) (bool, error)
}

// AccountWriter defines write operations for account data.
type AccountWriter interface {
	// SaveAccount persists a new account. Returns apperrors.ErrDuplicate if
	// the code is already taken.
	SaveAccount(ctx context.Context, account domain.Account) error

	// UpdateAccount updates an existing account's editable fields. When
	// recomputeBalance is true the cached balance is recalculated from the
	// account's entries under its (possibly changed) type, in the same
	// statement batch.
	UpdateAccount(ctx context.Context, account domain.Account, recomputeBalance bool) error

	// DeleteAccount removes an account. It fails with apperrors.ErrConflict
	// if the cached balance is nonzero, if any account references it as
	// parent, or if posted entries still reference it; all checks run inside
	// one database transaction with the account row locked.
	DeleteAccount(ctx context.Context, accountID string) error

	// SetAccountActive flips the active flag. Idempotent: setting the flag
	// to its current value succeeds without effect.
	SetAccountActive(ctx context.Context, accountID string, active bool, now time.Time) error
}

// AccountTransactionSupport defines the operations transaction posting needs
// from the account store while holding a database transaction.
type AccountTransactionSupport interface {
	// FindAccountsByIDsForUpdate selects accounts and locks their rows for
	// update within tx. Fails with apperrors.ErrReference if any requested
	// account is missing.
	FindAccountsByIDsForUpdate(ctx context.Context, tx pgx.Tx, accountIDs []string) (map[string]domain.Account, error)

	// UpdateAccountBalancesInTx applies signed balance deltas to multiple
	// accounts within tx.
	UpdateAccountBalancesInTx(ctx context.Context, tx pgx.Tx, balanceChanges map[string]decimal.Decimal, now time.Time) error
}

// AccountRepositoryFacade combines all account repository interfaces.
type AccountRepositoryFacade interface {
	AccountReader
	AccountWriter
	AccountTransactionSupport
}
