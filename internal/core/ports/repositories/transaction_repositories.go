package repositories

import (
	"context"

	"github.com/openbooks/ledger_app/internal/core/domain"
)

// TransactionReader defines read operations for transaction data.
type TransactionReader interface {
	// FindTransactionByID retrieves a transaction with its entries in
	// original insertion order.
	FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error)

	// ListTransactions retrieves a page of transactions ordered by date
	// descending, then id descending, with entries attached in line order.
	ListTransactions(ctx context.Context, limit, offset int) ([]domain.Transaction, error)

	// CountTransactions returns the total number of persisted transactions.
	CountTransactions(ctx context.Context) (int64, error)

	// CountTransactionsForAccount returns the number of distinct
	// transactions referencing the account in any entry.
	CountTransactionsForAccount(ctx context.Context, accountID string) (int64, error)

	// ListEntriesByAccount retrieves entries referencing the account joined
	// with their transaction headers, oldest first, capped at limit.
	ListEntriesByAccount(ctx context.Context, accountID string, limit int) ([]domain.LedgerLine, error)
}

// TransactionWriter defines write operations for transaction data. Every
// method executes as a single database transaction that locks the referenced
// account rows, re-verifies that they exist and are active, adjusts cached
// balances by the net signed effect, and persists the entry changes. No
// reader ever observes a partially applied transaction.
type TransactionWriter interface {
	// SaveTransaction persists a new transaction and its entries.
	SaveTransaction(ctx context.Context, txn domain.Transaction) error

	// ReplaceTransaction atomically swaps the stored transaction's header
	// and full entry set for the given ones. Fails with
	// apperrors.ErrNotFound if the transaction does not exist.
	ReplaceTransaction(ctx context.Context, txn domain.Transaction) error

	// DeleteTransaction removes the transaction and all its entries,
	// reversing their effect on account balances.
	DeleteTransaction(ctx context.Context, transactionID string) error
}

// TransactionRepositoryFacade combines all transaction repository interfaces.
type TransactionRepositoryFacade interface {
	TransactionReader
	TransactionWriter
}
