package services

import (
	"context"
	"iter"

	"github.com/openbooks/ledger_app/internal/core/domain"
	"github.com/openbooks/ledger_app/internal/dto"
	"github.com/shopspring/decimal"
)

// QuerySvcFacade defines the read-side queries that cut across accounts and
// transactions: paging through the journal and reconstructing per-account
// history.
type QuerySvcFacade interface {
	// ListTransactions retrieves one page of transactions, newest first.
	// A page past the end returns an empty page with correct metadata.
	ListTransactions(ctx context.Context, page, pageSize int) (*dto.ListTransactionsResponse, error)

	// CountTransactionsForAccount returns how many distinct transactions
	// reference the account in any entry.
	CountTransactionsForAccount(ctx context.Context, accountID string) (int64, error)

	// ListAccountEntries returns the account's entry history oldest first,
	// each line annotated with its signed effect and the running balance
	// after it, capped at limit (<=0 means no cap).
	ListAccountEntries(ctx context.Context, accountID string, limit int) (*dto.ListLedgerLinesResponse, error)

	// GetAccountBalance returns the account's balance under its normal
	// balance convention.
	GetAccountBalance(ctx context.Context, accountID string) (decimal.Decimal, error)

	// ListHierarchy yields the chart of accounts in depth-first preorder,
	// parents before children, siblings by code ascending.
	ListHierarchy(ctx context.Context) (iter.Seq[domain.Account], error)
}
