package services

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"

	"github.com/openbooks/ledger_app/internal/apperrors"
	"github.com/openbooks/ledger_app/internal/core/domain"
	portsrepo "github.com/openbooks/ledger_app/internal/core/ports/repositories"
	portssvc "github.com/openbooks/ledger_app/internal/core/ports/services"
	"github.com/openbooks/ledger_app/internal/dto"
	"github.com/openbooks/ledger_app/internal/middleware"
	"github.com/openbooks/ledger_app/internal/utils/accounting"
	"github.com/openbooks/ledger_app/internal/utils/pagination"
	"github.com/shopspring/decimal"
)

// queryService provides the read-side queries over the journal and per
// account history. Balance and hierarchy lookups are forwarded to the
// account service so there is a single implementation of each.
type queryService struct {
	txnRepo     portsrepo.TransactionReader
	accountRepo portsrepo.AccountReader
	accountSvc  portssvc.AccountSvcFacade
}

// NewQueryService creates a new query service.
func NewQueryService(txnRepo portsrepo.TransactionReader, accountRepo portsrepo.AccountReader, accountSvc portssvc.AccountSvcFacade) portssvc.QuerySvcFacade {
	return &queryService{txnRepo: txnRepo, accountRepo: accountRepo, accountSvc: accountSvc}
}

// Ensure queryService implements the portssvc.QuerySvcFacade interface
var _ portssvc.QuerySvcFacade = (*queryService)(nil)

// ListTransactions retrieves one page of transactions, newest first. The
// count and the page read are two queries, so the metadata can lag a
// concurrent posting by one item; page math stays consistent either way.
func (s *queryService) ListTransactions(ctx context.Context, page, pageSize int) (*dto.ListTransactionsResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)
	if page < 1 {
		return nil, apperrors.NewValidationError("invalid_page",
			fmt.Sprintf("page must be at least 1, got %d", page))
	}
	if pageSize < 1 {
		return nil, apperrors.NewValidationError("invalid_page_size",
			fmt.Sprintf("pageSize must be at least 1, got %d", pageSize))
	}
	pageSize = pagination.CapPageSize(pageSize)

	total, err := s.txnRepo.CountTransactions(ctx)
	if err != nil {
		logger.Error("Failed to count transactions", slog.String("error", err.Error()))
		return nil, err
	}

	totalPages := pagination.TotalPages(total, pageSize)
	resp := &dto.ListTransactionsResponse{
		Transactions: []dto.TransactionResponse{},
		Page:         page,
		PageSize:     pageSize,
		TotalItems:   total,
		TotalPages:   totalPages,
		HasPrev:      pagination.HasPrev(page),
		HasNext:      pagination.HasNext(page, totalPages),
	}

	offset := pagination.Offset(page, pageSize)
	if int64(offset) >= total {
		// A page past the end is an empty page, not an error.
		return resp, nil
	}

	txns, err := s.txnRepo.ListTransactions(ctx, pageSize, offset)
	if err != nil {
		logger.Error("Failed to list transactions", slog.String("error", err.Error()), slog.Int("page", page), slog.Int("page_size", pageSize))
		return nil, err
	}
	for i := range txns {
		resp.Transactions = append(resp.Transactions, dto.ToTransactionResponse(&txns[i]))
	}
	return resp, nil
}

// CountTransactionsForAccount returns how many distinct transactions touch
// the account.
func (s *queryService) CountTransactionsForAccount(ctx context.Context, accountID string) (int64, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if _, err := s.accountRepo.FindAccountByID(ctx, accountID); err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			logger.Error("Failed to find account for transaction count", slog.String("error", err.Error()), slog.String("account_id", accountID))
		}
		return 0, err
	}

	count, err := s.txnRepo.CountTransactionsForAccount(ctx, accountID)
	if err != nil {
		logger.Error("Failed to count transactions for account", slog.String("error", err.Error()), slog.String("account_id", accountID))
		return 0, err
	}
	return count, nil
}

// ListAccountEntries reconstructs the account's history oldest first with a
// running balance after each line. The final running balance equals the
// cached account balance; both derive from the same posted entries.
func (s *queryService) ListAccountEntries(ctx context.Context, accountID string, limit int) (*dto.ListLedgerLinesResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			logger.Error("Failed to find account for entry history", slog.String("error", err.Error()), slog.String("account_id", accountID))
		}
		return nil, err
	}

	lines, err := s.txnRepo.ListEntriesByAccount(ctx, accountID, limit)
	if err != nil {
		logger.Error("Failed to list entries for account", slog.String("error", err.Error()), slog.String("account_id", accountID))
		return nil, err
	}

	running := decimal.Zero
	for i := range lines {
		effect, err := accounting.SignedAmount(domain.Entry{
			AccountID: accountID,
			Debit:     lines[i].Debit,
			Credit:    lines[i].Credit,
		}, account.AccountType)
		if err != nil {
			return nil, err
		}
		running = running.Add(effect)
		lines[i].Effect = effect
		lines[i].RunningBalance = running
	}

	if lines == nil {
		lines = []domain.LedgerLine{}
	}
	return &dto.ListLedgerLinesResponse{AccountID: accountID, Lines: lines}, nil
}

// GetAccountBalance forwards to the account service's balance lookup.
func (s *queryService) GetAccountBalance(ctx context.Context, accountID string) (decimal.Decimal, error) {
	return s.accountSvc.GetAccountBalance(ctx, accountID)
}

// ListHierarchy forwards to the account service's hierarchy listing.
func (s *queryService) ListHierarchy(ctx context.Context) (iter.Seq[domain.Account], error) {
	return s.accountSvc.ListHierarchy(ctx)
}
