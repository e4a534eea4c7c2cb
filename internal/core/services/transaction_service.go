package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/openbooks/ledger_app/internal/apperrors"
	"github.com/openbooks/ledger_app/internal/core/domain"
	portsrepo "github.com/openbooks/ledger_app/internal/core/ports/repositories"
	portssvc "github.com/openbooks/ledger_app/internal/core/ports/services"
	"github.com/openbooks/ledger_app/internal/dto"
	"github.com/openbooks/ledger_app/internal/middleware"
	"github.com/openbooks/ledger_app/internal/utils/accounting"
)

// transactionService provides posting, editing and deletion of balanced
// transactions.
type transactionService struct {
	txnRepo     portsrepo.TransactionRepositoryFacade
	accountRepo portsrepo.AccountReader
}

// NewTransactionService creates a new transaction service.
func NewTransactionService(txnRepo portsrepo.TransactionRepositoryFacade, accountRepo portsrepo.AccountReader) portssvc.TransactionSvcFacade {
	return &transactionService{txnRepo: txnRepo, accountRepo: accountRepo}
}

// Ensure transactionService implements the portssvc.TransactionSvcFacade interface
var _ portssvc.TransactionSvcFacade = (*transactionService)(nil)

// GetTransactionByID retrieves a transaction with its entries.
func (s *transactionService) GetTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	logger := middleware.GetLoggerFromCtx(ctx)
	txn, err := s.txnRepo.FindTransactionByID(ctx, transactionID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			logger.Error("Failed to find transaction by ID in repository", slog.String("error", err.Error()), slog.String("transaction_id", transactionID))
		}
		return nil, err
	}
	return txn, nil
}

// PostTransaction validates and persists a new transaction. The repository
// applies the entry inserts and the balance adjustments in one database
// transaction against locked account rows.
func (s *transactionService) PostTransaction(ctx context.Context, req dto.CreateTransactionRequest) (*domain.Transaction, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	transactionID := uuid.NewString()
	entries, err := s.buildEntries(ctx, transactionID, req.Entries)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	txn := domain.Transaction{
		TransactionID: transactionID,
		Date:          req.Date,
		Description:   req.Description,
		Reference:     req.Reference,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			LastUpdatedAt: now,
		},
		Entries: entries,
	}

	if err := s.txnRepo.SaveTransaction(ctx, txn); err != nil {
		if !errors.Is(err, apperrors.ErrReference) {
			logger.Error("Failed to save transaction in repository", slog.String("error", err.Error()), slog.String("transaction_id", txn.TransactionID))
		}
		return nil, err
	}

	logger.Info("Transaction posted", slog.String("transaction_id", txn.TransactionID), slog.Int("entry_count", len(txn.Entries)))
	return &txn, nil
}

// UpdateTransaction replaces the stored entry set with the given one and
// applies any header fields present in the request. The entries are validated
// exactly like a fresh posting; nothing of the old entry set survives into
// the check.
func (s *transactionService) UpdateTransaction(ctx context.Context, transactionID string, req dto.UpdateTransactionRequest) (*domain.Transaction, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	existing, err := s.txnRepo.FindTransactionByID(ctx, transactionID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			logger.Error("Failed to find transaction for update", slog.String("error", err.Error()), slog.String("transaction_id", transactionID))
		}
		return nil, err
	}

	entries, err := s.buildEntries(ctx, transactionID, req.Entries)
	if err != nil {
		return nil, err
	}

	txn := domain.Transaction{
		TransactionID: transactionID,
		Date:          existing.Date,
		Description:   existing.Description,
		Reference:     existing.Reference,
		AuditFields: domain.AuditFields{
			CreatedAt:     existing.CreatedAt,
			LastUpdatedAt: time.Now(),
		},
		Entries: entries,
	}
	if req.Date != nil {
		txn.Date = *req.Date
	}
	if req.Description != nil {
		txn.Description = *req.Description
	}
	if req.Reference != nil {
		txn.Reference = *req.Reference
	}

	if err := s.txnRepo.ReplaceTransaction(ctx, txn); err != nil {
		if !errors.Is(err, apperrors.ErrReference) && !errors.Is(err, apperrors.ErrNotFound) {
			logger.Error("Failed to replace transaction in repository", slog.String("error", err.Error()), slog.String("transaction_id", transactionID))
		}
		return nil, err
	}

	logger.Info("Transaction updated", slog.String("transaction_id", transactionID), slog.Int("entry_count", len(txn.Entries)))
	return &txn, nil
}

// DeleteTransaction removes a transaction, reversing its balance effects.
func (s *transactionService) DeleteTransaction(ctx context.Context, transactionID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)
	if err := s.txnRepo.DeleteTransaction(ctx, transactionID); err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			logger.Error("Failed to delete transaction in repository", slog.String("error", err.Error()), slog.String("transaction_id", transactionID))
		}
		return err
	}
	logger.Info("Transaction deleted", slog.String("transaction_id", transactionID))
	return nil
}

// buildEntries converts request lines into domain entries, runs the
// double-entry checks and verifies every referenced account exists and is
// active. Amounts are normalized to currency precision before persistence.
// The account check here gives a friendly error early; the repository
// re-verifies under row locks, so a concurrent deactivation still cannot
// slip through.
func (s *transactionService) buildEntries(ctx context.Context, transactionID string, reqEntries []dto.CreateEntryRequest) ([]domain.Entry, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	entries := make([]domain.Entry, 0, len(reqEntries))
	for i, re := range reqEntries {
		entries = append(entries, domain.Entry{
			EntryID:       uuid.NewString(),
			TransactionID: transactionID,
			AccountID:     re.AccountID,
			Debit:         re.Debit,
			Credit:        re.Credit,
			Description:   re.Description,
			LineNo:        i + 1,
		})
	}

	if err := accounting.ValidateEntries(entries); err != nil {
		return nil, err
	}
	for i := range entries {
		entries[i].Debit = accounting.Normalize(entries[i].Debit)
		entries[i].Credit = accounting.Normalize(entries[i].Credit)
	}

	accountIDs := make([]string, 0, len(entries))
	seen := make(map[string]bool, len(entries))
	for _, e := range entries {
		if !seen[e.AccountID] {
			seen[e.AccountID] = true
			accountIDs = append(accountIDs, e.AccountID)
		}
	}

	accounts, err := s.accountRepo.FindAccountsByIDs(ctx, accountIDs)
	if err != nil {
		logger.Error("Failed to fetch accounts for posting", slog.String("error", err.Error()))
		return nil, err
	}
	for _, id := range accountIDs {
		account, ok := accounts[id]
		if !ok {
			return nil, fmt.Errorf("account %s does not exist: %w", id, apperrors.ErrReference)
		}
		if !account.IsActive {
			return nil, fmt.Errorf("account %s is inactive: %w", id, apperrors.ErrReference)
		}
	}

	return entries, nil
}
