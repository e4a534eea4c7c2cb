package services

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"sort"
	"time"

	"github.com/openbooks/ledger_app/internal/apperrors"
	"github.com/openbooks/ledger_app/internal/core/domain"
	portsrepo "github.com/openbooks/ledger_app/internal/core/ports/repositories"
	portssvc "github.com/openbooks/ledger_app/internal/core/ports/services"
	"github.com/openbooks/ledger_app/internal/dto"
	"github.com/openbooks/ledger_app/internal/middleware"
	"github.com/shopspring/decimal"
)

// maxParentDepth caps the ancestor walk during cycle detection. Real charts
// of accounts are a handful of levels deep; hitting the cap means corrupt
// parent data rather than a legitimate hierarchy.
const maxParentDepth = 64

// accountService provides chart of accounts operations.
type accountService struct {
	accountRepo portsrepo.AccountRepositoryFacade
}

// NewAccountService creates a new account service.
func NewAccountService(repo portsrepo.AccountRepositoryFacade) portssvc.AccountSvcFacade {
	return &accountService{accountRepo: repo}
}

// Ensure accountService implements the portssvc.AccountSvcFacade interface
var _ portssvc.AccountSvcFacade = (*accountService)(nil)

// CreateAccount persists a new account after checking its type and parent.
func (s *accountService) CreateAccount(ctx context.Context, req dto.CreateAccountRequest) (*domain.Account, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	accountType := req.AccountType
	if !accountType.IsValid() {
		return nil, apperrors.NewValidationError("invalid_account_type",
			fmt.Sprintf("unknown account type %q", accountType))
	}
	if req.Name == "" {
		return nil, apperrors.NewValidationError("empty_name", "account name must not be empty")
	}

	parentID := ""
	if req.ParentAccountID != nil && *req.ParentAccountID != "" {
		parentID = *req.ParentAccountID
		if _, err := s.accountRepo.FindAccountByID(ctx, parentID); err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				// A bad parent reference is invalid input, not a lookup miss.
				return nil, apperrors.NewValidationError("parent_not_found",
					fmt.Sprintf("parent account %s does not exist", parentID))
			}
			logger.Error("Failed to check parent account", slog.String("error", err.Error()), slog.String("parent_account_id", parentID))
			return nil, err
		}
	}

	now := time.Now()
	account := domain.Account{
		AccountID:       req.AccountID,
		Name:            req.Name,
		AccountType:     accountType,
		ParentAccountID: parentID,
		Description:     req.Description,
		IsActive:        true, // Default to active on creation
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			LastUpdatedAt: now,
		},
		Balance: decimal.Zero,
	}

	if err := s.accountRepo.SaveAccount(ctx, account); err != nil {
		if !errors.Is(err, apperrors.ErrDuplicate) {
			logger.Error("Failed to save account in repository", slog.String("error", err.Error()), slog.String("account_id", account.AccountID))
		}
		return nil, err
	}

	logger.Info("Account created", slog.String("account_id", account.AccountID), slog.String("account_type", string(account.AccountType)))
	return &account, nil
}

// GetAccountByID retrieves a specific account by its code.
func (s *accountService) GetAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	logger := middleware.GetLoggerFromCtx(ctx)
	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			logger.Error("Failed to find account by ID in repository", slog.String("error", err.Error()), slog.String("account_id", accountID))
		}
		return nil, err
	}
	return account, nil
}

// GetAccountsByIDs retrieves multiple accounts by their codes.
func (s *accountService) GetAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error) {
	logger := middleware.GetLoggerFromCtx(ctx)
	accounts, err := s.accountRepo.FindAccountsByIDs(ctx, accountIDs)
	if err != nil {
		logger.Error("Failed to find accounts by IDs in repository", slog.String("error", err.Error()))
		return nil, err
	}
	return accounts, nil
}

// UpdateAccount applies the provided fields to an existing account. Changing
// the type recomputes the cached balance under the new normal balance
// convention; changing the parent re-checks the hierarchy for cycles.
func (s *accountService) UpdateAccount(ctx context.Context, accountID string, req dto.UpdateAccountRequest) (*domain.Account, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			logger.Error("Failed to find account for update", slog.String("error", err.Error()), slog.String("account_id", accountID))
		}
		return nil, err
	}

	recomputeBalance := false
	if req.Name != nil {
		if *req.Name == "" {
			return nil, apperrors.NewValidationError("empty_name", "account name must not be empty")
		}
		account.Name = *req.Name
	}
	if req.Description != nil {
		account.Description = *req.Description
	}
	if req.IsActive != nil {
		account.IsActive = *req.IsActive
	}
	if req.AccountType != nil && *req.AccountType != account.AccountType {
		if !req.AccountType.IsValid() {
			return nil, apperrors.NewValidationError("invalid_account_type",
				fmt.Sprintf("unknown account type %q", *req.AccountType))
		}
		account.AccountType = *req.AccountType
		// The signed value of every posted entry flips with the convention,
		// so the cache must be rebuilt from the entries.
		recomputeBalance = true
	}
	if req.ParentAccountID != nil && *req.ParentAccountID != account.ParentAccountID {
		newParentID := *req.ParentAccountID
		if newParentID != "" {
			if err := s.checkNoCycle(ctx, accountID, newParentID); err != nil {
				return nil, err
			}
		}
		account.ParentAccountID = newParentID
	}

	account.LastUpdatedAt = time.Now()

	if err := s.accountRepo.UpdateAccount(ctx, *account, recomputeBalance); err != nil {
		logger.Error("Failed to update account in repository", slog.String("error", err.Error()), slog.String("account_id", accountID))
		return nil, err
	}

	// Reload when the balance was recomputed so the response reflects it.
	if recomputeBalance {
		return s.accountRepo.FindAccountByID(ctx, accountID)
	}

	logger.Info("Account updated", slog.String("account_id", accountID))
	return account, nil
}

// checkNoCycle rejects a reparent that would make the account its own
// ancestor. It walks up from the proposed parent until it hits a root.
func (s *accountService) checkNoCycle(ctx context.Context, accountID, newParentID string) error {
	current := newParentID
	for depth := 0; current != ""; depth++ {
		if depth >= maxParentDepth {
			return fmt.Errorf("parent chain of account %s exceeds %d levels", newParentID, maxParentDepth)
		}
		if current == accountID {
			return apperrors.NewValidationError("parent_cycle",
				fmt.Sprintf("account %s cannot be its own ancestor", accountID))
		}
		parent, err := s.accountRepo.FindAccountByID(ctx, current)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return apperrors.NewValidationError("parent_not_found",
					fmt.Sprintf("parent account %s does not exist", current))
			}
			return err
		}
		current = parent.ParentAccountID
	}
	return nil
}

// DeleteAccount removes an account. The repository enforces the state checks
// (zero balance, no children, no posted entries) under a row lock.
func (s *accountService) DeleteAccount(ctx context.Context, accountID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)
	if err := s.accountRepo.DeleteAccount(ctx, accountID); err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) && !errors.Is(err, apperrors.ErrConflict) {
			logger.Error("Failed to delete account in repository", slog.String("error", err.Error()), slog.String("account_id", accountID))
		}
		return err
	}
	logger.Info("Account deleted", slog.String("account_id", accountID))
	return nil
}

// SetAccountActive activates or deactivates an account. Setting the flag to
// its current value is a no-op, not an error.
func (s *accountService) SetAccountActive(ctx context.Context, accountID string, active bool) (*domain.Account, error) {
	logger := middleware.GetLoggerFromCtx(ctx)
	if err := s.accountRepo.SetAccountActive(ctx, accountID, active, time.Now()); err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			logger.Error("Failed to set account active flag", slog.String("error", err.Error()), slog.String("account_id", accountID))
		}
		return nil, err
	}
	logger.Info("Account active flag set", slog.String("account_id", accountID), slog.Bool("active", active))
	return s.accountRepo.FindAccountByID(ctx, accountID)
}

// ToggleAccount flips the account's active flag and returns the updated
// account.
func (s *accountService) ToggleAccount(ctx context.Context, accountID string) (*domain.Account, error) {
	account, err := s.GetAccountByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return s.SetAccountActive(ctx, accountID, !account.IsActive)
}

// GetAccountBalance returns the cached balance under the account's normal
// balance convention. Inactive accounts still report their balance.
func (s *accountService) GetAccountBalance(ctx context.Context, accountID string) (decimal.Decimal, error) {
	account, err := s.GetAccountByID(ctx, accountID)
	if err != nil {
		return decimal.Zero, err
	}
	return account.Balance, nil
}

// ListHierarchy yields the chart of accounts in depth-first preorder over a
// snapshot taken when it is called. The returned sequence is restartable.
func (s *accountService) ListHierarchy(ctx context.Context) (iter.Seq[domain.Account], error) {
	logger := middleware.GetLoggerFromCtx(ctx)
	accounts, err := s.accountRepo.ListAccounts(ctx)
	if err != nil {
		logger.Error("Failed to list accounts from repository", slog.String("error", err.Error()))
		return nil, err
	}

	ordered := hierarchyOrder(accounts)
	return func(yield func(domain.Account) bool) {
		for _, acc := range ordered {
			if !yield(acc) {
				return
			}
		}
	}, nil
}

// hierarchyOrder arranges accounts parent before children, siblings by code
// ascending. Accounts whose parent is missing from the snapshot are treated
// as roots so nothing silently disappears from the listing.
func hierarchyOrder(accounts []domain.Account) []domain.Account {
	byID := make(map[string]domain.Account, len(accounts))
	children := make(map[string][]string, len(accounts))
	var roots []string

	for _, acc := range accounts {
		byID[acc.AccountID] = acc
	}
	for _, acc := range accounts {
		if acc.ParentAccountID == "" {
			roots = append(roots, acc.AccountID)
			continue
		}
		if _, ok := byID[acc.ParentAccountID]; !ok {
			roots = append(roots, acc.AccountID)
			continue
		}
		children[acc.ParentAccountID] = append(children[acc.ParentAccountID], acc.AccountID)
	}

	sort.Strings(roots)
	for _, ids := range children {
		sort.Strings(ids)
	}

	ordered := make([]domain.Account, 0, len(accounts))
	var visit func(id string)
	visit = func(id string) {
		ordered = append(ordered, byID[id])
		for _, childID := range children[id] {
			visit(childID)
		}
	}
	for _, rootID := range roots {
		visit(rootID)
	}
	return ordered
}
