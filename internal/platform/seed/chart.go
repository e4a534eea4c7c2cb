// Package seed provisions the standard chart of accounts on first startup.
package seed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/openbooks/ledger_app/internal/apperrors"
	"github.com/openbooks/ledger_app/internal/core/domain"
	portssvc "github.com/openbooks/ledger_app/internal/core/ports/services"
	"github.com/openbooks/ledger_app/internal/dto"
)

type chartEntry struct {
	accountID   string
	name        string
	accountType domain.AccountType
	parentID    string
}

// standardChart is ordered so every parent precedes its children.
var standardChart = []chartEntry{
	// Assets
	{"1000", "ASSETS", domain.Asset, ""},
	{"1100", "Current Assets", domain.Asset, "1000"},
	{"1110", "Cash and Bank Accounts", domain.Asset, "1100"},
	{"1120", "Accounts Receivable", domain.Asset, "1100"},
	{"1130", "Inventory", domain.Asset, "1100"},
	{"1140", "Prepaid Expenses", domain.Asset, "1100"},
	{"1200", "Fixed Assets", domain.Asset, "1000"},
	{"1210", "Equipment", domain.Asset, "1200"},
	{"1220", "Accumulated Depreciation - Equipment", domain.Asset, "1200"},

	// Liabilities
	{"2000", "LIABILITIES", domain.Liability, ""},
	{"2100", "Current Liabilities", domain.Liability, "2000"},
	{"2110", "Accounts Payable", domain.Liability, "2100"},
	{"2120", "Accrued Expenses", domain.Liability, "2100"},
	{"2130", "Short-term Debt", domain.Liability, "2100"},
	{"2200", "Long-term Liabilities", domain.Liability, "2000"},
	{"2210", "Long-term Debt", domain.Liability, "2200"},

	// Equity
	{"3000", "EQUITY", domain.Equity, ""},
	{"3100", "Owner's Equity", domain.Equity, "3000"},
	{"3200", "Retained Earnings", domain.Equity, "3000"},

	// Revenue
	{"4000", "REVENUE", domain.Revenue, ""},
	{"4100", "Sales Revenue", domain.Revenue, "4000"},
	{"4200", "Service Revenue", domain.Revenue, "4000"},
	{"4300", "Other Income", domain.Revenue, "4000"},

	// Expenses
	{"5000", "EXPENSES", domain.Expense, ""},
	{"5100", "Cost of Goods Sold", domain.Expense, "5000"},
	{"5200", "Operating Expenses", domain.Expense, "5000"},
	{"5210", "Salaries and Wages", domain.Expense, "5200"},
	{"5220", "Rent Expense", domain.Expense, "5200"},
	{"5230", "Utilities Expense", domain.Expense, "5200"},
	{"5240", "Office Supplies", domain.Expense, "5200"},
	{"5250", "Depreciation Expense", domain.Expense, "5200"},
}

// StandardChart creates the default account tree. Accounts that already exist
// are left untouched, so running it repeatedly is safe.
func StandardChart(ctx context.Context, accountSvc portssvc.AccountSvcFacade, logger *slog.Logger) error {
	created := 0
	for _, entry := range standardChart {
		req := dto.CreateAccountRequest{
			AccountID:   entry.accountID,
			Name:        entry.name,
			AccountType: entry.accountType,
		}
		if entry.parentID != "" {
			parentID := entry.parentID
			req.ParentAccountID = &parentID
		}

		_, err := accountSvc.CreateAccount(ctx, req)
		if err != nil {
			if errors.Is(err, apperrors.ErrDuplicate) {
				continue
			}
			return fmt.Errorf("failed to seed account %s: %w", entry.accountID, err)
		}
		created++
	}

	if created > 0 {
		logger.Info("Seeded standard chart of accounts", slog.Int("created", created))
	} else {
		logger.Info("Standard chart of accounts already present, nothing to seed")
	}
	return nil
}
