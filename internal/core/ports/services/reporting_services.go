package services

import (
	"context"
	"time"

	"github.com/openbooks/ledger_app/internal/dto"
)

// ReportingService defines operations for generating financial reports
type ReportingService interface {
	// TrialBalance lists every active account with its balance on the
	// debit or credit column and checks the columns against each other.
	TrialBalance(ctx context.Context, asOf time.Time) (*dto.TrialBalanceResponse, error)

	// IncomeStatement summarizes revenue and expense activity dated within
	// [from, to].
	IncomeStatement(ctx context.Context, from, to time.Time) (*dto.IncomeStatementResponse, error)

	// BalanceSheet reports assets, liabilities and equity as of a date,
	// folding net income to date into equity as retained earnings.
	BalanceSheet(ctx context.Context, asOf time.Time) (*dto.BalanceSheetResponse, error)
}
