package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/openbooks/ledger_app/internal/core/domain"
	portsrepo "github.com/openbooks/ledger_app/internal/core/ports/repositories"
	portssvc "github.com/openbooks/ledger_app/internal/core/ports/services"
	"github.com/openbooks/ledger_app/internal/dto"
	"github.com/openbooks/ledger_app/internal/middleware"
	"github.com/shopspring/decimal"
)

// reportingService builds financial statements from entry aggregates. All
// reports recompute from posted entries rather than reading cached balances,
// so a report doubles as a consistency check on the cache.
type reportingService struct {
	reportRepo portsrepo.ReportingRepository
}

// NewReportingService creates a new reporting service.
func NewReportingService(reportRepo portsrepo.ReportingRepository) portssvc.ReportingService {
	return &reportingService{reportRepo: reportRepo}
}

// Ensure reportingService implements the portssvc.ReportingService interface
var _ portssvc.ReportingService = (*reportingService)(nil)

// TrialBalance lists every active account with its current balance on its
// normal side. A zero balance shows as a zero on the normal column rather
// than being dropped, matching standard trial balance presentation.
func (s *reportingService) TrialBalance(ctx context.Context, asOf time.Time) (*dto.TrialBalanceResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if asOf.IsZero() {
		asOf = time.Now()
	}
	activities, err := s.reportRepo.AggregateActiveAccounts(ctx, asOf)
	if err != nil {
		logger.Error("Failed to aggregate accounts for trial balance", slog.String("error", err.Error()))
		return nil, err
	}
	resp := &dto.TrialBalanceResponse{
		AsOf:         asOf,
		Rows:         make([]dto.TrialBalanceRow, 0, len(activities)),
		TotalDebits:  decimal.Zero,
		TotalCredits: decimal.Zero,
	}

	for _, act := range activities {
		row := dto.TrialBalanceRow{
			AccountID:   act.AccountID,
			Name:        act.Name,
			AccountType: string(act.AccountType),
			Debit:       decimal.Zero,
			Credit:      decimal.Zero,
		}
		balance := act.NormalBalance()
		if act.AccountType.IsDebitNormal() {
			row.Debit = balance
			resp.TotalDebits = resp.TotalDebits.Add(balance)
		} else {
			row.Credit = balance
			resp.TotalCredits = resp.TotalCredits.Add(balance)
		}
		resp.Rows = append(resp.Rows, row)
	}

	resp.Balanced = resp.TotalDebits.Equal(resp.TotalCredits)
	if !resp.Balanced {
		logger.Warn("Trial balance does not balance",
			slog.String("total_debits", resp.TotalDebits.String()),
			slog.String("total_credits", resp.TotalCredits.String()))
	}
	return resp, nil
}

// IncomeStatement summarizes revenue and expense activity dated within
// [from, to]. Only accounts with activity in the range appear.
func (s *reportingService) IncomeStatement(ctx context.Context, from, to time.Time) (*dto.IncomeStatementResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	revenue, revenueTotal, err := s.sectionInRange(ctx, domain.Revenue, from, to)
	if err != nil {
		logger.Error("Failed to aggregate revenue for income statement", slog.String("error", err.Error()))
		return nil, err
	}
	expenses, expenseTotal, err := s.sectionInRange(ctx, domain.Expense, from, to)
	if err != nil {
		logger.Error("Failed to aggregate expenses for income statement", slog.String("error", err.Error()))
		return nil, err
	}

	return &dto.IncomeStatementResponse{
		From:          from,
		To:            to,
		Revenue:       revenue,
		TotalRevenue:  revenueTotal,
		Expenses:      expenses,
		TotalExpenses: expenseTotal,
		NetIncome:     revenueTotal.Sub(expenseTotal),
	}, nil
}

// BalanceSheet reports the financial position as of a date. There is no
// closing process, so net income to date is folded into equity as retained
// earnings to keep the accounting equation intact.
func (s *reportingService) BalanceSheet(ctx context.Context, asOf time.Time) (*dto.BalanceSheetResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	assets, assetsTotal, err := s.sectionAsOf(ctx, domain.Asset, asOf)
	if err != nil {
		logger.Error("Failed to aggregate assets for balance sheet", slog.String("error", err.Error()))
		return nil, err
	}
	liabilities, liabilitiesTotal, err := s.sectionAsOf(ctx, domain.Liability, asOf)
	if err != nil {
		logger.Error("Failed to aggregate liabilities for balance sheet", slog.String("error", err.Error()))
		return nil, err
	}
	equity, equityTotal, err := s.sectionAsOf(ctx, domain.Equity, asOf)
	if err != nil {
		logger.Error("Failed to aggregate equity for balance sheet", slog.String("error", err.Error()))
		return nil, err
	}
	_, revenueTotal, err := s.sectionAsOf(ctx, domain.Revenue, asOf)
	if err != nil {
		logger.Error("Failed to aggregate revenue for balance sheet", slog.String("error", err.Error()))
		return nil, err
	}
	_, expenseTotal, err := s.sectionAsOf(ctx, domain.Expense, asOf)
	if err != nil {
		logger.Error("Failed to aggregate expenses for balance sheet", slog.String("error", err.Error()))
		return nil, err
	}

	retained := revenueTotal.Sub(expenseTotal)
	totalEquity := equityTotal.Add(retained)

	return &dto.BalanceSheetResponse{
		AsOf:             asOf,
		Assets:           assets,
		TotalAssets:      assetsTotal,
		Liabilities:      liabilities,
		TotalLiabilities: liabilitiesTotal,
		Equity:           equity,
		RetainedEarnings: retained,
		TotalEquity:      totalEquity,
		Balanced:         assetsTotal.Equal(liabilitiesTotal.Add(totalEquity)),
	}, nil
}

func (s *reportingService) sectionInRange(ctx context.Context, accountType domain.AccountType, from, to time.Time) ([]dto.ReportLine, decimal.Decimal, error) {
	activities, err := s.reportRepo.AggregateByTypeInRange(ctx, accountType, from, to)
	if err != nil {
		return nil, decimal.Zero, err
	}
	return toReportLines(activities)
}

func (s *reportingService) sectionAsOf(ctx context.Context, accountType domain.AccountType, asOf time.Time) ([]dto.ReportLine, decimal.Decimal, error) {
	activities, err := s.reportRepo.AggregateByTypeAsOf(ctx, accountType, asOf)
	if err != nil {
		return nil, decimal.Zero, err
	}
	return toReportLines(activities)
}

func toReportLines(activities []portsrepo.AccountActivity) ([]dto.ReportLine, decimal.Decimal, error) {
	lines := make([]dto.ReportLine, 0, len(activities))
	total := decimal.Zero
	for _, act := range activities {
		amount := act.NormalBalance()
		lines = append(lines, dto.ReportLine{
			AccountID: act.AccountID,
			Name:      act.Name,
			Amount:    amount,
		})
		total = total.Add(amount)
	}
	return lines, total, nil
}
