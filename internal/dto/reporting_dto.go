package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// TrialBalanceRow is one account's line on the trial balance. Exactly one of
// Debit/Credit carries the account's normal balance; a zero balance shows on
// the account's normal side.
type TrialBalanceRow struct {
	AccountID   string          `json:"accountID"`
	Name        string          `json:"name"`
	AccountType string          `json:"accountType"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
}

// TrialBalanceResponse lists every active account with its balance placed on
// the debit or credit column. Balanced is the invariant check: total debits
// equal total credits whenever every posted transaction balanced.
type TrialBalanceResponse struct {
	AsOf         time.Time         `json:"asOf"`
	Rows         []TrialBalanceRow `json:"rows"`
	TotalDebits  decimal.Decimal   `json:"totalDebits"`
	TotalCredits decimal.Decimal   `json:"totalCredits"`
	Balanced     bool              `json:"balanced"`
}

// ReportLine is one named amount on a financial statement.
type ReportLine struct {
	AccountID string          `json:"accountID"`
	Name      string          `json:"name"`
	Amount    decimal.Decimal `json:"amount"`
}

// IncomeStatementResponse summarizes revenue and expenses over a date range.
type IncomeStatementResponse struct {
	From          time.Time       `json:"from"`
	To            time.Time       `json:"to"`
	Revenue       []ReportLine    `json:"revenue"`
	TotalRevenue  decimal.Decimal `json:"totalRevenue"`
	Expenses      []ReportLine    `json:"expenses"`
	TotalExpenses decimal.Decimal `json:"totalExpenses"`
	NetIncome     decimal.Decimal `json:"netIncome"`
}

// BalanceSheetResponse is the statement of financial position as of a date.
// Retained earnings (net income to date) is folded into the equity section so
// the accounting equation holds without a closing process.
type BalanceSheetResponse struct {
	AsOf             time.Time       `json:"asOf"`
	Assets           []ReportLine    `json:"assets"`
	TotalAssets      decimal.Decimal `json:"totalAssets"`
	Liabilities      []ReportLine    `json:"liabilities"`
	TotalLiabilities decimal.Decimal `json:"totalLiabilities"`
	Equity           []ReportLine    `json:"equity"`
	RetainedEarnings decimal.Decimal `json:"retainedEarnings"`
	TotalEquity      decimal.Decimal `json:"totalEquity"`
	Balanced         bool            `json:"balanced"`
}
