package repositories

import (
	"context"
	"time"

	"github.com/openbooks/ledger_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// AccountActivity is the per-account debit/credit aggregate used to build
// reports. Totals are recomputed from entries, not read from the cache, so a
// report is always checkable against the balance invariant.
type AccountActivity struct {
	AccountID    string
	Name         string
	AccountType  domain.AccountType
	TotalDebits  decimal.Decimal
	TotalCredits decimal.Decimal
}

// NormalBalance returns the activity's balance under the account type's
// normal balance convention.
func (a AccountActivity) NormalBalance() decimal.Decimal {
	if a.AccountType.IsDebitNormal() {
		return a.TotalDebits.Sub(a.TotalCredits)
	}
	return a.TotalCredits.Sub(a.TotalDebits)
}

// ReportingRepository defines the read-side aggregates for reports.
type ReportingRepository interface {
	// AggregateActiveAccounts returns debit/credit totals over transactions
	// dated on or before asOf, for every active account, ordered by code.
	// Accounts without entries in that window appear with zero totals.
	AggregateActiveAccounts(ctx context.Context, asOf time.Time) ([]AccountActivity, error)

	// AggregateByTypeInRange returns per-account totals restricted to
	// transactions dated within [from, to], for accounts of the given type.
	AggregateByTypeInRange(ctx context.Context, accountType domain.AccountType, from, to time.Time) ([]AccountActivity, error)

	// AggregateByTypeAsOf returns per-account totals over transactions dated
	// on or before asOf, for active accounts of the given type.
	AggregateByTypeAsOf(ctx context.Context, accountType domain.AccountType, asOf time.Time) ([]AccountActivity, error)
}
