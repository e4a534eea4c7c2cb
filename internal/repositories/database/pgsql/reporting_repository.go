package pgsql

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/openbooks/ledger_app/internal/core/domain"
	portsrepo "github.com/openbooks/ledger_app/internal/core/ports/repositories"
)

// reportingRepository implements the ReportingRepository interface.
// Aggregates always come from the entry rows, never from the cached balance
// column, so a report can expose cache drift instead of hiding it.
type reportingRepository struct {
	BaseRepository
}

// newReportingRepository creates a new reporting repository
func newReportingRepository(pool *pgxpool.Pool) portsrepo.ReportingRepository {
	return &reportingRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure reportingRepository implements portsrepo.ReportingRepository
var _ portsrepo.ReportingRepository = (*reportingRepository)(nil)

// AggregateActiveAccounts returns debit/credit totals over transactions dated
// on or before asOf, for every active account, ordered by code. Accounts
// without entries in that window appear with zero totals.
func (r *reportingRepository) AggregateActiveAccounts(ctx context.Context, asOf time.Time) ([]portsrepo.AccountActivity, error) {
	query := `
		SELECT
			a.account_id,
			a.name,
			a.account_type,
			COALESCE(SUM(e.debit), 0) AS total_debit,
			COALESCE(SUM(e.credit), 0) AS total_credit
		FROM accounts a
		LEFT JOIN (
			SELECT e.account_id, e.debit, e.credit
			FROM transaction_entries e
			JOIN transactions t ON t.transaction_id = e.transaction_id
			WHERE t.date <= $1
		) e ON e.account_id = a.account_id
		WHERE a.is_active = TRUE
		GROUP BY a.account_id, a.name, a.account_type
		ORDER BY a.account_id;
	`
	rows, err := r.Pool.Query(ctx, query, asOf)
	if err != nil {
		return nil, fmt.Errorf("error querying account activity as of %s: %w", asOf.Format(time.DateOnly), err)
	}
	defer rows.Close()

	return scanActivities(rows)
}

// AggregateByTypeInRange returns per-account totals restricted to
// transactions dated within [from, to], for accounts of the given type.
// Only accounts with activity in the range appear.
func (r *reportingRepository) AggregateByTypeInRange(ctx context.Context, accountType domain.AccountType, from, to time.Time) ([]portsrepo.AccountActivity, error) {
	query := `
		SELECT
			a.account_id,
			a.name,
			a.account_type,
			SUM(e.debit) AS total_debit,
			SUM(e.credit) AS total_credit
		FROM transaction_entries e
		JOIN transactions t ON t.transaction_id = e.transaction_id
		JOIN accounts a ON a.account_id = e.account_id
		WHERE a.account_type = $1
			AND t.date BETWEEN $2 AND $3
		GROUP BY a.account_id, a.name, a.account_type
		ORDER BY a.account_id;
	`
	rows, err := r.Pool.Query(ctx, query, accountType, from, to)
	if err != nil {
		return nil, fmt.Errorf("error querying %s activity in range: %w", accountType, err)
	}
	defer rows.Close()

	return scanActivities(rows)
}

// AggregateByTypeAsOf returns per-account totals over transactions dated on
// or before asOf, for active accounts of the given type.
func (r *reportingRepository) AggregateByTypeAsOf(ctx context.Context, accountType domain.AccountType, asOf time.Time) ([]portsrepo.AccountActivity, error) {
	query := `
		SELECT
			a.account_id,
			a.name,
			a.account_type,
			COALESCE(SUM(e.debit), 0) AS total_debit,
			COALESCE(SUM(e.credit), 0) AS total_credit
		FROM accounts a
		LEFT JOIN (
			SELECT e.account_id, e.debit, e.credit
			FROM transaction_entries e
			JOIN transactions t ON t.transaction_id = e.transaction_id
			WHERE t.date <= $2
		) e ON e.account_id = a.account_id
		WHERE a.account_type = $1
			AND a.is_active = TRUE
		GROUP BY a.account_id, a.name, a.account_type
		ORDER BY a.account_id;
	`
	rows, err := r.Pool.Query(ctx, query, accountType, asOf)
	if err != nil {
		return nil, fmt.Errorf("error querying %s activity as of %s: %w", accountType, asOf.Format(time.DateOnly), err)
	}
	defer rows.Close()

	return scanActivities(rows)
}

func scanActivities(rows pgx.Rows) ([]portsrepo.AccountActivity, error) {
	result := []portsrepo.AccountActivity{}
	for rows.Next() {
		var act portsrepo.AccountActivity
		var accountType string
		if err := rows.Scan(&act.AccountID, &act.Name, &accountType, &act.TotalDebits, &act.TotalCredits); err != nil {
			return nil, fmt.Errorf("error scanning account activity row: %w", err)
		}
		act.AccountType = domain.AccountType(accountType)
		result = append(result, act)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating account activity rows: %w", err)
	}
	return result, nil
}
