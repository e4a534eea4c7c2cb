package pgsql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/openbooks/ledger_app/internal/apperrors"
	"github.com/openbooks/ledger_app/internal/core/domain"
	portsrepo "github.com/openbooks/ledger_app/internal/core/ports/repositories"
	"github.com/openbooks/ledger_app/internal/models"
	"github.com/openbooks/ledger_app/internal/utils/accounting"
	"github.com/openbooks/ledger_app/internal/utils/mapping"
	"github.com/shopspring/decimal"
)

const entryColumns = `entry_id, transaction_id, account_id, debit, credit, description, line_no`

type PgxTransactionRepository struct {
	BaseRepository
	accountRepo portsrepo.AccountRepositoryFacade
}

// newPgxTransactionRepository creates a new repository for transaction and
// entry data. It needs the account repository to lock and adjust account
// rows inside its own database transactions.
func newPgxTransactionRepository(pool *pgxpool.Pool, accountRepo portsrepo.AccountRepositoryFacade) portsrepo.TransactionRepositoryFacade {
	return &PgxTransactionRepository{
		BaseRepository: BaseRepository{Pool: pool},
		accountRepo:    accountRepo,
	}
}

// Ensure PgxTransactionRepository implements portsrepo.TransactionRepositoryFacade
var _ portsrepo.TransactionRepositoryFacade = (*PgxTransactionRepository)(nil)

// scanTransactionHeader reads one transaction row: transaction_id, date,
// description, reference, created_at, last_updated_at.
func scanTransactionHeader(row pgx.Row) (models.Transaction, error) {
	var modelTxn models.Transaction
	var reference sql.NullString

	err := row.Scan(
		&modelTxn.TransactionID,
		&modelTxn.Date,
		&modelTxn.Description,
		&reference,
		&modelTxn.CreatedAt,
		&modelTxn.LastUpdatedAt,
	)
	if err != nil {
		return models.Transaction{}, err
	}
	if reference.Valid {
		modelTxn.Reference = reference.String
	}
	return modelTxn, nil
}

// SaveTransaction persists a new transaction and its entries, locking the
// referenced accounts, re-verifying that they are active and adjusting their
// cached balances, all in one database transaction.
func (r *PgxTransactionRepository) SaveTransaction(ctx context.Context, txn domain.Transaction) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	modelTxn := mapping.ToModelTransaction(txn)
	headerQuery := `
		INSERT INTO transactions (transaction_id, date, description, reference, created_at, last_updated_at)
		VALUES ($1, $2, $3, $4, $5, $6);
	`
	_, err = tx.Exec(ctx, headerQuery,
		modelTxn.TransactionID,
		modelTxn.Date,
		modelTxn.Description,
		nullableString(modelTxn.Reference),
		modelTxn.CreatedAt,
		modelTxn.LastUpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert transaction %s: %w", modelTxn.TransactionID, err)
	}

	lockedAccounts, err := r.lockActiveAccounts(ctx, tx, txn.Entries)
	if err != nil {
		return err
	}

	changes, err := accounting.BalanceChanges(txn.Entries, accountTypesOf(lockedAccounts))
	if err != nil {
		return fmt.Errorf("failed to compute balance changes for transaction %s: %w", txn.TransactionID, err)
	}
	if err := r.accountRepo.UpdateAccountBalancesInTx(ctx, tx, changes, txn.LastUpdatedAt); err != nil {
		return fmt.Errorf("failed to update account balances: %w", err)
	}

	if err := insertEntries(ctx, tx, txn.Entries); err != nil {
		return err
	}

	return r.Commit(ctx, tx)
}

// ReplaceTransaction atomically swaps the stored header and entry set for the
// given ones. Balances move by the net difference between the old and new
// entry effects, so accounts untouched by the edit stay untouched.
func (r *PgxTransactionRepository) ReplaceTransaction(ctx context.Context, txn domain.Transaction) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	// Lock the header row so concurrent edits of the same transaction
	// serialize.
	var existingID string
	err = tx.QueryRow(ctx, `SELECT transaction_id FROM transactions WHERE transaction_id = $1 FOR UPDATE;`, txn.TransactionID).Scan(&existingID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.ErrNotFound
		}
		return fmt.Errorf("failed to lock transaction %s: %w", txn.TransactionID, err)
	}

	oldEntries, err := loadEntriesInTx(ctx, tx, txn.TransactionID)
	if err != nil {
		return err
	}

	// Lock the union of old and new accounts in one pass. Old accounts are
	// guaranteed to exist by the entry FK; new ones must also be active.
	allEntries := make([]domain.Entry, 0, len(oldEntries)+len(txn.Entries))
	allEntries = append(allEntries, oldEntries...)
	allEntries = append(allEntries, txn.Entries...)
	lockedAccounts, err := r.accountRepo.FindAccountsByIDsForUpdate(ctx, tx, distinctAccountIDs(allEntries))
	if err != nil {
		return err
	}
	for _, id := range distinctAccountIDs(txn.Entries) {
		if !lockedAccounts[id].IsActive {
			return fmt.Errorf("account %s is inactive: %w", id, apperrors.ErrReference)
		}
	}

	accountTypes := accountTypesOf(lockedAccounts)
	oldChanges, err := accounting.BalanceChanges(oldEntries, accountTypes)
	if err != nil {
		return fmt.Errorf("failed to compute old balance changes for transaction %s: %w", txn.TransactionID, err)
	}
	newChanges, err := accounting.BalanceChanges(txn.Entries, accountTypes)
	if err != nil {
		return fmt.Errorf("failed to compute new balance changes for transaction %s: %w", txn.TransactionID, err)
	}
	net := make(map[string]decimal.Decimal, len(newChanges))
	for accountID, delta := range newChanges {
		net[accountID] = delta
	}
	for accountID, delta := range oldChanges {
		net[accountID] = net[accountID].Sub(delta)
	}
	if err := r.accountRepo.UpdateAccountBalancesInTx(ctx, tx, net, txn.LastUpdatedAt); err != nil {
		return fmt.Errorf("failed to update account balances: %w", err)
	}

	modelTxn := mapping.ToModelTransaction(txn)
	_, err = tx.Exec(ctx, `
		UPDATE transactions
		SET date = $2, description = $3, reference = $4, last_updated_at = $5
		WHERE transaction_id = $1;
	`, modelTxn.TransactionID, modelTxn.Date, modelTxn.Description, nullableString(modelTxn.Reference), modelTxn.LastUpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update transaction header %s: %w", txn.TransactionID, err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM transaction_entries WHERE transaction_id = $1;`, txn.TransactionID); err != nil {
		return fmt.Errorf("failed to delete old entries of transaction %s: %w", txn.TransactionID, err)
	}
	if err := insertEntries(ctx, tx, txn.Entries); err != nil {
		return err
	}

	return r.Commit(ctx, tx)
}

// DeleteTransaction removes the transaction and its entries, reversing their
// effect on account balances.
func (r *PgxTransactionRepository) DeleteTransaction(ctx context.Context, transactionID string) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	var lockedID string
	err = tx.QueryRow(ctx, `SELECT transaction_id FROM transactions WHERE transaction_id = $1 FOR UPDATE;`, transactionID).Scan(&lockedID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.ErrNotFound
		}
		return fmt.Errorf("failed to lock transaction %s: %w", transactionID, err)
	}

	entries, err := loadEntriesInTx(ctx, tx, transactionID)
	if err != nil {
		return err
	}

	lockedAccounts, err := r.accountRepo.FindAccountsByIDsForUpdate(ctx, tx, distinctAccountIDs(entries))
	if err != nil {
		return err
	}

	changes, err := accounting.BalanceChanges(entries, accountTypesOf(lockedAccounts))
	if err != nil {
		return fmt.Errorf("failed to compute balance changes for transaction %s: %w", transactionID, err)
	}
	for accountID, delta := range changes {
		changes[accountID] = delta.Neg()
	}
	if err := r.accountRepo.UpdateAccountBalancesInTx(ctx, tx, changes, time.Now()); err != nil {
		return fmt.Errorf("failed to reverse account balances: %w", err)
	}

	// Entries go with the header via ON DELETE CASCADE.
	if _, err := tx.Exec(ctx, `DELETE FROM transactions WHERE transaction_id = $1;`, transactionID); err != nil {
		return fmt.Errorf("failed to delete transaction %s: %w", transactionID, err)
	}

	return r.Commit(ctx, tx)
}

// FindTransactionByID retrieves a transaction with its entries in line order.
func (r *PgxTransactionRepository) FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	headerQuery := `
		SELECT transaction_id, date, description, reference, created_at, last_updated_at
		FROM transactions
		WHERE transaction_id = $1;
	`
	modelTxn, err := scanTransactionHeader(r.Pool.QueryRow(ctx, headerQuery, transactionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find transaction %s: %w", transactionID, err)
	}

	entriesQuery := `SELECT ` + entryColumns + ` FROM transaction_entries WHERE transaction_id = $1 ORDER BY line_no;`
	rows, err := r.Pool.Query(ctx, entriesQuery, transactionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries of transaction %s: %w", transactionID, err)
	}
	defer rows.Close()

	var modelEntries []models.Entry
	for rows.Next() {
		modelEntry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan entry row: %w", err)
		}
		modelEntries = append(modelEntries, modelEntry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating entry rows: %w", err)
	}

	domainTxn := mapping.ToDomainTransaction(modelTxn, modelEntries)
	return &domainTxn, nil
}

// ListTransactions retrieves a page of transactions ordered by date
// descending, then id descending for a stable tiebreak, with entries
// attached in line order.
func (r *PgxTransactionRepository) ListTransactions(ctx context.Context, limit, offset int) ([]domain.Transaction, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	headerQuery := `
		SELECT transaction_id, date, description, reference, created_at, last_updated_at
		FROM transactions
		ORDER BY date DESC, transaction_id DESC
		LIMIT $1 OFFSET $2;
	`
	rows, err := r.Pool.Query(ctx, headerQuery, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	var headers []models.Transaction
	ids := make([]string, 0, limit)
	for rows.Next() {
		modelTxn, err := scanTransactionHeader(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction row: %w", err)
		}
		headers = append(headers, modelTxn)
		ids = append(ids, modelTxn.TransactionID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transaction rows: %w", err)
	}
	if len(headers) == 0 {
		return []domain.Transaction{}, nil
	}

	entriesQuery := `SELECT ` + entryColumns + ` FROM transaction_entries WHERE transaction_id = ANY($1) ORDER BY transaction_id, line_no;`
	entryRows, err := r.Pool.Query(ctx, entriesQuery, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries for transaction page: %w", err)
	}
	defer entryRows.Close()

	entriesByTxn := make(map[string][]models.Entry, len(ids))
	for entryRows.Next() {
		modelEntry, err := scanEntry(entryRows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan entry row: %w", err)
		}
		entriesByTxn[modelEntry.TransactionID] = append(entriesByTxn[modelEntry.TransactionID], modelEntry)
	}
	if err := entryRows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating entry rows: %w", err)
	}

	txns := make([]domain.Transaction, 0, len(headers))
	for _, header := range headers {
		txns = append(txns, mapping.ToDomainTransaction(header, entriesByTxn[header.TransactionID]))
	}
	return txns, nil
}

// CountTransactions returns the total number of persisted transactions.
func (r *PgxTransactionRepository) CountTransactions(ctx context.Context) (int64, error) {
	var count int64
	if err := r.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM transactions;`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count transactions: %w", err)
	}
	return count, nil
}

// CountTransactionsForAccount returns the number of distinct transactions
// referencing the account in any entry.
func (r *PgxTransactionRepository) CountTransactionsForAccount(ctx context.Context, accountID string) (int64, error) {
	var count int64
	query := `SELECT COUNT(DISTINCT transaction_id) FROM transaction_entries WHERE account_id = $1;`
	if err := r.Pool.QueryRow(ctx, query, accountID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count transactions for account %s: %w", accountID, err)
	}
	return count, nil
}

// ListEntriesByAccount retrieves the account's entries joined with their
// transaction headers, oldest first. The running balance columns are left
// zero; the query service fills them in.
func (r *PgxTransactionRepository) ListEntriesByAccount(ctx context.Context, accountID string, limit int) ([]domain.LedgerLine, error) {
	query := `
		SELECT t.transaction_id, t.date, t.description, t.reference, e.description, e.debit, e.credit
		FROM transaction_entries e
		JOIN transactions t ON t.transaction_id = e.transaction_id
		WHERE e.account_id = $1
		ORDER BY t.date ASC, t.transaction_id ASC, e.line_no ASC
	`
	args := []any{accountID}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}
	query += `;`

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries for account %s: %w", accountID, err)
	}
	defer rows.Close()

	lines := []domain.LedgerLine{}
	for rows.Next() {
		var line domain.LedgerLine
		var reference sql.NullString
		if err := rows.Scan(&line.TransactionID, &line.Date, &line.Description, &reference, &line.EntryDescription, &line.Debit, &line.Credit); err != nil {
			return nil, fmt.Errorf("failed to scan ledger line: %w", err)
		}
		if reference.Valid {
			line.Reference = reference.String
		}
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating ledger lines: %w", err)
	}

	return lines, nil
}

// lockActiveAccounts locks the rows of every account referenced by entries
// and verifies they are active.
func (r *PgxTransactionRepository) lockActiveAccounts(ctx context.Context, tx pgx.Tx, entries []domain.Entry) (map[string]domain.Account, error) {
	lockedAccounts, err := r.accountRepo.FindAccountsByIDsForUpdate(ctx, tx, distinctAccountIDs(entries))
	if err != nil {
		return nil, err
	}
	for id, account := range lockedAccounts {
		if !account.IsActive {
			return nil, fmt.Errorf("account %s is inactive: %w", id, apperrors.ErrReference)
		}
	}
	return lockedAccounts, nil
}

// loadEntriesInTx reads a transaction's entries inside tx.
func loadEntriesInTx(ctx context.Context, tx pgx.Tx, transactionID string) ([]domain.Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM transaction_entries WHERE transaction_id = $1 ORDER BY line_no;`
	rows, err := tx.Query(ctx, query, transactionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries of transaction %s: %w", transactionID, err)
	}
	defer rows.Close()

	var entries []domain.Entry
	for rows.Next() {
		modelEntry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan entry row: %w", err)
		}
		entries = append(entries, mapping.ToDomainEntry(modelEntry))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating entry rows: %w", err)
	}
	return entries, nil
}

// insertEntries batch-inserts entry rows inside tx.
func insertEntries(ctx context.Context, tx pgx.Tx, entries []domain.Entry) error {
	query := `
		INSERT INTO transaction_entries (entry_id, transaction_id, account_id, debit, credit, description, line_no)
		VALUES ($1, $2, $3, $4, $5, $6, $7);
	`
	batch := &pgx.Batch{}
	for _, entry := range entries {
		modelEntry := mapping.ToModelEntry(entry)
		batch.Queue(query,
			modelEntry.EntryID,
			modelEntry.TransactionID,
			modelEntry.AccountID,
			modelEntry.Debit,
			modelEntry.Credit,
			modelEntry.Description,
			modelEntry.LineNo,
		)
	}

	br := tx.SendBatch(ctx, batch)
	var batchErr error
	for i := 0; i < batch.Len(); i++ {
		if _, err := br.Exec(); err != nil && batchErr == nil {
			batchErr = fmt.Errorf("failed to insert entry %s: %w", entries[i].EntryID, err)
		}
	}
	if err := br.Close(); err != nil && batchErr == nil {
		batchErr = fmt.Errorf("failed to close entry insert batch: %w", err)
	}
	return batchErr
}

// scanEntry reads one entry row in entryColumns order.
func scanEntry(row pgx.Row) (models.Entry, error) {
	var modelEntry models.Entry
	err := row.Scan(
		&modelEntry.EntryID,
		&modelEntry.TransactionID,
		&modelEntry.AccountID,
		&modelEntry.Debit,
		&modelEntry.Credit,
		&modelEntry.Description,
		&modelEntry.LineNo,
	)
	return modelEntry, err
}

// distinctAccountIDs returns the unique account codes referenced by entries,
// in first-seen order.
func distinctAccountIDs(entries []domain.Entry) []string {
	seen := make(map[string]bool, len(entries))
	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		if !seen[e.AccountID] {
			seen[e.AccountID] = true
			ids = append(ids, e.AccountID)
		}
	}
	return ids
}

// accountTypesOf projects a locked account map down to its types.
func accountTypesOf(accounts map[string]domain.Account) map[string]domain.AccountType {
	types := make(map[string]domain.AccountType, len(accounts))
	for id, account := range accounts {
		types[id] = account.AccountType
	}
	return types
}
