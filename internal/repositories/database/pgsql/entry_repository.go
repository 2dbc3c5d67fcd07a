package pgsql

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sebenza-books/sebenza_ledger/internal/apperrors"
	"github.com/sebenza-books/sebenza_ledger/internal/core/domain"
	portsrepo "github.com/sebenza-books/sebenza_ledger/internal/core/ports/repositories"
	"github.com/sebenza-books/sebenza_ledger/internal/utils/pagination"
)

// PgxEntryRepository persists ledger entries and their lines.
type PgxEntryRepository struct {
	BaseRepository
}

// newPgxEntryRepository creates a new repository for ledger entry data.
func newPgxEntryRepository(pool *pgxpool.Pool) portsrepo.EntryRepositoryWithTx {
	return &PgxEntryRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure PgxEntryRepository implements portsrepo.EntryRepositoryWithTx
var _ portsrepo.EntryRepositoryWithTx = (*PgxEntryRepository)(nil)

const entryColumns = `
	entry_id, entry_number, transaction_date, description, reference,
	total_debit, total_credit, status, source_module,
	original_entry_id, reversing_entry_id,
	created_at, created_by, last_updated_at, last_updated_by
`

const lineColumns = `
	l.line_id, l.entry_id, l.account_id, a.account_name, l.description,
	l.debit_amount, l.credit_amount
`

// SaveEntry inserts the entry and its lines within a DB transaction and
// returns the assigned entry ID.
func (r *PgxEntryRepository) SaveEntry(ctx context.Context, entry domain.LedgerEntry) (int64, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer r.Rollback(ctx, tx) // no-op once committed

	entryID, err := insertEntry(ctx, tx, entry)
	if err != nil {
		return 0, err
	}

	if err := insertLines(ctx, tx, entryID, entry.Lines); err != nil {
		return 0, err
	}

	if err := r.Commit(ctx, tx); err != nil {
		return 0, err
	}
	return entryID, nil
}

func insertEntry(ctx context.Context, tx pgx.Tx, entry domain.LedgerEntry) (int64, error) {
	query := `
		INSERT INTO ledger_entries (
			entry_number, transaction_date, description, reference,
			total_debit, total_credit, status, source_module,
			original_entry_id, reversing_entry_id,
			created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING entry_id;
	`
	var entryID int64
	err := tx.QueryRow(ctx, query,
		entry.EntryNumber,
		entry.TransactionDate,
		entry.Description,
		entry.Reference,
		entry.TotalDebit,
		entry.TotalCredit,
		entry.Status,
		entry.SourceModule,
		entry.OriginalEntryID,
		entry.ReversingEntryID,
		entry.CreatedAt,
		entry.CreatedBy,
		entry.LastUpdatedAt,
		entry.LastUpdatedBy,
	).Scan(&entryID)
	if err != nil {
		return 0, apperrors.NewAppError(500, "failed to insert ledger entry "+entry.EntryNumber, err)
	}
	return entryID, nil
}

func insertLines(ctx context.Context, tx pgx.Tx, entryID int64, lines []domain.LedgerLine) error {
	batch := &pgx.Batch{}
	query := `
		INSERT INTO ledger_entry_lines (entry_id, account_id, description, debit_amount, credit_amount)
		VALUES ($1, $2, $3, $4, $5);
	`
	for _, ln := range lines {
		batch.Queue(query, entryID, ln.AccountID, ln.Description, ln.DebitAmount, ln.CreditAmount)
	}

	results := tx.SendBatch(ctx, batch)
	defer results.Close()
	for range lines {
		if _, err := results.Exec(); err != nil {
			return apperrors.NewAppError(500, "failed to insert ledger entry line", err)
		}
	}
	return nil
}

// FindEntryByID retrieves an entry and its lines.
func (r *PgxEntryRepository) FindEntryByID(ctx context.Context, entryID int64) (*domain.LedgerEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM ledger_entries WHERE entry_id = $1;`

	var entry domain.LedgerEntry
	err := r.Pool.QueryRow(ctx, query, entryID).Scan(
		&entry.ID,
		&entry.EntryNumber,
		&entry.TransactionDate,
		&entry.Description,
		&entry.Reference,
		&entry.TotalDebit,
		&entry.TotalCredit,
		&entry.Status,
		&entry.SourceModule,
		&entry.OriginalEntryID,
		&entry.ReversingEntryID,
		&entry.CreatedAt,
		&entry.CreatedBy,
		&entry.LastUpdatedAt,
		&entry.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to query ledger entry", err)
	}

	lines, err := r.findLinesByEntryID(ctx, entryID)
	if err != nil {
		return nil, err
	}
	entry.Lines = lines

	return &entry, nil
}

func (r *PgxEntryRepository) findLinesByEntryID(ctx context.Context, entryID int64) ([]domain.LedgerLine, error) {
	query := `
		SELECT ` + lineColumns + `
		FROM ledger_entry_lines l
		JOIN accounts a ON a.account_id = l.account_id
		WHERE l.entry_id = $1
		ORDER BY l.line_id;
	`
	rows, err := r.Pool.Query(ctx, query, entryID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query ledger entry lines", err)
	}
	defer rows.Close()

	var lines []domain.LedgerLine
	for rows.Next() {
		var ln domain.LedgerLine
		if err := rows.Scan(&ln.ID, &ln.EntryID, &ln.AccountID, &ln.AccountName, &ln.Description, &ln.DebitAmount, &ln.CreditAmount); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan ledger entry line", err)
		}
		lines = append(lines, ln)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "failed reading ledger entry lines", err)
	}
	return lines, nil
}

// ListEntries retrieves a page of entries ordered by transaction date (newest
// first), then entry ID, using token-based keyset pagination.
func (r *PgxEntryRepository) ListEntries(ctx context.Context, limit int, nextToken *string, sourceModule string) ([]domain.LedgerEntry, *string, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `SELECT ` + entryColumns + ` FROM ledger_entries WHERE 1=1`
	args := []interface{}{}
	argPos := 1

	if sourceModule != "" {
		query += ` AND source_module = $` + strconv.Itoa(argPos)
		args = append(args, sourceModule)
		argPos++
	}

	if nextToken != nil && *nextToken != "" {
		afterDate, afterID, err := pagination.DecodeToken(*nextToken)
		if err != nil {
			return nil, nil, apperrors.NewAppError(400, "invalid pagination token", err)
		}
		query += ` AND (transaction_date, entry_id) < ($` + strconv.Itoa(argPos) + `, $` + strconv.Itoa(argPos+1) + `)`
		args = append(args, afterDate, afterID)
		argPos += 2
	}

	// Fetch one extra row to know whether another page exists.
	query += ` ORDER BY transaction_date DESC, entry_id DESC LIMIT $` + strconv.Itoa(argPos) + `;`
	args = append(args, limit+1)

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to list ledger entries", err)
	}
	defer rows.Close()

	var entries []domain.LedgerEntry
	for rows.Next() {
		var entry domain.LedgerEntry
		if err := rows.Scan(
			&entry.ID,
			&entry.EntryNumber,
			&entry.TransactionDate,
			&entry.Description,
			&entry.Reference,
			&entry.TotalDebit,
			&entry.TotalCredit,
			&entry.Status,
			&entry.SourceModule,
			&entry.OriginalEntryID,
			&entry.ReversingEntryID,
			&entry.CreatedAt,
			&entry.CreatedBy,
			&entry.LastUpdatedAt,
			&entry.LastUpdatedBy,
		); err != nil {
			return nil, nil, apperrors.NewAppError(500, "failed to scan ledger entry", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed reading ledger entries", err)
	}

	var token *string
	if len(entries) > limit {
		entries = entries[:limit]
		last := entries[len(entries)-1]
		t := pagination.EncodeToken(last.TransactionDate, last.ID)
		token = &t
	}

	return entries, token, nil
}

// UpdateEntry replaces the entry header and its lines within a DB transaction.
func (r *PgxEntryRepository) UpdateEntry(ctx context.Context, entry domain.LedgerEntry) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	query := `
		UPDATE ledger_entries
		SET transaction_date = $2, description = $3, reference = $4,
			total_debit = $5, total_credit = $6, source_module = $7,
			last_updated_at = $8, last_updated_by = $9
		WHERE entry_id = $1;
	`
	tag, err := tx.Exec(ctx, query,
		entry.ID,
		entry.TransactionDate,
		entry.Description,
		entry.Reference,
		entry.TotalDebit,
		entry.TotalCredit,
		entry.SourceModule,
		entry.LastUpdatedAt,
		entry.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update ledger entry", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	// Lines are replaced wholesale; the draft editor owns their shape.
	if _, err := tx.Exec(ctx, `DELETE FROM ledger_entry_lines WHERE entry_id = $1;`, entry.ID); err != nil {
		return apperrors.NewAppError(500, "failed to clear ledger entry lines", err)
	}
	if err := insertLines(ctx, tx, entry.ID, entry.Lines); err != nil {
		return err
	}

	return r.Commit(ctx, tx)
}

// DeleteEntry removes an entry and its lines.
func (r *PgxEntryRepository) DeleteEntry(ctx context.Context, entryID int64) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	if _, err := tx.Exec(ctx, `DELETE FROM ledger_entry_lines WHERE entry_id = $1;`, entryID); err != nil {
		return apperrors.NewAppError(500, "failed to delete ledger entry lines", err)
	}

	tag, err := tx.Exec(ctx, `DELETE FROM ledger_entries WHERE entry_id = $1;`, entryID)
	if err != nil {
		return apperrors.NewAppError(500, "failed to delete ledger entry", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	return r.Commit(ctx, tx)
}

// UpdateEntryStatus transitions an entry's status.
func (r *PgxEntryRepository) UpdateEntryStatus(ctx context.Context, entryID int64, status domain.EntryStatus, updatedBy string, updatedAt time.Time) error {
	query := `
		UPDATE ledger_entries
		SET status = $2, last_updated_at = $3, last_updated_by = $4
		WHERE entry_id = $1;
	`
	tag, err := r.Pool.Exec(ctx, query, entryID, status, updatedAt, updatedBy)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update ledger entry status", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// SaveReversal inserts the reversing entry and marks the original entry
// REVERSED with both-way linkage, in a single transaction.
func (r *PgxEntryRepository) SaveReversal(ctx context.Context, original domain.LedgerEntry, reversal domain.LedgerEntry) (int64, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer r.Rollback(ctx, tx)

	reversalID, err := insertEntry(ctx, tx, reversal)
	if err != nil {
		return 0, err
	}
	if err := insertLines(ctx, tx, reversalID, reversal.Lines); err != nil {
		return 0, err
	}

	query := `
		UPDATE ledger_entries
		SET status = $2, reversing_entry_id = $3, last_updated_at = $4, last_updated_by = $5
		WHERE entry_id = $1;
	`
	tag, err := tx.Exec(ctx, query,
		original.ID,
		domain.EntryReversed,
		reversalID,
		reversal.CreatedAt,
		reversal.CreatedBy,
	)
	if err != nil {
		return 0, apperrors.NewAppError(500, "failed to mark ledger entry reversed", err)
	}
	if tag.RowsAffected() == 0 {
		return 0, apperrors.ErrNotFound
	}

	if err := r.Commit(ctx, tx); err != nil {
		return 0, err
	}
	return reversalID, nil
}
