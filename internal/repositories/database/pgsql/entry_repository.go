package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/paisetrail/ledger_backend/internal/apperrors"
	"github.com/paisetrail/ledger_backend/internal/core/domain"
	portsrepo "github.com/paisetrail/ledger_backend/internal/core/ports/repositories"
	"github.com/paisetrail/ledger_backend/internal/models"
	"github.com/paisetrail/ledger_backend/internal/utils/mapping"
	"github.com/paisetrail/ledger_backend/internal/utils/pagination"
)

type pgxEntryRepository struct {
	BaseRepository
}

// newPgxEntryRepository creates a new instance of pgxEntryRepository
func newPgxEntryRepository(pool *pgxpool.Pool) *pgxEntryRepository {
	return &pgxEntryRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure pgxEntryRepository implements the journal repository facade
var _ portsrepo.EntryRepositoryWithTx = (*pgxEntryRepository)(nil)

const entryColumns = `entry_id, reference_type, reference_id, description, entry_date, is_reversal, reverses_entry_id, created_at, created_by, last_updated_at, last_updated_by`

const lineColumns = `line_id, entry_id, account_id, direction, amount_paise, created_at, created_by, last_updated_at, last_updated_by`

func scanEntry(row pgx.Row) (models.LedgerEntry, error) {
	var m models.LedgerEntry
	err := row.Scan(
		&m.EntryID,
		&m.ReferenceType,
		&m.ReferenceID,
		&m.Description,
		&m.EntryDate,
		&m.IsReversal,
		&m.ReversesEntryID,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

// insertEntryAndLines writes an entry header and all its lines inside the given
// transaction. Every journal write in the package funnels through here, so the
// header and lines can never be persisted separately.
func insertEntryAndLines(ctx context.Context, tx pgx.Tx, entry domain.LedgerEntry, lines []domain.LedgerLine) error {
	modelEntry := mapping.ToModelEntry(entry)
	insertEntrySQL := `
		INSERT INTO ledger_entries (` + entryColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
	`
	_, err := tx.Exec(ctx, insertEntrySQL,
		modelEntry.EntryID,
		modelEntry.ReferenceType,
		modelEntry.ReferenceID,
		modelEntry.Description,
		modelEntry.EntryDate,
		modelEntry.IsReversal,
		modelEntry.ReversesEntryID,
		modelEntry.CreatedAt,
		modelEntry.CreatedBy,
		modelEntry.LastUpdatedAt,
		modelEntry.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to insert ledger entry", err)
	}

	insertLineSQL := `
		INSERT INTO ledger_lines (` + lineColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
	`
	batch := &pgx.Batch{}
	for _, line := range lines {
		modelLine := mapping.ToModelLine(line)
		batch.Queue(insertLineSQL,
			modelLine.LineID,
			modelLine.EntryID,
			modelLine.AccountID,
			modelLine.Direction,
			modelLine.AmountPaise,
			modelLine.CreatedAt,
			modelLine.CreatedBy,
			modelLine.LastUpdatedAt,
			modelLine.LastUpdatedBy,
		)
	}
	br := tx.SendBatch(ctx, batch)
	defer br.Close()
	for i := 0; i < len(lines); i++ {
		if _, err := br.Exec(); err != nil {
			return apperrors.NewAppError(500, fmt.Sprintf("failed to insert ledger line %d", i), err)
		}
	}
	return nil
}

// SaveEntry persists an entry and its lines in one transaction of its own.
func (r *pgxEntryRepository) SaveEntry(ctx context.Context, entry domain.LedgerEntry, lines []domain.LedgerLine) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	if err := insertEntryAndLines(ctx, tx, entry, lines); err != nil {
		return err
	}
	return r.Commit(ctx, tx)
}

// SaveEntryInTx persists an entry and its lines inside a caller-owned
// transaction.
func (r *pgxEntryRepository) SaveEntryInTx(ctx context.Context, tx pgx.Tx, entry domain.LedgerEntry, lines []domain.LedgerLine) error {
	return insertEntryAndLines(ctx, tx, entry, lines)
}

// FindEntryByID retrieves an entry header by its ID.
func (r *pgxEntryRepository) FindEntryByID(ctx context.Context, entryID string) (*domain.LedgerEntry, error) {
	selectSQL := `SELECT ` + entryColumns + ` FROM ledger_entries WHERE entry_id = $1;`
	m, err := scanEntry(r.Pool.QueryRow(ctx, selectSQL, entryID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, fmt.Sprintf("failed to find entry %s", entryID), err)
	}
	entry := mapping.ToDomainEntry(m)
	return &entry, nil
}

// FindLinesByEntryID retrieves all lines of an entry in insertion order.
func (r *pgxEntryRepository) FindLinesByEntryID(ctx context.Context, entryID string) ([]domain.LedgerLine, error) {
	selectSQL := `SELECT ` + lineColumns + ` FROM ledger_lines WHERE entry_id = $1 ORDER BY created_at ASC, line_id ASC;`
	rows, err := r.Pool.Query(ctx, selectSQL, entryID)
	if err != nil {
		return nil, apperrors.NewAppError(500, fmt.Sprintf("failed to query lines for entry %s", entryID), err)
	}
	defer rows.Close()

	var modelLines []models.LedgerLine
	for rows.Next() {
		var m models.LedgerLine
		err := rows.Scan(
			&m.LineID,
			&m.EntryID,
			&m.AccountID,
			&m.Direction,
			&m.AmountPaise,
			&m.CreatedAt,
			&m.CreatedBy,
			&m.LastUpdatedAt,
			&m.LastUpdatedBy,
		)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan ledger line row", err)
		}
		modelLines = append(modelLines, m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating ledger line rows", err)
	}
	return mapping.ToDomainLineSlice(modelLines), nil
}

// FindReversalOf returns the entry that reverses the given original, or
// ErrNotFound when no reversal has been posted. The partial unique index on
// reverses_entry_id guarantees at most one row can match.
func (r *pgxEntryRepository) FindReversalOf(ctx context.Context, originalEntryID string) (*domain.LedgerEntry, error) {
	selectSQL := `SELECT ` + entryColumns + ` FROM ledger_entries WHERE reverses_entry_id = $1;`
	m, err := scanEntry(r.Pool.QueryRow(ctx, selectSQL, originalEntryID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, fmt.Sprintf("failed to find reversal of entry %s", originalEntryID), err)
	}
	entry := mapping.ToDomainEntry(m)
	return &entry, nil
}

// ListEntries retrieves a paginated list of entries, newest first, using
// token-based pagination over (entry_date, created_at).
func (r *pgxEntryRepository) ListEntries(ctx context.Context, limit int, nextToken *string) ([]domain.LedgerEntry, *string, error) {
	fetchLimit := limit + 1

	baseSQL := `SELECT ` + entryColumns + ` FROM ledger_entries`
	args := []interface{}{}
	if nextToken != nil && *nextToken != "" {
		entryDate, createdAt, err := pagination.DecodeToken(*nextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
		}
		baseSQL += ` WHERE (entry_date, created_at) < ($1, $2)`
		args = append(args, entryDate, createdAt)
	}
	baseSQL += fmt.Sprintf(` ORDER BY entry_date DESC, created_at DESC LIMIT $%d;`, len(args)+1)
	args = append(args, fetchLimit)

	rows, err := r.Pool.Query(ctx, baseSQL, args...)
	if err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to query entries", err)
	}
	defer rows.Close()

	var modelEntries []models.LedgerEntry
	for rows.Next() {
		m, err := scanEntry(rows)
		if err != nil {
			return nil, nil, apperrors.NewAppError(500, "failed to scan entry row", err)
		}
		modelEntries = append(modelEntries, m)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, apperrors.NewAppError(500, "error iterating entry rows", err)
	}

	var newNextToken *string
	if len(modelEntries) == fetchLimit {
		last := modelEntries[limit-1]
		token := pagination.EncodeToken(last.EntryDate, last.CreatedAt)
		newNextToken = &token
		modelEntries = modelEntries[:limit]
	}

	entries := make([]domain.LedgerEntry, 0, len(modelEntries))
	for _, m := range modelEntries {
		entries = append(entries, mapping.ToDomainEntry(m))
	}
	return entries, newNextToken, nil
}

// SumLinesByAccountID returns the debit and credit paise totals posted against
// an account. COALESCE keeps accounts with no lines at zero instead of NULL.
func (r *pgxEntryRepository) SumLinesByAccountID(ctx context.Context, accountID string) (domain.Paise, domain.Paise, error) {
	sumSQL := `
		SELECT
			COALESCE(SUM(amount_paise) FILTER (WHERE direction = 'DEBIT'), 0),
			COALESCE(SUM(amount_paise) FILTER (WHERE direction = 'CREDIT'), 0)
		FROM ledger_lines
		WHERE account_id = $1;
	`
	var debits, credits int64
	if err := r.Pool.QueryRow(ctx, sumSQL, accountID).Scan(&debits, &credits); err != nil {
		return 0, 0, apperrors.NewAppError(500, fmt.Sprintf("failed to sum lines for account %s", accountID), err)
	}
	return domain.Paise(debits), domain.Paise(credits), nil
}

// HasLinesForAccount reports whether any posted line references the account.
func (r *pgxEntryRepository) HasLinesForAccount(ctx context.Context, accountID string) (bool, error) {
	existsSQL := `SELECT EXISTS (SELECT 1 FROM ledger_lines WHERE account_id = $1);`
	var exists bool
	if err := r.Pool.QueryRow(ctx, existsSQL, accountID).Scan(&exists); err != nil {
		return false, apperrors.NewAppError(500, fmt.Sprintf("failed to check lines for account %s", accountID), err)
	}
	return exists, nil
}
