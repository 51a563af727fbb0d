package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"assettrack/internal/issuance/models"
	"assettrack/pkg/platform/sentinel"
)

// Schema creates the issuances table. The partial unique index is the
// database-level rendering of the single-open-issuance rule: at most one
// stored-issued row per asset can exist at any time.
const Schema = `
CREATE TABLE IF NOT EXISTS issuances (
	id                   TEXT PRIMARY KEY,
	asset_id             TEXT NOT NULL,
	asset_name           TEXT NOT NULL,
	issued_to            TEXT NOT NULL,
	issued_by            TEXT NOT NULL DEFAULT '',
	issued_date          TIMESTAMPTZ NOT NULL,
	expected_return_date TIMESTAMPTZ,
	actual_return_date   TIMESTAMPTZ,
	status               TEXT NOT NULL,
	purpose              TEXT NOT NULL DEFAULT '',
	conditions           TEXT NOT NULL DEFAULT '',
	notes                TEXT NOT NULL DEFAULT '',
	created_at           TIMESTAMPTZ NOT NULL,
	updated_at           TIMESTAMPTZ NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS issuances_one_open_per_asset
	ON issuances (asset_id) WHERE status = 'issued'`

const issuanceColumns = `id, asset_id, asset_name, issued_to, issued_by, issued_date,
	expected_return_date, actual_return_date, status, purpose, conditions, notes,
	created_at, updated_at`

// Postgres persists issuances in PostgreSQL.
type Postgres struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed issuance store.
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

// Open appends a new issuance with stored status issued. Fails with
// ErrConflict when the asset already has an open issuance, enforced by the
// partial unique index.
func (s *Postgres) Open(ctx context.Context, issuance *models.Issuance) error {
	query := `
		INSERT INTO issuances (` + issuanceColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`
	_, err := s.db.ExecContext(ctx, query,
		issuance.ID, issuance.AssetID, issuance.AssetName, issuance.IssuedTo,
		issuance.IssuedBy, issuance.IssuedDate, nullTimePtr(issuance.ExpectedReturnDate),
		nullTimePtr(issuance.ActualReturnDate), string(issuance.Status), issuance.Purpose,
		issuance.Conditions, issuance.Notes, issuance.CreatedAt, issuance.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("open issuance: %w", err)
	}
	return nil
}

// Close transitions an open issuance to returned, recording the return date.
// Fails with ErrInvalidState when the stored status is not issued.
func (s *Postgres) Close(ctx context.Context, id string, now time.Time) (*models.Issuance, error) {
	query := `
		UPDATE issuances SET
			status = 'returned', actual_return_date = $2, updated_at = $2
		WHERE id = $1 AND status = 'issued'
		RETURNING ` + issuanceColumns
	issuance, err := scanIssuance(s.db.QueryRowContext(ctx, query, id, now))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, s.stateError(ctx, id)
		}
		return nil, fmt.Errorf("close issuance: %w", err)
	}
	return issuance, nil
}

// MarkLostOrDamaged applies the administrative transition from issued to
// lost or damaged. Not reachable from the issue/return happy path.
func (s *Postgres) MarkLostOrDamaged(ctx context.Context, id string, status models.IssuanceStatus, now time.Time) (*models.Issuance, error) {
	if status != models.StatusLost && status != models.StatusDamaged {
		return nil, sentinel.ErrInvalidState
	}
	query := `
		UPDATE issuances SET status = $2, updated_at = $3
		WHERE id = $1 AND status = 'issued'
		RETURNING ` + issuanceColumns
	issuance, err := scanIssuance(s.db.QueryRowContext(ctx, query, id, string(status), now))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, s.stateError(ctx, id)
		}
		return nil, fmt.Errorf("flag issuance: %w", err)
	}
	return issuance, nil
}

// Reopen reverts a Close or MarkLostOrDamaged. Reserved for the lifecycle
// coordinator's rollback path when the registry write after a ledger
// transition cannot complete.
func (s *Postgres) Reopen(ctx context.Context, id string, now time.Time) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE issuances SET
			status = 'issued', actual_return_date = NULL, updated_at = $2
		WHERE id = $1 AND status <> 'issued'
	`, id, now)
	if err != nil {
		return fmt.Errorf("reopen issuance: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		if _, findErr := s.FindByID(ctx, id); findErr != nil {
			return findErr
		}
		return sentinel.ErrInvalidState
	}
	return nil
}

// Delete removes an issuance outright. Reserved for the coordinator rolling
// back a half-applied issue operation; issuances are otherwise never deleted.
func (s *Postgres) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM issuances WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete issuance: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

// FindByID returns the issuance with the given id.
func (s *Postgres) FindByID(ctx context.Context, id string) (*models.Issuance, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+issuanceColumns+` FROM issuances WHERE id = $1`, id)
	issuance, err := scanIssuance(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find issuance: %w", err)
	}
	return issuance, nil
}

// FindOpenByAsset returns the open issuance for an asset, or ErrNotFound when
// the asset is unissued.
func (s *Postgres) FindOpenByAsset(ctx context.Context, assetID string) (*models.Issuance, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+issuanceColumns+` FROM issuances WHERE asset_id = $1 AND status = 'issued'`,
		assetID,
	)
	issuance, err := scanIssuance(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find open issuance: %w", err)
	}
	return issuance, nil
}

// List returns every issuance matching the filter, newest first.
func (s *Postgres) List(ctx context.Context, filter models.Filter) ([]*models.Issuance, error) {
	query := `SELECT ` + issuanceColumns + ` FROM issuances WHERE 1=1`
	args := []any{}

	if filter.Status != "" && filter.Status != "all" {
		args = append(args, string(filter.Status))
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		n := len(args)
		query += fmt.Sprintf(
			" AND (asset_name ILIKE $%d OR issued_to ILIKE $%d OR purpose ILIKE $%d)",
			n, n, n,
		)
	}
	query += " ORDER BY created_at DESC, id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list issuances: %w", err)
	}
	defer rows.Close()

	var issuances []*models.Issuance
	for rows.Next() {
		issuance, err := scanIssuance(rows)
		if err != nil {
			return nil, fmt.Errorf("scan issuance: %w", err)
		}
		issuances = append(issuances, issuance)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list issuances: %w", err)
	}
	return issuances, nil
}

// stateError distinguishes a missing row from one in the wrong state after a
// guarded UPDATE matched nothing.
func (s *Postgres) stateError(ctx context.Context, id string) error {
	if _, err := s.FindByID(ctx, id); err != nil {
		return err
	}
	return sentinel.ErrInvalidState
}

type scanner interface {
	Scan(dest ...any) error
}

func scanIssuance(row scanner) (*models.Issuance, error) {
	var (
		issuance       models.Issuance
		status         string
		expectedReturn sql.NullTime
		actualReturn   sql.NullTime
	)
	err := row.Scan(
		&issuance.ID, &issuance.AssetID, &issuance.AssetName, &issuance.IssuedTo,
		&issuance.IssuedBy, &issuance.IssuedDate, &expectedReturn, &actualReturn,
		&status, &issuance.Purpose, &issuance.Conditions, &issuance.Notes,
		&issuance.CreatedAt, &issuance.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	issuance.Status = models.IssuanceStatus(status)
	if expectedReturn.Valid {
		t := expectedReturn.Time
		issuance.ExpectedReturnDate = &t
	}
	if actualReturn.Valid {
		t := actualReturn.Time
		issuance.ActualReturnDate = &t
	}
	return &issuance, nil
}

func nullTimePtr(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
