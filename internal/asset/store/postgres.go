package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"assettrack/internal/asset/models"
	"assettrack/pkg/platform/sentinel"
)

// Schema creates the assets table. Applied at startup when Postgres is
// configured.
const Schema = `
CREATE TABLE IF NOT EXISTS assets (
	id              TEXT PRIMARY KEY,
	name            TEXT NOT NULL,
	type            TEXT NOT NULL,
	category        TEXT NOT NULL DEFAULT '',
	serial_number   TEXT NOT NULL DEFAULT '',
	model           TEXT NOT NULL DEFAULT '',
	manufacturer    TEXT NOT NULL DEFAULT '',
	purchase_date   TIMESTAMPTZ,
	purchase_price  DOUBLE PRECISION NOT NULL DEFAULT 0,
	warranty_expiry TIMESTAMPTZ,
	status          TEXT NOT NULL,
	location        TEXT NOT NULL DEFAULT '',
	assigned_to     TEXT NOT NULL,
	description     TEXT NOT NULL DEFAULT '',
	last_updated    TIMESTAMPTZ NOT NULL
)`

const assetColumns = `id, name, type, category, serial_number, model, manufacturer,
	purchase_date, purchase_price, warranty_expiry, status, location, assigned_to,
	description, last_updated`

// Postgres persists assets in PostgreSQL.
type Postgres struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed asset store.
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

// Create inserts a new asset. Fails with ErrConflict if the id is taken.
func (s *Postgres) Create(ctx context.Context, asset *models.Asset) error {
	query := `
		INSERT INTO assets (` + assetColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`
	_, err := s.db.ExecContext(ctx, query,
		asset.ID, asset.Name, string(asset.Type), asset.Category, asset.SerialNumber,
		asset.Model, asset.Manufacturer, nullTime(asset.PurchaseDate), asset.PurchasePrice,
		nullTime(asset.WarrantyExpiry), string(asset.Status), asset.Location,
		asset.AssignedTo, asset.Description, asset.LastUpdated,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("create asset: %w", err)
	}
	return nil
}

// Update replaces an existing asset record.
func (s *Postgres) Update(ctx context.Context, asset *models.Asset) error {
	query := `
		UPDATE assets SET
			name = $2, type = $3, category = $4, serial_number = $5, model = $6,
			manufacturer = $7, purchase_date = $8, purchase_price = $9,
			warranty_expiry = $10, status = $11, location = $12, assigned_to = $13,
			description = $14, last_updated = $15
		WHERE id = $1
	`
	res, err := s.db.ExecContext(ctx, query,
		asset.ID, asset.Name, string(asset.Type), asset.Category, asset.SerialNumber,
		asset.Model, asset.Manufacturer, nullTime(asset.PurchaseDate), asset.PurchasePrice,
		nullTime(asset.WarrantyExpiry), string(asset.Status), asset.Location,
		asset.AssignedTo, asset.Description, asset.LastUpdated,
	)
	if err != nil {
		return fmt.Errorf("update asset: %w", err)
	}
	return requireRow(res)
}

// SetAssignedTo updates the holder and stamps LastUpdated. Reserved for the
// lifecycle coordinator; no other caller may change assignment.
func (s *Postgres) SetAssignedTo(ctx context.Context, id, holder string, now time.Time) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE assets SET assigned_to = $2, last_updated = $3 WHERE id = $1`,
		id, holder, now,
	)
	if err != nil {
		return fmt.Errorf("set assigned_to: %w", err)
	}
	return requireRow(res)
}

// Delete removes an asset record.
func (s *Postgres) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM assets WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete asset: %w", err)
	}
	return requireRow(res)
}

// FindByID returns the asset with the given id.
func (s *Postgres) FindByID(ctx context.Context, id string) (*models.Asset, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+assetColumns+` FROM assets WHERE id = $1`, id)
	asset, err := scanAsset(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find asset: %w", err)
	}
	return asset, nil
}

// List returns every asset matching the filter, ordered by name. The literal
// status/type "all" matches everything, mirroring the in-memory filter.
func (s *Postgres) List(ctx context.Context, filter models.Filter) ([]*models.Asset, error) {
	query := `SELECT ` + assetColumns + ` FROM assets WHERE 1=1`
	args := []any{}

	if filter.Status != "" && filter.Status != "all" {
		args = append(args, string(filter.Status))
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if filter.Type != "" && filter.Type != "all" {
		args = append(args, string(filter.Type))
		query += fmt.Sprintf(" AND type = $%d", len(args))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		n := len(args)
		query += fmt.Sprintf(
			" AND (name ILIKE $%d OR serial_number ILIKE $%d OR manufacturer ILIKE $%d OR assigned_to ILIKE $%d)",
			n, n, n, n,
		)
	}
	query += " ORDER BY name, id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list assets: %w", err)
	}
	defer rows.Close()

	var assets []*models.Asset
	for rows.Next() {
		asset, err := scanAsset(rows)
		if err != nil {
			return nil, fmt.Errorf("scan asset: %w", err)
		}
		assets = append(assets, asset)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list assets: %w", err)
	}
	return assets, nil
}

// Count returns the number of stored assets.
func (s *Postgres) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM assets`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count assets: %w", err)
	}
	return count, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAsset(row scanner) (*models.Asset, error) {
	var (
		asset          models.Asset
		assetType      string
		status         string
		purchaseDate   sql.NullTime
		warrantyExpiry sql.NullTime
	)
	err := row.Scan(
		&asset.ID, &asset.Name, &assetType, &asset.Category, &asset.SerialNumber,
		&asset.Model, &asset.Manufacturer, &purchaseDate, &asset.PurchasePrice,
		&warrantyExpiry, &status, &asset.Location, &asset.AssignedTo,
		&asset.Description, &asset.LastUpdated,
	)
	if err != nil {
		return nil, err
	}
	asset.Type = models.AssetType(assetType)
	asset.Status = models.AssetStatus(status)
	if purchaseDate.Valid {
		asset.PurchaseDate = purchaseDate.Time
	}
	if warrantyExpiry.Valid {
		asset.WarrantyExpiry = warrantyExpiry.Time
	}
	return &asset, nil
}

func nullTime(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t, Valid: true}
}

func requireRow(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}
