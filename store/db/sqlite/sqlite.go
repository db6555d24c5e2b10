// Package sqlite implements the store driver on modernc.org/sqlite.
package sqlite

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"
	_ "modernc.org/sqlite"

	"github.com/hrygo/autosense/internal/profile"
	"github.com/hrygo/autosense/store"
)

const latestSchema = `
CREATE TABLE IF NOT EXISTS vehicle (
	id TEXT PRIMARY KEY,
	make TEXT NOT NULL,
	model TEXT NOT NULL,
	year INTEGER NOT NULL DEFAULT 0,
	trim TEXT NOT NULL DEFAULT '',
	photo_url TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS manual_chunk (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	vehicle_id TEXT NOT NULL,
	content TEXT NOT NULL,
	page INTEGER NOT NULL DEFAULT 0,
	section TEXT NOT NULL DEFAULT '',
	content_type TEXT NOT NULL DEFAULT 'general',
	has_warning INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_manual_chunk_vehicle_id ON manual_chunk (vehicle_id);
`

// DB is the sqlite store driver.
type DB struct {
	db      *sql.DB
	profile *profile.Profile
}

// NewDB opens the sqlite database referenced by the profile DSN.
func NewDB(profile *profile.Profile) (store.Driver, error) {
	if profile == nil {
		return nil, errors.New("profile is nil")
	}

	// A shared busy timeout keeps concurrent turn processing from
	// tripping over sqlite's single-writer model.
	db, err := sql.Open("sqlite", profile.DSN+"?_pragma=busy_timeout(10000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open db with dsn: %s", profile.DSN)
	}

	return &DB{db: db, profile: profile}, nil
}

func (d *DB) GetDB() any {
	return d.db
}

func (d *DB) Close() error {
	return d.db.Close()
}

func (d *DB) Migrate(ctx context.Context) error {
	if _, err := d.db.ExecContext(ctx, latestSchema); err != nil {
		return errors.Wrap(err, "failed to apply schema")
	}
	return nil
}

func (d *DB) UpsertVehicle(ctx context.Context, vehicle *store.Vehicle) error {
	query := `
		INSERT INTO vehicle (id, make, model, year, trim, photo_url)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (id)
		DO UPDATE SET make = EXCLUDED.make, model = EXCLUDED.model,
			year = EXCLUDED.year, trim = EXCLUDED.trim, photo_url = EXCLUDED.photo_url
	`
	_, err := d.db.ExecContext(ctx, query,
		vehicle.ID, vehicle.Make, vehicle.Model, vehicle.Year, vehicle.Trim, vehicle.PhotoURL)
	if err != nil {
		return errors.Wrap(err, "failed to upsert vehicle")
	}
	return nil
}

func (d *DB) ListVehicles(ctx context.Context) ([]*store.Vehicle, error) {
	rows, err := d.db.QueryContext(ctx,
		`SELECT id, make, model, year, trim, photo_url FROM vehicle ORDER BY make, model, year`)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list vehicles")
	}
	defer rows.Close()

	var vehicles []*store.Vehicle
	for rows.Next() {
		var v store.Vehicle
		if err := rows.Scan(&v.ID, &v.Make, &v.Model, &v.Year, &v.Trim, &v.PhotoURL); err != nil {
			return nil, errors.Wrap(err, "failed to scan vehicle")
		}
		vehicles = append(vehicles, &v)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate vehicles")
	}
	return vehicles, nil
}

func (d *DB) GetVehicle(ctx context.Context, id string) (*store.Vehicle, error) {
	var v store.Vehicle
	err := d.db.QueryRowContext(ctx,
		`SELECT id, make, model, year, trim, photo_url FROM vehicle WHERE id = ?`, id).
		Scan(&v.ID, &v.Make, &v.Model, &v.Year, &v.Trim, &v.PhotoURL)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get vehicle")
	}
	return &v, nil
}

func (d *DB) CreateManualChunk(ctx context.Context, chunk *store.ManualChunk) error {
	query := `
		INSERT INTO manual_chunk (vehicle_id, content, page, section, content_type, has_warning)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	result, err := d.db.ExecContext(ctx, query,
		chunk.VehicleID, chunk.Content, chunk.Page, chunk.Section, chunk.ContentType, boolToInt(chunk.HasWarning))
	if err != nil {
		return errors.Wrap(err, "failed to create manual chunk")
	}
	id, err := result.LastInsertId()
	if err != nil {
		return errors.Wrap(err, "failed to read chunk id")
	}
	chunk.ID = id
	return nil
}

func (d *DB) ListManualChunks(ctx context.Context, find *store.FindManualChunk) ([]*store.ManualChunk, error) {
	where, args := []string{"1 = 1"}, []any{}
	if find != nil {
		if find.VehicleID != nil {
			where = append(where, "vehicle_id = ?")
			args = append(args, *find.VehicleID)
		}
		if find.WarningOnly {
			where = append(where, "has_warning = 1")
		}
	}

	query := `SELECT id, vehicle_id, content, page, section, content_type, has_warning
		FROM manual_chunk WHERE ` + joinAnd(where) + ` ORDER BY id`
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list manual chunks")
	}
	defer rows.Close()

	var chunks []*store.ManualChunk
	for rows.Next() {
		var c store.ManualChunk
		var hasWarning int
		if err := rows.Scan(&c.ID, &c.VehicleID, &c.Content, &c.Page, &c.Section, &c.ContentType, &hasWarning); err != nil {
			return nil, errors.Wrap(err, "failed to scan manual chunk")
		}
		c.HasWarning = hasWarning != 0
		chunks = append(chunks, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate manual chunks")
	}
	return chunks, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func joinAnd(conditions []string) string {
	out := ""
	for i, c := range conditions {
		if i > 0 {
			out += " AND "
		}
		out += c
	}
	return out
}
