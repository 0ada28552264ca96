package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/moodytx/directory/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS categories (
	id          TEXT PRIMARY KEY,
	name        TEXT NOT NULL,
	icon        TEXT NOT NULL DEFAULT '',
	image_url   TEXT NOT NULL DEFAULT '',
	description TEXT NOT NULL DEFAULT '',
	sort_order  INTEGER NOT NULL DEFAULT 0,
	created_at  DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at  DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS businesses (
	id           TEXT PRIMARY KEY,
	name         TEXT NOT NULL,
	address      TEXT NOT NULL,
	phone_number TEXT NOT NULL DEFAULT '',
	website      TEXT NOT NULL DEFAULT '',
	description  TEXT NOT NULL DEFAULT '',
	rating       REAL NOT NULL DEFAULT 0,
	hours        TEXT,
	latitude     REAL NOT NULL,
	longitude    REAL NOT NULL,
	photos       TEXT,
	category_id  TEXT NOT NULL,
	place_id     TEXT NOT NULL,
	last_updated INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS maintenance_leases (
	name       TEXT PRIMARY KEY,
	holder     TEXT NOT NULL,
	expires_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_categories_name ON categories(name);
CREATE INDEX IF NOT EXISTS idx_businesses_place_id ON businesses(place_id);
CREATE INDEX IF NOT EXISTS idx_businesses_category_id ON businesses(category_id);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// --- Categories ---

func (s *SQLiteStore) ListCategories(ctx context.Context) ([]model.Category, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, icon, image_url, description, sort_order FROM categories ORDER BY sort_order, name`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list categories")
	}
	defer rows.Close()

	var cats []model.Category
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Icon, &c.ImageURL, &c.Description, &c.Order); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan category")
		}
		cats = append(cats, c)
	}
	return cats, eris.Wrap(rows.Err(), "sqlite: list categories iterate")
}

func (s *SQLiteStore) GetCategory(ctx context.Context, id string) (*model.Category, error) {
	var c model.Category
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, icon, image_url, description, sort_order FROM categories WHERE id = ?`, id).
		Scan(&c.ID, &c.Name, &c.Icon, &c.ImageURL, &c.Description, &c.Order)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get category %s", id)
	}
	return &c, nil
}

func (s *SQLiteStore) CreateCategory(ctx context.Context, c model.Category) (string, error) {
	id := c.ID
	if id == "" {
		id = uuid.New().String()
	}
	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO categories (id, name, icon, image_url, description, sort_order, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id, c.Name, c.Icon, c.ImageURL, c.Description, c.Order, now, now,
	)
	if err != nil {
		return "", eris.Wrapf(err, "sqlite: insert category %q", c.Name)
	}
	return id, nil
}

func (s *SQLiteStore) PatchCategory(ctx context.Context, id string, p model.CategoryPatch) error {
	fields := map[string]any{
		"name":        strPtrArg(p.Name),
		"icon":        strPtrArg(p.Icon),
		"image_url":   strPtrArg(p.ImageURL),
		"description": strPtrArg(p.Description),
		"sort_order":  intPtrArg(p.Order),
	}
	set, args := buildPatchQM(fields)
	if len(set) == 0 {
		return nil
	}
	set = append(set, "updated_at = ?")
	args = append(args, time.Now().UTC())
	args = append(args, id)

	res, err := s.db.ExecContext(ctx,
		fmt.Sprintf(`UPDATE categories SET %s WHERE id = ?`, strings.Join(set, ", ")), args...)
	if err != nil {
		return eris.Wrapf(err, "sqlite: patch category %s", id)
	}
	return checkRowsAffected(res, "category", id)
}

func (s *SQLiteStore) DeleteCategory(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
	if err != nil {
		return eris.Wrapf(err, "sqlite: delete category %s", id)
	}
	return checkRowsAffected(res, "category", id)
}

// --- Businesses ---

const sqliteBusinessCols = `id, name, address, phone_number, website, description, rating, hours, latitude, longitude, photos, category_id, place_id, last_updated`

func (s *SQLiteStore) ListBusinesses(ctx context.Context) ([]model.Business, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+sqliteBusinessCols+` FROM businesses ORDER BY name`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list businesses")
	}
	defer rows.Close()
	return scanSQLiteBusinesses(rows)
}

func (s *SQLiteStore) ListBusinessesByCategory(ctx context.Context, categoryID string) ([]model.Business, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+sqliteBusinessCols+` FROM businesses WHERE category_id = ? ORDER BY name`, categoryID)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: list businesses by category %s", categoryID)
	}
	defer rows.Close()
	return scanSQLiteBusinesses(rows)
}

func (s *SQLiteStore) GetBusiness(ctx context.Context, id string) (*model.Business, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+sqliteBusinessCols+` FROM businesses WHERE id = ?`, id)
	b, err := scanSQLiteBusiness(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get business %s", id)
	}
	return b, nil
}

func (s *SQLiteStore) CreateBusiness(ctx context.Context, b model.Business) (string, error) {
	id := b.ID
	if id == "" {
		id = uuid.New().String()
	}
	hours, photos, err := marshalBusinessJSON(b.Hours, b.Photos)
	if err != nil {
		return "", err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO businesses (`+sqliteBusinessCols+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, b.Name, b.Address, b.PhoneNumber, b.Website, b.Description,
		b.Rating, hours, b.Latitude, b.Longitude, photos,
		b.CategoryID, b.PlaceID, b.LastUpdated,
	)
	if err != nil {
		return "", eris.Wrapf(err, "sqlite: insert business %q", b.Name)
	}
	return id, nil
}

func (s *SQLiteStore) PatchBusiness(ctx context.Context, id string, p model.BusinessPatch) error {
	fields := map[string]any{
		"name":         strPtrArg(p.Name),
		"address":      strPtrArg(p.Address),
		"phone_number": strPtrArg(p.PhoneNumber),
		"website":      strPtrArg(p.Website),
		"description":  strPtrArg(p.Description),
		"category_id":  strPtrArg(p.CategoryID),
	}
	if p.Rating != nil {
		fields["rating"] = *p.Rating
	}
	if p.LastUpdated != nil {
		fields["last_updated"] = *p.LastUpdated
	}
	if p.Hours != nil {
		hoursJSON, err := json.Marshal(*p.Hours)
		if err != nil {
			return eris.Wrap(err, "sqlite: marshal hours")
		}
		fields["hours"] = string(hoursJSON)
	}
	if p.Photos != nil {
		photosJSON, err := json.Marshal(*p.Photos)
		if err != nil {
			return eris.Wrap(err, "sqlite: marshal photos")
		}
		fields["photos"] = string(photosJSON)
	}

	set, args := buildPatchQM(fields)
	if len(set) == 0 {
		return nil
	}
	args = append(args, id)
	res, err := s.db.ExecContext(ctx,
		fmt.Sprintf(`UPDATE businesses SET %s WHERE id = ?`, strings.Join(set, ", ")), args...)
	if err != nil {
		return eris.Wrapf(err, "sqlite: patch business %s", id)
	}
	return checkRowsAffected(res, "business", id)
}

func (s *SQLiteStore) DeleteBusiness(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM businesses WHERE id = ?`, id)
	if err != nil {
		return eris.Wrapf(err, "sqlite: delete business %s", id)
	}
	return checkRowsAffected(res, "business", id)
}

func (s *SQLiteStore) DeleteAllBusinesses(ctx context.Context) (int, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM businesses`)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: delete all businesses")
	}
	n, err := res.RowsAffected()
	return int(n), eris.Wrap(err, "sqlite: rows affected")
}

// --- Leases ---

func (s *SQLiteStore) AcquireLease(ctx context.Context, name, holder string, ttl time.Duration) (bool, error) {
	now := time.Now().UnixMilli()
	expiresAt := now + ttl.Milliseconds()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO maintenance_leases (name, holder, expires_at) VALUES (?, ?, ?)
		 ON CONFLICT (name) DO UPDATE SET holder = excluded.holder, expires_at = excluded.expires_at
		 WHERE maintenance_leases.expires_at <= ? OR maintenance_leases.holder = excluded.holder`,
		name, holder, expiresAt, now,
	)
	if err != nil {
		return false, eris.Wrapf(err, "sqlite: acquire lease %s", name)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, eris.Wrap(err, "sqlite: rows affected")
	}
	return n == 1, nil
}

func (s *SQLiteStore) ReleaseLease(ctx context.Context, name, holder string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM maintenance_leases WHERE name = ? AND holder = ?`,
		name, holder,
	)
	return eris.Wrapf(err, "sqlite: release lease %s", name)
}

// --- helpers ---

func checkRowsAffected(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "rows affected")
	}
	if n == 0 {
		return eris.Errorf("%s not found: %s", entity, id)
	}
	return nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanSQLiteBusiness(row scannable) (*model.Business, error) {
	var b model.Business
	var hoursJSON, photosJSON sql.NullString
	err := row.Scan(&b.ID, &b.Name, &b.Address, &b.PhoneNumber, &b.Website, &b.Description,
		&b.Rating, &hoursJSON, &b.Latitude, &b.Longitude, &photosJSON,
		&b.CategoryID, &b.PlaceID, &b.LastUpdated)
	if err != nil {
		return nil, err
	}
	if hoursJSON.Valid && hoursJSON.String != "" {
		if err := json.Unmarshal([]byte(hoursJSON.String), &b.Hours); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal hours")
		}
	}
	if photosJSON.Valid && photosJSON.String != "" {
		if err := json.Unmarshal([]byte(photosJSON.String), &b.Photos); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal photos")
		}
	}
	return &b, nil
}

func scanSQLiteBusinesses(rows *sql.Rows) ([]model.Business, error) {
	var out []model.Business
	for rows.Next() {
		b, err := scanSQLiteBusiness(rows)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan business")
		}
		out = append(out, *b)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: iterate businesses")
}

// buildPatchQM builds SET clauses with "?" placeholders for SQLite.
func buildPatchQM(fields map[string]any) ([]string, []any) {
	cols := make([]string, 0, len(fields))
	for col, v := range fields {
		if v != nil {
			cols = append(cols, col)
		}
	}
	sort.Strings(cols)

	var set []string
	var args []any
	for _, col := range cols {
		set = append(set, col+" = ?")
		args = append(args, fields[col])
	}
	return set, args
}
