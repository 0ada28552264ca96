package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/moodytx/directory/internal/model"
)

// Pool is the subset of pgxpool.Pool the store uses. pgxmock satisfies
// it for unit tests.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool Pool
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// preparedStatements lists queries to prepare on each new connection for
// the most frequently used store operations.
var preparedStatements = map[string]string{
	"list_categories":  `SELECT id, name, icon, image_url, description, sort_order FROM categories ORDER BY sort_order, name`,
	"get_category":     `SELECT id, name, icon, image_url, description, sort_order FROM categories WHERE id = $1`,
	"insert_category":  `INSERT INTO categories (id, name, icon, image_url, description, sort_order, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
	"delete_category":  `DELETE FROM categories WHERE id = $1`,
	"list_businesses":  `SELECT id, name, address, phone_number, website, description, rating, hours, latitude, longitude, photos, category_id, place_id, last_updated FROM businesses ORDER BY name`,
	"get_business":     `SELECT id, name, address, phone_number, website, description, rating, hours, latitude, longitude, photos, category_id, place_id, last_updated FROM businesses WHERE id = $1`,
	"insert_business":  `INSERT INTO businesses (id, name, address, phone_number, website, description, rating, hours, latitude, longitude, photos, category_id, place_id, last_updated) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
	"delete_business":  `DELETE FROM businesses WHERE id = $1`,
	"businesses_bycat": `SELECT id, name, address, phone_number, website, description, rating, hours, latitude, longitude, photos, category_id, place_id, last_updated FROM businesses WHERE category_id = $1 ORDER BY name`,
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pgxCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		for name, sql := range preparedStatements {
			if _, err := conn.Prepare(ctx, name, sql); err != nil {
				return eris.Wrapf(err, "postgres: prepare %s", name)
			}
		}
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS categories (
	id          TEXT PRIMARY KEY,
	name        TEXT NOT NULL,
	icon        TEXT NOT NULL DEFAULT '',
	image_url   TEXT NOT NULL DEFAULT '',
	description TEXT NOT NULL DEFAULT '',
	sort_order  INTEGER NOT NULL DEFAULT 0,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS businesses (
	id           TEXT PRIMARY KEY,
	name         TEXT NOT NULL,
	address      TEXT NOT NULL,
	phone_number TEXT NOT NULL DEFAULT '',
	website      TEXT NOT NULL DEFAULT '',
	description  TEXT NOT NULL DEFAULT '',
	rating       DOUBLE PRECISION NOT NULL DEFAULT 0,
	hours        JSONB,
	latitude     DOUBLE PRECISION NOT NULL,
	longitude    DOUBLE PRECISION NOT NULL,
	photos       JSONB,
	category_id  TEXT NOT NULL,
	place_id     TEXT NOT NULL,
	last_updated BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS maintenance_leases (
	name       TEXT PRIMARY KEY,
	holder     TEXT NOT NULL,
	expires_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_categories_name ON categories(name);
CREATE INDEX IF NOT EXISTS idx_businesses_place_id ON businesses(place_id);
CREATE INDEX IF NOT EXISTS idx_businesses_category_id ON businesses(category_id);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

// --- Categories ---

func (s *PostgresStore) ListCategories(ctx context.Context) ([]model.Category, error) {
	rows, err := s.pool.Query(ctx, preparedStatements["list_categories"])
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list categories")
	}
	defer rows.Close()

	var cats []model.Category
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Icon, &c.ImageURL, &c.Description, &c.Order); err != nil {
			return nil, eris.Wrap(err, "postgres: scan category")
		}
		cats = append(cats, c)
	}
	return cats, eris.Wrap(rows.Err(), "postgres: list categories iterate")
}

func (s *PostgresStore) GetCategory(ctx context.Context, id string) (*model.Category, error) {
	var c model.Category
	err := s.pool.QueryRow(ctx, preparedStatements["get_category"], id).
		Scan(&c.ID, &c.Name, &c.Icon, &c.ImageURL, &c.Description, &c.Order)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get category %s", id)
	}
	return &c, nil
}

func (s *PostgresStore) CreateCategory(ctx context.Context, c model.Category) (string, error) {
	id := c.ID
	if id == "" {
		id = uuid.New().String()
	}
	now := time.Now().UTC()
	_, err := s.pool.Exec(ctx, preparedStatements["insert_category"],
		id, c.Name, c.Icon, c.ImageURL, c.Description, c.Order, now, now,
	)
	if err != nil {
		return "", eris.Wrapf(err, "postgres: insert category %q", c.Name)
	}
	return id, nil
}

func (s *PostgresStore) PatchCategory(ctx context.Context, id string, p model.CategoryPatch) error {
	set, args := buildPatch(map[string]any{
		"name":        strPtrArg(p.Name),
		"icon":        strPtrArg(p.Icon),
		"image_url":   strPtrArg(p.ImageURL),
		"description": strPtrArg(p.Description),
		"sort_order":  intPtrArg(p.Order),
	})
	if len(set) == 0 {
		return nil
	}
	set = append(set, fmt.Sprintf("updated_at = $%d", len(args)+1))
	args = append(args, time.Now().UTC())
	args = append(args, id)

	sql := fmt.Sprintf(`UPDATE categories SET %s WHERE id = $%d`, strings.Join(set, ", "), len(args))
	tag, err := s.pool.Exec(ctx, sql, args...)
	if err != nil {
		return eris.Wrapf(err, "postgres: patch category %s", id)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("postgres: category not found: %s", id)
	}
	return nil
}

func (s *PostgresStore) DeleteCategory(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, preparedStatements["delete_category"], id)
	if err != nil {
		return eris.Wrapf(err, "postgres: delete category %s", id)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("postgres: category not found: %s", id)
	}
	return nil
}

// --- Businesses ---

func (s *PostgresStore) ListBusinesses(ctx context.Context) ([]model.Business, error) {
	rows, err := s.pool.Query(ctx, preparedStatements["list_businesses"])
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list businesses")
	}
	defer rows.Close()
	return scanBusinesses(rows)
}

func (s *PostgresStore) ListBusinessesByCategory(ctx context.Context, categoryID string) ([]model.Business, error) {
	rows, err := s.pool.Query(ctx, preparedStatements["businesses_bycat"], categoryID)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: list businesses by category %s", categoryID)
	}
	defer rows.Close()
	return scanBusinesses(rows)
}

func (s *PostgresStore) GetBusiness(ctx context.Context, id string) (*model.Business, error) {
	b, err := scanBusiness(s.pool.QueryRow(ctx, preparedStatements["get_business"], id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get business %s", id)
	}
	return b, nil
}

func (s *PostgresStore) CreateBusiness(ctx context.Context, b model.Business) (string, error) {
	id := b.ID
	if id == "" {
		id = uuid.New().String()
	}
	hours, photos, err := marshalBusinessJSON(b.Hours, b.Photos)
	if err != nil {
		return "", err
	}
	_, err = s.pool.Exec(ctx, preparedStatements["insert_business"],
		id, b.Name, b.Address, b.PhoneNumber, b.Website, b.Description,
		b.Rating, hours, b.Latitude, b.Longitude, photos,
		b.CategoryID, b.PlaceID, b.LastUpdated,
	)
	if err != nil {
		return "", eris.Wrapf(err, "postgres: insert business %q", b.Name)
	}
	return id, nil
}

func (s *PostgresStore) PatchBusiness(ctx context.Context, id string, p model.BusinessPatch) error {
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
			return eris.Wrap(err, "postgres: marshal hours")
		}
		fields["hours"] = string(hoursJSON)
	}
	if p.Photos != nil {
		photosJSON, err := json.Marshal(*p.Photos)
		if err != nil {
			return eris.Wrap(err, "postgres: marshal photos")
		}
		fields["photos"] = string(photosJSON)
	}

	set, args := buildPatch(fields)
	if len(set) == 0 {
		return nil
	}
	args = append(args, id)
	sql := fmt.Sprintf(`UPDATE businesses SET %s WHERE id = $%d`, strings.Join(set, ", "), len(args))
	tag, err := s.pool.Exec(ctx, sql, args...)
	if err != nil {
		return eris.Wrapf(err, "postgres: patch business %s", id)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("postgres: business not found: %s", id)
	}
	return nil
}

func (s *PostgresStore) DeleteBusiness(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, preparedStatements["delete_business"], id)
	if err != nil {
		return eris.Wrapf(err, "postgres: delete business %s", id)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("postgres: business not found: %s", id)
	}
	return nil
}

func (s *PostgresStore) DeleteAllBusinesses(ctx context.Context) (int, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM businesses`)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: delete all businesses")
	}
	return int(tag.RowsAffected()), nil
}

// --- Leases ---

func (s *PostgresStore) AcquireLease(ctx context.Context, name, holder string, ttl time.Duration) (bool, error) {
	expiresAt := time.Now().UTC().Add(ttl)
	tag, err := s.pool.Exec(ctx,
		`INSERT INTO maintenance_leases (name, holder, expires_at) VALUES ($1, $2, $3)
		 ON CONFLICT (name) DO UPDATE SET holder = EXCLUDED.holder, expires_at = EXCLUDED.expires_at
		 WHERE maintenance_leases.expires_at <= now() OR maintenance_leases.holder = EXCLUDED.holder`,
		name, holder, expiresAt,
	)
	if err != nil {
		return false, eris.Wrapf(err, "postgres: acquire lease %s", name)
	}
	return tag.RowsAffected() == 1, nil
}

func (s *PostgresStore) ReleaseLease(ctx context.Context, name, holder string) error {
	_, err := s.pool.Exec(ctx,
		`DELETE FROM maintenance_leases WHERE name = $1 AND holder = $2`,
		name, holder,
	)
	return eris.Wrapf(err, "postgres: release lease %s", name)
}

// --- helpers ---

func marshalBusinessJSON(hours, photos []string) (string, string, error) {
	hoursJSON, err := json.Marshal(hours)
	if err != nil {
		return "", "", eris.Wrap(err, "postgres: marshal hours")
	}
	photosJSON, err := json.Marshal(photos)
	if err != nil {
		return "", "", eris.Wrap(err, "postgres: marshal photos")
	}
	return string(hoursJSON), string(photosJSON), nil
}

func scanBusiness(row pgx.Row) (*model.Business, error) {
	var b model.Business
	var hoursJSON, photosJSON []byte
	err := row.Scan(&b.ID, &b.Name, &b.Address, &b.PhoneNumber, &b.Website, &b.Description,
		&b.Rating, &hoursJSON, &b.Latitude, &b.Longitude, &photosJSON,
		&b.CategoryID, &b.PlaceID, &b.LastUpdated)
	if err != nil {
		return nil, err
	}
	if len(hoursJSON) > 0 {
		if err := json.Unmarshal(hoursJSON, &b.Hours); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal hours")
		}
	}
	if len(photosJSON) > 0 {
		if err := json.Unmarshal(photosJSON, &b.Photos); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal photos")
		}
	}
	return &b, nil
}

func scanBusinesses(rows pgx.Rows) ([]model.Business, error) {
	var out []model.Business
	for rows.Next() {
		b, err := scanBusiness(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan business")
		}
		out = append(out, *b)
	}
	return out, eris.Wrap(rows.Err(), "postgres: iterate businesses")
}

// buildPatch turns non-nil fields into SET clauses with positional args.
// Field iteration is sorted for deterministic SQL, which the tests match
// against.
func buildPatch(fields map[string]any) ([]string, []any) {
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
		args = append(args, fields[col])
		set = append(set, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	return set, args
}

func strPtrArg(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

func intPtrArg(p *int) any {
	if p == nil {
		return nil
	}
	return *p
}
