// Package store persists the directory's two collections, categories and
// businesses, plus the lease rows that serialize maintenance operations.
//
// The store enforces nothing beyond its own primary keys: no foreign
// keys, no unique name constraints, no cross-call transactions. The
// reconcilers in internal/taxonomy and internal/importer uphold
// referential integrity themselves.
package store

import (
	"context"
	"time"

	"github.com/moodytx/directory/internal/model"
)

// LeaseMaintenance is the lease name every maintenance operation takes,
// so that at most one import/reconcile/normalize runs at a time.
const LeaseMaintenance = "maintenance"

// Store defines the persistence interface for the directory.
type Store interface {
	// Categories
	ListCategories(ctx context.Context) ([]model.Category, error)
	GetCategory(ctx context.Context, id string) (*model.Category, error)
	CreateCategory(ctx context.Context, c model.Category) (string, error)
	PatchCategory(ctx context.Context, id string, p model.CategoryPatch) error
	DeleteCategory(ctx context.Context, id string) error

	// Businesses
	ListBusinesses(ctx context.Context) ([]model.Business, error)
	ListBusinessesByCategory(ctx context.Context, categoryID string) ([]model.Business, error)
	GetBusiness(ctx context.Context, id string) (*model.Business, error)
	CreateBusiness(ctx context.Context, b model.Business) (string, error)
	PatchBusiness(ctx context.Context, id string, p model.BusinessPatch) error
	DeleteBusiness(ctx context.Context, id string) error
	DeleteAllBusinesses(ctx context.Context) (int, error)

	// Leases (advisory lock for maintenance operations)
	AcquireLease(ctx context.Context, name, holder string, ttl time.Duration) (bool, error)
	ReleaseLease(ctx context.Context, name, holder string) error

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
