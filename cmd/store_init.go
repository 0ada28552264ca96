package main

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"

	"github.com/moodytx/directory/internal/store"
)

// openStore creates the configured store backend. The caller closes it.
func openStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, nil)
	case "sqlite", "":
		return store.NewSQLite(cfg.Store.DatabaseURL)
	case "memory":
		return store.NewMemory(), nil
	default:
		return nil, eris.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

// errLeaseHeld is returned when another maintenance operation holds the
// lease; the server maps it to 409.
var errLeaseHeld = eris.New("another maintenance operation is running; try again later")

// withMaintenanceLease runs fn while holding the maintenance lease, so
// overlapping reconciliation operations cannot interleave their store
// writes. The lease expires on its own if the process dies mid-run.
func withMaintenanceLease(ctx context.Context, st store.Store, fn func() error) error {
	holder := uuid.New().String()
	ttl := time.Duration(cfg.Import.LeaseTTLMinutes) * time.Minute

	ok, err := st.AcquireLease(ctx, store.LeaseMaintenance, holder, ttl)
	if err != nil {
		return eris.Wrap(err, "acquire maintenance lease")
	}
	if !ok {
		return errLeaseHeld
	}
	defer func() {
		_ = st.ReleaseLease(ctx, store.LeaseMaintenance, holder)
	}()

	return fn()
}
