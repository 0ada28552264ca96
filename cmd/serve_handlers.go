package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/moodytx/directory/internal/importer"
	"github.com/moodytx/directory/internal/model"
	"github.com/moodytx/directory/internal/store"
	"github.com/moodytx/directory/internal/taxonomy"
	"github.com/moodytx/directory/pkg/places"
)

// apiResponse is the envelope every endpoint returns.
type apiResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	Results   any    `json:"results,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

func writeJSON(w http.ResponseWriter, status int, success bool, message string, results any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(apiResponse{
		Success:   success,
		Message:   message,
		Results:   results,
		Timestamp: time.Now().UnixMilli(),
	})
}

func newRouter(st store.Store) http.Handler {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Admin-Key"},
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, true, "ok", nil)
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/categories", handleListCategories(st))
		r.Get("/businesses", handleListBusinesses(st))
		r.Get("/businesses/{id}", handleGetBusiness(st))
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(adminOnly)
		r.Post("/import", handleImport(st))
		r.Post("/taxonomy/reconcile", handleTaxonomyReconcile(st))
		r.Post("/normalize-images", handleNormalizeImages(st))
		r.Post("/cleanup", handleCleanup(st))
	})

	return r
}

// adminOnly rejects requests whose X-Admin-Key header does not match the
// configured admin key. It runs before any handler touches the store, so
// an unauthorized call has zero side effects.
func adminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Admin-Key") != cfg.Server.AdminKey {
			writeJSON(w, http.StatusUnauthorized, false, "unauthorized", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// --- read API ---

func handleListCategories(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cats, err := st.ListCategories(r.Context())
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, false, err.Error(), nil)
			return
		}
		writeJSON(w, http.StatusOK, true, "ok", cats)
	}
}

func handleListBusinesses(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		categoryID := r.URL.Query().Get("category")
		search := strings.ToLower(r.URL.Query().Get("q"))

		var (
			businesses []model.Business
			err        error
		)
		if categoryID != "" {
			businesses, err = st.ListBusinessesByCategory(ctx, categoryID)
		} else {
			businesses, err = st.ListBusinesses(ctx)
		}
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, false, err.Error(), nil)
			return
		}

		if search != "" {
			filtered := businesses[:0]
			for _, b := range businesses {
				if strings.Contains(strings.ToLower(b.Name), search) ||
					strings.Contains(strings.ToLower(b.Address), search) {
					filtered = append(filtered, b)
				}
			}
			businesses = filtered
		}
		writeJSON(w, http.StatusOK, true, "ok", businesses)
	}
}

func handleGetBusiness(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b, err := st.GetBusiness(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, false, err.Error(), nil)
			return
		}
		if b == nil {
			writeJSON(w, http.StatusNotFound, false, "business not found", nil)
			return
		}
		writeJSON(w, http.StatusOK, true, "ok", b)
	}
}

// --- admin maintenance ---

// runMaintenance wraps a maintenance function with the store lease and
// maps its outcome onto the response envelope.
func runMaintenance(w http.ResponseWriter, r *http.Request, st store.Store, name string, fn func() (any, error)) {
	var results any
	err := withMaintenanceLease(r.Context(), st, func() error {
		var err error
		results, err = fn()
		return err
	})
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, errLeaseHeld) {
			status = http.StatusConflict
		}
		zap.L().Error("maintenance operation failed",
			zap.String("operation", name),
			zap.Error(err),
		)
		writeJSON(w, status, false, err.Error(), results)
		return
	}
	writeJSON(w, http.StatusOK, true, name+" complete", results)
}

func handleImport(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := cfg.Validate("places"); err != nil {
			writeJSON(w, http.StatusInternalServerError, false, err.Error(), nil)
			return
		}
		runMaintenance(w, r, st, "import", func() (any, error) {
			client := places.NewClient(cfg.Places.APIKey,
				places.WithBaseURL(cfg.Places.BaseURL),
				places.WithLocationBias(cfg.Places.Latitude, cfg.Places.Longitude, cfg.Places.RadiusMeters),
				places.WithRateLimit(cfg.Places.RateLimit),
			)
			adapter := importer.NewAdapter(client, cfg.Site.Town, cfg.Site.Zip, cfg.Site.Queries)
			candidates, err := adapter.Fetch(r.Context())
			if err != nil {
				return nil, err
			}
			return importer.NewReconciler(st).Run(r.Context(), candidates)
		})
	}
}

func handleTaxonomyReconcile(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		runMaintenance(w, r, st, "taxonomy reconcile", func() (any, error) {
			return taxonomy.NewReconciler(st).Reconcile(r.Context())
		})
	}
}

func handleNormalizeImages(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := cfg.Validate("normalize"); err != nil {
			writeJSON(w, http.StatusInternalServerError, false, err.Error(), nil)
			return
		}
		runMaintenance(w, r, st, "normalize images", func() (any, error) {
			return taxonomy.NormalizeImageURLs(r.Context(), st, cfg.Site.BaseURL)
		})
	}
}

func handleCleanup(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		runMaintenance(w, r, st, "cleanup", func() (any, error) {
			return importer.Cleanup(r.Context(), st)
		})
	}
}
