// Package importer pulls business listings from the Places API (or a
// static dataset) and reconciles them into the store without creating
// duplicates.
package importer

import (
	"strings"

	"context"

	"go.uber.org/zap"

	"github.com/moodytx/directory/internal/model"
	"github.com/moodytx/directory/pkg/places"
)

// maxPhotos caps the photo list kept per business.
const maxPhotos = 10

// Adapter turns Places API search results into normalized candidates.
//
// It never writes to the store. Per-query and per-place failures are
// logged and skipped; only context cancellation aborts a fetch.
type Adapter struct {
	client  places.Client
	town    string
	zip     string
	queries []string
	log     *zap.Logger
}

// NewAdapter creates an adapter that runs the given search queries and
// keeps only results whose formatted address mentions the town or ZIP.
func NewAdapter(client places.Client, town, zip string, queries []string) *Adapter {
	return &Adapter{
		client:  client,
		town:    town,
		zip:     zip,
		queries: queries,
		log:     zap.L(),
	}
}

// Fetch runs all configured queries and returns candidates de-duplicated
// by placeId within this call. A place returned by several queries is
// kept once, from the first query that produced it.
func (a *Adapter) Fetch(ctx context.Context) ([]model.Candidate, error) {
	seen := make(map[string]bool)
	var candidates []model.Candidate

	for _, query := range a.queries {
		if err := ctx.Err(); err != nil {
			return candidates, err
		}

		resp, err := a.client.TextSearch(ctx, query)
		if err != nil {
			a.log.Warn("places search failed, skipping query",
				zap.String("query", query),
				zap.Error(err),
			)
			continue
		}

		for _, p := range resp.Places {
			if p.ID == "" || seen[p.ID] {
				continue
			}
			if !a.inTown(p.FormattedAddress) {
				continue
			}

			details, err := a.client.Details(ctx, p.ID)
			if err != nil {
				a.log.Warn("places details failed, skipping place",
					zap.String("place_id", p.ID),
					zap.String("name", p.DisplayName.Text),
					zap.Error(err),
				)
				continue
			}

			seen[p.ID] = true
			candidates = append(candidates, a.normalize(details))
		}
	}

	a.log.Info("places fetch complete",
		zap.Int("queries", len(a.queries)),
		zap.Int("candidates", len(candidates)),
	)
	return candidates, nil
}

func (a *Adapter) inTown(address string) bool {
	lower := strings.ToLower(address)
	if a.town != "" && strings.Contains(lower, strings.ToLower(a.town)) {
		return true
	}
	return a.zip != "" && strings.Contains(address, a.zip)
}

func (a *Adapter) normalize(p *places.Place) model.Candidate {
	c := model.Candidate{
		PlaceID:     p.ID,
		Name:        p.DisplayName.Text,
		Address:     p.FormattedAddress,
		PhoneNumber: p.NationalPhoneNumber,
		Website:     p.WebsiteURI,
		Rating:      p.Rating,
		Types:       p.Types,
	}
	if p.Location != nil {
		c.Latitude = p.Location.Latitude
		c.Longitude = p.Location.Longitude
	}
	if p.RegularOpeningHours != nil {
		c.Hours = p.RegularOpeningHours.WeekdayDescriptions
	}

	var photoURLs []string
	for _, ph := range p.Photos {
		if ph.Name == "" {
			continue
		}
		photoURLs = append(photoURLs, a.client.PhotoURL(ph.Name))
	}
	var profile string
	if len(photoURLs) > 0 {
		profile = photoURLs[0]
	}
	c.Photos = orderPhotos(profile, photoURLs)
	return c
}

// orderPhotos moves the profile photo to the front, de-duplicates while
// preserving order (first occurrence wins), and caps the list.
func orderPhotos(profile string, urls []string) []string {
	var out []string
	seen := make(map[string]bool)

	if profile != "" {
		out = append(out, profile)
		seen[profile] = true
	}
	for _, u := range urls {
		if u == "" || seen[u] {
			continue
		}
		out = append(out, u)
		seen[u] = true
		if len(out) == maxPhotos {
			break
		}
	}
	if len(out) > maxPhotos {
		out = out[:maxPhotos]
	}
	return out
}
