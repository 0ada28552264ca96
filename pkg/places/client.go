// Package places is a thin client for the Google Places API (v1),
// covering the text search and place details calls the directory's
// import pipeline needs.
package places

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

const defaultBaseURL = "https://places.googleapis.com/v1"

const searchFieldMask = "places.id,places.displayName,places.formattedAddress,places.location,places.types,places.rating"

const detailsFieldMask = "id,displayName,formattedAddress,location,types,rating,nationalPhoneNumber,websiteUri,regularOpeningHours.weekdayDescriptions,photos.name"

// Client performs Google Places API operations.
type Client interface {
	TextSearch(ctx context.Context, query string) (*TextSearchResponse, error)
	Details(ctx context.Context, placeID string) (*Place, error)
	PhotoURL(photoName string) string
}

// TextSearchResponse is the response from Places Text Search.
type TextSearchResponse struct {
	Places []Place `json:"places"`
}

// Place represents a place returned by the API. Search responses fill
// only the fields named in the search field mask; Details fills the rest.
type Place struct {
	ID                  string        `json:"id"`
	DisplayName         DisplayName   `json:"displayName"`
	FormattedAddress    string        `json:"formattedAddress"`
	Location            *LatLng       `json:"location,omitempty"`
	Types               []string      `json:"types,omitempty"`
	Rating              float64       `json:"rating,omitempty"`
	NationalPhoneNumber string        `json:"nationalPhoneNumber,omitempty"`
	WebsiteURI          string        `json:"websiteUri,omitempty"`
	RegularOpeningHours *OpeningHours `json:"regularOpeningHours,omitempty"`
	Photos              []Photo       `json:"photos,omitempty"`
}

// DisplayName holds the place's display name.
type DisplayName struct {
	Text string `json:"text"`
}

// LatLng is a WGS84 coordinate pair.
type LatLng struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// OpeningHours holds the weekday hour strings.
type OpeningHours struct {
	WeekdayDescriptions []string `json:"weekdayDescriptions"`
}

// Photo is a photo reference; Name is the resource path used to build a
// fetchable media URL.
type Photo struct {
	Name string `json:"name"`
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithLocationBias biases text searches toward a circle centered on the
// given coordinate with the given radius in meters.
func WithLocationBias(lat, lng, radiusMeters float64) Option {
	return func(c *httpClient) {
		c.bias = &circle{
			Center: LatLng{Latitude: lat, Longitude: lng},
			Radius: radiusMeters,
		}
	}
}

// WithRateLimit caps outgoing API calls at n requests per second.
func WithRateLimit(n float64) Option {
	return func(c *httpClient) {
		c.limiter = rate.NewLimiter(rate.Limit(n), 1)
	}
}

// WithPhotoMaxWidth sets the maxWidthPx used when building photo media
// URLs. Default 800.
func WithPhotoMaxWidth(px int) Option {
	return func(c *httpClient) {
		c.photoMaxWidth = px
	}
}

// WithRetries sets the total number of attempts per API call, including
// the first. Only transient failures (network errors, 429, 5xx) are
// retried. Default 3.
func WithRetries(attempts int) Option {
	return func(c *httpClient) {
		c.maxAttempts = attempts
	}
}

type circle struct {
	Center LatLng  `json:"center"`
	Radius float64 `json:"radius"`
}

type httpClient struct {
	apiKey        string
	baseURL       string
	http          *http.Client
	bias          *circle
	limiter       *rate.Limiter
	photoMaxWidth int
	maxAttempts   int
}

// NewClient creates a Google Places API client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 10 * time.Second,
		},
		limiter:       rate.NewLimiter(rate.Limit(10), 1),
		photoMaxWidth: 800,
		maxAttempts:   3,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

type textSearchRequest struct {
	TextQuery    string `json:"textQuery"`
	LocationBias any    `json:"locationBias,omitempty"`
}

func (c *httpClient) TextSearch(ctx context.Context, query string) (*TextSearchResponse, error) {
	req := textSearchRequest{TextQuery: query}
	if c.bias != nil {
		req.LocationBias = map[string]any{"circle": c.bias}
	}
	body, err := json.Marshal(req)
	if err != nil {
		return nil, eris.Wrap(err, "places: marshal request")
	}

	var result TextSearchResponse
	err = c.do(ctx, http.MethodPost, "/places:searchText", searchFieldMask, body, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *httpClient) Details(ctx context.Context, placeID string) (*Place, error) {
	var result Place
	err := c.do(ctx, http.MethodGet, "/places/"+placeID, detailsFieldMask, nil, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// PhotoURL converts a photo resource name into a directly fetchable
// media URL.
func (c *httpClient) PhotoURL(photoName string) string {
	return fmt.Sprintf("%s/%s/media?maxWidthPx=%d&key=%s", c.baseURL, photoName, c.photoMaxWidth, c.apiKey)
}

// do issues one API call, retrying transient failures (network errors,
// 429, 5xx) with exponential backoff and jitter. The rate limiter gates
// every attempt, retries included.
func (c *httpClient) do(ctx context.Context, method, path, fieldMask string, body []byte, out any) error {
	var lastErr error
	for attempt := 0; attempt < c.maxAttempts; attempt++ {
		if attempt > 0 {
			delay := backoff(attempt)
			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return eris.Wrap(ctx.Err(), "places: retry wait")
			case <-timer.C:
			}
		}

		retryable, err := c.attempt(ctx, method, path, fieldMask, body, out)
		if err == nil {
			return nil
		}
		lastErr = err
		if !retryable || ctx.Err() != nil {
			return err
		}
	}
	return lastErr
}

func (c *httpClient) attempt(ctx context.Context, method, path, fieldMask string, body []byte, out any) (retryable bool, err error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return false, eris.Wrap(err, "places: rate limit wait")
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return false, eris.Wrap(err, "places: create request")
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-Goog-Api-Key", c.apiKey)
	req.Header.Set("X-Goog-FieldMask", fieldMask)

	resp, err := c.http.Do(req)
	if err != nil {
		return true, eris.Wrap(err, "places: send request")
	}
	defer resp.Body.Close() //nolint:errcheck

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return true, eris.Wrap(err, "places: read response")
	}

	if resp.StatusCode != http.StatusOK {
		transient := resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500
		return transient, eris.Errorf("places: unexpected status %d: %s", resp.StatusCode, string(respBody))
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return false, eris.Wrap(err, "places: unmarshal response")
	}
	return false, nil
}

// backoff returns the delay before the given retry attempt: 500ms base,
// doubling each attempt, capped at 10s, with ±25% jitter.
func backoff(attempt int) time.Duration {
	d := 500 * time.Millisecond << (attempt - 1)
	if d > 10*time.Second {
		d = 10 * time.Second
	}
	jitter := 1 + (rand.Float64()-0.5)/2
	return time.Duration(float64(d) * jitter)
}
