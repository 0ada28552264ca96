package places

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextSearch(t *testing.T) {
	var gotReq *http.Request
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotReq = r
		gotBody, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"places":[{"id":"p-1","displayName":{"text":"Joe's Diner"},"formattedAddress":"305 6th St, Moody, TX 76557"}]}`))
	}))
	defer srv.Close()

	c := NewClient("test-key",
		WithBaseURL(srv.URL),
		WithLocationBias(31.3085, -97.3614, 8000),
	)
	resp, err := c.TextSearch(context.Background(), "restaurants in Moody TX")
	require.NoError(t, err)
	require.Len(t, resp.Places, 1)
	assert.Equal(t, "p-1", resp.Places[0].ID)
	assert.Equal(t, "Joe's Diner", resp.Places[0].DisplayName.Text)

	require.NotNil(t, gotReq)
	assert.Equal(t, http.MethodPost, gotReq.Method)
	assert.Equal(t, "/places:searchText", gotReq.URL.Path)
	assert.Equal(t, "test-key", gotReq.Header.Get("X-Goog-Api-Key"))
	assert.Equal(t, searchFieldMask, gotReq.Header.Get("X-Goog-FieldMask"))
	assert.Equal(t, "application/json", gotReq.Header.Get("Content-Type"))

	var body struct {
		TextQuery    string `json:"textQuery"`
		LocationBias struct {
			Circle struct {
				Center LatLng  `json:"center"`
				Radius float64 `json:"radius"`
			} `json:"circle"`
		} `json:"locationBias"`
	}
	require.NoError(t, json.Unmarshal(gotBody, &body))
	assert.Equal(t, "restaurants in Moody TX", body.TextQuery)
	assert.Equal(t, 31.3085, body.LocationBias.Circle.Center.Latitude)
	assert.Equal(t, float64(8000), body.LocationBias.Circle.Radius)
}

func TestTextSearchWithoutBiasOmitsField(t *testing.T) {
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotBody, _ = io.ReadAll(r.Body)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := NewClient("test-key", WithBaseURL(srv.URL))
	_, err := c.TextSearch(context.Background(), "q")
	require.NoError(t, err)
	assert.NotContains(t, string(gotBody), "locationBias")
}

func TestDetails(t *testing.T) {
	var gotReq *http.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotReq = r
		_, _ = w.Write([]byte(`{
			"id": "p-1",
			"displayName": {"text": "Joe's Diner"},
			"formattedAddress": "305 6th St, Moody, TX 76557",
			"location": {"latitude": 31.3085, "longitude": -97.3614},
			"nationalPhoneNumber": "(254) 555-0100",
			"websiteUri": "https://joesdiner.example",
			"rating": 4.5,
			"types": ["restaurant", "food"],
			"regularOpeningHours": {"weekdayDescriptions": ["Monday: 7 AM - 9 PM"]},
			"photos": [{"name": "places/p-1/photos/a"}]
		}`))
	}))
	defer srv.Close()

	c := NewClient("test-key", WithBaseURL(srv.URL))
	p, err := c.Details(context.Background(), "p-1")
	require.NoError(t, err)

	assert.Equal(t, "/places/p-1", gotReq.URL.Path)
	assert.Equal(t, http.MethodGet, gotReq.Method)
	assert.Equal(t, detailsFieldMask, gotReq.Header.Get("X-Goog-FieldMask"))

	assert.Equal(t, "Joe's Diner", p.DisplayName.Text)
	require.NotNil(t, p.Location)
	assert.Equal(t, 31.3085, p.Location.Latitude)
	assert.Equal(t, "(254) 555-0100", p.NationalPhoneNumber)
	require.NotNil(t, p.RegularOpeningHours)
	assert.Equal(t, []string{"Monday: 7 AM - 9 PM"}, p.RegularOpeningHours.WeekdayDescriptions)
	require.Len(t, p.Photos, 1)
	assert.Equal(t, "places/p-1/photos/a", p.Photos[0].Name)
}

func TestNonOKStatusIsError(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, `{"error":{"message":"API key not valid"}}`, http.StatusForbidden)
	}))
	defer srv.Close()

	c := NewClient("bad-key", WithBaseURL(srv.URL))
	_, err := c.TextSearch(context.Background(), "q")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
	assert.Equal(t, 1, calls, "a 403 is not transient and must not be retried")
}

func TestTransientStatusIsRetried(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			http.Error(w, `{"error":{"message":"backend error"}}`, http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(`{"places":[]}`))
	}))
	defer srv.Close()

	c := NewClient("test-key", WithBaseURL(srv.URL), WithRetries(2))
	_, err := c.TextSearch(context.Background(), "q")
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestRetriesExhausted(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, "overloaded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClient("test-key", WithBaseURL(srv.URL), WithRetries(2))
	_, err := c.TextSearch(context.Background(), "q")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
	assert.Equal(t, 2, calls)
}

func TestPhotoURL(t *testing.T) {
	c := NewClient("test-key", WithBaseURL("https://places.example/v1"))
	got := c.PhotoURL("places/p-1/photos/a")
	assert.Equal(t, "https://places.example/v1/places/p-1/photos/a/media?maxWidthPx=800&key=test-key", got)
}

func TestPhotoURLMaxWidthOption(t *testing.T) {
	c := NewClient("test-key",
		WithBaseURL("https://places.example/v1"),
		WithPhotoMaxWidth(400),
	)
	assert.Contains(t, c.PhotoURL("places/p-1/photos/a"), "maxWidthPx=400")
}

func TestCanceledContextAbortsRequest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewClient("test-key", WithBaseURL(srv.URL))
	_, err := c.TextSearch(ctx, "q")
	assert.Error(t, err)
}
