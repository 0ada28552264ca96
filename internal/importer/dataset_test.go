package importer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const datasetYAML = `businesses:
  - name: Joe's Diner
    address: 305 6th St, Moody, TX 76557
    phone_number: (254) 555-0100
    rating: 4.5
    types: [restaurant]
    hours:
      - "Monday: 7 AM - 9 PM"
  - name: Moody Feed & Supply
    address: 401 Ave E, Moody, TX 76557
    place_id: ChIJexistingid
`

func writeDataset(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dataset.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDataset(t *testing.T) {
	got, err := LoadDataset(writeDataset(t, datasetYAML))
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "Joe's Diner", got[0].Name)
	assert.Equal(t, "(254) 555-0100", got[0].PhoneNumber)
	assert.Equal(t, 4.5, got[0].Rating)
	assert.Equal(t, []string{"restaurant"}, got[0].Types)
	assert.Equal(t, []string{"Monday: 7 AM - 9 PM"}, got[0].Hours)

	// Missing place_id gets a synthesized sample id, so cleanup can
	// recognize the row later. An explicit one is kept as-is.
	assert.Equal(t, "sample-joe-s-diner", got[0].PlaceID)
	assert.Equal(t, "ChIJexistingid", got[1].PlaceID)
}

func TestLoadDatasetMissingFile(t *testing.T) {
	_, err := LoadDataset(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadDatasetBadYAML(t *testing.T) {
	_, err := LoadDataset(writeDataset(t, "businesses: [not: valid: yaml"))
	assert.Error(t, err)
}

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Joe's Diner":          "joe-s-diner",
		"Moody Feed & Supply":  "moody-feed-supply",
		"  Trailing  ":         "trailing",
		"ALLCAPS 123":          "allcaps-123",
		"":                     "",
		"--- punctuation ---!": "punctuation",
	}
	for in, want := range cases {
		assert.Equal(t, want, slugify(in), "slugify(%q)", in)
	}
}
