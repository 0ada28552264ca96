package taxonomy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyTags_FirstInputTagWins(t *testing.T) {
	// Input order is the tie-break, not table order.
	assert.Equal(t, "Restaurants", ClassifyTags([]string{"restaurant", "store"}))
	assert.Equal(t, "Shopping", ClassifyTags([]string{"store", "restaurant"}))
}

func TestClassifyTags_UnknownTagsSkipped(t *testing.T) {
	got := ClassifyTags([]string{"point_of_interest", "establishment", "bakery"})
	assert.Equal(t, "Restaurants", got)
}

func TestClassifyTags_NoMatch(t *testing.T) {
	assert.Equal(t, "", ClassifyTags([]string{"point_of_interest", "establishment"}))
	assert.Equal(t, "", ClassifyTags(nil))
}

func TestClassifyTags_CaseInsensitive(t *testing.T) {
	assert.Equal(t, "Churches", ClassifyTags([]string{"CHURCH"}))
}

func TestClassifyText_KeywordMatch(t *testing.T) {
	tests := []struct {
		name    string
		address string
		want    string
	}{
		{"First Baptist Church of Moody", "301 Ave E", "Churches"},
		{"Moody ISD Administration", "600 Ave G", "Education"},
		{"Lone Star Dental", "105 Main St", "Health & Wellness"},
		{"Bubba's Auto & Tire", "1200 Hwy 107", "Automotive"},
		{"Creekside Realty", "89 5th St", "Real Estate"},
		{"Moody State Bank", "101 Ave D", "Financial Services"},
		{"Tejas Plumbing Co", "410 Ave B", "Home Services"},
		{"Rosita's Taqueria", "318 Main St", "Restaurants"},
		{"Old Town Antique Mall", "300 Main St", "Shopping"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ClassifyText(tt.name, tt.address), "name=%s", tt.name)
	}
}

func TestClassifyText_TableOrderBreaksOverlap(t *testing.T) {
	// "church" and "shop" both match here; Churches sits above Shopping
	// in the priority list, so it wins.
	assert.Equal(t, "Churches", ClassifyText("Church Street Gift Shop", ""))

	// "bank" (Financial Services) is listed above "store" (Shopping).
	assert.Equal(t, "Financial Services", ClassifyText("Bank Building General Store", ""))
}

func TestClassifyText_NoMatch(t *testing.T) {
	assert.Equal(t, "", ClassifyText("Acme Widgets", "742 Evergreen Terrace"))
}

func TestClassify_Fallback(t *testing.T) {
	got := Classify(nil, "Smith Consulting Group", "207 Ave C")
	assert.Equal(t, FallbackCategory, got)
}

func TestClassify_TagsBeforeText(t *testing.T) {
	// Tags win even when the name would keyword-match something else.
	got := Classify([]string{"restaurant"}, "Main Street Hardware", "")
	assert.Equal(t, "Restaurants", got)
}

func TestClassify_Deterministic(t *testing.T) {
	tags := []string{"establishment", "store", "food"}
	first := Classify(tags, "Moody Mercantile", "400 Main St")
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Classify(tags, "Moody Mercantile", "400 Main St"))
	}
}

func TestCanonical_ContainsFallbackExactlyOnce(t *testing.T) {
	count := 0
	for _, c := range Canonical() {
		if c.Name == FallbackCategory {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestCanonical_NamesUniqueAndOrdered(t *testing.T) {
	seen := make(map[string]bool)
	prev := 0
	for _, c := range Canonical() {
		assert.False(t, seen[c.Name], "duplicate canonical name %q", c.Name)
		seen[c.Name] = true
		assert.Greater(t, c.Order, prev, "orders must be strictly increasing")
		prev = c.Order
	}
}

func TestTagRules_TargetsAreCanonical(t *testing.T) {
	for _, r := range tagRules {
		assert.True(t, IsCanonical(r.category), "tag %q maps to unknown category %q", r.tag, r.category)
	}
	for _, r := range keywordRules {
		assert.True(t, IsCanonical(r.category), "keyword rule targets unknown category %q", r.category)
	}
}
