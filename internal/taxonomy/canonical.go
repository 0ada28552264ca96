// Package taxonomy owns the canonical category list, the classifier that
// maps businesses into it, and the reconciler that converges the stored
// categories collection to it.
package taxonomy

// FallbackCategory receives businesses that cannot be classified and
// businesses stranded by a deleted non-canonical category. It must always
// appear in Canonical().
const FallbackCategory = "Professional Services"

// CategorySpec is one entry of the canonical taxonomy.
type CategorySpec struct {
	Name        string `yaml:"name"`
	Icon        string `yaml:"icon"`
	ImageURL    string `yaml:"image_url"`
	Description string `yaml:"description"`
	Order       int    `yaml:"order"`
}

// canonical is the single authoritative category list. The taxonomy
// reconciler converges the store to exactly these names, in this display
// order; the classifier only ever returns names from this list.
var canonical = []CategorySpec{
	{Name: "Restaurants", Icon: "utensils", ImageURL: "/images/categories/restaurants.jpg", Description: "Places to eat and drink around town", Order: 1},
	{Name: "Shopping", Icon: "shopping-bag", ImageURL: "/images/categories/shopping.jpg", Description: "Retail stores, markets, and boutiques", Order: 2},
	{Name: "Health & Wellness", Icon: "heart-pulse", ImageURL: "/images/categories/health.jpg", Description: "Clinics, dentists, pharmacies, and care providers", Order: 3},
	{Name: "Beauty & Barber", Icon: "scissors", ImageURL: "/images/categories/beauty.jpg", Description: "Salons, barber shops, and spas", Order: 4},
	{Name: "Automotive", Icon: "car", ImageURL: "/images/categories/automotive.jpg", Description: "Repair shops, dealers, and fuel", Order: 5},
	{Name: "Home Services", Icon: "wrench", ImageURL: "/images/categories/home-services.jpg", Description: "Contractors, plumbers, electricians, and trades", Order: 6},
	{Name: "Real Estate", Icon: "house", ImageURL: "/images/categories/real-estate.jpg", Description: "Agents, brokers, and property services", Order: 7},
	{Name: "Financial Services", Icon: "landmark", ImageURL: "/images/categories/financial.jpg", Description: "Banks, insurance, tax, and accounting", Order: 8},
	{Name: "Churches", Icon: "church", ImageURL: "/images/categories/churches.jpg", Description: "Churches and places of worship", Order: 9},
	{Name: "Education", Icon: "graduation-cap", ImageURL: "/images/categories/education.jpg", Description: "Schools, childcare, and learning centers", Order: 10},
	{Name: "Entertainment & Recreation", Icon: "trees", ImageURL: "/images/categories/recreation.jpg", Description: "Parks, fitness, and things to do", Order: 11},
	{Name: FallbackCategory, Icon: "briefcase", ImageURL: "/images/categories/professional.jpg", Description: "Lawyers, offices, and everything else", Order: 12},
}

// Canonical returns the authoritative category list in display order.
// Callers must not mutate the returned slice.
func Canonical() []CategorySpec {
	return canonical
}

// IsCanonical reports whether name is in the canonical list.
func IsCanonical(name string) bool {
	for _, c := range canonical {
		if c.Name == name {
			return true
		}
	}
	return false
}
