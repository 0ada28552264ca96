package taxonomy

import "strings"

// tagRules maps Places API type tags to canonical category names. When a
// tag appears twice the earlier rule wins, so specific tags belong above
// general ones (e.g. "bakery" above "store").
var tagRules = []struct {
	tag      string
	category string
}{
	{"restaurant", "Restaurants"},
	{"meal_takeaway", "Restaurants"},
	{"meal_delivery", "Restaurants"},
	{"cafe", "Restaurants"},
	{"bakery", "Restaurants"},
	{"bar", "Restaurants"},
	{"food", "Restaurants"},

	{"church", "Churches"},
	{"place_of_worship", "Churches"},

	{"school", "Education"},
	{"primary_school", "Education"},
	{"secondary_school", "Education"},
	{"library", "Education"},
	{"child_care_agency", "Education"},

	{"doctor", "Health & Wellness"},
	{"dentist", "Health & Wellness"},
	{"pharmacy", "Health & Wellness"},
	{"drugstore", "Health & Wellness"},
	{"hospital", "Health & Wellness"},
	{"physiotherapist", "Health & Wellness"},
	{"chiropractor", "Health & Wellness"},
	{"veterinary_care", "Health & Wellness"},

	{"hair_care", "Beauty & Barber"},
	{"hair_salon", "Beauty & Barber"},
	{"beauty_salon", "Beauty & Barber"},
	{"barber_shop", "Beauty & Barber"},
	{"nail_salon", "Beauty & Barber"},
	{"spa", "Beauty & Barber"},

	{"car_repair", "Automotive"},
	{"car_dealer", "Automotive"},
	{"car_wash", "Automotive"},
	{"gas_station", "Automotive"},

	{"plumber", "Home Services"},
	{"electrician", "Home Services"},
	{"roofing_contractor", "Home Services"},
	{"general_contractor", "Home Services"},
	{"locksmith", "Home Services"},
	{"painter", "Home Services"},
	{"moving_company", "Home Services"},

	{"real_estate_agency", "Real Estate"},

	{"bank", "Financial Services"},
	{"atm", "Financial Services"},
	{"insurance_agency", "Financial Services"},
	{"accounting", "Financial Services"},

	{"park", "Entertainment & Recreation"},
	{"gym", "Entertainment & Recreation"},
	{"fitness_center", "Entertainment & Recreation"},
	{"movie_theater", "Entertainment & Recreation"},
	{"museum", "Entertainment & Recreation"},
	{"rv_park", "Entertainment & Recreation"},

	{"supermarket", "Shopping"},
	{"grocery_store", "Shopping"},
	{"convenience_store", "Shopping"},
	{"clothing_store", "Shopping"},
	{"hardware_store", "Shopping"},
	{"furniture_store", "Shopping"},
	{"florist", "Shopping"},
	{"store", "Shopping"},

	{"lawyer", FallbackCategory},
}

// tagIndex is built once from tagRules; first rule per tag wins.
var tagIndex = func() map[string]string {
	m := make(map[string]string, len(tagRules))
	for _, r := range tagRules {
		if _, ok := m[r.tag]; !ok {
			m[r.tag] = r.category
		}
	}
	return m
}()

// keywordRules maps canonical category names to lowercase substrings
// matched against a business's name and address. Iteration order is the
// tie-break for overlapping keywords, so specific categories sit above
// general ones: "Shopping" goes last among keyworded groups because its
// terms ("store", "shop") shadow nearly everything.
var keywordRules = []struct {
	category string
	keywords []string
}{
	{"Churches", []string{"church", "baptist", "methodist", "chapel", "ministries", "fellowship"}},
	{"Education", []string{"school", "academy", "isd", "daycare", "learning center", "library"}},
	{"Health & Wellness", []string{"clinic", "dental", "pharmacy", "chiropract", "medical", "health", "veterinar", "physical therapy"}},
	{"Beauty & Barber", []string{"salon", "barber", "nails", "day spa"}},
	{"Automotive", []string{"auto", "tire", "garage", "motors", "collision", "car wash", "towing"}},
	{"Real Estate", []string{"realty", "real estate", "properties", "land company"}},
	{"Financial Services", []string{"bank", "credit union", "insurance", "tax service", "accounting", "bookkeep"}},
	{"Home Services", []string{"plumbing", "electric", "roofing", "hvac", "air conditioning", "construction", "landscap", "pest control", "welding"}},
	{"Restaurants", []string{"cafe", "grill", "bbq", "barbecue", "diner", "taqueria", "pizza", "restaurant", "kitchen", "taco", "burger"}},
	{"Entertainment & Recreation", []string{"park", "fitness", "gym", "bowling", "rv resort"}},
	{"Shopping", []string{"store", "market", "boutique", "antique", "feed", "hardware", "shop"}},
}

// ClassifyTags maps a list of Places type tags to a canonical category
// name. The first tag in the input list with a table entry wins; input
// order is the tie-break. Returns "" when no tag matches.
func ClassifyTags(tags []string) string {
	for _, t := range tags {
		if cat, ok := tagIndex[strings.ToLower(t)]; ok {
			return cat
		}
	}
	return ""
}

// ClassifyText maps free text (business name plus address) to a
// canonical category name by keyword match, walking keywordRules in
// order. Returns "" when nothing matches.
func ClassifyText(name, address string) string {
	text := strings.ToLower(name + " " + address)
	for _, r := range keywordRules {
		for _, kw := range r.keywords {
			if strings.Contains(text, kw) {
				return r.category
			}
		}
	}
	return ""
}

// Classify resolves a candidate's category: type tags first, then
// name/address keywords, then the fallback. Never returns "".
func Classify(tags []string, name, address string) string {
	if cat := ClassifyTags(tags); cat != "" {
		return cat
	}
	if cat := ClassifyText(name, address); cat != "" {
		return cat
	}
	return FallbackCategory
}
