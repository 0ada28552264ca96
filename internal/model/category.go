package model

// Category is one entry in the directory's category taxonomy.
//
// The store assigns the opaque ID; Name is the de facto business key.
// Nothing in the store enforces name uniqueness — the taxonomy
// reconciler does.
type Category struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Icon        string `json:"icon,omitempty"`
	ImageURL    string `json:"image_url,omitempty"`
	Description string `json:"description,omitempty"`
	Order       int    `json:"order,omitempty"`
}

// CategoryPatch is a partial update to a category. Nil fields are left
// untouched by the store.
type CategoryPatch struct {
	Name        *string `json:"name,omitempty"`
	Icon        *string `json:"icon,omitempty"`
	ImageURL    *string `json:"image_url,omitempty"`
	Description *string `json:"description,omitempty"`
	Order       *int    `json:"order,omitempty"`
}
