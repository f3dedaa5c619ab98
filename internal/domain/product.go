package domain

// Product is a read-only catalog entry.
type Product struct {
	ID          int    `json:"id"`
	Brand       string `json:"brand"`
	Name        string `json:"name"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Image       string `json:"image"`
}

// Profile holds the remembered user attributes.
type Profile struct {
	Name string `json:"name"`
}

// HasName returns true if a display name has been remembered.
func (p Profile) HasName() bool {
	return p.Name != ""
}
