// Package selection tracks which catalog products the user picked.
package selection

import (
	"encoding/json"
	"fmt"

	"github.com/ashureev/beauty-advisor/internal/domain"
)

// Set is the set of selected product ids. It lives for one session and is
// never persisted.
type Set struct {
	ids map[int]struct{}
}

// New creates an empty selection.
func New() *Set {
	return &Set{ids: make(map[int]struct{})}
}

// Toggle adds id when absent and removes it when present. It reports whether
// id is selected afterwards.
func (s *Set) Toggle(id int) bool {
	if _, ok := s.ids[id]; ok {
		delete(s.ids, id)
		return false
	}
	s.ids[id] = struct{}{}
	return true
}

// Remove deselects id.
func (s *Set) Remove(id int) {
	delete(s.ids, id)
}

// Has reports whether id is selected.
func (s *Set) Has(id int) bool {
	_, ok := s.ids[id]
	return ok
}

// Len returns the number of selected ids.
func (s *Set) Len() int {
	return len(s.ids)
}

// Snapshot returns the selected products in catalog order. Selected ids that
// are not in catalog are skipped.
func (s *Set) Snapshot(catalog []domain.Product) []domain.Product {
	var out []domain.Product
	for _, p := range catalog {
		if s.Has(p.ID) {
			out = append(out, p)
		}
	}
	return out
}

// contextProduct is the subset of product fields sent to the model.
type contextProduct struct {
	ID          int    `json:"id"`
	Brand       string `json:"brand"`
	Name        string `json:"name"`
	Category    string `json:"category"`
	Description string `json:"description"`
}

// ContextJSON serializes products as the indented selection context used by
// the prompt and the relay.
func ContextJSON(products []domain.Product) (string, error) {
	payload := make([]contextProduct, 0, len(products))
	for _, p := range products {
		payload = append(payload, contextProduct{
			ID:          p.ID,
			Brand:       p.Brand,
			Name:        p.Name,
			Category:    p.Category,
			Description: p.Description,
		})
	}
	raw, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode selection context: %w", err)
	}
	return string(raw), nil
}
