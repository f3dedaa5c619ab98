// Package catalog loads the read-only product catalog once per session.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/ashureev/beauty-advisor/internal/domain"
)

// Placeholder texts shown in place of the product grid.
const (
	PlaceholderChooseCategory = "Select a category to view products"
	PlaceholderLoadFailed     = "⚠️ Couldn’t load products. Make sure the catalog is reachable and serves valid JSON."
	PlaceholderNoProducts     = "No products found for this category."
	PlaceholderNoSelection    = "No products selected yet."
)

// maxCatalogSize caps the catalog document read from the source.
const maxCatalogSize = 8 << 20

// LoadError reports a catalog fetch or parse failure.
type LoadError struct {
	Source string
	Err    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load catalog from %s: %v", e.Source, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

type document struct {
	Products []domain.Product `json:"products"`
}

// Loader fetches the catalog from an http(s) URL or a file path and caches a
// successful result. A failed load is not cached and not retried by the
// Loader itself.
type Loader struct {
	source   string
	client   *http.Client
	products []domain.Product
	loaded   bool
}

// NewLoader creates a Loader for source. A nil client uses http.DefaultClient.
func NewLoader(source string, client *http.Client) *Loader {
	if client == nil {
		client = http.DefaultClient
	}
	return &Loader{source: source, client: client}
}

// Products returns the cached catalog, loading it on first use.
func (l *Loader) Products(ctx context.Context) ([]domain.Product, error) {
	if l.loaded {
		return l.products, nil
	}

	raw, err := l.read(ctx)
	if err != nil {
		return nil, &LoadError{Source: l.source, Err: err}
	}

	var doc document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, &LoadError{Source: l.source, Err: fmt.Errorf("decode catalog: %w", err)}
	}

	l.products = doc.Products
	if l.products == nil {
		l.products = []domain.Product{}
	}
	l.loaded = true
	return l.products, nil
}

// ByCategory returns the products whose trimmed category equals category.
func (l *Loader) ByCategory(ctx context.Context, category string) ([]domain.Product, error) {
	products, err := l.Products(ctx)
	if err != nil {
		return nil, err
	}
	category = strings.TrimSpace(category)
	var out []domain.Product
	for _, p := range products {
		if strings.TrimSpace(p.Category) == category {
			out = append(out, p)
		}
	}
	return out, nil
}

// Categories returns the distinct categories in catalog order.
func (l *Loader) Categories(ctx context.Context) ([]string, error) {
	products, err := l.Products(ctx)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{})
	var out []string
	for _, p := range products {
		c := strings.TrimSpace(p.Category)
		if _, ok := seen[c]; ok || c == "" {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out, nil
}

func (l *Loader) read(ctx context.Context) ([]byte, error) {
	if !strings.HasPrefix(l.source, "http://") && !strings.HasPrefix(l.source, "https://") {
		return os.ReadFile(strings.TrimPrefix(l.source, "file://"))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.source, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("HTTP %d", resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxCatalogSize))
}
