// Package web embeds the default product catalog served by the relay.
package web

import (
	"bytes"
	_ "embed"
	"net/http"
	"time"
)

//go:embed static/products.json
var productsJSON []byte

// loadedAt is used as the modification time for conditional requests.
var loadedAt = time.Now()

// Products returns a copy of the embedded catalog document.
func Products() []byte {
	return bytes.Clone(productsJSON)
}

// ProductsHandler serves the embedded catalog as JSON. Clients are told not
// to cache it so that a redeployed catalog is picked up on the next load.
func ProductsHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-cache")
		http.ServeContent(w, r, "products.json", loadedAt, bytes.NewReader(productsJSON))
	})
}
