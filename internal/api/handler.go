// Package api provides HTTP handlers for the relay service.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ashureev/beauty-advisor/internal/relay"
)

const defaultMaxRequestBodySize = 1 << 20

// Forwarder sends a relay request to the model provider.
type Forwarder interface {
	Forward(ctx context.Context, req relay.ServiceRequest) (*relay.Upstream, error)
}

// RelayHandler serves the relay endpoint.
type RelayHandler struct {
	forwarder   Forwarder
	maxBodySize int64
}

// NewRelayHandler creates a RelayHandler. maxBodySize <= 0 uses 1 MiB.
func NewRelayHandler(f Forwarder, maxBodySize int64) *RelayHandler {
	if maxBodySize <= 0 {
		maxBodySize = defaultMaxRequestBodySize
	}
	return &RelayHandler{forwarder: f, maxBodySize: maxBodySize}
}

// RegisterRoutes registers the relay route.
func (h *RelayHandler) RegisterRoutes(r chi.Router) {
	r.Post("/", h.Relay)
}

// Relay forwards the conversation and writes the provider's status and body
// back unchanged.
func (h *RelayHandler) Relay(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodySize)

	req, err := decodeRequest(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			err = fmt.Errorf("request body exceeds %d bytes", tooLarge.Limit)
		}
		slog.Warn("Relay request rejected", "error", err)
		Error(w, http.StatusInternalServerError, err.Error())
		return
	}

	up, err := h.forwarder.Forward(r.Context(), req)
	if err != nil {
		slog.Error("Relay forward failed", "error", err)
		Error(w, http.StatusInternalServerError, err.Error())
		return
	}

	contentType := up.ContentType
	if contentType == "" {
		contentType = "application/json"
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(up.Status)
	if _, err := w.Write(up.Body); err != nil {
		slog.Debug("Relay response write failed", "error", err)
	}
}

// decodeRequest reads exactly one JSON object from body.
func decodeRequest(body io.Reader) (relay.ServiceRequest, error) {
	var req relay.ServiceRequest
	dec := json.NewDecoder(body)
	if err := dec.Decode(&req); err != nil {
		return req, err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return req, err
		}
		return req, errors.New("request body must contain a single JSON object")
	}
	return req, nil
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}
