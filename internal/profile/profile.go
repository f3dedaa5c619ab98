// Package profile persists the remembered user attributes.
package profile

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/ashureev/beauty-advisor/internal/domain"
	"github.com/ashureev/beauty-advisor/internal/store"
)

// StorageKey is the blob key the profile is persisted under.
const StorageKey = "advisor_chat_profile_v1"

// Store holds the user profile in memory and mirrors it to a blob store.
// Persistence is best effort: read and write failures are logged and the
// in-memory profile stays authoritative.
type Store struct {
	blobs   store.Blobs
	profile domain.Profile
}

// Load reads the persisted profile. A missing or corrupt blob yields an
// empty profile.
func Load(ctx context.Context, blobs store.Blobs) *Store {
	s := &Store{blobs: blobs}

	raw, err := blobs.Get(ctx, StorageKey)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return s
	case err != nil:
		slog.Warn("failed to read profile, starting empty", "error", err)
		return s
	}

	var p domain.Profile
	if err := json.Unmarshal(raw, &p); err != nil {
		slog.Warn("discarding corrupt profile", "error", err)
		return s
	}
	s.profile = p
	return s
}

// Profile returns the current profile.
func (s *Store) Profile() domain.Profile {
	return s.profile
}

// Name returns the remembered display name, or "".
func (s *Store) Name() string {
	return s.profile.Name
}

// RememberName stores name if no name is remembered yet. It reports whether
// the profile changed.
func (s *Store) RememberName(ctx context.Context, name string) bool {
	if name == "" || s.profile.HasName() {
		return false
	}
	s.profile.Name = name
	s.save(ctx)
	return true
}

func (s *Store) save(ctx context.Context) {
	raw, err := json.Marshal(s.profile)
	if err != nil {
		slog.Warn("failed to encode profile", "error", err)
		return
	}
	if err := s.blobs.Set(ctx, StorageKey, raw); err != nil {
		slog.Warn("failed to persist profile", "error", err)
	}
}
