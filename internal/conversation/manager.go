// Package conversation owns the bounded, persisted chat history.
package conversation

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/ashureev/beauty-advisor/internal/domain"
	"github.com/ashureev/beauty-advisor/internal/names"
	"github.com/ashureev/beauty-advisor/internal/profile"
	"github.com/ashureev/beauty-advisor/internal/prompt"
	"github.com/ashureev/beauty-advisor/internal/store"
)

const (
	// StorageKey is the blob key the history is persisted under.
	StorageKey = "advisor_chat_messages_v1"

	// PruneThreshold is the history length above which the history is pruned.
	PruneThreshold = 25
	// KeepRecent is the number of non-system messages kept by a prune.
	KeepRecent = 20
	// RestoreLimit is the total number of entries kept when a persisted
	// history is restored, system message included.
	RestoreLimit = 20
)

// Manager maintains the ordered message history. The history holds at most
// one system message, always at index 0, and it is kept in sync with the
// latest composed prompt.
//
// Every mutation is persisted. Persistence failures are logged and
// swallowed: the in-memory history stays correct and only durability is
// lost. A Manager is not safe for concurrent use; a session drives it from
// one goroutine.
type Manager struct {
	blobs    store.Blobs
	profile  *profile.Store
	names    names.Extractor
	messages []domain.Message
}

// Option configures a Manager.
type Option func(*Manager)

// WithExtractor replaces the default pattern-based name extractor.
func WithExtractor(e names.Extractor) Option {
	return func(m *Manager) {
		m.names = e
	}
}

// Load restores the persisted history. A missing or unparseable blob seeds a
// fresh history with a single system message. A restored history has its
// system message regenerated and is truncated to the most recent
// RestoreLimit entries.
func Load(ctx context.Context, blobs store.Blobs, prof *profile.Store, opts ...Option) *Manager {
	m := &Manager{
		blobs:   blobs,
		profile: prof,
		names:   names.NewPatternExtractor(),
	}
	for _, opt := range opts {
		opt(m)
	}

	system := m.systemMessage()
	m.messages = []domain.Message{system}

	stored, err := m.read(ctx)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			slog.Warn("failed to restore conversation, starting fresh", "error", err)
		}
		return m
	}

	rest := validTurns(stored)
	if keep := RestoreLimit - 1; len(rest) > keep {
		rest = rest[len(rest)-keep:]
	}
	m.messages = append(m.messages, rest...)
	return m
}

func (m *Manager) read(ctx context.Context) ([]domain.Message, error) {
	raw, err := m.blobs.Get(ctx, StorageKey)
	if err != nil {
		return nil, err
	}
	var stored []domain.Message
	if err := json.Unmarshal(raw, &stored); err != nil {
		return nil, err
	}
	return stored, nil
}

// validTurns drops system entries and entries with an unknown role.
func validTurns(msgs []domain.Message) []domain.Message {
	out := make([]domain.Message, 0, len(msgs))
	for _, msg := range msgs {
		if msg.Role == domain.RoleUser || msg.Role == domain.RoleAssistant {
			out = append(out, msg)
		}
	}
	return out
}

func (m *Manager) systemMessage() domain.Message {
	return domain.SystemMessage(prompt.Compose(m.profile.Name(), ""))
}

// AppendUser records a user turn. When the text introduces a name and none
// is remembered yet, the name is saved and the system message is rebuilt
// in place.
func (m *Manager) AppendUser(ctx context.Context, text string) {
	if name, ok := m.names.Extract(text); ok && m.profile.RememberName(ctx, name) {
		slog.Info("remembered user name", "length", len(name))
		m.refreshSystem()
	}
	m.messages = append(m.messages, domain.UserMessage(text))
	m.Prune()
	m.persist(ctx)
}

// AppendInstruction records a user turn generated by the client, such as a
// routine request. The text is not searched for a name.
func (m *Manager) AppendInstruction(ctx context.Context, text string) {
	m.messages = append(m.messages, domain.UserMessage(text))
	m.Prune()
	m.persist(ctx)
}

// AppendAssistant records a model reply.
func (m *Manager) AppendAssistant(ctx context.Context, text string) {
	m.messages = append(m.messages, domain.AssistantMessage(text))
	m.Prune()
	m.persist(ctx)
}

// Prune normalizes and bounds the history in place.
func (m *Manager) Prune() {
	m.messages = Prune(m.messages, m.systemMessage)
}

func (m *Manager) refreshSystem() {
	m.messages = append([]domain.Message{m.systemMessage()}, domain.WithoutSystem(m.messages)...)
}

// Snapshot returns a copy of the full history, system message included.
func (m *Manager) Snapshot() []domain.Message {
	return append([]domain.Message(nil), m.messages...)
}

// Transcript returns a copy of the user and assistant turns for display.
func (m *Manager) Transcript() []domain.Message {
	return domain.WithoutSystem(m.messages)
}

// Len returns the number of entries in the history.
func (m *Manager) Len() int {
	return len(m.messages)
}

// Persist writes the history to the blob store.
func (m *Manager) Persist(ctx context.Context) {
	m.persist(ctx)
}

func (m *Manager) persist(ctx context.Context) {
	raw, err := json.Marshal(m.messages)
	if err != nil {
		slog.Warn("failed to encode conversation", "error", err)
		return
	}
	if err := m.blobs.Set(ctx, StorageKey, raw); err != nil {
		slog.Warn("failed to persist conversation", "error", err, "messages", len(m.messages))
	}
}

// Prune normalizes msgs to hold one system message at index 0. When the
// normalized history is longer than PruneThreshold, only the KeepRecent most recent non-system
// messages are kept. The first system message found is reused; system is
// called to synthesize one when msgs has none.
func Prune(msgs []domain.Message, system func() domain.Message) []domain.Message {
	var sys *domain.Message
	for i := range msgs {
		if msgs[i].Role == domain.RoleSystem {
			sys = &msgs[i]
			break
		}
	}

	rest := domain.WithoutSystem(msgs)
	if len(rest)+1 > PruneThreshold {
		rest = rest[len(rest)-KeepRecent:]
	}

	out := make([]domain.Message, 0, len(rest)+1)
	if sys != nil {
		out = append(out, *sys)
	} else {
		out = append(out, system())
	}
	return append(out, rest...)
}
