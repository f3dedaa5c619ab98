// Package session drives one advisor conversation: it connects the history,
// the product selection and the relay to whatever surface displays them.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"

	"github.com/ashureev/beauty-advisor/internal/catalog"
	"github.com/ashureev/beauty-advisor/internal/domain"
	"github.com/ashureev/beauty-advisor/internal/prompt"
	"github.com/ashureev/beauty-advisor/internal/relay"
	"github.com/ashureev/beauty-advisor/internal/selection"
)

// Texts shown by the session.
const (
	Greeting         = "👋 Hi! Ask me about L’Oréal products or routines."
	StatusThinking   = "Thinking…"
	ApologyChat      = "⚠️ Sorry—couldn’t reach the assistant. Please try again."
	ApologyRoutine   = "⚠️ Sorry—couldn’t reach the assistant for routine generation."
	NoSelectionReply = "Please select at least one product first."
	RoutineNotice    = "🧪 Generating a personalized routine based on your selected products…"
	RoutineTurn      = "Generate a routine now."
)

var (
	// ErrBusy is returned when a reply is requested while another is pending.
	ErrBusy = errors.New("a reply is already pending")

	// ErrUnknownProduct is returned when a product id is not in the catalog.
	ErrUnknownProduct = errors.New("unknown product")
)

// RoutineInstruction is the user turn recorded when a routine is requested.
func RoutineInstruction(selectionJSON string) string {
	return "Create a concise, step-by-step routine using ONLY these selected products. " +
		"For each step: name the step, name the product, 1–2 bullets on why/when/how to use it. " +
		"Keep tone friendly and brand-safe.\n\nSelected products JSON:\n" + selectionJSON
}

// View is the display surface of a session.
type View interface {
	ShowMessage(role domain.Role, text string)
	// ShowStatus shows a transient status line and returns a func that
	// removes it.
	ShowStatus(text string) (hide func())
	SetBusy(busy bool)
	ShowLatestQuestion(text string)
}

// History is the conversation state the session records turns into.
type History interface {
	AppendUser(ctx context.Context, text string)
	AppendInstruction(ctx context.Context, text string)
	AppendAssistant(ctx context.Context, text string)
	Snapshot() []domain.Message
	Transcript() []domain.Message
	Persist(ctx context.Context)
}

// Replier produces an assistant reply for a conversation.
type Replier interface {
	Reply(ctx context.Context, req relay.ReplyRequest) (string, error)
}

// Namer provides the remembered user name.
type Namer interface {
	Name() string
}

// Catalog provides the products a user can select.
type Catalog interface {
	Products(ctx context.Context) ([]domain.Product, error)
	ByCategory(ctx context.Context, category string) ([]domain.Product, error)
	Categories(ctx context.Context) ([]string, error)
}

// Deps are the collaborators of a Session. Relay may be nil when no relay
// endpoint is configured; replies then fail like any transport error.
type Deps struct {
	History History
	Profile Namer
	Catalog Catalog
	Relay   Replier
	View    View
}

// Listing is a product grid: either products or a placeholder text.
type Listing struct {
	Products    []domain.Product
	Placeholder string
}

// Session is one advisor conversation. Its methods are meant to be called
// from a single input loop; the busy flag rejects overlapping replies.
type Session struct {
	history   History
	profile   Namer
	catalog   Catalog
	relay     Replier
	view      View
	selection *selection.Set
	busy      atomic.Bool
}

// New creates a Session.
func New(deps Deps) *Session {
	r := deps.Relay
	if r == nil {
		r = noEndpoint{}
	}
	return &Session{
		history:   deps.History,
		profile:   deps.Profile,
		catalog:   deps.Catalog,
		relay:     r,
		view:      deps.View,
		selection: selection.New(),
	}
}

// Mount shows the restored conversation, or the greeting when there is none.
func (s *Session) Mount(_ context.Context) {
	transcript := s.history.Transcript()
	if len(transcript) == 0 {
		s.view.ShowMessage(domain.RoleAssistant, Greeting)
		return
	}
	for _, msg := range transcript {
		s.view.ShowMessage(msg.Role, msg.Content)
	}
}

// Submit sends a user question. Blank input is ignored. A failed reply is
// reported with an apology; the user turn stays in the history.
func (s *Session) Submit(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if !s.busy.CompareAndSwap(false, true) {
		return ErrBusy
	}
	defer s.busy.Store(false)

	s.view.ShowLatestQuestion(text)
	s.view.ShowMessage(domain.RoleUser, text)

	prior := s.history.Snapshot()
	s.history.AppendUser(ctx, text)

	return s.exchange(ctx, prior, text, "", ApologyChat)
}

// GenerateRoutine asks for a routine built from the selected products.
func (s *Session) GenerateRoutine(ctx context.Context) error {
	if !s.busy.CompareAndSwap(false, true) {
		return ErrBusy
	}
	defer s.busy.Store(false)

	selected := s.Selected(ctx)
	if len(selected) == 0 {
		s.view.ShowMessage(domain.RoleAssistant, NoSelectionReply)
		return nil
	}
	selectionJSON, err := selection.ContextJSON(selected)
	if err != nil {
		return fmt.Errorf("encode selection: %w", err)
	}

	s.view.ShowMessage(domain.RoleAssistant, RoutineNotice)
	s.history.AppendInstruction(ctx, RoutineInstruction(selectionJSON))

	return s.exchange(ctx, s.history.Snapshot(), RoutineTurn, selectionJSON, ApologyRoutine)
}

func (s *Session) exchange(ctx context.Context, history []domain.Message, turn, selectionJSON, apology string) error {
	s.view.SetBusy(true)
	defer s.view.SetBusy(false)
	hideStatus := s.view.ShowStatus(StatusThinking)

	reply, err := s.relay.Reply(ctx, relay.ReplyRequest{
		System:         prompt.Compose(s.profile.Name(), selectionJSON),
		History:        history,
		Turn:           turn,
		ProductContext: selectionJSON,
	})
	hideStatus()
	if err != nil {
		slog.Warn("Assistant reply failed", "error", err)
		s.view.ShowMessage(domain.RoleAssistant, apology)
		return fmt.Errorf("request reply: %w", err)
	}

	s.view.ShowMessage(domain.RoleAssistant, reply)
	s.history.AppendAssistant(ctx, reply)
	return nil
}

// Products lists a category. The placeholder is set when there is nothing
// to list.
func (s *Session) Products(ctx context.Context, category string) Listing {
	if strings.TrimSpace(category) == "" {
		return Listing{Placeholder: catalog.PlaceholderChooseCategory}
	}
	products, err := s.catalog.ByCategory(ctx, category)
	if err != nil {
		slog.Warn("Failed to load products", "error", err)
		return Listing{Placeholder: catalog.PlaceholderLoadFailed}
	}
	if len(products) == 0 {
		return Listing{Placeholder: catalog.PlaceholderNoProducts}
	}
	return Listing{Products: products}
}

// Categories lists the catalog categories.
func (s *Session) Categories(ctx context.Context) ([]string, error) {
	return s.catalog.Categories(ctx)
}

// Toggle flips the selection state of a catalog product and reports whether
// it is now selected.
func (s *Session) Toggle(ctx context.Context, id int) (bool, error) {
	if err := s.requireProduct(ctx, id); err != nil {
		return false, err
	}
	return s.selection.Toggle(id), nil
}

// IsSelected reports whether a product is selected.
func (s *Session) IsSelected(id int) bool {
	return s.selection.Has(id)
}

// Remove deselects a product. Unknown ids are ignored.
func (s *Session) Remove(id int) {
	s.selection.Remove(id)
}

// Selected returns the selected products in catalog order.
func (s *Session) Selected(ctx context.Context) []domain.Product {
	if s.selection.Len() == 0 {
		return nil
	}
	products, err := s.catalog.Products(ctx)
	if err != nil {
		slog.Warn("Failed to load products", "error", err)
		return nil
	}
	return s.selection.Snapshot(products)
}

func (s *Session) requireProduct(ctx context.Context, id int) error {
	products, err := s.catalog.Products(ctx)
	if err != nil {
		return fmt.Errorf("load products: %w", err)
	}
	for _, p := range products {
		if p.ID == id {
			return nil
		}
	}
	return fmt.Errorf("%w: %d", ErrUnknownProduct, id)
}

// Close writes the history one final time.
func (s *Session) Close(ctx context.Context) {
	s.history.Persist(ctx)
}

type noEndpoint struct{}

func (noEndpoint) Reply(context.Context, relay.ReplyRequest) (string, error) {
	return "", relay.ErrNoEndpoint
}
