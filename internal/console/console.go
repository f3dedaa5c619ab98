// Package console renders an advisor session in a terminal.
package console

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/ashureev/beauty-advisor/internal/domain"
	"github.com/ashureev/beauty-advisor/internal/session"
)

const wordWrap = 80

// Styles holds the terminal styles of the console.
type Styles struct {
	User     lipgloss.Style
	Label    lipgloss.Style
	Reply    lipgloss.Style
	Status   lipgloss.Style
	Question lipgloss.Style
	Product  lipgloss.Style
	Muted    lipgloss.Style
	Error    lipgloss.Style
	Prompt   lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) Styles {
	accent := lipgloss.Color("#c8a04a")
	return Styles{
		User: r.NewStyle().
			Bold(true),
		Label: r.NewStyle().
			Foreground(accent).
			Bold(true),
		Reply: r.NewStyle().
			PaddingLeft(1).
			BorderLeft(true).
			BorderStyle(lipgloss.ThickBorder()).
			BorderForeground(accent),
		Status: r.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			Italic(true),
		Question: r.NewStyle().
			Foreground(lipgloss.Color("#ffffff")).
			Background(lipgloss.Color("#000000")).
			Padding(0, 1),
		Product: r.NewStyle().
			Bold(true),
		Muted: r.NewStyle().
			Foreground(lipgloss.Color("#888888")),
		Error: r.NewStyle().
			Foreground(lipgloss.Color("#e06c75")).
			Bold(true),
		Prompt: r.NewStyle().
			Foreground(accent).
			Bold(true),
	}
}

// Console writes session output to a terminal. Assistant replies are
// rendered as markdown.
type Console struct {
	mu       sync.Mutex
	out      io.Writer
	styles   Styles
	markdown *glamour.TermRenderer
	busy     bool
}

// New creates a Console writing to out. Colors follow the capabilities of
// out; plain disables them and renders markdown without ANSI styling.
func New(out io.Writer, plain bool) (*Console, error) {
	opts := []glamour.TermRendererOption{glamour.WithAutoStyle(), glamour.WithWordWrap(wordWrap)}
	if plain {
		opts = []glamour.TermRendererOption{
			glamour.WithStandardStyle("notty"),
			glamour.WithColorProfile(termenv.Ascii),
			glamour.WithWordWrap(wordWrap),
		}
	}
	md, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return nil, fmt.Errorf("create markdown renderer: %w", err)
	}

	r := lipgloss.NewRenderer(out)
	if plain {
		r.SetColorProfile(termenv.Ascii)
	}
	return &Console{
		out:      out,
		styles:   newStyles(r),
		markdown: md,
	}, nil
}

// ShowMessage prints a chat bubble.
func (c *Console) ShowMessage(role domain.Role, text string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if role == domain.RoleUser {
		c.println(c.styles.Label.Render("you") + " " + c.styles.User.Render(text))
		return
	}

	body, err := c.markdown.Render(text)
	if err != nil {
		body = text
	}
	c.println(c.styles.Label.Render("advisor"))
	c.println(c.styles.Reply.Render(strings.Trim(body, "\n")))
}

// ShowStatus prints a status line. Terminal output is append-only, so the
// returned func has nothing to remove.
func (c *Console) ShowStatus(text string) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.println(c.styles.Status.Render(text))
	return func() {}
}

// SetBusy records whether a reply is pending.
func (c *Console) SetBusy(busy bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.busy = busy
}

// ShowLatestQuestion prints the latest question banner.
func (c *Console) ShowLatestQuestion(text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.println(c.styles.Question.Render("Latest question: " + text))
}

// ShowListing prints a product grid or its placeholder.
func (c *Console) ShowListing(l session.Listing, selected func(id int) bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if l.Placeholder != "" {
		c.println(c.styles.Muted.Render(l.Placeholder))
		return
	}
	for _, p := range l.Products {
		mark := "[ ]"
		if selected != nil && selected(p.ID) {
			mark = "[x]"
		}
		c.println(fmt.Sprintf("%s %3d  %s %s", mark, p.ID,
			c.styles.Product.Render(p.Name), c.styles.Muted.Render("· "+p.Brand)))
		if p.Description != "" {
			c.println("         " + c.styles.Muted.Render(p.Description))
		}
	}
}

// ShowSelected prints the selected products.
func (c *Console) ShowSelected(products []domain.Product, placeholder string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(products) == 0 {
		c.println(c.styles.Muted.Render(placeholder))
		return
	}
	for _, p := range products {
		c.println(fmt.Sprintf("%3d  %s %s", p.ID, c.styles.Product.Render(p.Name), c.styles.Muted.Render("· "+p.Brand)))
	}
}

// ShowCategories prints the catalog categories.
func (c *Console) ShowCategories(categories []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.println(c.styles.Muted.Render("Categories: ") + strings.Join(categories, ", "))
}

// ShowError prints a local error, such as a bad command.
func (c *Console) ShowError(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.println(c.styles.Error.Render(err.Error()))
}

// Prompt returns the input prompt.
func (c *Console) Prompt() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.busy {
		return c.styles.Prompt.Render("… ")
	}
	return c.styles.Prompt.Render("› ")
}

func (c *Console) println(s string) {
	_, _ = fmt.Fprintln(c.out, s)
}

var _ session.View = (*Console)(nil)
