package console

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/ashureev/beauty-advisor/internal/catalog"
	"github.com/ashureev/beauty-advisor/internal/domain"
	"github.com/ashureev/beauty-advisor/internal/session"
)

func newPlain(t *testing.T) (*Console, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	c, err := New(&buf, true)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return c, &buf
}

func TestShowMessage(t *testing.T) {
	c, buf := newPlain(t)

	c.ShowMessage(domain.RoleUser, "Which serum?")
	c.ShowMessage(domain.RoleAssistant, "Try **Génifique** at night.")

	out := buf.String()
	for _, want := range []string{"you", "Which serum?", "advisor", "Génifique", "at night."} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "\x1b[") {
		t.Errorf("plain console wrote ANSI escapes:\n%q", out)
	}
}

func TestStatusAndBusyPrompt(t *testing.T) {
	c, buf := newPlain(t)

	hide := c.ShowStatus(session.StatusThinking)
	c.SetBusy(true)
	if !strings.Contains(c.Prompt(), "…") {
		t.Errorf("busy prompt should show pending state, got %q", c.Prompt())
	}
	hide()
	c.SetBusy(false)
	if strings.Contains(c.Prompt(), "…") {
		t.Errorf("idle prompt should not show pending state, got %q", c.Prompt())
	}
	if !strings.Contains(buf.String(), session.StatusThinking) {
		t.Errorf("status not printed: %q", buf.String())
	}
}

func TestShowLatestQuestion(t *testing.T) {
	c, buf := newPlain(t)

	c.ShowLatestQuestion("   ")
	if buf.Len() != 0 {
		t.Fatalf("blank question should print nothing, got %q", buf.String())
	}
	c.ShowLatestQuestion(" best SPF? ")
	if !strings.Contains(buf.String(), "Latest question: best SPF?") {
		t.Fatalf("unexpected banner: %q", buf.String())
	}
}

func TestShowListing(t *testing.T) {
	c, buf := newPlain(t)

	c.ShowListing(session.Listing{Placeholder: catalog.PlaceholderNoProducts}, nil)
	c.ShowListing(session.Listing{Products: []domain.Product{
		{ID: 7, Brand: "Kiehl's", Name: "Ultra Facial Cream"},
		{ID: 8, Brand: "La Roche-Posay", Name: "Anthelios"},
	}}, func(id int) bool { return id == 8 })
	c.ShowSelected(nil, catalog.PlaceholderNoSelection)
	c.ShowCategories([]string{"cleanser", "makeup"})
	c.ShowError(errors.New("unknown command"))

	out := buf.String()
	for _, want := range []string{
		catalog.PlaceholderNoProducts,
		"[ ]   7  Ultra Facial Cream",
		"[x]   8  Anthelios",
		catalog.PlaceholderNoSelection,
		"cleanser, makeup",
		"unknown command",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}
