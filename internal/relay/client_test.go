package relay

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ashureev/beauty-advisor/internal/domain"
)

func TestNewClientRequiresEndpoint(t *testing.T) {
	t.Parallel()

	if _, err := NewClient("  ", nil); !errors.Is(err, ErrNoEndpoint) {
		t.Fatalf("expected ErrNoEndpoint, got %v", err)
	}

	var c *Client
	if _, err := c.Reply(context.Background(), ReplyRequest{Turn: "hi"}); !errors.Is(err, ErrNoEndpoint) {
		t.Fatalf("expected ErrNoEndpoint from nil client, got %v", err)
	}
}

func TestBuildPayload(t *testing.T) {
	t.Parallel()

	got := BuildPayload(ReplyRequest{
		System: "rules",
		History: []domain.Message{
			domain.SystemMessage("stale"),
			domain.UserMessage("q1"),
			domain.AssistantMessage("a1"),
		},
		Turn:           "q2",
		ProductContext: "[]",
	})
	want := Payload{
		Messages: []domain.Message{
			domain.SystemMessage("rules"),
			domain.UserMessage("q1"),
			domain.AssistantMessage("a1"),
			domain.UserMessage("q2"),
		},
		ProductContext: "[]",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected payload (-want +got):\n%s", diff)
	}
}

func TestReplyExtractsChoicesContent(t *testing.T) {
	t.Parallel()

	var gotPayload Payload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("unexpected content type %q", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotPayload); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"Hello"}}]}`))
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL, srv.Client())
	if err != nil {
		t.Fatal(err)
	}
	reply, err := c.Reply(context.Background(), ReplyRequest{System: "rules", Turn: "hi"})
	if err != nil {
		t.Fatalf("Reply failed: %v", err)
	}
	if reply != "Hello" {
		t.Fatalf("expected Hello, got %q", reply)
	}
	if len(gotPayload.Messages) != 2 || gotPayload.Messages[0].Role != domain.RoleSystem {
		t.Fatalf("unexpected payload sent: %+v", gotPayload)
	}
}

func TestReplyFallsBackOnMissingField(t *testing.T) {
	t.Parallel()

	for _, body := range []string{`{}`, `{"choices":[]}`, `{"choices":[{"message":{"content":""}}]}`, `not json`} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(body))
		}))

		c, err := NewClient(srv.URL, srv.Client())
		if err != nil {
			t.Fatal(err)
		}
		reply, err := c.Reply(context.Background(), ReplyRequest{Turn: "hi"})
		srv.Close()
		if err != nil {
			t.Fatalf("body %s: expected no error, got %v", body, err)
		}
		if reply != FallbackReply {
			t.Fatalf("body %s: expected fallback, got %q", body, reply)
		}
	}
}

func TestReplyTransportErrors(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`{"error":"upstream down"}`))
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL, srv.Client())
	if err != nil {
		t.Fatal(err)
	}
	_, err = c.Reply(context.Background(), ReplyRequest{Turn: "hi"})
	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("expected *TransportError, got %v", err)
	}
	if te.Status != http.StatusBadGateway || te.Body != `{"error":"upstream down"}` {
		t.Fatalf("unexpected transport error: %+v", te)
	}

	dead := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	deadURL := dead.URL
	dead.Close()

	c, err = NewClient(deadURL, nil)
	if err != nil {
		t.Fatal(err)
	}
	_, err = c.Reply(context.Background(), ReplyRequest{Turn: "hi"})
	if !errors.As(err, &te) || te.Status != 0 {
		t.Fatalf("expected network TransportError, got %v", err)
	}
}

func TestExtractReplyResponsesShape(t *testing.T) {
	t.Parallel()

	body := []byte(`{
		"id": "resp_1",
		"output": [
			{"type": "web_search_call", "status": "completed"},
			{"type": "message", "role": "assistant", "content": [
				{"type": "output_text", "text": "Try Revitalift. "},
				{"type": "output_text", "text": "Patch test first."}
			]}
		]
	}`)
	got, err := ExtractReply(body)
	if err != nil {
		t.Fatalf("ExtractReply failed: %v", err)
	}
	if got != "Try Revitalift. Patch test first." {
		t.Fatalf("unexpected reply %q", got)
	}

	if _, err := ExtractReply([]byte(`{"output":[]}`)); !errors.Is(err, ErrReplyShape) {
		t.Fatalf("expected ErrReplyShape, got %v", err)
	}
}
