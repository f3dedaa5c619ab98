// Package relay implements both halves of the relay round trip: the client
// that the advisor uses to reach the relay, and the forwarder the relay uses
// to reach the hosted model provider.
package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/ashureev/beauty-advisor/internal/domain"
)

// FallbackReply replaces a reply that could not be found in a successful
// relay response.
const FallbackReply = "Sorry, I couldn’t generate a reply."

// maxReplySize caps the relay response body read by the client.
const maxReplySize = 4 << 20

var (
	// ErrNoEndpoint is returned when the relay endpoint is not configured.
	ErrNoEndpoint = errors.New("relay endpoint is not configured; set ADVISOR_RELAY_URL to the deployed relay URL")

	// ErrReplyShape marks a successful response without a reply text. It is
	// logged and replaced by FallbackReply, never returned to callers.
	ErrReplyShape = errors.New("relay response has no reply text")
)

// TransportError reports a relay call that failed on the network or returned
// a non-success status.
type TransportError struct {
	Status int // 0 when no response was received
	Body   string
	Err    error
}

func (e *TransportError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("relay unreachable: %v", e.Err)
	}
	return fmt.Sprintf("relay HTTP %d: %s", e.Status, e.Body)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ReplyRequest is one relay round trip as seen by the advisor.
type ReplyRequest struct {
	System         string           // composed system prompt, selection context included
	History        []domain.Message // prior turns; system entries are dropped
	Turn           string           // the newest user turn
	ProductContext string           // serialized selection, optional
}

// Payload is the relay request body.
type Payload struct {
	Messages       []domain.Message `json:"messages"`
	ProductContext string           `json:"productContext,omitempty"`
}

// BuildPayload assembles [system, ...non-system history, turn].
func BuildPayload(req ReplyRequest) Payload {
	msgs := make([]domain.Message, 0, len(req.History)+2)
	msgs = append(msgs, domain.SystemMessage(req.System))
	msgs = append(msgs, domain.WithoutSystem(req.History)...)
	msgs = append(msgs, domain.UserMessage(req.Turn))
	return Payload{Messages: msgs, ProductContext: req.ProductContext}
}

// Client sends conversation payloads to the relay service.
type Client struct {
	endpoint   string
	httpClient *http.Client
}

// NewClient creates a relay client. It fails with ErrNoEndpoint when
// endpoint is blank. A nil httpClient uses http.DefaultClient.
func NewClient(endpoint string, httpClient *http.Client) (*Client, error) {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return nil, ErrNoEndpoint
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{endpoint: endpoint, httpClient: httpClient}, nil
}

// Reply sends req and returns the assistant reply. Transport failures are
// returned as *TransportError. A successful response without a reply yields
// FallbackReply and a nil error.
func (c *Client) Reply(ctx context.Context, req ReplyRequest) (string, error) {
	if c == nil || c.endpoint == "" {
		return "", ErrNoEndpoint
	}

	body, err := json.Marshal(BuildPayload(req))
	if err != nil {
		return "", fmt.Errorf("encode relay payload: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build relay request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", &TransportError{Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	raw, readErr := io.ReadAll(io.LimitReader(resp.Body, maxReplySize))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &TransportError{Status: resp.StatusCode, Body: string(raw), Err: readErr}
	}
	if readErr != nil {
		return "", &TransportError{Status: resp.StatusCode, Err: readErr}
	}

	reply, err := ExtractReply(raw)
	if err != nil {
		slog.Warn("relay reply missing, using fallback", "error", err, "status", resp.StatusCode)
		return FallbackReply, nil
	}
	return reply, nil
}

// ExtractReply finds the reply text in a provider response. Chat-completions
// bodies are read from choices[0].message.content; Responses API bodies from
// the output_text parts of output messages.
func ExtractReply(body []byte) (string, error) {
	if !gjson.ValidBytes(body) {
		return "", fmt.Errorf("%w: body is not JSON", ErrReplyShape)
	}

	if c := gjson.GetBytes(body, "choices.0.message.content"); c.Type == gjson.String && c.Str != "" {
		return c.Str, nil
	}
	if c := gjson.GetBytes(body, "output_text"); c.Type == gjson.String && c.Str != "" {
		return c.Str, nil
	}

	var b strings.Builder
	gjson.GetBytes(body, "output").ForEach(func(_, item gjson.Result) bool {
		if item.Get("type").String() != "message" {
			return true
		}
		item.Get("content").ForEach(func(_, part gjson.Result) bool {
			if part.Get("type").String() == "output_text" {
				b.WriteString(part.Get("text").String())
			}
			return true
		})
		return true
	})
	if b.Len() > 0 {
		return b.String(), nil
	}

	return "", ErrReplyShape
}
