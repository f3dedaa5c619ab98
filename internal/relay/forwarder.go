package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/ashureev/beauty-advisor/internal/prompt"
)

// ServiceRequest is the body accepted by the relay service.
type ServiceRequest struct {
	Messages       json.RawMessage `json:"messages"`
	ProductContext string          `json:"productContext,omitempty"`
	RoutineJSON    string          `json:"routineJSON,omitempty"` // older clients
}

// Context returns the serialized product selection, if any.
func (r ServiceRequest) Context() string {
	if r.ProductContext != "" {
		return r.ProductContext
	}
	return r.RoutineJSON
}

// Settings are the fixed generation parameters the relay applies.
type Settings struct {
	Model           string
	Temperature     float64
	MaxOutputTokens int64
}

// Upstream is the provider's response, kept byte for byte.
type Upstream struct {
	Status      int
	ContentType string
	Body        []byte
}

type webSearchTool struct {
	Type string `json:"type"`
}

// responsesRequest is the Responses API body sent to the provider.
type responsesRequest struct {
	Model           string          `json:"model"`
	Input           json.RawMessage `json:"input"`
	Instructions    string          `json:"instructions"`
	Tools           []webSearchTool `json:"tools"`
	ToolChoice      string          `json:"tool_choice"`
	Temperature     float64         `json:"temperature"`
	MaxOutputTokens int64           `json:"max_output_tokens"`
}

// MarshalJSON keeps the body a plain JSON document for the SDK.
func (r responsesRequest) MarshalJSON() ([]byte, error) {
	type plain responsesRequest
	return json.Marshal(plain(r))
}

// Forwarder sends relay requests to the provider's Responses endpoint and
// hands back the provider's answer without reshaping it.
type Forwarder struct {
	client   openai.Client
	settings Settings
}

// NewForwarder creates a Forwarder. opts configure the provider client (API
// key, base URL, HTTP client). SDK retries are disabled so that every relay
// call maps to exactly one provider call.
func NewForwarder(settings Settings, opts ...option.RequestOption) *Forwarder {
	opts = append([]option.RequestOption{option.WithMaxRetries(0)}, opts...)
	return &Forwarder{
		client:   openai.NewClient(opts...),
		settings: settings,
	}
}

// Forward posts the conversation to the provider. Any response the provider
// sends back, success or error status, is returned as an Upstream. The error
// is non-nil only when no response was received.
func (f *Forwarder) Forward(ctx context.Context, req ServiceRequest) (*Upstream, error) {
	input := req.Messages
	if len(bytes.TrimSpace(input)) == 0 || bytes.Equal(bytes.TrimSpace(input), []byte("null")) {
		input = json.RawMessage("[]")
	}

	body := responsesRequest{
		Model:           f.settings.Model,
		Input:           input,
		Instructions:    prompt.RelayInstructions(req.Context()),
		Tools:           []webSearchTool{{Type: "web_search"}},
		ToolChoice:      "auto",
		Temperature:     f.settings.Temperature,
		MaxOutputTokens: f.settings.MaxOutputTokens,
	}

	var upstream *Upstream
	capture := func(r *http.Request, next option.MiddlewareNext) (*http.Response, error) {
		res, err := next(r)
		if err != nil || res == nil {
			return res, err
		}
		raw, err := io.ReadAll(res.Body)
		_ = res.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("read provider response: %w", err)
		}
		upstream = &Upstream{
			Status:      res.StatusCode,
			ContentType: res.Header.Get("Content-Type"),
			Body:        raw,
		}
		res.Body = io.NopCloser(bytes.NewReader(raw))
		return res, nil
	}

	var discard []byte
	err := f.client.Post(ctx, "responses", body, &discard, option.WithMiddleware(capture))
	if upstream != nil {
		// Error statuses come back as SDK errors; the captured body is what
		// the caller gets either way.
		return upstream, nil
	}
	if err == nil {
		err = errors.New("provider returned no response")
	}
	return nil, fmt.Errorf("forward to provider: %w", err)
}
