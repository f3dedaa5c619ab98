package config

import (
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestLoadRelayDefaults(t *testing.T) {
	cfg, err := LoadRelay(map[string]string{"OPENAI_API_KEY": "sk-test"})
	if err != nil {
		t.Fatalf("LoadRelay failed: %v", err)
	}

	want := &Relay{
		Port:            "8787",
		APIKey:          "sk-test",
		BaseURL:         "https://api.openai.com/v1/",
		Model:           "gpt-4.1",
		Temperature:     0.4,
		MaxOutputTokens: 600,
		MaxBodyBytes:    1 << 20,
		RateLimit:       RateLimit{Requests: 0, Window: time.Minute},
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Fatalf("unexpected config (-want +got):\n%s", diff)
	}
	if cfg.RateLimit.Enabled() {
		t.Error("rate limiting should be off by default")
	}
}

func TestLoadRelayOverrides(t *testing.T) {
	cfg, err := LoadRelay(map[string]string{
		"OPENAI_API_KEY":            "sk-test",
		"PORT":                      "9000",
		"RELAY_MODEL":               "gpt-4o",
		"RELAY_RATE_LIMIT_REQUESTS": "30",
		"RELAY_RATE_LIMIT_WINDOW":   "30s",
	})
	if err != nil {
		t.Fatalf("LoadRelay failed: %v", err)
	}
	if cfg.Port != "9000" || cfg.Model != "gpt-4o" {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	if !cfg.RateLimit.Enabled() || cfg.RateLimit.Window != 30*time.Second {
		t.Errorf("unexpected rate limit: %+v", cfg.RateLimit)
	}
}

func TestLoadRelayValidation(t *testing.T) {
	tests := []struct {
		name    string
		environ map[string]string
		wantErr string
	}{
		{"missing key", map[string]string{}, "OPENAI_API_KEY"},
		{"blank key", map[string]string{"OPENAI_API_KEY": "  "}, "OPENAI_API_KEY"},
		{"bad tokens", map[string]string{"OPENAI_API_KEY": "k", "RELAY_MAX_OUTPUT_TOKENS": "0"}, "RELAY_MAX_OUTPUT_TOKENS"},
		{"unparseable temperature", map[string]string{"OPENAI_API_KEY": "k", "RELAY_TEMPERATURE": "warm"}, "Temperature"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadRelay(tt.environ)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error mentioning %s, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestLoadAdvisor(t *testing.T) {
	cfg, err := LoadAdvisor(map[string]string{"ADVISOR_RELAY_URL": "https://relay.example/"})
	if err != nil {
		t.Fatalf("LoadAdvisor failed: %v", err)
	}
	want := &Advisor{
		RelayURL: "https://relay.example/",
		Catalog:  "http://localhost:8787/products.json",
		DBPath:   "./data/advisor.db",
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Fatalf("unexpected config (-want +got):\n%s", diff)
	}

	if _, err := LoadAdvisor(map[string]string{}); err != nil {
		t.Fatalf("relay URL is optional at load time, got %v", err)
	}
}
