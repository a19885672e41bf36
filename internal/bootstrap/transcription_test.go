package bootstrap

import (
	"testing"

	"github.com/eleven-am/whisper-gateway/internal/backend"
)

func TestModelFor(t *testing.T) {
	base := Config{
		HFURL:        backend.DefaultRemoteURL,
		OpenAIModel:  "whisper-1",
		WhisperModel: "small",
	}

	tests := []struct {
		name    string
		backend string
		mutate  func(*Config)
		want    string
	}{
		{"remote default", backend.NameRemote, nil, "openai/whisper-small"},
		{"remote custom url", backend.NameRemote, func(c *Config) { c.HFURL = "https://stt.internal/v1" }, "https://stt.internal/v1"},
		{"openai", backend.NameOpenAI, nil, "whisper-1"},
		{"openai model changed", backend.NameOpenAI, func(c *Config) { c.OpenAIModel = "gpt-4o-transcribe" }, "gpt-4o-transcribe"},
		{"local by name", backend.NameLocal, nil, "whisper.cpp small"},
		{"local by path", backend.NameLocal, func(c *Config) { c.WhisperModelPath = "/models/ggml-large-v3.bin" }, "whisper.cpp /models/ggml-large-v3.bin"},
		{"fallback", backend.NameFallback, nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			if tt.mutate != nil {
				tt.mutate(&cfg)
			}
			if got := ModelFor(tt.backend, &cfg); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestModelLabel(t *testing.T) {
	cfg := &Config{Backend: backend.NameFallback, HFURL: backend.DefaultRemoteURL, WhisperModel: "base"}
	if got := modelLabel(cfg); got != "openai/whisper-base" {
		t.Errorf("expected nominal model for fallback, got %q", got)
	}
	cfg.Backend = backend.ModeAuto
	if got := modelLabel(cfg); got != "openai/whisper-base" {
		t.Errorf("expected nominal model for auto, got %q", got)
	}
}
