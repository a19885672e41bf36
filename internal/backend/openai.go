package backend

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/sashabaranov/go-openai"
)

const (
	DefaultOpenAIModel = openai.Whisper1
	openAIProvider     = "OpenAI API"
)

type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// OpenAI calls an OpenAI-compatible transcription endpoint. The client
// uploads from a path, so it asks for the normalized file.
type OpenAI struct {
	client *openai.Client
	model  string
	logger *slog.Logger
}

func NewOpenAI(cfg OpenAIConfig, logger *slog.Logger) *OpenAI {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultRemoteTimeout
	}
	clientCfg.HTTPClient = &http.Client{Timeout: timeout}

	model := cfg.Model
	if model == "" {
		model = DefaultOpenAIModel
	}

	return &OpenAI{
		client: openai.NewClientWithConfig(clientCfg),
		model:  model,
		logger: logger.With("backend", NameOpenAI),
	}
}

func (o *OpenAI) Name() string    { return NameOpenAI }
func (o *OpenAI) NeedsFile() bool { return true }
func (o *OpenAI) Close() error    { return nil }

func (o *OpenAI) Transcribe(ctx context.Context, in Audio, language string) (Transcript, error) {
	resp, err := o.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    o.model,
		FilePath: in.Path,
		Language: language,
		Format:   openai.AudioResponseFormatJSON,
	})
	if err != nil {
		return Transcript{}, o.classify(err)
	}
	return Transcript{Text: resp.Text}, nil
}

func (o *OpenAI) classify(err error) *Failure {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return statusFailure(apiErr.HTTPStatusCode, apiErr.Message)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode != 0 {
		return statusFailure(reqErr.HTTPStatusCode, "")
	}

	return &Failure{Kind: KindNetwork, Provider: openAIProvider, Err: err}
}

func statusFailure(status int, detail string) *Failure {
	switch status {
	case http.StatusServiceUnavailable:
		return &Failure{Kind: KindModelLoading, Provider: openAIProvider, Status: status}
	case http.StatusTooManyRequests:
		return &Failure{Kind: KindRateLimited, Provider: openAIProvider, Status: status}
	}
	return &Failure{Kind: KindUpstream, Provider: openAIProvider, Status: status, Detail: detail}
}
