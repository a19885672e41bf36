package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/eleven-am/whisper-gateway/internal/audio"
	"golang.org/x/oauth2"
)

const (
	DefaultRemoteURL     = "https://api-inference.huggingface.co/models/openai/whisper-small"
	DefaultRemoteTimeout = 60 * time.Second

	remoteProvider   = "HF API"
	maxResponseBytes = 1 << 20
	maxDetailLength  = 200
	noTranscription  = "No transcription available"
)

type RemoteConfig struct {
	URL     string
	APIKey  string
	Timeout time.Duration
}

// Remote posts audio to a hosted inference endpoint.
type Remote struct {
	url     string
	timeout time.Duration
	client  *http.Client
	logger  *slog.Logger
}

func NewRemote(cfg RemoteConfig, logger *slog.Logger) *Remote {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultRemoteTimeout
	}

	client := &http.Client{}
	if cfg.APIKey != "" {
		client = oauth2.NewClient(context.Background(), oauth2.StaticTokenSource(&oauth2.Token{
			AccessToken: cfg.APIKey,
			TokenType:   "Bearer",
		}))
	}

	return &Remote{
		url:     cfg.URL,
		timeout: timeout,
		client:  client,
		logger:  logger.With("backend", NameRemote),
	}
}

func (r *Remote) Name() string    { return NameRemote }
func (r *Remote) NeedsFile() bool { return false }
func (r *Remote) Close() error    { return nil }

func (r *Remote) Transcribe(ctx context.Context, in Audio, language string) (Transcript, error) {
	body, contentType, err := payload(in)
	if err != nil {
		return Transcript{}, &Failure{Kind: KindInference, Provider: remoteProvider, Err: err}
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewReader(body))
	if err != nil {
		return Transcript{}, &Failure{Kind: KindInference, Provider: remoteProvider, Err: err}
	}
	req.Header.Set("Content-Type", contentType)
	if language != "" {
		q := req.URL.Query()
		q.Set("language", language)
		req.URL.RawQuery = q.Encode()
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return Transcript{}, &Failure{Kind: KindNetwork, Provider: remoteProvider, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return Transcript{}, &Failure{Kind: KindNetwork, Provider: remoteProvider, Err: err}
	}

	switch resp.StatusCode {
	case http.StatusOK:
		return Transcript{Text: parseText(raw)}, nil
	case http.StatusServiceUnavailable:
		return Transcript{}, &Failure{Kind: KindModelLoading, Provider: remoteProvider, Status: resp.StatusCode}
	case http.StatusTooManyRequests:
		return Transcript{}, &Failure{Kind: KindRateLimited, Provider: remoteProvider, Status: resp.StatusCode}
	default:
		r.logger.Warn("inference endpoint error", "status", resp.StatusCode)
		return Transcript{}, &Failure{
			Kind:     KindUpstream,
			Provider: remoteProvider,
			Status:   resp.StatusCode,
			Detail:   errorDetail(raw),
		}
	}
}

// payload prefers the normalized buffer; a degraded input is sent as the
// raw file.
func payload(in Audio) ([]byte, string, error) {
	if in.Buffer != nil {
		data, err := audio.EncodeWAV(in.Buffer)
		if err != nil {
			return nil, "", err
		}
		return data, "audio/wav", nil
	}

	data, err := os.ReadFile(in.Path)
	if err != nil {
		return nil, "", fmt.Errorf("read audio: %w", err)
	}
	contentType := mime.TypeByExtension(filepath.Ext(in.Path))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return data, contentType, nil
}

func parseText(raw []byte) string {
	var obj map[string]any
	if err := json.Unmarshal(raw, &obj); err == nil {
		return textField(obj)
	}

	var list []map[string]any
	if err := json.Unmarshal(raw, &list); err == nil && len(list) > 0 {
		return textField(list[0])
	}

	return strings.TrimSpace(string(raw))
}

func textField(obj map[string]any) string {
	if text, ok := obj["text"].(string); ok {
		return text
	}
	return noTranscription
}

func errorDetail(raw []byte) string {
	var body map[string]any
	if err := json.Unmarshal(raw, &body); err == nil {
		if e, ok := body["error"]; ok {
			return fmt.Sprint(e)
		}
		return ""
	}
	detail := string(raw)
	if len(detail) > maxDetailLength {
		detail = detail[:maxDetailLength]
	}
	return detail
}
