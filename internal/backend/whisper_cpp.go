//go:build whisper

package backend

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/ggerganov/whisper.cpp/bindings/go/pkg/whisper"
)

type whisperModel struct {
	model   whisper.Model
	threads int
}

func loadWhisperModel(path string, threads int) (Model, error) {
	model, err := whisper.New(path)
	if err != nil {
		return nil, err
	}
	return &whisperModel{model: model, threads: threads}, nil
}

// Transcribe builds a fresh decoding context per call so nothing from the
// previous utterance survives.
func (w *whisperModel) Transcribe(ctx context.Context, samples []float32, language string, maxTokens int) (string, error) {
	wctx, err := w.model.NewContext()
	if err != nil {
		return "", err
	}

	if language == "" {
		language = "auto"
	}
	if err := wctx.SetLanguage(language); err != nil {
		return "", err
	}
	if w.threads > 0 {
		wctx.SetThreads(uint(w.threads))
	}
	wctx.SetMaxTokensPerSegment(uint(maxTokens))

	keepGoing := func() bool { return ctx.Err() == nil }
	if err := wctx.Process(samples, keepGoing, nil, nil); err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var sb strings.Builder
	for {
		segment, err := wctx.NextSegment()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", err
		}
		sb.WriteString(segment.Text)
	}
	return strings.TrimSpace(sb.String()), nil
}

func (w *whisperModel) Close() error {
	return w.model.Close()
}
