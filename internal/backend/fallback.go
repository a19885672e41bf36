package backend

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/eleven-am/whisper-gateway/internal/audio"
)

// Fallback stands in when no real backend is configured. It never fails.
type Fallback struct {
	logger *slog.Logger
}

func NewFallback(logger *slog.Logger) *Fallback {
	return &Fallback{logger: logger.With("backend", NameFallback)}
}

func (f *Fallback) Name() string    { return NameFallback }
func (f *Fallback) NeedsFile() bool { return false }
func (f *Fallback) Close() error    { return nil }

func (f *Fallback) Transcribe(_ context.Context, in Audio, _ string) (Transcript, error) {
	info, err := audio.Inspect(in.Path)
	if err != nil {
		f.logger.Debug("could not inspect audio", "path", in.Path, "error", err)
		return Transcript{
			Text:        "[Fallback Service] Audio file processed, but transcription unavailable without a configured backend.",
			Placeholder: true,
		}, nil
	}

	return Transcript{
		Text: fmt.Sprintf(
			"[Fallback Service] Audio processed: %.2fs, %dHz. Transcription unavailable without API key. "+
				"Set HF_API_KEY or OPENAI_API_KEY, or point WHISPER_MODEL_PATH at local weights.",
			info.Duration.Seconds(), info.SampleRate,
		),
		Placeholder: true,
	}, nil
}
