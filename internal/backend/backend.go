package backend

import (
	"context"
	"errors"
	"fmt"

	"github.com/eleven-am/whisper-gateway/internal/audio"
)

const (
	NameRemote   = "remote"
	NameOpenAI   = "openai"
	NameLocal    = "local"
	NameFallback = "fallback"
)

// ErrBackendUnavailable marks a backend that could not be constructed.
var ErrBackendUnavailable = errors.New("backend unavailable")

// Audio is what a backend transcribes. Buffer is the normalized signal and
// is nil when preprocessing degraded; Path always names a readable file.
type Audio struct {
	Path   string
	Buffer *audio.Buffer
}

type Transcript struct {
	Text string
	// Placeholder is set when Text describes the audio instead of transcribing it.
	Placeholder bool
}

// Backend turns audio into text. Backend-level faults come back as *Failure;
// any other error is a resource failure the caller must surface.
type Backend interface {
	Name() string
	// NeedsFile reports whether Audio.Path must hold the normalized audio.
	NeedsFile() bool
	Transcribe(ctx context.Context, in Audio, language string) (Transcript, error)
	Close() error
}

type Kind string

const (
	KindModelLoading Kind = "model_loading"
	KindRateLimited  Kind = "rate_limited"
	KindUpstream     Kind = "upstream_status"
	KindNetwork      Kind = "network"
	KindInference    Kind = "inference"
)

// Failure is a typed backend diagnostic. It becomes caller-visible text
// through Message.
type Failure struct {
	Kind     Kind
	Provider string
	Status   int
	Detail   string
	Err      error
}

func (f *Failure) Error() string {
	msg := fmt.Sprintf("%s: %s", f.Provider, f.Kind)
	if f.Status != 0 {
		msg += fmt.Sprintf(" (status %d)", f.Status)
	}
	if f.Detail != "" {
		msg += ": " + f.Detail
	}
	if f.Err != nil {
		msg += ": " + f.Err.Error()
	}
	return msg
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// Message renders the failure for end users. Retry guidance is localized
// for Vietnamese; everything else is English.
func (f *Failure) Message(language string) string {
	vi := language == "vi"
	switch f.Kind {
	case KindModelLoading:
		if vi {
			return "Model đang loading, vui lòng thử lại sau 30-60 giây"
		}
		return "Model is loading, please retry in 30-60 seconds"
	case KindRateLimited:
		if vi {
			return "Rate limit exceeded, vui lòng thử lại sau"
		}
		return "Rate limit exceeded, please retry later"
	case KindUpstream:
		msg := fmt.Sprintf("%s Error: %d", f.Provider, f.Status)
		if f.Detail != "" {
			msg += " - " + f.Detail
		}
		return msg
	case KindNetwork:
		return "Network error: " + f.cause()
	default:
		return "Transcription error: " + f.cause()
	}
}

func (f *Failure) cause() string {
	if f.Err != nil {
		return f.Err.Error()
	}
	return f.Detail
}

// AsFailure extracts a *Failure from err's chain.
func AsFailure(err error) (*Failure, bool) {
	var f *Failure
	if errors.As(err, &f) {
		return f, true
	}
	return nil, false
}
