package transcription

import (
	"context"
	"errors"
	"time"

	"github.com/eleven-am/whisper-gateway/internal/backend"
	"github.com/eleven-am/whisper-gateway/internal/history"
)

var (
	ErrCapacityExceeded = errors.New("capacity exceeded")
	ErrNotReady         = errors.New("transcription service not ready")
	ErrEmptyInput       = errors.New("empty audio input")
)

// Input is either a caller-owned file or raw bytes the service stages to a
// temporary file of its own.
type Input struct {
	Path string
	Data []byte
	// Ext is the best-guess extension for Data, such as ".mp3".
	Ext string
}

func FromPath(path string) Input {
	return Input{Path: path}
}

func FromBytes(data []byte, ext string) Input {
	return Input{Data: data, Ext: ext}
}

type Request struct {
	Input Input
	// Language is a short code such as "vi"; empty means auto-detect.
	Language string
	Filename string
}

// Result always carries caller-visible text. When FailureKind is set the
// text is a diagnostic from the backend, not a transcription.
type Result struct {
	Text        string
	Backend     string
	Elapsed     time.Duration
	FailureKind backend.Kind
	Degraded    bool
	Placeholder bool
	Cached      bool
}

func (r *Result) Failed() bool {
	return r.FailureKind != ""
}

// BatchItem pairs a request with its outcome. Err is set when the item
// could not be transcribed at all.
type BatchItem struct {
	Filename string
	Result   *Result
	Err      error
	Success  bool
}

// Message is what callers display for the item.
func (b BatchItem) Message() string {
	if b.Err != nil {
		return b.Err.Error()
	}
	if b.Result != nil {
		return b.Result.Text
	}
	return ""
}

type Cache interface {
	Key(backend, model, language, digest string) string
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, text string) error
}

type Recorder interface {
	Record(ctx context.Context, entry *history.Entry) error
}
