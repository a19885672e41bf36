package backend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// MaxOutputTokens caps generation per segment.
const MaxOutputTokens = 448

// Model is an in-process speech model. Implementations decode greedily and
// keep no per-call state once Transcribe returns.
type Model interface {
	Transcribe(ctx context.Context, samples []float32, language string, maxTokens int) (string, error)
	Close() error
}

type ModelLoader func(path string, threads int) (Model, error)

type LocalConfig struct {
	ModelPath string
	CacheDir  string
	ModelName string
	Threads   int
}

// ResolveWeights returns the model file to load: the explicit path when
// set, otherwise ggml-<name>.bin inside the cache directory.
func (c LocalConfig) ResolveWeights() (string, bool) {
	candidates := []string{c.ModelPath}
	if c.ModelPath == "" && c.CacheDir != "" && c.ModelName != "" {
		candidates = []string{
			filepath.Join(c.CacheDir, "ggml-"+c.ModelName+".bin"),
			filepath.Join(c.CacheDir, c.ModelName+".bin"),
		}
	}
	for _, path := range candidates {
		if path == "" {
			continue
		}
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, true
		}
	}
	return "", false
}

// Local runs a model loaded once at construction. Calls are serialized:
// the model is not safe for concurrent inference.
type Local struct {
	mu     sync.Mutex
	model  Model
	path   string
	logger *slog.Logger
}

func NewLocal(path string, threads int, load ModelLoader, logger *slog.Logger) (*Local, error) {
	if load == nil {
		load = loadWhisperModel
	}
	logger = logger.With("backend", NameLocal)

	start := time.Now()
	model, err := load(path, threads)
	if err != nil {
		return nil, fmt.Errorf("%w: load model %s: %v", ErrBackendUnavailable, path, err)
	}
	logger.Info("local model loaded", "path", path, "threads", threads, "elapsed", time.Since(start))

	return &Local{model: model, path: path, logger: logger}, nil
}

func (l *Local) Name() string    { return NameLocal }
func (l *Local) NeedsFile() bool { return false }

func (l *Local) Transcribe(ctx context.Context, in Audio, language string) (Transcript, error) {
	if in.Buffer == nil || len(in.Buffer.Samples) == 0 {
		return Transcript{}, &Failure{
			Kind:     KindInference,
			Provider: NameLocal,
			Err:      errors.New("audio could not be decoded for the local model"),
		}
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.model == nil {
		return Transcript{}, &Failure{Kind: KindInference, Provider: NameLocal, Err: errors.New("model released")}
	}

	text, err := l.model.Transcribe(ctx, in.Buffer.Samples, language, MaxOutputTokens)
	if err != nil {
		return Transcript{}, &Failure{Kind: KindInference, Provider: NameLocal, Err: err}
	}
	return Transcript{Text: text}, nil
}

func (l *Local) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.model == nil {
		return nil
	}
	err := l.model.Close()
	l.model = nil
	l.logger.Info("local model released", "path", l.path)
	return err
}
