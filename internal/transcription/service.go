package transcription

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/eleven-am/whisper-gateway/internal/audio"
	"github.com/eleven-am/whisper-gateway/internal/backend"
	"github.com/eleven-am/whisper-gateway/internal/cache"
	"github.com/eleven-am/whisper-gateway/internal/history"
)

const (
	DefaultMaxInputBytes = 25 * 1024 * 1024
	DefaultMaxBatchItems = 5
)

type Options struct {
	TempDir    string
	TargetRate int
	// Model labels the weights behind the backend and scopes cache entries.
	Model         string
	MaxInputBytes int64
	Cache         Cache
	Recorder      Recorder
}

// Service runs preprocessing, the backend call and cleanup for one
// backend chosen at construction.
type Service struct {
	backend       backend.Backend
	model         string
	pre           *audio.Preprocessor
	tempDir       string
	maxInputBytes int64
	cache         Cache
	recorder      Recorder
	logger        *slog.Logger
}

func NewService(b backend.Backend, opts Options, logger *slog.Logger) *Service {
	if opts.MaxInputBytes <= 0 {
		opts.MaxInputBytes = DefaultMaxInputBytes
	}
	return &Service{
		backend:       b,
		model:         opts.Model,
		pre:           audio.NewPreprocessor(opts.TargetRate, opts.TempDir, logger),
		tempDir:       opts.TempDir,
		maxInputBytes: opts.MaxInputBytes,
		cache:         opts.Cache,
		recorder:      opts.Recorder,
		logger:        logger.With("component", "transcription", "backend", b.Name()),
	}
}

func (s *Service) Backend() string {
	return s.backend.Name()
}

func (s *Service) Close() error {
	return s.backend.Close()
}

// Transcribe handles a single request. Backend faults are returned as
// diagnostic text in the Result; the error is reserved for inputs that
// cannot be staged and backend resource failures.
func (s *Service) Transcribe(ctx context.Context, req Request) (*Result, error) {
	path, release, err := s.stage(req.Input)
	if err != nil {
		return nil, err
	}
	defer release()

	return s.run(ctx, path, req)
}

// TranscribeBatch processes requests one after another in submission order.
// A batch larger than maxItems is rejected before any input is staged, and
// an input that cannot be staged fails the whole batch before any backend
// call. After that, item failures are recorded per item.
func (s *Service) TranscribeBatch(ctx context.Context, reqs []Request, maxItems int) ([]BatchItem, error) {
	if err := CheckBatchSize(len(reqs), maxItems); err != nil {
		return nil, err
	}

	var staged []string
	defer func() {
		for _, path := range staged {
			removeQuietly(path, s.logger)
		}
	}()

	paths := make([]string, len(reqs))
	for i, req := range reqs {
		path, owned, err := s.materialize(req.Input)
		if err != nil {
			return nil, fmt.Errorf("item %d (%s): %w", i, req.Filename, err)
		}
		if owned {
			staged = append(staged, path)
		}
		paths[i] = path
	}

	items := make([]BatchItem, 0, len(reqs))
	for i, req := range reqs {
		items = append(items, s.runItem(ctx, paths[i], req))
	}
	return items, nil
}

// CheckBatchSize reports ErrCapacityExceeded when n items exceed maxItems.
// A non-positive maxItems disables the check.
func CheckBatchSize(n, maxItems int) error {
	if maxItems > 0 && n > maxItems {
		return fmt.Errorf("%w: %d files submitted, at most %d allowed", ErrCapacityExceeded, n, maxItems)
	}
	return nil
}

func (s *Service) runItem(ctx context.Context, path string, req Request) (item BatchItem) {
	item.Filename = req.Filename
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("batch item panicked", "filename", req.Filename, "panic", r)
			item.Result = nil
			item.Err = fmt.Errorf("transcription failed: %v", r)
			item.Success = false
		}
	}()

	res, err := s.run(ctx, path, req)
	if err != nil {
		item.Err = err
		return item
	}
	item.Result = res
	item.Success = !res.Failed()
	return item
}

func (s *Service) run(ctx context.Context, path string, req Request) (*Result, error) {
	name := s.backend.Name()

	key := s.cacheKey(path, req.Language)
	if key != "" {
		if text, ok, err := s.cache.Get(ctx, key); err != nil {
			s.logger.Warn("cache lookup failed", "error", err)
		} else if ok {
			res := &Result{Text: text, Backend: name, Cached: true}
			s.record(ctx, req, res, inputSize(path))
			return res, nil
		}
	}

	prepared := s.pre.Prepare(path, s.backend.NeedsFile())
	defer func() {
		if err := prepared.Cleanup(); err != nil {
			s.logger.Warn("failed to remove processed audio", "error", err)
		}
	}()

	start := time.Now()
	transcript, err := s.backend.Transcribe(ctx, backend.Audio{Path: prepared.Path, Buffer: prepared.Buffer}, req.Language)
	elapsed := time.Since(start)

	res := &Result{
		Backend:     name,
		Elapsed:     elapsed,
		Degraded:    prepared.Degraded,
		Placeholder: transcript.Placeholder,
	}
	if err != nil {
		failure, ok := backend.AsFailure(err)
		if !ok {
			return nil, fmt.Errorf("transcribe with %s: %w", name, err)
		}
		res.Text = failure.Message(req.Language)
		res.FailureKind = failure.Kind
		s.logger.Warn("backend reported failure",
			"filename", req.Filename, "kind", failure.Kind, "error", failure, "elapsed", elapsed)
	} else {
		res.Text = transcript.Text
		s.logger.Info("transcription complete",
			"filename", req.Filename, "language", req.Language, "degraded", res.Degraded, "elapsed", elapsed)
		if key != "" && !res.Placeholder {
			if err := s.cache.Set(ctx, key, res.Text); err != nil {
				s.logger.Warn("cache store failed", "error", err)
			}
		}
	}

	s.record(ctx, req, res, inputSize(path))
	return res, nil
}

// stage makes the input available as a file and returns its release func.
func (s *Service) stage(in Input) (string, func(), error) {
	path, owned, err := s.materialize(in)
	if err != nil {
		return "", nil, err
	}
	if !owned {
		return path, func() {}, nil
	}
	return path, func() { removeQuietly(path, s.logger) }, nil
}

func (s *Service) materialize(in Input) (string, bool, error) {
	if in.Path != "" {
		return in.Path, false, nil
	}
	if len(in.Data) == 0 {
		return "", false, ErrEmptyInput
	}
	if int64(len(in.Data)) > s.maxInputBytes {
		return "", false, fmt.Errorf("%w: input is %d bytes, limit is %d", ErrCapacityExceeded, len(in.Data), s.maxInputBytes)
	}

	f, err := os.CreateTemp(s.tempDir, "stt-upload-*"+normalizeExt(in.Ext))
	if err != nil {
		return "", false, fmt.Errorf("create temp audio: %w", err)
	}
	name := f.Name()
	if _, err := f.Write(in.Data); err != nil {
		f.Close()
		os.Remove(name)
		return "", false, fmt.Errorf("write temp audio: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(name)
		return "", false, fmt.Errorf("close temp audio: %w", err)
	}
	return name, true, nil
}

func (s *Service) cacheKey(path, language string) string {
	if s.cache == nil {
		return ""
	}
	f, err := os.Open(path)
	if err != nil {
		return ""
	}
	defer f.Close()

	digest, err := cache.Digest(f)
	if err != nil {
		s.logger.Warn("could not hash audio for cache", "error", err)
		return ""
	}
	return s.cache.Key(s.backend.Name(), s.model, language, digest)
}

func (s *Service) record(ctx context.Context, req Request, res *Result, size int64) {
	if s.recorder == nil {
		return
	}
	entry := &history.Entry{
		Filename:    req.Filename,
		Language:    req.Language,
		Backend:     res.Backend,
		Text:        res.Text,
		FailureKind: string(res.FailureKind),
		Degraded:    res.Degraded,
		Cached:      res.Cached,
		InputBytes:  size,
		ElapsedMs:   res.Elapsed.Milliseconds(),
	}
	if err := s.recorder.Record(ctx, entry); err != nil {
		s.logger.Warn("failed to record transcription", "error", err)
	}
}

func inputSize(path string) int64 {
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return info.Size()
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext == "" {
		return ".wav"
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	if strings.ContainsAny(ext, `/\*`) {
		return ".wav"
	}
	return ext
}

func removeQuietly(path string, logger *slog.Logger) {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.Warn("failed to remove temp audio", "path", path, "error", err)
	}
}
