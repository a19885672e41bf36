// Command transcribe runs audio files through the configured backend
// without starting the HTTP server.
//
//	transcribe -language vi meeting.wav clip.mp3
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/eleven-am/whisper-gateway/internal/audio"
	"github.com/eleven-am/whisper-gateway/internal/backend"
	"github.com/eleven-am/whisper-gateway/internal/bootstrap"
	"github.com/eleven-am/whisper-gateway/internal/transcription"
)

type backendFactory func(ctx context.Context, cfg *bootstrap.Config, logger *slog.Logger) (backend.Backend, error)

func selectBackend(ctx context.Context, cfg *bootstrap.Config, logger *slog.Logger) (backend.Backend, error) {
	return backend.Select(ctx, bootstrap.ProvideBackendConfig(cfg), logger)
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr, selectBackend))
}

// run returns the process exit code. The service is closed on every path
// once a backend exists, so local weights are released before exit.
func run(args []string, stdout, stderr io.Writer, newBackend backendFactory) int {
	fs := flag.NewFlagSet("transcribe", flag.ContinueOnError)
	fs.SetOutput(stderr)
	language := fs.String("language", "", "language code, empty to auto-detect")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() == 0 {
		fmt.Fprintln(stderr, "usage: transcribe [-language code] file...")
		return 2
	}

	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		fmt.Fprintln(stderr, "load config:", err)
		return 1
	}
	logger := bootstrap.ProvideLogger(cfg)
	ctx := context.Background()

	b, err := newBackend(ctx, cfg, logger)
	if err != nil {
		fmt.Fprintln(stderr, "select backend:", err)
		return 1
	}

	svc := transcription.NewService(b, transcription.Options{
		TempDir:       cfg.TempDir,
		TargetRate:    audio.TargetSampleRate,
		Model:         bootstrap.ModelFor(b.Name(), cfg),
		MaxInputBytes: cfg.MaxUploadBytes,
	}, logger)
	defer func() {
		if err := svc.Close(); err != nil {
			fmt.Fprintln(stderr, "release backend:", err)
		}
	}()

	lang := transcription.NormalizeLanguage(*language)
	reqs := make([]transcription.Request, 0, fs.NArg())
	for _, path := range fs.Args() {
		reqs = append(reqs, transcription.Request{
			Input:    transcription.FromPath(path),
			Language: lang,
			Filename: filepath.Base(path),
		})
	}

	items, err := svc.TranscribeBatch(ctx, reqs, cfg.MaxBatchItems)
	if err != nil {
		fmt.Fprintln(stderr, "transcribe:", err)
		return 1
	}

	code := 0
	fmt.Fprintln(stdout, "Backend:", svc.Backend())
	for _, item := range items {
		status := "ok"
		if !item.Success {
			status = "failed"
			code = 1
		}
		fmt.Fprintf(stdout, "%s [%s]: %s\n", item.Filename, status, item.Message())
	}
	return code
}
