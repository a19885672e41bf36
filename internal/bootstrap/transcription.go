package bootstrap

import (
	"context"
	"log/slog"

	"go.uber.org/fx"

	"github.com/eleven-am/whisper-gateway/internal/audio"
	"github.com/eleven-am/whisper-gateway/internal/backend"
	"github.com/eleven-am/whisper-gateway/internal/cache"
	"github.com/eleven-am/whisper-gateway/internal/history"
	"github.com/eleven-am/whisper-gateway/internal/transcription"
)

func ProvideBackendConfig(cfg *Config) backend.Config {
	return backend.Config{
		Mode: cfg.Backend,
		Remote: backend.RemoteConfig{
			URL:     cfg.HFURL,
			APIKey:  cfg.HFAPIKey,
			Timeout: cfg.RemoteTimeout,
		},
		OpenAI: backend.OpenAIConfig{
			APIKey:  cfg.OpenAIAPIKey,
			BaseURL: cfg.OpenAIBaseURL,
			Model:   cfg.OpenAIModel,
			Timeout: cfg.RemoteTimeout,
		},
		Local: backend.LocalConfig{
			ModelPath: cfg.WhisperModelPath,
			CacheDir:  cfg.ModelCacheDir,
			ModelName: cfg.WhisperModel,
			Threads:   cfg.WhisperThreads,
		},
	}
}

type RegistryParams struct {
	fx.In

	Config        *Config
	BackendConfig backend.Config
	Cache         *cache.Store   `optional:"true"`
	History       *history.Store `optional:"true"`
	Logger        *slog.Logger
}

// ProvideRegistry builds the registry whose factory selects the backend.
// Nil stores stay out of the service options so the service sees them as
// absent.
func ProvideRegistry(p RegistryParams) *transcription.Registry {
	opts := transcription.Options{
		TempDir:       p.Config.TempDir,
		TargetRate:    audio.TargetSampleRate,
		MaxInputBytes: p.Config.MaxUploadBytes,
	}
	if p.Cache != nil {
		opts.Cache = p.Cache
	}
	if p.History != nil {
		opts.Recorder = p.History
	}

	factory := func(ctx context.Context) (*transcription.Service, error) {
		b, err := backend.Select(ctx, p.BackendConfig, p.Logger)
		if err != nil {
			return nil, err
		}
		svcOpts := opts
		svcOpts.Model = ModelFor(b.Name(), p.Config)
		return transcription.NewService(b, svcOpts, p.Logger), nil
	}
	return transcription.NewRegistry(factory, p.Logger)
}

func ProvideTranscriptionHandler(registry *transcription.Registry, cfg *Config, logger *slog.Logger) *transcription.Handler {
	return transcription.NewHandler(registry, transcription.HandlerConfig{
		MaxUploadBytes: cfg.MaxUploadBytes,
		MaxBatchItems:  cfg.MaxBatchItems,
		Model:          modelLabel(cfg),
	}, logger)
}

func ProvideHistoryHandler(store *history.Store, logger *slog.Logger) *history.Handler {
	if store == nil {
		return nil
	}
	return history.NewHandler(store, logger.With("handler", "history"))
}

// StartRegistry loads the backend in the background at startup and
// releases it on shutdown.
func StartRegistry(lc fx.Lifecycle, registry *transcription.Registry) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			registry.Start(ctx)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return registry.Teardown()
		},
	})
}

func modelLabel(cfg *Config) string {
	if m := ModelFor(cfg.Backend, cfg); m != "" {
		return m
	}
	return "openai/whisper-" + cfg.WhisperModel
}

// ModelFor names the model a backend of the given kind runs under cfg.
func ModelFor(name string, cfg *Config) string {
	switch name {
	case backend.NameOpenAI:
		return cfg.OpenAIModel
	case backend.NameLocal:
		if cfg.WhisperModelPath != "" {
			return "whisper.cpp " + cfg.WhisperModelPath
		}
		return "whisper.cpp " + cfg.WhisperModel
	case backend.NameRemote:
		if cfg.HFURL != backend.DefaultRemoteURL {
			return cfg.HFURL
		}
	case backend.NameFallback:
		return ""
	}
	return "openai/whisper-" + cfg.WhisperModel
}

var TranscriptionModule = fx.Options(
	fx.Provide(
		ProvideBackendConfig,
		ProvideRegistry,
		ProvideTranscriptionHandler,
		ProvideHistoryHandler,
	),
	fx.Invoke(StartRegistry),
)
