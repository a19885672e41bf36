package bootstrap

import (
	"log/slog"
	"os"

	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.uber.org/fx"

	"github.com/eleven-am/whisper-gateway/internal/history"
	"github.com/eleven-am/whisper-gateway/internal/transcription"
)

type HandlerParams struct {
	fx.In

	TranscriptionHandler *transcription.Handler
	HistoryHandler       *history.Handler `optional:"true"`
}

func RegisterRoutes(e *echo.Echo, params HandlerParams) {
	params.TranscriptionHandler.RegisterRoutes(e.Group(""))
	if params.HistoryHandler != nil {
		params.HistoryHandler.RegisterRoutes(e.Group("/history"))
	}

	e.GET("/swagger/*", echoSwagger.WrapHandler)
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func ProvideLogger(cfg *Config) *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}))
}

var HandlersModule = fx.Options(
	fx.Provide(ProvideLogger),
	fx.Invoke(RegisterRoutes),
)
