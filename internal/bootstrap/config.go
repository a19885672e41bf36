package bootstrap

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/eleven-am/whisper-gateway/internal/backend"
)

type Config struct {
	Port     int    `validate:"min=1,max=65535"`
	GRPCAddr string `validate:"omitempty,hostname_port"`
	LogLevel string `validate:"oneof=debug info warn error"`

	Backend string `validate:"oneof=auto remote openai local fallback"`

	HFAPIKey      string
	HFURL         string        `validate:"required,url"`
	RemoteTimeout time.Duration `validate:"gt=0"`

	OpenAIAPIKey  string
	OpenAIBaseURL string `validate:"omitempty,url"`
	OpenAIModel   string `validate:"required"`

	WhisperModelPath string
	ModelCacheDir    string
	WhisperModel     string `validate:"required"`
	WhisperThreads   int    `validate:"min=0"`

	TempDir        string
	MaxUploadBytes int64 `validate:"gt=0"`
	MaxBatchItems  int   `validate:"gt=0"`

	RedisAddr     string `validate:"omitempty,hostname_port"`
	RedisPassword string
	RedisDB       int           `validate:"min=0"`
	CacheTTL      time.Duration `validate:"gte=0"`

	DatabaseDSN string

	CORSOrigins []string `validate:"min=1"`
}

// LoadConfig reads configuration from the environment. A .env file in the
// working directory is loaded first when present; real environment
// variables win.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{
		Port:     getEnvInt("PORT", 8000),
		GRPCAddr: getEnv("GRPC_ADDR", ""),
		LogLevel: strings.ToLower(getEnv("LOG_LEVEL", "info")),

		Backend: strings.ToLower(getEnv("STT_BACKEND", backend.ModeAuto)),

		HFAPIKey:      getEnv("HF_API_KEY", getEnv("HUGGINGFACE_API_KEY", "")),
		HFURL:         getEnv("HF_INFERENCE_URL", backend.DefaultRemoteURL),
		RemoteTimeout: getEnvDuration("REMOTE_TIMEOUT", backend.DefaultRemoteTimeout),

		OpenAIAPIKey:  getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL: getEnv("OPENAI_BASE_URL", ""),
		OpenAIModel:   getEnv("OPENAI_MODEL", "whisper-1"),

		WhisperModelPath: getEnv("WHISPER_MODEL_PATH", ""),
		ModelCacheDir:    getEnv("MODEL_CACHE_DIR", getEnv("TRANSFORMERS_CACHE", "/tmp/model_cache")),
		WhisperModel:     getEnv("WHISPER_MODEL", "small"),
		WhisperThreads:   getEnvInt("WHISPER_THREADS", 0),

		TempDir:        getEnv("TEMP_DIR", ""),
		MaxUploadBytes: int64(getEnvInt("MAX_UPLOAD_BYTES", 25*1024*1024)),
		MaxBatchItems:  getEnvInt("MAX_BATCH_ITEMS", 5),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),
		CacheTTL:      getEnvDuration("CACHE_TTL", 24*time.Hour),

		DatabaseDSN: getEnv("DATABASE_DSN", ""),

		CORSOrigins: splitList(getEnv("CORS_ORIGINS", "*")),
	}

	if err := validator.New(validator.WithRequiredStructEnabled()).Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (c *Config) ServerAddr() string {
	return ":" + strconv.Itoa(c.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

// getEnvDuration accepts Go durations ("90s") or whole seconds ("90").
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}

func splitList(value string) []string {
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
