package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	DefaultTTL = 24 * time.Hour
	keyPrefix  = "stt:result:"
)

// Store keeps finished transcription text in redis, keyed by backend, model,
// language and a digest of the uploaded audio.
type Store struct {
	redis *redis.Client
	ttl   time.Duration
}

func NewStore(redisClient *redis.Client, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{redis: redisClient, ttl: ttl}
}

// Key includes the model so a model change never serves stale text.
func (s *Store) Key(backend, model, language, digest string) string {
	if model == "" {
		model = "default"
	}
	if language == "" {
		language = "auto"
	}
	return keyPrefix + strings.Join([]string{backend, model, language, digest}, ":")
}

func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	text, err := s.redis.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return text, true, nil
}

func (s *Store) Set(ctx context.Context, key, text string) error {
	return s.redis.Set(ctx, key, text, s.ttl).Err()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.redis.Ping(ctx).Err()
}

// Digest hashes audio content for use in Key.
func Digest(r io.Reader) (string, error) {
	h := sha256.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
