package bootstrap

import (
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"gorm.io/gorm"

	"github.com/eleven-am/whisper-gateway/internal/cache"
	"github.com/eleven-am/whisper-gateway/internal/history"
)

func ProvideCacheStore(redisClient *redis.Client, cfg *Config) *cache.Store {
	if redisClient == nil {
		return nil
	}
	return cache.NewStore(redisClient, cfg.CacheTTL)
}

func ProvideHistoryStore(db *gorm.DB) *history.Store {
	if db == nil {
		return nil
	}
	return history.NewStore(db)
}

func RunMigrations(historyStore *history.Store) error {
	if historyStore == nil {
		return nil
	}
	return historyStore.Migrate()
}

var StoresModule = fx.Options(
	fx.Provide(
		ProvideCacheStore,
		ProvideHistoryStore,
	),
	fx.Invoke(RunMigrations),
)
