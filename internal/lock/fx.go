package lock

import (
	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/dairypro/internal/config"
	"go.uber.org/fx"
)

var Module = fx.Module("lock",
	fx.Provide(provideRedisClient),
	fx.Provide(NewLocker),
)

// provideRedisClient returns nil when no redis address is configured;
// callers treat a nil Locker as single-replica mode.
func provideRedisClient(cfg config.Config) *redis.Client {
	if cfg.RedisAddr == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
}
