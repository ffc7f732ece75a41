package config

import (
	"github.com/redis/go-redis/v9"
)

// InitRedis trả về nil nếu REDIS_ADDR không được cấu hình.
func InitRedis(cfg *Config) *redis.Client {
	if cfg.RedisAddr == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
}
