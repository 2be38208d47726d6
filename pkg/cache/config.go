package cache

import "time"

// All cache keys share one prefix so a single UNLINK pattern can clear the
// namespace during deploys.
const keyPrefix = "atlas"

// RedisOption configures the Redis layer.
type RedisOption func(*redisConfig)

type redisConfig struct {
	host         string
	port         int
	password     string
	db           int
	poolSize     int
	poolTimeout  time.Duration
	minIdleConns int
}

func WithRedisHost(host string) RedisOption {
	return func(c *redisConfig) { c.host = host }
}

func WithRedisPort(port int) RedisOption {
	return func(c *redisConfig) { c.port = port }
}

func WithRedisPassword(password string) RedisOption {
	return func(c *redisConfig) { c.password = password }
}

func WithRedisDB(db int) RedisOption {
	return func(c *redisConfig) { c.db = db }
}

// WithRedisPool tunes the connection pool.
func WithRedisPool(poolSize, minIdleConns int, timeout time.Duration) RedisOption {
	return func(c *redisConfig) {
		c.poolSize = poolSize
		c.minIdleConns = minIdleConns
		c.poolTimeout = timeout
	}
}
