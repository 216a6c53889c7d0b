package redis

import (
	"errors"

	"github.com/redis/go-redis/v9"
)

// Predefined errors
var (
	ErrNil            = redis.Nil // key does not exist
	ErrNotInitialized = errors.New("redis: client not initialized")
)

// IsNil reports whether err means the key does not exist
func IsNil(err error) bool {
	return errors.Is(err, redis.Nil)
}
