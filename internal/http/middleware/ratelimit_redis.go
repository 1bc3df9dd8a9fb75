// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file implements a fixed-window limiter backed by Redis so that every
// instance behind a load balancer draws from the same budget. Each window is
// one key ("<prefix>:<caller>:<window-start>") incremented per request and
// expiring with the window. When Redis is unreachable the limiter lets the
// request through and logs, so an outage of the cache never takes the API
// down with it.
package middleware

import (
	"context"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// RedisRateLimiter allows Limit requests per Window for each caller key.
type RedisRateLimiter struct {
	client *redis.Client
	limit  int64
	window time.Duration
	prefix string
	keyFn  KeyFunc

	now func() time.Time
}

// NewRedisRateLimiter derives a per-window limit from a token-bucket
// configuration (rps sustained, burst on top) so both limiters accept about
// the same traffic: limit = rps*window + burst.
func NewRedisRateLimiter(client *redis.Client, rps float64, burst int, keyFn KeyFunc) *RedisRateLimiter {
	window := time.Minute
	limit := int64(rps*window.Seconds()) + int64(burst)
	if limit < 1 {
		limit = 1
	}
	return &RedisRateLimiter{
		client: client,
		limit:  limit,
		window: window,
		prefix: "trademart:rl",
		keyFn:  keyFn,
		now:    time.Now,
	}
}

// allow increments the caller's counter for the current window.
func (rl *RedisRateLimiter) allow(ctx context.Context, caller string) (bool, time.Duration, error) {
	now := rl.now()
	start := now.Truncate(rl.window)
	key := rl.prefix + ":" + caller + ":" + strconv.FormatInt(start.Unix(), 10)

	// INCR and EXPIRE go out in one MULTI so a counter never outlives its window.
	var incr *redis.IntCmd
	_, err := rl.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		pipe.Expire(ctx, key, rl.window)
		return nil
	})
	if err != nil {
		return true, 0, err
	}
	n := incr.Val()
	return n <= rl.limit, start.Add(rl.window).Sub(now), nil
}

// Handler returns the limiting middleware.
func (rl *RedisRateLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if IsRateBypass(c) {
			c.Next()
			return
		}
		ok, retry, err := rl.allow(c.Request.Context(), rl.keyFn(c))
		if err != nil {
			LoggerFrom(c).Warn().Err(err).Msg("redis rate limiter unavailable; allowing request")
		}
		if ok {
			c.Next()
			return
		}
		rejectRate(c, retry)
	}
}
