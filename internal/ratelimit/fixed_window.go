// Package ratelimit keeps per-user and per-address request quotas in Redis,
// counted in fixed one-window buckets so every API instance sees the same
// counts.
package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// incrWindow bumps a bucket and arms its expiry on the first hit.
var incrWindow = redis.NewScript(`
local hits = redis.call("INCR", KEYS[1])
if hits == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return hits
`)

const (
	defaultPrefix   = "companion:ratelimit"
	defaultWindow   = time.Minute
	callTimeout     = 2 * time.Second
	ipQuotaFactor   = 5
	bucketUser      = "user"
	bucketAddress   = "ip"
	anonymousBucket = "unknown"
)

// Options configures a Limiter. PerIP defaults to five times PerUser and
// Window to one minute.
type Options struct {
	Addr     string
	Password string
	Prefix   string
	Window   time.Duration
	PerUser  int
	PerIP    int
}

// Limiter answers quota questions for the API middleware. Any Redis error
// counts as over quota.
type Limiter struct {
	opts  Options
	rdb   *redis.Client
	clock func() time.Time
}

// New validates opts and connects lazily to Redis.
func New(opts Options) (*Limiter, error) {
	opts.Addr = strings.TrimSpace(opts.Addr)
	if opts.Addr == "" {
		return nil, errors.New("ratelimit: redis address is required")
	}
	if opts.PerUser <= 0 {
		return nil, errors.New("ratelimit: per-user quota must be positive")
	}
	if opts.PerIP <= 0 {
		opts.PerIP = opts.PerUser * ipQuotaFactor
	}
	if opts.Window <= 0 {
		opts.Window = defaultWindow
	}
	if opts.Prefix = strings.TrimSpace(opts.Prefix); opts.Prefix == "" {
		opts.Prefix = defaultPrefix
	}
	return &Limiter{
		opts:  opts,
		rdb:   redis.NewClient(&redis.Options{Addr: opts.Addr, Password: opts.Password}),
		clock: time.Now,
	}, nil
}

// AllowUser spends one request of the per-user quota of key.
func (l *Limiter) AllowUser(key string) bool {
	if l == nil {
		return false
	}
	return l.take(bucketUser, key, l.opts.PerUser)
}

// AllowIP spends one request of the per-address quota of key.
func (l *Limiter) AllowIP(key string) bool {
	if l == nil {
		return false
	}
	return l.take(bucketAddress, key, l.opts.PerIP)
}

func (l *Limiter) take(bucket, key string, quota int) bool {
	if key = strings.TrimSpace(key); key == "" {
		key = anonymousBucket
	}
	windowMs := l.opts.Window.Milliseconds()
	slot := l.clock().UnixMilli() / windowMs
	redisKey := fmt.Sprintf("%s:%s:%s:%d", l.opts.Prefix, bucket, key, slot)

	ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
	defer cancel()
	hits, err := incrWindow.Run(ctx, l.rdb, []string{redisKey}, windowMs).Int64()
	if err != nil {
		return false
	}
	return hits <= int64(quota)
}

// RetryAfter is how long until the buckets roll over.
func (l *Limiter) RetryAfter() time.Duration {
	if l == nil {
		return 0
	}
	windowMs := l.opts.Window.Milliseconds()
	into := l.clock().UnixMilli() % windowMs
	return time.Duration(windowMs-into) * time.Millisecond
}

// Ping is the health check of the Redis backend.
func (l *Limiter) Ping(ctx context.Context) error {
	if l == nil {
		return errors.New("ratelimit: not configured")
	}
	return l.rdb.Ping(ctx).Err()
}

func (l *Limiter) Close() error {
	if l == nil {
		return nil
	}
	return l.rdb.Close()
}
