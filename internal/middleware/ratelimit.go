package middleware

import (
	"context"
	"fmt"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Varun5711/taskapi/internal/cache"
	"github.com/Varun5711/taskapi/internal/logger"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

const MsgTooManyRequests = "Too many requests from this IP, please try again later."

// Decision is the outcome of one rate limit check.
type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

type Limiter interface {
	Allow(ctx context.Context, key string) (Decision, error)
}

// RateLimit rejects clients that exceed limiter with 429. When the limiter
// itself fails the request is let through.
func RateLimit(limiter Limiter, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			d, err := limiter.Allow(r.Context(), getClientIP(r))
			if err != nil {
				log.Warn("Rate limiter unavailable, allowing request: %v", err)
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(d.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(d.ResetAt.Unix(), 10))

			if !d.Allowed {
				retry := int(math.Ceil(time.Until(d.ResetAt).Seconds()))
				if retry < 1 {
					retry = 1
				}
				w.Header().Set("Retry-After", strconv.Itoa(retry))
				writeError(w, http.StatusTooManyRequests, MsgTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RedisLimiter is a sliding-window log kept in one sorted set per client,
// so every API instance sharing the Redis sees the same counts.
type RedisLimiter struct {
	redis     *redis.Client
	limit     int
	window    time.Duration
	keyPrefix string
	now       func() time.Time
}

func NewRedisLimiter(redisClient *redis.Client, limit int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{
		redis:     redisClient,
		limit:     limit,
		window:    window,
		keyPrefix: "ratelimit:",
		now:       time.Now,
	}
}

func (rl *RedisLimiter) Allow(ctx context.Context, client string) (Decision, error) {
	now := rl.now()
	key := rl.keyPrefix + client
	windowStart := now.Add(-rl.window)
	member := fmt.Sprintf("%d-%s", now.UnixNano(), uuid.NewString())

	pipe := rl.redis.TxPipeline()
	pipe.ZRemRangeByScore(ctx, key, "0", strconv.FormatInt(windowStart.UnixNano(), 10))
	pipe.ZAdd(ctx, key, redis.Z{Score: float64(now.UnixNano()), Member: member})
	zcard := pipe.ZCard(ctx, key)
	pipe.PExpire(ctx, key, rl.window)

	if _, err := pipe.Exec(ctx); err != nil {
		return Decision{}, fmt.Errorf("rate limit pipeline: %w", err)
	}

	count := int(zcard.Val())
	if count <= rl.limit {
		return Decision{
			Allowed:   true,
			Limit:     rl.limit,
			Remaining: rl.limit - count,
			ResetAt:   now.Add(rl.window),
		}, nil
	}

	// rejected attempts do not occupy the window
	if err := rl.redis.ZRem(ctx, key, member).Err(); err != nil {
		return Decision{}, fmt.Errorf("rate limit rollback: %w", err)
	}

	resetAt := now.Add(rl.window)
	oldest, err := rl.redis.ZRangeWithScores(ctx, key, 0, 0).Result()
	if err == nil && len(oldest) > 0 {
		resetAt = time.Unix(0, int64(oldest[0].Score)).Add(rl.window)
	}

	return Decision{Allowed: false, Limit: rl.limit, Remaining: 0, ResetAt: resetAt}, nil
}

// LocalLimiter keeps a token bucket per client in process memory. Buckets
// refill continuously at limit per window; the least recently seen clients
// are dropped once maxClients is reached.
type LocalLimiter struct {
	limit    int
	interval time.Duration
	clients  *cache.LRU[*rate.Limiter]
	now      func() time.Time
}

func NewLocalLimiter(limit int, window time.Duration, maxClients int) *LocalLimiter {
	if limit < 1 {
		limit = 1
	}
	return &LocalLimiter{
		limit:    limit,
		interval: window / time.Duration(limit),
		clients:  cache.NewLRU[*rate.Limiter](maxClients),
		now:      time.Now,
	}
}

func (l *LocalLimiter) Allow(_ context.Context, client string) (Decision, error) {
	now := l.now()
	bucket := l.clients.GetOrAdd(client, func() *rate.Limiter {
		return rate.NewLimiter(rate.Every(l.interval), l.limit)
	})

	allowed := bucket.AllowN(now, 1)
	tokens := bucket.TokensAt(now)

	d := Decision{Allowed: allowed, Limit: l.limit}
	if allowed {
		d.Remaining = int(tokens)
		d.ResetAt = now.Add(l.refill(float64(l.limit) - tokens))
	} else {
		d.ResetAt = now.Add(l.refill(1 - tokens))
	}
	return d, nil
}

func (l *LocalLimiter) refill(tokens float64) time.Duration {
	if tokens <= 0 {
		return 0
	}
	return time.Duration(tokens * float64(l.interval))
}

// Clients reports how many client buckets are currently held.
func (l *LocalLimiter) Clients() int {
	return l.clients.Len()
}

func getClientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}

	if realIP := strings.TrimSpace(r.Header.Get("X-Real-IP")); realIP != "" {
		return realIP
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
