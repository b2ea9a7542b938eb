package redis

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/estuda-app/estuda-backend/internal/logger"
)

// Leaderboard mirrors the daily XP ledger into a sorted set per day so
// the global ranking endpoint can read top entries without hitting
// Postgres. The database remains authoritative; the mirror is rebuilt
// lazily and every write here is best effort.
type Leaderboard interface {
	IncrDaily(ctx context.Context, date string, userID uuid.UUID, delta int) error
	TopDaily(ctx context.Context, date string, n int) ([]Entry, error)
	Close() error
}

type Entry struct {
	UserID uuid.UUID
	XP     int
}

type leaderboard struct {
	log *logger.Logger
	rdb *goredis.Client
	ttl time.Duration
}

func NewLeaderboard(log *logger.Logger) (Leaderboard, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}

	addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &leaderboard{
		log: log.With("service", "RedisLeaderboard"),
		rdb: rdb,
		ttl: 48 * time.Hour,
	}, nil
}

func dailyKey(date string) string {
	return "ranking:daily:" + date
}

func (l *leaderboard) IncrDaily(ctx context.Context, date string, userID uuid.UUID, delta int) error {
	if l == nil || l.rdb == nil {
		return fmt.Errorf("redis leaderboard not initialized")
	}
	key := dailyKey(date)
	pipe := l.rdb.Pipeline()
	pipe.ZIncrBy(ctx, key, float64(delta), userID.String())
	pipe.Expire(ctx, key, l.ttl)
	_, err := pipe.Exec(ctx)
	return err
}

func (l *leaderboard) TopDaily(ctx context.Context, date string, n int) ([]Entry, error) {
	if l == nil || l.rdb == nil {
		return nil, fmt.Errorf("redis leaderboard not initialized")
	}
	raw, err := l.rdb.ZRevRangeWithScores(ctx, dailyKey(date), 0, int64(n-1)).Result()
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(raw))
	for _, z := range raw {
		member, ok := z.Member.(string)
		if !ok {
			continue
		}
		id, err := uuid.Parse(member)
		if err != nil {
			continue
		}
		entries = append(entries, Entry{UserID: id, XP: int(z.Score)})
	}
	return entries, nil
}

func (l *leaderboard) Close() error {
	if l == nil || l.rdb == nil {
		return nil
	}
	return l.rdb.Close()
}
