package sortedstorage

import (
	"context"
	"errors"
	"time"

	"github.com/beka-birhanu/vinom-maze/service/i"
	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/redis/go-redis/v9"
)

// RedisLeaderboard keeps best-time boards as Redis sorted sets with TTL support.
// Lower scores rank higher.
type RedisLeaderboard struct {
	client *redis.Client
	locker *redsync.Redsync
	ttl    time.Duration
}

var _ i.Leaderboard = &RedisLeaderboard{}

// NewRedisLeaderboard initializes a RedisLeaderboard with the provided Redis client and TTL.
// A zero TTL keeps boards forever.
func NewRedisLeaderboard(client *redis.Client, ttlSeconds int) (*RedisLeaderboard, error) {
	if client == nil {
		return nil, errors.New("redis client is required")
	}
	if ttlSeconds < 0 {
		return nil, errors.New("ttl must not be negative")
	}

	board := &RedisLeaderboard{
		client: client,
		ttl:    time.Duration(ttlSeconds) * time.Second,
	}
	pool := goredis.NewPool(client)
	board.locker = redsync.New(pool)
	return board, nil
}

// Record stores score for player when it beats the player's previous best.
func (rl *RedisLeaderboard) Record(ctx context.Context, board, player string, score float64) (bool, error) {
	mutex := rl.locker.NewMutex(board + ":" + player + ":record_lock")
	if err := mutex.LockContext(ctx); err != nil {
		return false, err
	}
	defer func() {
		_, _ = mutex.UnlockContext(ctx)
	}()

	best, err := rl.client.ZScore(ctx, board, player).Result()
	switch {
	case errors.Is(err, redis.Nil):
	case err != nil:
		return false, err
	case best <= score:
		return false, nil
	}

	if err := rl.client.ZAdd(ctx, board, redis.Z{Score: score, Member: player}).Err(); err != nil {
		return false, err
	}

	// Set expiration only if it's not already set
	if rl.ttl > 0 {
		ttl, err := rl.client.TTL(ctx, board).Result()
		if err == nil && ttl == -1 {
			_ = rl.client.Expire(ctx, board, rl.ttl).Err()
		}
	}

	return true, nil
}

// Top returns up to limit entries with the lowest scores.
func (rl *RedisLeaderboard) Top(ctx context.Context, board string, limit int64) ([]i.LeaderboardEntry, error) {
	if limit <= 0 {
		return []i.LeaderboardEntry{}, nil
	}

	scored, err := rl.client.ZRangeWithScores(ctx, board, 0, limit-1).Result()
	if err != nil {
		return nil, err
	}

	entries := make([]i.LeaderboardEntry, 0, len(scored))
	for _, z := range scored {
		member, _ := z.Member.(string)
		entries = append(entries, i.LeaderboardEntry{Player: member, Score: z.Score})
	}
	return entries, nil
}
