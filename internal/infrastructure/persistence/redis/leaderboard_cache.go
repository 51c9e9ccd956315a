package redis

import (
	"context"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/studyloop/studyloop/internal/application/query"
	"github.com/studyloop/studyloop/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// LEADERBOARD CACHE
// ══════════════════════════════════════════════════════════════════════════════

// LeaderboardCache serves per-class leaderboards from a Redis sorted set
// keyed "leaderboard:{classID}" with XP as the score. On a cache miss it
// rebuilds the set from the progression ledgers. Redis failures degrade to
// a direct storage read.
type LeaderboardCache struct {
	cache  *Cache
	source query.LeaderboardSource
	log    *logger.Logger
}

// NewLeaderboardCache creates a new LeaderboardCache.
func NewLeaderboardCache(cache *Cache, source query.LeaderboardSource, log *logger.Logger) *LeaderboardCache {
	return &LeaderboardCache{
		cache:  cache,
		source: source,
		log:    log.With(logger.Component("leaderboard_cache")),
	}
}

// rebuildLimit caps how many rows a rebuild loads. Large enough for any
// request limit the query layer allows.
const rebuildLimit = 100

func leaderboardKey(classID uuid.UUID) string {
	return prefixLeaderboard + classID.String()
}

// TopByClass returns the top entries for a class, highest XP first.
func (l *LeaderboardCache) TopByClass(ctx context.Context, classID uuid.UUID, limit int) ([]query.RankedScore, error) {
	key := leaderboardKey(classID)

	exists, err := l.cache.Client().Exists(ctx, key).Result()
	if err != nil {
		l.log.Warn("leaderboard cache unavailable, reading from storage", logger.Err(err))
		return l.fromStorage(ctx, classID, limit)
	}
	if exists == 0 {
		if err := l.rebuild(ctx, classID); err != nil {
			l.log.Warn("leaderboard rebuild failed, reading from storage", logger.Err(err))
			return l.fromStorage(ctx, classID, limit)
		}
	}

	members, err := l.cache.Client().ZRevRangeWithScores(ctx, key, 0, int64(limit-1)).Result()
	if err != nil {
		l.log.Warn("leaderboard cache read failed, reading from storage", logger.Err(err))
		return l.fromStorage(ctx, classID, limit)
	}

	scores := make([]query.RankedScore, 0, len(members))
	for _, m := range members {
		id, ok := m.Member.(string)
		if !ok {
			continue
		}
		userID, err := uuid.Parse(id)
		if err != nil {
			continue
		}
		scores = append(scores, query.RankedScore{UserID: userID, TotalXP: int(m.Score)})
	}
	return scores, nil
}

// UpdateScore writes one user's new XP into the class sorted set. A missing
// set is left missing; the next read rebuilds it in full.
func (l *LeaderboardCache) UpdateScore(ctx context.Context, classID, userID uuid.UUID, totalXP int) {
	key := leaderboardKey(classID)

	exists, err := l.cache.Client().Exists(ctx, key).Result()
	if err != nil || exists == 0 {
		return
	}
	if err := l.cache.Client().ZAdd(ctx, key, redis.Z{
		Score:  float64(totalXP),
		Member: userID.String(),
	}).Err(); err != nil {
		l.log.Warn("leaderboard score update failed", logger.Err(err))
	}
}

// rebuild loads the class ledgers into the sorted set.
func (l *LeaderboardCache) rebuild(ctx context.Context, classID uuid.UUID) error {
	rows, err := l.source.TopByClass(ctx, classID, rebuildLimit)
	if err != nil {
		return err
	}

	key := leaderboardKey(classID)
	pipe := l.cache.Client().TxPipeline()
	pipe.Del(ctx, key)

	if len(rows) > 0 {
		members := make([]redis.Z, 0, len(rows))
		for _, row := range rows {
			members = append(members, redis.Z{
				Score:  float64(row.TotalXP),
				Member: row.UserID.String(),
			})
		}
		pipe.ZAdd(ctx, key, members...)
	}
	pipe.Expire(ctx, key, TTLLeaderboardCache)

	_, err = pipe.Exec(ctx)
	return err
}

// fromStorage bypasses the cache entirely.
func (l *LeaderboardCache) fromStorage(ctx context.Context, classID uuid.UUID, limit int) ([]query.RankedScore, error) {
	return l.source.TopByClass(ctx, classID, limit)
}
