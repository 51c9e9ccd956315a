package redis

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/studyloop/studyloop/internal/application/query"
	"github.com/studyloop/studyloop/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// PROGRESS CACHE
// ══════════════════════════════════════════════════════════════════════════════

// ProgressCache caches gamification profile snapshots per (user, class
// scope). Cache failures never fail a request; they degrade to a storage
// read.
type ProgressCache struct {
	cache *Cache
	log   *logger.Logger
}

// NewProgressCache creates a new ProgressCache.
func NewProgressCache(cache *Cache, log *logger.Logger) *ProgressCache {
	return &ProgressCache{
		cache: cache,
		log:   log.With(logger.Component("progress_cache")),
	}
}

// progressKey keys a snapshot by user and class scope. The aggregate
// (class-less) snapshot uses the "all" scope.
func progressKey(userID uuid.UUID, classID *uuid.UUID) string {
	scope := "all"
	if classID != nil {
		scope = classID.String()
	}
	return prefixProgress + userID.String() + ":" + scope
}

// Get returns the cached snapshot, or ok=false on a miss or error.
func (p *ProgressCache) Get(ctx context.Context, userID uuid.UUID, classID *uuid.UUID) (*query.ProgressSnapshot, bool) {
	var snapshot query.ProgressSnapshot
	err := p.cache.Get(ctx, progressKey(userID, classID), &snapshot)
	if err != nil {
		if !errors.Is(err, ErrCacheMiss) {
			p.log.Warn("progress cache read failed", logger.Err(err))
		}
		return nil, false
	}
	return &snapshot, true
}

// Set stores the snapshot with the standard TTL. Errors are logged only.
func (p *ProgressCache) Set(ctx context.Context, userID uuid.UUID, classID *uuid.UUID, snapshot *query.ProgressSnapshot) {
	if err := p.cache.Set(ctx, progressKey(userID, classID), snapshot, TTLProgressCache); err != nil {
		p.log.Warn("progress cache write failed", logger.Err(err))
	}
}

// Invalidate drops all cached snapshots of a user, every class scope
// included. Called after each completion credit.
func (p *ProgressCache) Invalidate(ctx context.Context, userID uuid.UUID) {
	if err := p.cache.DeleteByPattern(ctx, prefixProgress+userID.String()+":*"); err != nil {
		p.log.Warn("progress cache invalidation failed", logger.Err(err))
	}
}
