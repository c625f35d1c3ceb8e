package repository

import (
	"context"
	"time"

	"github.com/mansoorceksport/gymcard/internal/domain"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const defaultMemberCacheTTL = 5 * time.Minute

// CachedMemberRepository wraps a domain.MemberRepository with a read-through cache.
// Only records are cached; remaining days are always recomputed by the caller.
type CachedMemberRepository struct {
	store  domain.MemberRepository
	cache  domain.CacheRepository
	ttl    time.Duration
	group  singleflight.Group
	logger *zap.Logger
}

// NewCachedMemberRepository creates a new cached member repository
func NewCachedMemberRepository(store domain.MemberRepository, cache domain.CacheRepository, ttl time.Duration, logger *zap.Logger) *CachedMemberRepository {
	if ttl <= 0 {
		ttl = defaultMemberCacheTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedMemberRepository{
		store:  store,
		cache:  cache,
		ttl:    ttl,
		logger: logger,
	}
}

// GetByID retrieves a member with caching. Concurrent misses for the same id share one
// store lookup.
func (r *CachedMemberRepository) GetByID(ctx context.Context, id string) (*domain.MemberRecord, error) {
	key := MemberKey(id)

	// Try cache first
	var member domain.MemberRecord
	if err := r.cache.Get(ctx, key, &member); err == nil {
		return &member, nil
	}

	v, err, _ := r.group.Do(key, func() (interface{}, error) {
		result, err := r.store.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}

		// Store in cache (ignore cache errors)
		if err := r.cache.Set(ctx, key, result, r.ttl); err != nil {
			r.logger.Warn("member cache set failed", zap.String("member_id", id), zap.Error(err))
		}
		return result, nil
	})
	if err != nil {
		return nil, err
	}

	// Hand each caller its own copy.
	cp := *v.(*domain.MemberRecord)
	return &cp, nil
}

// Create creates a member; nothing is cached until first read
func (r *CachedMemberRepository) Create(ctx context.Context, member *domain.MemberRecord) error {
	return r.store.Create(ctx, member)
}

// Update updates a member and invalidates its cache entry
func (r *CachedMemberRepository) Update(ctx context.Context, member *domain.MemberRecord) error {
	if err := r.store.Update(ctx, member); err != nil {
		return err
	}
	r.invalidate(ctx, member.ID)
	return nil
}

// UpdateRemaining updates the stored remaining figure and invalidates the cache entry
func (r *CachedMemberRepository) UpdateRemaining(ctx context.Context, id string, remaining *int) error {
	if err := r.store.UpdateRemaining(ctx, id, remaining); err != nil {
		return err
	}
	r.invalidate(ctx, id)
	return nil
}

// List is a pass-through (no caching)
func (r *CachedMemberRepository) List(ctx context.Context) ([]*domain.MemberRecord, error) {
	return r.store.List(ctx)
}

func (r *CachedMemberRepository) invalidate(ctx context.Context, id string) {
	if err := r.cache.Delete(ctx, MemberKey(id)); err != nil {
		r.logger.Warn("member cache invalidation failed", zap.String("member_id", id), zap.Error(err))
	}
}
