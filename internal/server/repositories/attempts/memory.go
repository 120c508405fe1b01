package attempts

import (
	"context"
	"time"

	"github.com/dmitrijs2005/pinkeeper/internal/common"
	"github.com/dmitrijs2005/pinkeeper/internal/server/models"
	"github.com/dmitrijs2005/pinkeeper/internal/ttlcache"
)

// MemoryRepository keeps records in a process-local TTL cache. Locked records
// expire from the cache at LockedUntil; open records stay until reset.
type MemoryRepository struct {
	cache *ttlcache.Cache[models.AttemptRecord]
}

func NewMemoryRepository(opts ...ttlcache.Option) *MemoryRepository {
	return &MemoryRepository{cache: ttlcache.New[models.AttemptRecord](opts...)}
}

func (r *MemoryRepository) Get(ctx context.Context, principalID string) (*models.AttemptRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rec, ok := r.cache.Get(principalID)
	if !ok {
		return nil, common.ErrorNotFound
	}
	return cloneRecord(&rec), nil
}

func (r *MemoryRepository) Put(ctx context.Context, rec *models.AttemptRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	var expiresAt time.Time
	if rec.LockedUntil != nil {
		expiresAt = *rec.LockedUntil
	}
	r.cache.Set(rec.PrincipalID, *cloneRecord(rec), expiresAt)
	return nil
}

func (r *MemoryRepository) Delete(ctx context.Context, principalID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.cache.Delete(principalID)
	return nil
}

// Close stops the background sweeper.
func (r *MemoryRepository) Close() { r.cache.Close() }

func cloneRecord(rec *models.AttemptRecord) *models.AttemptRecord {
	out := *rec
	if rec.LockedUntil != nil {
		t := *rec.LockedUntil
		out.LockedUntil = &t
	}
	return &out
}
