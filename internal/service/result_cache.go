package service

import (
	"context"
	"fmt"
	"time"

	"github.com/schoolcore/gradebook-api/internal/models"
)

type statsCacheStore interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

// ResultCache namespaces cached subject statistics per class. Writes to a
// class invalidate every subject entry under it in one sweep.
type ResultCache struct {
	store statsCacheStore
	ttl   time.Duration
}

// NewResultCache constructs a result cache with the configured TTL.
func NewResultCache(store statsCacheStore, ttl time.Duration) *ResultCache {
	return &ResultCache{store: store, ttl: ttl}
}

func statsKey(classID, subjectID string) string {
	return fmt.Sprintf("results:class:%s:subject:%s", classID, subjectID)
}

// GetStats returns the cached statistics for a class/subject pair.
func (c *ResultCache) GetStats(ctx context.Context, classID, subjectID string) (*models.ClassSubjectStats, error) {
	var stats models.ClassSubjectStats
	if err := c.store.Get(ctx, statsKey(classID, subjectID), &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// SetStats caches the statistics for a class/subject pair.
func (c *ResultCache) SetStats(ctx context.Context, classID, subjectID string, stats *models.ClassSubjectStats) error {
	return c.store.Set(ctx, statsKey(classID, subjectID), stats, c.ttl)
}

// InvalidateClass drops every cached statistic for the class.
func (c *ResultCache) InvalidateClass(ctx context.Context, classID string) error {
	return c.store.DeleteByPattern(ctx, fmt.Sprintf("results:class:%s:*", classID))
}
