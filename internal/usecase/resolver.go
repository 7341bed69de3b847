package usecase

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/example/courses-service/internal/domain"
)

// ResolveCourseResource reads a course's classes or materials through the
// cache. On a miss it asks the learning service for the lists and reports
// ok=false without waiting: the answer arrives later on the queue and only a
// subsequent call sees it. A miss is never cached, so every miss sends a
// request, including repeats while one is already outstanding.
type ResolveCourseResource struct {
	Cache    domain.ListCache
	Notifier domain.Notifier
	Log      *zap.Logger
}

func (uc ResolveCourseResource) Execute(ctx context.Context, courseID string, kind domain.ResourceKind) ([]string, bool) {
	key := domain.CacheKey(courseID, kind)

	if ids, ok := uc.lookup(ctx, key); ok {
		return ids, true
	}

	uc.Notifier.Notify(ctx, domain.LearningService, domain.OpRequestAppClassesAndMaterials, map[string]any{
		"courseId": courseID,
		"resource": string(kind),
	})
	return nil, false
}

// lookup treats cache failures as misses.
func (uc ResolveCourseResource) lookup(ctx context.Context, key string) ([]string, bool) {
	exists, err := uc.Cache.Exists(ctx, key)
	if err != nil {
		uc.logger().Warn("cache exists failed", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	if !exists {
		return nil, false
	}
	ids, err := uc.Cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			uc.logger().Warn("cache get failed", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	return ids, true
}

func (uc ResolveCourseResource) logger() *zap.Logger {
	if uc.Log == nil {
		return zap.NewNop()
	}
	return uc.Log
}
