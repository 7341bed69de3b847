package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/example/courses-service/internal/domain"
)

// maxMutationAttempts bounds read-modify-write retries on version conflicts.
const maxMutationAttempts = 5

// mutateCourse loads the course, applies fn and writes it back with the
// version it was read at, retrying from a fresh read on ErrConflict. fn
// reports whether it changed anything; an unchanged course is not written.
func mutateCourse(ctx context.Context, courses domain.CourseRepository, id string, fn func(c *domain.Course) (bool, error)) (*domain.Course, error) {
	for attempt := 0; attempt < maxMutationAttempts; attempt++ {
		c, err := courses.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		changed, err := fn(c)
		if err != nil {
			return nil, err
		}
		if !changed {
			return c, nil
		}
		err = courses.Update(ctx, c)
		if errors.Is(err, domain.ErrConflict) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return c, nil
	}
	return nil, fmt.Errorf("course %s: %w after %d attempts", id, domain.ErrConflict, maxMutationAttempts)
}

// ignoreNotFound turns a missing entity into a no-op.
func ignoreNotFound(err error) error {
	if errors.Is(err, domain.ErrNotFound) {
		return nil
	}
	return err
}

func listOp(op func(c *domain.Course) bool) func(c *domain.Course) (bool, error) {
	return func(c *domain.Course) (bool, error) { return op(c), nil }
}
