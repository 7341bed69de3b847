package repo

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/example/courses-service/internal/domain"
)

func setupTestDB(t *testing.T) *pgxpool.Pool {
	url := os.Getenv("COURSES_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("COURSES_TEST_DATABASE_URL not set")
	}
	pool, err := pgxpool.New(context.Background(), url)
	if err != nil {
		t.Fatalf("Failed to connect to test DB: %v", err)
	}
	if err := EnsureSchema(context.Background(), pool); err != nil {
		t.Fatalf("EnsureSchema() error = %v", err)
	}
	t.Cleanup(pool.Close)
	return pool
}

func TestPostgresCourseRepo_VersionedUpdate(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()
	courses := NewPostgresCourseRepo(pool)

	creator := "pg-" + uuid.NewString()
	c := &domain.Course{ID: uuid.NewString(), Name: "Go", Creator: creator, Score: domain.DefaultScore}
	c.Normalize()
	if err := courses.Create(ctx, c); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	t.Cleanup(func() { _, _ = courses.DeleteByCreator(ctx, creator) })

	stale, err := courses.GetByID(ctx, c.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}

	c.GrantAccess("reader")
	if err := courses.Update(ctx, c); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if c.Version != 2 {
		t.Errorf("Version = %d, want 2", c.Version)
	}
	if err := courses.Update(ctx, stale); !errors.Is(err, domain.ErrConflict) {
		t.Errorf("stale Update() error = %v, want ErrConflict", err)
	}

	byAccess, err := courses.ListByAccess(ctx, "reader")
	if err != nil {
		t.Fatalf("ListByAccess() error = %v", err)
	}
	found := false
	for _, got := range byAccess {
		if got.ID == c.ID {
			found = true
		}
	}
	if !found {
		t.Error("ListByAccess() did not return the course")
	}

	n, err := courses.DeleteByCreator(ctx, creator)
	if err != nil || n != 1 {
		t.Errorf("DeleteByCreator() = %d, %v", n, err)
	}
	if err := courses.Update(ctx, c); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Update(deleted) error = %v, want ErrNotFound", err)
	}
}

func TestPostgresReviewRepo_Find(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()
	reviews := NewPostgresReviewRepo(pool)

	course := uuid.NewString()
	ids := []string{uuid.NewString(), uuid.NewString()}
	for i, id := range ids {
		rv := &domain.Review{ID: id, Type: domain.ReviewTypeCourse, Course: course, Creator: "ann", Rating: float64(i + 2)}
		if err := reviews.Create(ctx, rv); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}
	t.Cleanup(func() {
		for _, id := range ids {
			_ = reviews.Delete(ctx, id)
		}
	})

	got, err := reviews.Find(ctx, domain.ReviewFilter{Course: course})
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}
	if len(got) != 2 || domain.MeanRating(got) != 2.5 {
		t.Errorf("Find() = %v", got)
	}
}
