package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/example/courses-service/internal/adapter/repo"
	"github.com/example/courses-service/internal/domain"
)

type reviewSuite struct {
	store  *repo.MemoryStore
	create CreateReview
	update UpdateReview
	delete DeleteReview
}

func setupReviewSuite(t *testing.T, courseIDs ...string) reviewSuite {
	t.Helper()
	store := repo.NewMemoryStore()
	for _, id := range courseIDs {
		c := &domain.Course{ID: id, Creator: "owner", Score: domain.DefaultScore}
		c.Normalize()
		if err := store.Courses().Create(context.Background(), c); err != nil {
			t.Fatal(err)
		}
	}
	score := RecomputeCourseScore{Courses: store.Courses(), Reviews: store.Reviews()}
	return reviewSuite{
		store:  store,
		create: CreateReview{Reviews: store.Reviews(), Score: score},
		update: UpdateReview{Reviews: store.Reviews(), Score: score},
		delete: DeleteReview{Reviews: store.Reviews(), Score: score},
	}
}

func (s reviewSuite) score(t *testing.T, courseID string) float64 {
	t.Helper()
	c, err := s.store.Courses().GetByID(context.Background(), courseID)
	if err != nil {
		t.Fatalf("GetByID(%s) error = %v", courseID, err)
	}
	return c.Score
}

func courseReview(courseID string, rating float64) ReviewInput {
	return ReviewInput{Type: domain.ReviewTypeCourse, Title: "t", Rating: rating, Course: courseID}
}

func TestReviews_ScoreIsMeanOfCourseReviews(t *testing.T) {
	s := setupReviewSuite(t, "c-1")
	ctx := context.Background()

	var ids []string
	for _, rating := range []float64{4, 2, 3} {
		r, err := s.create.Execute(ctx, "ann", courseReview("c-1", rating))
		if err != nil {
			t.Fatalf("CreateReview() error = %v", err)
		}
		ids = append(ids, r.ID)
	}
	if got := s.score(t, "c-1"); got != 3.0 {
		t.Fatalf("score = %v, want 3.0", got)
	}

	if err := s.delete.Execute(ctx, ids[1]); err != nil {
		t.Fatalf("DeleteReview() error = %v", err)
	}
	if got := s.score(t, "c-1"); got != 3.5 {
		t.Fatalf("score after deleting the 2 = %v, want 3.5", got)
	}

	for _, id := range []string{ids[0], ids[2]} {
		if err := s.delete.Execute(ctx, id); err != nil {
			t.Fatalf("DeleteReview() error = %v", err)
		}
	}
	if got := s.score(t, "c-1"); got != domain.DefaultScore {
		t.Errorf("score after deleting every review = %v, want default 3.0", got)
	}
}

func TestReviews_FirstReviewReplacesDefault(t *testing.T) {
	s := setupReviewSuite(t, "c-1")
	if _, err := s.create.Execute(context.Background(), "ann", courseReview("c-1", 5)); err != nil {
		t.Fatal(err)
	}
	if got := s.score(t, "c-1"); got != 5 {
		t.Errorf("score = %v, want 5", got)
	}
}

func TestReviews_UpdateMovingCourseRescoresBoth(t *testing.T) {
	s := setupReviewSuite(t, "c-1", "c-2")
	ctx := context.Background()

	_, _ = s.create.Execute(ctx, "ann", courseReview("c-1", 5))
	moving, _ := s.create.Execute(ctx, "ann", courseReview("c-1", 1))
	if got := s.score(t, "c-1"); got != 3 {
		t.Fatalf("c-1 score = %v, want 3", got)
	}

	updated, err := s.update.Execute(ctx, moving.ID, "bob", courseReview("c-2", 2))
	if err != nil {
		t.Fatalf("UpdateReview() error = %v", err)
	}
	if updated.Creator != "bob" {
		t.Errorf("Creator = %q, want the editor", updated.Creator)
	}
	if got := s.score(t, "c-1"); got != 5 {
		t.Errorf("c-1 score = %v, want 5", got)
	}
	if got := s.score(t, "c-2"); got != 2 {
		t.Errorf("c-2 score = %v, want 2", got)
	}
}

func TestReviews_MissingCourseStillStoresReview(t *testing.T) {
	s := setupReviewSuite(t)
	r, err := s.create.Execute(context.Background(), "ann", courseReview("gone", 4))
	if err != nil {
		t.Fatalf("CreateReview() error = %v", err)
	}
	if _, err := s.store.Reviews().GetByID(context.Background(), r.ID); err != nil {
		t.Errorf("review not stored: %v", err)
	}
}

func TestReviews_Validation(t *testing.T) {
	s := setupReviewSuite(t, "c-1")
	ctx := context.Background()

	tests := []struct {
		name    string
		creator string
		in      ReviewInput
	}{
		{"unknown type", "ann", ReviewInput{Type: "PRODUCT", Rating: 3}},
		{"no creator", "", courseReview("c-1", 3)},
		{"course review without course", "ann", ReviewInput{Type: domain.ReviewTypeCourse, Rating: 3}},
		{"rating out of range", "ann", courseReview("c-1", 7)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := s.create.Execute(ctx, tt.creator, tt.in); !errors.Is(err, domain.ErrValidation) {
				t.Errorf("CreateReview() error = %v, want ErrValidation", err)
			}
		})
	}
	if got, _ := s.store.Reviews().Find(ctx, domain.ReviewFilter{}); len(got) != 0 {
		t.Errorf("invalid reviews were stored: %v", got)
	}
	if got := s.score(t, "c-1"); got != domain.DefaultScore {
		t.Errorf("score changed to %v", got)
	}
}

func TestReviews_DeleteMissing(t *testing.T) {
	s := setupReviewSuite(t)
	if err := s.delete.Execute(context.Background(), "nope"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("DeleteReview() error = %v, want ErrNotFound", err)
	}
}

func TestCourses_CreateUpdate(t *testing.T) {
	store := repo.NewMemoryStore()
	ctx := context.Background()
	in := CourseInput{Name: "Go", Description: "Intro", Price: 10, Categories: []string{"dev", "dev"}, Language: "en", Creator: "ann"}

	c, err := CreateCourse{Courses: store.Courses()}.Execute(ctx, in)
	if err != nil {
		t.Fatalf("CreateCourse() error = %v", err)
	}
	if c.ID == "" || c.Score != domain.DefaultScore || len(c.Categories) != 1 {
		t.Errorf("created = %+v", c)
	}

	in.Name = "Go 2"
	updated, err := UpdateCourse{Courses: store.Courses()}.Execute(ctx, c.ID, in)
	if err != nil {
		t.Fatalf("UpdateCourse() error = %v", err)
	}
	if updated.Name != "Go 2" || updated.Version != 2 {
		t.Errorf("updated = %+v", updated)
	}

	in.Name = ""
	if _, err := (UpdateCourse{Courses: store.Courses()}).Execute(ctx, c.ID, in); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("UpdateCourse(invalid) error = %v", err)
	}
	if _, err := (UpdateCourse{Courses: store.Courses()}).Execute(ctx, "missing", in); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("UpdateCourse(missing) error = %v", err)
	}
	if err := (DeleteCourse{Courses: store.Courses()}).Execute(ctx, c.ID); err != nil {
		t.Errorf("DeleteCourse() error = %v", err)
	}
}
