package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/example/courses-service/internal/domain"
)

// RecomputeCourseScore sets a course's score to the mean rating of every
// review that currently references it, DefaultScore when there are none.
// It rereads all reviews on each call instead of adjusting incrementally.
type RecomputeCourseScore struct {
	Courses domain.CourseRepository
	Reviews domain.ReviewRepository
}

func (uc RecomputeCourseScore) Execute(ctx context.Context, courseID string) error {
	if courseID == "" {
		return nil
	}
	_, err := mutateCourse(ctx, uc.Courses, courseID, func(c *domain.Course) (bool, error) {
		reviews, err := uc.Reviews.Find(ctx, domain.ReviewFilter{Course: courseID})
		if err != nil {
			return false, err
		}
		score := domain.MeanRating(reviews)
		if c.Score == score {
			return false, nil
		}
		c.Score = score
		return true, nil
	})
	return ignoreNotFound(err)
}

// ReviewInput is the client-editable part of a review.
type ReviewInput struct {
	Type        domain.ReviewType `json:"type"`
	User        string            `json:"user"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Rating      float64           `json:"rating"`
	Course      string            `json:"course"`
	Material    string            `json:"material"`
}

func (in ReviewInput) apply(r *domain.Review) {
	if in.Type != "" {
		r.Type = in.Type
	}
	r.User = in.User
	r.Title = in.Title
	r.Description = in.Description
	r.Rating = in.Rating
	r.Course = in.Course
	r.Material = in.Material
}

type CreateReview struct {
	Reviews domain.ReviewRepository
	Score   RecomputeCourseScore
}

func (uc CreateReview) Execute(ctx context.Context, creator string, in ReviewInput) (*domain.Review, error) {
	r := &domain.Review{ID: uuid.NewString(), Creator: creator}
	in.apply(r)
	if err := r.Validate(); err != nil {
		return nil, err
	}
	if err := uc.Reviews.Create(ctx, r); err != nil {
		return nil, err
	}
	if err := uc.Score.Execute(ctx, r.Course); err != nil {
		return r, fmt.Errorf("recompute score of %s: %w", r.Course, err)
	}
	return r, nil
}

type GetReview struct {
	Reviews domain.ReviewRepository
}

func (uc GetReview) Execute(ctx context.Context, id string) (*domain.Review, error) {
	return uc.Reviews.GetByID(ctx, id)
}

type FindReviews struct {
	Reviews domain.ReviewRepository
}

func (uc FindReviews) Execute(ctx context.Context, filter domain.ReviewFilter) ([]domain.Review, error) {
	return uc.Reviews.Find(ctx, filter)
}

// UpdateReview rewrites a review and rescores both the course it pointed to
// and the course it points to now.
type UpdateReview struct {
	Reviews domain.ReviewRepository
	Score   RecomputeCourseScore
}

func (uc UpdateReview) Execute(ctx context.Context, id, editor string, in ReviewInput) (*domain.Review, error) {
	r, err := uc.Reviews.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	previousCourse := r.Course
	in.apply(r)
	r.Creator = editor
	if err := r.Validate(); err != nil {
		return nil, err
	}
	if err := uc.Reviews.Update(ctx, r); err != nil {
		return nil, err
	}

	var errs []error
	if previousCourse != r.Course {
		errs = append(errs, uc.Score.Execute(ctx, previousCourse))
	}
	errs = append(errs, uc.Score.Execute(ctx, r.Course))
	if err := errors.Join(errs...); err != nil {
		return r, fmt.Errorf("recompute score: %w", err)
	}
	return r, nil
}

type DeleteReview struct {
	Reviews domain.ReviewRepository
	Score   RecomputeCourseScore
}

func (uc DeleteReview) Execute(ctx context.Context, id string) error {
	r, err := uc.Reviews.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := uc.Reviews.Delete(ctx, id); err != nil {
		return err
	}
	if err := uc.Score.Execute(ctx, r.Course); err != nil {
		return fmt.Errorf("recompute score of %s: %w", r.Course, err)
	}
	return nil
}
