package usecase

import (
	"context"

	"github.com/google/uuid"

	"github.com/example/courses-service/internal/domain"
)

// CourseInput is the client-editable part of a course.
type CourseInput struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       float64  `json:"price"`
	Categories  []string `json:"categories"`
	Language    string   `json:"language"`
	Creator     string   `json:"creator"`
}

func (in CourseInput) apply(c *domain.Course) {
	c.Name = in.Name
	c.Description = in.Description
	c.Price = in.Price
	c.Categories = in.Categories
	c.Language = in.Language
	c.Creator = in.Creator
}

type CreateCourse struct {
	Courses domain.CourseRepository
}

func (uc CreateCourse) Execute(ctx context.Context, in CourseInput) (*domain.Course, error) {
	c := &domain.Course{ID: uuid.NewString(), Score: domain.DefaultScore}
	in.apply(c)
	c.Normalize()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if err := uc.Courses.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

type GetCourse struct {
	Courses domain.CourseRepository
}

func (uc GetCourse) Execute(ctx context.Context, id string) (*domain.Course, error) {
	return uc.Courses.GetByID(ctx, id)
}

type ListCourses struct {
	Courses domain.CourseRepository
}

func (uc ListCourses) Execute(ctx context.Context) ([]domain.Course, error) {
	return uc.Courses.List(ctx)
}

// UpdateCourse replaces the client-editable fields; access, classes,
// materials and score are left to their owners.
type UpdateCourse struct {
	Courses domain.CourseRepository
}

func (uc UpdateCourse) Execute(ctx context.Context, id string, in CourseInput) (*domain.Course, error) {
	return mutateCourse(ctx, uc.Courses, id, func(c *domain.Course) (bool, error) {
		in.apply(c)
		c.Normalize()
		if err := c.Validate(); err != nil {
			return false, err
		}
		return true, nil
	})
}

type DeleteCourse struct {
	Courses domain.CourseRepository
}

func (uc DeleteCourse) Execute(ctx context.Context, id string) error {
	return uc.Courses.Delete(ctx, id)
}
