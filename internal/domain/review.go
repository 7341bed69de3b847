package domain

import (
	"fmt"
	"strings"
)

type ReviewType string

const (
	ReviewTypeUser     ReviewType = "USER"
	ReviewTypeCourse   ReviewType = "COURSE"
	ReviewTypeMaterial ReviewType = "MATERIAL"
)

func (t ReviewType) Valid() bool {
	switch t {
	case ReviewTypeUser, ReviewTypeCourse, ReviewTypeMaterial:
		return true
	}
	return false
}

// Review rates a user, a course or a material.
type Review struct {
	ID          string     `json:"id"`
	Type        ReviewType `json:"type"`
	User        string     `json:"user,omitempty"`
	Creator     string     `json:"creator"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Rating      float64    `json:"rating"`
	Course      string     `json:"course,omitempty"`
	Material    string     `json:"material,omitempty"`
}

func (r Review) Validate() error {
	if !r.Type.Valid() {
		return fmt.Errorf("%w: unknown review type %q", ErrValidation, r.Type)
	}
	if strings.TrimSpace(r.Creator) == "" {
		return fmt.Errorf("%w: missing creator", ErrValidation)
	}
	switch r.Type {
	case ReviewTypeCourse:
		if r.Course == "" {
			return fmt.Errorf("%w: course review without course", ErrValidation)
		}
	case ReviewTypeMaterial:
		if r.Material == "" {
			return fmt.Errorf("%w: material review without material", ErrValidation)
		}
	case ReviewTypeUser:
		if r.User == "" {
			return fmt.Errorf("%w: user review without user", ErrValidation)
		}
	}
	if r.Rating < 0 || r.Rating > 5 {
		return fmt.Errorf("%w: rating must be between 0 and 5", ErrValidation)
	}
	return nil
}

// ReviewFilter selects reviews by exact match on every non-empty field.
type ReviewFilter struct {
	Course   string
	Material string
	Creator  string
	User     string
}

func (f ReviewFilter) Match(r Review) bool {
	return (f.Course == "" || f.Course == r.Course) &&
		(f.Material == "" || f.Material == r.Material) &&
		(f.Creator == "" || f.Creator == r.Creator) &&
		(f.User == "" || f.User == r.User)
}

// MeanRating averages the ratings, or returns DefaultScore for an empty set.
func MeanRating(reviews []Review) float64 {
	if len(reviews) == 0 {
		return DefaultScore
	}
	var total float64
	for _, r := range reviews {
		total += r.Rating
	}
	return total / float64(len(reviews))
}
