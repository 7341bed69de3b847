package domain

import (
	"fmt"
	"time"
)

// ResourceKind names a per-course list owned by the learning service.
type ResourceKind string

const (
	ResourceClasses   ResourceKind = "classes"
	ResourceMaterials ResourceKind = "materials"
)

// ResourceTTL is how long a fetched classes/materials list stays cached.
const ResourceTTL = 5 * time.Hour

func ParseResourceKind(s string) (ResourceKind, error) {
	switch ResourceKind(s) {
	case ResourceClasses, ResourceMaterials:
		return ResourceKind(s), nil
	}
	return "", fmt.Errorf("%w: unknown resource %q", ErrValidation, s)
}

// CacheKey returns "{courseId} classes" or "{courseId} materials".
func CacheKey(courseID string, kind ResourceKind) string {
	return courseID + " " + string(kind)
}
