package domain

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
)

// DefaultScore is the score of a course with no reviews.
const DefaultScore = 3.0

// Course is the authoritative course document.
type Course struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       float64  `json:"price"`
	Categories  []string `json:"categories"`
	Language    string   `json:"language"`
	Creator     string   `json:"creator"`
	Score       float64  `json:"score"`
	Access      []string `json:"access"`
	Classes     []string `json:"classes"`
	Materials   []string `json:"materials"`

	// Version is bumped on every successful write; writes carrying a stale
	// version are rejected with ErrConflict.
	Version int64 `json:"-"`
}

// Validate checks the fields a client must provide.
func (c Course) Validate() error {
	var missing []string
	if strings.TrimSpace(c.Name) == "" {
		missing = append(missing, "name")
	}
	if strings.TrimSpace(c.Description) == "" {
		missing = append(missing, "description")
	}
	if strings.TrimSpace(c.Language) == "" {
		missing = append(missing, "language")
	}
	if strings.TrimSpace(c.Creator) == "" {
		missing = append(missing, "creator")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrValidation, strings.Join(missing, ", "))
	}
	if c.Price < 0 {
		return fmt.Errorf("%w: price must not be negative", ErrValidation)
	}
	return nil
}

// Clone returns a deep copy, so stores never share slices with callers.
func (c Course) Clone() Course {
	out := c
	out.Categories = cloneIDs(c.Categories)
	out.Access = cloneIDs(c.Access)
	out.Classes = cloneIDs(c.Classes)
	out.Materials = cloneIDs(c.Materials)
	return out
}

// Normalize fills nil lists and drops duplicates.
func (c *Course) Normalize() {
	c.Categories = lo.Uniq(nonNil(c.Categories))
	c.Access = lo.Uniq(nonNil(c.Access))
	c.Classes = lo.Uniq(nonNil(c.Classes))
	c.Materials = lo.Uniq(nonNil(c.Materials))
}

// GrantAccess reports whether username was added.
func (c *Course) GrantAccess(username string) bool {
	var added bool
	c.Access, added = appendIfAbsent(c.Access, username)
	return added
}

// RevokeAccess reports whether username was removed.
func (c *Course) RevokeAccess(username string) bool {
	var removed bool
	c.Access, removed = removeIfPresent(c.Access, username)
	return removed
}

func (c *Course) AddClass(classID string) bool {
	var added bool
	c.Classes, added = appendIfAbsent(c.Classes, classID)
	return added
}

func (c *Course) RemoveClass(classID string) bool {
	var removed bool
	c.Classes, removed = removeIfPresent(c.Classes, classID)
	return removed
}

func (c *Course) AddMaterial(materialID string) bool {
	var added bool
	c.Materials, added = appendIfAbsent(c.Materials, materialID)
	return added
}

func (c *Course) RemoveMaterial(materialID string) bool {
	var removed bool
	c.Materials, removed = removeIfPresent(c.Materials, materialID)
	return removed
}

func appendIfAbsent(list []string, id string) ([]string, bool) {
	if id == "" || lo.Contains(list, id) {
		return list, false
	}
	return append(list, id), true
}

func removeIfPresent(list []string, id string) ([]string, bool) {
	if !lo.Contains(list, id) {
		return list, false
	}
	return lo.Without(list, id), true
}

func cloneIDs(ids []string) []string {
	if ids == nil {
		return nil
	}
	out := make([]string, len(ids))
	copy(out, ids)
	return out
}

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
