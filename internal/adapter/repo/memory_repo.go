package repo

import (
	"context"
	"sort"
	"sync"

	"github.com/example/courses-service/internal/domain"
)

// MemoryStore keeps courses, reviews and profiles in process memory. It
// honours the same version check as the Postgres store.
type MemoryStore struct {
	mu       sync.RWMutex
	courses  map[string]domain.Course
	reviews  map[string]domain.Review
	profiles map[string]domain.UserProfile
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		courses:  make(map[string]domain.Course),
		reviews:  make(map[string]domain.Review),
		profiles: make(map[string]domain.UserProfile),
	}
}

// Courses returns the store as a CourseRepository.
func (s *MemoryStore) Courses() domain.CourseRepository { return memoryCourses{s} }

// Reviews returns the store as a ReviewRepository.
func (s *MemoryStore) Reviews() domain.ReviewRepository { return memoryReviews{s} }

// Profiles returns the store as a ProfileRepository.
func (s *MemoryStore) Profiles() domain.ProfileRepository { return memoryProfiles{s} }

// Profile returns the stored profile view for username.
func (s *MemoryStore) Profile(username string) (domain.UserProfile, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.profiles[username]
	return p, ok
}

type memoryCourses struct{ s *MemoryStore }

func (r memoryCourses) Create(_ context.Context, c *domain.Course) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.courses[c.ID]; ok {
		return domain.ErrConflict
	}
	c.Version = 1
	r.s.courses[c.ID] = c.Clone()
	return nil
}

func (r memoryCourses) GetByID(_ context.Context, id string) (*domain.Course, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	c, ok := r.s.courses[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := c.Clone()
	return &out, nil
}

func (r memoryCourses) List(_ context.Context) ([]domain.Course, error) {
	return r.filter(func(domain.Course) bool { return true }), nil
}

func (r memoryCourses) ListByCreator(_ context.Context, username string) ([]domain.Course, error) {
	return r.filter(func(c domain.Course) bool { return c.Creator == username }), nil
}

func (r memoryCourses) ListByAccess(_ context.Context, username string) ([]domain.Course, error) {
	return r.filter(func(c domain.Course) bool {
		for _, u := range c.Access {
			if u == username {
				return true
			}
		}
		return false
	}), nil
}

func (r memoryCourses) Update(_ context.Context, c *domain.Course) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.courses[c.ID]
	if !ok {
		return domain.ErrNotFound
	}
	if stored.Version != c.Version {
		return domain.ErrConflict
	}
	c.Version++
	r.s.courses[c.ID] = c.Clone()
	return nil
}

func (r memoryCourses) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.courses[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.s.courses, id)
	return nil
}

func (r memoryCourses) DeleteByCreator(_ context.Context, username string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for id, c := range r.s.courses {
		if c.Creator == username {
			delete(r.s.courses, id)
			n++
		}
	}
	return n, nil
}

func (r memoryCourses) filter(keep func(domain.Course) bool) []domain.Course {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]domain.Course, 0, len(r.s.courses))
	for _, c := range r.s.courses {
		if keep(c) {
			out = append(out, c.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

type memoryReviews struct{ s *MemoryStore }

func (r memoryReviews) Create(_ context.Context, rv *domain.Review) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.reviews[rv.ID]; ok {
		return domain.ErrConflict
	}
	r.s.reviews[rv.ID] = *rv
	return nil
}

func (r memoryReviews) GetByID(_ context.Context, id string) (*domain.Review, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	rv, ok := r.s.reviews[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &rv, nil
}

func (r memoryReviews) Find(_ context.Context, filter domain.ReviewFilter) ([]domain.Review, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]domain.Review, 0)
	for _, rv := range r.s.reviews {
		if filter.Match(rv) {
			out = append(out, rv)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r memoryReviews) Update(_ context.Context, rv *domain.Review) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.reviews[rv.ID]; !ok {
		return domain.ErrNotFound
	}
	r.s.reviews[rv.ID] = *rv
	return nil
}

func (r memoryReviews) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.reviews[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.s.reviews, id)
	return nil
}

type memoryProfiles struct{ s *MemoryStore }

func (r memoryProfiles) Upsert(_ context.Context, p domain.UserProfile) error {
	r.s.mu.Lock()
	r.s.profiles[p.Username] = p
	r.s.mu.Unlock()
	return nil
}

func (r memoryProfiles) DeleteByUsername(_ context.Context, username string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.profiles[username]; !ok {
		return 0, nil
	}
	delete(r.s.profiles, username)
	return 1, nil
}

var (
	_ domain.CourseRepository  = memoryCourses{}
	_ domain.ReviewRepository  = memoryReviews{}
	_ domain.ProfileRepository = memoryProfiles{}
)
