package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/example/courses-service/internal/adapter/cache"
	"github.com/example/courses-service/internal/adapter/repo"
	"github.com/example/courses-service/internal/domain"
)

// ── Notifier ──

type sentMessage struct {
	destination string
	operationID string
	message     any
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []sentMessage
}

func (n *recordingNotifier) Notify(_ context.Context, destination, operationID string, message any) {
	n.mu.Lock()
	n.sent = append(n.sent, sentMessage{destination, operationID, message})
	n.mu.Unlock()
}

func (n *recordingNotifier) count(operationID string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	c := 0
	for _, s := range n.sent {
		if s.operationID == operationID {
			c++
		}
	}
	return c
}

func (n *recordingNotifier) last() sentMessage {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.sent[len(n.sent)-1]
}

// ── Clock ──

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

// ── Failing collaborators ──

var errStoreDown = errors.New("store down")

type failingCourses struct {
	domain.CourseRepository
}

func (failingCourses) GetByID(context.Context, string) (*domain.Course, error) {
	return nil, errStoreDown
}

func (failingCourses) ListByAccess(context.Context, string) ([]domain.Course, error) {
	return nil, errStoreDown
}

type failingCache struct{}

func (failingCache) Exists(context.Context, string) (bool, error) { return false, errStoreDown }
func (failingCache) Get(context.Context, string) ([]string, error) {
	return nil, errStoreDown
}
func (failingCache) Set(context.Context, string, []string, time.Duration) error {
	return errStoreDown
}

// interleavingCourses runs beforeFirstUpdate right before the first Update
// reaches the store, simulating a concurrent writer in the read-modify-write gap.
type interleavingCourses struct {
	domain.CourseRepository
	once              sync.Once
	beforeFirstUpdate func()
}

func (r *interleavingCourses) Update(ctx context.Context, c *domain.Course) error {
	r.once.Do(r.beforeFirstUpdate)
	return r.CourseRepository.Update(ctx, c)
}

// ── Fixture ──

type fixture struct {
	store    *repo.MemoryStore
	cache    *cache.MemoryListCache
	clock    *fakeClock
	notifier *recordingNotifier
	messages ProcessIncomingMessage
	resolve  ResolveCourseResource
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	clock := &fakeClock{t: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}
	f := &fixture{
		store:    repo.NewMemoryStore(),
		cache:    cache.NewMemoryListCache().WithClock(clock.now),
		clock:    clock,
		notifier: &recordingNotifier{},
	}
	f.messages = ProcessIncomingMessage{
		Courses:  f.store.Courses(),
		Reviews:  f.store.Reviews(),
		Profiles: f.store.Profiles(),
		Cache:    f.cache,
		Notifier: f.notifier,
		Log:      zap.NewNop(),
	}
	f.resolve = ResolveCourseResource{Cache: f.cache, Notifier: f.notifier, Log: zap.NewNop()}
	return f
}

func (f *fixture) seedCourse(t *testing.T, c domain.Course) {
	t.Helper()
	c.Normalize()
	if err := f.store.Courses().Create(context.Background(), &c); err != nil {
		t.Fatalf("seed course %s: %v", c.ID, err)
	}
}

func (f *fixture) course(t *testing.T, id string) *domain.Course {
	t.Helper()
	c, err := f.store.Courses().GetByID(context.Background(), id)
	if err != nil {
		t.Fatalf("GetByID(%s) error = %v", id, err)
	}
	return c
}

func (f *fixture) deliver(t *testing.T, operationID string, message any) error {
	t.Helper()
	raw, err := json.Marshal(map[string]any{"operationId": operationID, "message": message})
	if err != nil {
		t.Fatal(err)
	}
	return f.messages.Execute(context.Background(), raw)
}
