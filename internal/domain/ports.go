package domain

import (
	"context"
	"time"
)

// CourseRepository — порт персистентности курсов.
type CourseRepository interface {
	Create(ctx context.Context, c *Course) error
	GetByID(ctx context.Context, id string) (*Course, error)
	List(ctx context.Context) ([]Course, error)
	ListByCreator(ctx context.Context, username string) ([]Course, error)
	ListByAccess(ctx context.Context, username string) ([]Course, error)
	// Update writes c only if the stored version still equals c.Version and
	// bumps c.Version on success. A stale version yields ErrConflict.
	Update(ctx context.Context, c *Course) error
	Delete(ctx context.Context, id string) error
	DeleteByCreator(ctx context.Context, username string) (int64, error)
}

// ReviewRepository — порт персистентности отзывов.
type ReviewRepository interface {
	Create(ctx context.Context, r *Review) error
	GetByID(ctx context.Context, id string) (*Review, error)
	Find(ctx context.Context, filter ReviewFilter) ([]Review, error)
	Update(ctx context.Context, r *Review) error
	Delete(ctx context.Context, id string) error
}

// ProfileRepository holds the local copy of user profiles.
type ProfileRepository interface {
	Upsert(ctx context.Context, p UserProfile) error
	DeleteByUsername(ctx context.Context, username string) (int64, error)
}

// ListCache — порт кэша списков идентификаторов с TTL на ключ.
type ListCache interface {
	Exists(ctx context.Context, key string) (bool, error)
	// Get returns ErrNotFound for a missing or expired key.
	Get(ctx context.Context, key string) ([]string, error)
	Set(ctx context.Context, key string, ids []string, ttl time.Duration) error
}

// Notifier sends a message to another service without reporting the outcome.
type Notifier interface {
	Notify(ctx context.Context, destination, operationID string, message any)
}

// MessageConsumer — порт подписчика на входящие сообщения шины.
type MessageConsumer interface {
	// Consume registers handler; acknowledgement policy belongs to the adapter.
	Consume(ctx context.Context, handler func(ctx context.Context, raw []byte) error) error
	Close() error
}

// Общие доменные ошибки
var (
	ErrNotFound   = notFoundError("not found")
	ErrValidation = validationError("invalid data")
	ErrConflict   = conflictError("version conflict")
)

type notFoundError string

func (e notFoundError) Error() string { return string(e) }

type validationError string

func (e validationError) Error() string { return string(e) }

type conflictError string

func (e conflictError) Error() string { return string(e) }
