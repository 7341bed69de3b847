package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/example/courses-service/internal/adapter/cache"
	"github.com/example/courses-service/internal/adapter/httpapi"
	"github.com/example/courses-service/internal/adapter/natsstan"
	"github.com/example/courses-service/internal/adapter/notify"
	"github.com/example/courses-service/internal/adapter/repo"
	"github.com/example/courses-service/internal/config"
	"github.com/example/courses-service/internal/domain"
	"github.com/example/courses-service/internal/logger"
	"github.com/example/courses-service/internal/usecase"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// .env is optional; real environment variables win
	_ = godotenv.Load()

	cfg, err := config.Load(os.Getenv("COURSES_CONFIG"))
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	lg, err := logger.New(&cfg.Log)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = lg.Sync() }()

	a, err := newApp(ctx, cfg, lg)
	if err != nil {
		lg.Fatal("startup failed", zap.Error(err))
	}
	defer a.Close()

	if err := a.Run(ctx); err != nil {
		lg.Error("server stopped", zap.Error(err))
	}
}

type stores struct {
	courses  domain.CourseRepository
	reviews  domain.ReviewRepository
	profiles domain.ProfileRepository
}

// app holds every long-lived component of the service.
type app struct {
	log      *zap.Logger
	server   *http.Server
	dispatch usecase.ProcessIncomingMessage
	consumer *natsstan.Consumer
	notifier *notify.HTTPNotifier
	closers  []func()
}

func newApp(ctx context.Context, cfg *config.Config, lg *zap.Logger) (*app, error) {
	a := &app{log: lg}
	started := false
	defer func() {
		if !started {
			a.Close()
		}
	}()

	st, err := a.openStores(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}
	lists, err := a.openCache(cfg)
	if err != nil {
		return nil, err
	}

	a.notifier = notify.NewHTTPNotifier(cfg.Messages.BaseURL(), cfg.Messages.APIKey, cfg.Messages.Timeout, lg.Named("notifier"))
	a.dispatch = usecase.ProcessIncomingMessage{
		Courses:  st.courses,
		Reviews:  st.reviews,
		Profiles: st.profiles,
		Cache:    lists,
		Notifier: a.notifier,
		Log:      lg.Named("dispatcher"),
	}

	score := usecase.RecomputeCourseScore{Courses: st.courses, Reviews: st.reviews}
	uc := httpapi.UseCases{
		CreateCourse: usecase.CreateCourse{Courses: st.courses},
		GetCourse:    usecase.GetCourse{Courses: st.courses},
		ListCourses:  usecase.ListCourses{Courses: st.courses},
		UpdateCourse: usecase.UpdateCourse{Courses: st.courses},
		DeleteCourse: usecase.DeleteCourse{Courses: st.courses},
		Resolve:      usecase.ResolveCourseResource{Cache: lists, Notifier: a.notifier, Log: lg.Named("resolver")},
		CreateReview: usecase.CreateReview{Reviews: st.reviews, Score: score},
		GetReview:    usecase.GetReview{Reviews: st.reviews},
		FindReviews:  usecase.FindReviews{Reviews: st.reviews},
		UpdateReview: usecase.UpdateReview{Reviews: st.reviews, Score: score},
		DeleteReview: usecase.DeleteReview{Reviews: st.reviews, Score: score},
	}
	tokens := httpapi.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	a.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           httpapi.NewServer(uc, tokens, lg.Named("http")),
		ReadHeaderTimeout: 10 * time.Second,
	}

	if cfg.Bus.Enabled {
		a.consumer = &natsstan.Consumer{
			ClusterID:  cfg.Bus.ClusterID,
			ClientID:   cfg.Bus.ClientID,
			URL:        cfg.Bus.URL,
			Subject:    cfg.Bus.Subject,
			QueueGroup: cfg.Bus.QueueGroup,
			Durable:    cfg.Bus.Durable,
			AckWait:    cfg.Bus.AckWait,
			Log:        lg.Named("consumer"),
		}
		if err := a.consumer.Connect(ctx); err != nil {
			a.consumer = nil
			return nil, err
		}
	}
	started = true
	return a, nil
}

func (a *app) openStores(ctx context.Context, cfg config.DatabaseConfig) (stores, error) {
	if cfg.Driver == "memory" {
		a.log.Warn("using in-memory store; data is lost on restart")
		m := repo.NewMemoryStore()
		return stores{m.Courses(), m.Reviews(), m.Profiles()}, nil
	}

	pool, err := pgxpool.New(ctx, cfg.URL)
	if err != nil {
		return stores{}, fmt.Errorf("db connect: %w", err)
	}
	a.closers = append(a.closers, pool.Close)
	if err := pool.Ping(ctx); err != nil {
		return stores{}, fmt.Errorf("db ping: %w", err)
	}
	if err := repo.EnsureSchema(ctx, pool); err != nil {
		return stores{}, fmt.Errorf("init schema: %w", err)
	}
	return stores{
		courses:  repo.NewPostgresCourseRepo(pool),
		reviews:  repo.NewPostgresReviewRepo(pool),
		profiles: repo.NewPostgresProfileRepo(pool),
	}, nil
}

func (a *app) openCache(cfg *config.Config) (domain.ListCache, error) {
	if cfg.Cache.Driver == "memory" {
		return cache.NewMemoryListCache(), nil
	}
	rc, err := cache.NewRedisListCache(&cfg.Redis, a.log.Named("redis"))
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, func() { _ = rc.Close() })
	return rc, nil
}

// Run starts consuming and serving and blocks until ctx is done or the
// listener fails.
func (a *app) Run(ctx context.Context) error {
	if a.consumer != nil {
		if err := a.consumer.Consume(ctx, a.dispatch.Execute); err != nil {
			return err
		}
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.Info("http listening", zap.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return fmt.Errorf("http: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return a.server.Shutdown(shutdownCtx)
}

// Close stops the consumer first so no new work reaches the notifier,
// then drains pending notifications and releases storage.
func (a *app) Close() {
	if a.consumer != nil {
		if err := a.consumer.Close(); err != nil {
			a.log.Warn("consumer close", zap.Error(err))
		}
	}
	if a.notifier != nil {
		a.notifier.Close()
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
