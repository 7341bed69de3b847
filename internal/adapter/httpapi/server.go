package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/example/courses-service/internal/domain"
	"github.com/example/courses-service/internal/usecase"
)

// UseCases groups everything the HTTP layer calls into.
type UseCases struct {
	CreateCourse usecase.CreateCourse
	GetCourse    usecase.GetCourse
	ListCourses  usecase.ListCourses
	UpdateCourse usecase.UpdateCourse
	DeleteCourse usecase.DeleteCourse
	Resolve      usecase.ResolveCourseResource

	CreateReview usecase.CreateReview
	GetReview    usecase.GetReview
	FindReviews  usecase.FindReviews
	UpdateReview usecase.UpdateReview
	DeleteReview usecase.DeleteReview
}

type Server struct {
	Router *mux.Router
	UC     UseCases
	Tokens *TokenManager
	Log    *zap.Logger
}

func NewServer(uc UseCases, tokens *TokenManager, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{Router: mux.NewRouter(), UC: uc, Tokens: tokens, Log: log}
	s.Router.Use(requestID, s.logRequests, s.requireToken)

	c := s.Router.PathPrefix("/v1/courses").Subrouter()
	c.HandleFunc("/check", s.handleCheck).Methods(http.MethodGet)
	c.HandleFunc("", s.handleListCourses).Methods(http.MethodGet)
	c.HandleFunc("", s.handleCreateCourse).Methods(http.MethodPost)
	c.HandleFunc("/{courseId}", s.handleGetCourse).Methods(http.MethodGet)
	c.HandleFunc("/{courseId}", s.handleUpdateCourse).Methods(http.MethodPut)
	c.HandleFunc("/{courseId}", s.handleDeleteCourse).Methods(http.MethodDelete)
	c.HandleFunc("/{courseId}/classes", s.handleResource(domain.ResourceClasses)).Methods(http.MethodGet)
	c.HandleFunc("/{courseId}/materials", s.handleResource(domain.ResourceMaterials)).Methods(http.MethodGet)

	r := s.Router.PathPrefix("/v1/reviews").Subrouter()
	r.HandleFunc("/new", s.handleCreateReview).Methods(http.MethodPost)
	r.HandleFunc("", s.handleFindReviews(nil)).Methods(http.MethodGet)
	r.HandleFunc("/course/{courseId}", s.handleFindReviews(func(v map[string]string) domain.ReviewFilter {
		return domain.ReviewFilter{Course: v["courseId"]}
	})).Methods(http.MethodGet)
	r.HandleFunc("/user/{username}", s.handleFindReviews(func(v map[string]string) domain.ReviewFilter {
		return domain.ReviewFilter{User: v["username"]}
	})).Methods(http.MethodGet)
	r.HandleFunc("/creator/{username}", s.handleFindReviews(func(v map[string]string) domain.ReviewFilter {
		return domain.ReviewFilter{Creator: v["username"]}
	})).Methods(http.MethodGet)
	r.HandleFunc("/material/{materialId}", s.handleFindReviews(func(v map[string]string) domain.ReviewFilter {
		return domain.ReviewFilter{Material: v["materialId"]}
	})).Methods(http.MethodGet)
	r.HandleFunc("/remove/{id}", s.handleDeleteReview).Methods(http.MethodDelete)
	r.HandleFunc("/{id}", s.handleGetReview).Methods(http.MethodGet)
	r.HandleFunc("/{id}", s.handleUpdateReview).Methods(http.MethodPut)
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}

func (s *Server) handleCheck(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// fail maps domain errors to status codes; anything unrecognised is a 500.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrConflict):
		writeError(w, http.StatusConflict, err.Error())
	default:
		s.Log.Error("handler failed",
			zap.String("path", r.URL.Path),
			zap.String("request_id", r.Header.Get("X-Request-ID")),
			zap.Error(err),
		)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func decodeBody(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errors.Join(domain.ErrValidation, err)
	}
	return nil
}
