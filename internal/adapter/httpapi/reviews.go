package httpapi

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/example/courses-service/internal/domain"
	"github.com/example/courses-service/internal/usecase"
)

func username(r *http.Request) string {
	if c := claimsFrom(r.Context()); c != nil {
		return c.Username
	}
	return ""
}

func (s *Server) handleCreateReview(w http.ResponseWriter, r *http.Request) {
	var in usecase.ReviewInput
	if err := decodeBody(r, &in); err != nil {
		s.fail(w, r, err)
		return
	}
	rv, err := s.UC.CreateReview.Execute(r.Context(), username(r), in)
	if err != nil && rv == nil {
		s.fail(w, r, err)
		return
	}
	if err != nil {
		// stored; only the score refresh failed
		s.Log.Warn("review created without score refresh", zap.Error(err))
	}
	writeJSON(w, http.StatusCreated, rv)
}

func (s *Server) handleGetReview(w http.ResponseWriter, r *http.Request) {
	rv, err := s.UC.GetReview.Execute(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rv)
}

func (s *Server) handleFindReviews(filter func(vars map[string]string) domain.ReviewFilter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var f domain.ReviewFilter
		if filter != nil {
			f = filter(mux.Vars(r))
		}
		reviews, err := s.UC.FindReviews.Execute(r.Context(), f)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, reviews)
	}
}

func (s *Server) handleUpdateReview(w http.ResponseWriter, r *http.Request) {
	var in usecase.ReviewInput
	if err := decodeBody(r, &in); err != nil {
		s.fail(w, r, err)
		return
	}
	rv, err := s.UC.UpdateReview.Execute(r.Context(), mux.Vars(r)["id"], username(r), in)
	if err != nil && rv == nil {
		s.fail(w, r, err)
		return
	}
	if err != nil {
		s.Log.Warn("review updated without score refresh", zap.Error(err))
	}
	writeJSON(w, http.StatusOK, rv)
}

func (s *Server) handleDeleteReview(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := s.UC.DeleteReview.Execute(r.Context(), id); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": id})
}
