package httpapi

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/example/courses-service/internal/domain"
	"github.com/example/courses-service/internal/usecase"
)

func (s *Server) handleListCourses(w http.ResponseWriter, r *http.Request) {
	courses, err := s.UC.ListCourses.Execute(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, courses)
}

func (s *Server) handleCreateCourse(w http.ResponseWriter, r *http.Request) {
	var in usecase.CourseInput
	if err := decodeBody(r, &in); err != nil {
		s.fail(w, r, err)
		return
	}
	if in.Creator == "" {
		if c := claimsFrom(r.Context()); c != nil {
			in.Creator = c.Username
		}
	}
	c, err := s.UC.CreateCourse.Execute(r.Context(), in)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (s *Server) handleGetCourse(w http.ResponseWriter, r *http.Request) {
	c, err := s.UC.GetCourse.Execute(r.Context(), mux.Vars(r)["courseId"])
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleUpdateCourse(w http.ResponseWriter, r *http.Request) {
	var in usecase.CourseInput
	if err := decodeBody(r, &in); err != nil {
		s.fail(w, r, err)
		return
	}
	c, err := s.UC.UpdateCourse.Execute(r.Context(), mux.Vars(r)["courseId"], in)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleDeleteCourse(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["courseId"]
	if err := s.UC.DeleteCourse.Execute(r.Context(), id); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": id})
}

// handleResource answers 202 with an empty list while the lists are being
// fetched from the learning service; the client polls again.
func (s *Server) handleResource(kind domain.ResourceKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ids, ok := s.UC.Resolve.Execute(r.Context(), mux.Vars(r)["courseId"], kind)
		if !ok {
			writeJSON(w, http.StatusAccepted, []string{})
			return
		}
		writeJSON(w, http.StatusOK, ids)
	}
}
