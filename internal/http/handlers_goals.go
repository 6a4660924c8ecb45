package http

import (
	"net/http"

	"fincontrol/internal/services"
)

func (s *Server) handleListGoals(w http.ResponseWriter, r *http.Request) {
	goals, err := s.svc.Goals.List(r.Context(), userIDFrom(r.Context()))
	if err != nil {
		s.writeError(w, r, err, detailGoalNotFound)
		return
	}
	writeJSON(w, http.StatusOK, mapSlice(goals, toGoalResponse))
}

func (s *Server) handleCreateGoal(w http.ResponseWriter, r *http.Request) {
	var req goalRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err, "")
		return
	}
	g, err := s.svc.Goals.Create(r.Context(), userIDFrom(r.Context()), services.GoalInput{
		Title:    req.Title,
		Target:   *req.Target.value(),
		Deadline: req.Deadline,
	})
	if err != nil {
		s.writeError(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, toGoalResponse(g))
}

func (s *Server) handleUpdateGoal(w http.ResponseWriter, r *http.Request) {
	var req goalPatchRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err, "")
		return
	}
	g, err := s.svc.Goals.Update(r.Context(), userIDFrom(r.Context()), r.PathValue("id"), services.GoalPatch{
		Title:    req.Title,
		Target:   req.Target.value(),
		Current:  req.Current.value(),
		Deadline: req.Deadline,
	})
	if err != nil {
		s.writeError(w, r, err, detailGoalNotFound)
		return
	}
	writeJSON(w, http.StatusOK, toGoalResponse(g))
}

func (s *Server) handleDeleteGoal(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Goals.Delete(r.Context(), userIDFrom(r.Context()), r.PathValue("id")); err != nil {
		s.writeError(w, r, err, detailGoalNotFound)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Meta deletada com sucesso"})
}
