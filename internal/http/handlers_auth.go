package http

import (
	"net/http"

	"fincontrol/internal/log"
	"fincontrol/internal/services"
)

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err, "")
		return
	}
	res, err := s.svc.Auth.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		s.writeError(w, r, err, "")
		return
	}
	s.logger.InfoContext(r.Context(), "User registered", log.FieldUserID, res.User.ID)
	writeJSON(w, http.StatusOK, toAuthResponse(res))
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err, "")
		return
	}
	res, err := s.svc.Auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		s.writeError(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, toAuthResponse(res))
}

func toAuthResponse(res services.AuthResult) authResponse {
	return authResponse{Token: res.Token, User: toUserResponse(res.User)}
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	u, err := s.svc.Auth.Profile(r.Context(), userIDFrom(r.Context()))
	if err != nil {
		s.writeError(w, r, err, detailUserNotFound)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(u))
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err, "")
		return
	}
	u, err := s.svc.Auth.UpdateProfile(r.Context(), userIDFrom(r.Context()), req.Name)
	if err != nil {
		s.writeError(w, r, err, detailUserNotFound)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(u))
}
