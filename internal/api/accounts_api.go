package api

import (
	"encoding/json"
	"net/http"

	"venuebook/internal/metrics"
	"venuebook/internal/models"
)

// RegisterRequest is the request body for POST /api/register.
type RegisterRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`
}

// RegisterResponse carries the one-time API token.
type RegisterResponse struct {
	User     *models.User `json:"user"`
	APIToken string       `json:"api_token"`
}

func (s *HTTPServer) handleRegister(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("register")

	var req RegisterRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	user := &models.User{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Address: req.Address,
	}
	token, err := s.accounts.Register(r.Context(), user)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, RegisterResponse{User: user, APIToken: token})
}

func (s *HTTPServer) handleListUsers(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("list_users")
	actor, _ := actorFrom(r)

	users, err := s.accounts.List(r.Context(), actor)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"users": users})
}
