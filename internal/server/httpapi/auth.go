package httpapi

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/cuxvas/peliculas/internal/common"
	"github.com/cuxvas/peliculas/internal/server/auth"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	TokenType string    `json:"token_type"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
	Roles     []string  `json:"roles,omitempty"`
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		s.writeError(w, r, fmt.Errorf("email and password are required: %w", common.ErrorValidation))
		return
	}

	tok, err := s.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{
		Token:     tok.Raw,
		TokenType: "Bearer",
		IssuedAt:  tok.IssuedAt,
		ExpiresAt: tok.ExpiresAt,
		Roles:     tok.Roles,
	})
}

func (s *Server) me(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "missing token")
		return
	}

	current, err := s.users.Me(r.Context(), p.ID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, current)
}
