package httpx

import (
	"context"
	"github.com/ariefcatur/go-storefront/internal/auth"
	"github.com/go-chi/chi/v5"
	"net/http"
	"time"
)

type authHandler struct {
	svc Authenticator
}

type sessionResp struct {
	Message string `json:"message"`
	auth.Session
}

func (h *authHandler) register(r chi.Router) {
	r.Post("/auth/register", h.signUp)
	r.Post("/auth/login", h.login)
}

func (h *authHandler) signUp(w http.ResponseWriter, r *http.Request) {
	var in auth.RegisterInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	s, err := h.svc.Register(ctx, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, sessionResp{Message: "User registered successfully", Session: s})
}

func (h *authHandler) login(w http.ResponseWriter, r *http.Request) {
	var in auth.LoginInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	s, err := h.svc.Login(ctx, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionResp{Message: "Login successful", Session: s})
}
