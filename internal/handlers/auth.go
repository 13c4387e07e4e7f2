package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/teedon/cooperative-manager-sub000/internal/auth"
	"github.com/teedon/cooperative-manager-sub000/internal/httputil"
)

// AuthHandler serves administrator registration and login.
type AuthHandler struct {
	Authenticator *auth.PasswordAuthenticator
	JWTManager    *auth.JWTManager
}

type registerRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token  string `json:"token"`
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
}

// Register creates an administrator account and returns a session token.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := httputil.Decode(r, &req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Email == "" || req.Name == "" {
		httputil.Error(w, http.StatusBadRequest, "email and name are required")
		return
	}

	user, err := h.Authenticator.Register(r.Context(), req.Email, req.Name, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrWeakPassword):
			httputil.Error(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, auth.ErrEmailExists):
			httputil.Error(w, http.StatusConflict, err.Error())
		default:
			slog.Error("register failed", "error", err)
			httputil.Error(w, http.StatusInternalServerError, "registration failed")
		}
		return
	}

	token, err := h.JWTManager.Generate(user)
	if err != nil {
		slog.Error("token generation failed", "error", err)
		httputil.Error(w, http.StatusInternalServerError, "registration failed")
		return
	}

	httputil.JSON(w, http.StatusCreated, authResponse{
		Token:  token,
		UserID: user.ID,
		Email:  user.Email,
		Name:   user.Name,
	})
}

// Login authenticates an administrator and returns a session token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httputil.Decode(r, &req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.Authenticator.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		httputil.Error(w, http.StatusUnauthorized, auth.ErrInvalidCredentials.Error())
		return
	}

	token, err := h.JWTManager.Generate(user)
	if err != nil {
		slog.Error("token generation failed", "error", err)
		httputil.Error(w, http.StatusInternalServerError, "login failed")
		return
	}

	httputil.JSON(w, http.StatusOK, authResponse{
		Token:  token,
		UserID: user.ID,
		Email:  user.Email,
		Name:   user.Name,
	})
}
