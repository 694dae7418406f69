package auth

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/wolfman30/leadcapture-api/pkg/logging"
)

// LoginRequest is the body of POST /api/auth/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Handler serves the admin login route.
type Handler struct {
	issuer *Issuer
	logger *logging.Logger
}

// NewHandler creates a login handler.
func NewHandler(issuer *Issuer, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{issuer: issuer, logger: logger}
}

// Login handles POST /api/auth/login requests
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 16<<10)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Invalid request body"})
		return
	}
	if req.Username == "" || req.Password == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Username and password are required"})
		return
	}

	token, err := h.issuer.Login(req.Username, req.Password)
	switch {
	case errors.Is(err, ErrInvalidCredentials):
		h.logger.Warn("admin login rejected", "username", req.Username, "remote_ip", r.RemoteAddr)
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Invalid credentials"})
		return
	case errors.Is(err, ErrLoginDisabled):
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Admin login is not configured"})
		return
	case err != nil:
		h.logger.Error("failed to issue admin token", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "Something broke!"})
		return
	}

	h.logger.Info("admin login", "username", req.Username)
	writeJSON(w, http.StatusOK, token)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
