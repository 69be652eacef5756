package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"propertypal/internal/auth"

	"go.uber.org/zap"
)

// AuthHandler issues operator tokens. Bodies follow the REST contract
// ({"message": ...} on error) in both backend modes.
type AuthHandler struct {
	operator *auth.Operator
	logger   *zap.Logger
}

func NewAuthHandler(operator *auth.Operator, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{operator: operator, logger: logger}
}

// Login POST /auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := readBodyJSON(r, maxBodyBytes, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid body")
		return
	}
	pair, err := h.operator.Login(strings.TrimSpace(req.Username), req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			writeMessage(w, http.StatusUnauthorized, err.Error())
			return
		}
		h.logger.Error("Login failed", zap.Error(err))
		writeMessage(w, http.StatusInternalServerError, "failed to issue tokens")
		return
	}
	h.logger.Info("Operator logged in", zap.String("username", req.Username))
	writeJSON(w, http.StatusOK, pair)
}

// Refresh POST /auth/refresh
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		RefreshToken string `json:"refreshToken"`
	}
	if err := readBodyJSON(r, maxBodyBytes, &req); err != nil || req.RefreshToken == "" {
		writeMessage(w, http.StatusBadRequest, "refreshToken is required")
		return
	}
	pair, err := h.operator.Refresh(req.RefreshToken)
	if err != nil {
		writeMessage(w, http.StatusUnauthorized, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, pair)
}
