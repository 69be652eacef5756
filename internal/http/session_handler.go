package httpapi

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

const (
	appSession       = appPrefix + "/session"
	appSessionLogin  = appSession + "/login"
	appSessionLogout = appSession + "/logout"
)

// UpstreamSession the token session held against the remote backend.
type UpstreamSession interface {
	Login(ctx context.Context, username, password string) error
	Logout(ctx context.Context)
}

// SessionHandler lets the operator sign the service in and out of the remote
// backend without a restart.
type SessionHandler struct {
	session UpstreamSession
	reload  func(ctx context.Context)
	logger  *zap.Logger
}

// NewSessionHandler creates a SessionHandler. reload runs after a successful
// login and may be nil.
func NewSessionHandler(session UpstreamSession, reload func(ctx context.Context), logger *zap.Logger) *SessionHandler {
	return &SessionHandler{session: session, reload: reload, logger: logger}
}

// Login POST /app/api/v1/session/login
func (h *SessionHandler) Login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := readBodyJSON(r, maxBodyBytes, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid body"))
		return
	}
	username := strings.TrimSpace(req.Username)
	if username == "" || req.Password == "" {
		writeJSON(w, http.StatusBadRequest, Fail("username and password are required"))
		return
	}

	ctx := r.Context()
	if err := h.session.Login(ctx, username, req.Password); err != nil {
		h.logger.Warn("Upstream login failed", zap.String("username", username), zap.Error(err))
		writeFail(w, err)
		return
	}
	if h.reload != nil {
		h.reload(ctx)
	}
	h.logger.Info("Upstream session started", zap.String("username", username))
	writeJSON(w, http.StatusOK, Ok(map[string]any{"username": username}))
}

// Logout POST /app/api/v1/session/logout
func (h *SessionHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	h.session.Logout(r.Context())
	h.logger.Info("Upstream session cleared")
	writeJSON(w, http.StatusOK, Ok[any](nil))
}
