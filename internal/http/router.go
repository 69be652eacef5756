package httpapi

import (
	"net/http"

	"go.uber.org/zap"
)

// Router uses the standard http.ServeMux
type Router struct {
	mux    *http.ServeMux
	logger *zap.Logger
}

func NewRouter(logger *zap.Logger) *Router {
	return &Router{
		mux:    http.NewServeMux(),
		logger: logger,
	}
}

func (r *Router) Handle(pattern string, h http.HandlerFunc) {
	r.mux.HandleFunc(pattern, h)
}

// HandleHandler registers an http.Handler (middleware-wrapped routes)
func (r *Router) HandleHandler(pattern string, h http.Handler) {
	r.mux.Handle(pattern, h)
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// RegisterHealthRoutes liveness check
func (r *Router) RegisterHealthRoutes() {
	r.Handle("/health", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, Ok(map[string]any{"status": "ok"}))
	})
}

// RegisterAuthRoutes operator login and refresh; always public.
func (r *Router) RegisterAuthRoutes(a *AuthHandler) {
	r.Handle("/auth/login", a.Login)
	r.Handle("/auth/refresh", a.Refresh)
}

// RegisterContractRoutes the properties/members/payments REST contract served
// by the local backend. protect wraps every route.
func (r *Router) RegisterContractRoutes(c *ContractHandler, protect func(http.Handler) http.Handler) {
	protect = orPassThrough(protect)

	// properties
	r.HandleHandler("/properties", protect(http.HandlerFunc(c.Properties)))
	r.HandleHandler("/properties/", protect(http.HandlerFunc(c.Properties)))

	// members
	r.HandleHandler("/members", protect(http.HandlerFunc(c.Members)))
	r.HandleHandler("/members/", protect(http.HandlerFunc(c.Members)))

	// payments
	r.HandleHandler("/payments", protect(http.HandlerFunc(c.Payments)))
	r.HandleHandler("/payments/", protect(http.HandlerFunc(c.Payments)))
}

// RegisterAppRoutes hierarchy, roster, payment and report routes
func (r *Router) RegisterAppRoutes(a *AppHandler, protect func(http.Handler) http.Handler) {
	protect = orPassThrough(protect)

	r.HandleHandler(appProperties, protect(http.HandlerFunc(a.Properties)))
	r.HandleHandler(appProperties+"/", protect(http.HandlerFunc(a.Properties)))

	r.HandleHandler(appMembers, protect(http.HandlerFunc(a.Members)))
	r.HandleHandler(appMembers+"/", protect(http.HandlerFunc(a.Members)))

	r.HandleHandler(appPayments, protect(http.HandlerFunc(a.Payments)))
	r.HandleHandler(appPayments+"/", protect(http.HandlerFunc(a.Payments)))

	r.HandleHandler(appOccupancySync, protect(http.HandlerFunc(a.SyncOccupancy)))
}

// RegisterWizardRoutes draft state and actions
func (r *Router) RegisterWizardRoutes(h *WizardHandler, protect func(http.Handler) http.Handler) {
	protect = orPassThrough(protect)

	r.HandleHandler(appWizard, protect(http.HandlerFunc(h.State)))
	r.HandleHandler(appWizard+"/", protect(http.HandlerFunc(h.Action)))
}

// RegisterSessionRoutes upstream login/logout for the remote backend
func (r *Router) RegisterSessionRoutes(s *SessionHandler, protect func(http.Handler) http.Handler) {
	protect = orPassThrough(protect)

	r.HandleHandler(appSessionLogin, protect(http.HandlerFunc(s.Login)))
	r.HandleHandler(appSessionLogout, protect(http.HandlerFunc(s.Logout)))
}

func orPassThrough(protect func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	if protect == nil {
		return func(h http.Handler) http.Handler { return h }
	}
	return protect
}
