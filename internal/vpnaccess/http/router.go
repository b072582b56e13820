package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nathanprivate2901-devops/vpn-access-manager/internal/vpnaccess/service"
	"github.com/nathanprivate2901-devops/vpn-access-manager/internal/vpnaccess/store"
	"github.com/nathanprivate2901-devops/vpn-access-manager/pkg/httpx"
	"github.com/nathanprivate2901-devops/vpn-access-manager/pkg/jwtx"
	"github.com/nathanprivate2901-devops/vpn-access-manager/pkg/slogx"

	_ "github.com/nathanprivate2901-devops/vpn-access-manager/api/vpnaccess" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	verifier     jwtx.Verifier
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store       store.Store
	SyncService *service.SyncService
	Scheduler   *service.Scheduler
	UserService *service.UserService
}

func NewRouter(
	verifier jwtx.Verifier,
	buildVersion string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		verifier:     verifier,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerSync()
	r.registerScheduler()
	r.registerUsers()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
	r.Mux.Handle("GET /metrics", promhttp.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			VPN Access Manager API
//	@version		0.1.0
//	@description	Distributes VPN access credentials by reconciling a local user directory
//	@description	against an OpenVPN Access Server running in a container on the same host.
//	@description
//	@description				Accounts in the VPN server only ever change through a sync run or one of
//	@description				the narrow per-user sync endpoints.
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT access token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerSync() {
	h := &SyncHandler{SyncService: r.SyncService}

	// POST /sync/full - strict rate limit (runs shell out to the VPN container)
	securedFull := httpx.Chain(http.HandlerFunc(h.HandleFullSync),
		httpx.AuthnMiddleware(r.verifier),
		httpx.RequireAnyScope("sync:write"),
		httpx.RateLimitBySubject(httpx.StrictLimit),
	)

	// POST /sync/users/{id} - moderate rate limit (single external mutation)
	securedUser := httpx.Chain(http.HandlerFunc(h.HandleSyncUser),
		httpx.AuthnMiddleware(r.verifier),
		httpx.RequireAnyScope("sync:write"),
		httpx.RateLimitBySubject(httpx.ModerateLimit),
	)

	// DELETE /sync/users/{username} - moderate rate limit
	securedRemove := httpx.Chain(http.HandlerFunc(h.HandleRemoveUser),
		httpx.AuthnMiddleware(r.verifier),
		httpx.RequireAnyScope("sync:write"),
		httpx.RateLimitBySubject(httpx.ModerateLimit),
	)

	// GET /sync/status - lenient rate limit (dashboards poll it)
	securedStatus := httpx.Chain(http.HandlerFunc(h.HandleStatus),
		httpx.AuthnMiddleware(r.verifier),
		httpx.RequireAnyScope("sync:read", "sync:write"),
		httpx.RateLimitBySubject(httpx.LenientLimit),
	)

	r.Mux.Handle("POST /v1/sync/full", securedFull)
	r.Mux.Handle("POST /v1/sync/users/{id}", securedUser)
	r.Mux.Handle("DELETE /v1/sync/users/{username}", securedRemove)
	r.Mux.Handle("GET /v1/sync/status", securedStatus)
}

func (r *Router) registerScheduler() {
	h := &SchedulerHandler{Scheduler: r.Scheduler}

	// POST /sync/scheduler - moderate rate limit (start/stop the timer)
	securedControl := httpx.Chain(http.HandlerFunc(h.HandleControl),
		httpx.AuthnMiddleware(r.verifier),
		httpx.RequireAnyScope("sync:write"),
		httpx.RateLimitBySubject(httpx.ModerateLimit),
	)

	// PUT /sync/scheduler/interval - moderate rate limit
	securedInterval := httpx.Chain(http.HandlerFunc(h.HandleSetInterval),
		httpx.AuthnMiddleware(r.verifier),
		httpx.RequireAnyScope("sync:write"),
		httpx.RateLimitBySubject(httpx.ModerateLimit),
	)

	// GET /sync/scheduler and /sync/runs - lenient rate limit
	securedState := httpx.Chain(http.HandlerFunc(h.HandleState),
		httpx.AuthnMiddleware(r.verifier),
		httpx.RequireAnyScope("sync:read", "sync:write"),
		httpx.RateLimitBySubject(httpx.LenientLimit),
	)
	securedHistory := httpx.Chain(http.HandlerFunc(h.HandleHistory),
		httpx.AuthnMiddleware(r.verifier),
		httpx.RequireAnyScope("sync:read", "sync:write"),
		httpx.RateLimitBySubject(httpx.LenientLimit),
	)

	r.Mux.Handle("POST /v1/sync/scheduler", securedControl)
	r.Mux.Handle("PUT /v1/sync/scheduler/interval", securedInterval)
	r.Mux.Handle("GET /v1/sync/scheduler", securedState)
	r.Mux.Handle("GET /v1/sync/runs", securedHistory)
}

func (r *Router) registerUsers() {
	h := &UsersHandler{UserService: r.UserService}

	// POST /v1/users - Create user (requires admin:write) - moderate rate limit
	securedCreate := httpx.Chain(http.HandlerFunc(h.HandleCreate),
		httpx.AuthnMiddleware(r.verifier),
		httpx.RequireAnyScope("admin:write"),
		httpx.RateLimitBySubject(httpx.ModerateLimit),
	)

	// GET /v1/users - List users (requires admin:read) - lenient rate limit
	securedList := httpx.Chain(http.HandlerFunc(h.HandleList),
		httpx.AuthnMiddleware(r.verifier),
		httpx.RequireAnyScope("admin:read", "admin:write"),
		httpx.RateLimitBySubject(httpx.LenientLimit),
	)

	// GET /v1/users/{id} - Fetch user (requires admin:read) - lenient rate limit
	securedGet := httpx.Chain(http.HandlerFunc(h.HandleGet),
		httpx.AuthnMiddleware(r.verifier),
		httpx.RequireAnyScope("admin:read", "admin:write"),
		httpx.RateLimitBySubject(httpx.LenientLimit),
	)

	// Mutations all require admin:write with a moderate rate limit
	securedVerify := httpx.Chain(http.HandlerFunc(h.HandleVerifyEmail),
		httpx.AuthnMiddleware(r.verifier),
		httpx.RequireAnyScope("admin:write"),
		httpx.RateLimitBySubject(httpx.ModerateLimit),
	)
	securedUsername := httpx.Chain(http.HandlerFunc(h.HandleSetUsername),
		httpx.AuthnMiddleware(r.verifier),
		httpx.RequireAnyScope("admin:write"),
		httpx.RateLimitBySubject(httpx.ModerateLimit),
	)
	securedPassword := httpx.Chain(http.HandlerFunc(h.HandleSetPassword),
		httpx.AuthnMiddleware(r.verifier),
		httpx.RequireAnyScope("admin:write"),
		httpx.RateLimitBySubject(httpx.ModerateLimit),
	)
	securedDelete := httpx.Chain(http.HandlerFunc(h.HandleDelete),
		httpx.AuthnMiddleware(r.verifier),
		httpx.RequireAnyScope("admin:write"),
		httpx.RateLimitBySubject(httpx.ModerateLimit),
	)

	r.Mux.Handle("POST /v1/users", securedCreate)
	r.Mux.Handle("GET /v1/users", securedList)
	r.Mux.Handle("GET /v1/users/{id}", securedGet)
	r.Mux.Handle("POST /v1/users/{id}/verify", securedVerify)
	r.Mux.Handle("PUT /v1/users/{id}/username", securedUsername)
	r.Mux.Handle("PUT /v1/users/{id}/password", securedPassword)
	r.Mux.Handle("DELETE /v1/users/{id}", securedDelete)
}

func (r *Router) registerSystem() {
	// Health check endpoints - lenient rate limits (monitoring systems may poll frequently)
	h := &HealthHandler{
		Store:     r.store,
		Version:   r.buildVersion,
		StartedAt: r.startTime,
	}

	r.Mux.Handle("GET /livez",
		httpx.Chain(http.HandlerFunc(h.HandleLivez),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(http.HandlerFunc(h.HandleReadyz),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}
