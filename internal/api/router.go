package api

import (
	"net/http"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/portal-acara/server/internal/api/handlers"
	"github.com/portal-acara/server/internal/api/middleware"
	"github.com/portal-acara/server/internal/audit"
	"github.com/portal-acara/server/internal/auth"
	"github.com/portal-acara/server/internal/config"
	"github.com/portal-acara/server/internal/domain/approval"
	"github.com/portal-acara/server/internal/domain/bookmarks"
	"github.com/portal-acara/server/internal/domain/categories"
	"github.com/portal-acara/server/internal/domain/events"
	"github.com/portal-acara/server/internal/domain/organizers"
	"github.com/portal-acara/server/internal/domain/reporting"
	"github.com/portal-acara/server/internal/domain/users"
	"github.com/portal-acara/server/internal/metrics"
	"github.com/portal-acara/server/internal/storage"
)

// NewRouter assembles the HTTP surface from already-built dependencies so
// the same wiring serves both the server command and handler tests.
func NewRouter(cfg config.Config, logger zerolog.Logger, pool *pgxpool.Pool, repo storage.Repository, blobs handlers.BlobStore) http.Handler {
	env := cfg.Environment

	tokens := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTExpiry, cfg.Auth.JWTIssuer)
	auditLogger := audit.NewLogger(logger)
	gate := approval.NewGate(repo.Organizers())

	usersService := users.NewService(repo.Users(), logger)
	organizersService := organizers.NewService(repo.Organizers(), auditLogger, logger)
	eventsService := events.NewService(repo.Events(), repo.Organizers(), gate, cfg.Campus.LocationKeywords, logger)
	adminEvents := events.NewAdminService(repo.Events(), blobs, auditLogger, logger)
	bookmarksService := bookmarks.NewService(repo.Bookmarks(), logger)
	categoriesService := categories.NewService(repo.Categories(), logger)
	reportingService := reporting.NewService(repo.Reporting(), logger)

	assets := handlers.AssetURLs(blobs)

	authHandler := handlers.NewAuthHandler(usersService, tokens, gate, env)
	publicEvents := handlers.NewPublicEventsHandler(eventsService, assets, env)
	submissions := handlers.NewSubmissionsHandler(organizersService, eventsService, blobs, env)
	bookmarksHandler := handlers.NewBookmarksHandler(bookmarksService, assets, env)
	categoriesHandler := handlers.NewCategoriesHandler(categoriesService, env)
	adminReview := handlers.NewAdminReviewHandler(organizersService, adminEvents, assets, env)
	adminEventsHandler := handlers.NewAdminEventsHandler(adminEvents, assets, env)
	dashboard := handlers.NewDashboardHandler(reportingService, env)

	bearer := middleware.BearerAuth(tokens, env)
	limit := middleware.RateLimit(cfg.RateLimit)
	userTier := middleware.WithRateLimitTierHandler(middleware.TierUser)
	loginTier := middleware.WithRateLimitTierHandler(middleware.TierLogin)

	// The tier must be in context before the limiter reads it.
	public := limit
	login := func(h http.Handler) http.Handler {
		return loginTier(limit(h))
	}
	user := func(h http.Handler) http.Handler {
		return bearer(userTier(limit(h)))
	}
	admin := func(h http.Handler) http.Handler {
		return bearer(middleware.RequireAdmin(env)(userTier(limit(h))))
	}

	mux := http.NewServeMux()

	mux.Handle("/healthz", handlers.Healthz())
	mux.Handle("/readyz", handlers.Readyz(pool))
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	// Public browsing.
	mux.Handle("GET /acara", public(http.HandlerFunc(publicEvents.List)))
	mux.Handle("GET /acara/{slug}", public(http.HandlerFunc(publicEvents.Get)))
	mux.Handle("GET /kategori", public(http.HandlerFunc(categoriesHandler.List)))

	// Accounts.
	mux.Handle("POST /register", public(http.HandlerFunc(authHandler.Register)))
	mux.Handle("POST /login", login(http.HandlerFunc(authHandler.Login)))
	mux.Handle("GET /user", user(http.HandlerFunc(authHandler.Me)))
	mux.Handle("PUT /user/profile", user(http.HandlerFunc(authHandler.UpdateProfile)))

	// Submissions.
	mux.Handle("/submission/penyelenggara", user(methodMux(map[string]http.Handler{
		http.MethodGet:  http.HandlerFunc(submissions.OrganizerStatus),
		http.MethodPost: http.HandlerFunc(submissions.SubmitOrganizer),
	})))
	mux.Handle("/submission/acara", user(methodMux(map[string]http.Handler{
		http.MethodGet:  http.HandlerFunc(submissions.OwnEvents),
		http.MethodPost: http.HandlerFunc(submissions.SubmitEvent),
	})))
	mux.Handle("DELETE /submission/acara/{id}", user(http.HandlerFunc(submissions.WithdrawEvent)))

	// Saved events.
	mux.Handle("GET /event-tersimpan", user(http.HandlerFunc(bookmarksHandler.List)))
	mux.Handle("POST /event-tersimpan", user(http.HandlerFunc(bookmarksHandler.Save)))
	mux.Handle("DELETE /event-tersimpan/{eventId}", user(http.HandlerFunc(bookmarksHandler.Remove)))
	mux.Handle("GET /event-tersimpan/check/{eventId}", user(http.HandlerFunc(bookmarksHandler.Check)))

	// Admin review queues.
	mux.Handle("GET /admin/validasi/penyelenggara", admin(http.HandlerFunc(adminReview.PendingOrganizers)))
	mux.Handle("POST /admin/validasi/penyelenggara/{id}", admin(http.HandlerFunc(adminReview.DecideOrganizer)))
	mux.Handle("GET /admin/validasi/acara", admin(http.HandlerFunc(adminReview.PendingEvents)))
	mux.Handle("POST /admin/validasi/acara/{id}", admin(http.HandlerFunc(adminReview.DecideEvent)))

	// Admin event management.
	mux.Handle("GET /admin/manajemen-acara", admin(http.HandlerFunc(adminEventsHandler.List)))
	mux.Handle("POST /admin/manajemen-acara/{id}/batalkan", admin(http.HandlerFunc(adminEventsHandler.Retract)))
	mux.Handle("DELETE /admin/manajemen-acara/{id}", admin(http.HandlerFunc(adminEventsHandler.Delete)))

	// Admin dashboard and vocabulary.
	mux.Handle("GET /admin/dashboard-stats", admin(http.HandlerFunc(dashboard.Stats)))
	mux.Handle("/admin/kategori", admin(methodMux(map[string]http.Handler{
		http.MethodGet:  http.HandlerFunc(categoriesHandler.List),
		http.MethodPost: http.HandlerFunc(categoriesHandler.Create),
	})))
	mux.Handle("PUT /admin/kategori/{id}", admin(http.HandlerFunc(categoriesHandler.Update)))
	mux.Handle("DELETE /admin/kategori/{id}", admin(http.HandlerFunc(categoriesHandler.Delete)))

	var handler http.Handler = mux
	handler = middleware.Metrics()(handler)
	handler = middleware.CORS(cfg.CORS, logger)(handler)
	handler = middleware.RequestLogging(logger)(handler)
	handler = middleware.CorrelationID(logger)(handler)
	return handler
}

func methodMux(handlers map[string]http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if handler, ok := handlers[r.Method]; ok {
			handler.ServeHTTP(w, r)
			return
		}
		w.Header().Set("Allow", allowedMethods(handlers))
		w.WriteHeader(http.StatusMethodNotAllowed)
	})
}

func allowedMethods(handlers map[string]http.Handler) string {
	methods := make([]string, 0, len(handlers))
	for method := range handlers {
		methods = append(methods, method)
	}
	sort.Strings(methods)
	return strings.Join(methods, ", ")
}
