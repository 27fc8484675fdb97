package web

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vbonduro/kitchzone/internal/domain"
	"github.com/vbonduro/kitchzone/internal/remote"
	"github.com/vbonduro/kitchzone/internal/service"
)

// FileOpener serves files stored by the local file backend.
type FileOpener interface {
	Open(ctx context.Context, storedPath string) (io.ReadCloser, string, error)
}

// Services bundles everything the handlers call.
type Services struct {
	Router  *service.Router
	Images  *service.ImageService
	Zones   *service.ZoneService
	Items   *service.ItemService
	Reorder *service.ReorderService
}

type Server struct {
	svc    Services
	auth   remote.Authenticator
	files  FileOpener
	logger *slog.Logger
	mux    chi.Router
	// ratePerMin limits API requests per client and endpoint; 0 disables it.
	ratePerMin int
}

// NewServer builds the API server. files may be nil when uploads are not kept
// on this host.
func NewServer(svc Services, auth remote.Authenticator, files FileOpener, ratePerMin int, logger *slog.Logger) *Server {
	s := &Server{
		svc:        svc,
		auth:       auth,
		files:      files,
		logger:     logger,
		mux:        chi.NewRouter(),
		ratePerMin: ratePerMin,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.mux.Use(middleware.RequestID)
	s.mux.Use(middleware.RealIP)
	s.mux.Use(middleware.Recoverer)

	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	s.mux.Handle("/metrics", promhttp.Handler())
	if s.files != nil {
		s.mux.With(s.authenticate).Get("/files/*", s.handleGetFile)
	}

	s.mux.Route("/api", func(r chi.Router) {
		r.Use(s.authenticate)
		if s.ratePerMin > 0 {
			r.Use(httprate.Limit(
				s.ratePerMin,
				time.Minute,
				httprate.WithKeyFuncs(httprate.KeyByIP, httprate.KeyByEndpoint),
			))
		}

		r.Get("/availability", s.handleGetAvailability)
		r.Post("/availability/retry", s.handleRetryAvailability)
		r.Post("/session/end", s.handleEndSession)

		r.Get("/images", s.handleListImages)
		r.Post("/images", s.handleUploadImage)
		r.Delete("/images/{id}", s.handleDeleteImage)

		r.Get("/zones", s.handleListZones)
		r.Post("/zones", s.handleCreateZone)
		r.Put("/zones/{id}", s.handleUpdateZone)
		r.Delete("/zones/{id}", s.handleDeleteZone)

		r.Get("/items", s.handleListItems)
		r.Post("/items", s.handleCreateItem)
		r.Put("/items/{id}", s.handleUpdateItem)
		r.Delete("/items/{id}", s.handleDeleteItem)

		r.Get("/stats", s.handleGetStats)
		r.Get("/reorder", s.handleListReorder)
		r.Post("/reorder/restock", s.handleRestock)
	})
}

type userKey struct{}

// authenticate resolves the bearer token to a user and stores both in the
// request context.
func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || token == "" {
			writeError(w, http.StatusUnauthorized, "sign in required", nil)
			return
		}
		user, err := s.auth.CurrentUser(r.Context(), token)
		if err != nil {
			s.logger.Warn("authentication failed", "kind", remote.KindOf(err).String(), "error", err)
			writeError(w, http.StatusUnauthorized, "sign in required", nil)
			return
		}
		ctx := remote.WithToken(r.Context(), token)
		ctx = context.WithValue(ctx, userKey{}, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// userID returns the signed-in user's id, or "" outside authenticate.
func userID(r *http.Request) string {
	user, _ := r.Context().Value(userKey{}).(domain.User)
	return user.ID
}

// securityHeaders adds defensive HTTP response headers to every response.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		h.Set("Content-Security-Policy", "default-src 'none'; img-src 'self'; frame-ancestors 'none'")
		next.ServeHTTP(w, r)
	})
}

// statusRecorder wraps http.ResponseWriter to capture the written status code.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func requestLogger(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	requestLogger(s.logger, securityHeaders(s.mux)).ServeHTTP(w, r)
}

func (s *Server) ListenAndServe(addr string) error {
	s.logger.Info("starting server", "addr", addr)
	srv := &http.Server{
		Addr:         addr,
		Handler:      s,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	return srv.ListenAndServe()
}
