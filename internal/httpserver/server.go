package httpserver

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/whizzzkid/instagram-proxy-api/internal/config"
	"github.com/whizzzkid/instagram-proxy-api/internal/metrics"
	"github.com/whizzzkid/instagram-proxy-api/internal/proxy"
	"github.com/whizzzkid/instagram-proxy-api/internal/telemetry"
)

// Server is the HTTP front of the proxy. Routing order matters: the
// username and tag routes must match before the catch-all passthrough,
// which accepts almost anything.
type Server struct {
	cfg        *config.Config
	service    *proxy.Service
	logger     *slog.Logger
	httpServer *http.Server
}

// NewServer creates the HTTP server around the given pipeline service.
func NewServer(cfg *config.Config, service *proxy.Service, logger *slog.Logger) *Server {
	s := &Server{
		cfg:     cfg,
		service: service,
		logger:  logger,
	}

	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(withLogging(logger))
	r.Use(responseTime)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
	}))

	r.Get("/favicon.ico", handleNoContent)
	r.Get("/apple-touch-icon.png", handleNoContent)
	r.Get("/health", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.With(metrics.Middleware("/graphql/query/")).
		Get("/graphql/query/", s.handleGraphQL)
	r.With(metrics.Middleware("/explore/tags/{tag}/media/")).
		Get("/explore/tags/{tag}/media/", s.handleTagMedia)
	r.With(metrics.Middleware("/{username}/media/")).
		Get("/{username}/media/", s.handleUserMedia)

	r.NotFound(metrics.Middleware("/*")(http.HandlerFunc(s.handlePassthrough)).ServeHTTP)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Start begins listening for HTTP requests. It blocks until the server is
// shut down or an error occurs.
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// Handler returns the root handler, for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

func handleNoContent(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleUserMedia(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	result, err := s.service.UserMedia(r.Context(), s.descriptor(r), username)
	s.respond(w, r, result, err)
}

func (s *Server) handleTagMedia(w http.ResponseWriter, r *http.Request) {
	tag := chi.URLParam(r, "tag")
	result, err := s.service.TagMedia(r.Context(), s.descriptor(r), tag)
	s.respond(w, r, result, err)
}

// handleGraphQL serves /graphql/query/ for either a resolved user id or a
// tag name.
func (s *Server) handleGraphQL(w http.ResponseWriter, r *http.Request) {
	result, err := s.service.GraphQL(r.Context(), s.descriptor(r))
	s.respond(w, r, result, err)
}

// handlePassthrough is the catch-all. Advanced requests (__a=1, non-root
// path) are forwarded to the upstream verbatim; everything else gets a
// not-found envelope pointing at the project repository.
func (s *Server) handlePassthrough(w http.ResponseWriter, r *http.Request) {
	req := s.descriptor(r)

	if r.Method != http.MethodGet || req.Path == "/" || req.Query.Get("__a") != "1" {
		e := &proxy.Error{
			Code: proxy.CodeNotFound,
			Desc: "nothing to serve here",
			Info: s.cfg.RepoURL,
		}
		writeJSON(w, r, e.Code.HTTPStatus(), e)
		return
	}

	result, err := s.service.Passthrough(r.Context(), req)
	s.respond(w, r, result, err)
}

// descriptor captures the inbound call as the pipeline sees it. The link
// host prefers the configured public hostname over the Host header.
func (s *Server) descriptor(r *http.Request) proxy.Request {
	host := s.cfg.Hostname
	if host == "" {
		host = r.Host
	}
	return proxy.Request{
		Scheme:  s.cfg.Protocol,
		Host:    host,
		Path:    r.URL.Path,
		Query:   r.URL.Query(),
		Referer: r.Header.Get("Referer"),
	}
}

func (s *Server) respond(w http.ResponseWriter, r *http.Request, result any, err error) {
	if err != nil {
		e := proxy.Classify(err, s.cfg.Debug)
		if e.Code == proxy.CodeFetchFailed {
			telemetry.CaptureError(err, map[string]string{"path": r.URL.Path})
		}
		writeJSON(w, r, e.Code.HTTPStatus(), e)
		return
	}
	writeJSON(w, r, http.StatusOK, result)
}
