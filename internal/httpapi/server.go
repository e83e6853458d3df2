// Package httpapi is the cloud service's HTTP surface. Handlers are
// deliberately thin: validate, call into the queue/storage core, map
// the result or its error kind onto a status code.
package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"inksight/internal/config"
	"inksight/internal/jobqueue"
	"inksight/internal/ratelimit"
	"inksight/internal/storage"
	"inksight/internal/telemetry/health"
	"inksight/internal/telemetry/logging"
	"inksight/internal/telemetry/metrics"
)

// Version is reported by the root and health endpoints.
const Version = "1.0.0"

// Server wires the request surface to the job queue and tenant storage.
type Server struct {
	cfg       config.CloudConfig
	queue     *jobqueue.Queue
	store     *storage.Store
	limiter   *ratelimit.TenantLimiter
	metrics   *metrics.AppMetrics
	log       logging.Logger
	health    *health.Evaluator
	validKeys map[string]struct{}
}

// NewServer builds a Server. limiter, m, and logger may be nil; nil
// disables rate limiting and metrics, and logging falls back to the
// default slog logger.
func NewServer(cfg config.CloudConfig, queue *jobqueue.Queue, store *storage.Store,
	limiter *ratelimit.TenantLimiter, m *metrics.AppMetrics, logger logging.Logger) *Server {

	s := &Server{
		cfg:       cfg,
		queue:     queue,
		store:     store,
		limiter:   limiter,
		metrics:   m,
		log:       logger,
		validKeys: cfg.ValidAPIKeys(),
	}
	if s.log == nil {
		s.log = logging.New(nil)
	}
	s.health = health.NewEvaluator(2*time.Second,
		health.ProbeFunc(s.storageProbe),
	)
	return s
}

// Handler returns the fully routed handler, CORS-wrapped.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.instrument("/", s.handleRoot))
	mux.HandleFunc("GET /health", s.instrument("/health", s.handleHealth))

	mux.HandleFunc("POST /transform", s.instrument("/transform", s.protected("/transform", s.handleTransform)))
	mux.HandleFunc("GET /status/{job_id}", s.instrument("/status", s.protected("/status", s.handleStatus)))
	mux.HandleFunc("GET /download/{artifact}", s.instrument("/download", s.protected("/download", s.handleDownload)))
	mux.HandleFunc("GET /transforms", s.instrument("/transforms", s.protected("/transforms", s.handleList)))

	return s.cors(mux)
}

// tenantHandler is a handler that runs after authentication resolved
// the tenant id.
type tenantHandler func(w http.ResponseWriter, r *http.Request, tenantID string)

// protected chains authentication and per-tenant rate limiting in front
// of h.
func (s *Server) protected(route string, h tenantHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenantID, err := s.authenticate(r)
		if err != nil {
			writeError(w, err)
			return
		}

		if s.limiter != nil {
			if retryAfter, ok := s.limiter.Allow(tenantID); !ok {
				if s.metrics != nil {
					s.metrics.RateLimited.Inc(1, route)
				}
				w.Header().Set("Retry-After", strconv.Itoa(int(retryAfter.Seconds())+1))
				writeJSON(w, http.StatusTooManyRequests, errorBody{Detail: "rate limit exceeded"})
				return
			}
		}

		h(w, r, tenantID)
	}
}

// instrument counts the request into the route/status metric.
func (s *Server) instrument(route string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		h(rec, r)
		if s.metrics != nil {
			s.metrics.HTTPRequests.Inc(1, route, strconv.Itoa(rec.status))
		}
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// cors applies the configured allowed origins and answers preflight
// requests.
func (s *Server) cors(next http.Handler) http.Handler {
	origins := s.cfg.CORSOriginList()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" {
			for _, o := range origins {
				if o == "*" || o == origin {
					w.Header().Set("Access-Control-Allow-Origin", o)
					w.Header().Set("Access-Control-Allow-Headers", "Content-Type, "+APIKeyHeader)
					w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
					break
				}
			}
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) storageProbe(ctx context.Context) health.ProbeResult {
	pr := health.ProbeResult{Name: "storage", Status: health.StatusHealthy}
	if err := s.store.Writable(); err != nil {
		pr.Status = health.StatusUnhealthy
		pr.Detail = err.Error()
	}
	return pr
}

// ListenAndServe runs the server until ctx is canceled, then shuts down
// gracefully: in-flight requests finish, and the queue's active job is
// left to the queue's own context.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler: s.Handler(),
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
