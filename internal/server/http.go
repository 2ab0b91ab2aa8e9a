// Package server exposes extraction and the asset register over HTTP and gRPC.
package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"

	"github.com/joseph-ayodele/invoice-assets/internal/common"
	"github.com/joseph-ayodele/invoice-assets/internal/pipeline"
	"github.com/joseph-ayodele/invoice-assets/internal/repository"
)

// Scanner parses an uploaded document without storing it.
type Scanner interface {
	Scan(ctx context.Context, path string) (pipeline.ScanResult, error)
}

// Exporter renders the asset register workbook.
type Exporter interface {
	ExportAssetsXLSX(ctx context.Context) ([]byte, error)
}

// HealthChecker pings the backing store.
type HealthChecker interface {
	HealthCheck(ctx context.Context, timeout time.Duration) error
}

type HTTPConfig struct {
	RateEvery      time.Duration // zero disables rate limiting
	RateBurst      int
	MaxUploadBytes int64
	HealthTimeout  time.Duration
}

// Deps are the collaborators behind the HTTP routes. Nil repositories leave
// their routes answering 503.
type Deps struct {
	Scanner   Scanner
	Registrar pipeline.Registrar
	Bills     repository.BillRepository
	Assets    repository.AssetRepository
	Exporter  Exporter
	Health    HealthChecker
}

type API struct {
	cfg    HTTPConfig
	deps   Deps
	logger *slog.Logger
}

func NewAPI(cfg HTTPConfig, deps Deps, logger *slog.Logger) *API {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 32 << 20
	}
	if cfg.HealthTimeout <= 0 {
		cfg.HealthTimeout = 2 * time.Second
	}
	return &API{cfg: cfg, deps: deps, logger: logger}
}

// Routes builds the chi router.
func (a *API) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(a.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", a.healthz)

	r.Group(func(r chi.Router) {
		r.Use(rateLimitMiddleware(a.cfg.RateEvery, a.cfg.RateBurst))

		r.Post("/scan", a.scan)
		r.Post("/extract", a.extract)
		r.Post("/bills", a.registerBill)
		r.Get("/bills/{id}/assets", a.billAssets)
		r.Get("/assets/{assetID}", a.getAsset)
		r.Patch("/assets/{assetID}/status", a.updateAssetStatus)
		r.Get("/export.xlsx", a.exportXLSX)
	})
	return r
}

// rateLimitMiddleware shares one token bucket across all callers.
func rateLimitMiddleware(every time.Duration, burst int) func(http.Handler) http.Handler {
	if every <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	if burst < 1 {
		burst = 1
	}
	limiter := rate.NewLimiter(rate.Every(every), burst)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (a *API) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		reqID := middleware.GetReqID(r.Context())
		w.Header().Set("X-Request-Id", reqID)
		log := a.logger.With("req_id", reqID)
		ctx := common.WithLogger(common.WithRequestID(r.Context(), reqID), log)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r.WithContext(ctx))

		log.Info("http.request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
