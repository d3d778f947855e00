package router

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"search-settings-service/handlers"
	"search-settings-service/metrics"
	"search-settings-service/services"
)

type Options struct {
	CORSOrigins []string
	Logger      *zap.Logger
}

func NewRouter(svc *services.SettingsService, opts Options) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r := mux.NewRouter()
	r.Use(instrument(logger.Named("http")))

	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	r.HandleFunc("/settings/detect", handlers.DetectSettings(svc)).Methods(http.MethodPost)
	r.HandleFunc("/settings/status", handlers.GetStatus(svc)).Methods(http.MethodGet)
	r.HandleFunc("/models/{model}/settings", handlers.GetModelSettings(svc)).Methods(http.MethodGet)
	r.HandleFunc("/{index_name}/settings", handlers.PostIndexSettings(svc)).Methods(http.MethodPost)
	r.HandleFunc("/{index_name}/settings", handlers.GetIndexSettings(svc)).Methods(http.MethodGet)
	r.HandleFunc("/{index_name}/settings/apply", handlers.ApplyIndexSettings(svc)).Methods(http.MethodPost)
	r.HandleFunc("/{index_name}/settings/status", handlers.GetIndexSettingsStatus(svc)).Methods(http.MethodGet)
	r.HandleFunc("/{index_name}/attributes", handlers.GetIndexAttributesHandler(svc)).Methods(http.MethodGet)
	r.HandleFunc("/{index_name}/search", handlers.Search(svc)).Methods(http.MethodPost)
	r.HandleFunc("/{index_name}/facets", handlers.GetFacets(svc)).Methods(http.MethodPost)
	// TODO: add synonym support

	origins := opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
	}).Handler(r)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// instrument counts and logs every routed request.
func instrument(logger *zap.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			route := r.URL.Path
			if current := mux.CurrentRoute(r); current != nil {
				if tpl, err := current.GetPathTemplate(); err == nil {
					route = tpl
				}
			}
			metrics.ObserveRequest(route, rec.status)
			logger.Debug("request",
				zap.String("method", r.Method),
				zap.String("route", route),
				zap.Int("status", rec.status),
				zap.Duration("elapsed", time.Since(start)),
			)
		})
	}
}
