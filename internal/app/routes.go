package app

import (
	"context"
	"net/http"
	"path/filepath"
	"time"

	"configurator-backend/internal/handlers"
)

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, Idempotency-Key, X-AR-Capability")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// instrument пишет метрики и лог запроса; route — шаблон из mux, а не сырой путь.
func instrument(env *handlers.Env, route string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		d := time.Since(start)
		env.Metrics.ObserveHTTP(r.Method, route, rec.status, d)
		if rec.status >= 500 {
			env.Log.Warn("http request", "method", r.Method, "path", r.URL.Path, "status", rec.status, "duration", d.String())
			return
		}
		env.Log.Debug("http request", "method", r.Method, "path", r.URL.Path, "status", rec.status, "duration", d.String())
	})
}

func registerRoutes(mux *http.ServeMux, env *handlers.Env, health func(context.Context) error, staticDir string) {
	api := func(pattern string, h http.HandlerFunc) {
		mux.Handle(pattern, instrument(env, pattern, withCORS(h)))
	}

	// --- API ---
	api("/api/catalog", env.HandleCatalog)

	// конфигуратор текущей сессии
	api("/api/configurator", env.HandleConfiguratorState)
	api("/api/configurator/select", env.HandleSelect)
	api("/api/configurator/step", env.HandleGoToStep)
	api("/api/configurator/selection", env.HandleRemoveSelection)
	api("/api/configurator/installation", env.HandleInstallation)
	api("/api/configurator/location", env.HandleLocation)
	api("/api/configurator/restore", env.HandleRestore)
	api("/api/configurator/reset", env.HandleReset)

	// сохранение и ссылки "поделиться"
	api("/api/configurations", env.HandleConfigurations)
	api("/api/configurations/", env.HandleConfigurationByToken)

	api("/api/ar/", env.HandleAR)

	// админка
	api("/api/admin/configurations", env.HandleAdminConfigurations)
	api("/api/admin/settings", env.HandleAdminSettings)
	api("/api/admin/models/", env.HandleModelUpload)

	// публичная страница конфигурации
	mux.Handle("/c/", instrument(env, "/c/", http.HandlerFunc(env.HandleSharedConfigurationPage)))

	// --- Служебное ---
	mux.Handle("/metrics", env.Metrics.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := health(ctx); err != nil {
			env.Log.Warn("health check failed", "error", err.Error())
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("ok"))
	})

	// --- Статика: модели, превью, фронтенд ---
	fileServer := http.FileServer(http.Dir(staticDir))
	mux.Handle("/static/", http.StripPrefix("/static/", fileServer))

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			// всё, что не "/", и не попало в хендлеры выше — 404
			http.NotFound(w, r)
			return
		}
		http.ServeFile(w, r, filepath.Join(staticDir, "index.html"))
	})
}
