package api

import (
	"log/slog"
	"net/http"

	"github.com/St1cky1/ticket-generator/internal/api/handlers"
	"github.com/St1cky1/ticket-generator/internal/infrastructure/httpx"
	"github.com/St1cky1/ticket-generator/internal/session"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type RouterConfig struct {
	Sessions        *session.Registry
	Log             *slog.Logger
	Registerer      prometheus.Registerer
	Gatherer        prometheus.Gatherer
	MaxRequestBytes int64
}

func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(httpx.AccessLog(cfg.Log))
	r.Use(httpx.NewMetrics(cfg.Registerer).Middleware)

	formHandler := handlers.NewFormHandler(cfg.Sessions, cfg.Log, cfg.MaxRequestBytes)

	r.Get("/", formHandler.Page)
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{}))

	r.Route("/api/v1/form", func(r chi.Router) {
		r.Get("/", formHandler.GetForm)
		r.Post("/fields", formHandler.EditFields)
		r.Post("/submit", formHandler.Submit)
		r.Post("/drag", formHandler.Drag)
		r.Post("/click", formHandler.Click)
		r.Route("/avatar", func(r chi.Router) {
			r.Post("/", formHandler.UploadAvatar)
			r.Post("/remove", formHandler.RemoveAvatar)
			r.Post("/change", formHandler.ChangeAvatar)
		})
	})

	return r
}
