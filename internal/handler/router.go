package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/zhouzirui/kairn/backend/internal/handler/events"
	"github.com/zhouzirui/kairn/backend/internal/handler/gate"
	"github.com/zhouzirui/kairn/backend/internal/handler/identity"
	"github.com/zhouzirui/kairn/backend/internal/handler/respond"
	"github.com/zhouzirui/kairn/backend/internal/handler/session"
	middlewarePkg "github.com/zhouzirui/kairn/backend/internal/middleware"
	"github.com/zhouzirui/kairn/backend/pkg/utils"
)

// NewRouter wires HTTP routes to the command dispatcher.
func NewRouter(d respond.Dispatcher, broker events.Subscriber, log *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		utils.RespondJSON(w, log, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(api chi.Router) {
		session.New(d, log).RegisterRoutes(api)
		identity.New(d, log).RegisterRoutes(api)
		gate.New(d, log).RegisterRoutes(api)
		events.New(d, broker, log).RegisterRoutes(api)
	})

	return r
}
