package http

import (
	"net/http"

	"memes/internal/config"
	"memes/internal/http/handler"
	mw "memes/internal/http/middleware"
	"memes/internal/identity"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// Deps are the collaborators the router wires into handlers.
type Deps struct {
	Memes   *handler.MemeHandler
	Admin   *handler.AdminHandler
	Metrics http.Handler
	Status  mw.StatusObserver
	Log     *zap.Logger
}

func NewRouter(cfg config.Config, d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(mw.Logger(d.Log, d.Status))
	r.Use(chimw.Recoverer)

	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(mw.CORS(cfg.CORSAllowedOrigins, cfg.CORSAllowCredentials))
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	if d.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", d.Metrics)
	}

	limit := mw.RateLimit(cfg.WriteRateLimit, cfg.WriteRateBurst)

	r.Route("/memes", func(r chi.Router) {
		r.Use(identity.FromHeader)

		r.Get("/", d.Memes.List)
		r.With(limit).Post("/", d.Memes.Action)
		r.With(limit).Post("/seed", d.Memes.Seed)
	})

	r.With(limit).Post("/admin/reconcile", d.Admin.Reconcile)

	return r
}
