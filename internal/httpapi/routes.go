package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/DoyleJ11/battleship-backend/internal/registry"
	"github.com/DoyleJ11/battleship-backend/internal/ws"
)

type Options struct {
	StaticDir string
	IndexFile string
	WS        ws.Options
	Logger    *zap.Logger
}

func SetupRoutes(reg *registry.Registry, opts Options) http.Handler {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.WS.Logger == nil {
		opts.WS.Logger = opts.Logger
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/ws", ws.Handler(reg, opts.WS))
	r.Get("/healthz", Healthz(reg))
	r.Post("/games", CreateGame(reg, opts.Logger))
	if opts.StaticDir != "" {
		r.Get("/*", Static(opts.StaticDir, opts.IndexFile))
	}
	return r
}
