package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

type Deps struct {
	Rooms     RoomLister
	Words     Sampler
	Archive   RoundLister
	Socket    http.Handler
	PublicURL string
	Log       *zap.Logger
}

func SetupRoutes(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	// Public routes
	r.Get("/healthz", Healthz)
	r.Get("/health", Health)
	r.Get("/ws", d.Socket.ServeHTTP)

	r.Route("/api", func(r chi.Router) {
		r.Get("/rooms", Rooms(d.Rooms, d.Log))
		r.Get("/rooms/{id}/qr", RoomQR(d.PublicURL))
		r.Get("/words", Words(d.Words))
		r.Get("/rounds", Rounds(d.Archive, d.Log))
	})
	return r
}
