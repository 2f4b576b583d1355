package wire

import (
	"cinema-tickets/internal/adaptor"
	"cinema-tickets/internal/data/repository"
	"cinema-tickets/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireShow(
	r chi.Router,
	showHandler *adaptor.ShowHandler,
	repo *repository.Repository,
	log *zap.Logger,
) {
	r.Get("/api/shows", showHandler.List)
	r.Get("/api/shows/{id}", showHandler.Get)
	r.Get("/api/shows/{id}/seats", showHandler.SeatMap)

	r.Route("/api/admin/shows", func(r chi.Router) {
		r.Use(middleware.AuthSession(repo.Session, repo.User, log))
		r.Use(middleware.Admin(log))

		r.Post("/", showHandler.Create)
		r.Delete("/{id}", showHandler.Delete)
	})
}
