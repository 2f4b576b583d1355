package wire

import (
	"cinema-tickets/internal/adaptor"
	"cinema-tickets/internal/data/repository"
	"cinema-tickets/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireCatalog(
	r chi.Router,
	filmHandler *adaptor.FilmHandler,
	cinemaHandler *adaptor.CinemaHandler,
	repo *repository.Repository,
	log *zap.Logger,
) {
	// Browsing the catalog needs no account.
	r.Get("/api/films", filmHandler.List)
	r.Get("/api/films/{id}", filmHandler.Get)
	r.Get("/api/cinemas", cinemaHandler.List)
	r.Get("/api/cinemas/{id}", cinemaHandler.Get)
	r.Get("/api/cinemas/{id}/seats", cinemaHandler.Seats)

	r.Route("/api/admin/films", func(r chi.Router) {
		r.Use(middleware.AuthSession(repo.Session, repo.User, log))
		r.Use(middleware.Admin(log))

		r.Post("/", filmHandler.Create)
		r.Delete("/{id}", filmHandler.Delete)
	})

	r.Route("/api/admin/cinemas", func(r chi.Router) {
		r.Use(middleware.AuthSession(repo.Session, repo.User, log))
		r.Use(middleware.Admin(log))

		r.Post("/", cinemaHandler.Create)
		r.Delete("/{id}", cinemaHandler.Delete)
	})
}
