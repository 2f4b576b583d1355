package wire

import (
	"cinema-tickets/internal/adaptor"
	"cinema-tickets/internal/data/repository"
	"cinema-tickets/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireBooking(
	r chi.Router,
	bookingHandler *adaptor.BookingHandler,
	repo *repository.Repository,
	log *zap.Logger,
) {
	// The whole booking flow requires a session: hold seats, then confirm
	// the hold into a ticket before the TTL runs out.
	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthSession(repo.Session, repo.User, log))

		r.Post("/api/holds", bookingHandler.Reserve)
		r.Delete("/api/holds/{token}", bookingHandler.Release)

		r.Post("/api/tickets", bookingHandler.Confirm)
		r.Get("/api/tickets", bookingHandler.List)
		r.Get("/api/tickets/{id}", bookingHandler.Get)
		r.Delete("/api/tickets/{id}", bookingHandler.Cancel)
	})
}
