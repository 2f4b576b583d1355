package repository

import (
	"cinema-tickets/pkg/database"

	"go.uber.org/zap"
)

type Repository struct {
	User        UserRepository
	Session     SessionRepository
	Film        FilmRepository
	Cinema      CinemaRepository
	Seat        SeatRepository
	Show        ShowRepository
	Reservation ReservationRepository
	Ticket      TicketRepository
	Payment     PaymentRepository
}

func NewRepository(db database.PgxIface, log *zap.Logger) *Repository {
	return &Repository{
		User:        NewUserRepository(db, log),
		Session:     NewSessionRepository(db, log),
		Film:        NewFilmRepository(db, log),
		Cinema:      NewCinemaRepository(db, log),
		Seat:        NewSeatRepository(db, log),
		Show:        NewShowRepository(db, log),
		Reservation: NewReservationRepository(db, log),
		Ticket:      NewTicketRepository(db, log),
		Payment:     NewPaymentRepository(db, log),
	}
}
