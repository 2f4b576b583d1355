package adaptor

import (
	"errors"
	"net/http"

	"cinema-tickets/internal/data/repository"
	"cinema-tickets/internal/dto/request"
	"cinema-tickets/internal/usecase"
	"cinema-tickets/pkg/utils"

	"go.uber.org/zap"
)

type Handler struct {
	Auth    *AuthHandler
	Film    *FilmHandler
	Cinema  *CinemaHandler
	Show    *ShowHandler
	Booking *BookingHandler
}

func NewHandler(service *usecase.Service, log *zap.Logger) *Handler {
	return &Handler{
		Auth:    NewAuthHandler(service.Auth, log),
		Film:    NewFilmHandler(service.Catalog, log),
		Cinema:  NewCinemaHandler(service.Catalog, log),
		Show:    NewShowHandler(service.Show, log),
		Booking: NewBookingHandler(service.Booking, log),
	}
}

// handleServiceError maps service errors onto HTTP status codes. The
// services return typed errors, so the mapping is by errors.Is/As rather
// than message sniffing.
func handleServiceError(w http.ResponseWriter, log *zap.Logger, err error, operation string) {
	var validationErr *usecase.ValidationError
	var seatsErr *repository.SeatsUnavailableError

	switch {
	case errors.As(err, &validationErr):
		log.Warn(operation+" validation failed", zap.Error(err))
		utils.ResponseBadRequest(w, "Validation failed", validationErr.Fields)

	case errors.As(err, &seatsErr):
		log.Info(operation+" lost seat race", zap.Error(err))
		seatIDs := make([]string, len(seatsErr.SeatIDs))
		for i, id := range seatsErr.SeatIDs {
			seatIDs[i] = id.String()
		}
		utils.ResponseConflict(w, "Some seats are no longer available", map[string]any{"seat_ids": seatIDs})

	case errors.Is(err, repository.ErrShowConflict):
		log.Warn(operation+" show conflict", zap.Error(err))
		utils.ResponseConflict(w, err.Error(), nil)

	case errors.Is(err, repository.ErrHoldNotFound):
		log.Warn(operation+" hold not found", zap.Error(err))
		utils.ResponseNotFound(w, err.Error())

	case errors.Is(err, repository.ErrHoldExpired):
		log.Warn(operation+" hold expired", zap.Error(err))
		utils.ResponseGone(w, err.Error())

	case errors.Is(err, repository.ErrNotFound):
		log.Warn(operation+" not found", zap.Error(err))
		utils.ResponseNotFound(w, err.Error())

	case errors.Is(err, repository.ErrDuplicateEmail):
		log.Warn(operation+" duplicate email", zap.Error(err))
		utils.ResponseBadRequest(w, err.Error(), nil)

	case errors.Is(err, usecase.ErrInvalidCredentials):
		log.Warn(operation+" invalid credentials", zap.Error(err))
		utils.ResponseUnauthorized(w, err.Error())

	case errors.Is(err, usecase.ErrNotOwner):
		log.Warn(operation+" forbidden", zap.Error(err))
		utils.ResponseForbidden(w, err.Error())

	default:
		log.Error("Failed to "+operation, zap.Error(err))
		utils.ResponseInternalError(w, "Internal server error")
	}
}

func paginationFromQuery(r *http.Request) *request.PaginatedRequest {
	query := r.URL.Query()
	return &request.PaginatedRequest{
		Page:    utils.ParseInt(query.Get("page"), 1),
		PerPage: utils.ParseInt(query.Get("per_page"), 10),
	}
}
