package adaptor

import (
	"encoding/json"
	"net/http"

	"cinema-tickets/internal/dto/request"
	"cinema-tickets/internal/usecase"
	"cinema-tickets/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type BookingHandler struct {
	service usecase.BookingService
	log     *zap.Logger
}

func NewBookingHandler(service usecase.BookingService, log *zap.Logger) *BookingHandler {
	return &BookingHandler{
		service: service,
		log:     log,
	}
}

// Reserve handles POST /api/holds (protected)
func (h *BookingHandler) Reserve(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	var req request.ReserveSeatsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	resp, err := h.service.Reserve(r.Context(), userID.String(), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "reserve seats")
		return
	}

	utils.ResponseCreated(w, "Seats held", resp)
}

// Confirm handles POST /api/tickets (protected)
func (h *BookingHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	var req request.ConfirmHoldRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	resp, err := h.service.Confirm(r.Context(), userID.String(), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "confirm hold")
		return
	}

	utils.ResponseCreated(w, "Ticket issued", resp)
}

// Release handles DELETE /api/holds/{token} (protected)
func (h *BookingHandler) Release(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Release(r.Context(), chi.URLParam(r, "token")); err != nil {
		handleServiceError(w, h.log, err, "release hold")
		return
	}

	utils.ResponseSuccess(w, "Hold released", nil)
}

// Cancel handles DELETE /api/tickets/{id} (protected)
func (h *BookingHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}
	role, _ := utils.GetRoleFromContext(r.Context())

	if err := h.service.CancelTicket(r.Context(), userID.String(), role, chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, h.log, err, "cancel ticket")
		return
	}

	utils.ResponseSuccess(w, "Ticket cancelled", nil)
}

// Get handles GET /api/tickets/{id} (protected)
func (h *BookingHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}
	role, _ := utils.GetRoleFromContext(r.Context())

	resp, err := h.service.GetTicket(r.Context(), userID.String(), role, chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, h.log, err, "get ticket")
		return
	}

	utils.ResponseSuccess(w, "success", resp)
}

// List handles GET /api/tickets (protected)
func (h *BookingHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	resp, err := h.service.ListTickets(r.Context(), userID.String(), paginationFromQuery(r))
	if err != nil {
		handleServiceError(w, h.log, err, "list tickets")
		return
	}

	utils.ResponseSuccess(w, "success", resp)
}
