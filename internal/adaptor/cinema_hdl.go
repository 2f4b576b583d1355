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

type CinemaHandler struct {
	service usecase.CatalogService
	log     *zap.Logger
}

func NewCinemaHandler(service usecase.CatalogService, log *zap.Logger) *CinemaHandler {
	return &CinemaHandler{
		service: service,
		log:     log,
	}
}

// Create handles POST /api/admin/cinemas
func (h *CinemaHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	var req request.CreateCinemaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	resp, err := h.service.CreateCinema(r.Context(), userID.String(), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "create cinema")
		return
	}

	utils.ResponseCreated(w, "Cinema created", resp)
}

// Get handles GET /api/cinemas/{id}
func (h *CinemaHandler) Get(w http.ResponseWriter, r *http.Request) {
	resp, err := h.service.GetCinema(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, h.log, err, "get cinema")
		return
	}

	utils.ResponseSuccess(w, "success", resp)
}

// List handles GET /api/cinemas
func (h *CinemaHandler) List(w http.ResponseWriter, r *http.Request) {
	resp, err := h.service.ListCinemas(r.Context(), paginationFromQuery(r))
	if err != nil {
		handleServiceError(w, h.log, err, "list cinemas")
		return
	}

	utils.ResponseSuccess(w, "success", resp)
}

// Delete handles DELETE /api/admin/cinemas/{id}
func (h *CinemaHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteCinema(r.Context(), chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, h.log, err, "delete cinema")
		return
	}

	utils.ResponseSuccess(w, "Cinema deleted", nil)
}

// Seats handles GET /api/cinemas/{id}/seats
func (h *CinemaHandler) Seats(w http.ResponseWriter, r *http.Request) {
	resp, err := h.service.ListCinemaSeats(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, h.log, err, "list cinema seats")
		return
	}

	utils.ResponseSuccess(w, "success", resp)
}
