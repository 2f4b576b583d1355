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

type ShowHandler struct {
	service usecase.ShowService
	log     *zap.Logger
}

func NewShowHandler(service usecase.ShowService, log *zap.Logger) *ShowHandler {
	return &ShowHandler{
		service: service,
		log:     log,
	}
}

// Create handles POST /api/admin/shows
func (h *ShowHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req request.CreateShowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	resp, err := h.service.CreateShow(r.Context(), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "create show")
		return
	}

	utils.ResponseCreated(w, "Show created", resp)
}

// Get handles GET /api/shows/{id}
func (h *ShowHandler) Get(w http.ResponseWriter, r *http.Request) {
	resp, err := h.service.GetShow(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, h.log, err, "get show")
		return
	}

	utils.ResponseSuccess(w, "success", resp)
}

// List handles GET /api/shows
func (h *ShowHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	q := &request.ListShowsQuery{
		FilmID:       query.Get("film_id"),
		CinemaID:     query.Get("cinema_id"),
		From:         query.Get("from"),
		Until:        query.Get("until"),
		OnlyBookable: query.Get("only_bookable") == "true",
	}

	resp, err := h.service.ListShows(r.Context(), q)
	if err != nil {
		handleServiceError(w, h.log, err, "list shows")
		return
	}

	utils.ResponseSuccess(w, "success", resp)
}

// Delete handles DELETE /api/admin/shows/{id}
func (h *ShowHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteShow(r.Context(), chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, h.log, err, "delete show")
		return
	}

	utils.ResponseSuccess(w, "Show deleted", nil)
}

// SeatMap handles GET /api/shows/{id}/seats
func (h *ShowHandler) SeatMap(w http.ResponseWriter, r *http.Request) {
	resp, err := h.service.SeatMap(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, h.log, err, "get seat map")
		return
	}

	utils.ResponseSuccess(w, "success", resp)
}
