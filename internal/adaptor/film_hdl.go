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

type FilmHandler struct {
	service usecase.CatalogService
	log     *zap.Logger
}

func NewFilmHandler(service usecase.CatalogService, log *zap.Logger) *FilmHandler {
	return &FilmHandler{
		service: service,
		log:     log,
	}
}

// Create handles POST /api/admin/films
func (h *FilmHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req request.CreateFilmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	resp, err := h.service.CreateFilm(r.Context(), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "create film")
		return
	}

	utils.ResponseCreated(w, "Film created", resp)
}

// Get handles GET /api/films/{id}
func (h *FilmHandler) Get(w http.ResponseWriter, r *http.Request) {
	resp, err := h.service.GetFilm(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, h.log, err, "get film")
		return
	}

	utils.ResponseSuccess(w, "success", resp)
}

// List handles GET /api/films
func (h *FilmHandler) List(w http.ResponseWriter, r *http.Request) {
	resp, err := h.service.ListFilms(r.Context(), paginationFromQuery(r))
	if err != nil {
		handleServiceError(w, h.log, err, "list films")
		return
	}

	utils.ResponseSuccess(w, "success", resp)
}

// Delete handles DELETE /api/admin/films/{id}
func (h *FilmHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteFilm(r.Context(), chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, h.log, err, "delete film")
		return
	}

	utils.ResponseSuccess(w, "Film deleted", nil)
}
