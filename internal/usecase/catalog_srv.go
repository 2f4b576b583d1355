package usecase

import (
	"context"
	"fmt"
	"time"

	"cinema-tickets/internal/data/entity"
	"cinema-tickets/internal/data/repository"
	"cinema-tickets/internal/dto/request"
	"cinema-tickets/internal/dto/response"
	"cinema-tickets/pkg/cache"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CatalogService manages the static side of the catalog: films and cinemas
// with their fixed seat layouts. Shows live in ShowService.
type CatalogService interface {
	CreateFilm(ctx context.Context, req *request.CreateFilmRequest) (*response.FilmResponse, error)
	GetFilm(ctx context.Context, filmID string) (*response.FilmResponse, error)
	ListFilms(ctx context.Context, req *request.PaginatedRequest) (*response.PaginatedResponse[response.FilmResponse], error)
	DeleteFilm(ctx context.Context, filmID string) error

	CreateCinema(ctx context.Context, ownerID string, req *request.CreateCinemaRequest) (*response.CinemaResponse, error)
	GetCinema(ctx context.Context, cinemaID string) (*response.CinemaResponse, error)
	ListCinemas(ctx context.Context, req *request.PaginatedRequest) (*response.PaginatedResponse[response.CinemaResponse], error)
	ListCinemaSeats(ctx context.Context, cinemaID string) ([]response.SeatResponse, error)
	DeleteCinema(ctx context.Context, cinemaID string) error
}

type catalogService struct {
	repo  *repository.Repository
	cache *cache.Service
	log   *zap.Logger
}

func NewCatalogService(repo *repository.Repository, cache *cache.Service, log *zap.Logger) CatalogService {
	return &catalogService{
		repo:  repo,
		cache: cache,
		log:   log.With(zap.String("service", "catalog")),
	}
}

func (s *catalogService) CreateFilm(ctx context.Context, req *request.CreateFilmRequest) (*response.FilmResponse, error) {
	if err := validate(req); err != nil {
		s.log.Warn("Create film validation failed", zap.Error(err))
		return nil, err
	}

	releaseDate, err := time.Parse(time.RFC3339, req.ReleaseDate)
	if err != nil {
		return nil, validationFailure("release_date", "must be an RFC3339 timestamp")
	}

	now := time.Now()
	film := &entity.Film{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		Name:        req.Name,
		ReleaseDate: releaseDate,
	}

	if err := s.repo.Film.Create(ctx, film); err != nil {
		s.log.Error("Failed to create film", zap.Error(err), zap.String("name", req.Name))
		return nil, fmt.Errorf("create film: %w", err)
	}

	s.log.Info("Film created",
		zap.String("film_id", film.ID.String()),
		zap.String("name", film.Name),
	)

	return convertFilmResponse(film), nil
}

func (s *catalogService) GetFilm(ctx context.Context, filmID string) (*response.FilmResponse, error) {
	id, err := uuid.Parse(filmID)
	if err != nil {
		return nil, validationFailure("film_id", "invalid ID format")
	}

	film, err := s.repo.Film.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get film: %w", err)
	}
	if film == nil {
		return nil, repository.ErrNotFound
	}

	return convertFilmResponse(film), nil
}

func (s *catalogService) ListFilms(ctx context.Context, req *request.PaginatedRequest) (*response.PaginatedResponse[response.FilmResponse], error) {
	films, err := s.repo.Film.FindAll(ctx, req.Limit(), req.Offset())
	if err != nil {
		s.log.Error("Failed to list films", zap.Error(err))
		return nil, fmt.Errorf("list films: %w", err)
	}

	total, err := s.repo.Film.CountAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("count films: %w", err)
	}

	filmResponses := make([]response.FilmResponse, len(films))
	for i, film := range films {
		filmResponses[i] = *convertFilmResponse(film)
	}

	return response.NewPaginatedResponse(filmResponses, req.Page, req.PerPage, total), nil
}

func (s *catalogService) DeleteFilm(ctx context.Context, filmID string) error {
	id, err := uuid.Parse(filmID)
	if err != nil {
		return validationFailure("film_id", "invalid ID format")
	}

	// A film with scheduled shows stays; delete the shows first.
	count, err := s.repo.Show.CountByFilmID(ctx, id)
	if err != nil {
		return fmt.Errorf("check film shows: %w", err)
	}
	if count > 0 {
		return validationFailure("film_id", "film still has scheduled shows")
	}

	if err := s.repo.Film.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete film %s: %w", filmID, err)
	}

	s.log.Info("Film deleted", zap.String("film_id", filmID))
	return nil
}

func (s *catalogService) CreateCinema(ctx context.Context, ownerID string, req *request.CreateCinemaRequest) (*response.CinemaResponse, error) {
	if err := validate(req); err != nil {
		s.log.Warn("Create cinema validation failed", zap.Error(err))
		return nil, err
	}

	ownerUUID, err := uuid.Parse(ownerID)
	if err != nil {
		return nil, validationFailure("owner_id", "invalid ID format")
	}

	labels := make(map[string]bool, len(req.Seats))
	for _, spec := range req.Seats {
		if labels[spec.Label] {
			return nil, validationFailure("seats", fmt.Sprintf("duplicate seat label %s", spec.Label))
		}
		labels[spec.Label] = true
	}

	now := time.Now()
	cinema := &entity.Cinema{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		OwnerID:    ownerUUID,
		Name:       req.Name,
		Location:   req.Location,
		SeatsCount: len(req.Seats),
	}

	seats := make([]*entity.Seat, len(req.Seats))
	for i, spec := range req.Seats {
		seatType := entity.SeatType(spec.Type)
		if spec.Type == "" {
			seatType = entity.SeatTypeStandard
		}
		seats[i] = &entity.Seat{
			Base: entity.Base{
				ID:        uuid.New(),
				CreatedAt: now,
				UpdatedAt: now,
			},
			CinemaID:       cinema.ID,
			Label:          spec.Label,
			Type:           seatType,
			PremiumPercent: spec.PremiumPercent,
		}
	}

	if err := s.repo.Cinema.CreateWithSeats(ctx, cinema, seats); err != nil {
		s.log.Error("Failed to create cinema",
			zap.Error(err),
			zap.String("name", req.Name),
		)
		return nil, fmt.Errorf("create cinema: %w", err)
	}

	s.log.Info("Cinema created",
		zap.String("cinema_id", cinema.ID.String()),
		zap.String("name", cinema.Name),
		zap.Int("seats", cinema.SeatsCount),
	)

	return convertCinemaResponse(cinema), nil
}

func (s *catalogService) GetCinema(ctx context.Context, cinemaID string) (*response.CinemaResponse, error) {
	id, err := uuid.Parse(cinemaID)
	if err != nil {
		return nil, validationFailure("cinema_id", "invalid ID format")
	}

	cinema, err := s.repo.Cinema.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get cinema: %w", err)
	}
	if cinema == nil {
		return nil, repository.ErrNotFound
	}

	return convertCinemaResponse(cinema), nil
}

func (s *catalogService) ListCinemas(ctx context.Context, req *request.PaginatedRequest) (*response.PaginatedResponse[response.CinemaResponse], error) {
	cinemas, err := s.repo.Cinema.FindAll(ctx, req.Limit(), req.Offset())
	if err != nil {
		s.log.Error("Failed to list cinemas", zap.Error(err))
		return nil, fmt.Errorf("list cinemas: %w", err)
	}

	total, err := s.repo.Cinema.CountAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("count cinemas: %w", err)
	}

	cinemaResponses := make([]response.CinemaResponse, len(cinemas))
	for i, cinema := range cinemas {
		cinemaResponses[i] = *convertCinemaResponse(cinema)
	}

	return response.NewPaginatedResponse(cinemaResponses, req.Page, req.PerPage, total), nil
}

func (s *catalogService) ListCinemaSeats(ctx context.Context, cinemaID string) ([]response.SeatResponse, error) {
	id, err := uuid.Parse(cinemaID)
	if err != nil {
		return nil, validationFailure("cinema_id", "invalid ID format")
	}

	cinema, err := s.repo.Cinema.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get cinema: %w", err)
	}
	if cinema == nil {
		return nil, repository.ErrNotFound
	}

	seats, err := s.repo.Seat.FindByCinemaID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list seats for cinema %s: %w", cinemaID, err)
	}

	seatResponses := make([]response.SeatResponse, len(seats))
	for i, seat := range seats {
		seatResponses[i] = convertSeatResponse(seat)
	}

	return seatResponses, nil
}

// DeleteCinema removes the cinema; its seats, shows and seat reservations go
// with it. Films whose last show lived here get their has_shows flag cleared.
func (s *catalogService) DeleteCinema(ctx context.Context, cinemaID string) error {
	id, err := uuid.Parse(cinemaID)
	if err != nil {
		return validationFailure("cinema_id", "invalid ID format")
	}

	cinema, err := s.repo.Cinema.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("get cinema: %w", err)
	}
	if cinema == nil {
		return repository.ErrNotFound
	}

	// Snapshot the shows before the cascade takes them.
	shows, err := s.repo.Show.List(ctx, repository.ShowFilter{CinemaID: &id})
	if err != nil {
		return fmt.Errorf("list cinema shows: %w", err)
	}

	if err := s.repo.Cinema.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete cinema %s: %w", cinemaID, err)
	}

	films := make(map[uuid.UUID]bool)
	for _, show := range shows {
		s.cache.Delete(ctx, seatMapCacheKey(show.ID))
		films[show.FilmID] = true
	}
	for filmID := range films {
		count, err := s.repo.Show.CountByFilmID(ctx, filmID)
		if err != nil {
			s.log.Warn("Failed to recount film shows",
				zap.Error(err),
				zap.String("film_id", filmID.String()),
			)
			continue
		}
		if count == 0 {
			if err := s.repo.Film.SetHasShows(ctx, filmID, false); err != nil {
				s.log.Warn("Failed to clear has_shows flag",
					zap.Error(err),
					zap.String("film_id", filmID.String()),
				)
			}
		}
	}

	s.log.Info("Cinema deleted",
		zap.String("cinema_id", cinemaID),
		zap.Int("shows_removed", len(shows)),
	)
	return nil
}

func convertFilmResponse(film *entity.Film) *response.FilmResponse {
	return &response.FilmResponse{
		ID:          film.ID.String(),
		Name:        film.Name,
		ReleaseDate: film.ReleaseDate,
		HasShows:    film.HasShows,
		CreatedAt:   film.CreatedAt,
	}
}

func convertCinemaResponse(cinema *entity.Cinema) *response.CinemaResponse {
	return &response.CinemaResponse{
		ID:         cinema.ID.String(),
		Name:       cinema.Name,
		Location:   cinema.Location,
		SeatsCount: cinema.SeatsCount,
		CreatedAt:  cinema.CreatedAt,
	}
}

func convertSeatResponse(seat *entity.Seat) response.SeatResponse {
	return response.SeatResponse{
		ID:             seat.ID.String(),
		Label:          seat.Label,
		Type:           string(seat.Type),
		PremiumPercent: seat.PremiumPercent,
	}
}
