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

type ShowService interface {
	CreateShow(ctx context.Context, req *request.CreateShowRequest) (*response.ShowResponse, error)
	GetShow(ctx context.Context, showID string) (*response.ShowResponse, error)
	ListShows(ctx context.Context, q *request.ListShowsQuery) ([]response.ShowResponse, error)
	DeleteShow(ctx context.Context, showID string) error

	// SeatMap returns every seat of the show's cinema with availability and
	// the price the seat would cost on this show. Held and confirmed seats
	// both read as unavailable.
	SeatMap(ctx context.Context, showID string) (*response.SeatMapResponse, error)

	// RefreshBookedOut recomputes the show's booked_out flag from the seat
	// reservations and drops the cached seat map. The booking flow calls it
	// after every write that changes seat state.
	RefreshBookedOut(ctx context.Context, showID uuid.UUID) error
}

type showService struct {
	repo  *repository.Repository
	cache *cache.Service
	log   *zap.Logger
}

func NewShowService(repo *repository.Repository, cache *cache.Service, log *zap.Logger) ShowService {
	return &showService{
		repo:  repo,
		cache: cache,
		log:   log.With(zap.String("service", "show")),
	}
}

func seatMapCacheKey(showID uuid.UUID) string {
	return "seatmap:" + showID.String()
}

func (s *showService) CreateShow(ctx context.Context, req *request.CreateShowRequest) (*response.ShowResponse, error) {
	if err := validate(req); err != nil {
		s.log.Warn("Create show validation failed", zap.Error(err))
		return nil, err
	}

	cinemaID, err := uuid.Parse(req.CinemaID)
	if err != nil {
		return nil, validationFailure("cinema_id", "invalid ID format")
	}
	filmID, err := uuid.Parse(req.FilmID)
	if err != nil {
		return nil, validationFailure("film_id", "invalid ID format")
	}
	showTime, err := time.Parse(time.RFC3339, req.ShowTime)
	if err != nil {
		return nil, validationFailure("show_time", "must be an RFC3339 timestamp")
	}

	cinema, err := s.repo.Cinema.FindByID(ctx, cinemaID)
	if err != nil {
		return nil, fmt.Errorf("check cinema: %w", err)
	}
	if cinema == nil {
		return nil, validationFailure("cinema_id", "cinema not found")
	}

	film, err := s.repo.Film.FindByID(ctx, filmID)
	if err != nil {
		return nil, fmt.Errorf("check film: %w", err)
	}
	if film == nil {
		return nil, validationFailure("film_id", "film not found")
	}

	now := time.Now()
	show := &entity.Show{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		CinemaID:       cinemaID,
		FilmID:         filmID,
		ShowTime:       showTime,
		Location:       req.Location,
		BasePriceCents: req.BasePriceCents,
	}

	if err := s.repo.Show.Create(ctx, show); err != nil {
		// ErrShowConflict passes through for the handler to map to 409.
		return nil, err
	}

	// The film now demonstrably has shows.
	if !film.HasShows {
		if err := s.repo.Film.SetHasShows(ctx, filmID, true); err != nil {
			s.log.Warn("Failed to flag film as having shows",
				zap.Error(err),
				zap.String("film_id", filmID.String()),
			)
		}
	}

	s.log.Info("Show created",
		zap.String("show_id", show.ID.String()),
		zap.String("cinema_id", cinemaID.String()),
		zap.String("film_id", filmID.String()),
		zap.Time("show_time", showTime),
	)

	return convertShowResponse(show), nil
}

func (s *showService) GetShow(ctx context.Context, showID string) (*response.ShowResponse, error) {
	id, err := uuid.Parse(showID)
	if err != nil {
		return nil, validationFailure("show_id", "invalid ID format")
	}

	show, err := s.repo.Show.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get show: %w", err)
	}
	if show == nil {
		return nil, repository.ErrNotFound
	}

	return convertShowResponse(show), nil
}

func (s *showService) ListShows(ctx context.Context, q *request.ListShowsQuery) ([]response.ShowResponse, error) {
	if err := validate(q); err != nil {
		return nil, err
	}

	var filter repository.ShowFilter
	if q.FilmID != "" {
		id, err := uuid.Parse(q.FilmID)
		if err != nil {
			return nil, validationFailure("film_id", "invalid ID format")
		}
		filter.FilmID = &id
	}
	if q.CinemaID != "" {
		id, err := uuid.Parse(q.CinemaID)
		if err != nil {
			return nil, validationFailure("cinema_id", "invalid ID format")
		}
		filter.CinemaID = &id
	}
	if q.From != "" {
		from, err := time.Parse(time.RFC3339, q.From)
		if err != nil {
			return nil, validationFailure("from", "must be an RFC3339 timestamp")
		}
		filter.From = &from
	}
	if q.Until != "" {
		until, err := time.Parse(time.RFC3339, q.Until)
		if err != nil {
			return nil, validationFailure("until", "must be an RFC3339 timestamp")
		}
		filter.Until = &until
	}
	filter.OnlyBookable = q.OnlyBookable

	shows, err := s.repo.Show.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list shows: %w", err)
	}

	showResponses := make([]response.ShowResponse, len(shows))
	for i, show := range shows {
		showResponses[i] = *convertShowResponse(show)
	}

	return showResponses, nil
}

func (s *showService) DeleteShow(ctx context.Context, showID string) error {
	id, err := uuid.Parse(showID)
	if err != nil {
		return validationFailure("show_id", "invalid ID format")
	}

	show, err := s.repo.Show.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("get show: %w", err)
	}
	if show == nil {
		return repository.ErrNotFound
	}

	if err := s.repo.Show.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete show %s: %w", showID, err)
	}

	s.cache.Delete(ctx, seatMapCacheKey(id))

	// The film may have lost its last show.
	count, err := s.repo.Show.CountByFilmID(ctx, show.FilmID)
	if err != nil {
		s.log.Warn("Failed to recount film shows",
			zap.Error(err),
			zap.String("film_id", show.FilmID.String()),
		)
		return nil
	}
	if count == 0 {
		if err := s.repo.Film.SetHasShows(ctx, show.FilmID, false); err != nil {
			s.log.Warn("Failed to clear has_shows flag",
				zap.Error(err),
				zap.String("film_id", show.FilmID.String()),
			)
		}
	}

	s.log.Info("Show deleted", zap.String("show_id", showID))
	return nil
}

func (s *showService) SeatMap(ctx context.Context, showID string) (*response.SeatMapResponse, error) {
	id, err := uuid.Parse(showID)
	if err != nil {
		return nil, validationFailure("show_id", "invalid ID format")
	}

	var cached response.SeatMapResponse
	if s.cache.Get(ctx, seatMapCacheKey(id), &cached) {
		return &cached, nil
	}

	show, err := s.repo.Show.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get show: %w", err)
	}
	if show == nil {
		return nil, repository.ErrNotFound
	}

	seats, err := s.repo.Seat.FindByCinemaID(ctx, show.CinemaID)
	if err != nil {
		return nil, fmt.Errorf("list seats for show %s: %w", showID, err)
	}

	active, err := s.repo.Reservation.FindActiveByShow(ctx, id, time.Now())
	if err != nil {
		return nil, fmt.Errorf("load reservations for show %s: %w", showID, err)
	}

	taken := make(map[uuid.UUID]bool, len(active))
	for _, res := range active {
		taken[res.SeatID] = true
	}

	seatMap := &response.SeatMapResponse{
		ShowID:    show.ID.String(),
		BookedOut: show.BookedOut,
		Seats:     make([]response.SeatAvailability, len(seats)),
	}
	for i, seat := range seats {
		seatMap.Seats[i] = response.SeatAvailability{
			SeatResponse: convertSeatResponse(seat),
			PriceCents:   SeatPriceCents(show.BasePriceCents, seat.PremiumPercent),
			Available:    !taken[seat.ID],
		}
	}

	s.cache.Set(ctx, seatMapCacheKey(id), seatMap)

	return seatMap, nil
}

func (s *showService) RefreshBookedOut(ctx context.Context, showID uuid.UUID) error {
	s.cache.Delete(ctx, seatMapCacheKey(showID))

	show, err := s.repo.Show.FindByID(ctx, showID)
	if err != nil {
		return fmt.Errorf("get show: %w", err)
	}
	if show == nil {
		return nil
	}

	total, err := s.repo.Seat.CountByCinemaID(ctx, show.CinemaID)
	if err != nil {
		return fmt.Errorf("count seats: %w", err)
	}

	active, err := s.repo.Reservation.FindActiveByShow(ctx, showID, time.Now())
	if err != nil {
		return fmt.Errorf("load reservations: %w", err)
	}

	bookedOut := total > 0 && len(active) >= total
	if bookedOut == show.BookedOut {
		return nil
	}

	if err := s.repo.Show.SetBookedOut(ctx, showID, bookedOut); err != nil {
		return fmt.Errorf("update booked_out: %w", err)
	}

	s.log.Info("Show booked_out flag changed",
		zap.String("show_id", showID.String()),
		zap.Bool("booked_out", bookedOut),
	)

	return nil
}

func convertShowResponse(show *entity.Show) *response.ShowResponse {
	return &response.ShowResponse{
		ID:             show.ID.String(),
		CinemaID:       show.CinemaID.String(),
		FilmID:         show.FilmID.String(),
		ShowTime:       show.ShowTime,
		Location:       show.Location,
		BasePriceCents: show.BasePriceCents,
		BookedOut:      show.BookedOut,
	}
}
