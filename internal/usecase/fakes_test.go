package usecase_test

import (
	"context"
	"strings"
	"sync"
	"time"

	"cinema-tickets/internal/data/entity"
	"cinema-tickets/internal/data/repository"
	"cinema-tickets/internal/usecase"
	"cinema-tickets/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// In-memory repository fakes. The reservation fake mirrors the SQL
// semantics closely enough for the services' race and expiry behavior to
// be exercised without a database: claims are all-or-nothing under one
// mutex and a (seat, show) pair can hold at most one live row.

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*entity.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]*entity.User)}
}

func (f *fakeUserRepo) Create(ctx context.Context, user *entity.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.users {
		if strings.EqualFold(existing.Email, user.Email) {
			return repository.ErrDuplicateEmail
		}
	}
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.users[id], nil
}

func (f *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, user := range f.users {
		if strings.EqualFold(user.Email, email) {
			return user, nil
		}
	}
	return nil, nil
}

type fakeSessionRepo struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*entity.Session // keyed by token
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[uuid.UUID]*entity.Session)}
}

func (f *fakeSessionRepo) Create(ctx context.Context, session *entity.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessions[session.Token] = session
	return nil
}

func (f *fakeSessionRepo) FindValidSession(ctx context.Context, token uuid.UUID) (*entity.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	session, ok := f.sessions[token]
	if !ok || session.RevokedAt != nil || session.ExpiresAt.Before(time.Now()) {
		return nil, nil
	}
	return session, nil
}

func (f *fakeSessionRepo) Revoke(ctx context.Context, token uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if session, ok := f.sessions[token]; ok {
		now := time.Now()
		session.RevokedAt = &now
	}
	return nil
}

type fakeFilmRepo struct {
	mu    sync.Mutex
	films map[uuid.UUID]*entity.Film
}

func newFakeFilmRepo() *fakeFilmRepo {
	return &fakeFilmRepo{films: make(map[uuid.UUID]*entity.Film)}
}

func (f *fakeFilmRepo) Create(ctx context.Context, film *entity.Film) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.films[film.ID] = film
	return nil
}

func (f *fakeFilmRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Film, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.films[id], nil
}

func (f *fakeFilmRepo) FindAll(ctx context.Context, limit, offset int) ([]*entity.Film, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var films []*entity.Film
	for _, film := range f.films {
		films = append(films, film)
	}
	return films, nil
}

func (f *fakeFilmRepo) CountAll(ctx context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.films)), nil
}

func (f *fakeFilmRepo) SetHasShows(ctx context.Context, id uuid.UUID, hasShows bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	film, ok := f.films[id]
	if !ok {
		return repository.ErrNotFound
	}
	film.HasShows = hasShows
	return nil
}

func (f *fakeFilmRepo) Delete(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.films[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.films, id)
	return nil
}

type fakeCinemaRepo struct {
	mu           sync.Mutex
	cinemas      map[uuid.UUID]*entity.Cinema
	seats        *fakeSeatRepo
	shows        *fakeShowRepo
	reservations *fakeReservationRepo
}

func newFakeCinemaRepo(seats *fakeSeatRepo, shows *fakeShowRepo, reservations *fakeReservationRepo) *fakeCinemaRepo {
	return &fakeCinemaRepo{
		cinemas:      make(map[uuid.UUID]*entity.Cinema),
		seats:        seats,
		shows:        shows,
		reservations: reservations,
	}
}

func (f *fakeCinemaRepo) CreateWithSeats(ctx context.Context, cinema *entity.Cinema, seats []*entity.Seat) error {
	f.mu.Lock()
	f.cinemas[cinema.ID] = cinema
	f.mu.Unlock()
	for _, seat := range seats {
		f.seats.add(seat)
	}
	return nil
}

func (f *fakeCinemaRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Cinema, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cinemas[id], nil
}

func (f *fakeCinemaRepo) FindAll(ctx context.Context, limit, offset int) ([]*entity.Cinema, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var cinemas []*entity.Cinema
	for _, cinema := range f.cinemas {
		cinemas = append(cinemas, cinema)
	}
	return cinemas, nil
}

func (f *fakeCinemaRepo) CountAll(ctx context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.cinemas)), nil
}

// Delete mirrors the ON DELETE CASCADE chain: seats, shows and the shows'
// reservation rows all go with the cinema.
func (f *fakeCinemaRepo) Delete(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	if _, ok := f.cinemas[id]; !ok {
		f.mu.Unlock()
		return repository.ErrNotFound
	}
	delete(f.cinemas, id)
	f.mu.Unlock()

	f.seats.removeByCinema(id)
	for _, showID := range f.shows.removeByCinema(id) {
		f.reservations.removeByShow(showID)
	}
	return nil
}

type fakeSeatRepo struct {
	mu    sync.Mutex
	seats map[uuid.UUID]*entity.Seat
}

func newFakeSeatRepo() *fakeSeatRepo {
	return &fakeSeatRepo{seats: make(map[uuid.UUID]*entity.Seat)}
}

func (f *fakeSeatRepo) add(seat *entity.Seat) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seats[seat.ID] = seat
}

func (f *fakeSeatRepo) removeByCinema(cinemaID uuid.UUID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, seat := range f.seats {
		if seat.CinemaID == cinemaID {
			delete(f.seats, id)
		}
	}
}

func (f *fakeSeatRepo) FindByCinemaID(ctx context.Context, cinemaID uuid.UUID) ([]*entity.Seat, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var seats []*entity.Seat
	for _, seat := range f.seats {
		if seat.CinemaID == cinemaID {
			seats = append(seats, seat)
		}
	}
	return seats, nil
}

func (f *fakeSeatRepo) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*entity.Seat, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var seats []*entity.Seat
	for _, id := range ids {
		if seat, ok := f.seats[id]; ok {
			seats = append(seats, seat)
		}
	}
	return seats, nil
}

func (f *fakeSeatRepo) CountByCinemaID(ctx context.Context, cinemaID uuid.UUID) (int, error) {
	seats, _ := f.FindByCinemaID(ctx, cinemaID)
	return len(seats), nil
}

type fakeShowRepo struct {
	mu    sync.Mutex
	shows map[uuid.UUID]*entity.Show
}

func newFakeShowRepo() *fakeShowRepo {
	return &fakeShowRepo{shows: make(map[uuid.UUID]*entity.Show)}
}

func (f *fakeShowRepo) Create(ctx context.Context, show *entity.Show) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.shows {
		if existing.CinemaID == show.CinemaID &&
			existing.ShowTime.Equal(show.ShowTime) &&
			existing.Location == show.Location {
			return repository.ErrShowConflict
		}
	}
	f.shows[show.ID] = show
	return nil
}

func (f *fakeShowRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Show, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.shows[id], nil
}

func (f *fakeShowRepo) List(ctx context.Context, filter repository.ShowFilter) ([]*entity.Show, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var shows []*entity.Show
	for _, show := range f.shows {
		if filter.FilmID != nil && show.FilmID != *filter.FilmID {
			continue
		}
		if filter.CinemaID != nil && show.CinemaID != *filter.CinemaID {
			continue
		}
		if filter.From != nil && show.ShowTime.Before(*filter.From) {
			continue
		}
		if filter.Until != nil && show.ShowTime.After(*filter.Until) {
			continue
		}
		if filter.OnlyBookable && show.BookedOut {
			continue
		}
		shows = append(shows, show)
	}
	return shows, nil
}

func (f *fakeShowRepo) SetBookedOut(ctx context.Context, id uuid.UUID, bookedOut bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	show, ok := f.shows[id]
	if !ok {
		return repository.ErrNotFound
	}
	show.BookedOut = bookedOut
	return nil
}

func (f *fakeShowRepo) CountByFilmID(ctx context.Context, filmID uuid.UUID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var count int64
	for _, show := range f.shows {
		if show.FilmID == filmID {
			count++
		}
	}
	return count, nil
}

func (f *fakeShowRepo) Delete(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.shows[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.shows, id)
	return nil
}

func (f *fakeShowRepo) removeByCinema(cinemaID uuid.UUID) []uuid.UUID {
	f.mu.Lock()
	defer f.mu.Unlock()
	var removed []uuid.UUID
	for id, show := range f.shows {
		if show.CinemaID == cinemaID {
			delete(f.shows, id)
			removed = append(removed, id)
		}
	}
	return removed
}

type seatShowKey struct {
	seatID uuid.UUID
	showID uuid.UUID
}

type fakeReservationRepo struct {
	mu   sync.Mutex
	rows map[seatShowKey]*entity.SeatReservation
}

func newFakeReservationRepo() *fakeReservationRepo {
	return &fakeReservationRepo{rows: make(map[seatShowKey]*entity.SeatReservation)}
}

func (f *fakeReservationRepo) removeByShow(showID uuid.UUID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for key, row := range f.rows {
		if row.ShowID == showID {
			delete(f.rows, key)
		}
	}
}

func (f *fakeReservationRepo) ClaimSeats(ctx context.Context, reservations []*entity.SeatReservation) error {
	if len(reservations) == 0 {
		return nil
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	now := time.Now()
	for key, row := range f.rows {
		if row.ShowID == reservations[0].ShowID && row.Expired(now) {
			delete(f.rows, key)
		}
	}

	var conflicts []uuid.UUID
	for _, res := range reservations {
		if _, taken := f.rows[seatShowKey{res.SeatID, res.ShowID}]; taken {
			conflicts = append(conflicts, res.SeatID)
		}
	}
	if len(conflicts) > 0 {
		return &repository.SeatsUnavailableError{SeatIDs: conflicts}
	}

	for _, res := range reservations {
		clone := *res
		f.rows[seatShowKey{res.SeatID, res.ShowID}] = &clone
	}
	return nil
}

func (f *fakeReservationRepo) FindActiveByShow(ctx context.Context, showID uuid.UUID, now time.Time) ([]*entity.SeatReservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var active []*entity.SeatReservation
	for _, row := range f.rows {
		if row.ShowID == showID && !row.Expired(now) {
			clone := *row
			active = append(active, &clone)
		}
	}
	return active, nil
}

func (f *fakeReservationRepo) FindByHoldToken(ctx context.Context, token uuid.UUID) ([]*entity.SeatReservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var held []*entity.SeatReservation
	for _, row := range f.rows {
		if row.HoldToken != nil && *row.HoldToken == token && row.TicketID == nil {
			clone := *row
			held = append(held, &clone)
		}
	}
	return held, nil
}

func (f *fakeReservationRepo) FindByTicketID(ctx context.Context, ticketID uuid.UUID) ([]*entity.SeatReservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var rows []*entity.SeatReservation
	for _, row := range f.rows {
		if row.TicketID != nil && *row.TicketID == ticketID {
			clone := *row
			rows = append(rows, &clone)
		}
	}
	return rows, nil
}

func (f *fakeReservationRepo) ConfirmHold(ctx context.Context, token, ticketID uuid.UUID, now time.Time) ([]*entity.SeatReservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var keys []seatShowKey
	for key, row := range f.rows {
		if row.HoldToken != nil && *row.HoldToken == token && row.TicketID == nil {
			keys = append(keys, key)
		}
	}
	if len(keys) == 0 {
		return nil, repository.ErrHoldNotFound
	}

	for _, key := range keys {
		if f.rows[key].Expired(now) {
			for _, k := range keys {
				delete(f.rows, k)
			}
			return nil, repository.ErrHoldExpired
		}
	}

	var confirmed []*entity.SeatReservation
	for _, key := range keys {
		row := f.rows[key]
		tid := ticketID
		row.TicketID = &tid
		row.HoldToken = nil
		row.HeldUntil = nil
		clone := *row
		confirmed = append(confirmed, &clone)
	}
	return confirmed, nil
}

func (f *fakeReservationRepo) ReleaseByHoldToken(ctx context.Context, token uuid.UUID) (*uuid.UUID, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var showID *uuid.UUID
	var count int64
	for key, row := range f.rows {
		if row.HoldToken != nil && *row.HoldToken == token && row.TicketID == nil {
			id := row.ShowID
			showID = &id
			count++
			delete(f.rows, key)
		}
	}
	return showID, count, nil
}

func (f *fakeReservationRepo) DeleteByTicketID(ctx context.Context, ticketID uuid.UUID) (*uuid.UUID, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var showID *uuid.UUID
	var count int64
	for key, row := range f.rows {
		if row.TicketID != nil && *row.TicketID == ticketID {
			id := row.ShowID
			showID = &id
			count++
			delete(f.rows, key)
		}
	}
	return showID, count, nil
}

func (f *fakeReservationRepo) DeleteExpired(ctx context.Context, now time.Time) ([]uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	seen := make(map[uuid.UUID]bool)
	var showIDs []uuid.UUID
	for key, row := range f.rows {
		if row.Expired(now) {
			if !seen[row.ShowID] {
				seen[row.ShowID] = true
				showIDs = append(showIDs, row.ShowID)
			}
			delete(f.rows, key)
		}
	}
	return showIDs, nil
}

type fakeTicketRepo struct {
	mu      sync.Mutex
	tickets map[uuid.UUID]*entity.Ticket
}

func newFakeTicketRepo() *fakeTicketRepo {
	return &fakeTicketRepo{tickets: make(map[uuid.UUID]*entity.Ticket)}
}

func (f *fakeTicketRepo) Create(ctx context.Context, ticket *entity.Ticket) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tickets[ticket.ID] = ticket
	return nil
}

func (f *fakeTicketRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.tickets[id], nil
}

func (f *fakeTicketRepo) FindByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entity.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var tickets []*entity.Ticket
	for _, ticket := range f.tickets {
		if ticket.UserID == userID {
			tickets = append(tickets, ticket)
		}
	}
	return tickets, nil
}

func (f *fakeTicketRepo) CountByUserID(ctx context.Context, userID uuid.UUID) (int64, error) {
	tickets, _ := f.FindByUserID(ctx, userID, 0, 0)
	return int64(len(tickets)), nil
}

func (f *fakeTicketRepo) Delete(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.tickets[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.tickets, id)
	return nil
}

type fakePaymentRepo struct {
	mu       sync.Mutex
	payments []*entity.Payment
}

func newFakePaymentRepo() *fakePaymentRepo {
	return &fakePaymentRepo{}
}

func (f *fakePaymentRepo) Create(ctx context.Context, payment *entity.Payment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.payments = append(f.payments, payment)
	return nil
}

func (f *fakePaymentRepo) FindByUserID(ctx context.Context, userID uuid.UUID) ([]*entity.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var payments []*entity.Payment
	for _, payment := range f.payments {
		if payment.UserID == userID {
			payments = append(payments, payment)
		}
	}
	return payments, nil
}

// testEnv bundles the fake-backed service stack for a test.
type testEnv struct {
	repo    *repository.Repository
	config  *utils.Config
	service *usecase.Service

	reservations *fakeReservationRepo
	shows        *fakeShowRepo
	seats        *fakeSeatRepo
	payments     *fakePaymentRepo
}

func newTestEnv(holdTTL time.Duration) *testEnv {
	seats := newFakeSeatRepo()
	reservations := newFakeReservationRepo()
	shows := newFakeShowRepo()
	payments := newFakePaymentRepo()

	repo := &repository.Repository{
		User:        newFakeUserRepo(),
		Session:     newFakeSessionRepo(),
		Film:        newFakeFilmRepo(),
		Cinema:      newFakeCinemaRepo(seats, shows, reservations),
		Seat:        seats,
		Show:        shows,
		Reservation: reservations,
		Ticket:      newFakeTicketRepo(),
		Payment:     payments,
	}

	config := &utils.Config{
		Session: utils.SessionConfig{ExpiryHours: 24},
		Booking: utils.BookingConfig{
			HoldTTL:       holdTTL,
			SweepInterval: time.Minute,
		},
	}

	// nil cache and publisher: both are no-ops when disabled.
	service := usecase.NewService(repo, config, nil, nil, zap.NewNop())

	return &testEnv{
		repo:         repo,
		config:       config,
		service:      service,
		reservations: reservations,
		shows:        shows,
		seats:        seats,
		payments:     payments,
	}
}
