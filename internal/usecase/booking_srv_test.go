package usecase_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"cinema-tickets/internal/data/entity"
	"cinema-tickets/internal/data/repository"
	"cinema-tickets/internal/dto/request"
	"cinema-tickets/internal/usecase"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seedShow creates a cinema with the given seat premiums, a film and one
// future show priced at baseCents. Seats come back in argument order.
func seedShow(t *testing.T, env *testEnv, baseCents int64, premiums ...int) (*entity.Show, []*entity.Seat) {
	t.Helper()
	ctx := context.Background()
	now := time.Now()

	cinema := &entity.Cinema{
		Base:       entity.Base{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		OwnerID:    uuid.New(),
		Name:       "Grand Central",
		Location:   "Downtown",
		SeatsCount: len(premiums),
	}

	seats := make([]*entity.Seat, len(premiums))
	for i, premium := range premiums {
		seatType := entity.SeatTypeStandard
		if premium > 0 {
			seatType = entity.SeatTypeVIP
		}
		seats[i] = &entity.Seat{
			Base:           entity.Base{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
			CinemaID:       cinema.ID,
			Label:          string(rune('A'+i)) + "1",
			Type:           seatType,
			PremiumPercent: premium,
		}
	}
	require.NoError(t, env.repo.Cinema.CreateWithSeats(ctx, cinema, seats))

	film := &entity.Film{
		Base:        entity.Base{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		Name:        "The Long Night",
		ReleaseDate: now,
	}
	require.NoError(t, env.repo.Film.Create(ctx, film))

	show := &entity.Show{
		Base:           entity.Base{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		CinemaID:       cinema.ID,
		FilmID:         film.ID,
		ShowTime:       now.Add(24 * time.Hour),
		Location:       "Hall 1",
		BasePriceCents: baseCents,
	}
	require.NoError(t, env.repo.Show.Create(ctx, show))

	return show, seats
}

func reserveReq(show *entity.Show, seats ...*entity.Seat) *request.ReserveSeatsRequest {
	seatIDs := make([]string, len(seats))
	for i, seat := range seats {
		seatIDs[i] = seat.ID.String()
	}
	return &request.ReserveSeatsRequest{
		ShowID:  show.ID.String(),
		SeatIDs: seatIDs,
	}
}

func TestReserveQuotesSeatPrices(t *testing.T) {
	env := newTestEnv(5 * time.Minute)
	show, seats := seedShow(t, env, 10000, 0, 50)
	userID := uuid.New().String()

	hold, err := env.service.Booking.Reserve(context.Background(), userID, reserveReq(show, seats[0], seats[1]))
	require.NoError(t, err)

	assert.Equal(t, int64(25000), hold.TotalCents)
	assert.Len(t, hold.Seats, 2)
	assert.Equal(t, int64(10000), hold.Seats[0].PriceCents)
	assert.Equal(t, int64(15000), hold.Seats[1].PriceCents)
	assert.True(t, hold.HeldUntil.After(time.Now()))
}

func TestReserveRejectsTakenSeat(t *testing.T) {
	env := newTestEnv(5 * time.Minute)
	show, seats := seedShow(t, env, 10000, 0, 0)
	ctx := context.Background()

	_, err := env.service.Booking.Reserve(ctx, uuid.New().String(), reserveReq(show, seats[0]))
	require.NoError(t, err)

	_, err = env.service.Booking.Reserve(ctx, uuid.New().String(), reserveReq(show, seats[0]))
	var seatsErr *repository.SeatsUnavailableError
	require.ErrorAs(t, err, &seatsErr)
	assert.Equal(t, []uuid.UUID{seats[0].ID}, seatsErr.SeatIDs)
}

func TestReserveIsAllOrNothing(t *testing.T) {
	env := newTestEnv(5 * time.Minute)
	show, seats := seedShow(t, env, 10000, 0, 0, 0)
	ctx := context.Background()

	_, err := env.service.Booking.Reserve(ctx, uuid.New().String(), reserveReq(show, seats[1]))
	require.NoError(t, err)

	// Seat B is taken, so A and C must stay free too.
	_, err = env.service.Booking.Reserve(ctx, uuid.New().String(), reserveReq(show, seats[0], seats[1], seats[2]))
	var seatsErr *repository.SeatsUnavailableError
	require.ErrorAs(t, err, &seatsErr)

	active, err := env.reservations.FindActiveByShow(ctx, show.ID, time.Now())
	require.NoError(t, err)
	assert.Len(t, active, 1, "failed claim must leave no partial holds")
}

func TestReserveConcurrentSingleWinner(t *testing.T) {
	env := newTestEnv(5 * time.Minute)
	show, seats := seedShow(t, env, 10000, 0)
	ctx := context.Background()

	const racers = 16
	var wg sync.WaitGroup
	results := make(chan error, racers)

	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.service.Booking.Reserve(ctx, uuid.New().String(), reserveReq(show, seats[0]))
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var wins, losses int
	for err := range results {
		if err == nil {
			wins++
			continue
		}
		var seatsErr *repository.SeatsUnavailableError
		require.ErrorAs(t, err, &seatsErr)
		losses++
	}

	assert.Equal(t, 1, wins, "exactly one racer gets the seat")
	assert.Equal(t, racers-1, losses)
}

func TestReserveValidation(t *testing.T) {
	env := newTestEnv(5 * time.Minute)
	show, seats := seedShow(t, env, 10000, 0, 0)
	ctx := context.Background()
	userID := uuid.New().String()

	var validationErr *usecase.ValidationError

	// Unknown show.
	_, err := env.service.Booking.Reserve(ctx, userID, &request.ReserveSeatsRequest{
		ShowID:  uuid.New().String(),
		SeatIDs: []string{seats[0].ID.String()},
	})
	assert.ErrorAs(t, err, &validationErr)

	// Duplicate seat in one request.
	_, err = env.service.Booking.Reserve(ctx, userID, &request.ReserveSeatsRequest{
		ShowID:  show.ID.String(),
		SeatIDs: []string{seats[0].ID.String(), seats[0].ID.String()},
	})
	assert.ErrorAs(t, err, &validationErr)

	// Seat from another cinema.
	_, otherSeats := seedShow(t, env, 5000, 0)
	_, err = env.service.Booking.Reserve(ctx, userID, reserveReq(show, otherSeats[0]))
	assert.ErrorAs(t, err, &validationErr)
}

func TestConfirmIssuesTicket(t *testing.T) {
	env := newTestEnv(5 * time.Minute)
	show, seats := seedShow(t, env, 10000, 0, 50)
	ctx := context.Background()
	userID := uuid.New().String()

	hold, err := env.service.Booking.Reserve(ctx, userID, reserveReq(show, seats[0], seats[1]))
	require.NoError(t, err)

	ticket, err := env.service.Booking.Confirm(ctx, userID, &request.ConfirmHoldRequest{
		HoldToken:          hold.HoldToken,
		ExpectedTotalCents: hold.TotalCents,
		PaymentReference:   "gw-12345",
	})
	require.NoError(t, err)

	assert.Equal(t, hold.TotalCents, ticket.TotalCents)
	assert.Equal(t, 2, ticket.SeatsCount)
	assert.Equal(t, show.ID.String(), ticket.ShowID)

	// Confirmed seats stay unavailable.
	seatMap, err := env.service.Show.SeatMap(ctx, show.ID.String())
	require.NoError(t, err)
	for _, seat := range seatMap.Seats {
		assert.False(t, seat.Available)
	}

	// A payment audit row was written.
	payments, err := env.payments.FindByUserID(ctx, uuid.MustParse(userID))
	require.NoError(t, err)
	require.Len(t, payments, 1)
	assert.Equal(t, hold.TotalCents, payments[0].AmountCents)
	require.NotNil(t, payments[0].Reference)
	assert.Equal(t, "gw-12345", *payments[0].Reference)
}

func TestConfirmConsumesHold(t *testing.T) {
	env := newTestEnv(5 * time.Minute)
	show, seats := seedShow(t, env, 10000, 0)
	ctx := context.Background()
	userID := uuid.New().String()

	hold, err := env.service.Booking.Reserve(ctx, userID, reserveReq(show, seats[0]))
	require.NoError(t, err)

	confirm := &request.ConfirmHoldRequest{
		HoldToken:          hold.HoldToken,
		ExpectedTotalCents: hold.TotalCents,
	}
	_, err = env.service.Booking.Confirm(ctx, userID, confirm)
	require.NoError(t, err)

	_, err = env.service.Booking.Confirm(ctx, userID, confirm)
	assert.ErrorIs(t, err, repository.ErrHoldNotFound)
}

func TestConfirmRejectsStaleTotal(t *testing.T) {
	env := newTestEnv(5 * time.Minute)
	show, seats := seedShow(t, env, 10000, 0)
	ctx := context.Background()
	userID := uuid.New().String()

	hold, err := env.service.Booking.Reserve(ctx, userID, reserveReq(show, seats[0]))
	require.NoError(t, err)

	_, err = env.service.Booking.Confirm(ctx, userID, &request.ConfirmHoldRequest{
		HoldToken:          hold.HoldToken,
		ExpectedTotalCents: hold.TotalCents + 1,
	})
	var validationErr *usecase.ValidationError
	require.ErrorAs(t, err, &validationErr)

	// The hold survives a rejected confirmation.
	held, err := env.reservations.FindByHoldToken(ctx, uuid.MustParse(hold.HoldToken))
	require.NoError(t, err)
	assert.Len(t, held, 1)
}

func TestConfirmExpiredHoldFreesSeats(t *testing.T) {
	// Holds are born expired with a negative TTL.
	env := newTestEnv(-time.Second)
	show, seats := seedShow(t, env, 10000, 0)
	ctx := context.Background()
	userID := uuid.New().String()

	hold, err := env.service.Booking.Reserve(ctx, userID, reserveReq(show, seats[0]))
	require.NoError(t, err)

	_, err = env.service.Booking.Confirm(ctx, userID, &request.ConfirmHoldRequest{
		HoldToken:          hold.HoldToken,
		ExpectedTotalCents: hold.TotalCents,
	})
	assert.ErrorIs(t, err, repository.ErrHoldExpired)

	// The failed confirmation must not leave a ticket behind.
	tickets, err := env.repo.Ticket.FindByUserID(ctx, uuid.MustParse(userID), 10, 0)
	require.NoError(t, err)
	assert.Empty(t, tickets)

	// The seat is free again.
	seatMap, err := env.service.Show.SeatMap(ctx, show.ID.String())
	require.NoError(t, err)
	require.Len(t, seatMap.Seats, 1)
	assert.True(t, seatMap.Seats[0].Available)
}

func TestExpiredHoldYieldsSeatToNextClaim(t *testing.T) {
	env := newTestEnv(-time.Second)
	show, seats := seedShow(t, env, 10000, 0)
	ctx := context.Background()

	_, err := env.service.Booking.Reserve(ctx, uuid.New().String(), reserveReq(show, seats[0]))
	require.NoError(t, err)

	// The previous hold is already past its TTL, so a new claim wins.
	_, err = env.service.Booking.Reserve(ctx, uuid.New().String(), reserveReq(show, seats[0]))
	require.NoError(t, err)
}

func TestReleaseFreesHold(t *testing.T) {
	env := newTestEnv(5 * time.Minute)
	show, seats := seedShow(t, env, 10000, 0)
	ctx := context.Background()
	userID := uuid.New().String()

	hold, err := env.service.Booking.Reserve(ctx, userID, reserveReq(show, seats[0]))
	require.NoError(t, err)

	require.NoError(t, env.service.Booking.Release(ctx, hold.HoldToken))

	// Releasing again reports the hold as gone.
	assert.ErrorIs(t, env.service.Booking.Release(ctx, hold.HoldToken), repository.ErrHoldNotFound)

	_, err = env.service.Booking.Reserve(ctx, uuid.New().String(), reserveReq(show, seats[0]))
	require.NoError(t, err)
}

func TestCancelTicketFreesSeatsAndIsIdempotent(t *testing.T) {
	env := newTestEnv(5 * time.Minute)
	show, seats := seedShow(t, env, 10000, 0)
	ctx := context.Background()
	userID := uuid.New().String()

	hold, err := env.service.Booking.Reserve(ctx, userID, reserveReq(show, seats[0]))
	require.NoError(t, err)
	ticket, err := env.service.Booking.Confirm(ctx, userID, &request.ConfirmHoldRequest{
		HoldToken:          hold.HoldToken,
		ExpectedTotalCents: hold.TotalCents,
	})
	require.NoError(t, err)

	require.NoError(t, env.service.Booking.CancelTicket(ctx, userID, "customer", ticket.ID))

	// Second cancel is a no-op.
	require.NoError(t, env.service.Booking.CancelTicket(ctx, userID, "customer", ticket.ID))

	_, err = env.service.Booking.Reserve(ctx, uuid.New().String(), reserveReq(show, seats[0]))
	require.NoError(t, err)
}

func TestCancelTicketEnforcesOwnership(t *testing.T) {
	env := newTestEnv(5 * time.Minute)
	show, seats := seedShow(t, env, 10000, 0)
	ctx := context.Background()
	owner := uuid.New().String()

	hold, err := env.service.Booking.Reserve(ctx, owner, reserveReq(show, seats[0]))
	require.NoError(t, err)
	ticket, err := env.service.Booking.Confirm(ctx, owner, &request.ConfirmHoldRequest{
		HoldToken:          hold.HoldToken,
		ExpectedTotalCents: hold.TotalCents,
	})
	require.NoError(t, err)

	stranger := uuid.New().String()
	assert.ErrorIs(t, env.service.Booking.CancelTicket(ctx, stranger, "customer", ticket.ID), usecase.ErrNotOwner)

	// Admins may cancel anyone's ticket.
	require.NoError(t, env.service.Booking.CancelTicket(ctx, stranger, "admin", ticket.ID))
}

func TestBookedOutLifecycle(t *testing.T) {
	env := newTestEnv(5 * time.Minute)
	show, seats := seedShow(t, env, 10000, 0, 0)
	ctx := context.Background()
	userID := uuid.New().String()

	hold, err := env.service.Booking.Reserve(ctx, userID, reserveReq(show, seats[0], seats[1]))
	require.NoError(t, err)

	// Held seats count against availability.
	current, err := env.repo.Show.FindByID(ctx, show.ID)
	require.NoError(t, err)
	assert.True(t, current.BookedOut)

	require.NoError(t, env.service.Booking.Release(ctx, hold.HoldToken))

	current, err = env.repo.Show.FindByID(ctx, show.ID)
	require.NoError(t, err)
	assert.False(t, current.BookedOut)
}

func TestSweepExpiredHoldsClearsBookedOut(t *testing.T) {
	env := newTestEnv(-time.Second)
	show, seats := seedShow(t, env, 10000, 0)
	ctx := context.Background()

	_, err := env.service.Booking.Reserve(ctx, uuid.New().String(), reserveReq(show, seats[0]))
	require.NoError(t, err)

	swept, err := env.service.Booking.SweepExpiredHolds(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, swept)

	current, err := env.repo.Show.FindByID(ctx, show.ID)
	require.NoError(t, err)
	assert.False(t, current.BookedOut)

	active, err := env.reservations.FindActiveByShow(ctx, show.ID, time.Now())
	require.NoError(t, err)
	assert.Empty(t, active)
}

func TestGetAndListTickets(t *testing.T) {
	env := newTestEnv(5 * time.Minute)
	show, seats := seedShow(t, env, 10000, 0, 50)
	ctx := context.Background()
	userID := uuid.New().String()

	hold, err := env.service.Booking.Reserve(ctx, userID, reserveReq(show, seats[0], seats[1]))
	require.NoError(t, err)
	issued, err := env.service.Booking.Confirm(ctx, userID, &request.ConfirmHoldRequest{
		HoldToken:          hold.HoldToken,
		ExpectedTotalCents: hold.TotalCents,
	})
	require.NoError(t, err)

	ticket, err := env.service.Booking.GetTicket(ctx, userID, "customer", issued.ID)
	require.NoError(t, err)
	assert.Equal(t, issued.TotalCents, ticket.TotalCents)
	assert.Len(t, ticket.Seats, 2)

	// Other customers cannot read it.
	_, err = env.service.Booking.GetTicket(ctx, uuid.New().String(), "customer", issued.ID)
	assert.ErrorIs(t, err, usecase.ErrNotOwner)

	list, err := env.service.Booking.ListTickets(ctx, userID, &request.PaginatedRequest{Page: 1, PerPage: 10})
	require.NoError(t, err)
	require.Len(t, list.Data, 1)
	assert.Equal(t, issued.ID, list.Data[0].ID)
	assert.Equal(t, int64(1), list.Pagination.Total)
}
