package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"cinema-tickets/internal/data/entity"
	"cinema-tickets/internal/data/repository"
	"cinema-tickets/internal/dto/request"
	"cinema-tickets/internal/dto/response"
	"cinema-tickets/internal/events"
	"cinema-tickets/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type BookingService interface {
	// Reserve places a time-limited hold on the requested seats, all or
	// nothing. The returned hold token is the only handle on the hold.
	Reserve(ctx context.Context, userID string, req *request.ReserveSeatsRequest) (*response.HoldResponse, error)

	// Confirm turns a live hold into a ticket. The caller's expected total
	// must match the held prices exactly.
	Confirm(ctx context.Context, userID string, req *request.ConfirmHoldRequest) (*response.TicketResponse, error)

	// Release frees a hold before it expires.
	Release(ctx context.Context, holdToken string) error

	// CancelTicket frees a ticket's seats. Cancelling a ticket that no
	// longer exists is a no-op.
	CancelTicket(ctx context.Context, userID, role, ticketID string) error

	GetTicket(ctx context.Context, userID, role, ticketID string) (*response.TicketResponse, error)
	ListTickets(ctx context.Context, userID string, req *request.PaginatedRequest) (*response.PaginatedResponse[response.TicketResponse], error)

	// SweepExpiredHolds reclaims every hold past its TTL and returns how
	// many shows had seats freed.
	SweepExpiredHolds(ctx context.Context) (int, error)

	// StartSweeper runs SweepExpiredHolds on a ticker until ctx is done.
	StartSweeper(ctx context.Context)
}

const showLockStripes = 64

type bookingService struct {
	repo      *repository.Repository
	config    *utils.Config
	shows     ShowService
	publisher *events.Publisher
	log       *zap.Logger

	// Per-show stripes serialize claims on the same show inside this
	// process; the unique index on (seat_id, show_id) still arbitrates
	// across processes.
	locks [showLockStripes]sync.Mutex
}

func NewBookingService(repo *repository.Repository, config *utils.Config, shows ShowService, publisher *events.Publisher, log *zap.Logger) BookingService {
	return &bookingService{
		repo:      repo,
		config:    config,
		shows:     shows,
		publisher: publisher,
		log:       log.With(zap.String("service", "booking")),
	}
}

func (s *bookingService) showLock(showID uuid.UUID) *sync.Mutex {
	return &s.locks[int(showID[0])%showLockStripes]
}

func (s *bookingService) Reserve(ctx context.Context, userID string, req *request.ReserveSeatsRequest) (*response.HoldResponse, error) {
	if err := validate(req); err != nil {
		s.log.Warn("Reserve validation failed", zap.Error(err))
		return nil, err
	}

	showID, err := uuid.Parse(req.ShowID)
	if err != nil {
		return nil, validationFailure("show_id", "invalid ID format")
	}

	seatIDs := make([]uuid.UUID, 0, len(req.SeatIDs))
	seen := make(map[uuid.UUID]bool, len(req.SeatIDs))
	for _, raw := range req.SeatIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, validationFailure("seat_ids", fmt.Sprintf("invalid seat ID %s", raw))
		}
		if seen[id] {
			return nil, validationFailure("seat_ids", fmt.Sprintf("duplicate seat %s", raw))
		}
		seen[id] = true
		seatIDs = append(seatIDs, id)
	}

	show, err := s.repo.Show.FindByID(ctx, showID)
	if err != nil {
		return nil, fmt.Errorf("get show: %w", err)
	}
	if show == nil {
		return nil, validationFailure("show_id", "show not found")
	}
	if show.ShowTime.Before(time.Now()) {
		return nil, validationFailure("show_id", "show has already started")
	}

	seats, err := s.repo.Seat.FindByIDs(ctx, seatIDs)
	if err != nil {
		return nil, fmt.Errorf("load seats: %w", err)
	}
	seatsByID := make(map[uuid.UUID]*entity.Seat, len(seats))
	for _, seat := range seats {
		seatsByID[seat.ID] = seat
	}
	for _, id := range seatIDs {
		seat, ok := seatsByID[id]
		if !ok {
			return nil, validationFailure("seat_ids", fmt.Sprintf("seat %s not found", id.String()))
		}
		if seat.CinemaID != show.CinemaID {
			return nil, validationFailure("seat_ids", fmt.Sprintf("seat %s does not belong to the show's cinema", id.String()))
		}
	}

	now := time.Now()
	token := uuid.New()
	heldUntil := now.Add(s.config.Booking.HoldTTL)

	reservations := make([]*entity.SeatReservation, len(seatIDs))
	var total int64
	for i, id := range seatIDs {
		price := SeatPriceCents(show.BasePriceCents, seatsByID[id].PremiumPercent)
		total += price
		tok := token
		until := heldUntil
		reservations[i] = &entity.SeatReservation{
			BaseSimple: entity.BaseSimple{
				ID:        uuid.New(),
				CreatedAt: now,
			},
			SeatID:     id,
			ShowID:     showID,
			HoldToken:  &tok,
			HeldUntil:  &until,
			PriceCents: price,
		}
	}

	lock := s.showLock(showID)
	lock.Lock()
	err = s.repo.Reservation.ClaimSeats(ctx, reservations)
	lock.Unlock()
	if err != nil {
		return nil, err
	}

	if err := s.shows.RefreshBookedOut(ctx, showID); err != nil {
		s.log.Warn("Failed to refresh booked_out after reserve",
			zap.Error(err),
			zap.String("show_id", showID.String()),
		)
	}

	s.log.Info("Seats held",
		zap.String("user_id", userID),
		zap.String("show_id", showID.String()),
		zap.Int("seats", len(seatIDs)),
		zap.Int64("total_cents", total),
		zap.Time("held_until", heldUntil),
	)

	held := make([]response.HeldSeat, len(reservations))
	for i, res := range reservations {
		held[i] = response.HeldSeat{
			SeatID:     res.SeatID.String(),
			Label:      seatsByID[res.SeatID].Label,
			PriceCents: res.PriceCents,
		}
	}

	return &response.HoldResponse{
		HoldToken:  token.String(),
		ShowID:     showID.String(),
		HeldUntil:  heldUntil,
		TotalCents: total,
		Seats:      held,
	}, nil
}

func (s *bookingService) Confirm(ctx context.Context, userID string, req *request.ConfirmHoldRequest) (*response.TicketResponse, error) {
	if err := validate(req); err != nil {
		s.log.Warn("Confirm validation failed", zap.Error(err))
		return nil, err
	}

	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return nil, validationFailure("user_id", "invalid ID format")
	}
	token, err := uuid.Parse(req.HoldToken)
	if err != nil {
		return nil, validationFailure("hold_token", "invalid token format")
	}

	held, err := s.repo.Reservation.FindByHoldToken(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("load hold: %w", err)
	}
	if len(held) == 0 {
		return nil, repository.ErrHoldNotFound
	}

	var total int64
	for _, res := range held {
		total += res.PriceCents
	}
	if total != req.ExpectedTotalCents {
		// The prices quoted at reserve time are authoritative. A mismatch
		// means the client is confirming a stale quote.
		return nil, validationFailure("expected_total_cents",
			fmt.Sprintf("expected %d, hold totals %d", req.ExpectedTotalCents, total))
	}

	now := time.Now()
	ticket := &entity.Ticket{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		UserID:     userUUID,
		TotalCents: total,
		SeatsCount: len(held),
	}

	if err := s.repo.Ticket.Create(ctx, ticket); err != nil {
		return nil, fmt.Errorf("create ticket: %w", err)
	}

	confirmed, err := s.repo.Reservation.ConfirmHold(ctx, token, ticket.ID, now)
	if err != nil {
		// The hold was gone or expired under us; the ticket must not
		// outlive its seats.
		if delErr := s.repo.Ticket.Delete(ctx, ticket.ID); delErr != nil {
			s.log.Error("Failed to delete orphaned ticket",
				zap.Error(delErr),
				zap.String("ticket_id", ticket.ID.String()),
			)
		}
		return nil, err
	}

	showID := confirmed[0].ShowID

	var reference *string
	if req.PaymentReference != "" {
		ref := req.PaymentReference
		reference = &ref
	}
	payment := &entity.Payment{
		BaseSimple: entity.BaseSimple{
			ID:        uuid.New(),
			CreatedAt: now,
		},
		UserID:      userUUID,
		ShowID:      &showID,
		AmountCents: total,
		Reference:   reference,
	}
	if err := s.repo.Payment.Create(ctx, payment); err != nil {
		s.log.Warn("Failed to record payment",
			zap.Error(err),
			zap.String("ticket_id", ticket.ID.String()),
		)
	}

	if err := s.shows.RefreshBookedOut(ctx, showID); err != nil {
		s.log.Warn("Failed to refresh booked_out after confirm",
			zap.Error(err),
			zap.String("show_id", showID.String()),
		)
	}

	labels := s.seatLabels(ctx, confirmed)

	if err := s.publisher.TicketIssued(ctx, events.TicketIssuedEvent{
		TicketID:   ticket.ID.String(),
		UserID:     userID,
		ShowID:     showID.String(),
		SeatLabels: labels,
		TotalCents: total,
		IssuedAt:   now,
	}); err != nil {
		s.log.Warn("Failed to publish ticket.issued", zap.Error(err))
	}

	s.log.Info("Ticket issued",
		zap.String("ticket_id", ticket.ID.String()),
		zap.String("user_id", userID),
		zap.String("show_id", showID.String()),
		zap.Int("seats", len(confirmed)),
		zap.Int64("total_cents", total),
	)

	return s.convertTicketResponse(ticket, confirmed, labels), nil
}

func (s *bookingService) Release(ctx context.Context, holdToken string) error {
	token, err := uuid.Parse(holdToken)
	if err != nil {
		return validationFailure("hold_token", "invalid token format")
	}

	showID, count, err := s.repo.Reservation.ReleaseByHoldToken(ctx, token)
	if err != nil {
		return fmt.Errorf("release hold: %w", err)
	}
	if count == 0 {
		return repository.ErrHoldNotFound
	}

	if err := s.shows.RefreshBookedOut(ctx, *showID); err != nil {
		s.log.Warn("Failed to refresh booked_out after release",
			zap.Error(err),
			zap.String("show_id", showID.String()),
		)
	}

	s.log.Info("Hold released",
		zap.String("show_id", showID.String()),
		zap.Int64("seats_freed", count),
	)

	return nil
}

func (s *bookingService) CancelTicket(ctx context.Context, userID, role, ticketID string) error {
	id, err := uuid.Parse(ticketID)
	if err != nil {
		return validationFailure("ticket_id", "invalid ID format")
	}

	ticket, err := s.repo.Ticket.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("get ticket: %w", err)
	}
	if ticket == nil {
		// Already cancelled; nothing to undo.
		return nil
	}

	if role != string(entity.RoleAdmin) && ticket.UserID.String() != userID {
		return ErrNotOwner
	}

	showID, freed, err := s.repo.Reservation.DeleteByTicketID(ctx, id)
	if err != nil {
		return fmt.Errorf("free ticket seats: %w", err)
	}

	if err := s.repo.Ticket.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete ticket %s: %w", ticketID, err)
	}

	if showID != nil {
		if err := s.shows.RefreshBookedOut(ctx, *showID); err != nil {
			s.log.Warn("Failed to refresh booked_out after cancel",
				zap.Error(err),
				zap.String("show_id", showID.String()),
			)
		}
	}

	if err := s.publisher.TicketCancelled(ctx, events.TicketCancelledEvent{
		TicketID:    ticketID,
		UserID:      ticket.UserID.String(),
		SeatsFreed:  int(freed),
		CancelledAt: time.Now(),
	}); err != nil {
		s.log.Warn("Failed to publish ticket.cancelled", zap.Error(err))
	}

	s.log.Info("Ticket cancelled",
		zap.String("ticket_id", ticketID),
		zap.Int64("seats_freed", freed),
	)

	return nil
}

func (s *bookingService) GetTicket(ctx context.Context, userID, role, ticketID string) (*response.TicketResponse, error) {
	id, err := uuid.Parse(ticketID)
	if err != nil {
		return nil, validationFailure("ticket_id", "invalid ID format")
	}

	ticket, err := s.repo.Ticket.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get ticket: %w", err)
	}
	if ticket == nil {
		return nil, repository.ErrNotFound
	}

	if role != string(entity.RoleAdmin) && ticket.UserID.String() != userID {
		return nil, ErrNotOwner
	}

	reservations, err := s.repo.Reservation.FindByTicketID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load ticket seats: %w", err)
	}

	return s.convertTicketResponse(ticket, reservations, s.seatLabels(ctx, reservations)), nil
}

func (s *bookingService) ListTickets(ctx context.Context, userID string, req *request.PaginatedRequest) (*response.PaginatedResponse[response.TicketResponse], error) {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return nil, validationFailure("user_id", "invalid ID format")
	}

	tickets, err := s.repo.Ticket.FindByUserID(ctx, userUUID, req.Limit(), req.Offset())
	if err != nil {
		return nil, fmt.Errorf("list tickets: %w", err)
	}

	total, err := s.repo.Ticket.CountByUserID(ctx, userUUID)
	if err != nil {
		return nil, fmt.Errorf("count tickets: %w", err)
	}

	ticketResponses := make([]response.TicketResponse, len(tickets))
	for i, ticket := range tickets {
		ticketResponses[i] = response.TicketResponse{
			ID:         ticket.ID.String(),
			TotalCents: ticket.TotalCents,
			SeatsCount: ticket.SeatsCount,
			IssuedAt:   ticket.CreatedAt,
		}
	}

	return response.NewPaginatedResponse(ticketResponses, req.Page, req.PerPage, total), nil
}

func (s *bookingService) SweepExpiredHolds(ctx context.Context) (int, error) {
	showIDs, err := s.repo.Reservation.DeleteExpired(ctx, time.Now())
	if err != nil {
		return 0, fmt.Errorf("sweep expired holds: %w", err)
	}

	for _, showID := range showIDs {
		if err := s.shows.RefreshBookedOut(ctx, showID); err != nil {
			s.log.Warn("Failed to refresh booked_out after sweep",
				zap.Error(err),
				zap.String("show_id", showID.String()),
			)
		}
	}

	if len(showIDs) > 0 {
		s.log.Info("Expired holds swept", zap.Int("shows", len(showIDs)))
	}

	return len(showIDs), nil
}

func (s *bookingService) StartSweeper(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(s.config.Booking.SweepInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := s.SweepExpiredHolds(ctx); err != nil {
					s.log.Error("Sweep failed", zap.Error(err))
				}
			}
		}
	}()
}

func (s *bookingService) seatLabels(ctx context.Context, reservations []*entity.SeatReservation) []string {
	seatIDs := make([]uuid.UUID, len(reservations))
	for i, res := range reservations {
		seatIDs[i] = res.SeatID
	}

	labels := make([]string, len(reservations))
	seats, err := s.repo.Seat.FindByIDs(ctx, seatIDs)
	if err != nil {
		s.log.Warn("Failed to load seat labels", zap.Error(err))
		return labels
	}

	byID := make(map[uuid.UUID]string, len(seats))
	for _, seat := range seats {
		byID[seat.ID] = seat.Label
	}
	for i, res := range reservations {
		labels[i] = byID[res.SeatID]
	}

	return labels
}

func (s *bookingService) convertTicketResponse(ticket *entity.Ticket, reservations []*entity.SeatReservation, labels []string) *response.TicketResponse {
	resp := &response.TicketResponse{
		ID:         ticket.ID.String(),
		TotalCents: ticket.TotalCents,
		SeatsCount: ticket.SeatsCount,
		IssuedAt:   ticket.CreatedAt,
	}

	if len(reservations) > 0 {
		resp.ShowID = reservations[0].ShowID.String()
		resp.Seats = make([]response.HeldSeat, len(reservations))
		for i, res := range reservations {
			label := ""
			if i < len(labels) {
				label = labels[i]
			}
			resp.Seats[i] = response.HeldSeat{
				SeatID:     res.SeatID.String(),
				Label:      label,
				PriceCents: res.PriceCents,
			}
		}
	}

	return resp
}
