package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cinema-tickets/internal/data/entity"
	"cinema-tickets/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

// ReservationRepository owns the seat_reservations table, the single source
// of truth for seat state: no row = free, row without ticket = held, row
// with ticket = confirmed. The unique index on (seat_id, show_id) is the
// final arbiter when two writers race for the same seat.
type ReservationRepository interface {
	// ClaimSeats inserts all holds of one reserve call atomically. Every row
	// must carry the same show and hold token. Expired holds on the show are
	// purged first. If any requested seat already has a live row, nothing is
	// inserted and a *SeatsUnavailableError lists the conflicts.
	ClaimSeats(ctx context.Context, reservations []*entity.SeatReservation) error

	// FindActiveByShow returns confirmed rows plus unexpired holds.
	FindActiveByShow(ctx context.Context, showID uuid.UUID, now time.Time) ([]*entity.SeatReservation, error)

	FindByHoldToken(ctx context.Context, token uuid.UUID) ([]*entity.SeatReservation, error)
	FindByTicketID(ctx context.Context, ticketID uuid.UUID) ([]*entity.SeatReservation, error)

	// ConfirmHold attaches the ticket to every row of the hold, making the
	// reservations permanent. ErrHoldNotFound when the token matches no held
	// rows; ErrHoldExpired when the TTL elapsed, in which case the rows are
	// deleted so the seats read as free again. Runs under row locks so a
	// racing sweep cannot free seats that are being confirmed.
	ConfirmHold(ctx context.Context, token, ticketID uuid.UUID, now time.Time) ([]*entity.SeatReservation, error)

	// ReleaseByHoldToken deletes an unconfirmed hold. Returns the show the
	// hold belonged to (nil when nothing was deleted) and the row count.
	ReleaseByHoldToken(ctx context.Context, token uuid.UUID) (*uuid.UUID, int64, error)

	// DeleteByTicketID frees all seats of a ticket. Returns the affected
	// show (nil when the ticket had no rows) and the row count.
	DeleteByTicketID(ctx context.Context, ticketID uuid.UUID) (*uuid.UUID, int64, error)

	// DeleteExpired removes every hold whose TTL elapsed and returns the
	// distinct shows that had seats freed.
	DeleteExpired(ctx context.Context, now time.Time) ([]uuid.UUID, error)
}

type reservationRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewReservationRepository(db database.PgxIface, log *zap.Logger) ReservationRepository {
	return &reservationRepository{
		db:  db,
		log: log.With(zap.String("repository", "reservation")),
	}
}

const reservationColumns = `id, seat_id, show_id, ticket_id, hold_token, held_until, price_cents, created_at`

func scanReservation(row pgx.Row) (*entity.SeatReservation, error) {
	var res entity.SeatReservation
	err := row.Scan(
		&res.ID,
		&res.SeatID,
		&res.ShowID,
		&res.TicketID,
		&res.HoldToken,
		&res.HeldUntil,
		&res.PriceCents,
		&res.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (r *reservationRepository) queryReservations(ctx context.Context, query string, args ...any) ([]*entity.SeatReservation, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reservations []*entity.SeatReservation
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan reservation row: %w", err)
		}
		reservations = append(reservations, res)
	}

	return reservations, nil
}

func (r *reservationRepository) ClaimSeats(ctx context.Context, reservations []*entity.SeatReservation) error {
	if len(reservations) == 0 {
		return nil
	}

	showID := reservations[0].ShowID
	seatIDs := make([]uuid.UUID, len(reservations))
	for i, res := range reservations {
		seatIDs[i] = res.SeatID
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin claim tx: %w", err)
	}
	defer tx.Rollback(ctx)

	// Lazy expiry: stale holds on this show must not block the claim.
	_, err = tx.Exec(ctx,
		`DELETE FROM seat_reservations WHERE show_id = $1 AND ticket_id IS NULL AND held_until <= NOW()`,
		showID,
	)
	if err != nil {
		return fmt.Errorf("purge expired holds for show %s: %w", showID.String(), err)
	}

	conflictRows, err := tx.Query(ctx,
		`SELECT seat_id FROM seat_reservations WHERE show_id = $1 AND seat_id = ANY($2)`,
		showID, seatIDs,
	)
	if err != nil {
		return fmt.Errorf("check seat conflicts for show %s: %w", showID.String(), err)
	}

	var conflicts []uuid.UUID
	for conflictRows.Next() {
		var seatID uuid.UUID
		if err := conflictRows.Scan(&seatID); err != nil {
			conflictRows.Close()
			return fmt.Errorf("scan conflict row: %w", err)
		}
		conflicts = append(conflicts, seatID)
	}
	conflictRows.Close()

	if len(conflicts) > 0 {
		return &SeatsUnavailableError{SeatIDs: conflicts}
	}

	insertQuery := `
		INSERT INTO seat_reservations (id, seat_id, show_id, ticket_id, hold_token, held_until, price_cents, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	for _, res := range reservations {
		_, err = tx.Exec(ctx, insertQuery,
			res.ID,
			res.SeatID,
			res.ShowID,
			res.TicketID,
			res.HoldToken,
			res.HeldUntil,
			res.PriceCents,
			res.CreatedAt,
		)
		if err != nil {
			// A writer that slipped in between the conflict check and the
			// insert trips the (seat_id, show_id) unique index. The losing
			// side reports the seats as unavailable; callers may re-read the
			// seat map for the exact winner.
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23505" {
				return &SeatsUnavailableError{SeatIDs: []uuid.UUID{res.SeatID}}
			}
			r.log.Error("Failed to insert seat reservation",
				zap.Error(err),
				zap.String("show_id", showID.String()),
				zap.String("seat_id", res.SeatID.String()),
			)
			return fmt.Errorf("insert reservation for seat %s show %s: %w",
				res.SeatID.String(), showID.String(), err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit claim tx: %w", err)
	}

	return nil
}

func (r *reservationRepository) FindActiveByShow(ctx context.Context, showID uuid.UUID, now time.Time) ([]*entity.SeatReservation, error) {
	query := `
		SELECT ` + reservationColumns + `
		FROM seat_reservations
		WHERE show_id = $1 AND (ticket_id IS NOT NULL OR held_until > $2)
	`

	reservations, err := r.queryReservations(ctx, query, showID, now)
	if err != nil {
		r.log.Error("Failed to find active reservations",
			zap.Error(err),
			zap.String("show_id", showID.String()),
		)
		return nil, fmt.Errorf("find active reservations for show %s: %w", showID.String(), err)
	}

	return reservations, nil
}

func (r *reservationRepository) FindByHoldToken(ctx context.Context, token uuid.UUID) ([]*entity.SeatReservation, error) {
	query := `
		SELECT ` + reservationColumns + `
		FROM seat_reservations
		WHERE hold_token = $1 AND ticket_id IS NULL
	`

	reservations, err := r.queryReservations(ctx, query, token)
	if err != nil {
		r.log.Error("Failed to find reservations by hold token", zap.Error(err))
		return nil, fmt.Errorf("find reservations by hold token: %w", err)
	}

	return reservations, nil
}

func (r *reservationRepository) FindByTicketID(ctx context.Context, ticketID uuid.UUID) ([]*entity.SeatReservation, error) {
	query := `
		SELECT ` + reservationColumns + `
		FROM seat_reservations
		WHERE ticket_id = $1
	`

	reservations, err := r.queryReservations(ctx, query, ticketID)
	if err != nil {
		r.log.Error("Failed to find reservations by ticket",
			zap.Error(err),
			zap.String("ticket_id", ticketID.String()),
		)
		return nil, fmt.Errorf("find reservations for ticket %s: %w", ticketID.String(), err)
	}

	return reservations, nil
}

func (r *reservationRepository) ConfirmHold(ctx context.Context, token, ticketID uuid.UUID, now time.Time) ([]*entity.SeatReservation, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin confirm tx: %w", err)
	}
	defer tx.Rollback(ctx)

	rows, err := tx.Query(ctx,
		`SELECT `+reservationColumns+`
		 FROM seat_reservations
		 WHERE hold_token = $1 AND ticket_id IS NULL
		 FOR UPDATE`,
		token,
	)
	if err != nil {
		return nil, fmt.Errorf("lock hold rows: %w", err)
	}

	var held []*entity.SeatReservation
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan held row: %w", err)
		}
		held = append(held, res)
	}
	rows.Close()

	if len(held) == 0 {
		return nil, ErrHoldNotFound
	}

	for _, res := range held {
		if res.Expired(now) {
			// Too late: free the seats and make the caller re-reserve.
			if _, err := tx.Exec(ctx, `DELETE FROM seat_reservations WHERE hold_token = $1 AND ticket_id IS NULL`, token); err != nil {
				return nil, fmt.Errorf("delete expired hold: %w", err)
			}
			if err := tx.Commit(ctx); err != nil {
				return nil, fmt.Errorf("commit expired hold cleanup: %w", err)
			}
			return nil, ErrHoldExpired
		}
	}

	_, err = tx.Exec(ctx,
		`UPDATE seat_reservations
		 SET ticket_id = $2, hold_token = NULL, held_until = NULL
		 WHERE hold_token = $1 AND ticket_id IS NULL`,
		token, ticketID,
	)
	if err != nil {
		return nil, fmt.Errorf("attach ticket %s to hold: %w", ticketID.String(), err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit confirm tx: %w", err)
	}

	for _, res := range held {
		tid := ticketID
		res.TicketID = &tid
		res.HoldToken = nil
		res.HeldUntil = nil
	}

	return held, nil
}

func (r *reservationRepository) ReleaseByHoldToken(ctx context.Context, token uuid.UUID) (*uuid.UUID, int64, error) {
	query := `
		DELETE FROM seat_reservations
		WHERE hold_token = $1 AND ticket_id IS NULL
		RETURNING show_id
	`

	rows, err := r.db.Query(ctx, query, token)
	if err != nil {
		r.log.Error("Failed to release hold", zap.Error(err))
		return nil, 0, fmt.Errorf("release hold: %w", err)
	}
	defer rows.Close()

	var showID *uuid.UUID
	var count int64
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, 0, fmt.Errorf("scan released row: %w", err)
		}
		showID = &id
		count++
	}

	return showID, count, nil
}

func (r *reservationRepository) DeleteByTicketID(ctx context.Context, ticketID uuid.UUID) (*uuid.UUID, int64, error) {
	query := `
		DELETE FROM seat_reservations
		WHERE ticket_id = $1
		RETURNING show_id
	`

	rows, err := r.db.Query(ctx, query, ticketID)
	if err != nil {
		r.log.Error("Failed to delete reservations by ticket",
			zap.Error(err),
			zap.String("ticket_id", ticketID.String()),
		)
		return nil, 0, fmt.Errorf("delete reservations for ticket %s: %w", ticketID.String(), err)
	}
	defer rows.Close()

	var showID *uuid.UUID
	var count int64
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, 0, fmt.Errorf("scan deleted row: %w", err)
		}
		showID = &id
		count++
	}

	return showID, count, nil
}

func (r *reservationRepository) DeleteExpired(ctx context.Context, now time.Time) ([]uuid.UUID, error) {
	query := `
		DELETE FROM seat_reservations
		WHERE ticket_id IS NULL AND held_until <= $1
		RETURNING show_id
	`

	rows, err := r.db.Query(ctx, query, now)
	if err != nil {
		r.log.Error("Failed to sweep expired holds", zap.Error(err))
		return nil, fmt.Errorf("sweep expired holds: %w", err)
	}
	defer rows.Close()

	seen := make(map[uuid.UUID]bool)
	var showIDs []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan swept row: %w", err)
		}
		if !seen[id] {
			seen[id] = true
			showIDs = append(showIDs, id)
		}
	}

	return showIDs, nil
}
