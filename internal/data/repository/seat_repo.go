package repository

import (
	"context"
	"fmt"

	"cinema-tickets/internal/data/entity"
	"cinema-tickets/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type SeatRepository interface {
	// FindByCinemaID returns the cinema's full seat catalog ordered by label.
	FindByCinemaID(ctx context.Context, cinemaID uuid.UUID) ([]*entity.Seat, error)
	// FindByIDs returns the seats matching the given IDs, in label order.
	// Missing IDs are simply absent from the result.
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*entity.Seat, error)
	CountByCinemaID(ctx context.Context, cinemaID uuid.UUID) (int, error)
}

type seatRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewSeatRepository(db database.PgxIface, log *zap.Logger) SeatRepository {
	return &seatRepository{
		db:  db,
		log: log.With(zap.String("repository", "seat")),
	}
}

const seatColumns = `id, cinema_id, label, type, premium_percent, created_at, updated_at`

func (r *seatRepository) scanSeats(rows pgx.Rows) ([]*entity.Seat, error) {
	defer rows.Close()

	var seats []*entity.Seat
	for rows.Next() {
		var seat entity.Seat
		err := rows.Scan(
			&seat.ID,
			&seat.CinemaID,
			&seat.Label,
			&seat.Type,
			&seat.PremiumPercent,
			&seat.CreatedAt,
			&seat.UpdatedAt,
		)
		if err != nil {
			r.log.Error("Failed to scan seat row", zap.Error(err))
			return nil, fmt.Errorf("scan seat row: %w", err)
		}
		seats = append(seats, &seat)
	}

	return seats, nil
}

func (r *seatRepository) FindByCinemaID(ctx context.Context, cinemaID uuid.UUID) ([]*entity.Seat, error) {
	query := `
		SELECT ` + seatColumns + `
		FROM seats
		WHERE cinema_id = $1
		ORDER BY label
	`

	rows, err := r.db.Query(ctx, query, cinemaID)
	if err != nil {
		r.log.Error("Failed to find seats by cinema",
			zap.Error(err),
			zap.String("cinema_id", cinemaID.String()),
		)
		return nil, fmt.Errorf("find seats for cinema %s: %w", cinemaID.String(), err)
	}

	return r.scanSeats(rows)
}

func (r *seatRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*entity.Seat, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := `
		SELECT ` + seatColumns + `
		FROM seats
		WHERE id = ANY($1)
		ORDER BY label
	`

	rows, err := r.db.Query(ctx, query, ids)
	if err != nil {
		r.log.Error("Failed to find seats by IDs", zap.Error(err))
		return nil, fmt.Errorf("find seats by ids: %w", err)
	}

	return r.scanSeats(rows)
}

func (r *seatRepository) CountByCinemaID(ctx context.Context, cinemaID uuid.UUID) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM seats WHERE cinema_id = $1`, cinemaID).Scan(&count)
	if err != nil {
		r.log.Error("Failed to count seats",
			zap.Error(err),
			zap.String("cinema_id", cinemaID.String()),
		)
		return 0, fmt.Errorf("count seats for cinema %s: %w", cinemaID.String(), err)
	}
	return count, nil
}
