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

type CinemaRepository interface {
	// CreateWithSeats inserts the cinema and its fixed seat layout in one
	// transaction. Seats are a venue property, defined once and reused by
	// every show at the cinema.
	CreateWithSeats(ctx context.Context, cinema *entity.Cinema, seats []*entity.Seat) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Cinema, error)
	FindAll(ctx context.Context, limit, offset int) ([]*entity.Cinema, error)
	CountAll(ctx context.Context) (int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type cinemaRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewCinemaRepository(db database.PgxIface, log *zap.Logger) CinemaRepository {
	return &cinemaRepository{
		db:  db,
		log: log.With(zap.String("repository", "cinema")),
	}
}

func (r *cinemaRepository) CreateWithSeats(ctx context.Context, cinema *entity.Cinema, seats []*entity.Seat) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin create cinema tx: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO cinemas (id, user_id, name, location, seats_count, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err = tx.Exec(ctx, query,
		cinema.ID,
		cinema.OwnerID,
		cinema.Name,
		cinema.Location,
		cinema.SeatsCount,
		cinema.CreatedAt,
		cinema.UpdatedAt,
	)
	if err != nil {
		r.log.Error("Failed to create cinema",
			zap.Error(err),
			zap.String("name", cinema.Name),
		)
		return fmt.Errorf("create cinema %s: %w", cinema.Name, err)
	}

	seatQuery := `
		INSERT INTO seats (id, cinema_id, label, type, premium_percent, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	for _, seat := range seats {
		_, err = tx.Exec(ctx, seatQuery,
			seat.ID,
			seat.CinemaID,
			seat.Label,
			seat.Type,
			seat.PremiumPercent,
			seat.CreatedAt,
			seat.UpdatedAt,
		)
		if err != nil {
			r.log.Error("Failed to create seat",
				zap.Error(err),
				zap.String("cinema_id", cinema.ID.String()),
				zap.String("label", seat.Label),
			)
			return fmt.Errorf("create seat %s for cinema %s: %w", seat.Label, cinema.Name, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit create cinema tx: %w", err)
	}

	return nil
}

func (r *cinemaRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Cinema, error) {
	query := `
		SELECT id, user_id, name, location, seats_count, created_at, updated_at
		FROM cinemas
		WHERE id = $1
	`

	var cinema entity.Cinema
	err := r.db.QueryRow(ctx, query, id).Scan(
		&cinema.ID,
		&cinema.OwnerID,
		&cinema.Name,
		&cinema.Location,
		&cinema.SeatsCount,
		&cinema.CreatedAt,
		&cinema.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find cinema by ID",
			zap.Error(err),
			zap.String("cinema_id", id.String()),
		)
		return nil, fmt.Errorf("find cinema %s: %w", id.String(), err)
	}

	return &cinema, nil
}

func (r *cinemaRepository) FindAll(ctx context.Context, limit, offset int) ([]*entity.Cinema, error) {
	query := `
		SELECT id, user_id, name, location, seats_count, created_at, updated_at
		FROM cinemas
		ORDER BY name
		LIMIT $1 OFFSET $2
	`

	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		r.log.Error("Failed to list cinemas", zap.Error(err))
		return nil, fmt.Errorf("list cinemas: %w", err)
	}
	defer rows.Close()

	var cinemas []*entity.Cinema
	for rows.Next() {
		var cinema entity.Cinema
		err := rows.Scan(
			&cinema.ID,
			&cinema.OwnerID,
			&cinema.Name,
			&cinema.Location,
			&cinema.SeatsCount,
			&cinema.CreatedAt,
			&cinema.UpdatedAt,
		)
		if err != nil {
			r.log.Error("Failed to scan cinema row", zap.Error(err))
			return nil, fmt.Errorf("scan cinema row: %w", err)
		}
		cinemas = append(cinemas, &cinema)
	}

	return cinemas, nil
}

func (r *cinemaRepository) CountAll(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM cinemas`).Scan(&count)
	if err != nil {
		r.log.Error("Failed to count cinemas", zap.Error(err))
		return 0, fmt.Errorf("count cinemas: %w", err)
	}
	return count, nil
}

// Delete removes the cinema; seats, shows and their reservations go with it
// via ON DELETE CASCADE.
func (r *cinemaRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.Exec(ctx, `DELETE FROM cinemas WHERE id = $1`, id)
	if err != nil {
		r.log.Error("Failed to delete cinema",
			zap.Error(err),
			zap.String("cinema_id", id.String()),
		)
		return fmt.Errorf("delete cinema %s: %w", id.String(), err)
	}

	if result.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}
