package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"cinema-tickets/internal/data/entity"
	"cinema-tickets/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

// ShowFilter narrows List results. Nil/zero fields are ignored.
type ShowFilter struct {
	FilmID       *uuid.UUID
	CinemaID     *uuid.UUID
	From         *time.Time
	Until        *time.Time
	OnlyBookable bool // exclude shows with booked_out = true
}

type ShowRepository interface {
	// Create inserts the show. ErrShowConflict is returned when another show
	// already occupies the same cinema, time and location.
	Create(ctx context.Context, show *entity.Show) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Show, error)
	List(ctx context.Context, filter ShowFilter) ([]*entity.Show, error)
	SetBookedOut(ctx context.Context, id uuid.UUID, bookedOut bool) error
	CountByFilmID(ctx context.Context, filmID uuid.UUID) (int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type showRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewShowRepository(db database.PgxIface, log *zap.Logger) ShowRepository {
	return &showRepository{
		db:  db,
		log: log.With(zap.String("repository", "show")),
	}
}

const showColumns = `id, cinema_id, film_id, show_time, location, base_price_cents, booked_out, created_at, updated_at`

func (r *showRepository) Create(ctx context.Context, show *entity.Show) error {
	query := `
		INSERT INTO shows (id, cinema_id, film_id, show_time, location, base_price_cents, booked_out, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.Exec(ctx, query,
		show.ID,
		show.CinemaID,
		show.FilmID,
		show.ShowTime,
		show.Location,
		show.BasePriceCents,
		show.BookedOut,
		show.CreatedAt,
		show.UpdatedAt,
	)

	if err != nil {
		// The unique index on (cinema_id, show_time, location) rejects a
		// double-booked hall.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrShowConflict
		}
		r.log.Error("Failed to create show",
			zap.Error(err),
			zap.String("cinema_id", show.CinemaID.String()),
			zap.String("film_id", show.FilmID.String()),
		)
		return fmt.Errorf("create show at %s/%s: %w", show.Location, show.ShowTime.Format(time.RFC3339), err)
	}

	return nil
}

func (r *showRepository) scanShow(row pgx.Row) (*entity.Show, error) {
	var show entity.Show
	err := row.Scan(
		&show.ID,
		&show.CinemaID,
		&show.FilmID,
		&show.ShowTime,
		&show.Location,
		&show.BasePriceCents,
		&show.BookedOut,
		&show.CreatedAt,
		&show.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &show, nil
}

func (r *showRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Show, error) {
	query := `SELECT ` + showColumns + ` FROM shows WHERE id = $1`

	show, err := r.scanShow(r.db.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find show by ID",
			zap.Error(err),
			zap.String("show_id", id.String()),
		)
		return nil, fmt.Errorf("find show %s: %w", id.String(), err)
	}

	return show, nil
}

func (r *showRepository) List(ctx context.Context, filter ShowFilter) ([]*entity.Show, error) {
	var conditions []string
	var args []any

	appendArg := func(cond string, value any) {
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf(cond, len(args)))
	}

	if filter.FilmID != nil {
		appendArg("film_id = $%d", *filter.FilmID)
	}
	if filter.CinemaID != nil {
		appendArg("cinema_id = $%d", *filter.CinemaID)
	}
	if filter.From != nil {
		appendArg("show_time >= $%d", *filter.From)
	}
	if filter.Until != nil {
		appendArg("show_time <= $%d", *filter.Until)
	}
	if filter.OnlyBookable {
		conditions = append(conditions, "booked_out = FALSE")
	}

	query := `SELECT ` + showColumns + ` FROM shows`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY show_time"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.log.Error("Failed to list shows", zap.Error(err))
		return nil, fmt.Errorf("list shows: %w", err)
	}
	defer rows.Close()

	var shows []*entity.Show
	for rows.Next() {
		show, err := r.scanShow(rows)
		if err != nil {
			r.log.Error("Failed to scan show row", zap.Error(err))
			return nil, fmt.Errorf("scan show row: %w", err)
		}
		shows = append(shows, show)
	}

	return shows, nil
}

func (r *showRepository) SetBookedOut(ctx context.Context, id uuid.UUID, bookedOut bool) error {
	query := `UPDATE shows SET booked_out = $2, updated_at = NOW() WHERE id = $1`

	result, err := r.db.Exec(ctx, query, id, bookedOut)
	if err != nil {
		r.log.Error("Failed to update booked_out flag",
			zap.Error(err),
			zap.String("show_id", id.String()),
			zap.Bool("booked_out", bookedOut),
		)
		return fmt.Errorf("update booked_out for show %s: %w", id.String(), err)
	}

	if result.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *showRepository) CountByFilmID(ctx context.Context, filmID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM shows WHERE film_id = $1`, filmID).Scan(&count)
	if err != nil {
		r.log.Error("Failed to count shows by film",
			zap.Error(err),
			zap.String("film_id", filmID.String()),
		)
		return 0, fmt.Errorf("count shows for film %s: %w", filmID.String(), err)
	}
	return count, nil
}

func (r *showRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.Exec(ctx, `DELETE FROM shows WHERE id = $1`, id)
	if err != nil {
		r.log.Error("Failed to delete show",
			zap.Error(err),
			zap.String("show_id", id.String()),
		)
		return fmt.Errorf("delete show %s: %w", id.String(), err)
	}

	if result.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}
