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

type FilmRepository interface {
	Create(ctx context.Context, film *entity.Film) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Film, error)
	FindAll(ctx context.Context, limit, offset int) ([]*entity.Film, error)
	CountAll(ctx context.Context) (int64, error)
	SetHasShows(ctx context.Context, id uuid.UUID, hasShows bool) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type filmRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewFilmRepository(db database.PgxIface, log *zap.Logger) FilmRepository {
	return &filmRepository{
		db:  db,
		log: log.With(zap.String("repository", "film")),
	}
}

func (r *filmRepository) Create(ctx context.Context, film *entity.Film) error {
	query := `
		INSERT INTO films (id, name, release_date, has_shows, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.Exec(ctx, query,
		film.ID,
		film.Name,
		film.ReleaseDate,
		film.HasShows,
		film.CreatedAt,
		film.UpdatedAt,
	)

	if err != nil {
		r.log.Error("Failed to create film",
			zap.Error(err),
			zap.String("name", film.Name),
		)
		return fmt.Errorf("create film %s: %w", film.Name, err)
	}

	return nil
}

func (r *filmRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Film, error) {
	query := `
		SELECT id, name, release_date, has_shows, created_at, updated_at
		FROM films
		WHERE id = $1
	`

	var film entity.Film
	err := r.db.QueryRow(ctx, query, id).Scan(
		&film.ID,
		&film.Name,
		&film.ReleaseDate,
		&film.HasShows,
		&film.CreatedAt,
		&film.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find film by ID",
			zap.Error(err),
			zap.String("film_id", id.String()),
		)
		return nil, fmt.Errorf("find film %s: %w", id.String(), err)
	}

	return &film, nil
}

func (r *filmRepository) FindAll(ctx context.Context, limit, offset int) ([]*entity.Film, error) {
	query := `
		SELECT id, name, release_date, has_shows, created_at, updated_at
		FROM films
		ORDER BY release_date DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		r.log.Error("Failed to list films", zap.Error(err))
		return nil, fmt.Errorf("list films: %w", err)
	}
	defer rows.Close()

	var films []*entity.Film
	for rows.Next() {
		var film entity.Film
		err := rows.Scan(
			&film.ID,
			&film.Name,
			&film.ReleaseDate,
			&film.HasShows,
			&film.CreatedAt,
			&film.UpdatedAt,
		)
		if err != nil {
			r.log.Error("Failed to scan film row", zap.Error(err))
			return nil, fmt.Errorf("scan film row: %w", err)
		}
		films = append(films, &film)
	}

	return films, nil
}

func (r *filmRepository) CountAll(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM films`).Scan(&count)
	if err != nil {
		r.log.Error("Failed to count films", zap.Error(err))
		return 0, fmt.Errorf("count films: %w", err)
	}
	return count, nil
}

// SetHasShows writes the derived flag. Callers recompute it whenever a show
// referencing the film is created or deleted.
func (r *filmRepository) SetHasShows(ctx context.Context, id uuid.UUID, hasShows bool) error {
	query := `UPDATE films SET has_shows = $2, updated_at = NOW() WHERE id = $1`

	result, err := r.db.Exec(ctx, query, id, hasShows)
	if err != nil {
		r.log.Error("Failed to update has_shows flag",
			zap.Error(err),
			zap.String("film_id", id.String()),
		)
		return fmt.Errorf("update has_shows for film %s: %w", id.String(), err)
	}

	if result.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *filmRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.Exec(ctx, `DELETE FROM films WHERE id = $1`, id)
	if err != nil {
		r.log.Error("Failed to delete film",
			zap.Error(err),
			zap.String("film_id", id.String()),
		)
		return fmt.Errorf("delete film %s: %w", id.String(), err)
	}

	if result.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}
