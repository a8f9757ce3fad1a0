package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/tripwell/trippy-server/internal/logger"
	"github.com/tripwell/trippy-server/models"
)

// tourLikeRepository is the PostgreSQL-backed implementation of
// [TourLikeRepository].
type tourLikeRepository struct {
	logger *logger.Logger
	db     *DB
}

// NewTourLikeRepository constructs a [TourLikeRepository] backed by the
// provided database connection and logger.
func NewTourLikeRepository(db *DB, logger *logger.Logger) TourLikeRepository {
	logger.Debug().Msg("creating tour like repository")
	return &tourLikeRepository{
		db:     db,
		logger: logger,
	}
}

// FindLike returns the like the user placed on the tour.
func (r *tourLikeRepository) FindLike(ctx context.Context, tourID, userID int64) (models.TourLike, error) {
	log := logger.FromContext(ctx)

	var like models.TourLike
	row := r.db.QueryRowContext(ctx, findTourLike, tourID, userID)

	if err := row.Scan(&like.TourLikeID, &like.TourID, &like.UserID, &like.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.TourLike{}, fmt.Errorf("%w: %w", ErrTourLikeNotFound, err)
		}
		log.Err(err).Str("func", "*tourLikeRepository.FindLike").Msg("error: scanning tour like")
		return models.TourLike{}, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	return like, nil
}

// CreateLike records a like and returns it with server-assigned fields.
//
// Error handling:
//   - A duplicate (tour, user) pair violates the unique constraint; the
//     driver cause stays wrapped so the error normalizer can classify it.
func (r *tourLikeRepository) CreateLike(ctx context.Context, tourID, userID int64) (models.TourLike, error) {
	log := logger.FromContext(ctx)

	like := models.TourLike{TourID: tourID, UserID: userID}
	row := r.db.QueryRowContext(ctx, createTourLike, tourID, userID)

	if err := row.Scan(&like.TourLikeID, &like.CreatedAt); err != nil {
		log.Err(err).Str("func", "*tourLikeRepository.CreateLike").Msg("error: creating tour like")
		return models.TourLike{}, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	return like, nil
}

// DeleteLike removes a like by primary key.
func (r *tourLikeRepository) DeleteLike(ctx context.Context, tourLikeID int64) error {
	log := logger.FromContext(ctx)

	result, err := r.db.ExecContext(ctx, deleteTourLike, tourLikeID)
	if err != nil {
		log.Err(err).Str("func", "*tourLikeRepository.DeleteLike").Msg("error: deleting tour like")
		return fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	if affected == 0 {
		return ErrTourLikeNotFound
	}

	return nil
}

// LikedTourIDs lists the ids of tours the user has liked, oldest like first.
func (r *tourLikeRepository) LikedTourIDs(ctx context.Context, userID int64) ([]int64, error) {
	log := logger.FromContext(ctx)

	rows, err := r.db.QueryContext(ctx, likedTourIDs, userID)
	if err != nil {
		log.Err(err).Str("func", "*tourLikeRepository.LikedTourIDs").Msg("error: executing query")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	ids := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}

	return ids, nil
}
