package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/tripwell/trippy-server/internal/logger"
	"github.com/tripwell/trippy-server/internal/query"
	"github.com/tripwell/trippy-server/models"
)

// tourListColumns is the whitelist of columns list requests may filter,
// sort, or project on.
var tourListColumns = []string{
	"tour_id", "name", "slug", "duration", "max_group_size", "difficulty",
	"price", "ratings_average", "ratings_quantity", "summary",
	"description", "start_lat", "start_lng", "created_at",
}

// tourRepository is the PostgreSQL-backed implementation of [TourRepository].
type tourRepository struct {
	logger *logger.Logger
	db     *DB
}

// NewTourRepository constructs a [TourRepository] backed by the provided
// database connection and logger.
func NewTourRepository(db *DB, logger *logger.Logger) TourRepository {
	logger.Debug().Msg("creating tour repository")
	return &tourRepository{
		db:     db,
		logger: logger,
	}
}

// SelectTours lists tours according to the raw list parameters, translating
// them into SQL via [query.Features]. Start dates are not loaded on list
// requests; they are fetched on single-tour reads.
func (r *tourRepository) SelectTours(ctx context.Context, params url.Values) ([]models.Tour, error) {
	log := logger.FromContext(ctx)

	features := query.NewFeatures(models.Tour{}.TableName(), tourListColumns, params).
		Filter().
		Sort().
		Project().
		Paginate()

	sqlQuery, args, err := features.Builder().ToSql()
	if err != nil {
		log.Err(err).Str("func", "*tourRepository.SelectTours").Msg("error: building query")
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	rows, err := r.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		log.Err(err).Str("func", "*tourRepository.SelectTours").Msg("error: executing query")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	selected := features.SelectedColumns()
	tours := make([]models.Tour, 0)
	for rows.Next() {
		var tour models.Tour
		dest := make([]any, 0, len(selected))
		for _, column := range selected {
			target, ok := tourColumnDest(&tour, column)
			if !ok {
				return nil, fmt.Errorf("%w: unknown column %q", ErrScanningRows, column)
			}
			dest = append(dest, target)
		}
		if err := rows.Scan(dest...); err != nil {
			log.Err(err).Str("func", "*tourRepository.SelectTours").Msg("error: scanning rows")
			return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
		}
		tours = append(tours, tour)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}

	return tours, nil
}

// GetTour retrieves a single tour with its start dates.
func (r *tourRepository) GetTour(ctx context.Context, tourID int64) (models.Tour, error) {
	return r.fetchTour(ctx, getTour, tourID, "*tourRepository.GetTour")
}

// GetTourBySlug retrieves a single tour by its URL slug, with start dates.
func (r *tourRepository) GetTourBySlug(ctx context.Context, slug string) (models.Tour, error) {
	return r.fetchTour(ctx, getTourBySlug, slug, "*tourRepository.GetTourBySlug")
}

// fetchTour runs a single-row tour query and attaches the start dates.
func (r *tourRepository) fetchTour(ctx context.Context, query string, arg any, funcName string) (models.Tour, error) {
	log := logger.FromContext(ctx)

	var tour models.Tour
	row := r.db.QueryRowContext(ctx, query, arg)

	if err := row.Scan(
		&tour.TourID, &tour.Name, &tour.Slug, &tour.Duration, &tour.MaxGroupSize, &tour.Difficulty,
		&tour.Price, &tour.RatingsAverage, &tour.RatingsQuantity, &tour.Summary,
		&tour.Description, &tour.StartLat, &tour.StartLng, &tour.CreatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Tour{}, fmt.Errorf("%w: %w", ErrTourNotFound, err)
		}
		log.Err(err).Str("func", funcName).Msg("error: scanning tour")
		return models.Tour{}, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	dates, err := r.loadStartDates(ctx, tour.TourID)
	if err != nil {
		return models.Tour{}, err
	}
	tour.StartDates = dates

	return tour, nil
}

func (r *tourRepository) loadStartDates(ctx context.Context, tourID int64) ([]time.Time, error) {
	log := logger.FromContext(ctx)

	rows, err := r.db.QueryContext(ctx, getTourDates, tourID)
	if err != nil {
		log.Err(err).Str("func", "*tourRepository.loadStartDates").Msg("error: loading start dates")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	var dates []time.Time
	for rows.Next() {
		var date time.Time
		if err := rows.Scan(&date); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
		}
		dates = append(dates, date)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}

	return dates, nil
}

// CreateTour persists a new tour and its start dates in one transaction.
//
// Error handling:
//   - Constraint violations keep the driver cause wrapped so the error
//     normalizer can classify them.
func (r *tourRepository) CreateTour(ctx context.Context, tour models.Tour) (models.Tour, error) {
	log := logger.FromContext(ctx)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		log.Err(err).Str("func", "*tourRepository.CreateTour").Msg("error: starting transaction")
		return models.Tour{}, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx, createTour,
		tour.Name, tour.Slug, tour.Duration, tour.MaxGroupSize, tour.Difficulty, tour.Price,
		tour.Summary, tour.Description, tour.StartLat, tour.StartLng,
	)
	if err := row.Scan(&tour.TourID, &tour.RatingsAverage, &tour.RatingsQuantity, &tour.CreatedAt); err != nil {
		log.Err(err).Str("func", "*tourRepository.CreateTour").Msg("error: creating tour")
		return models.Tour{}, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	for _, date := range tour.StartDates {
		if _, err := tx.ExecContext(ctx, createTourDate, tour.TourID, date); err != nil {
			log.Err(err).Str("func", "*tourRepository.CreateTour").Msg("error: saving start date")
			return models.Tour{}, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return models.Tour{}, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	return tour, nil
}

// UpdateTour applies the non-nil fields of update and returns the resulting
// tour. When no field is set the current row is returned untouched.
func (r *tourRepository) UpdateTour(ctx context.Context, update TourUpdate) (models.Tour, error) {
	log := logger.FromContext(ctx)

	builder, changed := buildTourUpdate(update)
	if !changed {
		return r.GetTour(ctx, update.TourID)
	}

	sqlQuery, args, err := builder.ToSql()
	if err != nil {
		log.Err(err).Str("func", "*tourRepository.UpdateTour").Msg("error: building query")
		return models.Tour{}, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	var tour models.Tour
	row := r.db.QueryRowContext(ctx, sqlQuery, args...)
	if err := row.Scan(
		&tour.TourID, &tour.Name, &tour.Slug, &tour.Duration, &tour.MaxGroupSize, &tour.Difficulty,
		&tour.Price, &tour.RatingsAverage, &tour.RatingsQuantity, &tour.Summary,
		&tour.Description, &tour.StartLat, &tour.StartLng, &tour.CreatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Tour{}, fmt.Errorf("%w: %w", ErrTourNotFound, err)
		}
		log.Err(err).Str("func", "*tourRepository.UpdateTour").Msg("error: updating tour")
		return models.Tour{}, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	return tour, nil
}

// buildTourUpdate assembles the UPDATE statement for the set fields of
// update. The second return value reports whether any field was set.
func buildTourUpdate(update TourUpdate) (sq.UpdateBuilder, bool) {
	builder := sq.StatementBuilder.PlaceholderFormat(sq.Dollar).
		Update(models.Tour{}.TableName())

	changed := false
	set := func(column string, value any) {
		builder = builder.Set(column, value)
		changed = true
	}

	if update.Name != nil {
		set("name", *update.Name)
	}
	if update.Slug != nil {
		set("slug", *update.Slug)
	}
	if update.Duration != nil {
		set("duration", *update.Duration)
	}
	if update.MaxGroupSize != nil {
		set("max_group_size", *update.MaxGroupSize)
	}
	if update.Difficulty != nil {
		set("difficulty", *update.Difficulty)
	}
	if update.Price != nil {
		set("price", *update.Price)
	}
	if update.Summary != nil {
		set("summary", *update.Summary)
	}
	if update.Description != nil {
		set("description", *update.Description)
	}

	builder = builder.
		Where(sq.Eq{"tour_id": update.TourID}).
		Suffix(`RETURNING tour_id, name, slug, duration, max_group_size, difficulty, price, ratings_average, ratings_quantity, summary, description, start_lat, start_lng, created_at`)

	return builder, changed
}

// DeleteTour removes a tour. Start dates and bookings follow via ON DELETE
// CASCADE.
func (r *tourRepository) DeleteTour(ctx context.Context, tourID int64) error {
	log := logger.FromContext(ctx)

	result, err := r.db.ExecContext(ctx, deleteTour, tourID)
	if err != nil {
		log.Err(err).Str("func", "*tourRepository.DeleteTour").Msg("error: deleting tour")
		return fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	if affected == 0 {
		return ErrTourNotFound
	}

	return nil
}

// TourStats aggregates tours per difficulty, cheapest average price first.
func (r *tourRepository) TourStats(ctx context.Context) ([]models.TourStats, error) {
	log := logger.FromContext(ctx)

	rows, err := r.db.QueryContext(ctx, tourStats)
	if err != nil {
		log.Err(err).Str("func", "*tourRepository.TourStats").Msg("error: executing query")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	stats := make([]models.TourStats, 0)
	for rows.Next() {
		var entry models.TourStats
		if err := rows.Scan(
			&entry.Difficulty, &entry.NumTours, &entry.NumRatings,
			&entry.AvgRating, &entry.AvgPrice, &entry.MinPrice, &entry.MaxPrice,
		); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
		}
		stats = append(stats, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}

	return stats, nil
}

// MonthlyPlan reports tour starts per month of the given year, busiest month
// first. Tour names within a month arrive comma-joined from STRING_AGG.
func (r *tourRepository) MonthlyPlan(ctx context.Context, year int) ([]models.MonthlyPlanEntry, error) {
	log := logger.FromContext(ctx)

	rows, err := r.db.QueryContext(ctx, monthlyPlan, year)
	if err != nil {
		log.Err(err).Str("func", "*tourRepository.MonthlyPlan").Msg("error: executing query")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	plan := make([]models.MonthlyPlanEntry, 0)
	for rows.Next() {
		var entry models.MonthlyPlanEntry
		var names string
		if err := rows.Scan(&entry.Month, &entry.TourStarts, &names); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
		}
		entry.Tours = strings.Split(names, ",")
		plan = append(plan, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}

	return plan, nil
}

// ToursWithin returns tours whose start location lies within radius of the
// given point. The radius is a great-circle distance in radians; callers
// convert from miles or kilometres before reaching the store.
func (r *tourRepository) ToursWithin(ctx context.Context, lat, lng, radius float64) ([]models.Tour, error) {
	log := logger.FromContext(ctx)

	rows, err := r.db.QueryContext(ctx, toursWithin, lat, lng, radius)
	if err != nil {
		log.Err(err).Str("func", "*tourRepository.ToursWithin").Msg("error: executing query")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	tours := make([]models.Tour, 0)
	for rows.Next() {
		var tour models.Tour
		if err := rows.Scan(
			&tour.TourID, &tour.Name, &tour.Slug, &tour.Duration, &tour.MaxGroupSize, &tour.Difficulty,
			&tour.Price, &tour.RatingsAverage, &tour.RatingsQuantity, &tour.Summary,
			&tour.Description, &tour.StartLat, &tour.StartLng, &tour.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
		}
		tours = append(tours, tour)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}

	return tours, nil
}

// tourColumnDest maps a projected column name to its scan destination.
func tourColumnDest(tour *models.Tour, column string) (any, bool) {
	switch column {
	case "tour_id":
		return &tour.TourID, true
	case "name":
		return &tour.Name, true
	case "slug":
		return &tour.Slug, true
	case "duration":
		return &tour.Duration, true
	case "max_group_size":
		return &tour.MaxGroupSize, true
	case "difficulty":
		return &tour.Difficulty, true
	case "price":
		return &tour.Price, true
	case "ratings_average":
		return &tour.RatingsAverage, true
	case "ratings_quantity":
		return &tour.RatingsQuantity, true
	case "summary":
		return &tour.Summary, true
	case "description":
		return &tour.Description, true
	case "start_lat":
		return &tour.StartLat, true
	case "start_lng":
		return &tour.StartLng, true
	case "created_at":
		return &tour.CreatedAt, true
	}
	return nil, false
}
