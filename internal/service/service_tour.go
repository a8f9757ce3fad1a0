package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/tripwell/trippy-server/internal/apperr"
	"github.com/tripwell/trippy-server/internal/logger"
	"github.com/tripwell/trippy-server/internal/store"
	"github.com/tripwell/trippy-server/models"
)

// Earth radii used to convert a surface distance into radians of
// great-circle arc.
const (
	earthRadiusMiles      = 3963.2
	earthRadiusKilometres = 6378.1
)

// tourService is the concrete implementation of TourService.
type tourService struct {
	tourRepository     store.TourRepository
	tourLikeRepository store.TourLikeRepository
	logger             *logger.Logger
}

// NewTourService constructs a TourService wired to the given repositories.
func NewTourService(tourRepository store.TourRepository, tourLikeRepository store.TourLikeRepository, logger *logger.Logger) TourService {
	return &tourService{
		tourRepository:     tourRepository,
		tourLikeRepository: tourLikeRepository,
		logger:             logger,
	}
}

// ListTours lists tours according to the raw list parameters. Filtering,
// sorting, projection, and pagination are translated inside the store.
func (s *tourService) ListTours(ctx context.Context, params url.Values) ([]models.Tour, error) {
	tours, err := s.tourRepository.SelectTours(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("tour list failed: %w", err)
	}

	return tours, nil
}

// GetTour retrieves a single tour with its start dates.
func (s *tourService) GetTour(ctx context.Context, tourID int64) (models.Tour, error) {
	tour, err := s.tourRepository.GetTour(ctx, tourID)
	if err != nil {
		if errors.Is(err, store.ErrTourNotFound) {
			return models.Tour{}, apperr.NotFound("no tour found with that ID")
		}
		return models.Tour{}, fmt.Errorf("tour lookup failed: %w", err)
	}

	return tour, nil
}

// GetTourBySlug retrieves a single tour by its URL slug.
func (s *tourService) GetTourBySlug(ctx context.Context, slug string) (models.Tour, error) {
	tour, err := s.tourRepository.GetTourBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, store.ErrTourNotFound) {
			return models.Tour{}, apperr.NotFound("there is no tour with that name")
		}
		return models.Tour{}, fmt.Errorf("tour lookup failed: %w", err)
	}

	return tour, nil
}

// CreateTour validates and persists a new tour. The slug is derived from the
// name; clients cannot set it directly.
func (s *tourService) CreateTour(ctx context.Context, tour models.Tour) (models.Tour, error) {
	log := logger.FromContext(ctx)

	if err := validateTour(tour); err != nil {
		return models.Tour{}, err
	}
	tour.Slug = slugify(tour.Name)

	created, err := s.tourRepository.CreateTour(ctx, tour)
	if err != nil {
		log.Err(err).Str("name", tour.Name).Msg("tour creation failed")
		return models.Tour{}, fmt.Errorf("tour creation failed: %w", err)
	}

	return created, nil
}

// validTourDifficulties is the accepted difficulty set.
var validTourDifficulties = map[string]struct{}{
	"easy":      {},
	"medium":    {},
	"difficult": {},
}

// validateTour checks required fields on tour creation.
func validateTour(tour models.Tour) error {
	var problems []string
	if tour.Name == "" {
		problems = append(problems, "a tour must have a name")
	}
	if tour.Duration <= 0 {
		problems = append(problems, "a tour must have a duration")
	}
	if tour.MaxGroupSize <= 0 {
		problems = append(problems, "a tour must have a group size")
	}
	if _, ok := validTourDifficulties[tour.Difficulty]; !ok {
		problems = append(problems, "difficulty is either: easy, medium, difficult")
	}
	if tour.Price <= 0 {
		problems = append(problems, "a tour must have a price")
	}
	if tour.Summary == "" {
		problems = append(problems, "a tour must have a summary")
	}
	if len(problems) > 0 {
		return apperr.ValidationFailed(strings.Join(problems, ". "))
	}
	return nil
}

// slugify derives a URL slug from a tour name: lower case, with runs of
// non-alphanumeric characters collapsed into single hyphens.
func slugify(name string) string {
	var b strings.Builder
	pendingHyphen := false
	for _, r := range strings.ToLower(name) {
		isAlnum := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
		if !isAlnum {
			pendingHyphen = b.Len() > 0
			continue
		}
		if pendingHyphen {
			b.WriteByte('-')
			pendingHyphen = false
		}
		b.WriteRune(r)
	}
	return b.String()
}

// UpdateTour applies a partial update. Difficulty changes are re-validated,
// and a name change regenerates the slug.
func (s *tourService) UpdateTour(ctx context.Context, update store.TourUpdate) (models.Tour, error) {
	log := logger.FromContext(ctx)

	if update.Name != nil {
		slug := slugify(*update.Name)
		update.Slug = &slug
	}
	if update.Difficulty != nil {
		if _, ok := validTourDifficulties[*update.Difficulty]; !ok {
			return models.Tour{}, apperr.ValidationFailed("difficulty is either: easy, medium, difficult")
		}
	}
	if update.Price != nil && *update.Price <= 0 {
		return models.Tour{}, apperr.ValidationFailed("a tour must have a price")
	}

	updated, err := s.tourRepository.UpdateTour(ctx, update)
	if err != nil {
		if errors.Is(err, store.ErrTourNotFound) {
			return models.Tour{}, apperr.NotFound("no tour found with that ID")
		}
		log.Err(err).Int64("tour_id", update.TourID).Msg("tour update failed")
		return models.Tour{}, fmt.Errorf("tour update failed: %w", err)
	}

	return updated, nil
}

// DeleteTour removes a tour.
func (s *tourService) DeleteTour(ctx context.Context, tourID int64) error {
	if err := s.tourRepository.DeleteTour(ctx, tourID); err != nil {
		if errors.Is(err, store.ErrTourNotFound) {
			return apperr.NotFound("no tour found with that ID")
		}
		return fmt.Errorf("tour deletion failed: %w", err)
	}

	return nil
}

// TourStats aggregates tours per difficulty.
func (s *tourService) TourStats(ctx context.Context) ([]models.TourStats, error) {
	stats, err := s.tourRepository.TourStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("tour stats failed: %w", err)
	}

	return stats, nil
}

// MonthlyPlan reports tour starts per month of the given year.
func (s *tourService) MonthlyPlan(ctx context.Context, year int) ([]models.MonthlyPlanEntry, error) {
	plan, err := s.tourRepository.MonthlyPlan(ctx, year)
	if err != nil {
		return nil, fmt.Errorf("monthly plan failed: %w", err)
	}

	return plan, nil
}

// ToursWithin returns tours starting within distance of the given point.
// The surface distance is converted to radians using the Earth radius that
// matches the unit ("mi" or "km").
func (s *tourService) ToursWithin(ctx context.Context, lat, lng, distance float64, unit string) ([]models.Tour, error) {
	if distance <= 0 {
		return nil, apperr.ValidationFailed("distance must be greater than zero")
	}

	var radius float64
	switch unit {
	case "mi":
		radius = distance / earthRadiusMiles
	case "km":
		radius = distance / earthRadiusKilometres
	default:
		return nil, apperr.ValidationFailed("unit is either: mi, km")
	}

	tours, err := s.tourRepository.ToursWithin(ctx, lat, lng, radius)
	if err != nil {
		return nil, fmt.Errorf("tours-within lookup failed: %w", err)
	}

	return tours, nil
}

// ToggleLike flips the user's like on a tour. The tour must exist; a first
// call records the like, a second call removes it.
func (s *tourService) ToggleLike(ctx context.Context, tourID, userID int64) (models.TourLike, bool, error) {
	log := logger.FromContext(ctx)

	if _, err := s.tourRepository.GetTour(ctx, tourID); err != nil {
		if errors.Is(err, store.ErrTourNotFound) {
			return models.TourLike{}, false, apperr.NotFound("no tour found with that ID")
		}
		return models.TourLike{}, false, fmt.Errorf("tour lookup failed: %w", err)
	}

	existing, err := s.tourLikeRepository.FindLike(ctx, tourID, userID)
	switch {
	case err == nil:
		if err := s.tourLikeRepository.DeleteLike(ctx, existing.TourLikeID); err != nil {
			log.Err(err).Int64("tour_id", tourID).Int64("user_id", userID).Msg("like removal failed")
			return models.TourLike{}, false, fmt.Errorf("like removal failed: %w", err)
		}
		return models.TourLike{}, false, nil

	case errors.Is(err, store.ErrTourLikeNotFound):
		like, err := s.tourLikeRepository.CreateLike(ctx, tourID, userID)
		if err != nil {
			log.Err(err).Int64("tour_id", tourID).Int64("user_id", userID).Msg("like creation failed")
			return models.TourLike{}, false, fmt.Errorf("like creation failed: %w", err)
		}
		return like, true, nil

	default:
		return models.TourLike{}, false, fmt.Errorf("like lookup failed: %w", err)
	}
}

// LikedTourIDs lists the ids of tours the user has liked.
func (s *tourService) LikedTourIDs(ctx context.Context, userID int64) ([]int64, error) {
	ids, err := s.tourLikeRepository.LikedTourIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("liked tours lookup failed: %w", err)
	}

	return ids, nil
}
