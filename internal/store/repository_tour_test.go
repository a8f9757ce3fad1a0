package store

import (
	"context"
	"database/sql"
	"errors"
	"net/url"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/tripwell/trippy-server/internal/logger"
	"github.com/tripwell/trippy-server/models"
)

func newTestTourRepo(t *testing.T) (*tourRepository, sqlmock.Sqlmock, *sql.DB) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	l := logger.Nop()
	repo := &tourRepository{
		db:     &DB{DB: db, logger: l},
		logger: l,
	}
	return repo, mock, db
}

func tourRow(now time.Time) *sqlmock.Rows {
	return sqlmock.
		NewRows(tourListColumns).
		AddRow(1, "The Forest Hiker", "the-forest-hiker", 5, 25, "easy", 397.0, 4.7, 37, "Breathtaking hike", "Long description", 34.11, -118.11, now)
}

func TestGetTour_Success(t *testing.T) {
	repo, mock, db := newTestTourRepo(t)
	defer db.Close()

	ctx := context.Background()
	now := time.Now()
	start := now.Add(24 * time.Hour)

	mock.ExpectQuery("SELECT tour_id").
		WithArgs(int64(1)).
		WillReturnRows(tourRow(now))
	mock.ExpectQuery("SELECT start_date").
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"start_date"}).AddRow(start))

	tour, err := repo.GetTour(ctx, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tour.Name != "The Forest Hiker" {
		t.Errorf("expected tour name, got %s", tour.Name)
	}
	if len(tour.StartDates) != 1 {
		t.Fatalf("expected 1 start date, got %d", len(tour.StartDates))
	}
}

func TestGetTour_NotFound(t *testing.T) {
	repo, mock, db := newTestTourRepo(t)
	defer db.Close()

	ctx := context.Background()

	mock.ExpectQuery("SELECT tour_id").
		WithArgs(int64(42)).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetTour(ctx, 42)
	if !errors.Is(err, ErrTourNotFound) {
		t.Fatalf("expected ErrTourNotFound, got %v", err)
	}
}

func TestGetTourBySlug_Success(t *testing.T) {
	repo, mock, db := newTestTourRepo(t)
	defer db.Close()

	ctx := context.Background()
	now := time.Now()

	mock.ExpectQuery("WHERE slug =").
		WithArgs("the-forest-hiker").
		WillReturnRows(tourRow(now))
	mock.ExpectQuery("SELECT start_date").
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"start_date"}).AddRow(now.Add(24 * time.Hour)))

	tour, err := repo.GetTourBySlug(ctx, "the-forest-hiker")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tour.Slug != "the-forest-hiker" {
		t.Errorf("expected slug, got %s", tour.Slug)
	}
	if tour.TourID != 1 {
		t.Errorf("expected TourID=1, got %d", tour.TourID)
	}
}

func TestGetTourBySlug_NotFound(t *testing.T) {
	repo, mock, db := newTestTourRepo(t)
	defer db.Close()

	ctx := context.Background()

	mock.ExpectQuery("WHERE slug =").
		WithArgs("no-such-tour").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetTourBySlug(ctx, "no-such-tour")
	if !errors.Is(err, ErrTourNotFound) {
		t.Fatalf("expected ErrTourNotFound, got %v", err)
	}
}

func TestSelectTours_OperatorFilter(t *testing.T) {
	repo, mock, db := newTestTourRepo(t)
	defer db.Close()

	ctx := context.Background()
	now := time.Now()
	params := url.Values{
		"price[lte]": []string{"500"},
		"difficulty": []string{"easy"},
	}

	// keys are applied in sorted order: difficulty before price[lte]
	mock.ExpectQuery("SELECT tour_id, name, .+ FROM tours WHERE difficulty = .+ AND price <=").
		WithArgs("easy", "500").
		WillReturnRows(tourRow(now))

	tours, err := repo.SelectTours(ctx, params)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tours) != 1 {
		t.Fatalf("expected 1 tour, got %d", len(tours))
	}
}

func TestCreateTour_WithStartDates(t *testing.T) {
	repo, mock, db := newTestTourRepo(t)
	defer db.Close()

	ctx := context.Background()
	now := time.Now()
	tour := models.Tour{
		Name:         "The Sea Explorer",
		Slug:         "the-sea-explorer",
		Duration:     7,
		MaxGroupSize: 15,
		Difficulty:   "medium",
		Price:        497,
		Summary:      "Exploring the coast",
		Description:  "Long description",
		StartLat:     28.6,
		StartLng:     -81.0,
		StartDates:   []time.Time{now.Add(48 * time.Hour), now.Add(14 * 24 * time.Hour)},
	}

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO tours").
		WithArgs(tour.Name, tour.Slug, tour.Duration, tour.MaxGroupSize, tour.Difficulty, tour.Price,
			tour.Summary, tour.Description, tour.StartLat, tour.StartLng).
		WillReturnRows(sqlmock.
			NewRows([]string{"tour_id", "ratings_average", "ratings_quantity", "created_at"}).
			AddRow(7, 4.5, 0, now))
	mock.ExpectExec("INSERT INTO tour_dates").
		WithArgs(int64(7), tour.StartDates[0]).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO tour_dates").
		WithArgs(int64(7), tour.StartDates[1]).
		WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()

	created, err := repo.CreateTour(ctx, tour)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.TourID != 7 {
		t.Errorf("expected TourID=7, got %d", created.TourID)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestCreateTour_RollsBackOnDateError(t *testing.T) {
	repo, mock, db := newTestTourRepo(t)
	defer db.Close()

	ctx := context.Background()
	now := time.Now()
	tour := models.Tour{Name: "Broken", StartDates: []time.Time{now}}

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO tours").
		WillReturnRows(sqlmock.
			NewRows([]string{"tour_id", "ratings_average", "ratings_quantity", "created_at"}).
			AddRow(7, 4.5, 0, now))
	mock.ExpectExec("INSERT INTO tour_dates").
		WillReturnError(errors.New("constraint failure"))
	mock.ExpectRollback()

	_, err := repo.CreateTour(ctx, tour)
	if !errors.Is(err, ErrExecutingQuery) {
		t.Fatalf("expected ErrExecutingQuery, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestBuildTourUpdate(t *testing.T) {
	price := 599.0
	name := "Renamed"

	builder, changed := buildTourUpdate(TourUpdate{TourID: 3, Name: &name, Price: &price})
	if !changed {
		t.Fatal("expected changed=true")
	}

	sqlQuery, args, err := builder.ToSql()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(sqlQuery, "name = $1") || !strings.Contains(sqlQuery, "price = $2") {
		t.Errorf("unexpected SET clauses: %s", sqlQuery)
	}
	if !strings.Contains(sqlQuery, "WHERE tour_id = $3") {
		t.Errorf("expected tour_id predicate, got: %s", sqlQuery)
	}
	if !strings.Contains(sqlQuery, "RETURNING tour_id") {
		t.Errorf("expected RETURNING clause, got: %s", sqlQuery)
	}
	if !reflect.DeepEqual(args, []any{name, price, int64(3)}) {
		t.Errorf("unexpected args: %v", args)
	}
}

func TestBuildTourUpdate_NoFields(t *testing.T) {
	_, changed := buildTourUpdate(TourUpdate{TourID: 3})
	if changed {
		t.Fatal("expected changed=false for empty update")
	}
}

func TestDeleteTour_NotFound(t *testing.T) {
	repo, mock, db := newTestTourRepo(t)
	defer db.Close()

	ctx := context.Background()

	mock.ExpectExec("DELETE FROM tours").
		WithArgs(int64(99)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.DeleteTour(ctx, 99)
	if !errors.Is(err, ErrTourNotFound) {
		t.Fatalf("expected ErrTourNotFound, got %v", err)
	}
}

func TestTourStats(t *testing.T) {
	repo, mock, db := newTestTourRepo(t)
	defer db.Close()

	ctx := context.Background()

	rows := sqlmock.
		NewRows([]string{"difficulty", "num_tours", "num_ratings", "avg_rating", "avg_price", "min_price", "max_price"}).
		AddRow("easy", 4, 159, 4.67, 410.0, 297.0, 497.0).
		AddRow("medium", 3, 70, 4.8, 1663.67, 497.0, 2997.0)

	mock.ExpectQuery("SELECT difficulty").
		WillReturnRows(rows)

	stats, err := repo.TourStats(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(stats) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(stats))
	}
	if stats[0].Difficulty != "easy" || stats[0].NumTours != 4 {
		t.Errorf("unexpected first row: %+v", stats[0])
	}
}

func TestMonthlyPlan_SplitsTourNames(t *testing.T) {
	repo, mock, db := newTestTourRepo(t)
	defer db.Close()

	ctx := context.Background()

	rows := sqlmock.
		NewRows([]string{"month", "tour_starts", "tours"}).
		AddRow(7, 3, "The Forest Hiker,The Sea Explorer,The Sports Lover").
		AddRow(3, 2, "The Forest Hiker,The Star Gazer")

	mock.ExpectQuery("SELECT EXTRACT").
		WithArgs(2026).
		WillReturnRows(rows)

	plan, err := repo.MonthlyPlan(ctx, 2026)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(plan) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(plan))
	}
	if plan[0].Month != 7 || plan[0].TourStarts != 3 {
		t.Errorf("unexpected first entry: %+v", plan[0])
	}
	if !reflect.DeepEqual(plan[0].Tours, []string{"The Forest Hiker", "The Sea Explorer", "The Sports Lover"}) {
		t.Errorf("unexpected tour names: %v", plan[0].Tours)
	}
}

func TestToursWithin(t *testing.T) {
	repo, mock, db := newTestTourRepo(t)
	defer db.Close()

	ctx := context.Background()
	now := time.Now()

	mock.ExpectQuery("SELECT tour_id").
		WithArgs(34.11, -118.11, 0.063).
		WillReturnRows(tourRow(now))

	tours, err := repo.ToursWithin(ctx, 34.11, -118.11, 0.063)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tours) != 1 {
		t.Fatalf("expected 1 tour, got %d", len(tours))
	}
}
