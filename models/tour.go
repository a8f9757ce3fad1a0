package models

import "time"

// Tour is a bookable excursion offered on the platform.
type Tour struct {
	TourID          int64     `json:"id"`
	Name            string    `json:"name"`
	Slug            string    `json:"slug"`
	Duration        int       `json:"duration"`
	MaxGroupSize    int       `json:"max_group_size"`
	Difficulty      string    `json:"difficulty"`
	Price           float64   `json:"price"`
	RatingsAverage  float64   `json:"ratings_average"`
	RatingsQuantity int       `json:"ratings_quantity"`
	Summary         string    `json:"summary"`
	Description     string    `json:"description,omitempty"`
	StartLat        float64   `json:"start_lat"`
	StartLng        float64   `json:"start_lng"`
	StartDates      []time.Time `json:"start_dates,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// TableName returns the name of the database table
// associated with the Tour model.
func (t Tour) TableName() string {
	return "tours"
}

// TourLike records that a user liked a tour. At most one row exists per
// (tour, user) pair; liking again removes it.
type TourLike struct {
	TourLikeID int64     `json:"id"`
	TourID     int64     `json:"tour_id"`
	UserID     int64     `json:"user_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// TableName returns the name of the database table
// associated with the TourLike model.
func (t TourLike) TableName() string {
	return "tour_likes"
}

// TourStats is one row of the per-difficulty aggregate report.
type TourStats struct {
	Difficulty string  `json:"difficulty"`
	NumTours   int     `json:"num_tours"`
	NumRatings int     `json:"num_ratings"`
	AvgRating  float64 `json:"avg_rating"`
	AvgPrice   float64 `json:"avg_price"`
	MinPrice   float64 `json:"min_price"`
	MaxPrice   float64 `json:"max_price"`
}

// MonthlyPlanEntry is one row of the monthly tour-start report for a year,
// ordered by the number of starts descending.
type MonthlyPlanEntry struct {
	Month      int      `json:"month"`
	TourStarts int      `json:"tour_starts"`
	Tours      []string `json:"tours"`
}
