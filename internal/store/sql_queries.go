package store

const (
	createUser = `INSERT INTO users (name, email, role, password_hash)
    VALUES ($1, $2, $3, $4)
    RETURNING user_id, name, email, role, password_hash, password_changed_at, created_at;`

	findUserByID = `SELECT user_id, name, email, role, password_hash, password_changed_at, created_at
    FROM users
    WHERE user_id = $1 AND active;`

	findUserByEmail = `SELECT user_id, name, email, role, password_hash, password_changed_at, created_at
    FROM users
    WHERE email = $1 AND active;`

	findUserByResetDigest = `SELECT user_id, name, email, role, password_hash, password_changed_at, created_at
    FROM users
    WHERE reset_token_digest = $1 AND reset_token_expires_at > NOW() AND active;`

	saveResetToken = `UPDATE users
    SET reset_token_digest = $2, reset_token_expires_at = $3
    WHERE user_id = $1;`

	clearResetToken = `UPDATE users
    SET reset_token_digest = NULL, reset_token_expires_at = NULL
    WHERE user_id = $1;`

	updatePassword = `UPDATE users
    SET password_hash = $2, password_changed_at = NOW(), reset_token_digest = NULL, reset_token_expires_at = NULL
    WHERE user_id = $1;`

	updateProfile = `UPDATE users
    SET name = $2, email = $3
    WHERE user_id = $1 AND active
    RETURNING user_id, name, email, role, password_hash, password_changed_at, created_at;`

	deactivateUser = `UPDATE users
    SET active = FALSE
    WHERE user_id = $1;`

	deleteExpiredResetTokens = `UPDATE users
    SET reset_token_digest = NULL, reset_token_expires_at = NULL
    WHERE reset_token_digest IS NOT NULL AND reset_token_expires_at <= NOW();`

	getTour = `SELECT tour_id, name, slug, duration, max_group_size, difficulty, price, ratings_average, ratings_quantity, summary, description, start_lat, start_lng, created_at
    FROM tours
    WHERE tour_id = $1;`

	getTourBySlug = `SELECT tour_id, name, slug, duration, max_group_size, difficulty, price, ratings_average, ratings_quantity, summary, description, start_lat, start_lng, created_at
    FROM tours
    WHERE slug = $1;`

	getTourDates = `SELECT start_date
    FROM tour_dates
    WHERE tour_id = $1
    ORDER BY start_date;`

	createTour = `INSERT INTO tours (name, slug, duration, max_group_size, difficulty, price, summary, description, start_lat, start_lng)
    VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
    RETURNING tour_id, ratings_average, ratings_quantity, created_at;`

	createTourDate = `INSERT INTO tour_dates (tour_id, start_date)
    VALUES ($1, $2);`

	deleteTour = `DELETE FROM tours
    WHERE tour_id = $1;`

	tourStats = `SELECT difficulty,
        COUNT(*) AS num_tours,
        COALESCE(SUM(ratings_quantity), 0) AS num_ratings,
        COALESCE(AVG(ratings_average), 0) AS avg_rating,
        COALESCE(AVG(price), 0) AS avg_price,
        COALESCE(MIN(price), 0) AS min_price,
        COALESCE(MAX(price), 0) AS max_price
    FROM tours
    GROUP BY difficulty
    ORDER BY avg_price;`

	monthlyPlan = `SELECT EXTRACT(MONTH FROM d.start_date)::int AS month,
        COUNT(*) AS tour_starts,
        STRING_AGG(t.name, ',' ORDER BY t.name) AS tours
    FROM tour_dates d
    JOIN tours t ON t.tour_id = d.tour_id
    WHERE EXTRACT(YEAR FROM d.start_date)::int = $1
    GROUP BY month
    ORDER BY tour_starts DESC, month;`

	toursWithin = `SELECT tour_id, name, slug, duration, max_group_size, difficulty, price, ratings_average, ratings_quantity, summary, description, start_lat, start_lng, created_at
    FROM tours
    WHERE acos(LEAST(1.0,
        sin(radians($1)) * sin(radians(start_lat)) +
        cos(radians($1)) * cos(radians(start_lat)) * cos(radians(start_lng) - radians($2)))) <= $3;`

	findTourLike = `SELECT tour_like_id, tour_id, user_id, created_at
    FROM tour_likes
    WHERE tour_id = $1 AND user_id = $2;`

	createTourLike = `INSERT INTO tour_likes (tour_id, user_id)
    VALUES ($1, $2)
    RETURNING tour_like_id, created_at;`

	deleteTourLike = `DELETE FROM tour_likes
    WHERE tour_like_id = $1;`

	likedTourIDs = `SELECT tour_id
    FROM tour_likes
    WHERE user_id = $1
    ORDER BY created_at;`

	createBooking = `INSERT INTO bookings (tour_id, user_id, price, paid)
    VALUES ($1, $2, $3, $4)
    RETURNING booking_id, created_at;`

	getBooking = `SELECT booking_id, tour_id, user_id, price, paid, created_at
    FROM bookings
    WHERE booking_id = $1;`

	selectBookingsByUser = `SELECT booking_id, tour_id, user_id, price, paid, created_at
    FROM bookings
    WHERE user_id = $1
    ORDER BY created_at DESC;`

	deleteBooking = `DELETE FROM bookings
    WHERE booking_id = $1;`
)
