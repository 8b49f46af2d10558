package db

import "database/sql"

// EnsureSchema creates the tables the service needs when they are missing.
// Statements are idempotent so startup stays safe against concurrent
// instances racing on the same database.
func EnsureSchema(db *sql.DB) error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS users (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	name VARCHAR(255) NOT NULL,
	email VARCHAR(255) NOT NULL,
	phone VARCHAR(100) NOT NULL DEFAULT '',
	password_hash VARCHAR(255) NOT NULL,
	role VARCHAR(50) NOT NULL DEFAULT 'user',
	status VARCHAR(50) NOT NULL DEFAULT 'active',
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
	UNIQUE KEY uniq_users_email (email)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;`,

		`CREATE TABLE IF NOT EXISTS operators (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	name VARCHAR(255) NOT NULL,
	total_bookings BIGINT NOT NULL DEFAULT 0,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;`,

		`CREATE TABLE IF NOT EXISTS schedules (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	operator_id BIGINT NOT NULL,
	route_from VARCHAR(255) NOT NULL,
	route_to VARCHAR(255) NOT NULL,
	departure_at DATETIME NOT NULL,
	price_per_seat BIGINT NOT NULL,
	total_seats INT NOT NULL,
	booked_seats INT NOT NULL DEFAULT 0,
	available_seats INT NOT NULL,
	status VARCHAR(50) NOT NULL DEFAULT 'scheduled',
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
	KEY idx_schedules_operator (operator_id),
	KEY idx_schedules_departure (departure_at)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;`,

		`CREATE TABLE IF NOT EXISTS bookings (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	reference VARCHAR(50) NOT NULL,
	user_id BIGINT NOT NULL,
	schedule_id BIGINT NOT NULL,
	operator_id BIGINT NOT NULL,
	route_from VARCHAR(255) NOT NULL,
	route_to VARCHAR(255) NOT NULL,
	passenger_name VARCHAR(255) NOT NULL,
	passenger_email VARCHAR(255) NOT NULL,
	passenger_phone VARCHAR(100) NOT NULL,
	seat_count INT NOT NULL,
	seat_numbers VARCHAR(255) NULL,
	special_requests TEXT NULL,
	price_per_seat BIGINT NOT NULL,
	total_amount BIGINT NOT NULL,
	payment_status VARCHAR(50) NOT NULL DEFAULT 'pending',
	status VARCHAR(50) NOT NULL DEFAULT 'confirmed',
	checked_in_at DATETIME NULL,
	cancellation_date DATETIME NULL,
	cancellation_reason VARCHAR(500) NULL,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
	UNIQUE KEY uniq_bookings_reference (reference),
	KEY idx_bookings_schedule (schedule_id),
	KEY idx_bookings_user (user_id)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;`,
	}

	for _, stmt := range ddl {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
