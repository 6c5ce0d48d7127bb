package db

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

var RequiredTables = []string{
	"carriers", "stations", "vehicles", "trips",
	"customers", "tickets", "payments",
	"fare_rules", "seat_surcharges", "agents",
}

func RunMigrations(ctx context.Context, db *sql.DB) error {
	slog.Info("Running database migrations...")

	migrations := []string{
		createCarriersTable,
		createStationsTable,
		createVehiclesTable,
		createTripsTable,
		createCustomersTable,
		createTicketsTable,
		createPaymentsTable,
		createFareRulesTable,
		createSeatSurchargesTable,
		createAgentsTable,
	}

	for i, migration := range migrations {
		if _, err := db.ExecContext(ctx, migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}

	slog.Info("All migrations completed successfully", "count", len(migrations))
	return nil
}

const createCarriersTable = `
CREATE TABLE IF NOT EXISTS carriers (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	name VARCHAR(150) NOT NULL,
	active TINYINT(1) NOT NULL DEFAULT 1,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`

const createStationsTable = `
CREATE TABLE IF NOT EXISTS stations (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	name VARCHAR(150) NOT NULL,
	city VARCHAR(100) NOT NULL,
	active TINYINT(1) NOT NULL DEFAULT 1,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
	KEY idx_stations_city (city)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`

const createVehiclesTable = `
CREATE TABLE IF NOT EXISTS vehicles (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	carrier_id BIGINT NOT NULL,
	plate VARCHAR(20) NOT NULL,
	seat_capacity INT NOT NULL,
	active TINYINT(1) NOT NULL DEFAULT 1,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
	UNIQUE KEY uq_vehicles_plate (plate),
	CONSTRAINT fk_vehicles_carrier FOREIGN KEY (carrier_id) REFERENCES carriers(id),
	CONSTRAINT chk_vehicles_capacity CHECK (seat_capacity > 0)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`

// seat_capacity is copied from the vehicle when the trip is created so a
// later vehicle change cannot invalidate sold seat numbers.
const createTripsTable = `
CREATE TABLE IF NOT EXISTS trips (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	carrier_id BIGINT NOT NULL,
	vehicle_id BIGINT NOT NULL,
	origin_station_id BIGINT NOT NULL,
	destination_station_id BIGINT NOT NULL,
	departure_at DATETIME NOT NULL,
	arrival_at DATETIME NOT NULL,
	seat_capacity INT NOT NULL,
	fare DECIMAL(10,2) NOT NULL,
	active TINYINT(1) NOT NULL DEFAULT 1,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
	KEY idx_trips_departure (departure_at),
	CONSTRAINT fk_trips_carrier FOREIGN KEY (carrier_id) REFERENCES carriers(id),
	CONSTRAINT fk_trips_vehicle FOREIGN KEY (vehicle_id) REFERENCES vehicles(id),
	CONSTRAINT fk_trips_origin FOREIGN KEY (origin_station_id) REFERENCES stations(id),
	CONSTRAINT fk_trips_destination FOREIGN KEY (destination_station_id) REFERENCES stations(id),
	CONSTRAINT chk_trips_schedule CHECK (arrival_at > departure_at),
	CONSTRAINT chk_trips_capacity CHECK (seat_capacity > 0)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`

const createCustomersTable = `
CREATE TABLE IF NOT EXISTS customers (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	full_name VARCHAR(200) NOT NULL,
	national_id VARCHAR(20) NOT NULL,
	phone VARCHAR(30) NULL,
	email VARCHAR(200) NULL,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	UNIQUE KEY uq_customers_national_id (national_id)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`

// active_seat is NULL for every non-ACTIVE ticket, so the unique key only
// constrains ACTIVE tickets: at most one per (trip, seat).
const createTicketsTable = `
CREATE TABLE IF NOT EXISTS tickets (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	trip_id BIGINT NOT NULL,
	customer_id BIGINT NOT NULL,
	seat_number INT NOT NULL,
	status ENUM('ACTIVE','CANCELLED','USED') NOT NULL DEFAULT 'ACTIVE',
	price DECIMAL(10,2) NOT NULL,
	salesperson VARCHAR(100) NOT NULL,
	notes TEXT NULL,
	sold_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL,
	active_seat INT GENERATED ALWAYS AS (IF(status = 'ACTIVE', seat_number, NULL)) STORED,
	UNIQUE KEY uq_tickets_trip_active_seat (trip_id, active_seat),
	KEY idx_tickets_trip_status (trip_id, status),
	KEY idx_tickets_sold_at (sold_at, id),
	CONSTRAINT fk_tickets_trip FOREIGN KEY (trip_id) REFERENCES trips(id),
	CONSTRAINT fk_tickets_customer FOREIGN KEY (customer_id) REFERENCES customers(id),
	CONSTRAINT chk_tickets_seat CHECK (seat_number > 0),
	CONSTRAINT chk_tickets_price CHECK (price > 0)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`

const createPaymentsTable = `
CREATE TABLE IF NOT EXISTS payments (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	ticket_id BIGINT NOT NULL,
	amount DECIMAL(10,2) NOT NULL,
	method ENUM('CASH','CREDIT_CARD','BANK_TRANSFER') NOT NULL,
	status ENUM('SUCCESSFUL','REFUNDED') NOT NULL DEFAULT 'SUCCESSFUL',
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL,
	UNIQUE KEY uq_payments_ticket (ticket_id),
	CONSTRAINT fk_payments_ticket FOREIGN KEY (ticket_id) REFERENCES tickets(id)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`

// carrier_id NULL means the rule applies to every carrier.
const createFareRulesTable = `
CREATE TABLE IF NOT EXISTS fare_rules (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	origin_city VARCHAR(100) NOT NULL,
	destination_city VARCHAR(100) NOT NULL,
	carrier_id BIGINT NULL,
	amount DECIMAL(10,2) NOT NULL,
	KEY idx_fare_rules_route (origin_city, destination_city)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`

const createSeatSurchargesTable = `
CREATE TABLE IF NOT EXISTS seat_surcharges (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	carrier_id BIGINT NULL,
	seat_from INT NOT NULL,
	seat_to INT NOT NULL,
	amount DECIMAL(10,2) NOT NULL,
	CONSTRAINT chk_seat_surcharges_range CHECK (seat_from > 0 AND seat_to >= seat_from)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`

const createAgentsTable = `
CREATE TABLE IF NOT EXISTS agents (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	username VARCHAR(100) NOT NULL,
	full_name VARCHAR(200) NOT NULL,
	password_hash VARCHAR(100) NOT NULL,
	role ENUM('agent','admin') NOT NULL DEFAULT 'agent',
	active TINYINT(1) NOT NULL DEFAULT 1,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	UNIQUE KEY uq_agents_username (username)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`
