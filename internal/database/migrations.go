package database

import (
	"fmt"
	"log/slog"
)

func (db *DB) RunMigrations() error {
	slog.Info("Running database migrations...")

	migrations := []string{
		createEventsTable,
		createSponsorsTable,
		createEventSponsorsTable,
		createBookingsTable,
		createPaymentsTable,
		createVolunteersTable,
		createPaymentsOrderIndex,
		createBookingsEventDateIndex,
	}

	for i, migration := range migrations {
		slog.Info("Running migration", "step", i+1)
		if _, err := db.Exec(migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}

	slog.Info("All migrations completed successfully")
	return nil
}

const createEventsTable = `
CREATE TABLE IF NOT EXISTS events (
    id SERIAL PRIMARY KEY,
    event_name VARCHAR(200) NOT NULL,
    category VARCHAR(20) NOT NULL DEFAULT 'OTHER',
    organiser VARCHAR(100) NOT NULL,
    theme VARCHAR(200),
    description VARCHAR(250),
    event_date DATE NOT NULL,
    event_time TIME NOT NULL,
    venue VARCHAR(200) NOT NULL,
    total_tickets INTEGER NOT NULL DEFAULT 0,
    price_per_ticket DECIMAL(10,2) NOT NULL DEFAULT 0,
    status BOOLEAN NOT NULL DEFAULT TRUE,
    free_ticket BOOLEAN NOT NULL DEFAULT FALSE,
    created_at TIMESTAMP NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP NOT NULL DEFAULT NOW(),

    CHECK (price_per_ticket >= 0),
    CHECK (category IN ('CONFERENCE', 'WORKSHOP', 'SEMINAR', 'CULTURAL',
                        'SPORTS', 'CONCERT', 'EXHIBITION', 'NETWORKING', 'OTHER'))
);`

const createSponsorsTable = `
CREATE TABLE IF NOT EXISTS sponsors (
    id SERIAL PRIMARY KEY,
    name VARCHAR(100) NOT NULL,
    purpose VARCHAR(200),
    contact VARCHAR(100),
    cost DECIMAL(10,2) NOT NULL DEFAULT 0,
    status BOOLEAN NOT NULL DEFAULT TRUE,
    created_at TIMESTAMP NOT NULL DEFAULT NOW()
);`

const createEventSponsorsTable = `
CREATE TABLE IF NOT EXISTS event_sponsors (
    id SERIAL PRIMARY KEY,
    event_id INTEGER NOT NULL REFERENCES events(id) ON DELETE CASCADE,
    sponsor_id INTEGER NOT NULL REFERENCES sponsors(id) ON DELETE CASCADE,

    UNIQUE(event_id, sponsor_id)
);`

const createBookingsTable = `
CREATE TABLE IF NOT EXISTS bookings (
    id SERIAL PRIMARY KEY,
    event_id INTEGER NOT NULL REFERENCES events(id) ON DELETE CASCADE,
    number_of_tickets INTEGER NOT NULL,
    name VARCHAR(200) NOT NULL,
    contact_number VARCHAR(15) NOT NULL,
    email VARCHAR(254) NOT NULL DEFAULT '',
    total_cost DECIMAL(10,2) NOT NULL DEFAULT 0,
    paid BOOLEAN NOT NULL DEFAULT FALSE,
    payment_id VARCHAR(128) NOT NULL DEFAULT '',
    ticket_id VARCHAR(5) UNIQUE NOT NULL,
    reminder_24h_sent BOOLEAN NOT NULL DEFAULT FALSE,
    reminder_2h_sent BOOLEAN NOT NULL DEFAULT FALSE,
    last_reminder_sent TIMESTAMP,
    created_at TIMESTAMP NOT NULL DEFAULT NOW(),

    CHECK (number_of_tickets > 0)
);`

const createPaymentsTable = `
CREATE TABLE IF NOT EXISTS payments (
    id SERIAL PRIMARY KEY,
    booking_id INTEGER NOT NULL REFERENCES bookings(id) ON DELETE CASCADE,
    razorpay_order_id VARCHAR(128) NOT NULL,
    razorpay_payment_id VARCHAR(128) UNIQUE,
    status VARCHAR(32) NOT NULL DEFAULT 'created',
    amount DECIMAL(10,2) NOT NULL DEFAULT 0,
    currency VARCHAR(8) NOT NULL DEFAULT 'INR',
    method VARCHAR(32),
    raw_response JSONB,
    created_at TIMESTAMP NOT NULL DEFAULT NOW(),

    CHECK (status IN ('created', 'captured', 'failed'))
);`

const createVolunteersTable = `
CREATE TABLE IF NOT EXISTS volunteers (
    id SERIAL PRIMARY KEY,
    first_name VARCHAR(50),
    last_name VARCHAR(50),
    email VARCHAR(254),
    phone VARCHAR(15),
    address TEXT,
    city VARCHAR(100),
    state VARCHAR(100),
    volunteer_role VARCHAR(100) NOT NULL DEFAULT 'General',
    skills TEXT,
    availability JSONB NOT NULL DEFAULT '[]',
    status VARCHAR(20) NOT NULL DEFAULT 'Pending',
    created_at TIMESTAMP NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP NOT NULL DEFAULT NOW(),

    CHECK (status IN ('Active', 'Pending', 'Inactive'))
);`

const createPaymentsOrderIndex = `
CREATE INDEX IF NOT EXISTS payments_razorpay_order_id_idx
ON payments (razorpay_order_id);`

const createBookingsEventDateIndex = `
CREATE INDEX IF NOT EXISTS bookings_event_id_idx
ON bookings (event_id);`
