package store

import (
	"context"
	"fmt"
)

// Initialize creates the store tables if they don't exist.
func (db *DB) Initialize(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS users (
			login VARCHAR(50) PRIMARY KEY,
			password VARCHAR(50) NOT NULL,
			role VARCHAR(20) NOT NULL DEFAULT 'customer',
			favorite_games TEXT NOT NULL DEFAULT '',
			phone_num VARCHAR(20) NOT NULL,
			num_overdue_games INTEGER NOT NULL DEFAULT 0
		);

		CREATE TABLE IF NOT EXISTS catalog (
			game_id VARCHAR(50) PRIMARY KEY,
			game_name VARCHAR(255) NOT NULL,
			genre VARCHAR(50) NOT NULL,
			price DECIMAL(10, 2) NOT NULL
		);

		CREATE TABLE IF NOT EXISTS rental_order (
			rental_order_id VARCHAR(50) PRIMARY KEY,
			login VARCHAR(50) NOT NULL REFERENCES users(login) ON UPDATE CASCADE,
			no_of_games INTEGER NOT NULL,
			total_price DECIMAL(10, 2) NOT NULL,
			order_timestamp TIMESTAMP NOT NULL,
			due_date TIMESTAMP NOT NULL
		);

		CREATE TABLE IF NOT EXISTS tracking_info (
			tracking_id VARCHAR(50) PRIMARY KEY,
			rental_order_id VARCHAR(50) NOT NULL REFERENCES rental_order(rental_order_id),
			status VARCHAR(50) NOT NULL,
			current_location VARCHAR(100) NOT NULL DEFAULT '',
			courier_name VARCHAR(50) NOT NULL,
			last_update_date TIMESTAMP NOT NULL,
			additional_comments TEXT NOT NULL DEFAULT ''
		);

		CREATE TABLE IF NOT EXISTS games_in_order (
			rental_order_id VARCHAR(50) NOT NULL REFERENCES rental_order(rental_order_id),
			game_id VARCHAR(50) NOT NULL REFERENCES catalog(game_id),
			units_ordered INTEGER NOT NULL,
			PRIMARY KEY (rental_order_id, game_id)
		);

		CREATE INDEX IF NOT EXISTS idx_rental_order_login
		ON rental_order(login);

		CREATE INDEX IF NOT EXISTS idx_tracking_info_order
		ON tracking_info(rental_order_id);
	`

	if _, err := db.pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to create store tables: %w", err)
	}

	return nil
}

// SeedCatalog inserts a small demo catalog. Existing entries are left alone.
func (db *DB) SeedCatalog(ctx context.Context) error {
	entries := []struct {
		id    string
		name  string
		genre string
		price float64
	}{
		{"game1", "Galactic Drift", "Racing", 9.99},
		{"game2", "Castle of Whispers", "Adventure", 14.99},
		{"game3", "Penalty Kings", "Sports", 7.49},
		{"game4", "Dungeon Ledger", "RPG", 19.99},
		{"game5", "Quiet Harvest", "Simulation", 12.00},
		{"game6", "Neon Vanguard", "Shooter", 15.50},
		{"game7", "Riddle Array", "Puzzle", 4.99},
		{"game8", "Iron Tactics", "Strategy", 11.25},
	}

	for _, e := range entries {
		_, err := db.pool.Exec(ctx, `
			INSERT INTO catalog (game_id, game_name, genre, price)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (game_id) DO NOTHING
		`, e.id, e.name, e.genre, e.price)
		if err != nil {
			return fmt.Errorf("failed to seed catalog entry %s: %w", e.id, err)
		}
	}

	return nil
}
