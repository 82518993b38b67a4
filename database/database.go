package database

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
)

// Connect opens and pings the MySQL database. The DSN must carry
// parseTime=true so DATETIME columns scan into time.Time.
func Connect(dsn string) (*sql.DB, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS branches (
		id      VARCHAR(36) PRIMARY KEY,
		name    VARCHAR(100) NOT NULL,
		address VARCHAR(255) NOT NULL,
		city    VARCHAR(100) NOT NULL,
		manager VARCHAR(100) NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS customers (
		id             VARCHAR(36) PRIMARY KEY,
		full_name      VARCHAR(100) NOT NULL,
		email          VARCHAR(255) NOT NULL,
		telephone      VARCHAR(30)  NOT NULL,
		date_of_birth  DATETIME NOT NULL,
		registered_at  DATETIME NOT NULL,
		home_branch_id VARCHAR(36),
		FOREIGN KEY (home_branch_id) REFERENCES branches(id)
	)`,
	`CREATE TABLE IF NOT EXISTS accounts (
		id          VARCHAR(36) PRIMARY KEY,
		customer_id VARCHAR(36) NOT NULL,
		type        VARCHAR(20) NOT NULL,
		balance     DECIMAL(18,2) NOT NULL DEFAULT 0,
		created_at  DATETIME NOT NULL,
		status      VARCHAR(20) NOT NULL,
		FOREIGN KEY (customer_id) REFERENCES customers(id)
	)`,
	`CREATE TABLE IF NOT EXISTS transactions (
		id         VARCHAR(36) PRIMARY KEY,
		account_id VARCHAR(36) NOT NULL,
		type       VARCHAR(20) NOT NULL,
		amount     DECIMAL(18,2) NOT NULL,
		timestamp  DATETIME NOT NULL,
		method     VARCHAR(30) NOT NULL,
		FOREIGN KEY (account_id) REFERENCES accounts(id)
	)`,
	`CREATE TABLE IF NOT EXISTS loans (
		id            VARCHAR(36) PRIMARY KEY,
		account_id    VARCHAR(36) NOT NULL,
		type          VARCHAR(30) NOT NULL,
		amount        DECIMAL(18,2) NOT NULL,
		interest_rate DECIMAL(7,4) NOT NULL,
		start_date    DATETIME NOT NULL,
		end_date      DATETIME NOT NULL,
		status        VARCHAR(20) NOT NULL,
		FOREIGN KEY (account_id) REFERENCES accounts(id)
	)`,
}

// EnsureSchema creates the five entity tables if they do not exist.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
