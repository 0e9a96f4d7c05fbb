package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

// Open connects to MySQL and verifies the connection.
func Open(user, pass, host, port, name string) (*sql.DB, error) {
	auth := user
	if pass != "" {
		auth = fmt.Sprintf("%s:%s", user, pass)
	}
	// parseTime=true -> DATETIME -> time.Time | loc=UTC keeps times consistent
	dsn := fmt.Sprintf("%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true&loc=UTC",
		auth, host, port, name)

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}
	return db, nil
}

// schema holds the idempotent table definitions. The unique keys are
// load-bearing: they enforce one bucket per (user, hijri year), one
// fast per (user, date), one circle per user, and hash/token/code
// uniqueness for the auth tables.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		email         VARCHAR(255) NOT NULL,
		password_hash VARCHAR(100) NOT NULL DEFAULT '',
		first_name    VARCHAR(100) NOT NULL DEFAULT '',
		last_name     VARCHAR(100) NOT NULL DEFAULT '',
		google_id     VARCHAR(64)  NOT NULL DEFAULT '',
		is_active     TINYINT(1)   NOT NULL DEFAULT 1,
		created_at    TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at    TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		UNIQUE KEY uq_users_email (email)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS year_buckets (
		id               BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		user_id          BIGINT UNSIGNED NOT NULL,
		name             VARCHAR(50)  NOT NULL,
		hijri_year       INT          NOT NULL,
		total_days_owed  INT          NOT NULL,
		completed_days   INT          NOT NULL DEFAULT 0,
		reason_breakdown JSON         NULL,
		notes            VARCHAR(500) NOT NULL DEFAULT '',
		is_completed     TINYINT(1)   NOT NULL DEFAULT 0,
		created_at       TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at       TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		UNIQUE KEY uq_buckets_user_year (user_id, hijri_year),
		KEY idx_buckets_user_open (user_id, is_completed),
		CONSTRAINT fk_buckets_user FOREIGN KEY (user_id) REFERENCES users (id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS fasts (
		id             BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		user_id        BIGINT UNSIGNED NOT NULL,
		fast_date      CHAR(10)     NOT NULL,
		description    VARCHAR(500) NOT NULL DEFAULT '',
		type           VARCHAR(16)  NOT NULL DEFAULT 'sunnah',
		sunnah_type    VARCHAR(16)  NOT NULL DEFAULT '',
		year_bucket_id BIGINT UNSIGNED NULL,
		status         TINYINT(1)   NOT NULL DEFAULT 1,
		created_at     TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at     TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		UNIQUE KEY uq_fasts_user_date (user_id, fast_date),
		KEY idx_fasts_user_status (user_id, status),
		KEY idx_fasts_user_type (user_id, type),
		KEY idx_fasts_bucket (year_bucket_id),
		CONSTRAINT fk_fasts_user FOREIGN KEY (user_id) REFERENCES users (id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS otps (
		id         BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		email      VARCHAR(255) NOT NULL,
		code_hash  VARCHAR(100) NOT NULL,
		expires_at DATETIME     NOT NULL,
		used       TINYINT(1)   NOT NULL DEFAULT 0,
		attempts   INT          NOT NULL DEFAULT 0,
		user_id    BIGINT UNSIGNED NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		KEY idx_otps_email_live (email, used, expires_at)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS refresh_tokens (
		id               BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		user_id          BIGINT UNSIGNED NOT NULL,
		token_hash       CHAR(64)  NOT NULL,
		expires_at       DATETIME  NOT NULL,
		revoked_at       DATETIME  NULL,
		replaced_by_hash CHAR(64)  NOT NULL DEFAULT '',
		created_at       TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		UNIQUE KEY uq_refresh_hash (token_hash),
		KEY idx_refresh_user_active (user_id, revoked_at),
		CONSTRAINT fk_refresh_user FOREIGN KEY (user_id) REFERENCES users (id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS password_resets (
		id         BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		user_id    BIGINT UNSIGNED NOT NULL,
		token      CHAR(64)   NOT NULL,
		expires_at DATETIME   NOT NULL,
		used       TINYINT(1) NOT NULL DEFAULT 0,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		UNIQUE KEY uq_resets_token (token),
		CONSTRAINT fk_resets_user FOREIGN KEY (user_id) REFERENCES users (id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS circles (
		id          BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		name        VARCHAR(100) NOT NULL,
		description VARCHAR(500) NOT NULL DEFAULT '',
		invite_code CHAR(6)      NOT NULL,
		created_by  BIGINT UNSIGNED NOT NULL,
		created_at  TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at  TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		UNIQUE KEY uq_circles_code (invite_code)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS circle_members (
		circle_id    BIGINT UNSIGNED NOT NULL,
		user_id      BIGINT UNSIGNED NOT NULL,
		privacy_tier VARCHAR(16) NOT NULL DEFAULT 'limited',
		is_admin     TINYINT(1)  NOT NULL DEFAULT 0,
		joined_at    TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (circle_id, user_id),
		UNIQUE KEY uq_members_user (user_id),
		CONSTRAINT fk_members_circle FOREIGN KEY (circle_id) REFERENCES circles (id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS circle_actions (
		id         BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		circle_id  BIGINT UNSIGNED NOT NULL,
		from_user  BIGINT UNSIGNED NOT NULL,
		to_user    BIGINT UNSIGNED NOT NULL,
		type       VARCHAR(16) NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		KEY idx_actions_circle (circle_id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// EnsureSchema creates any missing tables. Safe to run on every
// startup.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
