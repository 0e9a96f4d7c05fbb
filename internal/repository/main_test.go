package repository

// Database tests run only against a real MySQL instance. Point
// TEST_MYSQL_DSN at a throwaway database, e.g.
//
//	TEST_MYSQL_DSN="root:pass@tcp(127.0.0.1:3306)/rayyan_test?parseTime=true&loc=UTC" go test ./internal/repository/
//
// Without the variable the whole package skips.

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"testing"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"github.com/rayyan-app/rayyan-server/internal/database"
)

func testDB(t *testing.T) *sql.DB {
	t.Helper()
	dsn := os.Getenv("TEST_MYSQL_DSN")
	if dsn == "" {
		t.Skip("TEST_MYSQL_DSN not set; skipping database tests")
	}
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		t.Fatalf("ping: %v", err)
	}
	if err := database.EnsureSchema(ctx, db); err != nil {
		t.Fatalf("schema: %v", err)
	}

	// Children before parents, for the foreign keys.
	for _, table := range []string{
		"circle_actions", "circle_members", "circles",
		"fasts", "year_buckets",
		"refresh_tokens", "password_resets", "otps",
		"users",
	} {
		if _, err := db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			t.Fatalf("clean %s: %v", table, err)
		}
	}
	return db
}

var userSeq int

// seedUser inserts a bare user row and returns its id.
func seedUser(t *testing.T, db *sql.DB) uint64 {
	t.Helper()
	userSeq++
	email := fmt.Sprintf("user%d@example.com", userSeq)
	res, err := db.Exec(
		"INSERT INTO users (email, password_hash, first_name, last_name) VALUES (?,?,?,?)",
		email, "", "Test", fmt.Sprintf("User%d", userSeq))
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		t.Fatalf("seed user id: %v", err)
	}
	return uint64(id)
}
