// Package testutil holds helpers shared by the test suites.
package testutil

import (
	"context"
	"net/mail"
	"os"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/skillflow360/skillflow/core"
	"github.com/skillflow360/skillflow/core/session"
	"github.com/skillflow360/skillflow/storage/database"
)

// Config returns a configuration for tests, independent of the environment.
func Config() *core.Config {
	return &core.Config{
		TestMode:         true,
		Env:              "TEST",
		Build:            "test",
		AppName:          "SkillFlow",
		SecretKey:        "test-secret-key",
		FrontendBaseURL:  "http://localhost:8000",
		DefaultFromEmail: mail.Address{Name: "SkillFlow", Address: "noreply@localhost"},
		Server: core.ServerConfig{
			ShutdownTimeout: time.Second,
			SessionTTL:      time.Hour,
			DisableReqLogs:  true,
		},
		Database: core.DatabaseConfig{
			Engine:     "postgres",
			Host:       envOr("TEST_DATABASE_HOST", "localhost"),
			Port:       envOr("TEST_DATABASE_PORT", "5432"),
			Name:       envOr("TEST_DATABASE_NAME", "skillflow_test"),
			User:       envOr("TEST_DATABASE_USER", "skillflow"),
			Password:   envOr("TEST_DATABASE_PASSWORD", "skillflow"),
			DisableTLS: true,
		},
		Attempts: core.AttemptsConfig{TTL: time.Hour},
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// PrepareDB opens the test database and migrates it. The test is skipped when no database is reachable.
// Sessions are wiped on cleanup.
func PrepareDB(t *testing.T) *sqlx.DB {
	t.Helper()
	if testing.Short() {
		t.Skip("database tests skipped in short mode")
	}

	db, err := database.Open(Config())
	if err != nil {
		t.Fatalf("database.Open() failed: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err = database.Ping(ctx, db, 3); err != nil {
		_ = db.Close()
		t.Skipf("no test database: %v", err)
	}
	if err = database.Migrate("up", db.DB); err != nil {
		t.Fatalf("database.Migrate() failed: %v", err)
	}

	t.Cleanup(func() {
		if _, err := db.Exec("DELETE FROM sessions"); err != nil {
			t.Errorf("cleaning sessions: %v", err)
		}
		_ = db.Close()
	})
	return db
}

// Identity returns a signed-in identity of the given role.
func Identity(role session.Role, userID int64) session.Identity {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return session.Identity{
		Token:        "token-" + string(role),
		Role:         role,
		UserID:       userID,
		FullName:     "Amina Diallo",
		Email:        "amina@skillflow.io",
		StudentLevel: "L3",
		CreatedAt:    now,
		ExpiresAt:    now.Add(time.Hour),
	}
}
