package bootstrap

import (
	"database/sql"
	"errors"
	"testing"

	"github.com/jmoiron/sqlx"

	"renovabot/config"
	"renovabot/database"
)

func stubDB(t *testing.T) *sqlx.DB {
	t.Helper()
	raw, err := sql.Open("postgres", "")
	if err != nil {
		t.Fatalf("open stub db: %v", err)
	}
	return sqlx.NewDb(raw, "postgres")
}

func TestRunNilConfig(t *testing.T) {
	if _, err := Run(Options{}); err == nil {
		t.Fatal("expected error for nil config")
	}
}

func TestRunOrderAndDatabaseTranslation(t *testing.T) {
	cfg := &config.Config{}
	cfg.Database = config.DatabaseConfig{
		Host:           "db.local",
		Port:           "5433",
		User:           "renova",
		Password:       "secret",
		Name:           "renovabot",
		SSLMode:        "disable",
		MaxConnections: 7,
	}

	var order []string
	var connectCfg, migrateCfg database.Config

	res, err := Run(Options{
		Config: cfg,
		LoggerInit: func(*config.Config) error {
			order = append(order, "logger")
			return nil
		},
		Connect: func(c database.Config) (*sqlx.DB, error) {
			order = append(order, "connect")
			connectCfg = c
			return stubDB(t), nil
		},
		Migrate: func(c database.Config) error {
			order = append(order, "migrate")
			migrateCfg = c
			return nil
		},
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.DB == nil {
		t.Fatal("expected database handle in result")
	}
	defer res.DB.Close()

	want := []string{"logger", "connect", "migrate"}
	if len(order) != len(want) {
		t.Fatalf("pipeline order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("pipeline order = %v, want %v", order, want)
		}
	}

	expected := database.Config{
		Host:           "db.local",
		Port:           "5433",
		User:           "renova",
		Password:       "secret",
		Name:           "renovabot",
		SSLMode:        "disable",
		MaxConnections: 7,
	}
	if connectCfg != expected {
		t.Fatalf("connect config = %+v, want %+v", connectCfg, expected)
	}
	if migrateCfg != expected {
		t.Fatalf("migrate config = %+v, want %+v", migrateCfg, expected)
	}
}

func TestRunMigrateFailureClosesDB(t *testing.T) {
	migrateErr := errors.New("boom")

	_, err := Run(Options{
		Config:     &config.Config{},
		LoggerInit: func(*config.Config) error { return nil },
		Connect: func(database.Config) (*sqlx.DB, error) {
			return stubDB(t), nil
		},
		Migrate: func(database.Config) error { return migrateErr },
	})
	if !errors.Is(err, migrateErr) {
		t.Fatalf("expected migrate error, got %v", err)
	}
}
