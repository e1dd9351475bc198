// Package bootstrap initializes shared infrastructure in a fixed order:
// logger first, then the session database, then migrations.
package bootstrap

import (
	"fmt"

	"github.com/jmoiron/sqlx"

	"renovabot/config"
	"renovabot/database"
	"renovabot/logger"
)

// Options control the bootstrap pipeline.
type Options struct {
	Config *config.Config

	LoggerInit func(*config.Config) error
	Connect    func(database.Config) (*sqlx.DB, error)
	Migrate    func(database.Config) error
}

// databaseConfig maps the parsed YAML section onto the database layer's own
// config type. The config package deliberately does not import the database
// package, so the translation happens here.
func databaseConfig(c config.DatabaseConfig) database.Config {
	return database.Config{
		Host:           c.Host,
		Port:           c.Port,
		User:           c.User,
		Password:       c.Password,
		Name:           c.Name,
		SSLMode:        c.SSLMode,
		MaxConnections: c.MaxConnections,
	}
}

// Result exposes infrastructure initialized by the bootstrap pipeline.
type Result struct {
	DB *sqlx.DB
}

// Run initializes the logger, connects to the database, and applies migrations.
func Run(opts Options) (*Result, error) {
	if opts.Config == nil {
		return nil, fmt.Errorf("bootstrap: nil config provided")
	}

	loggerInit := opts.LoggerInit
	if loggerInit == nil {
		loggerInit = logger.InitLogger
	}
	if err := loggerInit(opts.Config); err != nil {
		return nil, fmt.Errorf("bootstrap: logger init failed: %w", err)
	}

	dbCfg := databaseConfig(opts.Config.Database)

	connect := opts.Connect
	if connect == nil {
		connect = database.Connect
	}
	db, err := connect(dbCfg)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: database initialization failed: %w", err)
	}

	migrate := opts.Migrate
	if migrate == nil {
		migrate = database.RunMigrations
	}
	if err := migrate(dbCfg); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bootstrap: migrations failed: %w", err)
	}

	return &Result{DB: db}, nil
}
