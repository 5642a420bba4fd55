package database

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/lib/pq"
)

type DB struct {
	*sql.DB
}

// Config is filled from DB_* variables (DB_HOST, DB_MAX_OPEN_CONNS, ...).
type Config struct {
	Host               string `default:"localhost"`
	Port               int    `default:"5432"`
	User               string `default:"hunt"`
	Password           string `default:"hunt123"`
	Name               string `default:"hunt_tickets"`
	SSLMode            string `split_words:"true" default:"disable"`
	MaxOpenConns       int    `split_words:"true" default:"50"`
	MaxIdleConns       int    `split_words:"true" default:"10"`
	ConnMaxLifetimeMin int    `split_words:"true" default:"5"`
	ConnMaxIdleTimeMin int    `split_words:"true" default:"1"`
}

// DSN is the lib/pq keyword/value connection string.
func (cfg Config) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name, cfg.SSLMode)
}

func Connect(cfg Config) (*DB, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetimeMin) * time.Minute)
	db.SetConnMaxIdleTime(time.Duration(cfg.ConnMaxIdleTimeMin) * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	slog.Info("Connected to database",
		"host", cfg.Host, "port", cfg.Port, "dbname", cfg.Name,
		"max_open_conns", cfg.MaxOpenConns, "max_idle_conns", cfg.MaxIdleConns)

	return &DB{db}, nil
}

func (db *DB) Close() error {
	return db.DB.Close()
}
