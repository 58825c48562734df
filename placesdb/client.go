package placesdb

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"mihrab.noorapp.org/internal/appconf"
	"mihrab.noorapp.org/internal/logging"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

//go:embed schema.sql
var ddl string

// ErrPlaceNotFound is returned when no place matches a lookup.
var ErrPlaceNotFound = errors.New("place not found")

// Client is the main entry point for the library
type Client struct {
	config  Config
	DB      *sql.DB
	Queries *Queries
	logger  *slog.Logger
}

// NewClient opens the database described by config and applies the schema.
func NewClient(config Config) (*Client, error) {
	db, err := createDB(config)
	if err != nil {
		return nil, err
	}

	logger := logging.Component(slog.Default(), "placesdb")
	if config.verbose {
		logging.LogOperation(logger, "places_database_ready", slog.String("path", config.DBPath))
	}

	return &Client{
		config:  config,
		DB:      db,
		Queries: New(db),
		logger:  logger,
	}, nil
}

// WithLogger replaces the logger used for import and lookup diagnostics.
func (c *Client) WithLogger(logger *slog.Logger) *Client {
	c.logger = logging.Component(logger, "placesdb")
	return c
}

func (c *Client) Close() error {
	return c.DB.Close()
}

// FindPlace looks a place up by name, ignoring case. When several places share
// a name the most populous one wins.
func (c *Client) FindPlace(ctx context.Context, name string) (Place, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Place{}, ErrPlaceNotFound
	}

	place, err := c.Queries.GetPlaceByName(ctx, name)
	if errors.Is(err, sql.ErrNoRows) {
		return Place{}, ErrPlaceNotFound
	}
	if err != nil {
		return Place{}, fmt.Errorf("find place %q: %w", name, err)
	}
	return place, nil
}

// SearchPlaces returns up to limit places whose name starts with prefix,
// most populous first.
func (c *Client) SearchPlaces(ctx context.Context, prefix string, limit int) ([]Place, error) {
	if limit <= 0 {
		return nil, nil
	}
	places, err := c.Queries.SearchPlaces(ctx, SearchPlacesParams{
		Prefix: strings.TrimSpace(prefix),
		Limit:  int64(limit),
	})
	if err != nil {
		return nil, fmt.Errorf("search places %q: %w", prefix, err)
	}
	return places, nil
}

// TableCounts reports the number of rows in every table.
func (c *Client) TableCounts() (map[string]int, error) {
	rows, err := c.DB.Query("SELECT name FROM sqlite_master WHERE type='table' AND name NOT LIKE 'sqlite_%'")
	if err != nil {
		return nil, fmt.Errorf("failed to query table names: %w", err)
	}
	defer rows.Close() // nolint:errcheck

	var tables []string
	for rows.Next() {
		var tableName string
		if err := rows.Scan(&tableName); err != nil {
			return nil, fmt.Errorf("failed to scan table name: %w", err)
		}
		tables = append(tables, tableName)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	counts := make(map[string]int, len(tables))
	for _, table := range tables {
		var count int
		query := fmt.Sprintf("SELECT COUNT(*) FROM %s", table)
		if err := c.DB.QueryRow(query).Scan(&count); err != nil {
			return nil, err
		}
		counts[table] = count
	}

	return counts, nil
}

func createDB(config Config) (*sql.DB, error) {
	if config.Env == appconf.Test && config.DBPath != ":memory:" {
		return nil, fmt.Errorf("test database must use in-memory storage, got %q", config.DBPath)
	}

	db, err := sql.Open("sqlite", config.DBPath)
	if err != nil {
		return nil, err
	}

	// Every connection to ":memory:" is a separate database.
	if config.DBPath == ":memory:" {
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
	}

	if err := performDatabaseMigration(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("error performing database migration: %w", err)
	}

	return db, nil
}

func performDatabaseMigration(ctx context.Context, db *sql.DB) error {
	statements := strings.Split(ddl, "-- migrate")
	for _, stmt := range statements {
		trimmedStmt := strings.TrimSpace(stmt)
		if trimmedStmt == "" {
			continue
		}
		if _, err := db.ExecContext(ctx, trimmedStmt); err != nil {
			return fmt.Errorf("error executing DDL statement [%s]: %w", trimmedStmt, err)
		}
	}
	return nil
}
