// Package pg is the relational store behind the API service: users,
// buildings, units, tenants, work orders, attachment metadata, memberships
// and notifications. Schema changes ship as embedded goose migrations.
package pg

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"log/slog"

	"github.com/Mecho90/BuildingManagement/shared/config"
	sharedpg "github.com/Mecho90/BuildingManagement/shared/storage/pg"

	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

type Storage struct {
	db  *sql.DB
	cfg *config.Config
}

func New(cfg *config.Config) (*Storage, error) {
	slog.Info("Connecting to db")
	db, err := sharedpg.Connect(cfg, sharedpg.DefaultConnectionConfig())
	if err != nil {
		return nil, err
	}
	slog.Info("Successfully connected to db")
	return &Storage{db: db, cfg: cfg}, nil
}

// Migrate applies any pending schema migrations.
func (s *Storage) Migrate(ctx context.Context) error {
	return RunMigrations(ctx, s.db)
}

// RunMigrations applies the embedded goose migrations to db.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(embedMigrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

func (s *Storage) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Storage) Cleanup() error {
	return s.db.Close()
}

// withTx runs fn inside a transaction on this storage's pool.
func (s *Storage) withTx(ctx context.Context, fn func(*sql.Tx) error) error {
	return sharedpg.WithTx(ctx, s.db, fn)
}
