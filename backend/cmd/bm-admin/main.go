// bm-admin is the operations CLI for the building management system. It
// shares config and storage wiring with the API server, so cron jobs and
// operators act on exactly the state the server sees.
//
//	bm-admin migrate                      apply pending schema migrations
//	bm-admin seed                         create a demo dataset and users
//	bm-admin sync-notifications           rebuild deadline/mass-assign alerts
//	bm-admin sweep-media                  delete unreferenced stored objects
//
// sync-notifications and sweep-media are idempotent and safe to re-run; both
// are meant to be invoked from cron.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"github.com/Mecho90/BuildingManagement/backend/internal/service"
	"github.com/Mecho90/BuildingManagement/backend/internal/setup"
	"github.com/Mecho90/BuildingManagement/backend/internal/storage/pg"
	"github.com/Mecho90/BuildingManagement/shared/config"
	"github.com/Mecho90/BuildingManagement/shared/domain"
	"github.com/Mecho90/BuildingManagement/shared/logger"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configFolder string

	root := &cobra.Command{
		Use:           "bm-admin",
		Short:         "Operations CLI for the building management system",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configFolder, "config_folder", "backend/config", "path to folder with configs")

	root.AddCommand(
		newMigrateCmd(&configFolder),
		newSeedCmd(&configFolder),
		newSyncNotificationsCmd(&configFolder),
		newSweepMediaCmd(&configFolder),
	)
	return root
}

// loadStorage loads config, configures logging and connects to postgres.
// Every subcommand starts here.
func loadStorage(configFolder string) (*config.Config, *pg.Storage, error) {
	cfg := config.MustLoad(configFolder)
	logger.Initialize(cfg.Public.LogLevel, cfg.Public.LogJSON)

	storage, err := pg.New(cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, storage, nil
}

func newMigrateCmd(configFolder *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, storage, err := loadStorage(*configFolder)
			if err != nil {
				return err
			}
			defer storage.Cleanup()

			if err := storage.Migrate(cmd.Context()); err != nil {
				return err
			}
			logger.Log.Info("migrations applied")
			return nil
		},
	}
}

func newSeedCmd(configFolder *string) *cobra.Command {
	var adminEmail, adminPassword string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create an admin user and a demo building with units and work orders",
		Long: "Creates the initial admin account plus a small demo dataset used by the\n" +
			"end-to-end suite: one building with two units, a tenant, an open work\n" +
			"order and a manager account scoped to that building.",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, storage, err := loadStorage(*configFolder)
			if err != nil {
				return err
			}
			defer storage.Cleanup()

			if err := storage.Migrate(cmd.Context()); err != nil {
				return err
			}
			return seed(cmd.Context(), storage, adminEmail, adminPassword)
		},
	}

	cmd.Flags().StringVar(&adminEmail, "admin-email", "admin@example.com", "email for the admin account")
	cmd.Flags().StringVar(&adminPassword, "admin-password", "", "password for the admin account (required)")
	_ = cmd.MarkFlagRequired("admin-password")
	return cmd
}

func seed(ctx context.Context, storage *pg.Storage, adminEmail, adminPassword string) error {
	adminId, err := seedUser(ctx, storage, domain.User{
		Email:     strings.ToLower(adminEmail),
		FirstName: "Admin",
		Admin:     true,
	}, adminPassword)
	if err != nil {
		return err
	}

	managerId, err := seedUser(ctx, storage, domain.User{
		Email:     "manager@example.com",
		FirstName: "Morgan",
		LastName:  "Reyes",
	}, adminPassword)
	if err != nil {
		return err
	}

	buildingId, err := storage.CreateBuilding(ctx, domain.Building{
		Name:        "Harborview Apartments",
		Address:     "12 Quay Street",
		Description: "Demo building created by `bm-admin seed`.",
		OwnerId:     &managerId,
	})
	if err != nil {
		return fmt.Errorf("failed to seed building: %w", err)
	}

	if _, err := storage.AddMembership(ctx, domain.Membership{
		UserId:     managerId,
		BuildingId: &buildingId,
		Role:       domain.RoleBackoffice,
	}); err != nil {
		return fmt.Errorf("failed to seed membership: %w", err)
	}

	unitId, err := storage.CreateUnit(ctx, domain.Unit{
		BuildingId: buildingId,
		Number:     "1A",
		Floor:      1,
		IsOccupied: true,
	})
	if err != nil {
		return fmt.Errorf("failed to seed unit: %w", err)
	}
	if _, err := storage.CreateUnit(ctx, domain.Unit{
		BuildingId: buildingId,
		Number:     "2B",
		Floor:      2,
	}); err != nil {
		return fmt.Errorf("failed to seed unit: %w", err)
	}

	if err := storage.SetTenant(ctx, domain.Tenant{
		UnitId:   unitId,
		FullName: "Jamie Okafor",
		Email:    "jamie@example.com",
	}); err != nil {
		return fmt.Errorf("failed to seed tenant: %w", err)
	}

	deadline := time.Now().AddDate(0, 0, 5)
	if _, err := storage.CreateWorkOrder(ctx, domain.WorkOrder{
		BuildingId:  &buildingId,
		UnitId:      &unitId,
		Title:       "Fix kitchen tap",
		Description: "Tenant reports a dripping tap in unit 1A.",
		Status:      domain.StatusOpen,
		Priority:    domain.PriorityMedium,
		Deadline:    &deadline,
		CreatedBy:   &adminId,
	}); err != nil {
		return fmt.Errorf("failed to seed work order: %w", err)
	}

	logger.Log.Info("seed complete", "admin", adminEmail, "building_id", buildingId)
	return nil
}

func seedUser(ctx context.Context, storage *pg.Storage, user domain.User, password string) (int64, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return 0, fmt.Errorf("failed to hash password: %w", err)
	}
	user.PassHash = string(hash)

	id, err := storage.SaveUser(ctx, user)
	if err != nil {
		return 0, fmt.Errorf("failed to seed user %s: %w", user.Email, err)
	}
	return id, nil
}

func newSyncNotificationsCmd(configFolder *string) *cobra.Command {
	var todayFlag string

	cmd := &cobra.Command{
		Use:   "sync-notifications",
		Short: "Rebuild deadline and mass-assignment notifications for all users",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, storage, err := loadStorage(*configFolder)
			if err != nil {
				return err
			}
			defer storage.Cleanup()

			today := time.Now()
			if todayFlag != "" {
				today, err = time.Parse("2006-01-02", todayFlag)
				if err != nil {
					return fmt.Errorf("invalid --today %q, want YYYY-MM-DD", todayFlag)
				}
			}

			authz, err := service.NewAuthz(storage)
			if err != nil {
				return err
			}
			return service.NewNotificationSync(storage, authz).SyncAll(cmd.Context(), today)
		},
	}

	cmd.Flags().StringVar(&todayFlag, "today", "", "override the reference date (YYYY-MM-DD), for testing")
	return cmd
}

func newSweepMediaCmd(configFolder *string) *cobra.Command {
	var minAge time.Duration

	cmd := &cobra.Command{
		Use:   "sweep-media",
		Short: "Delete stored objects no attachment record references",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, storage, err := loadStorage(*configFolder)
			if err != nil {
				return err
			}
			defer storage.Cleanup()

			objects, err := setup.NewObjectStorage(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			sweepObjects, ok := objects.(service.SweepObjects)
			if !ok {
				return fmt.Errorf("storage backend %q does not support sweeping", cfg.Public.Storage.Backend)
			}

			stats, err := service.NewMediaSweeper(storage, sweepObjects, minAge).Sweep(cmd.Context(), time.Now())
			if err != nil {
				return err
			}
			logger.Log.Info("media sweep complete",
				"scanned", stats.ObjectsScanned,
				"orphans", stats.Orphans,
				"deleted", stats.Deleted,
				"errors", len(stats.Errors))
			for _, e := range stats.Errors {
				logger.Log.Warn("media sweep", "error", e)
			}
			return nil
		},
	}

	cmd.Flags().DurationVar(&minAge, "min-age", time.Hour, "minimum object age before an orphan is deleted")
	return cmd
}
