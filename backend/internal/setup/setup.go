package setup

import (
	"context"
	"fmt"

	"github.com/Mecho90/BuildingManagement/backend/internal/handler"
	"github.com/Mecho90/BuildingManagement/backend/internal/service"
	"github.com/Mecho90/BuildingManagement/backend/internal/storage/fs"
	"github.com/Mecho90/BuildingManagement/backend/internal/storage/pg"
	"github.com/Mecho90/BuildingManagement/backend/internal/storage/s3"
	"github.com/Mecho90/BuildingManagement/shared/config"
	"github.com/Mecho90/BuildingManagement/shared/jwt"
	mw "github.com/Mecho90/BuildingManagement/shared/middleware"
	"github.com/Mecho90/BuildingManagement/shared/validation"
)

// Dependencies struct to hold all initialized dependencies.
type Dependencies struct {
	Storage        *pg.Storage
	Handler        *handler.Handler
	Jwt            jwt.JwtService
	AuthMiddleware *mw.Auth
	Config         *config.Config
}

// SetupDependencies initializes all dependencies required for the API process.
func SetupDependencies(ctx context.Context, cfg *config.Config) (*Dependencies, error) {
	storage, err := pg.New(cfg)
	if err != nil {
		return nil, err
	}

	objects, err := NewObjectStorage(ctx, cfg)
	if err != nil {
		storage.Cleanup()
		return nil, err
	}

	gate, err := validation.NewConfig(
		cfg.Public.Attachments.MaxSizeBytes,
		cfg.Public.Attachments.AllowedTypes,
		cfg.Public.Attachments.AllowedPrefixes,
	)
	if err != nil {
		storage.Cleanup()
		return nil, err
	}

	jwtSvc := jwt.New(cfg.JwtKey(), cfg.JwtTTL())

	authz, err := service.NewAuthz(storage)
	if err != nil {
		storage.Cleanup()
		return nil, err
	}
	workOrders, err := service.NewWorkOrder(storage, &cfg.Public)
	if err != nil {
		storage.Cleanup()
		return nil, err
	}

	auth := service.NewAuth(storage, jwtSvc)
	buildings := service.NewBuilding(storage, authz)
	attachments := service.NewAttachment(storage, objects, gate, &cfg.Public)
	notifications := service.NewNotification(storage)

	h := handler.New(auth, authz, buildings, workOrders, attachments, notifications, storage, cfg)

	return &Dependencies{
		Storage:        storage,
		Handler:        h,
		Jwt:            jwtSvc,
		AuthMiddleware: mw.NewAuth(jwtSvc),
		Config:         cfg,
	}, nil
}

// NewObjectStorage builds the attachment payload store the config selects.
// The admin CLI reuses it so both processes resolve the same backend.
func NewObjectStorage(ctx context.Context, cfg *config.Config) (service.ObjectStorage, error) {
	switch cfg.Public.Storage.Backend {
	case "s3":
		return s3.New(ctx, s3.Config{
			Endpoint:  cfg.Public.Storage.S3Endpoint,
			Region:    cfg.Public.Storage.S3Region,
			Bucket:    cfg.Public.Storage.S3Bucket,
			AccessKey: cfg.Private.S3AccessKey,
			SecretKey: cfg.Private.S3SecretKey,
		})
	case "fs":
		return fs.New(cfg.Public.Storage.FSRoot, cfg.Public.MediaBaseURL)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Public.Storage.Backend)
	}
}
