package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"time"

	"github.com/Mecho90/BuildingManagement/backend/internal/router"
	"github.com/Mecho90/BuildingManagement/backend/internal/setup"
	"github.com/Mecho90/BuildingManagement/shared/config"
	"github.com/Mecho90/BuildingManagement/shared/logger"
)

const (
	defaultAddr = ":8080"
	// Uploads stream whole multipart batches through the request body, so the
	// read timeout is sized for them rather than for JSON calls.
	readTimeout  = 60 * time.Second
	writeTimeout = 60 * time.Second
)

func main() {
	var configFolder string
	flag.StringVar(&configFolder, "config_folder", "backend/config", "path to folder with configs")
	flag.Parse()

	cfg := config.MustLoad(configFolder)
	logger.Initialize(cfg.Public.LogLevel, cfg.Public.LogJSON)

	deps, err := setup.SetupDependencies(context.Background(), cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer deps.Storage.Cleanup()

	server := configureServer(router.New(deps), cfg.Public.APIAddr)
	logger.Log.Info("api server starting", "addr", server.Addr)
	log.Fatal(server.ListenAndServe())
}

func configureServer(handler http.Handler, addr string) *http.Server {
	if addr == "" {
		addr = defaultAddr
	}
	return &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}
}
