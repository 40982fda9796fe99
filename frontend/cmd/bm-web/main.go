package main

import (
	"flag"
	"log"
	"net/http"
	"time"

	"github.com/Mecho90/BuildingManagement/frontend/internal/router"
	"github.com/Mecho90/BuildingManagement/frontend/internal/setup"
	"github.com/Mecho90/BuildingManagement/shared/config"
	"github.com/Mecho90/BuildingManagement/shared/logger"
)

const (
	defaultAddr = ":8081"
	// Attachment uploads stream through this process to the backend, so both
	// timeouts are sized for multipart bodies rather than page loads.
	readTimeout  = 60 * time.Second
	writeTimeout = 60 * time.Second
)

func main() {
	var configFolder string
	flag.StringVar(&configFolder, "config_folder", "frontend/config", "path to folder with configs")
	flag.Parse()

	cfg := config.MustLoad(configFolder)
	logger.Initialize(cfg.Public.LogLevel, cfg.Public.LogJSON)

	deps, err := setup.SetupDependencies(cfg)
	if err != nil {
		log.Fatal(err)
	}

	server := configureServer(router.New(deps), cfg.Public.WebAddr)
	logger.Log.Info("web server starting", "addr", server.Addr)
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
