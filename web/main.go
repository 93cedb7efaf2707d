package main

import (
	"log"
	"os"

	"github.com/caarlos0/env/v11"

	"github.com/df07/go-nerf-renderer/web/server"
)

func main() {
	var config server.Config
	if err := env.Parse(&config); err != nil {
		log.Printf("Failed to parse environment: %v", err)
		os.Exit(1)
	}

	srv, err := server.NewServer(config)
	if err != nil {
		log.Printf("Failed to create server: %v", err)
		os.Exit(1)
	}

	log.Printf("NeRF render server starting on port %d", config.Port)
	log.Printf("Open http://localhost:%d in your browser", config.Port)

	if err := srv.Start(); err != nil {
		log.Printf("Server failed to start: %v", err)
		os.Exit(1)
	}
}
