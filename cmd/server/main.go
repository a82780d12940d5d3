package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"

	"hrms/internal/app/server"
	"hrms/internal/platform/config"
)

func main() {
	// Missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	app, err := server.Bootstrap(context.Background(), cfg)
	if err != nil {
		log.Fatalf("bootstrap failed: %v", err)
	}
	defer app.DB.Close()

	log.Printf("HRMS server listening on %s", cfg.Addr)
	if err := app.Run(); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}
