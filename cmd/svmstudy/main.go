package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/thalesfsp/svmstudy/internal/config"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Error: %v\n", err)
	}

	if err := newRootCmd(&cfg).Execute(); err != nil {
		os.Exit(1)
	}
}
