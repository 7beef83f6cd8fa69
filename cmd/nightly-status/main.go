// Package main provides the nightly-status command.
// It reports the latest OpenShift nightly build of each release line.
package main

import (
	"errors"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/dperique/nightly-status/internal/cli"
)

func main() {
	// Load .env file when present so NIGHTLY_STATUS_* variables can live there
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Fatalf("Error loading .env file: %v", err)
	}

	app := cli.NewApp()

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
