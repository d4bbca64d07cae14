package main

import (
	"log/slog"

	"github.com/joho/godotenv"

	"estatewatch/cmd"
)

func main() {
	// Load .env file if present, environment wins over file values
	if err := godotenv.Load(); err != nil {
		slog.Debug("No .env file loaded", "error", err)
	}

	cmd.Execute()
}
