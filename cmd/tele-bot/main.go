package main

import (
	"log"

	"github.com/joho/godotenv"

	"github.com/Sambhram1/tele-bot/app"
	"github.com/Sambhram1/tele-bot/core/buildinfo"
	"github.com/Sambhram1/tele-bot/core/cmd"
)

func main() {
	// Local development convenience; a missing .env is not an error.
	_ = godotenv.Load()

	log.Printf("tele-bot %s (%s)", buildinfo.Version, buildinfo.Commit)

	if err := cmd.Run(cmd.Options{
		DefaultConfigPath: "config.yaml",
		LoadConfig:        app.LoadCarrier,
		Bootstrap:         app.Bootstrap,
	}); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
