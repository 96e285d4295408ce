package main

import (
	"flag"
	"log"

	"coda-dashboard/internal/app"
)

func main() {
	settingsPath := flag.String("settings", "", "path to settings.json (default: user config dir)")
	flag.Parse()

	cfg := app.DefaultAppConfig()
	cfg.SettingsPath = *settingsPath

	application, err := app.New(cfg)
	if err != nil {
		// Setup failed; the run loop is never entered.
		log.Fatalf("application setup failed: %v", err)
	}

	if err := application.Run(); err != nil {
		log.Fatalf("error while running dashboard application: %v", err)
	}
}
