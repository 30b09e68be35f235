// Package main is the entry point for the reposcan CLI.
package main

import (
	"github.com/joho/godotenv"

	"github.com/blackwell-systems/reposcan/internal/app"
)

// version is set at build time via ldflags:
//
//	go build -ldflags "-X main.version=1.0.0"
var version = "dev"

func main() {
	// A .env file may carry SCAN_* budget overrides; it is optional.
	_ = godotenv.Load()

	app.SetVersion(version)
	app.Execute()
}
