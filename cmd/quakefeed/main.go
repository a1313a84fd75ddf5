package main

import (
	"log/slog"
	"os"

	"github.com/couchcryptid/quake-feed-service/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		slog.Error("quakefeed failed", "error", err)
		os.Exit(1)
	}
}
