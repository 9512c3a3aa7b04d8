package main

import (
	"log/slog"
	"os"

	"github.com/joshuapare/recdb/internal/logging"
)

func main() {
	debugMode := os.Getenv("RECCTL_DEBUG") != ""

	if err := logging.Init(logging.Options{
		Enabled: debugMode,
		Level:   slog.LevelDebug,
	}); err != nil {
		printError("failed to init logging: %v\n", err)
	}

	execute()
}
