package main

import (
	"fmt"
	"os"

	"nse-insight/internal/cli"
	"nse-insight/internal/config"
	"nse-insight/internal/logging"
)

func main() {
	configDir := ""
	for i, arg := range os.Args {
		if arg == "--config" && i+1 < len(os.Args) {
			configDir = os.Args[i+1]
		}
	}

	cfg, err := config.Load(configDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	logger := logging.NewLogger()

	app, err := cli.NewApp(cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "initialization error: %v\n", err)
		os.Exit(1)
	}
	defer app.Close()

	rootCmd := cli.NewRootCmd(app)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
