package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/i474232898/weather-forecast-aggregation/internal/config"
)

func main() {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	rootCmd := &cobra.Command{
		Use:   "weather-forecast",
		Short: "Weather forecast aggregator",
		Long:  "Fetches 5-day / 3-hour forecasts, groups them by calendar day and serves them over HTTP, websocket and the command line",
	}

	rootCmd.AddCommand(serveCmd(cfg), forecastCmd(cfg), reverseCmd(cfg))

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
