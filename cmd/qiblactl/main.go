package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"mihrab.noorapp.org/internal/logging"
)

var (
	// Global flags
	verbose   bool
	logFormat string
	dbPath    string
	timeout   time.Duration

	logger = slog.New(slog.DiscardHandler)
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "qiblactl",
	Short: "Qibla bearing and heading tools",
	Long: `qiblactl computes the qibla bearing for a position or a named place,
normalises raw device orientation readings, manages the places database
and follows the display snapshots a qibla-api server publishes over MQTT.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := slog.LevelWarn
		if verbose {
			level = slog.LevelDebug
		}
		l, err := logging.NewLogger(cmd.ErrOrStderr(), logFormat, level)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		logger = l
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "Log format (text|json)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "qibla_places.db", "Path to the SQLite places database")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "Operation timeout")

	// Bearing flags
	bearingCmd.Flags().StringVar(&bearingPlace, "place", "", "Look the observer up by place name")

	addHeadingFlags(headingCmd)

	// Places subcommands
	placesSearchCmd.Flags().IntVar(&searchLimit, "limit", 10, "Maximum number of places to list")
	placesCmd.AddCommand(placesImportCmd)
	placesCmd.AddCommand(placesSearchCmd)

	// Watch flags
	watchCmd.Flags().StringVar(&watchBroker, "broker", "tcp://localhost:1883", "MQTT broker URL")
	watchCmd.Flags().StringVar(&watchTopic, "topic", "mihrab/display", "Topic the server publishes snapshots to")
	watchCmd.Flags().StringVar(&watchClientID, "client-id", "qiblactl-watch", "MQTT client ID")

	// Add commands to root
	rootCmd.AddCommand(bearingCmd)
	rootCmd.AddCommand(headingCmd)
	rootCmd.AddCommand(placesCmd)
	rootCmd.AddCommand(watchCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
