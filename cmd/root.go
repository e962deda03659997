// Package cmd holds the travelmate command line.
package cmd

import (
	"context"
	"fmt"
	"os"

	"travelmate/backend/config"
	"travelmate/backend/database"
	"travelmate/backend/logger"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "travelmate",
	Short: "Travel companion chat backend",
	Long:  `travelmate serves the chat room, direct chat and travel guide API together with the realtime channel.`,
	// 不帶子命令時直接啟動伺服器
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(serveCmd, roomsCmd)
}

// Execute runs the command line and exits non-zero on failure.
func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newLogger(cfg *config.Config) *logger.Logger {
	format := cfg.LogFormat
	if cfg.IsProduction() {
		format = "json"
	}
	return logger.New(logger.Config{Level: cfg.LogLevel, Format: format})
}

func connect(ctx context.Context, cfg *config.Config, log *logger.Logger) (*database.MongoDB, error) {
	db, err := database.ConnectMongoDB(ctx, cfg.MongoDBURI, cfg.DBName)
	if err != nil {
		return nil, fmt.Errorf("connect to MongoDB: %w", err)
	}
	log.WithField("database", cfg.DBName).Info("Connected to MongoDB")
	return db, nil
}
