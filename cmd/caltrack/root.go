package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/ahmetcoskunkizilkaya/caltrack/internal/config"
	"github.com/ahmetcoskunkizilkaya/caltrack/internal/database"
	"github.com/ahmetcoskunkizilkaya/caltrack/internal/logging"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var (
	configPath string
	cfg        *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "caltrack",
	Short: "Calorie and weight tracker",
	Long: `CalTrack logs daily calories in and out plus weight, keeps a health
profile, and works out BMI, BMR, TDEE and a daily calorie target.

COMMANDS:

  caltrack serve                  # Run the web app and JSON API
  caltrack serve --memory         # Run against an in-memory store
  caltrack migrate                # Create or update the database schema
  caltrack admin grant a@b.com    # Give an account the admin role
  caltrack admin list             # Show accounts and entry counts

CONFIGURATION:

  Settings come from the environment (DB_HOST, DB_PASSWORD, JWT_SECRET, ...),
  a .env file, and an optional caltrack.yaml (or --config path).`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		slog.SetDefault(slog.New(logging.Setup(cfg.LogLevel)))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML config file")
	rootCmd.AddCommand(serveCmd, migrateCmd, adminCmd)
}

// openDB connects and migrates; commands that touch the database start here.
func openDB() (*gorm.DB, error) {
	if cfg.DBPassword == "" {
		return nil, errors.New("DB_PASSWORD environment variable is required")
	}
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}
	if err := database.Migrate(db); err != nil {
		_ = database.Close(db)
		return nil, fmt.Errorf("migration failed: %w", err)
	}
	return db, nil
}

func closeDB(db *gorm.DB) {
	if err := database.Close(db); err != nil {
		fmt.Fprintln(os.Stderr, "database close error:", err)
	}
}
