// Command trademart runs the TradeMart B2B backend.
//
//	trademart serve          start the HTTP API
//	trademart migrate        apply schema migrations and exit
//	trademart capabilities   print which optional tables the schema has
//
// Configuration comes from the environment, optionally seeded from a .env
// file (see --env-file).
//
// @title                      TradeMart B2B API
// @version                    1.0
// @description                Vendor lead purchasing, marketplace filtering and identity resolution.
// @BasePath                   /api/v1
// @securityDefinitions.apikey BearerAuth
// @in                         header
// @name                       Authorization
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/tbourn/go-trademart-backend/internal/config"
	"github.com/tbourn/go-trademart-backend/internal/repo"
	"github.com/tbourn/go-trademart-backend/internal/sysutil"
)

// version is stamped at build time with -ldflags "-X main.version=...".
var version = "dev"

var (
	// Global flags
	envFile  string
	logLevel string

	// Loaded in PersistentPreRunE
	cfg config.Config
)

var rootCmd = &cobra.Command{
	Use:           "trademart",
	Short:         "TradeMart B2B backend",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", envFile, err)
		}
		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("config: %w", err)
		}
		initLogging(cfg)
		for _, w := range cfg.Warnings {
			log.Warn().Msg(w)
		}
		return nil
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply schema migrations and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB(cfg)
		if err != nil {
			return err
		}
		defer closeDB(db)
		if err := repo.AutoMigrate(db); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		log.Info().Str("driver", cfg.DB.Driver).Msg("schema migrated")
		return nil
	},
}

var capabilitiesCmd = &cobra.Command{
	Use:   "capabilities",
	Short: "Print which optional tables the connected schema provides",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB(cfg)
		if err != nil {
			return err
		}
		defer closeDB(db)
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(repo.DetectCapabilities(cmd.Context(), db))
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file to load before reading the environment")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override LOG_LEVEL (debug|info|warn|error)")

	rootCmd.AddCommand(serveCmd, migrateCmd, capabilitiesCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("trademart failed")
		os.Exit(1)
	}
}

// initLogging configures the global zerolog logger.
func initLogging(c config.Config) {
	zerolog.TimeFieldFormat = time.RFC3339Nano
	sysutil.SetLogLevel(sysutil.FirstNonEmpty(logLevel, c.LogLevel))
	if c.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
	log.Logger = log.With().Str("service", c.OTEL.ServiceName).Str("version", version).Logger()
}

// openDB opens the configured database.
func openDB(c config.Config) (*gorm.DB, error) {
	dsn := c.DB.Path
	if c.DB.Driver == "postgres" {
		dsn = c.DB.URL
	}
	db, err := repo.Open(c.DB.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", c.DB.Driver, err)
	}
	return db, nil
}

func closeDB(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
