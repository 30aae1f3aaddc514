// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Command votectl is the operator CLI: it seeds the zone registry and
// prints turnout and results straight from the database.
package main

import (
	"database/sql"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/danielhkuo/samaj-vote/cliparse"
	"github.com/danielhkuo/samaj-vote/db"
	"github.com/danielhkuo/samaj-vote/logging"
)

const programName = "votectl"

var globalFlags = struct {
	databaseURL  string
	databaseType string
	logLevel     string
}{}

// openDB connects using the global flags, falling back to the environment
func openDB(cmd *cobra.Command) (*sql.DB, error) {
	if err := logging.Setup("auto", globalFlags.logLevel); err != nil {
		return nil, err
	}
	if globalFlags.databaseURL == "" {
		return nil, fmt.Errorf("database URL required (use --db or DATABASE_URL env)")
	}
	conn, err := db.Open(cmd.Context(), globalFlags.databaseType, globalFlags.databaseURL)
	if err != nil {
		return nil, err
	}
	if err := db.CreateSchema(conn); err != nil {
		conn.Close()
		return nil, err
	}
	return conn, nil
}

func newRootCommand() *cobra.Command {
	env, err := cliparse.LoadEnv()
	if err != nil {
		env = cliparse.Config{DatabaseType: db.TypePostgres, LogLevel: "info"}
	}

	rootCmd := &cobra.Command{
		Use:           programName,
		Short:         "Operate samaj-vote elections from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&globalFlags.databaseURL, "db", env.DatabaseURL, "database URL (DATABASE_URL)")
	rootCmd.PersistentFlags().StringVar(&globalFlags.databaseType, "db-type", env.DatabaseType, "database type: postgres or sqlite (DATABASE_TYPE)")
	rootCmd.PersistentFlags().StringVar(&globalFlags.logLevel, "log-level", env.LogLevel, "log level")

	rootCmd.AddCommand(
		seedZonesCommand(),
		turnoutCommand(),
		resultsCommand(),
	)
	return rootCmd
}

func main() {
	_ = godotenv.Load()

	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", programName, err)
		os.Exit(1)
	}
}
