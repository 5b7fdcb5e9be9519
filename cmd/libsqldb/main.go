// Package main contains the cli implementation of the tool. It uses cobra
// package for cli tool implementation. The tool is a thin operational
// surface over the driver: ping a configured database, run one statement,
// force a replica sync, or apply migrations.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"libsqldb"
	"libsqldb/internal/output"
	"libsqldb/migrator"
)

func main() {
	var (
		configPath     string
		database       string
		authToken      string
		syncURL        string
		encryptionKey  string
		localFile      string
		isolationLevel string
		timeout        time.Duration
	)

	rootCmd := &cobra.Command{
		Use:   "libsqldb",
		Short: "libSQL/Turso database tool: ping, query, sync, and migrate",
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "TOML settings file")
	rootCmd.PersistentFlags().StringVarP(&database, "database", "d", "", "Database name: file path, :memory:, or libsql:// URL")
	rootCmd.PersistentFlags().StringVar(&authToken, "auth-token", "", "Bearer token for remote access")
	rootCmd.PersistentFlags().StringVar(&syncURL, "sync-url", "", "Remote URL to sync an embedded replica from")
	rootCmd.PersistentFlags().StringVar(&encryptionKey, "encryption-key", "", "At-rest encryption key")
	rootCmd.PersistentFlags().StringVar(&localFile, "local-file", "", "Replica file path when syncing")
	rootCmd.PersistentFlags().StringVar(&isolationLevel, "isolation-level", "", "Transaction mode: DEFERRED, IMMEDIATE, or EXCLUSIVE")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 0, "Connection/busy timeout")

	buildConfig := func() (libsqldb.Config, error) {
		cfg := libsqldb.Config{}
		if configPath != "" {
			loaded, err := libsqldb.LoadConfig(configPath)
			if err != nil {
				return libsqldb.Config{}, err
			}
			cfg = loaded
		} else {
			cfg = libsqldb.ApplyEnv(cfg)
		}
		// Flags override the settings file.
		if database != "" {
			cfg.Name = database
		}
		if authToken != "" {
			cfg.AuthToken = authToken
		}
		if syncURL != "" {
			cfg.SyncURL = syncURL
		}
		if encryptionKey != "" {
			cfg.EncryptionKey = encryptionKey
		}
		if localFile != "" {
			cfg.LocalFile = localFile
		}
		if isolationLevel != "" {
			cfg.IsolationLevel = isolationLevel
		}
		if timeout != 0 {
			cfg.Timeout = timeout
		}
		return cfg, nil
	}

	pingCmd := &cobra.Command{
		Use:   "ping",
		Short: "Open the configured database and verify it answers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := buildConfig()
			if err != nil {
				return err
			}
			db, err := libsqldb.Open(cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			if err := db.PingContext(ctx); err != nil {
				return fmt.Errorf("ping failed: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "ok")
			return nil
		},
	}

	var execFormat string
	execCmd := &cobra.Command{
		Use:   "exec <sql>",
		Short: "Run a single SQL statement and print the result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := buildConfig()
			if err != nil {
				return err
			}
			formatter, err := output.NewFormatter(execFormat)
			if err != nil {
				return err
			}
			db, err := libsqldb.Open(cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			result, err := runStatement(cmd.Context(), db, args[0])
			if err != nil {
				return err
			}
			text, err := formatter.FormatResult(result)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), text)
			return nil
		},
	}
	execCmd.Flags().StringVarP(&execFormat, "format", "f", "table", "Output format: table or json")

	syncCmd := &cobra.Command{
		Use:   "sync",
		Short: "Pull changes from the primary into the embedded replica",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := buildConfig()
			if err != nil {
				return err
			}
			connector, err := libsqldb.NewConnector(cfg)
			if err != nil {
				return err
			}
			defer connector.Close()

			if err := connector.Sync(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "replica synced")
			return nil
		},
	}

	var migrateDown bool
	migrateCmd := &cobra.Command{
		Use:   "migrate <dir>",
		Short: "Apply SQL migrations from a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := buildConfig()
			if err != nil {
				return err
			}
			dir, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}
			db, err := libsqldb.Open(cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			source := "file://" + dir
			if migrateDown {
				if err := migrator.Down(db, source); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "migrations rolled back")
				return nil
			}
			if err := migrator.Up(db, source); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		},
	}
	migrateCmd.Flags().BoolVar(&migrateDown, "down", false, "Roll back all applied migrations instead")

	rootCmd.AddCommand(pingCmd)
	rootCmd.AddCommand(execCmd)
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(migrateCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// returnsRows reports whether a statement produces a result set. PRAGMAs do
// both; treating them as queries shows their output when they have any.
func returnsRows(stmt string) bool {
	fields := strings.Fields(stmt)
	if len(fields) == 0 {
		return false
	}
	switch strings.ToUpper(fields[0]) {
	case "SELECT", "WITH", "PRAGMA", "EXPLAIN", "VALUES":
		return true
	}
	return false
}

// runStatement executes stmt and fetches everything into memory; the tool
// is for one-off statements, not bulk export.
func runStatement(ctx context.Context, db *sql.DB, stmt string) (*output.Result, error) {
	if !returnsRows(stmt) {
		res, err := db.ExecContext(ctx, stmt)
		if err != nil {
			return nil, err
		}
		affected, err := res.RowsAffected()
		if err != nil {
			affected = 0
		}
		return &output.Result{RowsAffected: affected}, nil
	}

	rows, err := db.QueryContext(ctx, stmt)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	result := &output.Result{Columns: columns, Rows: [][]any{}}
	for rows.Next() {
		values := make([]any, len(columns))
		scan := make([]any, len(columns))
		for i := range values {
			scan[i] = &values[i]
		}
		if err := rows.Scan(scan...); err != nil {
			return nil, err
		}
		result.Rows = append(result.Rows, values)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
