package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/snapdb/snapdb/internal/config"
	"github.com/snapdb/snapdb/internal/driver"
	"github.com/snapdb/snapdb/internal/monitor"
	"github.com/snapdb/snapdb/pkg"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

type cliOptions struct {
	configPath string
	dbPath     string
}

func (o *cliOptions) open() (config.Config, *driver.Driver, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return cfg, nil, err
	}
	if o.dbPath != "" {
		cfg.Path = o.dbPath
	}
	if cfg.Debug {
		pkg.SetLogLevel(pkg.LogLevelDebug)
	}
	if err := cfg.EnsureDirs(); err != nil {
		return cfg, nil, err
	}

	collector := monitor.NewCollector(prometheus.NewRegistry())
	db, err := driver.New(cfg.Path,
		driver.WithCacheCapacity(cfg.CacheCapacity),
		driver.WithInterceptors(monitor.Logging(pkg.Logger()), collector.Interceptor()),
	)
	return cfg, db, err
}

func newRootCmd() *cobra.Command {
	opts := &cliOptions{}

	root := &cobra.Command{
		Use:           "snapdb",
		Short:         "Embedded JSON table store",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to yaml config file")
	root.PersistentFlags().StringVar(&opts.dbPath, "db", "", "database path (overrides config)")

	root.AddCommand(newBackupCmd(opts))
	root.AddCommand(newRestoreCmd(opts))
	root.AddCommand(newStatsCmd(opts))
	root.AddCommand(newHealthCmd(opts))
	return root
}

func newBackupCmd(opts *cliOptions) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Write a backup of the database",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, db, err := opts.open()
			if err != nil {
				return err
			}
			if out == "" {
				out = filepath.Join(cfg.BackupDir, fmt.Sprintf("backup_%d.json", time.Now().Unix()))
			}
			if err := db.Backup(out); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Backup created:", out)
			return nil
		},
	}
	cmd.Flags().StringVar(&out, "path", "", "backup file path")
	return cmd
}

func newRestoreCmd(opts *cliOptions) *cobra.Command {
	var in string
	cmd := &cobra.Command{
		Use:   "restore",
		Short: "Replace the database with a backup",
		RunE: func(cmd *cobra.Command, args []string) error {
			if in == "" {
				return fmt.Errorf("--path is required for restore")
			}
			_, db, err := opts.open()
			if err != nil {
				return err
			}
			if err := db.Restore(in); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Database restored")
			return nil
		},
	}
	cmd.Flags().StringVar(&in, "path", "", "backup file path")
	return cmd
}

func newStatsCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print per-table record counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, db, err := opts.open()
			if err != nil {
				return err
			}
			stats, err := db.Stats()
			if err != nil {
				return err
			}
			return json.NewEncoder(cmd.OutOrStdout()).Encode(stats)
		},
	}
}

func newHealthCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check database file health",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, db, err := opts.open()
			if err != nil {
				return err
			}
			report := monitor.Health(db)
			if err := json.NewEncoder(cmd.OutOrStdout()).Encode(report); err != nil {
				return err
			}
			if report.Status != monitor.StatusHealthy {
				return fmt.Errorf("database is %s", report.Status)
			}
			return nil
		},
	}
}
