/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: main.go
Description: Command-line interface for the compat collector. Wires cobra commands and
flags into viper keys; the commands package does the work.
*/

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kleascm/compat-collector/cmd/collector/commands"
)

func main() {
	// Create root command
	rootCmd := &cobra.Command{
		Use:   "compat-collector",
		Short: "Compat Collector - browser support inference and curated data updates",
		Long: `Compat Collector turns raw feature-detection reports, collected per browser and
version, into version-ranged support statements and merges them into a curated
browser compatibility tree, touching only what the evidence clearly supports.`,
		Version:       "1.0.0",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Add persistent flags
	rootCmd.PersistentFlags().String("config", "", "Configuration file path")
	rootCmd.PersistentFlags().String("log-level", "info", "Logging level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "custom", "Log format (text, json, custom)")
	rootCmd.PersistentFlags().Bool("json-logs", false, "Use JSON log format")
	rootCmd.PersistentFlags().String("log-dir", "", "Log output directory (empty logs to stderr only)")
	rootCmd.PersistentFlags().Int("log-max-files", 10, "Maximum number of log files to keep")

	// Add pipeline flags
	rootCmd.PersistentFlags().String("bcd-dir", "", "Root of the curated compatibility tree (required)")
	rootCmd.PersistentFlags().StringSlice("category", []string{}, "Tree categories to merge (default: api, css, html, http, javascript, mathml, svg, webassembly)")
	rootCmd.PersistentFlags().String("path", "", "Feature path glob, e.g. api.Widget.*")
	rootCmd.PersistentFlags().StringSlice("browser", []string{}, "Browser IDs to merge")
	rootCmd.PersistentFlags().String("release", "", "Only merge statements starting or ending at this release")
	rootCmd.PersistentFlags().Bool("exact-only", false, "Skip statements with uncertain version ranges")
	rootCmd.PersistentFlags().String("overrides", "", "Override list (JSON or YAML)")
	rootCmd.PersistentFlags().Int("workers", 4, "Number of parallel report and file workers")

	// Bind flags to viper
	for key, flag := range map[string]string{
		"config":        "config",
		"log_level":     "log-level",
		"log_format":    "log-format",
		"json_logs":     "json-logs",
		"log_dir":       "log-dir",
		"log_max_files": "log-max-files",
		"bcd_dir":       "bcd-dir",
		"category":      "category",
		"path":          "path",
		"browser":       "browser",
		"release":       "release",
		"exact_only":    "exact-only",
		"overrides":     "overrides",
		"workers":       "workers",
	} {
		viper.BindPFlag(key, rootCmd.PersistentFlags().Lookup(flag))
	}

	// Add update command
	updateCmd := &cobra.Command{
		Use:   "update [reports...]",
		Short: "Merge collected reports into the curated tree",
		Long: `Load every report, build the support matrix, apply overrides and merge the
inferred statements into the curated files of the selected categories. Only files
that actually change are written back.`,
		RunE: commands.PerformUpdate,
	}
	updateCmd.Flags().Bool("dry-run", false, "Merge without writing any file")
	updateCmd.Flags().String("summary-dir", "", "Directory for the JSON run summary")
	viper.BindPFlag("dry_run", updateCmd.Flags().Lookup("dry-run"))
	viper.BindPFlag("summary_dir", updateCmd.Flags().Lookup("summary-dir"))
	rootCmd.AddCommand(updateCmd)

	// Add infer command
	inferCmd := &cobra.Command{
		Use:   "infer [reports...]",
		Short: "Show the support matrix and inferred statements of one feature",
		Long: `Build the support matrix from the reports and print, for every browser, the
per-version results and the statements inferred from them. Nothing is written.`,
		RunE: commands.PerformInference,
	}
	inferCmd.Flags().String("feature", "", "Dotted feature path, e.g. api.Widget.draw (required)")
	viper.BindPFlag("feature", inferCmd.Flags().Lookup("feature"))
	inferCmd.MarkFlagRequired("feature")
	rootCmd.AddCommand(inferCmd)

	// Add check command for built-in self-checks
	rootCmd.AddCommand(&cobra.Command{
		Use:   "check [reports...]",
		Short: "Validate configuration, curated tree, release data and reports",
		RunE:  commands.PerformSelfCheck,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Execute root command
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
