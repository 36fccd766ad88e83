/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: utils.go
Description: Shared utilities for the collector commands. Provides configuration loading,
logging setup and the mapping from viper keys to a collector configuration.
*/

package commands

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/kleascm/compat-collector/pkg/collector"
	"github.com/kleascm/compat-collector/pkg/logging"
)

// LoadConfig loads configuration from files and environment
func LoadConfig() error {
	// Set config file if specified
	if configFile := viper.GetString("config"); configFile != "" {
		viper.SetConfigFile(configFile)
		if err := viper.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// COLLECTOR_BCD_DIR, COLLECTOR_WORKERS, ...
	viper.SetEnvPrefix("COLLECTOR")
	viper.AutomaticEnv()

	return nil
}

// SetupLogging creates the run logger from the log_* keys
func SetupLogging() (*logging.Logger, error) {
	config := logging.DefaultLoggerConfig()

	if level := viper.GetString("log_level"); level != "" {
		config.Level = logging.LogLevel(level)
	}
	if format := viper.GetString("log_format"); format != "" {
		config.Format = logging.LogFormat(format)
	}
	if viper.GetBool("json_logs") {
		config.Format = logging.LogFormatJSON
	}
	config.OutputDir = viper.GetString("log_dir")
	if maxFiles := viper.GetInt("log_max_files"); maxFiles > 0 {
		config.MaxFiles = maxFiles
	}

	logger, err := logging.NewLogger(config)
	if err != nil {
		return nil, fmt.Errorf("failed to setup logging: %w", err)
	}
	return logger, nil
}

// CollectorConfig builds a collector configuration. Positional report
// arguments take precedence over the reports key.
func CollectorConfig(args []string) (*collector.Config, error) {
	config := collector.DefaultConfig()

	config.BCDDir = viper.GetString("bcd_dir")
	config.Reports = viper.GetStringSlice("reports")
	if len(args) > 0 {
		config.Reports = args
	}
	if categories := viper.GetStringSlice("category"); len(categories) > 0 {
		config.Categories = categories
	}
	config.Path = viper.GetString("path")
	config.Browsers = viper.GetStringSlice("browser")
	config.Release = viper.GetString("release")
	config.ExactOnly = viper.GetBool("exact_only")
	config.Overrides = viper.GetString("overrides")
	if workers := viper.GetInt("workers"); workers > 0 {
		config.Workers = workers
	}
	config.DryRun = viper.GetBool("dry_run")
	config.SummaryDir = viper.GetString("summary_dir")

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// newCollector wires configuration, logging and the collector together
func newCollector(args []string) (*collector.Collector, *logging.Logger, error) {
	if err := LoadConfig(); err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := SetupLogging()
	if err != nil {
		return nil, nil, err
	}

	config, err := CollectorConfig(args)
	if err != nil {
		logger.Close()
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}

	c, err := collector.New(config, logger)
	if err != nil {
		logger.Close()
		return nil, nil, err
	}
	return c, logger, nil
}
