/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: config.go
Description: Collector run configuration: where the curated tree and reports live, which
parts of the tree to load and the filters handed to the merge engine.
*/

package collector

import (
	"fmt"

	"github.com/kleascm/compat-collector/pkg/merge"
)

// BrowsersCategory is the tree directory holding release data
const BrowsersCategory = "browsers"

// DefaultCategories are the curated tree directories merged when none are configured
var DefaultCategories = []string{"api", "css", "html", "http", "javascript", "mathml", "svg", "webassembly"}

// Config holds the configuration for a collector run
type Config struct {
	BCDDir     string   `json:"bcd_dir"`     // Root of the curated tree
	Reports    []string `json:"reports"`     // Report files or directories
	Categories []string `json:"categories"`  // Tree directories to merge into
	Path       string   `json:"path"`        // Feature path glob
	Browsers   []string `json:"browsers"`    // Browser IDs to merge
	Release    string   `json:"release"`     // Required added/removed boundary
	ExactOnly  bool     `json:"exact_only"`  // Skip inferred uncertainty ranges
	Overrides  string   `json:"overrides"`   // Override list location, JSON or YAML
	Workers    int      `json:"workers"`     // Parallel report and file workers
	DryRun     bool     `json:"dry_run"`     // Merge without writing files
	SummaryDir string   `json:"summary_dir"` // Where run summaries go; empty disables
}

// DefaultConfig returns the configuration used when none is supplied
func DefaultConfig() *Config {
	return &Config{
		Categories: append([]string(nil), DefaultCategories...),
		Workers:    4,
	}
}

// Validate checks the Config for invalid or missing values.
func (c *Config) Validate() error {
	if c.BCDDir == "" {
		return fmt.Errorf("bcd_dir is required")
	}
	if len(c.Reports) == 0 {
		return fmt.Errorf("at least one report location is required")
	}
	if c.Workers <= 0 {
		return fmt.Errorf("workers must be positive")
	}
	for _, category := range c.Categories {
		if category == BrowsersCategory {
			return fmt.Errorf("category %q holds release data and cannot be merged", category)
		}
	}
	if _, err := c.Filter(); err != nil {
		return err
	}
	return nil
}

// Filter builds the merge filter described by the config
func (c *Config) Filter() (merge.Filter, error) {
	return merge.NewFilter(c.Path, c.Browsers, c.Release, c.ExactOnly)
}

func (c *Config) categories() []string {
	if len(c.Categories) == 0 {
		return DefaultCategories
	}
	return c.Categories
}
