/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: inference.go
Description: Support inference command implementation. Prints the support matrix columns
of one feature together with the statements inferred from them, without touching the
curated tree.
*/

package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kleascm/compat-collector/pkg/compat"
	"github.com/kleascm/compat-collector/pkg/inference"
	"github.com/kleascm/compat-collector/pkg/matrix"
)

// PerformInference shows how one feature's statements would be inferred
func PerformInference(cmd *cobra.Command, args []string) error {
	fmt.Println("🧬 Compat Collector - Support Inference")
	fmt.Println("=======================================")
	fmt.Println()

	c, logger, err := newCollector(args)
	if err != nil {
		return err
	}
	defer logger.Close()

	feature := viper.GetString("feature")
	if feature == "" {
		return fmt.Errorf("--feature is required")
	}

	ctx := cmd.Context()
	db, err := c.LoadReleases(ctx)
	if err != nil {
		return err
	}
	reports, unusable, err := c.LoadReports(ctx)
	if err != nil {
		return err
	}
	m, skipped, err := c.BuildMatrix(ctx, db, reports)
	if err != nil {
		return err
	}

	fmt.Printf("🎯 Feature: %s\n", feature)
	fmt.Printf("📥 Reports: %d loaded, %d skipped\n", len(reports)-skipped, unusable+skipped)
	fmt.Println()

	browserIDs := m.Browsers(feature)
	if len(browserIDs) == 0 {
		fmt.Println("📭 No results for this feature.")
		return nil
	}

	for _, browserID := range browserIDs {
		column, _ := m.Column(feature, browserID)
		fmt.Printf("🌐 %s\n", browserID)
		fmt.Printf("   %s\n", formatColumn(column))

		statements := inference.InferStatements(column)
		if len(statements) == 0 {
			fmt.Println("   → no known results")
			continue
		}
		for _, s := range statements {
			out, err := compat.Statement{VersionAdded: s.VersionAdded, VersionRemoved: s.VersionRemoved}.MarshalJSON()
			if err != nil {
				return err
			}
			fmt.Printf("   → %s\n", out)
		}
		if len(statements) > 1 {
			fmt.Println("   ⚠️  multi-range history, update will not merge it")
		}
	}

	return nil
}

func formatColumn(column matrix.Column) string {
	parts := make([]string, 0, len(column))
	for _, version := range column.Versions() {
		parts = append(parts, fmt.Sprintf("%s:%s", version, column[version]))
	}
	return strings.Join(parts, " ")
}
