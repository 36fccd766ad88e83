/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: utilities.go
Description: Self-check command for the collector. Validates configuration, the curated
tree layout, release data, report locations and the override list before a run.
*/

package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kleascm/compat-collector/pkg/collector"
	"github.com/kleascm/compat-collector/pkg/matrix"
	"github.com/kleascm/compat-collector/pkg/store"
)

// PerformSelfCheck validates everything a collector run depends on
func PerformSelfCheck(cmd *cobra.Command, args []string) error {
	fmt.Println("🔍 Compat Collector - Self-Check")
	fmt.Println("================================")
	fmt.Println()

	c, logger, err := newCollector(args)
	if err != nil {
		fmt.Printf("🔍 Configuration Validation... ❌ FAILED: %v\n", err)
		return err
	}
	defer logger.Close()

	ctx := cmd.Context()
	st := store.New()

	checks := []struct {
		name     string
		function func() error
	}{
		{"Release Data", func() error { return checkReleaseData(ctx, c) }},
		{"Curated Files", func() error { return checkCuratedFiles(ctx, c) }},
		{"Report Locations", func() error { return checkReports(ctx, c) }},
		{"Overrides", func() error { return checkOverrides(ctx, c, st) }},
	}

	passed := 0
	total := len(checks) + 1
	fmt.Println("🔍 Configuration Validation... ✅ PASSED")
	passed++

	for _, check := range checks {
		fmt.Printf("🔍 %s... ", check.name)
		if err := check.function(); err != nil {
			fmt.Printf("❌ FAILED: %v\n", err)
		} else {
			fmt.Println("✅ PASSED")
			passed++
		}
	}

	fmt.Println()
	fmt.Printf("📊 Results: %d/%d checks passed\n", passed, total)

	if passed == total {
		fmt.Println("✨ All checks passed! Ready to update.")
		return nil
	}
	fmt.Println("⚠️  Some checks failed. Please address the issues before updating.")
	return fmt.Errorf("%d/%d checks failed", total-passed, total)
}

func checkReleaseData(ctx context.Context, c *collector.Collector) error {
	db, err := c.LoadReleases(ctx)
	if err != nil {
		return err
	}
	for _, id := range db.IDs() {
		if len(db.KnownReleases(id)) > 0 {
			return nil
		}
	}
	return fmt.Errorf("no current or retired releases found")
}

func checkCuratedFiles(ctx context.Context, c *collector.Collector) error {
	files, err := c.CuratedFiles(ctx)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no curated files in the selected categories")
	}
	return nil
}

func checkReports(ctx context.Context, c *collector.Collector) error {
	reports, _, err := c.LoadReports(ctx)
	if err != nil {
		return err
	}
	if len(reports) == 0 {
		return fmt.Errorf("no usable reports found")
	}
	return nil
}

func checkOverrides(ctx context.Context, c *collector.Collector, st *store.Store) error {
	location := c.Config().Overrides
	if location == "" {
		return nil
	}
	data, err := st.Read(ctx, location)
	if err != nil {
		return err
	}
	_, err = matrix.ParseOverrides(data)
	return err
}
