/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: update.go
Description: Update command implementation. Runs the full collector pipeline and lists
every curated file it touched.
*/

package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// PerformUpdate merges collected reports into the curated tree
func PerformUpdate(cmd *cobra.Command, args []string) error {
	fmt.Println("🧭 Compat Collector - Update")
	fmt.Println("============================")
	fmt.Println()

	c, logger, err := newCollector(args)
	if err != nil {
		return err
	}
	defer logger.Close()

	summary, err := c.Run(cmd.Context())
	if err != nil {
		return fmt.Errorf("update failed: %w", err)
	}

	for _, file := range summary.Files {
		switch {
		case file.Written:
			fmt.Printf("✏️  updated    %s\n", file.Path)
		case file.Modified:
			fmt.Printf("📝 would update %s\n", file.Path)
		}
	}

	fmt.Println()
	fmt.Printf("📊 Reports: %d used, %d skipped\n", summary.Reports, summary.SkippedReports)
	fmt.Printf("📁 Files: %d checked, %d changed\n", len(summary.Files), summary.ModifiedFiles())
	if summary.DryRun {
		fmt.Println("🔒 Dry run: no files were written")
	}
	if summary.SummaryFile != "" {
		fmt.Printf("🧾 Summary: %s\n", summary.SummaryFile)
	}

	return nil
}
