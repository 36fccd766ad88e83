/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: reporter.go
Description: Reporter interface and implementations for collector run events.
*/

package collector

import (
	"github.com/kleascm/compat-collector/pkg/logging"
)

// Reporter defines the interface for run event hooks.
// Hooks may be called from several goroutines at once.
type Reporter interface {
	// OnReportSkipped is called when a report file is not usable.
	OnReportSkipped(source, reason string)
	// OnFileMerged is called after a curated file was merged.
	OnFileMerged(result FileResult)
	// OnRunFinished is called once with the final summary.
	OnRunFinished(summary *Summary)
}

// LoggerReporter logs run events through the collector logger.
type LoggerReporter struct {
	logger *logging.Logger
}

// NewLoggerReporter creates a new LoggerReporter.
func NewLoggerReporter(logger *logging.Logger) *LoggerReporter {
	return &LoggerReporter{logger: logger}
}

// OnReportSkipped logs the skipped report.
func (r *LoggerReporter) OnReportSkipped(source, reason string) {
	r.logger.LogReportSkipped(source, reason, nil)
}

// OnFileMerged logs the merge outcome.
func (r *LoggerReporter) OnFileMerged(result FileResult) {
	r.logger.LogFileMerged(result.Path, result.Modified, map[string]interface{}{"written": result.Written})
}

// OnRunFinished logs run statistics.
func (r *LoggerReporter) OnRunFinished(summary *Summary) {
	r.logger.LogStats(summary.Reports, summary.SkippedReports, len(summary.Files), summary.ModifiedFiles(), map[string]interface{}{
		"run_id":   summary.RunID,
		"features": summary.Features,
		"dry_run":  summary.DryRun,
	})
}
