/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: collector.go
Description: Batch entry point of the compat collector. Loads release data and reports,
builds and overrides the support matrix, then merges it into every curated file of the
selected categories, writing back only files that changed.
*/

package collector

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/kleascm/compat-collector/pkg/browsers"
	"github.com/kleascm/compat-collector/pkg/compat"
	"github.com/kleascm/compat-collector/pkg/logging"
	"github.com/kleascm/compat-collector/pkg/matrix"
	"github.com/kleascm/compat-collector/pkg/merge"
	"github.com/kleascm/compat-collector/pkg/mirror"
	"github.com/kleascm/compat-collector/pkg/store"
	"github.com/kleascm/compat-collector/pkg/support"
	"github.com/kleascm/compat-collector/pkg/utils"
)

// FileResult is the merge outcome of one curated file
type FileResult struct {
	Path     string `json:"path"`
	Modified bool   `json:"modified"`
	Written  bool   `json:"written"`
}

// Summary describes a finished run
type Summary struct {
	RunID          string       `json:"run_id"`
	StartedAt      time.Time    `json:"started_at"`
	FinishedAt     time.Time    `json:"finished_at"`
	DryRun         bool         `json:"dry_run"`
	Reports        int          `json:"reports"`         // Reports folded into the matrix
	SkippedReports int          `json:"skipped_reports"` // Unusable files and unidentified browsers
	Features       int          `json:"features"`
	Files          []FileResult `json:"files"`

	// SummaryFile is where the summary was written, if anywhere
	SummaryFile string `json:"-"`
}

// ModifiedFiles counts files the merge changed
func (s *Summary) ModifiedFiles() int {
	n := 0
	for _, f := range s.Files {
		if f.Modified {
			n++
		}
	}
	return n
}

// Collector runs the load → build → override → merge → write pipeline
type Collector struct {
	config     *Config
	store      *store.Store
	identifier browsers.Identifier
	logger     *logging.Logger
	reporters  []Reporter
}

// New creates a collector. A nil logger uses the default logging configuration.
func New(config *Config, logger *logging.Logger) (*Collector, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid collector config: %w", err)
	}
	if logger == nil {
		var err error
		if logger, err = logging.NewLogger(nil); err != nil {
			return nil, err
		}
	}

	return &Collector{
		config:     config,
		store:      store.New(),
		identifier: browsers.NewUserAgentIdentifier(),
		logger:     logger,
		reporters:  []Reporter{NewLoggerReporter(logger)},
	}, nil
}

// Config returns the run configuration
func (c *Collector) Config() *Config {
	return c.config
}

// SetStore replaces the storage backend
func (c *Collector) SetStore(st *store.Store) {
	c.store = st
}

// SetIdentifier replaces the user agent identifier
func (c *Collector) SetIdentifier(identifier browsers.Identifier) {
	c.identifier = identifier
}

// AddReporter registers a reporter for run events
func (c *Collector) AddReporter(r Reporter) {
	c.reporters = append(c.reporters, r)
}

func (c *Collector) log() logrus.FieldLogger {
	return c.logger.GetLogger()
}

// LoadReleases reads the release database from the tree's browsers directory
func (c *Collector) LoadReleases(ctx context.Context) (browsers.Database, error) {
	files, err := c.store.ListJSON(ctx, store.Join(c.config.BCDDir, BrowsersCategory))
	if err != nil {
		return nil, fmt.Errorf("failed to list release data: %w", err)
	}

	db := make(browsers.Database)
	for _, location := range files {
		data, err := c.store.Read(ctx, location)
		if err != nil {
			return nil, err
		}
		if err := db.Add(data); err != nil {
			return nil, fmt.Errorf("%s: %w", location, err)
		}
	}

	c.log().WithField("browsers", len(db)).Debug("Release data loaded")
	return db, nil
}

// LoadReports reads every configured report. Files that are not reports are
// skipped and counted; reports with corrupt verdicts abort the load.
func (c *Collector) LoadReports(ctx context.Context) ([]*support.Report, int, error) {
	var locations []string
	seen := make(map[string]bool)
	for _, root := range c.config.Reports {
		files, err := c.store.ListJSON(ctx, root)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to list reports: %w", err)
		}
		for _, f := range files {
			if !seen[f] {
				seen[f] = true
				locations = append(locations, f)
			}
		}
	}

	slots := make([]*support.Report, len(locations))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.config.Workers)

	for i, location := range locations {
		i, location := i, location
		g.Go(func() error {
			data, err := c.store.Read(gctx, location)
			if err != nil {
				return err
			}
			report, err := support.ParseReport(data)
			if errors.Is(err, support.ErrMalformedReport) {
				for _, r := range c.reporters {
					r.OnReportSkipped(location, err.Error())
				}
				return nil
			}
			if err != nil {
				return fmt.Errorf("%s: %w", location, err)
			}
			report.ID = uuid.NewString()
			report.Source = location
			slots[i] = report
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}

	reports := make([]*support.Report, 0, len(slots))
	for _, r := range slots {
		if r != nil {
			reports = append(reports, r)
		}
	}
	return reports, len(slots) - len(reports), nil
}

// BuildMatrix folds reports into a support matrix and applies the configured
// overrides. It returns the number of reports the builder skipped.
func (c *Collector) BuildMatrix(ctx context.Context, db browsers.Database, reports []*support.Report) (matrix.Matrix, int, error) {
	builder := matrix.NewBuilder(db, c.identifier, c.log())
	if err := builder.AddReports(ctx, reports, c.config.Workers); err != nil {
		return nil, 0, err
	}
	m := builder.Matrix()
	_, skipped := builder.Stats()

	if c.config.Overrides != "" {
		data, err := c.store.Read(ctx, c.config.Overrides)
		if err != nil {
			return nil, 0, err
		}
		overrides, err := matrix.ParseOverrides(data)
		if err != nil {
			return nil, 0, fmt.Errorf("%s: %w", c.config.Overrides, err)
		}
		matrix.ApplyOverrides(m, overrides, c.log())
		c.log().WithField("overrides", len(overrides)).Debug("Overrides applied")
	}

	return m, skipped, nil
}

// CuratedFiles lists the curated files of the configured categories.
// Categories missing from the tree are ignored.
func (c *Collector) CuratedFiles(ctx context.Context) ([]string, error) {
	var files []string
	for _, category := range c.config.categories() {
		location := store.Join(c.config.BCDDir, category)
		exists, err := c.store.Exists(ctx, location)
		if err != nil {
			return nil, err
		}
		if !exists {
			c.log().WithField("category", category).Debug("Category not present in tree")
			continue
		}
		listed, err := c.store.ListJSON(ctx, location)
		if err != nil {
			return nil, err
		}
		files = append(files, listed...)
	}
	return files, nil
}

// Run executes a full collector run
func (c *Collector) Run(ctx context.Context) (*Summary, error) {
	summary := &Summary{
		RunID:     uuid.NewString(),
		StartedAt: time.Now(),
		DryRun:    c.config.DryRun,
	}

	filter, err := c.config.Filter()
	if err != nil {
		return nil, err
	}

	db, err := c.LoadReleases(ctx)
	if err != nil {
		return nil, err
	}

	reports, unusable, err := c.LoadReports(ctx)
	if err != nil {
		return nil, err
	}

	m, skipped, err := c.BuildMatrix(ctx, db, reports)
	if err != nil {
		return nil, err
	}
	summary.Reports = len(reports) - skipped
	summary.SkippedReports = unusable + skipped
	summary.Features = len(m)

	files, err := c.CuratedFiles(ctx)
	if err != nil {
		return nil, err
	}

	merger := merge.NewMerger(mirror.New(db), c.log())
	results, err := c.mergeFiles(ctx, files, m, merger, filter)
	if err != nil {
		return nil, err
	}
	summary.Files = results
	summary.FinishedAt = time.Now()

	if c.config.SummaryDir != "" {
		location, err := utils.WriteRunSummary(ctx, c.store, c.config.SummaryDir, "update", summary.RunID, summary)
		if err != nil {
			return nil, err
		}
		summary.SummaryFile = location
	}

	for _, r := range c.reporters {
		r.OnRunFinished(summary)
	}
	return summary, nil
}

func (c *Collector) mergeFiles(ctx context.Context, files []string, m matrix.Matrix, merger *merge.Merger, filter merge.Filter) ([]FileResult, error) {
	results := make([]FileResult, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.config.Workers)

	for i, location := range files {
		i, location := i, location
		g.Go(func() error {
			result, err := c.mergeFile(gctx, location, m, merger, filter)
			if err != nil {
				return err
			}
			results[i] = result
			for _, r := range c.reporters {
				r.OnFileMerged(result)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// mergeFile merges one curated file, each goroutine owning its own tree
func (c *Collector) mergeFile(ctx context.Context, location string, m matrix.Matrix, merger *merge.Merger, filter merge.Filter) (FileResult, error) {
	result := FileResult{Path: location}

	data, err := c.store.Read(ctx, location)
	if err != nil {
		return result, err
	}
	tree, err := compat.ParseTree(data)
	if err != nil {
		return result, fmt.Errorf("%s: %w", location, err)
	}

	result.Modified = merger.Merge(tree, m, filter)
	if !result.Modified || c.config.DryRun {
		return result, nil
	}

	out, err := tree.Encode()
	if err != nil {
		return result, fmt.Errorf("%s: %w", location, err)
	}
	if err := c.store.Write(ctx, location, out); err != nil {
		return result, err
	}
	result.Written = true
	return result, nil
}
