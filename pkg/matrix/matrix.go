/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: matrix.go
Description: Support matrix builder. Folds many reports into feature -> browser ->
version -> verdict, seeding every column with all known releases of the browser so
untested versions read as unknown. Reports are reduced concurrently; the fold into
shared cells is serialized.
*/

package matrix

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/kleascm/compat-collector/pkg/browsers"
	"github.com/kleascm/compat-collector/pkg/support"
	"github.com/kleascm/compat-collector/pkg/versions"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// ErrReleaseMismatch means the identifier resolved a version that the release
// database does not list; the two data sources disagree and the run must stop.
var ErrReleaseMismatch = errors.New("resolved version missing from release data")

// Column maps versions of one browser to the verdict for one feature
type Column map[string]support.TriState

// Versions returns the column's versions, oldest first
func (c Column) Versions() []string {
	vs := make([]string, 0, len(c))
	for v := range c {
		vs = append(vs, v)
	}
	versions.Sort(vs)
	return vs
}

// LatestTested returns the newest version holding a known verdict
func (c Column) LatestTested() (string, bool) {
	vs := c.Versions()
	for i := len(vs) - 1; i >= 0; i-- {
		if c[vs[i]] != support.Unknown {
			return vs[i], true
		}
	}
	return "", false
}

// Clone returns a copy of the column
func (c Column) Clone() Column {
	out := make(Column, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

// Matrix maps feature path -> browser ID -> column
type Matrix map[string]map[string]Column

// Features returns all feature paths in lexical order
func (m Matrix) Features() []string {
	paths := make([]string, 0, len(m))
	for path := range m {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}

// Column returns the column for one feature and browser
func (m Matrix) Column(path, browserID string) (Column, bool) {
	browserMap, ok := m[path]
	if !ok {
		return nil, false
	}
	column, ok := browserMap[browserID]
	return column, ok
}

// Browsers returns the browser IDs with a column for path, in lexical order
func (m Matrix) Browsers(path string) []string {
	ids := make([]string, 0, len(m[path]))
	for id := range m[path] {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Builder accumulates reports into a Matrix
type Builder struct {
	releases   browsers.Database
	identifier browsers.Identifier
	logger     logrus.FieldLogger

	mu      sync.Mutex
	matrix  Matrix
	skipped int
	added   int
}

// NewBuilder creates a builder resolving user agents with identifier
func NewBuilder(releases browsers.Database, identifier browsers.Identifier, logger logrus.FieldLogger) *Builder {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Builder{
		releases:   releases,
		identifier: identifier,
		logger:     logger,
		matrix:     make(Matrix),
	}
}

// AddReport folds one report into the matrix. Reports from unidentified
// browsers or unknown versions are logged and skipped.
func (b *Builder) AddReport(report *support.Report) error {
	identity := b.identifier.Identify(report.UserAgent, b.releases)

	fields := logrus.Fields{"user_agent": report.UserAgent}
	if report.ID != "" {
		fields["report_id"] = report.ID
	}

	switch identity.Status {
	case browsers.Unidentified:
		b.logger.WithFields(fields).Warn("Unable to identify browser of report, skipping")
		b.countSkipped()
		return nil
	case browsers.UnknownVersion:
		fields["browser"] = identity.BrowserID
		fields["version"] = identity.Version
		b.logger.WithFields(fields).Warn("Ignoring report for unknown browser version")
		b.countSkipped()
		return nil
	}

	supportMap, err := support.BuildSupportMap(report)
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	for path, verdict := range supportMap {
		column, err := b.column(path, identity.BrowserID)
		if err != nil {
			return err
		}
		current, ok := column[identity.Version]
		if !ok {
			return fmt.Errorf("%w: %s %s (%s)", ErrReleaseMismatch, identity.BrowserID, identity.Version, report.UserAgent)
		}
		column[identity.Version] = support.Combine(current, verdict)
	}
	b.added++

	return nil
}

// column returns the (path, browser) column, seeding it on first use.
// Callers must hold b.mu.
func (b *Builder) column(path, browserID string) (Column, error) {
	browserMap, ok := b.matrix[path]
	if !ok {
		browserMap = make(map[string]Column)
		b.matrix[path] = browserMap
	}

	column, ok := browserMap[browserID]
	if !ok {
		releases := b.releases.KnownReleases(browserID)
		if releases == nil {
			return nil, fmt.Errorf("%w: %s", browsers.ErrUnknownBrowser, browserID)
		}
		column = make(Column, len(releases))
		for _, version := range releases {
			column[version] = support.Unknown
		}
		browserMap[browserID] = column
	}

	return column, nil
}

func (b *Builder) countSkipped() {
	b.mu.Lock()
	b.skipped++
	b.mu.Unlock()
}

// AddReports folds reports using up to workers goroutines (0 = one per report).
// The first structural error cancels the remaining work.
func (b *Builder) AddReports(ctx context.Context, reports []*support.Report, workers int) error {
	g, gctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}

	for _, report := range reports {
		report := report
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if err := b.AddReport(report); err != nil {
				return fmt.Errorf("report %s: %w", report.Source, err)
			}
			return nil
		})
	}

	return g.Wait()
}

// Matrix returns the accumulated matrix
func (b *Builder) Matrix() Matrix {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.matrix
}

// Stats returns the number of folded and skipped reports
func (b *Builder) Stats() (added, skipped int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.added, b.skipped
}
