/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: inference.go
Description: Support statement inference. Walks one matrix column (all versions of one
browser for one feature) in version order and derives the ordered add/remove ranges it
implies. Where untested versions hide the exact transition, the bound is expressed as
"{last known}> ≤{current}" instead of guessing.
*/

package inference

import (
	"github.com/kleascm/compat-collector/pkg/matrix"
	"github.com/kleascm/compat-collector/pkg/support"
	"github.com/kleascm/compat-collector/pkg/versions"
)

// Statement is one inferred support range
type Statement struct {
	VersionAdded   versions.Bound
	VersionRemoved versions.Bound
}

// IsRanged reports whether either bound carries the uncertainty notation
func (s Statement) IsRanged() bool {
	return s.VersionAdded.IsRanged() || s.VersionRemoved.IsRanged()
}

// Matches reports whether release is the added or removed boundary
func (s Statement) Matches(release string) bool {
	return s.VersionAdded.Matches(release) || s.VersionRemoved.Matches(release)
}

// walker carries the state of one column walk
type walker struct {
	statements  []Statement
	lastVersion string
	lastVerdict support.TriState
	sawGap      bool
}

// bound returns the exact version, or an uncertainty range when the walk
// crossed untested versions or the unsupportedToo condition applies.
func (w *walker) bound(version string, unsupportedToo bool) versions.Bound {
	if w.sawGap || (unsupportedToo && w.lastVerdict == support.Unsupported) {
		return versions.Between(w.lastVersion, version)
	}
	return versions.Exact(version)
}

func (w *walker) supported(version string) {
	n := len(w.statements)
	switch {
	case n == 0:
		w.statements = append(w.statements, Statement{VersionAdded: w.bound(version, true)})
	case w.statements[n-1].VersionAdded.IsNever():
		w.statements[n-1].VersionAdded = w.bound(version, false)
	case w.statements[n-1].VersionRemoved.IsSet():
		w.statements = append(w.statements, Statement{VersionAdded: w.bound(version, true)})
	}
}

func (w *walker) unsupported(version string) {
	n := len(w.statements)
	switch {
	case n == 0:
		w.statements = append(w.statements, Statement{VersionAdded: versions.Never()})
	case !w.statements[n-1].VersionAdded.IsNever() && !w.statements[n-1].VersionRemoved.IsSet():
		w.statements[n-1].VersionRemoved = w.bound(version, false)
	}
}

// InferStatements derives the ordered support statements of one column
func InferStatements(column matrix.Column) []Statement {
	w := &walker{lastVersion: versions.Floor, lastVerdict: support.Unknown}

	for _, version := range column.Versions() {
		verdict := column[version]
		switch verdict {
		case support.Supported:
			w.supported(version)
		case support.Unsupported:
			w.unsupported(version)
		default:
			w.sawGap = true
			continue
		}

		w.lastVersion = version
		w.lastVerdict = verdict
		w.sawGap = false
	}

	return w.statements
}
