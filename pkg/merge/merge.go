/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: merge.go
Description: Merge engine. Folds inferred support statements into a curated tree, leaving
alone every case it cannot settle with confidence: multi-range histories, several default
statements, closed ranges and downgrades nothing tested actually supports. Mirror entries
are resolved against the feature's support as it was before this merge wrote anything.
*/

package merge

import (
	"github.com/sirupsen/logrus"

	"github.com/kleascm/compat-collector/pkg/compat"
	"github.com/kleascm/compat-collector/pkg/inference"
	"github.com/kleascm/compat-collector/pkg/matrix"
	"github.com/kleascm/compat-collector/pkg/versions"
)

// MirrorResolver turns a mirror marker into concrete statements
type MirrorResolver interface {
	Resolve(browserID string, snapshot map[string]compat.Entry) ([]compat.Statement, error)
}

// Merger merges a support matrix into curated trees. It holds no per-tree
// state and may merge different trees concurrently.
type Merger struct {
	mirror MirrorResolver
	logger logrus.FieldLogger
}

// NewMerger creates a merger
func NewMerger(mirror MirrorResolver, logger logrus.FieldLogger) *Merger {
	return &Merger{mirror: mirror, logger: logger}
}

// Merge updates tree from m and reports whether anything changed
func (mg *Merger) Merge(tree *compat.Tree, m matrix.Matrix, filter Filter) bool {
	modified := false

	for _, featurePath := range m.Features() {
		if !filter.matchPath(featurePath) {
			continue
		}
		record := tree.Find(featurePath)
		if record == nil {
			continue
		}

		support := record.Support()
		snapshot := support.Snapshot()

		for _, browserID := range m.Browsers(featurePath) {
			if !filter.matchBrowser(browserID) {
				continue
			}
			column, _ := m.Column(featurePath, browserID)
			log := mg.logger.WithFields(logrus.Fields{"feature": featurePath, "browser": browserID})

			if mg.mergeBrowser(support, snapshot, browserID, column, filter, log) {
				modified = true
			}
		}
	}

	return modified
}

func (mg *Merger) mergeBrowser(support *compat.Support, snapshot map[string]compat.Entry, browserID string, column matrix.Column, filter Filter, log logrus.FieldLogger) bool {
	inferred := inference.InferStatements(column)
	if len(inferred) != 1 {
		if len(inferred) > 1 {
			log.WithField("statements", len(inferred)).Debug("Skipping multi-range history")
		}
		return false
	}
	statement := inferred[0]
	if ok, reason := filter.matchStatement(statement); !ok {
		log.WithField("reason", reason).Debug("Skipping filtered statement")
		return false
	}

	entry := snapshot[browserID]
	var current []compat.Statement
	if entry.Kind() == compat.EntryMirror {
		resolved, err := mg.mirror.Resolve(browserID, snapshot)
		if err != nil {
			log.WithError(err).Debug("Skipping unresolvable mirror")
			return false
		}
		current = resolved
	} else {
		current = entry.Statements()
	}

	var defaults []int
	for i := range current {
		if current[i].IsDefault() {
			defaults = append(defaults, i)
		}
	}

	var changed bool
	switch len(defaults) {
	case 0:
		if statement.VersionAdded.IsNever() {
			return false
		}
		added := compat.Statement{
			VersionAdded:   statement.VersionAdded.WithoutFloor(),
			VersionRemoved: statement.VersionRemoved,
		}
		current = append([]compat.Statement{added}, current...)
		changed = true
	case 1:
		changed = mg.update(&current[defaults[0]], statement, column, log)
	default:
		log.WithField("defaults", len(defaults)).Debug("Skipping ambiguous default statements")
		return false
	}

	if !changed {
		return false
	}

	if entry.Kind() == compat.EntryMultiple {
		support.Set(browserID, compat.Multiple(current))
	} else {
		support.Set(browserID, compat.FromStatements(current))
	}
	log.WithField("version_added", current[0].VersionAdded.String()).Debug("Support updated")
	return true
}

// update applies an inferred statement to the single default curated
// statement and reports whether it changed
func (mg *Merger) update(curated *compat.Statement, inferred inference.Statement, column matrix.Column, log logrus.FieldLogger) bool {
	if curated.VersionRemoved.IsSet() {
		log.Debug("Skipping statement with recorded removal")
		return false
	}

	if inferred.VersionAdded.IsNever() && curated.VersionAdded.IsVersioned() {
		latest, ok := column.LatestTested()
		if !ok || versions.Compare(latest, curated.VersionAdded.Version()) < 0 {
			log.WithField("version_added", curated.VersionAdded.String()).Debug("Skipping untested downgrade")
			return false
		}
	}

	changed := false
	added := curated.VersionAdded

	switch {
	case inferred.VersionAdded.IsRanged() && curated.VersionAdded.IsVersioned():
		if outsideRange(curated.VersionAdded, inferred.VersionAdded) {
			added = inferred.VersionAdded.WithoutFloor()
		}
	case curated.VersionAdded.IsVersioned() && inferred.VersionAdded.Kind() == versions.KindUnversioned:
		// an exact curated version beats "supported, version unknown"
	default:
		added = inferred.VersionAdded.WithoutFloor()
	}

	if !added.Equal(curated.VersionAdded) {
		curated.VersionAdded = added
		changed = true
	}

	if inferred.VersionRemoved.IsVersioned() && !inferred.VersionRemoved.Equal(curated.VersionRemoved) {
		curated.VersionRemoved = inferred.VersionRemoved
		changed = true
	}

	return changed
}

// outsideRange reports whether the curated version lies outside the
// inferred (lower, upper] range; preview is always outside
func outsideRange(curated, inferred versions.Bound) bool {
	if curated.Kind() == versions.KindPreview {
		return true
	}
	v := curated.Version()
	if lower := inferred.Lower(); lower != "" && versions.Compare(v, lower) <= 0 {
		return true
	}
	return versions.Compare(v, inferred.Version()) > 0
}
