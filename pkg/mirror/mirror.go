/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: mirror.go
Description: Release-mapping mirror resolver. A downstream browser marked "mirror"
inherits its upstream's statements, with every version translated through the release
database: the upstream release's engine version is looked up and the first downstream
release shipping at least that engine version takes its place.
*/

package mirror

import (
	"errors"
	"fmt"

	"github.com/kleascm/compat-collector/pkg/browsers"
	"github.com/kleascm/compat-collector/pkg/compat"
	"github.com/kleascm/compat-collector/pkg/versions"
)

// maxDepth bounds upstream chains such as webview_android → chrome_android → chrome
const maxDepth = 4

var (
	// ErrNoUpstream is returned for browsers that cannot mirror anything
	ErrNoUpstream = errors.New("no upstream data to mirror")
	// ErrMirrorCycle is returned when upstream links loop
	ErrMirrorCycle = errors.New("mirror chain too deep")
)

// ReleaseMirror resolves mirror entries against a release database
type ReleaseMirror struct {
	releases browsers.Database
}

// New creates a resolver over the given release database
func New(releases browsers.Database) *ReleaseMirror {
	return &ReleaseMirror{releases: releases}
}

// Resolve computes the statements browserID would have if its mirror marker
// were materialized, reading upstream data from snapshot only.
func (m *ReleaseMirror) Resolve(browserID string, snapshot map[string]compat.Entry) ([]compat.Statement, error) {
	return m.resolve(browserID, snapshot, 0)
}

func (m *ReleaseMirror) resolve(browserID string, snapshot map[string]compat.Entry, depth int) ([]compat.Statement, error) {
	if depth > maxDepth {
		return nil, fmt.Errorf("%w at %s", ErrMirrorCycle, browserID)
	}

	browser, err := m.releases.Browser(browserID)
	if err != nil {
		return nil, err
	}
	if browser.Upstream == "" {
		return nil, fmt.Errorf("%w: %s has no upstream browser", ErrNoUpstream, browserID)
	}
	upstream, err := m.releases.Browser(browser.Upstream)
	if err != nil {
		return nil, err
	}

	var source []compat.Statement
	switch entry := snapshot[upstream.ID]; entry.Kind() {
	case compat.EntryMirror:
		source, err = m.resolve(upstream.ID, snapshot, depth+1)
		if err != nil {
			return nil, err
		}
	case compat.EntryAbsent:
		return nil, fmt.Errorf("%w: %s has no data for %s", ErrNoUpstream, browserID, upstream.ID)
	default:
		source = entry.Statements()
	}

	out := make([]compat.Statement, 0, len(source))
	for _, s := range source {
		mapped := s.Clone()

		added, ok := m.mapBound(upstream, browser, s.VersionAdded)
		if !ok {
			added = versions.Never()
		}
		mapped.VersionAdded = added

		removed, ok := m.mapBound(upstream, browser, s.VersionRemoved)
		if !ok || added.IsNever() {
			removed = versions.Unset()
		}
		mapped.VersionRemoved = removed

		out = append(out, mapped)
	}
	return out, nil
}

// mapBound translates a bound from upstream to downstream versions
func (m *ReleaseMirror) mapBound(upstream, downstream *browsers.Browser, b versions.Bound) (versions.Bound, bool) {
	switch b.Kind() {
	case versions.KindExact:
		v, ok := mapVersion(upstream, downstream, b.Version())
		if !ok {
			return versions.Unset(), false
		}
		return versions.Exact(v), true
	case versions.KindRanged:
		upper, ok := mapVersion(upstream, downstream, b.Version())
		if !ok {
			return versions.Unset(), false
		}
		if b.Lower() == "" {
			return versions.AtMost(upper), true
		}
		lower, ok := mapVersion(upstream, downstream, b.Lower())
		if !ok || versions.Compare(lower, upper) >= 0 {
			return versions.AtMost(upper), true
		}
		return versions.Between(lower, upper), true
	default:
		return b, true
	}
}

// mapVersion finds the downstream release matching an upstream release
func mapVersion(upstream, downstream *browsers.Browser, version string) (string, bool) {
	if version == versions.Floor {
		return versions.Floor, true
	}

	release, ok := upstream.Releases[version]
	if !ok {
		return "", false
	}
	if release.Engine == "" || release.EngineVersion == "" {
		if _, ok := downstream.Releases[version]; ok {
			return version, true
		}
		return "", false
	}

	var best, bestEngine string
	for v, r := range downstream.Releases {
		if r.Engine != release.Engine || r.EngineVersion == "" {
			continue
		}
		if versions.Compare(r.EngineVersion, release.EngineVersion) < 0 {
			continue
		}
		if best == "" {
			best, bestEngine = v, r.EngineVersion
			continue
		}
		switch c := versions.Compare(r.EngineVersion, bestEngine); {
		case c < 0, c == 0 && versions.Compare(v, best) < 0:
			best, bestEngine = v, r.EngineVersion
		}
	}
	return best, best != ""
}
