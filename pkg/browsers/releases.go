/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: releases.go
Description: Browser release database read from the curated tree's browsers/*.json files.
Only releases whose status is "current" or "retired" are known, i.e. testable; beta,
nightly and planned releases never seed a support matrix column.
*/

package browsers

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/kleascm/compat-collector/pkg/versions"
)

// ErrUnknownBrowser is returned when a browser ID is missing from the database
var ErrUnknownBrowser = errors.New("unknown browser")

// Release statuses
const (
	StatusCurrent = "current"
	StatusRetired = "retired"
	StatusBeta    = "beta"
	StatusNightly = "nightly"
	StatusPlanned = "planned"
)

// Release describes one browser release
type Release struct {
	Status        string `json:"status"`
	ReleaseDate   string `json:"release_date,omitempty"`
	Engine        string `json:"engine,omitempty"`
	EngineVersion string `json:"engine_version,omitempty"`
}

// Known reports whether the release is testable
func (r *Release) Known() bool {
	return r.Status == StatusCurrent || r.Status == StatusRetired
}

// Browser describes one browser and its releases
type Browser struct {
	ID       string              `json:"-"`
	Name     string              `json:"name"`
	Type     string              `json:"type,omitempty"`
	Upstream string              `json:"upstream,omitempty"`
	Releases map[string]*Release `json:"releases"`
}

// KnownReleases returns the versions of all known releases, oldest first
func (b *Browser) KnownReleases() []string {
	out := make([]string, 0, len(b.Releases))
	for version, release := range b.Releases {
		if release.Known() {
			out = append(out, version)
		}
	}
	versions.Sort(out)
	return out
}

// HasKnownRelease reports whether version is a known release
func (b *Browser) HasKnownRelease(version string) bool {
	release, ok := b.Releases[version]
	return ok && release.Known()
}

// Database maps browser IDs to browsers
type Database map[string]*Browser

// Browser returns the browser with the given ID
func (db Database) Browser(id string) (*Browser, error) {
	b, ok := db[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownBrowser, id)
	}
	return b, nil
}

// KnownReleases returns the known release versions of a browser, oldest first
func (db Database) KnownReleases(id string) []string {
	b, ok := db[id]
	if !ok {
		return nil
	}
	return b.KnownReleases()
}

// IDs returns all browser IDs in lexical order
func (db Database) IDs() []string {
	ids := make([]string, 0, len(db))
	for id := range db {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Add decodes one browsers/*.json file into the database
func (db Database) Add(data []byte) error {
	var file struct {
		Browsers map[string]*Browser `json:"browsers"`
	}
	if err := json.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("failed to decode browser data: %w", err)
	}
	for id, b := range file.Browsers {
		if b.Releases == nil {
			b.Releases = make(map[string]*Release)
		}
		b.ID = id
		db[id] = b
	}
	return nil
}

// ParseDatabase decodes browser files into a new database
func ParseDatabase(files ...[]byte) (Database, error) {
	db := make(Database)
	for _, data := range files {
		if err := db.Add(data); err != nil {
			return nil, err
		}
	}
	return db, nil
}
