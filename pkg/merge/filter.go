/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: filter.go
Description: Merge filters restricting which features, browsers and release boundaries
a merge is allowed to touch.
*/

package merge

import (
	"fmt"
	"path"

	"github.com/kleascm/compat-collector/pkg/inference"
)

// Filter restricts a merge. Zero values match everything.
type Filter struct {
	// Path is a glob over dotted feature paths, e.g. "api.Widget.*"
	Path string
	// Browsers limits the merge to these browser IDs
	Browsers []string
	// Release requires the inferred statement to start or end at this version
	Release string
	// ExactOnly skips inferred statements carrying an uncertainty range
	ExactOnly bool
}

// NewFilter builds a filter, rejecting malformed path patterns
func NewFilter(pattern string, browserIDs []string, release string, exactOnly bool) (Filter, error) {
	if pattern != "" {
		if _, err := path.Match(pattern, ""); err != nil {
			return Filter{}, fmt.Errorf("invalid path filter %q: %w", pattern, err)
		}
	}
	return Filter{
		Path:      pattern,
		Browsers:  append([]string(nil), browserIDs...),
		Release:   release,
		ExactOnly: exactOnly,
	}, nil
}

func (f Filter) matchPath(featurePath string) bool {
	if f.Path == "" {
		return true
	}
	ok, err := path.Match(f.Path, featurePath)
	return err == nil && ok
}

func (f Filter) matchBrowser(browserID string) bool {
	if len(f.Browsers) == 0 {
		return true
	}
	for _, id := range f.Browsers {
		if id == browserID {
			return true
		}
	}
	return false
}

// matchStatement applies the release and exactness restrictions
func (f Filter) matchStatement(s inference.Statement) (bool, string) {
	if f.Release != "" && !s.Matches(f.Release) {
		return false, "release filter"
	}
	if f.ExactOnly && s.IsRanged() {
		return false, "inexact range"
	}
	return true, ""
}
