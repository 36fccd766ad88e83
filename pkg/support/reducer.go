/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: reducer.go
Description: Tri-state reduction of one report. Every feature may be observed once per
exposure context; the observations collapse into one verdict per feature path.
*/

package support

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrEmptyReport is returned for a report without any observation
var ErrEmptyReport = errors.New("report has no results")

// SupportMap is the reduction of one report: feature path to verdict
type SupportMap map[string]TriState

// ParentPath returns the feature path with its last dotted segment removed
func ParentPath(path string) string {
	i := strings.LastIndex(path, ".")
	if i < 0 {
		return ""
	}
	return path[:i]
}

// BuildSupportMap reduces a report to one verdict per feature.
//
// An unknown feature whose parent reduced to unsupported becomes unsupported:
// a member cannot be supported when its owner is absent. Features are reduced
// in lexical order so a parent is always settled before its children; this
// is a best-effort refinement and not relied on for correctness.
func BuildSupportMap(report *Report) (SupportMap, error) {
	grouped := make(map[string][]TriState)
	count := 0
	for url, observations := range report.Results {
		for _, obs := range observations {
			if !obs.Result.Valid() {
				return nil, fmt.Errorf("%w: %s for %s on %s", ErrInvalidVerdict, obs.Result, obs.Name, url)
			}
			grouped[obs.Name] = append(grouped[obs.Name], obs.Result)
			count++
		}
	}

	if count == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyReport, report.UserAgent)
	}

	names := make([]string, 0, len(grouped))
	for name := range grouped {
		names = append(names, name)
	}
	sort.Strings(names)

	supportMap := make(SupportMap, len(names))
	for _, name := range names {
		verdict := Reduce(grouped[name])
		if verdict == Unknown {
			if parent, ok := supportMap[ParentPath(name)]; ok && parent == Unsupported {
				verdict = Unsupported
			}
		}
		supportMap[name] = verdict
	}

	return supportMap, nil
}
