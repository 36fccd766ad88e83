/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: overrides.go
Description: Manual overrides of matrix cells. An override names a feature, a browser,
a version spec ("83", "*" or "83-85") and a forced verdict; overrides are applied in
listed order after all reports are folded and always win over report data.
*/

package matrix

import (
	"errors"
	"fmt"
	"strings"

	"github.com/kleascm/compat-collector/pkg/support"
	"github.com/kleascm/compat-collector/pkg/versions"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// ErrInvalidOverride is returned for a malformed override entry
var ErrInvalidOverride = errors.New("invalid override")

// Wildcard selects every known version of a column
const Wildcard = "*"

// Override forces the verdict of one or more cells
type Override struct {
	Path    string
	Browser string
	Version string // exact version, "*" or an inclusive "a-b" range
	Verdict support.TriState
}

// Selects reports whether the override's version spec covers version
func (o Override) Selects(version string) bool {
	switch {
	case o.Version == Wildcard:
		return true
	case strings.Contains(o.Version, "-"):
		lower, upper, _ := strings.Cut(o.Version, "-")
		return versions.InRange(version, lower, upper)
	default:
		return version == o.Version
	}
}

// UnmarshalYAML decodes a [path, browser, versionSpec, verdict] tuple.
// JSON override files decode through the same path.
func (o *Override) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.SequenceNode || len(node.Content) != 4 {
		return fmt.Errorf("%w at line %d: want [path, browser, version, result]", ErrInvalidOverride, node.Line)
	}

	fields := make([]string, 3)
	for i := range fields {
		item := node.Content[i]
		if item.Kind != yaml.ScalarNode || item.Value == "" {
			return fmt.Errorf("%w at line %d: field %d must be a non-empty string", ErrInvalidOverride, item.Line, i)
		}
		fields[i] = item.Value
	}

	verdict, err := parseVerdict(node.Content[3])
	if err != nil {
		return err
	}

	o.Path, o.Browser, o.Version, o.Verdict = fields[0], fields[1], fields[2], verdict
	return o.validate()
}

func parseVerdict(node *yaml.Node) (support.TriState, error) {
	if node.Kind == yaml.ScalarNode {
		switch node.Tag {
		case "!!null":
			return support.Unknown, nil
		case "!!bool":
			var b bool
			if err := node.Decode(&b); err != nil {
				return support.Unknown, err
			}
			return support.FromBool(b), nil
		}
	}
	return support.Unknown, fmt.Errorf("%w at line %d: result must be true, false or null", support.ErrInvalidVerdict, node.Line)
}

func (o Override) validate() error {
	if o.Version == Wildcard {
		return nil
	}
	if lower, upper, ok := strings.Cut(o.Version, "-"); ok {
		if lower == "" || upper == "" {
			return fmt.Errorf("%w: malformed range %q", ErrInvalidOverride, o.Version)
		}
		if versions.Compare(lower, upper) > 0 {
			return fmt.Errorf("%w: range %q is reversed", ErrInvalidOverride, o.Version)
		}
	}
	return nil
}

// ParseOverrides decodes an override list from JSON or YAML
func ParseOverrides(data []byte) ([]Override, error) {
	var overrides []Override
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return nil, fmt.Errorf("failed to parse overrides: %w", err)
	}
	return overrides, nil
}

// ApplyOverrides applies overrides in order. Overrides only touch columns the
// reports created, and only versions known to that column.
func ApplyOverrides(m Matrix, overrides []Override, logger logrus.FieldLogger) {
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	for _, o := range overrides {
		column, ok := m.Column(o.Path, o.Browser)
		if !ok {
			logger.WithFields(logrus.Fields{
				"path":    o.Path,
				"browser": o.Browser,
			}).Debug("No matrix column for override")
			continue
		}

		applied := 0
		for version := range column {
			if o.Selects(version) {
				column[version] = o.Verdict
				applied++
			}
		}

		if applied == 0 {
			logger.WithFields(logrus.Fields{
				"path":    o.Path,
				"browser": o.Browser,
				"version": o.Version,
			}).Debug("Override matched no known version")
		}
	}
}
