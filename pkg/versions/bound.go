/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: bound.go
Description: Bound models a version_added / version_removed value. The curated JSON
encodes it as null, false, true or a string that is an exact version, "preview" or an
uncertainty range ("82> ≤83", "≤83"); decoding happens here and nowhere else.
*/

package versions

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Kind discriminates the Bound variants
type Kind uint8

const (
	KindUnset       Kind = iota // null or absent
	KindNever                   // false
	KindUnversioned             // true: supported, exact version unknown
	KindExact                   // "83"
	KindRanged                  // "82> ≤83" or "≤83"
	KindPreview                 // "preview"
)

const (
	rangeSeparator = "> ≤"
	atMostPrefix   = "≤"
	// Floor is the lower bound used before any version was observed.
	Floor = "0"
)

// Bound is a version boundary of a support statement
type Bound struct {
	kind    Kind
	lower   string // exclusive; empty when unbounded
	version string // exact version or inclusive upper bound
}

// Unset returns the null bound
func Unset() Bound { return Bound{} }

// Never returns the "not supported" bound
func Never() Bound { return Bound{kind: KindNever} }

// Unversioned returns the "supported, version unknown" bound
func Unversioned() Bound { return Bound{kind: KindUnversioned} }

// Exact returns a bound at exactly version v
func Exact(v string) Bound {
	if v == PreviewVersion {
		return Preview()
	}
	return Bound{kind: KindExact, version: v}
}

// Between returns a bound strictly after lower and no later than upper
func Between(lower, upper string) Bound {
	return Bound{kind: KindRanged, lower: lower, version: upper}
}

// AtMost returns a bound no later than upper
func AtMost(upper string) Bound {
	return Between("", upper)
}

// Preview returns the preview sentinel bound
func Preview() Bound { return Bound{kind: KindPreview, version: PreviewVersion} }

// Kind returns the variant of b
func (b Bound) Kind() Kind { return b.kind }

// IsSet reports whether b carries any value
func (b Bound) IsSet() bool { return b.kind != KindUnset }

// IsNever reports whether b is false
func (b Bound) IsNever() bool { return b.kind == KindNever }

// IsRanged reports whether b carries the uncertainty notation
func (b Bound) IsRanged() bool { return b.kind == KindRanged }

// IsVersioned reports whether b encodes as a string
func (b Bound) IsVersioned() bool {
	return b.kind == KindExact || b.kind == KindRanged || b.kind == KindPreview
}

// Version returns the exact version, the inclusive upper bound of a range, or
// "preview". It is empty for the boolean and null variants.
func (b Bound) Version() string { return b.version }

// Lower returns the exclusive lower bound of a range
func (b Bound) Lower() string { return b.lower }

// WithoutFloor drops the internal "0" lower bound, turning "0> ≤83" into "≤83".
func (b Bound) WithoutFloor() Bound {
	if b.kind == KindRanged && b.lower == Floor {
		return AtMost(b.version)
	}
	return b
}

// Contains reports whether version v falls inside the range (lower, upper].
// Non-ranged bounds contain only their exact version.
func (b Bound) Contains(v string) bool {
	switch b.kind {
	case KindRanged:
		if b.lower != "" && Compare(v, b.lower) <= 0 {
			return false
		}
		return Compare(v, b.version) <= 0
	case KindExact, KindPreview:
		return Compare(v, b.version) == 0
	default:
		return false
	}
}

// Matches reports whether release is the version b names exactly or as its upper bound
func (b Bound) Matches(release string) bool {
	return b.IsVersioned() && b.version == release
}

// Equal reports whether two bounds encode identically
func (b Bound) Equal(o Bound) bool { return b == o }

// String returns the curated-data string form of b
func (b Bound) String() string {
	switch b.kind {
	case KindNever:
		return "false"
	case KindUnversioned:
		return "true"
	case KindExact, KindPreview:
		return b.version
	case KindRanged:
		if b.lower == "" {
			return atMostPrefix + b.version
		}
		return b.lower + rangeSeparator + b.version
	default:
		return "null"
	}
}

// Parse decodes a version string from curated data
func Parse(s string) Bound {
	switch {
	case s == PreviewVersion:
		return Preview()
	case strings.Contains(s, rangeSeparator):
		parts := strings.SplitN(s, rangeSeparator, 2)
		return Between(parts[0], parts[1])
	case strings.HasPrefix(s, atMostPrefix):
		return AtMost(strings.TrimPrefix(s, atMostPrefix))
	default:
		return Exact(s)
	}
}

// MarshalJSON encodes b without HTML escaping so "≤" and ">" stay literal
func (b Bound) MarshalJSON() ([]byte, error) {
	switch b.kind {
	case KindUnset:
		return []byte("null"), nil
	case KindNever:
		return []byte("false"), nil
	case KindUnversioned:
		return []byte("true"), nil
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(b.String()); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// UnmarshalJSON decodes null, booleans and version strings
func (b *Bound) UnmarshalJSON(data []byte) error {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	switch v := raw.(type) {
	case nil:
		*b = Unset()
	case bool:
		if v {
			*b = Unversioned()
		} else {
			*b = Never()
		}
	case string:
		*b = Parse(v)
	default:
		return fmt.Errorf("invalid version value %s", string(data))
	}
	return nil
}
