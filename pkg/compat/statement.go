/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: statement.go
Description: Support statements of the curated database. Only version_added,
version_removed, prefix, alternative_name and flags are interpreted; every other member
(notes, partial_implementation, impl_url...) is carried through unchanged and in place.
*/

package compat

import (
	"encoding/json"
	"fmt"

	"github.com/kleascm/compat-collector/pkg/versions"
)

const (
	keyVersionAdded    = "version_added"
	keyVersionRemoved  = "version_removed"
	keyPrefix          = "prefix"
	keyAlternativeName = "alternative_name"
	keyFlags           = "flags"
)

// Statement is one support statement for one browser
type Statement struct {
	VersionAdded    versions.Bound
	VersionRemoved  versions.Bound
	Prefix          string
	AlternativeName string
	Flags           json.RawMessage // opaque; nil when absent

	// members holds every member in original order; interpreted keys keep
	// their slot and are re-encoded from the fields above.
	members []member
}

// IsDefault reports whether the statement has no flag, prefix or alternative name
func (s *Statement) IsDefault() bool {
	return isNull(s.Flags) && s.Prefix == "" && s.AlternativeName == ""
}

// Clone returns a deep copy of the statement
func (s Statement) Clone() Statement {
	out := s
	if s.Flags != nil {
		out.Flags = append(json.RawMessage(nil), s.Flags...)
	}
	out.members = append([]member(nil), s.members...)
	return out
}

// UnmarshalJSON decodes a statement, remembering member order
func (s *Statement) UnmarshalJSON(data []byte) error {
	members, err := decodeObject(data)
	if err != nil {
		return fmt.Errorf("invalid support statement: %w", err)
	}

	*s = Statement{members: members}
	for _, m := range members {
		switch m.key {
		case keyVersionAdded:
			err = json.Unmarshal(m.value, &s.VersionAdded)
		case keyVersionRemoved:
			err = json.Unmarshal(m.value, &s.VersionRemoved)
		case keyPrefix:
			err = json.Unmarshal(m.value, &s.Prefix)
		case keyAlternativeName:
			err = json.Unmarshal(m.value, &s.AlternativeName)
		case keyFlags:
			s.Flags = m.value
		}
		if err != nil {
			return fmt.Errorf("invalid %s: %w", m.key, err)
		}
	}
	return nil
}

// MarshalJSON encodes the statement in original member order. version_added
// always comes first; a newly set version_removed follows it directly.
func (s Statement) MarshalJSON() ([]byte, error) {
	keys := make([]string, 0, len(s.members)+2)
	seen := make(map[string]bool, len(s.members))
	for _, m := range s.members {
		keys = append(keys, m.key)
		seen[m.key] = true
	}
	if !seen[keyVersionAdded] {
		keys = append([]string{keyVersionAdded}, keys...)
	}
	if !seen[keyVersionRemoved] && s.VersionRemoved.IsSet() {
		keys = insertAfter(keys, keyVersionAdded, keyVersionRemoved)
	}

	raw := make(map[string]json.RawMessage, len(s.members))
	for _, m := range s.members {
		raw[m.key] = m.value
	}

	out := make([]member, 0, len(keys))
	for _, key := range keys {
		var (
			value json.RawMessage
			err   error
		)
		switch key {
		case keyVersionAdded:
			value, err = s.VersionAdded.MarshalJSON()
		case keyVersionRemoved:
			if !s.VersionRemoved.IsSet() {
				if original, ok := raw[key]; ok && isNull(original) {
					value = original
					break
				}
				continue
			}
			value, err = s.VersionRemoved.MarshalJSON()
		case keyPrefix:
			if s.Prefix == "" {
				continue
			}
			value, err = encodeValue(s.Prefix)
		case keyAlternativeName:
			if s.AlternativeName == "" {
				continue
			}
			value, err = encodeValue(s.AlternativeName)
		case keyFlags:
			if s.Flags == nil {
				continue
			}
			value = s.Flags
		default:
			value = raw[key]
		}
		if err != nil {
			return nil, err
		}
		out = append(out, member{key: key, value: value})
	}

	return encodeObject(out)
}

func insertAfter(keys []string, after, key string) []string {
	for i, k := range keys {
		if k == after {
			out := append([]string(nil), keys[:i+1]...)
			out = append(out, key)
			return append(out, keys[i+1:]...)
		}
	}
	return append(keys, key)
}
