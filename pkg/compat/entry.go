/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: entry.go
Description: Per-browser support entries. The curated JSON stores a single statement, a
list of statements or the "mirror" marker; Entry makes that an explicit variant so every
consumer switches on Kind instead of probing shapes.
*/

package compat

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// MirrorMarker is the curated value meaning "inherit from the upstream browser"
const MirrorMarker = "mirror"

// EntryKind discriminates Entry variants
type EntryKind uint8

const (
	EntryAbsent EntryKind = iota
	EntrySingle
	EntryMultiple
	EntryMirror
)

func (k EntryKind) String() string {
	switch k {
	case EntrySingle:
		return "single"
	case EntryMultiple:
		return "multiple"
	case EntryMirror:
		return "mirror"
	default:
		return "absent"
	}
}

// Entry is the support data of one browser
type Entry struct {
	kind       EntryKind
	statements []Statement
}

// Absent returns an empty entry
func Absent() Entry { return Entry{} }

// Mirror returns the mirror marker entry
func Mirror() Entry { return Entry{kind: EntryMirror} }

// Single returns an entry holding one statement
func Single(s Statement) Entry {
	return Entry{kind: EntrySingle, statements: []Statement{s.Clone()}}
}

// Multiple returns an entry holding a statement list, even of length one
func Multiple(ss []Statement) Entry {
	return Entry{kind: EntryMultiple, statements: cloneStatements(ss)}
}

// FromStatements picks the natural variant for ss: absent, single or multiple
func FromStatements(ss []Statement) Entry {
	switch len(ss) {
	case 0:
		return Absent()
	case 1:
		return Single(ss[0])
	default:
		return Multiple(ss)
	}
}

// Kind returns the entry variant
func (e Entry) Kind() EntryKind { return e.kind }

// Statements returns a copy of the entry's statements; nil for absent and mirror
func (e Entry) Statements() []Statement {
	return cloneStatements(e.statements)
}

// Clone returns a deep copy of the entry
func (e Entry) Clone() Entry {
	return Entry{kind: e.kind, statements: cloneStatements(e.statements)}
}

func cloneStatements(ss []Statement) []Statement {
	if ss == nil {
		return nil
	}
	out := make([]Statement, len(ss))
	for i, s := range ss {
		out[i] = s.Clone()
	}
	return out
}

// MarshalJSON encodes the entry in its curated shape
func (e Entry) MarshalJSON() ([]byte, error) {
	switch e.kind {
	case EntryMirror:
		return encodeValue(MirrorMarker)
	case EntrySingle:
		return e.statements[0].MarshalJSON()
	case EntryMultiple:
		var buf bytes.Buffer
		buf.WriteByte('[')
		for i, s := range e.statements {
			if i > 0 {
				buf.WriteByte(',')
			}
			data, err := s.MarshalJSON()
			if err != nil {
				return nil, err
			}
			buf.Write(data)
		}
		buf.WriteByte(']')
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("cannot encode absent support entry")
	}
}

// UnmarshalJSON decodes a statement, a statement list or the mirror marker
func (e *Entry) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return fmt.Errorf("empty support entry")
	}

	switch trimmed[0] {
	case '"':
		var marker string
		if err := json.Unmarshal(trimmed, &marker); err != nil {
			return err
		}
		if marker != MirrorMarker {
			return fmt.Errorf("unknown support marker %q", marker)
		}
		*e = Mirror()
	case '[':
		var ss []Statement
		if err := json.Unmarshal(trimmed, &ss); err != nil {
			return err
		}
		*e = Entry{kind: EntryMultiple, statements: ss}
	case '{':
		var s Statement
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*e = Entry{kind: EntrySingle, statements: []Statement{s}}
	default:
		return fmt.Errorf("invalid support entry %s", string(trimmed))
	}
	return nil
}
