/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: tristate.go
Description: TriState verdicts for feature detection results. Unknown is the absence of
evidence and is distinct from a negative result. Verdicts combine optimistically: any
supported signal wins, then any unsupported signal, and unknown only when nothing else
was observed.
*/

package support

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrInvalidVerdict is returned for a result that is not true, false or null
var ErrInvalidVerdict = errors.New("invalid verdict")

// TriState is a supported / unsupported / unknown verdict
type TriState int8

const (
	Unknown TriState = iota
	Supported
	Unsupported
)

// String returns the verdict name
func (t TriState) String() string {
	switch t {
	case Unknown:
		return "unknown"
	case Supported:
		return "supported"
	case Unsupported:
		return "unsupported"
	default:
		return fmt.Sprintf("TriState(%d)", int8(t))
	}
}

// Valid reports whether t is one of the three verdicts
func (t TriState) Valid() bool {
	return t == Unknown || t == Supported || t == Unsupported
}

// FromBool converts a known verdict
func FromBool(b bool) TriState {
	if b {
		return Supported
	}
	return Unsupported
}

// MarshalJSON encodes the verdict as true, false or null
func (t TriState) MarshalJSON() ([]byte, error) {
	switch t {
	case Supported:
		return []byte("true"), nil
	case Unsupported:
		return []byte("false"), nil
	case Unknown:
		return []byte("null"), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrInvalidVerdict, t)
	}
}

// UnmarshalJSON decodes true, false or null; anything else is ErrInvalidVerdict
func (t *TriState) UnmarshalJSON(data []byte) error {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	switch v := raw.(type) {
	case nil:
		*t = Unknown
	case bool:
		*t = FromBool(v)
	default:
		return fmt.Errorf("%w: %s", ErrInvalidVerdict, string(data))
	}
	return nil
}

// Combine merges two verdicts for the same feature
func Combine(a, b TriState) TriState {
	switch {
	case a == Supported || b == Supported:
		return Supported
	case a == Unsupported || b == Unsupported:
		return Unsupported
	default:
		return Unknown
	}
}

// Reduce collapses a list of verdicts into one
func Reduce(verdicts []TriState) TriState {
	result := Unknown
	for _, v := range verdicts {
		result = Combine(result, v)
		if result == Supported {
			break
		}
	}
	return result
}
