/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: versions_test.go
Description: Tests for version ordering and version bound encoding.
*/

package versions

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompare(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"83", "83", 0},
		{"9", "10", -1},
		{"100", "99", 1},
		{"15.4", "15", 1},
		{"15.4", "15.10", -1},
		{"4.4.3", "4.4", 1},
		{"1.0.154.53", "1.0.154.9", 1},
		{"preview", "999", 1},
		{"83", "preview", -1},
		{"1.0", "1", 0},
	}

	for _, tt := range tests {
		t.Run(tt.a+"_vs_"+tt.b, func(t *testing.T) {
			assert.Equal(t, tt.want, Compare(tt.a, tt.b))
		})
	}
}

func TestSortIsNotLexical(t *testing.T) {
	vs := []string{"100", "9", "preview", "10", "9.1"}
	assert.Equal(t, []string{"9", "9.1", "10", "100", "preview"}, Sorted(vs))
	assert.Equal(t, []string{"100", "9", "preview", "10", "9.1"}, vs, "Sorted must not mutate its input")
}

func TestInRange(t *testing.T) {
	assert.True(t, InRange("83", "83", "85"))
	assert.True(t, InRange("85", "83", "85"))
	assert.False(t, InRange("82", "83", "85"))
	assert.False(t, InRange("100", "83", "85"))
}

func TestParseAndString(t *testing.T) {
	tests := []struct {
		in   string
		kind Kind
	}{
		{"83", KindExact},
		{"preview", KindPreview},
		{"82> ≤83", KindRanged},
		{"≤83", KindRanged},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			b := Parse(tt.in)
			assert.Equal(t, tt.kind, b.Kind())
			assert.Equal(t, tt.in, b.String())
			assert.Equal(t, "83", Parse("82> ≤83").Version())
		})
	}

	r := Parse("82> ≤83")
	assert.Equal(t, "82", r.Lower())
	assert.Equal(t, "83", r.Version())
}

func TestWithoutFloor(t *testing.T) {
	assert.Equal(t, "≤83", Between(Floor, "83").WithoutFloor().String())
	assert.Equal(t, "80> ≤83", Between("80", "83").WithoutFloor().String())
	assert.Equal(t, Exact("83"), Exact("83").WithoutFloor())
}

func TestContains(t *testing.T) {
	r := Between("80", "83")
	assert.False(t, r.Contains("80"))
	assert.True(t, r.Contains("81"))
	assert.True(t, r.Contains("83"))
	assert.False(t, r.Contains("84"))

	assert.True(t, AtMost("83").Contains("1"))
	assert.True(t, Exact("83").Contains("83"))
	assert.False(t, Never().Contains("83"))
}

func TestMatches(t *testing.T) {
	assert.True(t, Exact("83").Matches("83"))
	assert.True(t, Between("80", "83").Matches("83"))
	assert.False(t, Between("80", "83").Matches("80"))
	assert.False(t, Never().Matches("83"))
}

func TestBoundJSON(t *testing.T) {
	type statement struct {
		Added   Bound `json:"version_added"`
		Removed Bound `json:"version_removed"`
	}

	var s statement
	require.NoError(t, json.Unmarshal([]byte(`{"version_added":"0> ≤83","version_removed":false}`), &s))
	assert.Equal(t, Between("0", "83"), s.Added)
	assert.True(t, s.Removed.IsNever())

	out, err := s.Added.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `"0> ≤83"`, string(out))

	for in, want := range map[string]Bound{
		"null":      Unset(),
		"true":      Unversioned(),
		"false":     Never(),
		`"preview"`: Preview(),
		`"12.1"`:    Exact("12.1"),
	} {
		var b Bound
		require.NoError(t, json.Unmarshal([]byte(in), &b))
		assert.Equal(t, want, b, in)

		round, err := b.MarshalJSON()
		require.NoError(t, err)
		assert.JSONEq(t, in, string(round))
	}

	var b Bound
	assert.Error(t, json.Unmarshal([]byte(`12`), &b))
}
