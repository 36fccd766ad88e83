/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: inference_test.go
Description: Tests for support statement inference over matrix columns, including
uncertainty ranges across untested versions and add/remove/re-add histories.
*/

package inference

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/kleascm/compat-collector/pkg/matrix"
	"github.com/kleascm/compat-collector/pkg/support"
	"github.com/kleascm/compat-collector/pkg/versions"
	"github.com/stretchr/testify/assert"
)

const (
	U = support.Unknown
	S = support.Supported
	N = support.Unsupported
)

var boundComparer = cmp.Comparer(func(a, b versions.Bound) bool { return a.Equal(b) })

func added(b versions.Bound) Statement { return Statement{VersionAdded: b} }

func TestInferStatements(t *testing.T) {
	exact, between, never := versions.Exact, versions.Between, versions.Never

	tests := []struct {
		name   string
		column matrix.Column
		want   []Statement
	}{
		{
			name:   "added after explicit unsupported",
			column: matrix.Column{"82": U, "83": N, "84": N, "85": S},
			want:   []Statement{added(exact("85"))},
		},
		{
			name:   "uncertain add then removal",
			column: matrix.Column{"82": U, "83": S, "84": S, "85": N},
			want:   []Statement{{VersionAdded: between("0", "83"), VersionRemoved: exact("85")}},
		},
		{
			name:   "supported from the first version",
			column: matrix.Column{"1": S, "2": S},
			want:   []Statement{added(exact("1"))},
		},
		{
			name:   "never supported",
			column: matrix.Column{"1": N, "2": U, "3": N},
			want:   []Statement{added(never())},
		},
		{
			name:   "all unknown",
			column: matrix.Column{"1": U, "2": U},
			want:   nil,
		},
		{
			name:   "gap before add after unsupported",
			column: matrix.Column{"80": N, "81": U, "82": U, "83": S},
			want:   []Statement{added(between("80", "83"))},
		},
		{
			name:   "gap before removal",
			column: matrix.Column{"80": S, "81": U, "82": N},
			want:   []Statement{{VersionAdded: exact("80"), VersionRemoved: between("80", "82")}},
		},
		{
			name:   "re-added after removal",
			column: matrix.Column{"80": S, "81": N, "82": S},
			want: []Statement{
				{VersionAdded: exact("80"), VersionRemoved: exact("81")},
				added(between("81", "82")),
			},
		},
		{
			name:   "versions ordered numerically",
			column: matrix.Column{"9": N, "10": S, "100": S},
			want:   []Statement{added(exact("10"))},
		},
		{
			name:   "removal after open statement with trailing unknowns",
			column: matrix.Column{"80": S, "81": N, "82": U, "83": U},
			want:   []Statement{{VersionAdded: exact("80"), VersionRemoved: exact("81")}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := InferStatements(tt.column)
			if diff := cmp.Diff(tt.want, got, boundComparer); diff != "" {
				t.Errorf("InferStatements() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestInferredStatementsAreChronological(t *testing.T) {
	column := matrix.Column{
		"70": N, "71": S, "72": S, "73": N, "74": U, "75": S, "76": U, "77": N, "78": S,
	}

	statements := InferStatements(column)
	assert.Len(t, statements, 3)

	var last string
	for _, s := range statements {
		for _, b := range []versions.Bound{s.VersionAdded, s.VersionRemoved} {
			if !b.IsVersioned() {
				continue
			}
			if last != "" {
				assert.GreaterOrEqual(t, versions.Compare(b.Version(), last), 0, "%s after %s", b, last)
			}
			last = b.Version()
		}
	}
}

func TestStatementMatchesAndRanged(t *testing.T) {
	s := Statement{VersionAdded: versions.Between("0", "83"), VersionRemoved: versions.Exact("85")}
	assert.True(t, s.IsRanged())
	assert.True(t, s.Matches("83"))
	assert.True(t, s.Matches("85"))
	assert.False(t, s.Matches("84"))

	assert.False(t, Statement{VersionAdded: versions.Exact("85")}.IsRanged())
}
