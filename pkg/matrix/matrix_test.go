/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: matrix_test.go
Description: Tests for the support matrix builder and override application.
*/

package matrix

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/kleascm/compat-collector/pkg/browsers"
	"github.com/kleascm/compat-collector/pkg/support"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	U = support.Unknown
	S = support.Supported
	N = support.Unsupported
)

func testReleases() browsers.Database {
	known := func(vs ...string) map[string]*browsers.Release {
		out := make(map[string]*browsers.Release)
		for _, v := range vs {
			out[v] = &browsers.Release{Status: browsers.StatusRetired}
		}
		return out
	}
	chrome := known("82", "83", "84", "85")
	chrome["86"] = &browsers.Release{Status: browsers.StatusBeta}
	return browsers.Database{
		"chrome":  {ID: "chrome", Releases: chrome},
		"firefox": {ID: "firefox", Releases: known("78", "79")},
	}
}

// fixedIdentifier treats the user agent as "browser/version"
var fixedIdentifier = browsers.IdentifierFunc(func(ua string, db browsers.Database) browsers.Identity {
	var id, version string
	if _, err := fmt.Sscanf(ua, "%s %s", &id, &version); err != nil {
		return browsers.Identity{Status: browsers.Unidentified}
	}
	b, ok := db[id]
	if !ok {
		return browsers.Identity{Status: browsers.Unidentified}
	}
	if !b.HasKnownRelease(version) {
		return browsers.Identity{BrowserID: id, Version: version, Status: browsers.UnknownVersion}
	}
	return browsers.Identity{BrowserID: id, Version: version, Status: browsers.Identified}
})

func report(ua string, results map[string]support.TriState) *support.Report {
	var obs []support.Observation
	for name, verdict := range results {
		obs = append(obs, support.Observation{Name: name, Exposure: "Window", Result: verdict})
	}
	return &support.Report{UserAgent: ua, Results: map[string][]support.Observation{"u": obs}}
}

func quietLogger() (*logrus.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	logger := logrus.New()
	logger.SetOutput(&buf)
	return logger, &buf
}

func TestBuilderSeedsColumnsWithKnownReleases(t *testing.T) {
	logger, _ := quietLogger()
	b := NewBuilder(testReleases(), fixedIdentifier, logger)

	require.NoError(t, b.AddReport(report("chrome 84", map[string]support.TriState{"api.Foo": S})))

	column, ok := b.Matrix().Column("api.Foo", "chrome")
	require.True(t, ok)
	assert.Equal(t, Column{"82": U, "83": U, "84": S, "85": U}, column)
	assert.Equal(t, []string{"api.Foo"}, b.Matrix().Features())
	assert.Equal(t, []string{"chrome"}, b.Matrix().Browsers("api.Foo"))
}

func TestBuilderCombinesRunsForSameVersion(t *testing.T) {
	logger, _ := quietLogger()
	b := NewBuilder(testReleases(), fixedIdentifier, logger)

	require.NoError(t, b.AddReport(report("chrome 83", map[string]support.TriState{"api.Foo": N, "api.Bar": N, "api.Baz": U})))
	require.NoError(t, b.AddReport(report("chrome 83", map[string]support.TriState{"api.Foo": S, "api.Bar": U, "api.Baz": U})))

	m := b.Matrix()
	assert.Equal(t, S, m["api.Foo"]["chrome"]["83"])
	assert.Equal(t, N, m["api.Bar"]["chrome"]["83"])
	assert.Equal(t, U, m["api.Baz"]["chrome"]["83"])
}

func TestBuilderSkipsUnidentifiedReports(t *testing.T) {
	logger, buf := quietLogger()
	b := NewBuilder(testReleases(), fixedIdentifier, logger)

	require.NoError(t, b.AddReport(report("netscape 4", map[string]support.TriState{"api.Foo": S})))
	require.NoError(t, b.AddReport(report("chrome 86", map[string]support.TriState{"api.Foo": S})))

	assert.Empty(t, b.Matrix())
	added, skipped := b.Stats()
	assert.Equal(t, 0, added)
	assert.Equal(t, 2, skipped)
	assert.Contains(t, buf.String(), "Unable to identify browser")
	assert.Contains(t, buf.String(), "unknown browser version")
}

func TestBuilderFailsOnReleaseMismatch(t *testing.T) {
	logger, _ := quietLogger()
	liar := browsers.IdentifierFunc(func(string, browsers.Database) browsers.Identity {
		return browsers.Identity{BrowserID: "chrome", Version: "999", Status: browsers.Identified}
	})
	b := NewBuilder(testReleases(), liar, logger)

	err := b.AddReport(report("whatever", map[string]support.TriState{"api.Foo": S}))
	assert.True(t, errors.Is(err, ErrReleaseMismatch))
}

func TestBuilderFailsOnEmptyReport(t *testing.T) {
	logger, _ := quietLogger()
	b := NewBuilder(testReleases(), fixedIdentifier, logger)

	err := b.AddReport(&support.Report{UserAgent: "chrome 83", Results: map[string][]support.Observation{}})
	assert.True(t, errors.Is(err, support.ErrEmptyReport))
}

func TestAddReportsConcurrently(t *testing.T) {
	logger, _ := quietLogger()
	b := NewBuilder(testReleases(), fixedIdentifier, logger)

	var reports []*support.Report
	for i := 0; i < 50; i++ {
		verdict := N
		if i == 37 {
			verdict = S
		}
		reports = append(reports, report("chrome 85", map[string]support.TriState{"api.Foo": verdict}))
		reports = append(reports, report("firefox 79", map[string]support.TriState{"api.Foo": N}))
	}

	require.NoError(t, b.AddReports(context.Background(), reports, 4))

	m := b.Matrix()
	assert.Equal(t, S, m["api.Foo"]["chrome"]["85"])
	assert.Equal(t, N, m["api.Foo"]["firefox"]["79"])
	added, skipped := b.Stats()
	assert.Equal(t, 100, added)
	assert.Equal(t, 0, skipped)
}

func TestAddReportsStopsOnStructuralError(t *testing.T) {
	logger, _ := quietLogger()
	b := NewBuilder(testReleases(), fixedIdentifier, logger)

	bad := &support.Report{UserAgent: "chrome 83", Source: "bad.json", Results: map[string][]support.Observation{}}
	err := b.AddReports(context.Background(), []*support.Report{bad}, 0)
	require.Error(t, err)
	assert.True(t, errors.Is(err, support.ErrEmptyReport))
	assert.Contains(t, err.Error(), "bad.json")
}

func TestColumnHelpers(t *testing.T) {
	c := Column{"100": U, "9": S, "10": N, "99": U}
	assert.Equal(t, []string{"9", "10", "99", "100"}, c.Versions())

	latest, ok := c.LatestTested()
	require.True(t, ok)
	assert.Equal(t, "10", latest)

	_, ok = Column{"1": U}.LatestTested()
	assert.False(t, ok)

	clone := c.Clone()
	clone["9"] = U
	assert.Equal(t, S, c["9"])
}

func TestApplyOverrides(t *testing.T) {
	logger, _ := quietLogger()
	m := Matrix{
		"X": {"chrome": Column{"82": S, "83": S, "84": S, "85": S, "86": S}},
		"Y": {"chrome": Column{"82": S, "83": N}, "firefox": Column{"78": S}},
	}

	ApplyOverrides(m, []Override{
		{Path: "X", Browser: "chrome", Version: "83-85", Verdict: N},
		{Path: "Y", Browser: "chrome", Version: "*", Verdict: U},
		{Path: "Y", Browser: "firefox", Version: "78", Verdict: N},
		{Path: "Z", Browser: "chrome", Version: "*", Verdict: N},
		{Path: "Y", Browser: "safari", Version: "*", Verdict: N},
	}, logger)

	assert.Equal(t, Column{"82": S, "83": N, "84": N, "85": N, "86": S}, m["X"]["chrome"])
	assert.Equal(t, Column{"82": U, "83": U}, m["Y"]["chrome"])
	assert.Equal(t, Column{"78": N}, m["Y"]["firefox"])
	assert.NotContains(t, m, "Z")
	assert.NotContains(t, m["Y"], "safari")
}

func TestApplyOverridesInOrder(t *testing.T) {
	m := Matrix{"X": {"chrome": Column{"83": S, "84": S}}}
	ApplyOverrides(m, []Override{
		{Path: "X", Browser: "chrome", Version: "*", Verdict: N},
		{Path: "X", Browser: "chrome", Version: "84", Verdict: S},
	}, nil)
	assert.Equal(t, Column{"83": N, "84": S}, m["X"]["chrome"])
}

func TestRangeOverrideUsesVersionOrder(t *testing.T) {
	o := Override{Version: "9-10"}
	assert.True(t, o.Selects("9"))
	assert.True(t, o.Selects("9.1"))
	assert.True(t, o.Selects("10"))
	assert.False(t, o.Selects("100"))
	assert.False(t, o.Selects("8"))
}

func TestParseOverrides(t *testing.T) {
	jsonData := []byte(`[
		["api.Foo", "chrome", "83-85", false],
		["api.Foo.bar", "safari", "*", null],
		["api.Baz", "firefox", "79", true]
	]`)
	yamlData := []byte(`
- [api.Foo, chrome, 83-85, false]
- [api.Foo.bar, safari, "*", null]
- [api.Baz, firefox, 79, true]
`)

	want := []Override{
		{Path: "api.Foo", Browser: "chrome", Version: "83-85", Verdict: N},
		{Path: "api.Foo.bar", Browser: "safari", Version: "*", Verdict: U},
		{Path: "api.Baz", Browser: "firefox", Version: "79", Verdict: S},
	}

	fromJSON, err := ParseOverrides(jsonData)
	require.NoError(t, err)
	assert.Equal(t, want, fromJSON)

	fromYAML, err := ParseOverrides(yamlData)
	require.NoError(t, err)
	assert.Equal(t, want, fromYAML)
}

func TestParseOverridesRejectsMalformedEntries(t *testing.T) {
	tests := []struct {
		name string
		data string
		want error
	}{
		{"too short", `[["api.Foo", "chrome", "83"]]`, ErrInvalidOverride},
		{"string result", `[["api.Foo", "chrome", "83", "false"]]`, support.ErrInvalidVerdict},
		{"reversed range", `[["api.Foo", "chrome", "85-83", true]]`, ErrInvalidOverride},
		{"open range", `[["api.Foo", "chrome", "83-", true]]`, ErrInvalidOverride},
		{"empty path", `[["", "chrome", "83", true]]`, ErrInvalidOverride},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseOverrides([]byte(tt.data))
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), err.Error())
		})
	}
}
