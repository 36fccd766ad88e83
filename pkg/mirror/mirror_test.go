/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: mirror_test.go
Description: Tests for mirror resolution through release engine mapping.
*/

package mirror

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/kleascm/compat-collector/pkg/browsers"
	"github.com/kleascm/compat-collector/pkg/compat"
	"github.com/kleascm/compat-collector/pkg/versions"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const releasesJSON = `{
  "browsers": {
    "chrome": {
      "name": "Chrome",
      "releases": {
        "83": {"status": "retired", "engine": "Blink", "engine_version": "83"},
        "84": {"status": "retired", "engine": "Blink", "engine_version": "84"},
        "85": {"status": "current", "engine": "Blink", "engine_version": "85"}
      }
    },
    "chrome_android": {
      "name": "Chrome Android",
      "upstream": "chrome",
      "releases": {
        "83": {"status": "retired", "engine": "Blink", "engine_version": "83"},
        "84": {"status": "retired", "engine": "Blink", "engine_version": "84"},
        "85": {"status": "current", "engine": "Blink", "engine_version": "85"}
      }
    },
    "opera": {
      "name": "Opera",
      "upstream": "chrome",
      "releases": {
        "69": {"status": "retired", "engine": "Blink", "engine_version": "83"},
        "70": {"status": "retired", "engine": "Blink", "engine_version": "84"},
        "71": {"status": "current", "engine": "Blink", "engine_version": "85"}
      }
    },
    "webview_android": {
      "name": "WebView Android",
      "upstream": "chrome_android",
      "releases": {
        "85": {"status": "current", "engine": "Blink", "engine_version": "85"}
      }
    },
    "safari": {"name": "Safari", "releases": {"14": {"status": "current"}}},
    "safari_ios": {"name": "Safari iOS", "upstream": "safari", "releases": {"14": {"status": "current"}}}
  }
}`

func newMirror(t *testing.T) *ReleaseMirror {
	t.Helper()
	db, err := browsers.ParseDatabase([]byte(releasesJSON))
	require.NoError(t, err)
	return New(db)
}

func entry(t *testing.T, raw string) compat.Entry {
	t.Helper()
	var e compat.Entry
	require.NoError(t, json.Unmarshal([]byte(raw), &e))
	return e
}

func TestResolveSameVersionNumbers(t *testing.T) {
	m := newMirror(t)
	snapshot := map[string]compat.Entry{
		"chrome":         entry(t, `{"version_added":"84","notes":"n"}`),
		"chrome_android": compat.Mirror(),
	}

	got, err := m.Resolve("chrome_android", snapshot)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "84", got[0].VersionAdded.String())

	out, err := got[0].MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `{"version_added":"84","notes":"n"}`, string(out))
}

func TestResolveMapsThroughEngineVersion(t *testing.T) {
	m := newMirror(t)
	snapshot := map[string]compat.Entry{
		"chrome": entry(t, `{"version_added":"83","version_removed":"85"}`),
	}

	got, err := m.Resolve("opera", snapshot)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "69", got[0].VersionAdded.String())
	assert.Equal(t, "71", got[0].VersionRemoved.String())
}

func TestResolveRangedAndUnmappable(t *testing.T) {
	m := newMirror(t)

	got, err := m.Resolve("opera", map[string]compat.Entry{"chrome": entry(t, `{"version_added":"83> ≤85"}`)})
	require.NoError(t, err)
	assert.Equal(t, "69> ≤71", got[0].VersionAdded.String())

	got, err = m.Resolve("webview_android", map[string]compat.Entry{
		"chrome":         entry(t, `{"version_added":"83"}`),
		"chrome_android": compat.Mirror(),
	})
	require.NoError(t, err)
	assert.Equal(t, "85", got[0].VersionAdded.String(), "first release with a newer engine")

	got, err = m.Resolve("opera", map[string]compat.Entry{"chrome": entry(t, `{"version_added":"12"}`)})
	require.NoError(t, err)
	assert.True(t, got[0].VersionAdded.IsNever())
}

func TestResolveWithoutEngineData(t *testing.T) {
	m := newMirror(t)

	got, err := m.Resolve("safari_ios", map[string]compat.Entry{"safari": entry(t, `[{"version_added":"14"},{"version_added":true,"prefix":"-webkit-"}]`)})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, versions.Exact("14"), got[0].VersionAdded)
	assert.Equal(t, versions.Unversioned(), got[1].VersionAdded)
	assert.Equal(t, "-webkit-", got[1].Prefix)
}

func TestResolveErrors(t *testing.T) {
	m := newMirror(t)

	_, err := m.Resolve("chrome", map[string]compat.Entry{})
	assert.True(t, errors.Is(err, ErrNoUpstream))

	_, err = m.Resolve("opera", map[string]compat.Entry{})
	assert.True(t, errors.Is(err, ErrNoUpstream))

	_, err = m.Resolve("netscape", map[string]compat.Entry{})
	assert.True(t, errors.Is(err, browsers.ErrUnknownBrowser))
}

func TestResolveDetectsCycles(t *testing.T) {
	db, err := browsers.ParseDatabase([]byte(`{"browsers":{
		"a": {"name": "A", "upstream": "b", "releases": {}},
		"b": {"name": "B", "upstream": "a", "releases": {}}
	}}`))
	require.NoError(t, err)

	_, err = New(db).Resolve("a", map[string]compat.Entry{"a": compat.Mirror(), "b": compat.Mirror()})
	assert.True(t, errors.Is(err, ErrMirrorCycle))
}
