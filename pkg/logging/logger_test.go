/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: logger_test.go
Description: Tests for the logging system. Covers configuration validation, output
formats, collector-specific helpers, stage prefixes and old log file cleanup.
*/

package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerCreation(t *testing.T) {
	logger, err := NewLogger(nil)
	require.NoError(t, err)
	assert.NotNil(t, logger.GetLogger())
	assert.Empty(t, logger.LogFile())
	require.NoError(t, logger.Close())

	dir := t.TempDir()
	logger, err = NewLogger(&LoggerConfig{
		Level:     LogLevelDebug,
		Format:    LogFormatJSON,
		OutputDir: dir,
		MaxFiles:  5,
	})
	require.NoError(t, err)
	assert.FileExists(t, logger.LogFile())
	require.NoError(t, logger.Close())
}

func TestLoggerConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  LoggerConfig
		wantErr bool
	}{
		{"defaults", *DefaultLoggerConfig(), false},
		{"bad format", LoggerConfig{Level: LogLevelInfo, Format: "xml"}, true},
		{"bad level", LoggerConfig{Level: "loud", Format: LogFormatText}, true},
		{"file output without max files", LoggerConfig{Level: LogLevelInfo, Format: LogFormatText, OutputDir: "logs"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLogFormats(t *testing.T) {
	formats := []LogFormat{LogFormatText, LogFormatJSON, LogFormatCustom}

	for _, format := range formats {
		t.Run(string(format), func(t *testing.T) {
			logger, err := NewLogger(&LoggerConfig{
				Level:  LogLevelInfo,
				Format: format,
			})
			require.NoError(t, err)
			defer logger.Close()

			var buf bytes.Buffer
			logger.SetOutput(&buf)
			logger.Info("Test message", map[string]interface{}{"test_key": "test_value"})

			assert.Contains(t, buf.String(), "Test message")
			assert.Contains(t, buf.String(), "test_value")
		})
	}
}

func TestCollectorSpecificLogging(t *testing.T) {
	logger, err := NewLogger(&LoggerConfig{
		Level:  LogLevelDebug,
		Format: LogFormatCustom,
	})
	require.NoError(t, err)
	defer logger.Close()

	var buf bytes.Buffer
	logger.SetOutput(&buf)

	logger.LogReportSkipped("reports/run-1.json", "malformed report", nil)
	logger.LogFileMerged("api/Foo.json", true, nil)
	logger.LogStats(12, 2, 40, 3, nil)

	out := buf.String()
	assert.Contains(t, out, "[REPORT] Skipping report")
	assert.Contains(t, out, "reason=malformed report")
	assert.Contains(t, out, "[MERGE] Curated file merged")
	assert.Contains(t, out, "modified=true")
	assert.Contains(t, out, "[STATS] Statistics update")
	assert.Contains(t, out, "modified_files=3")
}

func TestCustomFormatterSortsFields(t *testing.T) {
	f := &CustomFormatter{}
	entry := &logrus.Entry{
		Time:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Level:   logrus.InfoLevel,
		Message: "hello",
		Data:    logrus.Fields{"zeta": 1, "alpha": "a", "mid": []string{"x", "y"}},
	}

	out, err := f.Format(entry)
	require.NoError(t, err)
	assert.Equal(t, "INFO hello alpha=a mid=x,y zeta=1\n", string(out))
}

func TestLoggerCleanupKeepsNewestFiles(t *testing.T) {
	dir := t.TempDir()
	old := []string{
		"compat-collector_2024-01-01_10-00-00.log",
		"compat-collector_2024-01-01_11-00-00.log",
		"compat-collector_2024-01-01_12-00-00.log",
	}
	for _, name := range old {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0644))
	}

	logger, err := NewLogger(&LoggerConfig{
		Level:     LogLevelInfo,
		Format:    LogFormatText,
		OutputDir: dir,
		MaxFiles:  2,
	})
	require.NoError(t, err)
	current := logger.LogFile()
	require.NoError(t, logger.Close())

	files, err := filepath.Glob(filepath.Join(dir, logFilePattern))
	require.NoError(t, err)
	assert.Len(t, files, 2)
	assert.Contains(t, files, current)
	assert.NotContains(t, files, filepath.Join(dir, old[0]))
}
