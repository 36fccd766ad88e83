/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: summary_writer.go
Description: Utility for writing run summaries. Summaries are stored as timestamped,
run-specific JSON files so successive collector runs never overwrite each other.
*/

package utils

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/kleascm/compat-collector/pkg/store"
)

// SummaryFileName builds the file name for a summary: 2024-06-11_01-30-00_update_<run>.json
func SummaryFileName(at time.Time, command, runID string) string {
	return fmt.Sprintf("%s_%s_%s.json", at.Format("2006-01-02_15-04-05"), command, runID)
}

// WriteRunSummary writes result as indented JSON below dir and returns its location
func WriteRunSummary(ctx context.Context, st *store.Store, dir, command, runID string, result interface{}) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		return "", fmt.Errorf("failed to marshal summary: %w", err)
	}

	location := store.Join(dir, SummaryFileName(time.Now(), command, runID))
	if err := st.Write(ctx, location, buf.Bytes()); err != nil {
		return "", fmt.Errorf("failed to write summary: %w", err)
	}

	return location, nil
}
