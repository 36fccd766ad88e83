/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: report.go
Description: Raw test run reports as collected from a browser. A report holds the user
agent of the browser that ran the tests and, per test page URL, one observation per
feature and exposure context. Files are checked against a JSON Schema before decoding.
*/

package support

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// Observation is one feature result within one exposure context
type Observation struct {
	Name     string   `json:"name"`              // Dotted feature path, e.g. api.Foo.bar
	Exposure string   `json:"exposure"`          // Global scope the test ran in: Window, Worker...
	Result   TriState `json:"result"`            // true, false or null
	Message  string   `json:"message,omitempty"` // Optional note from the test harness
}

// Report is one test run. Immutable once loaded.
type Report struct {
	FormatVersion string                   `json:"__version"`
	UserAgent     string                   `json:"userAgent"`
	Results       map[string][]Observation `json:"results"`

	// ID identifies the report within one collector run; not serialized.
	ID string `json:"-"`
	// Source is the location the report was loaded from; not serialized.
	Source string `json:"-"`
}

// Observations returns the total number of observations in the report
func (r *Report) Observations() int {
	n := 0
	for _, results := range r.Results {
		n += len(results)
	}
	return n
}

const reportSchemaURL = "report.schema.json"

const reportSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["userAgent", "results"],
  "properties": {
    "__version": {"type": "string"},
    "userAgent": {"type": "string", "minLength": 1},
    "results": {
      "type": "object",
      "additionalProperties": {
        "type": "array",
        "items": {
          "type": "object",
          "required": ["name", "result"],
          "properties": {
            "name": {"type": "string", "minLength": 1},
            "exposure": {"type": "string"},
            "message": {"type": "string"}
          }
        }
      }
    }
  }
}`

// ErrMalformedReport is returned for files that are not test run reports
var ErrMalformedReport = errors.New("malformed report")

var (
	compileOnce    sync.Once
	compiledSchema *jsonschema.Schema
	compileErr     error
)

func schema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(strings.NewReader(reportSchema))
		if err != nil {
			compileErr = fmt.Errorf("failed to parse report schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource(reportSchemaURL, doc); err != nil {
			compileErr = fmt.Errorf("failed to add report schema: %w", err)
			return
		}
		compiledSchema, compileErr = c.Compile(reportSchemaURL)
	})
	return compiledSchema, compileErr
}

// ParseReport validates and decodes a report file
func ParseReport(data []byte) (*Report, error) {
	sch, err := schema()
	if err != nil {
		return nil, err
	}

	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedReport, err)
	}
	if err := sch.Validate(inst); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedReport, err)
	}

	var report Report
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("failed to decode report: %w", err)
	}
	return &report, nil
}
