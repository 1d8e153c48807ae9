// Package report renders command output: deterministic JSON to stdout or a
// file, compact by default, pretty or NDJSON on request.
package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/goqap/qap/internal/entry"
	"github.com/goqap/qap/internal/scan"
	"github.com/goqap/qap/internal/selection"
)

// Settings select the output destination and encoding. Out "-" or "" means
// stdout. Lines switches to NDJSON, one record per line.
type Settings struct {
	Out    string
	Pretty bool
	Lines  bool
}

// Scan is the envelope emitted by `qap scan`.
type Scan struct {
	Root      string       `json:"root"`
	Dirs      int          `json:"dirs"`
	Files     int          `json:"files"`
	TotalSize int64        `json:"totalSize"`
	Tree      *entry.Entry `json:"tree"`
	Errors    []scan.Error `json:"errors,omitempty"`
}

// PlanEntry is one included file in a backup plan.
type PlanEntry struct {
	Path string `json:"path"`
	Size int64  `json:"size"`
}

// Plan is the envelope emitted by `qap plan`.
type Plan struct {
	Root        string                `json:"root"`
	Destination string                `json:"destination,omitempty"`
	Included    []PlanEntry           `json:"included"`
	TotalSize   int64                 `json:"totalSize"`
	FilterRules []string              `json:"filterRules"`
	RuleErrors  []selection.RuleError `json:"ruleErrors,omitempty"`
}

// Write encodes v according to the settings. In lines mode v must be a slice
// of records; each element becomes one compact JSON line.
func Write(s Settings, v any) error {
	if s.Lines {
		records, ok := v.([]any)
		if !ok {
			return fmt.Errorf("lines output requires a record list")
		}
		var all bytes.Buffer
		for _, r := range records {
			b, err := encodeJSONCompact(r)
			if err != nil {
				return err
			}
			all.Write(b)
		}
		return writeTo(s.Out, all.Bytes())
	}

	var data []byte
	var err error
	if s.Pretty {
		data, err = encodeJSONPretty(v)
	} else {
		data, err = encodeJSONCompact(v)
	}
	if err != nil {
		return err
	}
	return writeTo(s.Out, data)
}

func encodeJSONCompact(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encodeJSONPretty(v any) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out bytes.Buffer
	if err := json.Indent(&out, b, "", "  "); err != nil {
		return nil, err
	}
	out.WriteByte('\n')
	return out.Bytes(), nil
}

func writeTo(outPath string, data []byte) error {
	if outPath == "" || outPath == "-" {
		_, err := os.Stdout.Write(data)
		return err
	}
	if dir := filepath.Dir(outPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("report: %v", err)
		}
	}
	return os.WriteFile(outPath, data, 0o644)
}
