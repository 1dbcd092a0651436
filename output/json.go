package output

import (
	"bytes"
	"encoding/json"
	"fmt"

	"timesheet/worklog"
)

type JSONRenderer struct{}

func (r *JSONRenderer) Render(entries []worklog.Entry, opts Options) ([]byte, error) {
	out, err := RenderJSON(entries)
	if err != nil {
		return nil, err
	}
	return []byte(out), nil
}

// RenderJSON pretty-prints the raw entries without any aggregation. HTML
// characters are written as is, not as \u escapes.
func RenderJSON(entries []worklog.Entry) (string, error) {
	if entries == nil {
		entries = []worklog.Entry{}
	}
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(entries); err != nil {
		return "", fmt.Errorf("encode json output: %w", err)
	}
	return string(bytes.TrimSuffix(buf.Bytes(), []byte("\n"))), nil
}
