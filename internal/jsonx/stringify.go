// Package jsonx provides JSON detection and stringification helpers for
// tool result data.
//
// Tool results carry either free text or structured data. Before a result
// is persisted or embedded in a prompt it must be flattened to a string,
// and the caller needs to know whether that string is JSON (it decides the
// file extension and inspection hints).
package jsonx

import (
	"encoding/json"
	"fmt"
	"strings"
)

// IsJSON reports whether s parses as a JSON value. Leading and trailing
// whitespace is ignored. Bare scalars ("42", "true") are not treated as
// JSON documents.
func IsJSON(s string) bool {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return false
	}
	if trimmed[0] != '{' && trimmed[0] != '[' {
		return false
	}
	return json.Valid([]byte(trimmed))
}

// Stringify flattens arbitrary tool result data to a string and reports
// whether the string is JSON. Strings pass through unchanged; everything
// else is marshaled. When compact is false, structured data is indented
// for readability on disk.
func Stringify(data interface{}, compact bool) (string, bool) {
	switch v := data.(type) {
	case nil:
		return "", false
	case string:
		return v, IsJSON(v)
	case json.RawMessage:
		return string(v), IsJSON(string(v))
	}

	var (
		encoded []byte
		err     error
	)
	if compact {
		encoded, err = json.Marshal(data)
	} else {
		encoded, err = json.MarshalIndent(data, "", "  ")
	}
	if err != nil {
		// Unmarshalable values (channels, funcs) should never reach tool
		// results; fall back to a fmt rendering rather than failing.
		return fmt.Sprintf("%v", data), false
	}
	return string(encoded), true
}
