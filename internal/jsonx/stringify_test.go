package jsonx

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestIsJSON(t *testing.T) {
	cases := []struct {
		input string
		want  bool
	}{
		{`{"a": 1}`, true},
		{`[1, 2, 3]`, true},
		{`  {"a": 1}  `, true},
		{`{"a": `, false},
		{`plain text`, false},
		{`42`, false},
		{`true`, false},
		{``, false},
	}
	for _, c := range cases {
		if got := IsJSON(c.input); got != c.want {
			t.Errorf("IsJSON(%q) = %v, want %v", c.input, got, c.want)
		}
	}
}

func TestStringifyStringPassthrough(t *testing.T) {
	s, isJSON := Stringify("plain text", false)
	if s != "plain text" || isJSON {
		t.Errorf("expected passthrough non-JSON, got %q (json=%v)", s, isJSON)
	}

	s, isJSON = Stringify(`{"a": 1}`, false)
	if s != `{"a": 1}` || !isJSON {
		t.Errorf("expected passthrough JSON, got %q (json=%v)", s, isJSON)
	}
}

func TestStringifyRawMessage(t *testing.T) {
	s, isJSON := Stringify(json.RawMessage(`[1,2]`), true)
	if s != `[1,2]` || !isJSON {
		t.Errorf("expected raw JSON passthrough, got %q (json=%v)", s, isJSON)
	}
}

func TestStringifyNil(t *testing.T) {
	s, isJSON := Stringify(nil, false)
	if s != "" || isJSON {
		t.Errorf("expected empty non-JSON for nil, got %q (json=%v)", s, isJSON)
	}
}

func TestStringifyStructuredData(t *testing.T) {
	data := map[string]interface{}{"pod": "api-7d9", "restarts": 3}

	indented, isJSON := Stringify(data, false)
	if !isJSON {
		t.Error("marshaled data must report as JSON")
	}
	if !strings.Contains(indented, "\n") {
		t.Error("non-compact output must be indented")
	}

	compact, isJSON := Stringify(data, true)
	if !isJSON {
		t.Error("compact output must report as JSON")
	}
	if strings.Contains(compact, "\n") {
		t.Error("compact output must be single-line")
	}
	if !json.Valid([]byte(compact)) {
		t.Errorf("compact output must be valid JSON: %q", compact)
	}
}
