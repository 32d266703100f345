package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestHTTPToolHostAllowList(t *testing.T) {
	tool := NewHTTPTool(5).WithAllowedHosts([]string{"grafana.internal", "*.prom.example.com"})

	cases := []struct {
		url     string
		allowed bool
	}{
		{"https://grafana.internal/api/health", true},
		{"https://GRAFANA.INTERNAL/api/health", true},
		{"https://prom.example.com/query", true},
		{"https://node-a.prom.example.com/query", true},
		{"https://evil.example.com/query", false},
		{"https://grafana.internal.evil.com/", false},
		{"ftp://grafana.internal/", false},
	}
	for _, c := range cases {
		args, _ := json.Marshal(map[string]string{"url": c.url})
		err := tool.Validate(args)
		if c.allowed && err != nil {
			t.Errorf("%s: expected allowed, got %v", c.url, err)
		}
		if !c.allowed && err == nil {
			t.Errorf("%s: expected rejection", c.url)
		}
	}
}

func TestHTTPToolValidateRequiresURL(t *testing.T) {
	tool := NewHTTPTool(5)
	if err := tool.Validate(json.RawMessage(`{}`)); err == nil {
		t.Error("expected error for missing url")
	}
	if err := tool.Validate(json.RawMessage(`not json`)); err == nil {
		t.Error("expected error for malformed arguments")
	}
}

func TestHTTPToolInvoke(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Accept") != "application/json" {
			t.Errorf("Accept header = %q", r.Header.Get("Accept"))
		}
		fmt.Fprint(w, `{"status": "firing"}`)
	}))
	defer server.Close()

	tool := NewHTTPTool(5).WithAllowedHosts([]string{"127.0.0.1"})
	defer tool.client.CloseIdleConnections()

	args, _ := json.Marshal(map[string]string{"url": server.URL + "/alerts"})
	result := tool.Invoke(context.Background(), args)
	if result.Status != StatusSuccess {
		t.Fatalf("status = %s: %s", result.Status, result.Error)
	}
	if result.Data != `{"status": "firing"}` {
		t.Errorf("data = %v", result.Data)
	}
}

func TestHTTPToolInvokeErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no such dashboard", http.StatusNotFound)
	}))
	defer server.Close()

	tool := NewHTTPTool(5)
	defer tool.client.CloseIdleConnections()

	args, _ := json.Marshal(map[string]string{"url": server.URL})
	result := tool.Invoke(context.Background(), args)
	if result.Status != StatusError {
		t.Fatalf("status = %s, want ERROR for HTTP 404", result.Status)
	}
	if !strings.Contains(result.Error, "HTTP 404") {
		t.Errorf("error = %q, want HTTP 404", result.Error)
	}
}

func TestHTTPToolMethodNotAllowed(t *testing.T) {
	tool := NewHTTPTool(5)
	args, _ := json.Marshal(map[string]string{"url": "http://127.0.0.1/x", "method": "DELETE"})
	result := tool.Invoke(context.Background(), args)
	if result.Status != StatusError {
		t.Fatalf("status = %s, want ERROR", result.Status)
	}
	if !strings.Contains(result.Error, "not allowed") {
		t.Errorf("error = %q, want method not allowed", result.Error)
	}
}

func TestHTTPToolAddsConfiguredHeaders(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		fmt.Fprint(w, "ok")
	}))
	defer server.Close()

	tool := NewHTTPTool(5).WithHeaders(map[string]string{"Authorization": "Bearer glsa_test"})
	defer tool.client.CloseIdleConnections()

	args, _ := json.Marshal(map[string]string{"url": server.URL})
	result := tool.Invoke(context.Background(), args)
	if result.Status != StatusSuccess {
		t.Fatalf("status = %s: %s", result.Status, result.Error)
	}
	if gotAuth != "Bearer glsa_test" {
		t.Errorf("Authorization = %q", gotAuth)
	}
}
