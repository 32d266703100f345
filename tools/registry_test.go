package tools

import (
	"context"
	"encoding/json"
	"reflect"
	"testing"
)

// fakeTool is a scriptable tool for registry and executor tests.
type fakeTool struct {
	BaseTool
	name        string
	description string
	validateErr error
	results     []StructuredToolResult
	calls       int
}

func (t *fakeTool) Metadata() ToolMetadata {
	return ToolMetadata{
		Name:        t.name,
		Description: t.description,
		Parameters: []ToolParameter{
			{Name: "query", ParamType: "string", Description: "what to fetch", Required: true},
		},
	}
}

func (t *fakeTool) Validate(args json.RawMessage) error {
	return t.validateErr
}

func (t *fakeTool) Invoke(ctx context.Context, args json.RawMessage) StructuredToolResult {
	idx := t.calls
	t.calls++
	if idx >= len(t.results) {
		idx = len(t.results) - 1
	}
	return t.results[idx]
}

func TestRegistryRegisterAndGet(t *testing.T) {
	registry := NewRegistry()
	tool := &fakeTool{name: "fetch_logs", description: "fetch pod logs"}

	if err := registry.Register(tool); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	got, ok := registry.Get("fetch_logs")
	if !ok {
		t.Fatal("registered tool not found")
	}
	if got.Metadata().Name != "fetch_logs" {
		t.Errorf("got tool %q, want fetch_logs", got.Metadata().Name)
	}

	if _, ok := registry.Get("missing"); ok {
		t.Error("Get returned a tool for an unregistered name")
	}
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	registry := NewRegistry()
	if err := registry.Register(&fakeTool{name: "fetch_logs"}); err != nil {
		t.Fatalf("first Register failed: %v", err)
	}
	if err := registry.Register(&fakeTool{name: "fetch_logs"}); err == nil {
		t.Error("expected error registering duplicate tool name")
	}
}

func TestRegistryNamesSorted(t *testing.T) {
	registry := NewRegistry()
	for _, name := range []string{"zeta", "alpha", "mid"} {
		if err := registry.Register(&fakeTool{name: name}); err != nil {
			t.Fatalf("Register %s failed: %v", name, err)
		}
	}

	want := []string{"alpha", "mid", "zeta"}
	if got := registry.Names(); !reflect.DeepEqual(got, want) {
		t.Errorf("Names() = %v, want %v", got, want)
	}
}

func TestRegistryDefinitions(t *testing.T) {
	registry := NewRegistry()
	if err := registry.Register(&fakeTool{name: "b_tool", description: "second"}); err != nil {
		t.Fatal(err)
	}
	if err := registry.Register(&fakeTool{name: "a_tool", description: "first"}); err != nil {
		t.Fatal(err)
	}

	defs := registry.Definitions()
	if len(defs) != 2 {
		t.Fatalf("got %d definitions, want 2", len(defs))
	}
	if defs[0].Name != "a_tool" || defs[1].Name != "b_tool" {
		t.Errorf("definitions not sorted by name: %s, %s", defs[0].Name, defs[1].Name)
	}
	if defs[0].Description != "first" {
		t.Errorf("definition description = %q, want first", defs[0].Description)
	}

	params := defs[0].Parameters
	if params["type"] != "object" {
		t.Errorf("schema type = %v, want object", params["type"])
	}
	required, ok := params["required"].([]string)
	if !ok || len(required) != 1 || required[0] != "query" {
		t.Errorf("schema required = %v, want [query]", params["required"])
	}
}
