package overflow

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestAcquireCreatesUniqueScopes(t *testing.T) {
	base := t.TempDir()

	a, err := Acquire(base, nil)
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	defer a.Release()

	b, err := Acquire(base, nil)
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	defer b.Release()

	if a.Dir() == b.Dir() {
		t.Error("scopes under the same base must not share a directory")
	}
	if filepath.Base(a.Dir()) != "tool_results" {
		t.Errorf("expected tool_results leaf directory, got %q", a.Dir())
	}
}

func TestScopeSaveAndList(t *testing.T) {
	scope, err := Acquire(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	defer scope.Release()

	path, ok := scope.Save("fetch_logs", "call_1", `{"lines": 3}`, true)
	if !ok {
		t.Fatal("Save failed")
	}
	if !strings.HasSuffix(path, "fetch_logs_call_1.json") {
		t.Errorf("expected sanitized .json file name, got %q", path)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read saved file: %v", err)
	}
	if string(content) != `{"lines": 3}` {
		t.Errorf("unexpected file content: %q", content)
	}

	if _, ok := scope.Save("query_metrics", "call_2", "plain text", false); !ok {
		t.Fatal("second Save failed")
	}

	records := scope.List("fetch_logs")
	if len(records) != 1 {
		t.Fatalf("expected 1 record for prefix, got %d", len(records))
	}
	if records[0].Bytes != len(`{"lines": 3}`) {
		t.Errorf("record must carry the content size, got %d", records[0].Bytes)
	}

	all := scope.List("")
	if len(all) != 2 {
		t.Errorf("expected 2 records for empty prefix, got %d", len(all))
	}
}

func TestScopeSaveSanitizesHostileNames(t *testing.T) {
	scope, err := Acquire(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	defer scope.Release()

	path, ok := scope.Save("../../etc/passwd", "call;1", "content", false)
	if !ok {
		t.Fatal("Save failed")
	}

	// The file must land inside the scope directory, not escape it.
	if filepath.Dir(path) != scope.Dir() {
		t.Errorf("file escaped the scope directory: %q", path)
	}
	name := filepath.Base(path)
	if name != "______etc_passwd_call_1.txt" {
		t.Errorf("unexpected sanitized file name: %q", name)
	}
}

func TestScopeReleaseRemovesEverything(t *testing.T) {
	base := t.TempDir()
	scope, err := Acquire(base, nil)
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}

	path, ok := scope.Save("fetch_logs", "call_1", "content", false)
	if !ok {
		t.Fatal("Save failed")
	}

	scope.Release()

	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("saved file must be removed on release")
	}
	if _, err := os.Stat(filepath.Dir(scope.Dir())); !os.IsNotExist(err) {
		t.Error("scope root must be removed on release")
	}
}

func TestScopeSaveAfterReleaseFails(t *testing.T) {
	scope, err := Acquire(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	scope.Release()

	path, ok := scope.Save("fetch_logs", "call_1", "content", false)
	if ok {
		t.Errorf("Save into a released scope must fail, got path %q", path)
	}
}

func TestScopeReleaseIsIdempotent(t *testing.T) {
	scope, err := Acquire(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}

	scope.Release()
	scope.Release() // must not panic or error
}
