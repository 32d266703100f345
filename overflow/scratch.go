// Scratch storage for oversized tool results.
//
// Each conversation owns one scratch scope: a uniquely named directory
// that is guaranteed to be removed when the scope is released, no matter
// how the conversation ended. Files inside it are keyed by the sanitized
// (tool name, tool call ID) pair, so concurrent saves for different tool
// calls in the same scope never collide.

package overflow

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sync"

	radix "github.com/armon/go-radix"
	"github.com/google/uuid"
)

// sanitizePattern matches every character that may not appear in a scratch
// file name. Replacing them defends against path traversal in tool names.
var sanitizePattern = regexp.MustCompile(`[^A-Za-z0-9_-]`)

// Record describes one saved overflow file.
type Record struct {
	Name  string // sanitized file name
	Path  string // absolute path on disk
	Bytes int    // content size at save time
}

// Scope is a conversation-scoped scratch directory.
// Acquire it at the start of a turn and release it with defer; Release is
// safe on every exit path and never returns an error.
type Scope struct {
	root   string // <base>/<uuid>, removed on release
	dir    string // <root>/tool_results, where files are written
	logger *slog.Logger

	mu    sync.Mutex
	index *radix.Tree // sanitized file name -> Record
}

// Acquire creates a fresh scratch scope under base.
func Acquire(base string, logger *slog.Logger) (*Scope, error) {
	if logger == nil {
		logger = slog.Default()
	}
	root := filepath.Join(base, uuid.NewString())
	dir := filepath.Join(root, "tool_results")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create tool result storage: %w", err)
	}
	return &Scope{
		root:   root,
		dir:    dir,
		logger: logger,
		index:  radix.New(),
	}, nil
}

// Dir returns the directory overflow files are written to.
func (s *Scope) Dir() string {
	return s.dir
}

// Release removes the scope's directory tree. Failures are logged and
// swallowed: cleanup must never abort an already-completed turn.
func (s *Scope) Release() {
	if err := os.RemoveAll(s.root); err != nil {
		s.logger.Warn("failed to cleanup tool result storage", "dir", s.root, "error", err)
		return
	}
	s.logger.Debug("cleaned up tool result storage", "dir", s.root)
}

// Save writes a tool result to the scope. The tool name and call ID are
// sanitized into the file name; is_json selects the extension. Returns the
// absolute file path, or "" and false when the write failed — failures are
// logged, never propagated.
func (s *Scope) Save(toolName, toolCallID, content string, isJSON bool) (string, bool) {
	safeName := sanitizePattern.ReplaceAllString(toolName, "_")
	safeID := sanitizePattern.ReplaceAllString(toolCallID, "_")
	extension := ".txt"
	if isJSON {
		extension = ".json"
	}

	fileName := safeName + "_" + safeID + extension
	path := filepath.Join(s.dir, fileName)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		s.logger.Warn("failed to save tool result to filesystem", "tool", toolName, "error", err)
		return "", false
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}

	s.mu.Lock()
	s.index.Insert(fileName, Record{Name: fileName, Path: abs, Bytes: len(content)})
	s.mu.Unlock()

	s.logger.Info("saved large tool result to filesystem", "path", abs)
	return abs, true
}

// List returns the records whose file names start with prefix, in
// lexicographic order. An empty prefix returns everything saved in this
// scope.
func (s *Scope) List(prefix string) []Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	var records []Record
	s.index.WalkPrefix(prefix, func(_ string, v interface{}) bool {
		records = append(records, v.(Record))
		return false
	})
	return records
}
