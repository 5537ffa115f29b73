package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"switchboard/internal/tool"
)

const maxFileBytes = 1_000_000

// readableExtensions is the allowlist of file types the tool will open.
var readableExtensions = map[string]bool{
	".txt": true, ".md": true, ".json": true, ".csv": true,
	".log": true, ".py": true, ".js": true, ".go": true,
	".html": true, ".css": true, ".yaml": true, ".yml": true,
	".toml": true,
}

// FileRead returns a read-only file tool jailed to root. Paths are resolved
// against root and may not escape it.
func FileRead(root string) tool.Tool {
	r := &fileReader{root: root}
	return tool.Tool{
		Name: "file_read",
		Description: "Read the contents of a text file. " +
			"Paths are relative to the configured file root. " +
			"Example: {\"path\": \"notes/plan.md\"}",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"path": {
					"type": "string",
					"description": "Path of the file to read"
				}
			},
			"required": ["path"],
			"additionalProperties": false
		}`),
		Timeout: 10 * time.Second,
		Handler: r.run,
	}
}

type fileReader struct {
	root string
}

func (f *fileReader) run(ctx context.Context, args json.RawMessage) (string, error) {
	var in struct {
		Path string `json:"path"`
	}
	if err := json.Unmarshal(args, &in); err != nil {
		return "", fmt.Errorf("parsing file input: %w", err)
	}

	resolved, err := f.resolve(in.Path)
	if err != nil {
		return "", err
	}

	info, err := os.Stat(resolved)
	if err != nil {
		return "", fmt.Errorf("file not found: %s", in.Path)
	}
	if info.IsDir() {
		return "", fmt.Errorf("path is a directory, not a file: %s", in.Path)
	}
	if info.Size() > maxFileBytes {
		return "", fmt.Errorf("file too large: %d bytes (max %d)", info.Size(), maxFileBytes)
	}
	if ext := strings.ToLower(filepath.Ext(resolved)); !readableExtensions[ext] {
		return "", fmt.Errorf("unsupported file type: %q", ext)
	}

	slog.Debug("file_read: reading", "path", resolved)
	data, err := os.ReadFile(resolved)
	if err != nil {
		return "", fmt.Errorf("reading file: %w", err)
	}
	return truncate(data), nil
}

// resolve joins path onto the root and rejects anything that escapes it.
func (f *fileReader) resolve(path string) (string, error) {
	root, err := filepath.Abs(f.root)
	if err != nil {
		return "", fmt.Errorf("resolving file root: %w", err)
	}
	joined := filepath.Join(root, path)
	rel, err := filepath.Rel(root, joined)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("access denied: path outside allowed directory")
	}
	return joined, nil
}
