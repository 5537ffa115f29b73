package tools

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pathArgs(t *testing.T, path string) json.RawMessage {
	t.Helper()
	args, err := json.Marshal(map[string]string{"path": path})
	require.NoError(t, err)
	return args
}

func TestFileRead_ReadsWithinRoot(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "notes.md"), []byte("# hello"), 0o600))

	fr := FileRead(root)
	got, err := fr.Handler(context.Background(), pathArgs(t, "notes.md"))
	require.NoError(t, err)
	assert.Equal(t, "# hello", got)
}

func TestFileRead_RejectsEscape(t *testing.T) {
	root := t.TempDir()
	fr := FileRead(root)

	for _, path := range []string{"../outside.txt", "../../etc/passwd", "a/../../b.txt"} {
		_, err := fr.Handler(context.Background(), pathArgs(t, path))
		require.Error(t, err, path)
		assert.Contains(t, err.Error(), "access denied")
	}
}

func TestFileRead_RejectsUnsupportedExtension(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "binary.bin"), []byte{0x00}, 0o600))

	fr := FileRead(root)
	_, err := fr.Handler(context.Background(), pathArgs(t, "binary.bin"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported file type")
}

func TestFileRead_MissingFile(t *testing.T) {
	fr := FileRead(t.TempDir())
	_, err := fr.Handler(context.Background(), pathArgs(t, "nope.txt"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "file not found")
}

func TestFileRead_RejectsDirectory(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, "sub.txt"), 0o750))

	fr := FileRead(root)
	_, err := fr.Handler(context.Background(), pathArgs(t, "sub.txt"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "directory")
}
