package fileio_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ked-editor/ked/internal/fileio"
)

func TestDetectBOMUTF8(t *testing.T) {
	enc, rest, had := fileio.DetectBOM([]byte("\xEF\xBB\xBFhello"))
	assert.Equal(t, fileio.UTF8, enc)
	assert.True(t, had)
	assert.Equal(t, []byte("hello"), rest)
}

func TestDetectBOMNone(t *testing.T) {
	enc, rest, had := fileio.DetectBOM([]byte("plain text"))
	assert.Equal(t, fileio.UTF8, enc)
	assert.False(t, had)
	assert.Equal(t, []byte("plain text"), rest)
}

func TestUTF32RoundTrip(t *testing.T) {
	orig := []byte("int x;\n")
	enc, err := fileio.Encode(orig, fileio.UTF32LE)
	require.NoError(t, err)
	back, err := fileio.Decode(enc, fileio.UTF32LE)
	require.NoError(t, err)
	assert.Equal(t, orig, back)
}

func TestSaveLoadRoundTripLF(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.txt")
	content := []byte("int x;\n")

	require.NoError(t, fileio.Save(path, content, fileio.SaveOptions{}))
	data, enc, hadBOM, err := fileio.Load(path)
	require.NoError(t, err)
	assert.Equal(t, content, data)
	assert.Equal(t, fileio.UTF8, enc)
	assert.False(t, hadBOM)
}

func TestSaveCRLF(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.txt")
	require.NoError(t, fileio.Save(path, []byte("a\nb\n"), fileio.SaveOptions{CRLF: true}))
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "a\r\nb\r\n", string(raw))
}

func TestWatcherStartsUnchanged(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.txt")
	require.NoError(t, os.WriteFile(path, []byte("one"), 0644))

	w, err := fileio.NewWatcher(path)
	require.NoError(t, err)
	defer w.Close()

	assert.False(t, w.Changed())
}
