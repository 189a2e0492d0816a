package exec_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ked-editor/ked/internal/exec"
)

func TestParseFileLocationBareFilename(t *testing.T) {
	loc, err := exec.ParseFileLocation("main.go")
	require.NoError(t, err)
	assert.Equal(t, exec.FileLocation{Filename: "main.go"}, loc)
}

func TestParseFileLocationLineAndColumn(t *testing.T) {
	loc, err := exec.ParseFileLocation("main.go:42:7")
	require.NoError(t, err)
	assert.Equal(t, "main.go", loc.Filename)
	assert.Equal(t, 42, loc.Line)
	assert.Equal(t, 7, loc.Column)
}

func TestParseFileLocationLineOnly(t *testing.T) {
	loc, err := exec.ParseFileLocation("main.go:42")
	require.NoError(t, err)
	assert.Equal(t, 42, loc.Line)
	assert.Equal(t, 0, loc.Column)
}

func TestParseFileLocationEmptyFilenameErrors(t *testing.T) {
	_, err := exec.ParseFileLocation(":42")
	assert.Error(t, err)
}

func TestParseFileLocationBadLineErrors(t *testing.T) {
	_, err := exec.ParseFileLocation("main.go:abc")
	assert.Error(t, err)
}

func gccFormat() *exec.ErrorFormat {
	return &exec.ErrorFormat{
		Pattern:    `^([^:]+):([0-9]+):([0-9]+): (error|warning): (.+)$`,
		FileIdx:    1,
		LineIdx:    2,
		ColumnIdx:  3,
		MessageIdx: 5,
	}
}

func TestErrorFormatParseMatch(t *testing.T) {
	f := gccFormat()
	res, ok, err := f.Parse("main.c:10:5: error: expected ';'")
	require.NoError(t, err)
	require.True(t, ok)
	require.NotNil(t, res)
	assert.Equal(t, "expected ';'", res.Message)
	require.NotNil(t, res.Loc)
	assert.Equal(t, "main.c", res.Loc.Filename)
	assert.Equal(t, 10, res.Loc.Line)
	assert.Equal(t, 5, res.Loc.Column)
}

func TestErrorFormatParseNoMatch(t *testing.T) {
	f := gccFormat()
	_, ok, err := f.Parse("some unrelated line")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestErrorFormatIgnore(t *testing.T) {
	f := &exec.ErrorFormat{Pattern: `^In file included from`, Ignore: true}
	res, ok, err := f.Parse("In file included from foo.h")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Nil(t, res)
}

func TestParseErrorsMixedLines(t *testing.T) {
	output := []byte("main.c:10:5: error: expected ';'\nsome plain note\n")
	results, err := exec.ParseErrors(output, []*exec.ErrorFormat{gccFormat()})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "expected ';'", results[0].Message)
	assert.Equal(t, "some plain note", results[1].Message)
	assert.Nil(t, results[1].Loc)
}

func TestFilterPipesThroughChild(t *testing.T) {
	r := exec.NewRunner(nil)
	out, err := r.Filter([]string{"cat"}, []byte("hello\n"))
	require.NoError(t, err)
	assert.Equal(t, "hello\n", string(out))
}

func TestFilterNonZeroExit(t *testing.T) {
	r := exec.NewRunner(nil)
	_, err := r.Filter([]string{"sh", "-c", "exit 3"}, nil)
	assert.Error(t, err)
}
