package exec_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ked-editor/ked/internal/exec"
)

func TestLinePrefixerWholeLines(t *testing.T) {
	var out strings.Builder
	p := exec.NewLinePrefixer("gcc: ", &out)
	_, err := p.Write([]byte("error one\nerror two\n"))
	assert.NoError(t, err)
	assert.Equal(t, "gcc: error one\ngcc: error two\n", out.String())
}

func TestLinePrefixerSplitAcrossWrites(t *testing.T) {
	var out strings.Builder
	p := exec.NewLinePrefixer("> ", &out)
	p.Write([]byte("partial "))
	p.Write([]byte("line\nnext\n"))
	assert.Equal(t, "> partial line\n> next\n", out.String())
}

func TestLinePrefixerFlushNoTrailingPrefix(t *testing.T) {
	var out strings.Builder
	p := exec.NewLinePrefixer("> ", &out)
	p.Write([]byte("no newline at end"))
	require := assert.New(t)
	require.NoError(p.Flush())
	require.Equal("> no newline at end", out.String())
}
