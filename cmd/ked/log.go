package main

import (
	"io"
	"log"
	"os"

	"github.com/ked-editor/ked/internal/exec"
)

// logState mirrors cmd/soc/main.go's logState: package-level,
// restorable developer-facing trace output, kept separate from
// internal/errbuf's status-line channel (§4.0.a).
var logs logState

func init() { logs.setOutput(os.Stderr) }

type logState struct {
	out   io.Writer
	flags int
}

// restore returns a func that puts log output back the way it was
// before a temporary redirect (e.g. around a spawned child that wants
// the real stderr), the way cmd/soc/main.go's logState.restore works.
func (st logState) restore() func() {
	return func() {
		if st.out == nil {
			st.out = os.Stderr
		}
		log.SetOutput(st.out)
		log.SetFlags(st.flags)
		logs = st
	}
}

func (st *logState) setOutput(out io.Writer) *logState {
	log.SetOutput(out)
	st.out = out
	return st
}

// addPrefix tags every subsequent log line with prefix, used when
// running a named subcommand's startup trace through the same log
// stream (e.g. a config file's "include" chain).
func (st *logState) addPrefix(prefix string) *logState {
	return st.setOutput(exec.NewLinePrefixer(prefix, st.out))
}
