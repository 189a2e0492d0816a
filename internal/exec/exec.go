// Package exec spawns child processes (filters, compilers, shell
// commands), translating their exit status into errbuf-shaped errors and
// yielding the controlling terminal to children that need one (§5,
// §5.c). It also parses compiler error-format output and "path:line:col"
// jump targets into FileLocation values (§6.b supplement).
package exec

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"strconv"
	"strings"

	"github.com/ked-editor/ked/internal/errbuf"
	"github.com/ked-editor/ked/internal/termio"
)

// Flags mirror the original's SpawnFlags bitset, controlling how a
// child's standard streams and the terminal are handled.
type Flags uint8

const (
	// Quiet redirects the child's stdin/stdout to /dev/null instead of
	// letting it share the terminal.
	Quiet Flags = 1 << iota
	// Prompt mirrors the original's SPAWN_PROMPT bit (wait for a
	// keypress after a non-quiet child exits). No function in this
	// package reads it: Spawn and Source return as soon as the child exits.
	Prompt
	// ReadStdout mirrors the original's SPAWN_READ_STDOUT bit. No
	// function in this package reads it: Filter always captures stdout.
	ReadStdout
)

// Runner executes child processes on behalf of the editor, yielding and
// reclaiming the controlling terminal around any non-Quiet command the
// way spawn()/spawn_source()/yield_terminal()/resume_terminal() do.
type Runner struct {
	Term *termio.Term
}

// NewRunner wraps t, the editor's terminal controller.
func NewRunner(t *termio.Term) *Runner {
	return &Runner{Term: t}
}

func (r *Runner) yield(quiet bool) error {
	if quiet || r.Term == nil {
		return nil
	}
	r.Term.SetBracketedPaste(false)
	return r.Term.Restore()
}

func (r *Runner) resume(quiet bool) error {
	if quiet || r.Term == nil {
		return nil
	}
	err := r.Term.EnterRaw()
	r.Term.SetBracketedPaste(true)
	return err
}

// childError translates a *exec.ExitError (or nil, for success) into the
// ChildError shape §6/§7 describe: a non-zero normal exit status in
// Code, or, for a death by signal, Signaled set with Code left zero.
func childError(argv []string, err error) error {
	if err == nil {
		return nil
	}
	exitErr, ok := err.(*exec.ExitError)
	if !ok {
		return err
	}
	ws := exitErr.ProcessState
	if ws.ExitCode() < 0 {
		// Negative ExitCode means the process was killed by a signal;
		// Go's os.ProcessState doesn't expose the signal number
		// portably outside syscall.WaitStatus, so this is reported
		// generically rather than reaching for a GOOS-specific type
		// assertion the way the original's `ret >> 8` does exactly.
		return &errbuf.ChildError{Argv: argv, Signaled: true}
	}
	if ws.ExitCode() == 0 {
		return nil
	}
	return &errbuf.ChildError{Argv: argv, Code: ws.ExitCode()}
}

// Spawn runs argv, connecting its stdio to the editor's own (after
// yielding the controlling terminal unless flags has Quiet), and returns
// any abnormal-exit error.
func (r *Runner) Spawn(argv []string, flags Flags) error {
	if len(argv) == 0 {
		return fmt.Errorf("exec: empty command")
	}
	quiet := flags&Quiet != 0
	if err := r.yield(quiet); err != nil {
		return err
	}
	defer r.resume(quiet)

	cmd := exec.Command(argv[0], argv[1:]...)
	if quiet {
		cmd.Stdin, cmd.Stdout, cmd.Stderr = nil, nil, nil
	} else {
		cmd.Stdin, cmd.Stdout, cmd.Stderr = os.Stdin, os.Stdout, os.Stderr
	}
	return childError(argv, cmd.Run())
}

// Filter runs argv with input piped to its stdin and its stdout captured,
// the way spawn_filter() pipes a selection through an external command.
func (r *Runner) Filter(argv []string, input []byte) (output []byte, err error) {
	if len(argv) == 0 {
		return nil, fmt.Errorf("exec: empty command")
	}
	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Stdin = bytes.NewReader(input)
	var out bytes.Buffer
	cmd.Stdout = &out
	runErr := cmd.Run()
	return out.Bytes(), childError(argv, runErr)
}

// Source runs argv and returns its captured stdout, for commands whose
// output should be read back into the buffer (spawn_source()).
func (r *Runner) Source(argv []string, flags Flags) (output []byte, err error) {
	if len(argv) == 0 {
		return nil, fmt.Errorf("exec: empty command")
	}
	quiet := flags&Quiet != 0
	if err := r.yield(quiet); err != nil {
		return nil, err
	}
	defer r.resume(quiet)

	cmd := exec.Command(argv[0], argv[1:]...)
	if quiet {
		cmd.Stdin = nil
	} else {
		cmd.Stdin = os.Stdin
	}
	cmd.Stderr = os.Stderr
	var out bytes.Buffer
	cmd.Stdout = &out
	runErr := cmd.Run()
	return out.Bytes(), childError(argv, runErr)
}

// FileLocation is a parsed jump target (§6.b): a filename with an
// optional line and column, or a search pattern instead of a position.
type FileLocation struct {
	Filename string
	Line     int
	Column   int
	Pattern  string
}

// ParseFileLocation accepts a bare "path", "path:line", or
// "path:line:col" string, as produced by `grep -n`/compiler output and
// consumed by a jump-to-error command, grounded on file-location.c's
// FileLocation fields (pattern is left empty; callers building a
// tag-style jump set it themselves).
func ParseFileLocation(s string) (FileLocation, error) {
	parts := strings.Split(s, ":")
	loc := FileLocation{Filename: parts[0]}
	if loc.Filename == "" {
		return FileLocation{}, fmt.Errorf("exec: empty filename in location %q", s)
	}
	if len(parts) > 1 && parts[1] != "" {
		n, err := strconv.Atoi(parts[1])
		if err != nil {
			return FileLocation{}, fmt.Errorf("exec: invalid line in location %q: %w", s, err)
		}
		loc.Line = n
	}
	if len(parts) > 2 && parts[2] != "" {
		n, err := strconv.Atoi(parts[2])
		if err != nil {
			return FileLocation{}, fmt.Errorf("exec: invalid column in location %q: %w", s, err)
		}
		loc.Column = n
	}
	return loc, nil
}

// ErrorFormat is a compiled error-message pattern, pairing a POSIX ERE
// with the submatch indices that name its filename/line/column/message
// groups, mirroring the original's ErrorFormat (regexp + msg_idx/
// file_idx/line_idx/column_idx).
type ErrorFormat struct {
	Pattern       string
	FileIdx       int // -1 if not captured
	LineIdx       int
	ColumnIdx     int
	MessageIdx    int
	Ignore        bool // matches are discarded rather than reported (e.g. "In function ..." noise)

	re *regexp.Regexp
}

// Compile parses f.Pattern as a POSIX ERE, caching the result.
func (f *ErrorFormat) Compile() error {
	re, err := regexp.CompilePOSIX(f.Pattern)
	if err != nil {
		return &errbuf.RegexError{Pattern: f.Pattern, Err: err}
	}
	f.re = re
	return nil
}

// ParsedError is one line of captured compiler output, with an attached
// FileLocation when the format specified file/line/column groups.
type ParsedError struct {
	Message string
	Loc     *FileLocation
}

// Parse matches line against f, returning ok=false when it doesn't
// match. A matching line with Ignore set reports ok=true with a nil
// *ParsedError, the way handle_error_msg's `if (p->ignore) return;` does
// (found and deliberately swallowed).
func (f *ErrorFormat) Parse(line string) (result *ParsedError, ok bool, err error) {
	if f.re == nil {
		if err := f.Compile(); err != nil {
			return nil, false, err
		}
	}
	m := f.re.FindStringSubmatchIndex(line)
	if m == nil {
		return nil, false, nil
	}
	if f.Ignore {
		return nil, true, nil
	}

	group := func(idx int) (string, bool) {
		if idx < 0 || 2*idx+1 >= len(m) || m[2*idx] < 0 {
			return "", false
		}
		return line[m[2*idx]:m[2*idx+1]], true
	}

	msgIdx := f.MessageIdx
	if _, had := group(msgIdx); !had {
		msgIdx = 0
	}
	message, _ := group(msgIdx)

	res := &ParsedError{Message: message}
	if filename, had := group(f.FileIdx); had {
		loc := &FileLocation{Filename: filename}
		if lineStr, had := group(f.LineIdx); had {
			if n, err := strconv.Atoi(lineStr); err == nil {
				loc.Line = n
			}
		}
		if colStr, had := group(f.ColumnIdx); had {
			if n, err := strconv.Atoi(colStr); err == nil {
				loc.Column = n
			}
		}
		res.Loc = loc
	}
	return res, true, nil
}

// ParseErrors runs every formats entry against each line of output in
// turn (first match wins per line), the way handle_error_msg scans
// c->error_formats, and tabs are folded to spaces first since compiler
// output sometimes embeds them in a column position a terminal would
// otherwise misrender.
func ParseErrors(output []byte, formats []*ErrorFormat) ([]ParsedError, error) {
	var results []ParsedError
	for _, raw := range bytes.Split(output, []byte("\n")) {
		line := strings.ReplaceAll(string(bytes.TrimRight(raw, "\r")), "\t", " ")
		if line == "" {
			continue
		}
		matched := false
		for _, f := range formats {
			res, ok, err := f.Parse(line)
			if err != nil {
				return results, err
			}
			if !ok {
				continue
			}
			matched = true
			if res != nil {
				results = append(results, *res)
			}
			break
		}
		if !matched {
			results = append(results, ParsedError{Message: line})
		}
	}
	return results, nil
}
