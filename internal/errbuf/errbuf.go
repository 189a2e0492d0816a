// Package errbuf implements the editor's error/info side channel (§7):
// every non-fatal failure is recorded here rather than returned up to a
// caller that would otherwise have to decide how to surface it, and the
// status line renders whatever it finds on top.
package errbuf

import (
	"errors"
	"fmt"
)

// Message is one recorded error or info line, with an optional
// "file:line"-style location prefix.
type Message struct {
	Text string
	Loc  string
}

// String renders the message the way the status line does: "loc: text"
// when a location is present, otherwise just text.
func (m Message) String() string {
	if m.Loc == "" {
		return m.Text
	}
	return m.Loc + ": " + m.Text
}

// Located is implemented by error types that know the file:line or
// command-name prefix they should be reported under (ConfigError,
// CommandError-style wrappers).
type Located interface {
	Location() string
}

// ErrorBuffer accumulates status-line messages for one editor session.
// IsError and NrErrors track whether the most recent message (and how
// many since the buffer was last cleared) was an error rather than an
// informational one; nothing here is fatal — invariant violations panic
// instead of going through this type (§7).
type ErrorBuffer struct {
	IsError  bool
	NrErrors int
	Messages []Message
}

// Errorf records a formatted error message and flips IsError.
func (e *ErrorBuffer) Errorf(format string, args ...any) {
	e.Messages = append(e.Messages, Message{Text: fmt.Sprintf(format, args...)})
	e.IsError = true
	e.NrErrors++
}

// Infof records a formatted informational message without flipping
// IsError (info_msg in §7's table).
func (e *ErrorBuffer) Infof(format string, args ...any) {
	e.Messages = append(e.Messages, Message{Text: fmt.Sprintf(format, args...)})
	e.IsError = false
}

// Record files err as an error message, pulling a location prefix out of
// it when it implements Located. A nil err is a no-op.
func (e *ErrorBuffer) Record(err error) {
	if err == nil {
		return
	}
	loc := ""
	var l Located
	if errors.As(err, &l) {
		loc = l.Location()
	}
	e.Messages = append(e.Messages, Message{Text: err.Error(), Loc: loc})
	e.IsError = true
	e.NrErrors++
}

// Clear resets the buffer, keeping no history (the status line only ever
// shows the last message).
func (e *ErrorBuffer) Clear() {
	e.IsError = false
	e.NrErrors = 0
	e.Messages = nil
}

// Last returns the most recently recorded message, if any.
func (e *ErrorBuffer) Last() (Message, bool) {
	if len(e.Messages) == 0 {
		return Message{}, false
	}
	return e.Messages[len(e.Messages)-1], true
}

// IOError wraps a failed filesystem operation with the path it touched,
// the shape internal/fileio's load/save errors take (§7 "IO (load/save)").
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string { return fmt.Sprintf("%s %s: %s", e.Op, e.Path, e.Err) }
func (e *IOError) Unwrap() error { return e.Err }

// RegexError wraps a pattern compile failure (§7 "Regex compile").
type RegexError struct {
	Pattern string
	Err     error
}

func (e *RegexError) Error() string { return fmt.Sprintf("regex %q: %s", e.Pattern, e.Err) }
func (e *RegexError) Unwrap() error { return e.Err }

// ChildError wraps a spawned process's abnormal termination: Code holds
// a normal exit status (0..255), and Signaled marks a death by signal.
// internal/exec does not recover the signal number and leaves Code zero
// in that case.
type ChildError struct {
	Argv     []string
	Code     int
	Signaled bool
}

func (e *ChildError) Error() string {
	name := "<empty>"
	if len(e.Argv) > 0 {
		name = e.Argv[0]
	}
	if e.Signaled {
		return fmt.Sprintf("%s: killed by signal %d", name, e.Code)
	}
	return fmt.Sprintf("%s: exited with status %d", name, e.Code)
}

// NotFoundError wraps a failed lookup of a named resource (command,
// alias, compiler, built-in config blob).
type NotFoundError struct {
	Kind string
	Name string
}

func (e *NotFoundError) Error() string { return fmt.Sprintf("no such %s: %s", e.Kind, e.Name) }

// ConfigError wraps any error encountered while running one line of a
// config file, attaching the file:line prefix §6 requires ("Unknown
// commands in a config file error out with file:line prefix").
type ConfigError struct {
	File string
	Line int
	Err  error
}

func (e *ConfigError) Error() string { return e.Err.Error() }
func (e *ConfigError) Unwrap() error { return e.Err }
func (e *ConfigError) Location() string {
	return fmt.Sprintf("%s:%d", e.File, e.Line)
}
