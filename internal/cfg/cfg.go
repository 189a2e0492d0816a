// Package cfg runs config-file lines through internal/command's parser
// and dispatcher, and holds the editor's Option values (§4.0.c).
package cfg

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/ked-editor/ked/internal/command"
	"github.com/ked-editor/ked/internal/errbuf"
)

// Kind identifies which field of an OptionValue is live.
type Kind int

const (
	KindBool Kind = iota
	KindInt
	KindString
	KindEnum
)

// OptionValue is the typed union dte's options.h table represents with a
// bare C union plus a type tag: exactly one of Bool/Int/Str is
// meaningful, selected by Kind. Enum values are stored as strings
// restricted to Choices.
type OptionValue struct {
	Kind    Kind
	Bool    bool
	Int     int
	Str     string
	Choices []string // valid values when Kind == KindEnum
}

func (v OptionValue) String() string {
	switch v.Kind {
	case KindBool:
		if v.Bool {
			return "true"
		}
		return "false"
	case KindInt:
		return strconv.Itoa(v.Int)
	default:
		return v.Str
	}
}

// Parse sets v's value from a textual form the way set_option's value
// parsing does, validating bool/int syntax and enum membership.
func (v *OptionValue) Parse(text string) error {
	switch v.Kind {
	case KindBool:
		b, err := strconv.ParseBool(text)
		if err != nil {
			return fmt.Errorf("cfg: invalid boolean value %q", text)
		}
		v.Bool = b
	case KindInt:
		n, err := strconv.Atoi(text)
		if err != nil {
			return fmt.Errorf("cfg: invalid integer value %q", text)
		}
		v.Int = n
	case KindEnum:
		for _, c := range v.Choices {
			if c == text {
				v.Str = text
				return nil
			}
		}
		return fmt.Errorf("cfg: invalid value %q, expected one of %s", text, strings.Join(v.Choices, "|"))
	default:
		v.Str = text
	}
	return nil
}

// Options is the editor's named option set, keyed the way
// get_option_value_string/collect_options look values up by name.
type Options map[string]*OptionValue

// Set parses text into the named option, mirroring set_option.
func (o Options) Set(name, text string) error {
	v, ok := o[name]
	if !ok {
		return &errbuf.NotFoundError{Kind: "option", Name: name}
	}
	return v.Parse(text)
}

// Toggle flips a KindBool option, mirroring toggle_option.
func (o Options) Toggle(name string) error {
	v, ok := o[name]
	if !ok {
		return &errbuf.NotFoundError{Kind: "option", Name: name}
	}
	if v.Kind != KindBool {
		return fmt.Errorf("cfg: %q is not a boolean option", name)
	}
	v.Bool = !v.Bool
	return nil
}

// Dump renders every option as "set name value" statements, sorted by
// name for deterministic output, satisfying the parse/dump round-trip
// property (§8 property 7): feeding Dump's output back through Set via
// the same command dispatcher reproduces the same Options.
func (o Options) Dump() string {
	names := make([]string, 0, len(o))
	for name := range o {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		fmt.Fprintf(&b, "set %s %s\n", name, quoteIfNeeded(o[name].String()))
	}
	return b.String()
}

func quoteIfNeeded(s string) string {
	if s == "" || strings.ContainsAny(s, " \t\"'") {
		return strconv.Quote(s)
	}
	return s
}

// Blobs is a compiled-in config-text registry ("include -b NAME"),
// populated by a caller with go:embed'd *.ked files the way a production
// config directory ships syntax/binds/compilers/filetypes.
type Blobs map[string]string

// Runner feeds config-file text through a command.Dispatcher one
// statement-bearing line at a time, attaching a file:line prefix to any
// error the way a config file's handle_command wrapper does.
type Runner struct {
	Dispatcher *command.Dispatcher
	Blobs      Blobs
}

// NewRunner wires d as the statement executor.
func NewRunner(d *command.Dispatcher, blobs Blobs) *Runner {
	return &Runner{Dispatcher: d, Blobs: blobs}
}

// RunText runs every non-blank, non-comment line of text as one command,
// stopping at the first error. filename is used only for error location
// prefixes ("config" for a synthetic/anonymous source).
func (r *Runner) RunText(filename, text string) error {
	scanner := bufio.NewScanner(strings.NewReader(text))
	line := 0
	for scanner.Scan() {
		line++
		raw := scanner.Text()
		trimmed := strings.TrimSpace(raw)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		if err := r.runLine(filename, line, trimmed); err != nil {
			return err
		}
	}
	return scanner.Err()
}

// RunFile reads path from disk and runs it as a config file, the
// non-builtin counterpart to "include -b NAME".
func (r *Runner) RunFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return &errbuf.IOError{Op: "open", Path: path, Err: err}
	}
	return r.RunText(path, string(data))
}

// RunBlob runs a compiled-in blob by name, the command-level equivalent
// of a config file's "include -b NAME" line.
func (r *Runner) RunBlob(name string) error {
	blob, ok := r.Blobs[name]
	if !ok {
		return &errbuf.NotFoundError{Kind: "builtin config", Name: name}
	}
	return r.RunText(name, blob)
}

func (r *Runner) runLine(filename string, line int, text string) error {
	if rest, ok := strings.CutPrefix(text, "include -b "); ok {
		name := strings.TrimSpace(rest)
		blob, ok := r.Blobs[name]
		if !ok {
			return &errbuf.ConfigError{File: filename, Line: line, Err: &errbuf.NotFoundError{Kind: "builtin config", Name: name}}
		}
		if err := r.RunText(name, blob); err != nil {
			return &errbuf.ConfigError{File: filename, Line: line, Err: err}
		}
		return nil
	}
	if err := r.Dispatcher.RunCommands(text); err != nil {
		return &errbuf.ConfigError{File: filename, Line: line, Err: err}
	}
	return nil
}
