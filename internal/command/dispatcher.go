package command

import (
	"errors"
	"fmt"
)

// maxAliasRecursion bounds how many times expanding an alias may lead to
// running another alias before Dispatcher gives up (§4.H).
const maxAliasRecursion = 8

// ErrAliasRecursionTooDeep is returned when an alias expands into itself
// (directly or through a chain) more than maxAliasRecursion times.
var ErrAliasRecursionTooDeep = errors.New("alias recursion too deep")

// ErrUnknownCommand is returned by Dispatcher.RunCommand when no built-in
// command or alias matches the statement's first word.
var ErrUnknownCommand = errors.New("no such command")

// CommandError wraps a command-running failure with the name that failed,
// so callers and the error buffer can report "name: err" without every
// Command.Run needing to do so itself.
type CommandError struct {
	Name string
	Err  error
}

func (e *CommandError) Error() string { return fmt.Sprintf("%s: %s", e.Name, e.Err) }
func (e *CommandError) Unwrap() error  { return e.Err }

// Lookup resolves a command name to its descriptor. A Dispatcher's command
// table is supplied through this interface rather than a concrete map so
// callers can back it with whatever registry they already have.
type Lookup interface {
	LookupCommand(name string) (*Command, bool)
}

// CommandTable is the trivial map-backed Lookup implementation.
type CommandTable map[string]*Command

// LookupCommand implements Lookup.
func (t CommandTable) LookupCommand(name string) (*Command, bool) {
	c, ok := t[name]
	return c, ok
}

// Dispatcher parses and runs command statements, expanding aliases and
// driving the surrounding change-recording hooks the way run_command and
// run_commands do in the original implementation. It never imports
// internal/change itself; BeginChange/EndChange/RecordMacro are injected so
// this package stays independent of the editor's change-graph and macro
// machinery.
type Dispatcher struct {
	Commands Lookup
	Aliases  map[string]string
	Parser   *Parser

	// BeginChange and EndChange, if set, bracket the execution of each
	// command the way begin_change(NONE)/end_change() do around
	// handle_command in the original. Commands that only read state
	// (AllowInConfig-only commands run from a config file, queries) still
	// get the bracket; change recording itself decides whether anything
	// was actually touched.
	BeginChange func()
	EndChange   func()

	// RecordMacro, if set, is called with each fully-parsed statement
	// before it runs, so a recording macro captures what the user typed
	// (including through alias expansion) rather than re-deriving it from
	// side effects.
	RecordMacro func(argv []string)
}

// RunCommands parses text into statements (honoring Dispatcher.Parser's
// quoting/escaping/variable rules) and runs each in turn, stopping at the
// first error.
func (d *Dispatcher) RunCommands(text string) error {
	statements, err := d.Parser.Parse(text)
	if err != nil {
		return err
	}
	for _, argv := range statements {
		if len(argv) == 0 {
			continue
		}
		if err := d.RunCommand(argv); err != nil {
			return err
		}
	}
	return nil
}

// RunCommand runs one already-split statement, expanding an alias if argv[0]
// names one.
func (d *Dispatcher) RunCommand(argv []string) error {
	return d.handleCommand(argv, 0)
}

// handleCommand mirrors handle_command: it resolves argv[0] against the
// alias table first, re-parsing the alias's expansion and appending the
// caller's remaining args before recursing; only once argv[0] isn't an
// alias does it fall through to running the resolved builtin Command.
func (d *Dispatcher) handleCommand(argv []string, depth int) error {
	if depth > maxAliasRecursion {
		return ErrAliasRecursionTooDeep
	}
	name := argv[0]

	if expansion, ok := d.Aliases[name]; ok {
		statements, err := d.Parser.Parse(expansion)
		if err != nil {
			return &CommandError{Name: name, Err: err}
		}
		statements = trimEmptyStatements(statements)
		if len(statements) == 0 {
			return nil
		}
		// Every statement in the alias body runs; only the last one, the
		// one a bare single-statement alias is made of, receives the
		// caller's own trailing arguments appended.
		for _, stmt := range statements[:len(statements)-1] {
			if err := d.handleCommand(stmt, depth+1); err != nil {
				return err
			}
		}
		last := append(append([]string{}, statements[len(statements)-1]...), argv[1:]...)
		return d.handleCommand(last, depth+1)
	}

	cmd, ok := d.Commands.LookupCommand(name)
	if !ok {
		return &CommandError{Name: name, Err: ErrUnknownCommand}
	}

	if d.RecordMacro != nil {
		d.RecordMacro(argv)
	}

	args, err := DoParseArgs(cmd, argv[1:])
	if err != nil {
		return &CommandError{Name: name, Err: err}
	}

	if d.BeginChange != nil {
		d.BeginChange()
	}
	runErr := cmd.Run(args)
	if d.EndChange != nil {
		d.EndChange()
	}
	if runErr != nil {
		return &CommandError{Name: name, Err: runErr}
	}
	return nil
}

// trimEmptyStatements drops statements that parsed to zero tokens (e.g. a
// trailing ';' or blank alias body).
func trimEmptyStatements(statements [][]string) [][]string {
	out := statements[:0]
	for _, stmt := range statements {
		if len(stmt) > 0 {
			out = append(out, stmt)
		}
	}
	return out
}
