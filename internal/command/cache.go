package command

import "strings"

// CachedCommand is a pre-resolved, pre-parsed statement: the Command it
// names and the Args already split from its argv. Binding a key sequence to
// one of these (§4.I) skips re-parsing and re-resolving the statement text
// on every keystroke.
//
// Only statements simple enough that re-running them can never behave
// differently are eligible: a single statement (no ';'), with no '$'
// variable reference (whose expansion could change between runs) and no
// alias indirection, naming a real Command whose arguments parse cleanly.
type CachedCommand struct {
	Command *Command
	Args    *Args
}

// NewCachedCommand attempts to cache raw as a single command statement
// against the given Dispatcher. It returns (nil, false) when raw isn't
// eligible for caching; ok is false rather than an error because
// ineligibility (an alias, a variable reference, multiple statements) isn't
// a failure, just a statement the binder must re-parse on every invocation
// instead.
func NewCachedCommand(d *Dispatcher, raw string) (*CachedCommand, bool) {
	if strings.ContainsRune(raw, '$') {
		return nil, false
	}

	statements, err := d.Parser.Parse(raw)
	if err != nil {
		return nil, false
	}
	statements = trimEmptyStatements(statements)
	if len(statements) != 1 {
		return nil, false
	}
	argv := statements[0]

	if _, isAlias := d.Aliases[argv[0]]; isAlias {
		return nil, false
	}
	cmd, ok := d.Commands.LookupCommand(argv[0])
	if !ok {
		return nil, false
	}
	args, err := DoParseArgs(cmd, argv[1:])
	if err != nil {
		return nil, false
	}
	return &CachedCommand{Command: cmd, Args: args}, true
}

// Run executes the cached command directly, bypassing alias lookup and
// argument re-parsing, but still bracketed the way a freshly dispatched
// command is.
func (c *CachedCommand) Run(d *Dispatcher) error {
	if d.RecordMacro != nil {
		d.RecordMacro(append([]string{c.Command.Name}, c.Args.Positional...))
	}
	if d.BeginChange != nil {
		d.BeginChange()
	}
	err := c.Command.Run(c.Args)
	if d.EndChange != nil {
		d.EndChange()
	}
	if err != nil {
		return &CommandError{Name: c.Command.Name, Err: err}
	}
	return nil
}
