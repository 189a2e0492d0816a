package command_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ked-editor/ked/internal/command"
)

func TestParseQuotingAndEscapes(t *testing.T) {
	p := &command.Parser{}
	stmts, err := p.Parse(`insert "line1\nline2" 'raw $x'`)
	require.NoError(t, err)
	require.Len(t, stmts, 1)
	assert.Equal(t, []string{"insert", "line1\nline2", "raw $x"}, stmts[0])
}

func TestParseStatementsSeparatedBySemicolon(t *testing.T) {
	p := &command.Parser{}
	stmts, err := p.Parse("left; right ; up")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"left"}, {"right"}, {"up"}}, stmts)
}

func TestParseUnclosedQuoteErrors(t *testing.T) {
	p := &command.Parser{}
	_, err := p.Parse(`insert "unterminated`)
	assert.Error(t, err)
}

func TestParseVariableExpansion(t *testing.T) {
	p := &command.Parser{Expand: func(name string) (string, bool) {
		if name == "HOME" {
			return "/home/dev", true
		}
		return "", false
	}}
	stmts, err := p.Parse("open $HOME/file.txt $UNKNOWN")
	require.NoError(t, err)
	assert.Equal(t, []string{"open", "/home/dev/file.txt", ""}, stmts[0])
}

func TestParseTildeExpansion(t *testing.T) {
	p := &command.Parser{ExpandTildeSlash: true, HomeDir: "/home/dev"}
	stmts, err := p.Parse("open ~/file.txt")
	require.NoError(t, err)
	assert.Equal(t, "/home/dev/file.txt", stmts[0][1])
}

func TestDoParseArgsFlagsAndPositionals(t *testing.T) {
	cmd := &command.Command{Name: "replace", Flags: "gic", MinArgs: 2, MaxArgs: 2}
	args, err := command.DoParseArgs(cmd, []string{"-gi", "foo", "bar"})
	require.NoError(t, err)
	assert.True(t, args.HasFlag('g'))
	assert.True(t, args.HasFlag('i'))
	assert.False(t, args.HasFlag('c'))
	assert.Equal(t, []string{"foo", "bar"}, args.Positional)
}

func TestDoParseArgsFlagTakingValue(t *testing.T) {
	cmd := &command.Command{Name: "shift", Flags: "n="}
	args, err := command.DoParseArgs(cmd, []string{"-n", "4"})
	require.NoError(t, err)
	assert.Equal(t, "4", args.Flag('n'))
}

func TestDoParseArgsInvalidOption(t *testing.T) {
	cmd := &command.Command{Name: "save", Flags: "f"}
	_, err := command.DoParseArgs(cmd, []string{"-z"})
	var argErr *command.ArgError
	require.ErrorAs(t, err, &argErr)
	assert.Equal(t, command.ArgErrInvalidOption, argErr.Kind)
}

func TestDoParseArgsTooFewArguments(t *testing.T) {
	cmd := &command.Command{Name: "open", MinArgs: 1, MaxArgs: 1}
	_, err := command.DoParseArgs(cmd, nil)
	var argErr *command.ArgError
	require.ErrorAs(t, err, &argErr)
	assert.Equal(t, command.ArgErrTooFewArguments, argErr.Kind)
}

func TestDispatcherRunsCommand(t *testing.T) {
	var got []string
	table := command.CommandTable{
		"echo": {Name: "echo", MinArgs: 1, MaxArgs: command.MaxArgsUnlimited,
			Run: func(a *command.Args) error { got = a.Positional; return nil }},
	}
	d := &command.Dispatcher{Commands: table, Parser: &command.Parser{}}
	require.NoError(t, d.RunCommands("echo a b c"))
	assert.Equal(t, []string{"a", "b", "c"}, got)
}

func TestDispatcherUnknownCommand(t *testing.T) {
	d := &command.Dispatcher{Commands: command.CommandTable{}, Parser: &command.Parser{}}
	err := d.RunCommands("nope")
	assert.ErrorIs(t, err, command.ErrUnknownCommand)
}

func TestDispatcherExpandsAliasWithTrailingArgs(t *testing.T) {
	var got []string
	table := command.CommandTable{
		"search": {Name: "search", MinArgs: 1, MaxArgs: 1,
			Run: func(a *command.Args) error { got = a.Positional; return nil }},
	}
	d := &command.Dispatcher{
		Commands: table,
		Aliases:  map[string]string{"find": "search"},
		Parser:   &command.Parser{},
	}
	require.NoError(t, d.RunCommands("find needle"))
	assert.Equal(t, []string{"needle"}, got)
}

func TestDispatcherAliasRecursionTooDeep(t *testing.T) {
	d := &command.Dispatcher{
		Commands: command.CommandTable{},
		Aliases:  map[string]string{"a": "a"},
		Parser:   &command.Parser{},
	}
	err := d.RunCommands("a")
	assert.ErrorIs(t, err, command.ErrAliasRecursionTooDeep)
}

func TestDispatcherBracketsChanges(t *testing.T) {
	var began, ended int
	table := command.CommandTable{
		"noop": {Name: "noop", Run: func(*command.Args) error { return nil }},
	}
	d := &command.Dispatcher{
		Commands:    table,
		Parser:      &command.Parser{},
		BeginChange: func() { began++ },
		EndChange:   func() { ended++ },
	}
	require.NoError(t, d.RunCommands("noop"))
	assert.Equal(t, 1, began)
	assert.Equal(t, 1, ended)
}
