package main

import (
	"fmt"

	"github.com/ked-editor/ked/internal/command"
	"github.com/ked-editor/ked/internal/keys"
	"github.com/ked-editor/ked/internal/search"
	"github.com/ked-editor/ked/internal/selectops"
)

// registerCommands populates table with the editor's builtin command
// set, the generalized form of cmd/soc/ui.go's serveMux registration:
// a name-keyed table, flag descriptors validated by
// command.DoParseArgs, and AllowInConfig marking which ones are safe for
// a config file to call (a marker only; nothing enforces it).
func (e *editor) registerCommands(table command.CommandTable) {
	reg := func(c *command.Command) { table[c.Name] = c }

	reg(&command.Command{
		Name: "left", MaxArgs: 0,
		Run: func(*command.Args) error { e.active.MoveLeft(); return nil },
	})
	reg(&command.Command{
		Name: "right", MaxArgs: 0,
		Run: func(*command.Args) error { e.active.MoveRight(); return nil },
	})
	reg(&command.Command{
		Name: "up", MaxArgs: 0,
		Run: func(*command.Args) error { e.active.MoveUp(); return nil },
	})
	reg(&command.Command{
		Name: "down", MaxArgs: 0,
		Run: func(*command.Args) error { e.active.MoveDown(); return nil },
	})

	reg(&command.Command{
		Name: "insert", MinArgs: 1, MaxArgs: 1,
		Run: func(a *command.Args) error {
			v := e.active
			v.Cursor = v.Buf.InsertBytes(v.Cursor, []byte(a.Positional[0]))
			return nil
		},
	})
	reg(&command.Command{
		Name: "delete", MaxArgs: 0,
		Run: func(*command.Args) error {
			v := e.active
			_, it := v.Buf.DeleteBytes(v.Cursor, 1)
			v.Cursor = it
			return nil
		},
	})
	reg(&command.Command{
		Name: "erase", MaxArgs: 0,
		Run: func(*command.Args) error {
			v := e.active
			_, it := v.Buf.EraseBytes(v.Cursor, 1)
			v.Cursor = it
			return nil
		},
	})
	reg(&command.Command{
		Name: "undo", MaxArgs: 0,
		Run: func(*command.Args) error {
			if ok, cursor := e.active.Buf.Undo(); ok {
				e.active.Cursor = e.active.Buf.Blocks.Iter().GotoOffset(cursor)
			}
			return nil
		},
	})

	reg(&command.Command{
		Name: "save", MaxArgs: 0,
		Run: func(*command.Args) error { return e.saveActive() },
	})
	reg(&command.Command{
		Name: "open", MinArgs: 1, MaxArgs: 1,
		Run: func(a *command.Args) error { return e.openFile(a.Positional[0]) },
	})
	reg(&command.Command{
		Name: "quit", MaxArgs: 0, AllowInConfig: true,
		Run: func(*command.Args) error { e.quit = true; return nil },
	})

	reg(&command.Command{
		Name: "search", Flags: "r", MinArgs: 1, MaxArgs: 1,
		Run: func(a *command.Args) error {
			e.search.Pattern = a.Positional[0]
			e.search.Reverse = a.HasFlag('r')
			// Next follows e.search.Reverse and moves the cursor itself.
			_, err := e.search.Next(e.active, search.CaseAuto)
			return err
		},
	})
	reg(&command.Command{
		Name: "replace", Flags: "gic", MinArgs: 2, MaxArgs: 2,
		Run: func(a *command.Args) error {
			var flags search.ReplaceFlags
			if a.HasFlag('g') {
				flags |= search.ReplaceGlobal
			}
			if a.HasFlag('i') {
				flags |= search.ReplaceIgnoreCase
			}
			_, _, err := search.Replace(e.active, a.Positional[0], a.Positional[1], flags, nil)
			return err
		},
	})

	reg(&command.Command{
		Name: "shift", MinArgs: 1, MaxArgs: 1,
		Run: func(a *command.Args) error {
			var count int
			if _, err := fmt.Sscanf(a.Positional[0], "%d", &count); err != nil {
				return err
			}
			selectops.ShiftLines(e.active, count)
			return nil
		},
	})
	reg(&command.Command{
		Name: "join", MaxArgs: 1,
		Run: func(a *command.Args) error {
			count := 2
			if len(a.Positional) == 1 {
				fmt.Sscanf(a.Positional[0], "%d", &count)
			}
			selectops.JoinLines(e.active, count)
			return nil
		},
	})
	reg(&command.Command{
		Name: "bookmark-push", MaxArgs: 0,
		Run: func(*command.Args) error {
			e.bookmarks.Push(selectops.CurrentBookmark(e.active, e.active.Buf.DisplayFilename))
			return nil
		},
	})
	reg(&command.Command{
		Name: "bookmark-pop", MaxArgs: 0,
		Run: func(*command.Args) error {
			mark, ok := e.bookmarks.Pop()
			if !ok {
				return fmt.Errorf("no bookmarks")
			}
			selectops.GotoBookmark(e.active, mark)
			return nil
		},
	})

	reg(&command.Command{
		Name: "set", MinArgs: 2, MaxArgs: 2, AllowInConfig: true,
		Run: func(a *command.Args) error { return e.options.Set(a.Positional[0], a.Positional[1]) },
	})
	reg(&command.Command{
		Name: "toggle", MinArgs: 1, MaxArgs: 1, AllowInConfig: true,
		Run: func(a *command.Args) error { return e.options.Toggle(a.Positional[0]) },
	})
	reg(&command.Command{
		Name: "show", MaxArgs: 1, AllowInConfig: true,
		Run: func(a *command.Args) error {
			if len(a.Positional) == 0 {
				e.errs.Infof("%s", e.options.Dump())
				return nil
			}
			v, ok := e.options[a.Positional[0]]
			if !ok {
				return fmt.Errorf("no such option: %s", a.Positional[0])
			}
			e.errs.Infof("%s", v.String())
			return nil
		},
	})

	reg(&command.Command{
		Name: "help", MaxArgs: 1, AllowInConfig: true,
		Run: func(a *command.Args) error {
			topic := "commands"
			if len(a.Positional) == 1 {
				topic = a.Positional[0]
			}
			text, err := e.helpText(topic)
			if err != nil {
				return err
			}
			e.errs.Infof("%s", text)
			return nil
		},
	})

	reg(&command.Command{
		Name: "include", Flags: "b", MinArgs: 1, MaxArgs: 1, AllowInConfig: true,
		Run: func(a *command.Args) error {
			if a.HasFlag('b') {
				return e.cfgRunner.RunBlob(a.Positional[0])
			}
			return e.cfgRunner.RunFile(a.Positional[0])
		},
	})
}

// bindDefaultKeys installs the arrow/editing key bindings normal mode
// resolves before falling back to literal insertion (§4.I).
func (e *editor) bindDefaultKeys() {
	bind := func(key keys.KeyCode, cmd string) { e.normal.Bind(e.dispatcher, key, cmd) }

	bind(keys.KeyLeft, "left")
	bind(keys.KeyRight, "right")
	bind(keys.KeyUp, "up")
	bind(keys.KeyDown, "down")
	bind(keys.KeyDelete, "delete")
	bind(keys.ModCtrl|'s', "save")
	bind(keys.ModCtrl|'q', "quit")
	bind(keys.ModCtrl|'u', "bookmark-push")
	bind(keys.ModCtrl|'b', "bookmark-pop")
}
