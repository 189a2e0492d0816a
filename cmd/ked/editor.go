package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ked-editor/ked/internal/buffer"
	"github.com/ked-editor/ked/internal/cfg"
	"github.com/ked-editor/ked/internal/command"
	"github.com/ked-editor/ked/internal/errbuf"
	"github.com/ked-editor/ked/internal/exec"
	"github.com/ked-editor/ked/internal/fileio"
	"github.com/ked-editor/ked/internal/help"
	"github.com/ked-editor/ked/internal/keys"
	"github.com/ked-editor/ked/internal/search"
	"github.com/ked-editor/ked/internal/selectops"
	"github.com/ked-editor/ked/internal/termio"
	"github.com/ked-editor/ked/internal/view"
)

// editor holds everything one running ked process needs: the open
// buffers, the active view onto one of them, the command dispatcher
// driving both interactive keys and config-file lines, and the small
// collaborator services (search state, bookmarks, error buffer) the
// builtin command table below closes over.
type editor struct {
	views   []*view.View
	active  *view.View
	nextID  int

	dispatcher *command.Dispatcher
	normal     *keys.Mode
	cmdline    *keys.Mode

	errs      errbuf.ErrorBuffer
	search    search.State
	bookmarks *selectops.BookmarkStack
	exec      *exec.Runner
	cfgRunner *cfg.Runner
	options   cfg.Options

	cmdlineText string
	quit        bool
}

// newEditor wires the command table, modes, and dispatcher the way
// cmd/soc/ui.go's serveMux registration does, generalized to a real
// alias map and flag-validated argument parsing (§4.H, §4.I).
func newEditor(term *termio.Term) *editor {
	e := &editor{
		bookmarks: selectops.NewBookmarkStack(),
		exec:      exec.NewRunner(term),
		options:   defaultOptions(),
	}

	table := command.CommandTable{}
	e.dispatcher = &command.Dispatcher{
		Commands: table,
		Aliases:  map[string]string{},
		Parser:   &command.Parser{ExpandTildeSlash: true, HomeDir: os.Getenv("HOME")},
	}
	e.cfgRunner = cfg.NewRunner(e.dispatcher, cfg.Blobs{})
	e.registerCommands(table)

	e.normal = keys.NewMode("normal", table)
	e.cmdline = keys.NewMode("cmdline", table)
	e.cmdline.LineInput = true

	e.bindDefaultKeys()
	return e
}

// openFile loads path into a fresh Buffer and a View onto it, appending
// both to the editor's list and making the new view active. A missing
// file opens as an empty, not-yet-saved buffer named after path, the
// way "open a path that doesn't exist yet" behaves everywhere in this
// family of editors.
func (e *editor) openFile(path string) error {
	var buf *buffer.Buffer
	if path == "" {
		buf = buffer.New()
	} else if data, enc, hadBOM, err := fileio.Load(path); err == nil {
		buf = buffer.NewFromBytes(data)
		buf.Encoding = enc
		_ = hadBOM
	} else if errors.Is(err, os.ErrNotExist) {
		buf = buffer.New()
	} else {
		return err
	}

	if path != "" {
		if abs, err := filepath.Abs(path); err == nil {
			buf.AbsPath = abs
		}
	}
	buf.DisplayFilename = path
	buf.MarkSaved()

	e.nextID++
	v := view.New(e.nextID, buf)
	e.views = append(e.views, v)
	e.active = v
	return nil
}

// saveActive writes the active view's buffer back to its backing file.
func (e *editor) saveActive() error {
	v := e.active
	if v.Buf.AbsPath == "" {
		return fmt.Errorf("no filename")
	}
	err := fileio.Save(v.Buf.AbsPath, v.Buf.Bytes(), fileio.SaveOptions{
		Encoding: v.Buf.Encoding,
		CRLF:     v.Buf.Options.Newline == "\r\n",
	})
	if err != nil {
		return err
	}
	v.Buf.MarkSaved()
	return nil
}

// statusLine renders the active view's status text using the default
// built-in template, falling back to the error buffer's last message
// when one is pending (§7: the status line is where recorded errors
// surface).
func (e *editor) statusLine() string {
	if msg, ok := e.errs.Last(); ok {
		return msg.String()
	}
	v := e.active
	info := buffer.StatusInfo{
		Line:           v.Cursor.LineNumber() + 1,
		TotalLines:     v.Buf.LineCount(),
		ColChar:        v.Cursor.GetOffset() - v.Cursor.BolPos().GetOffset() + 1,
		ColDisplay:     v.Column() + 1,
		ViewportHeight: 40,
	}
	return v.Buf.FormatStatus("%f%s%m %y,%x%s%p", info)
}

// helpText renders a compiled-in help topic for the "help" command.
func (e *editor) helpText(topic string) (string, error) {
	return help.Render(topic)
}

// defaultOptions returns the "set"/"toggle"/"show" table, named and
// typed the way original_source/src/options.h's COMMON_OPTIONS macro
// lists them.
func defaultOptions() cfg.Options {
	return cfg.Options{
		"tab-width":     &cfg.OptionValue{Kind: cfg.KindInt, Int: 8},
		"indent-width":  &cfg.OptionValue{Kind: cfg.KindInt, Int: 8},
		"expand-tab":    &cfg.OptionValue{Kind: cfg.KindBool, Bool: false},
		"auto-indent":   &cfg.OptionValue{Kind: cfg.KindBool, Bool: true},
		"detect-indent": &cfg.OptionValue{Kind: cfg.KindBool, Bool: false},
		"file-type":     &cfg.OptionValue{Kind: cfg.KindString, Str: ""},
		"newline":       &cfg.OptionValue{Kind: cfg.KindEnum, Str: "unix", Choices: []string{"unix", "dos"}},
	}
}
