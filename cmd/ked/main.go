package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/ked-editor/ked/internal/keys"
	"github.com/ked-editor/ked/internal/termio"
)

func main() {
	cfgPath := flag.String("c", "", "config file to run before opening any file")
	flag.Parse()

	home, err := os.UserHomeDir()
	if err != nil {
		log.Fatalf("unable to resolve home directory: %v", err)
	}
	kedHome := filepath.Join(home, ".ked")
	if err := os.MkdirAll(kedHome, 0o755); err == nil {
		if f, err := os.OpenFile(filepath.Join(kedHome, "ked.log"), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644); err == nil {
			defer f.Close()
			logs.setOutput(f)
		}
	}

	term := termio.New(os.Stdin, os.Stdout)
	e := newEditor(term)

	if *cfgPath != "" {
		defer logs.restore()()
		logs.addPrefix("config: ")
		if err := e.cfgRunner.RunFile(*cfgPath); err != nil {
			e.errs.Record(err)
		}
	} else if rc := filepath.Join(kedHome, "rc"); fileExists(rc) {
		defer logs.restore()()
		logs.addPrefix("config: ")
		if err := e.cfgRunner.RunFile(rc); err != nil {
			e.errs.Record(err)
		}
	}

	args := flag.Args()
	if len(args) == 0 {
		if err := e.openFile(""); err != nil {
			log.Fatalf("ked: %v", err)
		}
	}
	for _, path := range args {
		if err := e.openFile(path); err != nil {
			fmt.Fprintf(os.Stderr, "ked: %s: %v\n", path, err)
		}
	}
	if e.active == nil {
		log.Fatalf("ked: no file could be opened")
	}

	if err := term.EnterRaw(); err != nil {
		log.Fatalf("ked: %v", err)
	}
	term.SetBracketedPaste(true)
	defer term.SetBracketedPaste(false)
	defer term.Restore()

	runLoop(e, term)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// runLoop decodes terminal events and dispatches each one against the
// active mode until a "quit" command sets e.quit, mirroring the
// teacher's res/log split (§4.0.a): rendering is left to a real frame
// writer this wiring doesn't implement, but every keystroke still
// drives the same dispatcher a config file or a test harness would use.
func runLoop(e *editor, term *termio.Term) {
	dec := termio.NewDecoder(os.Stdin)
	handler := &keys.Handler{
		Dispatcher: e.dispatcher,
		InsertRune: func(key keys.KeyCode) {
			v := e.active
			v.Cursor = v.Buf.InsertBytes(v.Cursor, []byte(string(key.Rune())))
		},
		InsertLineRune: func(key keys.KeyCode) {
			e.cmdlineText += string(key.Rune())
		},
		InsertPaste: func(text string, bracketed bool) {
			v := e.active
			v.Cursor = v.Buf.InsertBytes(v.Cursor, []byte(text))
		},
	}

	for !e.quit {
		ev, err := dec.Next()
		if err != nil {
			if err == io.EOF {
				return
			}
			e.errs.Errorf("input: %v", err)
			continue
		}
		handler.PasteText = ev.PasteText
		mode := e.normal
		if err := keys.HandleInput(mode, ev.Key, handler); err != nil {
			e.errs.Record(err)
		}
	}
}
