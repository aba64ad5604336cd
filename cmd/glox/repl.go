package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/peterh/liner"

	"github.com/chazu/glox/interpreter"
)

const historyFile = ".glox_history"

// runREPL reads one expression per line until an empty line or EOF.
func runREPL(in *interpreter.Interpreter) int {
	histPath := ""
	if home, err := os.UserHomeDir(); err == nil {
		histPath = filepath.Join(home, historyFile)
	}

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	if histPath != "" {
		if f, err := os.Open(histPath); err == nil {
			_, _ = ln.ReadHistory(f)
			_ = f.Close()
		}
		defer func() {
			if f, err := os.Create(histPath); err == nil {
				_, _ = ln.WriteHistory(f)
				_ = f.Close()
			}
		}()
	}

	for {
		line, err := ln.Prompt("> ")
		if errors.Is(err, io.EOF) || errors.Is(err, liner.ErrPromptAborted) {
			fmt.Println()
			break
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return exitIOErr
		}
		if line == "" {
			break
		}
		ln.AppendHistory(line)

		if _, err := in.Interpret(line); err != nil {
			fmt.Fprintln(os.Stderr, err)
		}
	}

	fmt.Println("Result: nil")
	return exitOK
}
