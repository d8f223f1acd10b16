package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/monojs/monojs/colors"
	"github.com/monojs/monojs/engine"
	"github.com/monojs/monojs/loader"
	"github.com/monojs/monojs/standalone"
)

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Interactive REPL with persistent state",
	Long: `Start an interactive REPL (Read-Eval-Print Loop) session.

Features:
  - Command history (up/down arrows)
  - Line editing (left/right, backspace, delete)
  - History search (Ctrl+R)
  - Multi-line input (end line with \)

Type 'exit' or 'quit' to end the session, or press Ctrl+D.`,
	Run: runRepl,
}

func init() {
	replCmd.Flags().String("history", "", "History file path (default: ~/.monojs_history)")
	replCmd.Flags().Bool("unstable", false, "Enable unstable runtime features")
	addPermissionFlags(replCmd)
	rootCmd.AddCommand(replCmd)
}

func runRepl(cmd *cobra.Command, args []string) {
	setupLogging(cmd)
	useColor := colors.Enabled()

	historyFile, _ := cmd.Flags().GetString("history")
	if historyFile == "" {
		home, _ := os.UserHomeDir()
		historyFile = filepath.Join(home, ".monojs_history")
	}

	unstable, _ := cmd.Flags().GetBool("unstable")
	cfg := engine.Config{
		Permissions: permissionsFromFlags(cmd),
		Unstable:    unstable,
		NoColor:     !useColor,
		ErrorClass:  standalone.ErrorClass,
	}

	eng, err := engine.New(engineOptions(cmd)...)
	if err != nil {
		exitError(useColor, err)
	}
	defer eng.Close()

	// The REPL never loads modules; every input goes through Eval.
	w, err := eng.NewWorker(cfg, loader.NewSingle(""))
	if err != nil {
		exitError(useColor, err)
	}
	defer w.Close()

	ctx := context.Background()
	if err := w.Bootstrap(ctx); err != nil {
		exitError(useColor, err)
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:            ">>> ",
		HistoryFile:       historyFile,
		HistoryLimit:      1000,
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
		HistorySearchFold: true,
	})
	if err != nil {
		exitError(useColor, fmt.Errorf("initialize readline: %w", err))
	}
	defer rl.Close()

	fmt.Fprintf(os.Stderr, "monojs %s REPL (type 'exit' to quit, Ctrl+D to exit)\n", engine.Version)

	var multiLine strings.Builder
	inMultiLine := false

	for {
		line, err := rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				if inMultiLine {
					multiLine.Reset()
					inMultiLine = false
					rl.SetPrompt(">>> ")
				}
				continue
			}
			if err == io.EOF {
				fmt.Println()
				break
			}
			fmt.Fprintf(os.Stderr, "%s: read input: %v\n", colors.ErrorLabel(useColor), err)
			break
		}

		// Handle multi-line input
		if strings.HasSuffix(line, "\\") {
			multiLine.WriteString(strings.TrimSuffix(line, "\\"))
			multiLine.WriteString("\n")
			inMultiLine = true
			rl.SetPrompt("... ")
			continue
		}

		if inMultiLine {
			multiLine.WriteString(line)
			line = multiLine.String()
			multiLine.Reset()
			inMultiLine = false
			rl.SetPrompt(">>> ")
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			break
		}

		if err := w.Eval(ctx, line); err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", colors.ErrorLabel(useColor), err)
		}
	}
}
