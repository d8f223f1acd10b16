package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/monojs/monojs/colors"
	"github.com/monojs/monojs/engine"
	"github.com/monojs/monojs/loader"
	"github.com/monojs/monojs/standalone"
)

var runCmd = &cobra.Command{
	Use:   "run [file] [script args...]",
	Short: "Run a JavaScript program",
	Long: `Execute a JavaScript program in the embedded interpreter.

Code can be provided via:
  - File argument: monojs run script.js
  - Inline flag: monojs run -e 'console.log(1+1)'
  - Stdin: echo 'console.log(1+1)' | monojs run

Arguments after the file are exposed to the script as monojs.args.`,
	Args: cobra.ArbitraryArgs,
	Run:  runRun,
}

func init() {
	addRunFlags(runCmd)
	rootCmd.AddCommand(runCmd)
}

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("eval", "e", "", "Script to execute inline")
	cmd.Flags().String("memory", "", "Memory limit: 16mb, 64mb, 256mb, 1gb")
	cmd.Flags().Bool("unstable", false, "Enable unstable runtime features")
	addPermissionFlags(cmd)
}

func runRun(cmd *cobra.Command, args []string) {
	setupLogging(cmd)
	useColor := colors.Enabled()
	inline, _ := cmd.Flags().GetString("eval")

	var (
		ld         loader.Loader
		specifier  string
		scriptArgs []string
	)
	switch {
	case inline != "":
		ld = loader.NewSingle(inline)
		specifier = loader.EmbeddedSpecifier
		scriptArgs = args
	case len(args) > 0:
		abs, err := filepath.Abs(args[0])
		if err != nil {
			exitError(useColor, err)
		}
		ld = loader.NewFS(filepath.Dir(abs))
		specifier = abs
		scriptArgs = args[1:]
	default:
		stat, _ := os.Stdin.Stat()
		if (stat.Mode() & os.ModeCharDevice) != 0 {
			cmd.Help()
			return
		}
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			exitError(useColor, err)
		}
		if len(data) == 0 {
			cmd.Help()
			return
		}
		ld = loader.NewSingle(string(data))
		specifier = loader.EmbeddedSpecifier
	}

	unstable, _ := cmd.Flags().GetBool("unstable")
	cfg := engine.Config{
		Args:        scriptArgs,
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

	w, err := eng.NewWorker(cfg, ld)
	if err != nil {
		exitError(useColor, err)
	}
	defer w.Close()

	ctx := context.Background()
	steps := []func() error{
		func() error { return w.Bootstrap(ctx) },
		func() error { return w.ExecuteModule(ctx, specifier) },
		func() error { return w.DispatchEvent(ctx, "load") },
		func() error { return w.RunEventLoop(ctx) },
		func() error { return w.DispatchEvent(ctx, "unload") },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			exitError(useColor, err)
		}
	}
}

func exitError(useColor bool, err error) {
	fmt.Fprintf(os.Stderr, "%s: %s\n", colors.ErrorLabel(useColor), err)
	os.Exit(1)
}
