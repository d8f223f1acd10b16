package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"github.com/monojs/monojs/colors"
	"github.com/monojs/monojs/standalone"
)

var compileCmd = &cobra.Command{
	Use:   "compile [file]",
	Short: "Seal a script into a self-contained executable",
	Long: `Produce a self-contained executable from a JavaScript program.

The output is a copy of the monojs executable with the program and a
trailer record appended. Running it executes the embedded program with
full trust; no monojs installation is needed on the target machine.

The program must be a single self-contained script: module loading is not
available inside sealed binaries.`,
	Args: cobra.ExactArgs(1),
	Run:  runCompile,
}

func init() {
	compileCmd.Flags().StringP("output", "o", "", "Output path (default: script name without extension)")
	rootCmd.AddCommand(compileCmd)
}

func runCompile(cmd *cobra.Command, args []string) {
	setupLogging(cmd)
	useColor := colors.Enabled()

	data, err := os.ReadFile(args[0])
	if err != nil {
		exitError(useColor, err)
	}
	if !utf8.Valid(data) {
		exitError(useColor, fmt.Errorf("%s is not valid UTF-8", args[0]))
	}

	output, _ := cmd.Flags().GetString("output")
	if output == "" {
		output, err = defaultOutputName(args[0])
		if err != nil {
			exitError(useColor, err)
		}
	}

	if err := standalone.Compose(data, output); err != nil {
		exitError(useColor, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Sealed %s into %s\n", args[0], output)
}

// defaultOutputName derives the output path from the script name:
// "tool.js" becomes "tool".
func defaultOutputName(script string) (string, error) {
	base := filepath.Base(script)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	if name == "" || name == "." || name == string(filepath.Separator) {
		return "", errors.New("cannot derive an output name; use --output")
	}
	return name, nil
}
