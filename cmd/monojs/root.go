package main

import (
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/monojs/monojs/engine"
	"github.com/monojs/monojs/permissions"
)

var rootCmd = &cobra.Command{
	Use:   "monojs [file] [script args...]",
	Short: "JavaScript runtime with self-contained binary output",
	Long: `monojs - Run JavaScript in an embedded interpreter and seal programs
into self-contained executables.

Run scripts from files, inline strings, or stdin. By default scripts have
no access to the filesystem, network, or environment; grant capabilities
explicitly with --allow flags. A binary produced by 'monojs compile'
carries its program inside the executable and runs it with full trust.`,
	Args: cobra.ArbitraryArgs,
	Run:  runRun, // Default to run command behavior
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().Bool("no-cache", false, "Disable compilation cache")

	// Run-specific flags on the root for the default command.
	addRunFlags(rootCmd)
}

// setupLogging installs a development logger when --verbose is set. The
// engine stays silent otherwise.
func setupLogging(cmd *cobra.Command) {
	verbose, _ := cmd.Root().PersistentFlags().GetBool("verbose")
	if !verbose {
		return
	}
	if l, err := zap.NewDevelopment(); err == nil {
		engine.SetLogger(l)
	}
}

func addPermissionFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("allow-read", false, "Allow filesystem read access")
	cmd.Flags().Bool("allow-write", false, "Allow filesystem write access")
	cmd.Flags().Bool("allow-net", false, "Allow network access")
	cmd.Flags().Bool("allow-env", false, "Allow environment variable access")
	cmd.Flags().BoolP("allow-all", "A", false, "Allow all capabilities")
	cmd.Flags().StringSlice("allow-host", nil, "Restrict network access to host (repeatable, implies --allow-net)")
}

func permissionsFromFlags(cmd *cobra.Command) permissions.Permissions {
	if all, _ := cmd.Flags().GetBool("allow-all"); all {
		return permissions.AllowAll()
	}

	var p permissions.Permissions
	p.Read, _ = cmd.Flags().GetBool("allow-read")
	p.Write, _ = cmd.Flags().GetBool("allow-write")
	p.Net, _ = cmd.Flags().GetBool("allow-net")
	p.Env, _ = cmd.Flags().GetBool("allow-env")
	p.NetHosts, _ = cmd.Flags().GetStringSlice("allow-host")
	if len(p.NetHosts) > 0 {
		p.Net = true
	}
	return p
}

func engineOptions(cmd *cobra.Command) []engine.Option {
	noCache, _ := cmd.Root().PersistentFlags().GetBool("no-cache")
	memory, _ := cmd.Flags().GetString("memory")

	var opts []engine.Option
	if !noCache {
		opts = append(opts, engine.WithDiskCache())
	}
	if pages := parseMemoryLimit(memory); pages > 0 {
		opts = append(opts, engine.WithMemoryLimit(pages))
	}
	return opts
}

func parseMemoryLimit(s string) uint32 {
	switch strings.ToLower(s) {
	case "16mb":
		return engine.MemoryLimit16MB
	case "64mb":
		return engine.MemoryLimit64MB
	case "256mb":
		return engine.MemoryLimit256MB
	case "1gb":
		return engine.MemoryLimit1GB
	default:
		return 0 // use default
	}
}
