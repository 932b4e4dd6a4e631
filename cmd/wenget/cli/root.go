// Package cli implements the wenget command-line interface using Cobra.
// It wires together the bucket manager, installed registry, and install
// pipeline into the commands listed in the CLI surface summary.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wenget/wenget/internal/bucket"
	"github.com/wenget/wenget/internal/config"
	"github.com/wenget/wenget/internal/log"
	"github.com/wenget/wenget/internal/registry"
	"github.com/wenget/wenget/internal/wgerr"
)

var (
	autoYes     bool
	jsonOut     bool
	verbose     bool
	platformKey string
)

var rootCmd = &cobra.Command{
	Use:   "wenget",
	Short: "Install portable binary releases from GitHub and curated buckets",
	Long: `wenget installs pre-built release binaries, placing launchers on
PATH without a package manager, container, or build toolchain.

Packages come from curated buckets (JSON manifests) or directly from a
repository/release URL; scripts and bare executables are supported too.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		globalCfg, _ := config.LoadGlobal()
		if !autoYes {
			autoYes = globalCfg.AutoYes
		}

		prefix, err := config.ResolvePrefix(config.UserScope)
		if err != nil {
			return wgerr.Wrap(wgerr.Privilege, "resolving prefix", err)
		}
		if err := log.Init(log.Options{
			Verbose:    verbose,
			JSONFormat: jsonOut,
			DebugDir:   prefix.LogsDir,
		}); err != nil {
			cmd.PrintErrf("warning: failed to initialize debug logging: %v\n", err)
		}
		return nil
	},
}

// Execute runs the root command and maps errors to the exit codes in §6
// of the CLI surface summary.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "wenget:", err)
		return exitCodeFor(err)
	}
	return 0
}

func exitCodeFor(err error) int {
	if kind, ok := wgerr.KindOf(err); ok && kind == wgerr.Prerequisite {
		return 3
	}
	if _, ok := err.(usageError); ok {
		return 2
	}
	if _, ok := err.(usageNotFoundError); ok {
		return 3
	}
	return 1
}

// usageError marks an invalid flag value (a malformed --platform or init
// --bucket) as a §6 exit-code-2 usage error rather than a generic failure.
// Cobra's own argument-count and flag-parsing errors are not wrapped in it
// and exit with code 1.
type usageError struct{ error }

func newUsageError(msg string) error { return usageError{fmt.Errorf("%s", msg)} }

func init() {
	rootCmd.PersistentFlags().BoolVarP(&autoYes, "yes", "y", false, "assume yes to all confirmation prompts")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "output in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose debug output")
	rootCmd.PersistentFlags().StringVar(&platformKey, "platform", "", "override the detected platform key (os-arch[-compiler])")
}

// openPrefix resolves the user prefix and ensures its directory layout
// exists, used by every subcommand that touches on-disk state.
func openPrefix() (config.Prefix, error) {
	prefix, err := config.ResolvePrefix(config.UserScope)
	if err != nil {
		return config.Prefix{}, err
	}
	if err := prefix.EnsureLayout(); err != nil {
		return config.Prefix{}, wgerr.Wrap(wgerr.Privilege, "creating prefix layout", err)
	}
	return prefix, nil
}

func openRegistry(prefix config.Prefix) (*registry.Registry, error) {
	return registry.Load(prefix.InstalledFile)
}

func openBucketManager(prefix config.Prefix) (*bucket.Manager, error) {
	return bucket.NewManager(prefix.Root)
}
