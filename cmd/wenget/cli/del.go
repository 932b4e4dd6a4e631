package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wenget/wenget/internal/config"
	"github.com/wenget/wenget/internal/install"
	"github.com/wenget/wenget/internal/registry"
	"github.com/wenget/wenget/internal/selfupdate"
	"github.com/wenget/wenget/internal/wgerr"
)

var delCmd = &cobra.Command{
	Use:   "del <name>...",
	Short: "Remove installed packages or scripts",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runDel,
}

func init() {
	rootCmd.AddCommand(delCmd)
}

func runDel(cmd *cobra.Command, args []string) error {
	prefix, err := openPrefix()
	if err != nil {
		return err
	}
	reg, err := openRegistry(prefix)
	if err != nil {
		return err
	}

	failures := 0
	for _, name := range args {
		var opErr error
		if name == "self" {
			opErr = delSelf(prefix)
		} else {
			opErr = delByName(reg, prefix, name)
		}
		if opErr != nil {
			failures++
			fmt.Fprintf(os.Stderr, "%s: %v\n", name, opErr)
		} else {
			fmt.Printf("removed %s\n", name)
		}
	}

	if err := reg.Save(); err != nil {
		return err
	}
	if failures > 0 {
		return fmt.Errorf("%d of %d removals failed", failures, len(args))
	}
	return nil
}

// delByName removes every registry record whose key or bare repo_name
// matches name (§4.5 "Bulk operations on the bare name ... enumerate
// every key whose repo_name matches").
func delByName(reg *registry.Registry, prefix config.Prefix, name string) error {
	var records []registry.Record
	if rec, ok := reg.Get(name); ok {
		records = []registry.Record{rec}
	} else {
		records = reg.ByRepoName(name)
	}
	if len(records) == 0 {
		return wgerr.New(wgerr.NotFound, "not installed").WithItem(name)
	}

	var firstErr error
	for _, rec := range records {
		if err := removeRecord(prefix, reg, rec); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func removeRecord(prefix config.Prefix, reg *registry.Registry, rec registry.Record) error {
	if err := install.RemoveLauncher(prefix.BinDir, rec.CommandName); err != nil {
		return err
	}
	if err := os.RemoveAll(rec.InstallPath); err != nil && !os.IsNotExist(err) {
		return err
	}
	reg.Delete(rec.Key())
	return nil
}

// delSelf implements §4.4's "del self" / §4.7's atomic self-replace
// protocol in reverse: remove the launcher for wenget itself and
// schedule deletion of the running binary once this process exits.
func delSelf(prefix config.Prefix) error {
	exePath, err := os.Executable()
	if err != nil {
		return fmt.Errorf("locating running executable: %w", err)
	}
	if err := install.RemoveLauncher(prefix.BinDir, "wenget"); err != nil {
		return err
	}
	return selfupdate.SelfDelete(exePath)
}
