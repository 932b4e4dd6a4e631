package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/wenget/wenget/internal/bucket"
	"github.com/wenget/wenget/internal/registry"
)

var listAll bool

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List installed packages, or every available package with --all",
	RunE:  runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().BoolVar(&listAll, "all", false, "list every package available across configured buckets")
}

func runList(cmd *cobra.Command, args []string) error {
	prefix, err := openPrefix()
	if err != nil {
		return err
	}

	if listAll {
		mgr, err := openBucketManager(prefix)
		if err != nil {
			return err
		}
		return listAvailable(mgr)
	}

	reg, err := openRegistry(prefix)
	if err != nil {
		return err
	}
	return listInstalled(reg)
}

// listInstalled groups variant siblings as children of their parent
// repo_name in display order (§4.5 "list groups variants as children").
func listInstalled(reg *registry.Registry) error {
	if jsonOut {
		return json.NewEncoder(os.Stdout).Encode(reg.Packages)
	}

	repoNames := make(map[string]bool)
	for _, rec := range reg.Packages {
		repoNames[rec.RepoName] = true
	}
	names := make([]string, 0, len(repoNames))
	for n := range repoNames {
		names = append(names, n)
	}
	sort.Strings(names)

	if len(names) == 0 {
		fmt.Println("No packages installed")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "REPO\tVARIANT\tVERSION\tCOMMAND\tPLATFORM")
	for _, name := range names {
		for _, rec := range reg.ByRepoName(name) {
			variant := rec.Variant
			if variant == "" {
				variant = "-"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", rec.RepoName, variant, rec.Version, rec.CommandName, rec.Platform)
		}
	}
	return w.Flush()
}

// listAvailable shows every package and script merged across configured
// buckets, regardless of install state.
func listAvailable(mgr *bucket.Manager) error {
	cache := mgr.Cache()

	if jsonOut {
		return json.NewEncoder(os.Stdout).Encode(cache)
	}

	names := make([]string, 0, len(cache.Packages)+len(cache.Scripts))
	for n := range cache.Packages {
		names = append(names, n)
	}
	for n := range cache.Scripts {
		names = append(names, n)
	}
	sort.Strings(names)

	if len(names) == 0 {
		fmt.Println("No packages available (configure a bucket with `wenget bucket add`)")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tKIND\tBUCKET\tDESCRIPTION")
	for _, name := range names {
		if pkg, ok := cache.Packages[name]; ok {
			fmt.Fprintf(w, "%s\tpackage\t%s\t%s\n", name, pkg.SourceBucket, pkg.Entry.Description)
			continue
		}
		sc := cache.Scripts[name]
		fmt.Fprintf(w, "%s\tscript\t%s\t%s\n", name, sc.SourceBucket, sc.Entry.Description)
	}
	return w.Flush()
}
