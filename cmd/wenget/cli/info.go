package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/wenget/wenget/internal/wgerr"
)

var infoCmd = &cobra.Command{
	Use:   "info <name|url>",
	Short: "Show metadata, variants, and install state for a package",
	Args:  cobra.ExactArgs(1),
	RunE:  runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

type infoResult struct {
	Name      string   `json:"name"`
	Installed bool     `json:"installed"`
	Variants  []string `json:"variants,omitempty"`
	Bucket    string    `json:"bucket,omitempty"`
	Description string `json:"description,omitempty"`
	Homepage  string `json:"homepage,omitempty"`
	License   string `json:"license,omitempty"`
	Platforms []string `json:"platforms,omitempty"`
}

func runInfo(cmd *cobra.Command, args []string) error {
	name := args[0]
	prefix, err := openPrefix()
	if err != nil {
		return err
	}
	reg, err := openRegistry(prefix)
	if err != nil {
		return err
	}
	mgr, err := openBucketManager(prefix)
	if err != nil {
		return err
	}

	result := infoResult{Name: name}
	for _, rec := range reg.ByRepoName(name) {
		result.Installed = true
		variant := rec.Variant
		if variant == "" {
			variant = "(none)"
		}
		result.Variants = append(result.Variants, variant)
	}

	if owned, ok := mgr.Lookup(name); ok {
		result.Bucket = owned.SourceBucket
		result.Description = owned.Entry.Description
		result.Homepage = owned.Entry.Homepage
		result.License = owned.Entry.License
		keys := make([]string, 0, len(owned.Entry.Platforms))
		for k := range owned.Entry.Platforms {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		result.Platforms = keys
	} else if sc, ok := mgr.LookupScript(name); ok {
		result.Bucket = sc.SourceBucket
		result.Description = sc.Entry.Description
		result.Homepage = sc.Entry.Homepage
		result.License = sc.Entry.License
	} else if !result.Installed {
		return wgerr.New(wgerr.NotFound, "not installed and not found in any bucket").WithItem(name)
	}

	if jsonOut {
		return json.NewEncoder(os.Stdout).Encode(result)
	}

	fmt.Printf("Name:        %s\n", result.Name)
	fmt.Printf("Installed:   %t\n", result.Installed)
	if len(result.Variants) > 0 {
		fmt.Printf("Variants:    %v\n", result.Variants)
	}
	if result.Bucket != "" {
		fmt.Printf("Bucket:      %s\n", result.Bucket)
	}
	if result.Description != "" {
		fmt.Printf("Description: %s\n", result.Description)
	}
	if result.Homepage != "" {
		fmt.Printf("Homepage:    %s\n", result.Homepage)
	}
	if result.License != "" {
		fmt.Printf("License:     %s\n", result.License)
	}
	if len(result.Platforms) > 0 {
		fmt.Printf("Platforms:   %v\n", result.Platforms)
	}
	return nil
}
