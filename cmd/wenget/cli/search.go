package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"
)

var searchCmd = &cobra.Command{
	Use:   "search <keyword>...",
	Short: "Search bucket package and script names",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	prefix, err := openPrefix()
	if err != nil {
		return err
	}
	mgr, err := openBucketManager(prefix)
	if err != nil {
		return err
	}

	seen := make(map[string]bool)
	var matches []string
	for _, kw := range args {
		for _, name := range mgr.Search(kw) {
			if !seen[name] {
				seen[name] = true
				matches = append(matches, name)
			}
		}
		lowerKw := strings.ToLower(kw)
		for name := range mgr.Cache().Scripts {
			if !seen[name] && strings.Contains(strings.ToLower(name), lowerKw) {
				seen[name] = true
				matches = append(matches, name)
			}
		}
	}
	sort.Strings(matches)

	if jsonOut {
		return json.NewEncoder(os.Stdout).Encode(matches)
	}
	if len(matches) == 0 {
		fmt.Println("No matches")
		return nil
	}
	for _, name := range matches {
		fmt.Println(name)
	}
	return nil
}
