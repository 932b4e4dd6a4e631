package cli

import (
	"context"
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/wenget/wenget/internal/install"
)

var initBucket string

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the prefix, integrate PATH, and optionally seed a bucket",
	Args:  cobra.NoArgs,
	RunE:  runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().StringVar(&initBucket, "bucket", "", "name=url of a bucket to add after initializing")
}

func runInit(cmd *cobra.Command, args []string) error {
	prefix, err := openPrefix()
	if err != nil {
		return err
	}
	fmt.Printf("prefix: %s\n", prefix.Root)

	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("locating home directory: %w", err)
	}
	if err := install.IntegratePATH(home, prefix.BinDir); err != nil {
		return fmt.Errorf("integrating PATH: %w", err)
	}
	if runtime.GOOS != "windows" {
		fmt.Println("PATH updated in your shell rc file; restart your shell or source it to pick up changes")
	} else {
		fmt.Println("PATH updated; open a new terminal to pick up changes")
	}

	if initBucket == "" {
		return nil
	}
	name, url, ok := splitNameURL(initBucket)
	if !ok {
		return newUsageError("--bucket must be name=url")
	}
	mgr, err := openBucketManager(prefix)
	if err != nil {
		return err
	}
	if err := mgr.AddBucket(context.Background(), name, url); err != nil {
		return err
	}
	fmt.Printf("added bucket %s\n", name)
	return nil
}

func splitNameURL(s string) (name, url string, ok bool) {
	for i := 0; i < len(s); i++ {
		if s[i] == '=' {
			return s[:i], s[i+1:], true
		}
	}
	return "", "", false
}
