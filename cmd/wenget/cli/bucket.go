package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var bucketCmd = &cobra.Command{
	Use:   "bucket",
	Short: "Manage the configured bucket list",
}

var bucketAddCmd = &cobra.Command{
	Use:   "add <name> <url>",
	Short: "Add a bucket and rebuild the manifest cache",
	Args:  cobra.ExactArgs(2),
	RunE:  runBucketAdd,
}

var bucketDelCmd = &cobra.Command{
	Use:   "del <name>",
	Short: "Remove a bucket and rebuild the manifest cache",
	Args:  cobra.ExactArgs(1),
	RunE:  runBucketDel,
}

var bucketListCmd = &cobra.Command{
	Use:   "list",
	Short: "List configured buckets",
	Args:  cobra.NoArgs,
	RunE:  runBucketList,
}

var bucketRefreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Re-fetch every bucket's manifest",
	Args:  cobra.NoArgs,
	RunE:  runBucketRefresh,
}

func init() {
	rootCmd.AddCommand(bucketCmd)
	bucketCmd.AddCommand(bucketAddCmd, bucketDelCmd, bucketListCmd, bucketRefreshCmd)
}

func runBucketAdd(cmd *cobra.Command, args []string) error {
	prefix, err := openPrefix()
	if err != nil {
		return err
	}
	mgr, err := openBucketManager(prefix)
	if err != nil {
		return err
	}
	if err := mgr.AddBucket(context.Background(), args[0], args[1]); err != nil {
		return err
	}
	fmt.Printf("added bucket %s\n", args[0])
	return nil
}

func runBucketDel(cmd *cobra.Command, args []string) error {
	prefix, err := openPrefix()
	if err != nil {
		return err
	}
	mgr, err := openBucketManager(prefix)
	if err != nil {
		return err
	}
	if err := mgr.RemoveBucket(args[0]); err != nil {
		return err
	}
	fmt.Printf("removed bucket %s\n", args[0])
	return nil
}

func runBucketList(cmd *cobra.Command, args []string) error {
	prefix, err := openPrefix()
	if err != nil {
		return err
	}
	mgr, err := openBucketManager(prefix)
	if err != nil {
		return err
	}
	buckets := mgr.Buckets()

	if jsonOut {
		return json.NewEncoder(os.Stdout).Encode(buckets)
	}
	if len(buckets) == 0 {
		fmt.Println("No buckets configured")
		return nil
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tURL\tLAST REFRESHED")
	for _, b := range buckets {
		last := "never"
		if !b.LastRefreshed.IsZero() {
			last = b.LastRefreshed.Format("2006-01-02 15:04:05")
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", b.Name, b.URL, last)
	}
	return w.Flush()
}

func runBucketRefresh(cmd *cobra.Command, args []string) error {
	prefix, err := openPrefix()
	if err != nil {
		return err
	}
	mgr, err := openBucketManager(prefix)
	if err != nil {
		return err
	}
	failures := mgr.Refresh(context.Background())
	for name, ferr := range failures {
		fmt.Fprintf(os.Stderr, "bucket %s: %v\n", name, ferr)
	}
	if len(failures) > 0 {
		return fmt.Errorf("%d of %d buckets failed to refresh", len(failures), len(mgr.Buckets()))
	}
	fmt.Println("all buckets refreshed")
	return nil
}
