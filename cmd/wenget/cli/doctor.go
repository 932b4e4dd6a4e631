package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/wenget/wenget/internal/bucket"
	"github.com/wenget/wenget/internal/config"
	"github.com/wenget/wenget/internal/doctor"
	"github.com/wenget/wenget/internal/registry"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Diagnose the local wenget install (prefix, PATH, buckets, registry)",
	RunE:  runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

func runDoctor(cmd *cobra.Command, args []string) error {
	prefix, err := config.ResolvePrefix(config.UserScope)
	if err != nil {
		return err
	}
	if _, statErr := os.Stat(prefix.Root); statErr != nil && os.IsNotExist(statErr) {
		fmt.Printf("prefix %s does not exist; run `wenget init`\n", prefix.Root)
		return newDoctorExitError()
	}

	reg := &registry.Registry{}
	if r, loadErr := registry.Load(prefix.InstalledFile); loadErr == nil {
		reg = r
	}
	var mgr *bucket.Manager
	if m, mgrErr := bucket.NewManager(prefix.Root); mgrErr == nil {
		mgr = m
	}

	fmt.Println("wenget doctor")
	fmt.Println()

	reg2 := doctor.NewRegistry()
	reg2.Register(&prefixSection{prefix: prefix})
	reg2.Register(&pathSection{prefix: prefix})
	reg2.Register(&bucketSection{mgr: mgr})
	reg2.Register(&registrySection{prefix: prefix, reg: reg})

	for _, section := range reg2.Sections() {
		fmt.Printf("-- %s --\n", section.Name())
		if err := section.Print(os.Stdout); err != nil {
			fmt.Printf("  error: %v\n", err)
		}
		fmt.Println()
	}
	return nil
}

// newDoctorExitError reports the unreadable-prefix case at exit code 3
// (prerequisite missing), distinct from an ordinary failure.
func newDoctorExitError() error {
	return usageNotFoundError{}
}

type usageNotFoundError struct{}

func (usageNotFoundError) Error() string { return "prefix unreadable" }

type prefixSection struct{ prefix config.Prefix }

func (s *prefixSection) Name() string { return "Prefix" }

func (s *prefixSection) Print(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Root:\t%s\n", s.prefix.Root)
	dirs := []struct{ label, path string }{
		{"apps", s.prefix.AppsDir},
		{"bin", s.prefix.BinDir},
		{"cache", s.prefix.CacheDir},
		{"downloads", s.prefix.DownloadsDir},
		{"logs", s.prefix.LogsDir},
	}
	for _, d := range dirs {
		status := "ok"
		if _, err := os.Stat(d.path); err != nil {
			status = "missing"
		}
		fmt.Fprintf(tw, "%s:\t%s (%s)\n", d.label, d.path, status)
	}
	return tw.Flush()
}

type pathSection struct{ prefix config.Prefix }

func (s *pathSection) Name() string { return "PATH integration" }

func (s *pathSection) Print(w io.Writer) error {
	if strings.Contains(os.Getenv("PATH"), s.prefix.BinDir) {
		fmt.Fprintf(w, "%s is on PATH\n", s.prefix.BinDir)
		return nil
	}
	fmt.Fprintf(w, "%s is NOT on PATH; run `wenget init` or add it to your shell rc\n", s.prefix.BinDir)
	return nil
}

type bucketSection struct{ mgr *bucket.Manager }

func (s *bucketSection) Name() string { return "Buckets" }

func (s *bucketSection) Print(w io.Writer) error {
	if s.mgr == nil {
		fmt.Fprintln(w, "bucket manager unavailable")
		return nil
	}
	buckets := s.mgr.Buckets()
	if len(buckets) == 0 {
		fmt.Fprintln(w, "no buckets configured")
		return nil
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, b := range buckets {
		age := "never refreshed"
		if !b.LastRefreshed.IsZero() {
			age = time.Since(b.LastRefreshed).Round(time.Minute).String() + " ago"
		}
		fmt.Fprintf(tw, "%s:\t%s (%s)\n", b.Name, b.URL, age)
	}
	cache := s.mgr.Cache()
	if cache.Expired(time.Now(), "") {
		fmt.Fprintln(tw, "cache:\texpired, next read will rebuild it")
	} else {
		fmt.Fprintf(tw, "cache:\tbuilt %s\n", cache.BuiltAt.Format(time.RFC3339))
	}
	return tw.Flush()
}

type registrySection struct {
	prefix config.Prefix
	reg    *registry.Registry
}

func (s *registrySection) Name() string { return "Installed records" }

func (s *registrySection) Print(w io.Writer) error {
	if len(s.reg.Packages) == 0 {
		fmt.Fprintln(w, "no packages installed")
		return nil
	}
	missing := 0
	for _, rec := range s.reg.Packages {
		if _, err := os.Stat(rec.InstallPath); err != nil {
			missing++
		}
	}
	fmt.Fprintf(w, "%d records, %d with a missing install_path\n", len(s.reg.Packages), missing)
	if missing > 0 {
		fmt.Fprintln(w, "run `wenget del <name>` then reinstall to repair, or `wenget add` with --yes")
	}
	return nil
}
