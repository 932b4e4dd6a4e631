package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wenget/wenget/internal/bucket"
	"github.com/wenget/wenget/internal/config"
	"github.com/wenget/wenget/internal/install"
	"github.com/wenget/wenget/internal/platform"
	"github.com/wenget/wenget/internal/registry"
	"github.com/wenget/wenget/internal/release"
	"github.com/wenget/wenget/internal/resolver"
	"github.com/wenget/wenget/internal/selfupdate"
	"github.com/wenget/wenget/internal/wgerr"
)

// selfRepoURL is wenget's own release repository, used by `update self`.
const selfRepoURL = "https://github.com/wenget/wenget"

var updateCmd = &cobra.Command{
	Use:   "update [name|all|self]",
	Short: "Re-check releases and reinstall anything newer",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runUpdate,
}

func init() {
	rootCmd.AddCommand(updateCmd)
}

func runUpdate(cmd *cobra.Command, args []string) error {
	target := "all"
	if len(args) == 1 {
		target = args[0]
	}

	prefix, err := openPrefix()
	if err != nil {
		return err
	}

	if target == "self" {
		return updateSelf(prefix)
	}

	reg, err := openRegistry(prefix)
	if err != nil {
		return err
	}
	mgr, err := openBucketManager(prefix)
	if err != nil {
		return err
	}
	ctx := context.Background()
	for bucketName, berr := range mgr.Refresh(ctx) {
		fmt.Fprintf(os.Stderr, "bucket %s: %v\n", bucketName, berr)
	}
	host, err := resolveHost()
	if err != nil {
		return err
	}

	var repoNames []string
	if target == "all" {
		seen := make(map[string]bool)
		for _, rec := range reg.Packages {
			if !seen[rec.RepoName] {
				seen[rec.RepoName] = true
				repoNames = append(repoNames, rec.RepoName)
			}
		}
	} else {
		repoNames = []string{target}
	}

	pipeline := install.NewPipeline(prefix, reg)
	failures := 0
	for _, name := range repoNames {
		if err := updateOne(ctx, pipeline, mgr, reg, host, name); err != nil {
			failures++
			fmt.Fprintf(os.Stderr, "%s: %v\n", name, err)
		}
	}
	if err := reg.Save(); err != nil {
		return err
	}
	if failures > 0 {
		return fmt.Errorf("%d of %d updates failed", failures, len(repoNames))
	}
	return nil
}

// updateOne re-checks every installed record (including variant siblings)
// for repoName and reinstalls whichever ones have a newer release
// available, reusing the previously claimed command name and variant.
func updateOne(ctx context.Context, p *install.Pipeline, mgr *bucket.Manager, reg *registry.Registry, host platform.Host, repoName string) error {
	records := reg.ByRepoName(repoName)
	if len(records) == 0 {
		return wgerr.New(wgerr.NotFound, "not installed").WithItem(repoName)
	}

	var firstErr error
	for _, rec := range records {
		if err := updateRecord(ctx, p, mgr, host, rec); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func updateRecord(ctx context.Context, p *install.Pipeline, mgr *bucket.Manager, host platform.Host, rec registry.Record) error {
	switch rec.Source.Kind {
	case registry.SourceDirectRepo:
		return updateFromRepo(ctx, p, host, rec)
	case registry.SourceBucket:
		return updateFromBucket(ctx, p, mgr, host, rec)
	default:
		// Local scripts and direct-asset installs carry no version
		// signal to compare against; nothing to re-check.
		fmt.Printf("up to date: %s\n", rec.Key())
		return nil
	}
}

func updateFromBucket(ctx context.Context, p *install.Pipeline, mgr *bucket.Manager, host platform.Host, rec registry.Record) error {
	owned, ok := mgr.Lookup(rec.RepoName)
	if !ok {
		return wgerr.New(wgerr.NotFound, "no longer present in any configured bucket").WithItem(rec.RepoName)
	}
	recs, _, ok := bucket.SelectBinaries(host, owned.Entry.Platforms)
	if !ok || len(recs) == 0 {
		return wgerr.New(wgerr.NoMatch, "no asset matches this host's platform").WithItem(rec.RepoName)
	}

	candidate := recs[0]
	for _, r := range recs {
		if r.AssetName == rec.AssetName {
			candidate = r
			break
		}
	}
	if candidate.AssetName == rec.AssetName {
		fmt.Printf("up to date: %s\n", rec.Key())
		return nil
	}

	req := install.Request{
		RepoName:       rec.RepoName,
		Variant:        rec.Variant,
		AssetURL:       candidate.URL,
		AssetName:      candidate.AssetName,
		Checksum:       candidate.Checksum,
		PlatformKey:    platform.PlatformKey(host.OS, host.Arch, host.Compiler),
		DesiredCommand: rec.CommandName,
		Source:         registry.Source{Kind: registry.SourceBucket, Name: owned.SourceBucket},
		Description:    owned.Entry.Description,
		AutoYes:        autoYes,
	}
	_, err := p.InstallFromRelease(ctx, req, downloadProgress(rec.RepoName))
	if err == nil {
		fmt.Printf("updated: %s\n", rec.Key())
	}
	return err
}

func updateFromRepo(ctx context.Context, p *install.Pipeline, host platform.Host, rec registry.Record) error {
	token := os.Getenv("GITHUB_TOKEN")
	provider := release.NewGitHubProvider(token)
	rel, err := provider.Latest(ctx, rec.Source.Name)
	if err != nil {
		return err
	}
	if !resolver.NewerTag(rec.Version, rel.Tag) {
		fmt.Printf("up to date: %s\n", rec.Key())
		return nil
	}

	candidates := make([]platform.ParsedAsset, 0, len(rel.Assets))
	byName := make(map[string]release.Asset, len(rel.Assets))
	for _, a := range rel.Assets {
		if platform.Rejected(a.Name) {
			continue
		}
		parsed := platform.Parse(a.Name)
		candidates = append(candidates, parsed)
		byName[a.Name] = a
	}
	match, ok := platform.FindBestMatch(host, candidates)
	if !ok {
		return wgerr.New(wgerr.NoMatch, "no release asset matches this host's platform").WithItem(rec.RepoName)
	}
	asset := byName[match.Asset.RawName]

	req := install.Request{
		RepoName:       rec.RepoName,
		Variant:        rec.Variant,
		AssetURL:       asset.URL,
		AssetName:      asset.Name,
		Version:        rel.Tag,
		PlatformKey:    platform.PlatformKey(match.Asset.OS, match.Asset.Arch, match.Asset.Compiler),
		DesiredCommand: rec.CommandName,
		Source:         registry.Source{Kind: registry.SourceDirectRepo, Name: rec.Source.Name},
		AutoYes:        autoYes,
	}
	_, err = p.InstallFromRelease(ctx, req, downloadProgress(rec.RepoName))
	if err == nil {
		fmt.Printf("updated: %s -> %s\n", rec.Key(), rel.Tag)
	}
	return err
}

// updateSelf implements §4.7's atomic self-replace protocol plus §8
// scenario 5: download the latest wenget release, extract the single
// binary, and swap it over the running executable.
func updateSelf(prefix config.Prefix) error {
	exePath, err := os.Executable()
	if err != nil {
		return fmt.Errorf("locating running executable: %w", err)
	}

	token := os.Getenv("GITHUB_TOKEN")
	provider := release.NewGitHubProvider(token)
	ctx := context.Background()
	rel, err := provider.Latest(ctx, selfRepoURL)
	if err != nil {
		return err
	}
	if !resolver.NewerTag(Version(), rel.Tag) {
		fmt.Println("wenget is already up to date")
		return nil
	}

	host := detectHost()
	candidates := make([]platform.ParsedAsset, 0, len(rel.Assets))
	byName := make(map[string]release.Asset, len(rel.Assets))
	for _, a := range rel.Assets {
		if platform.Rejected(a.Name) {
			continue
		}
		parsed := platform.Parse(a.Name)
		candidates = append(candidates, parsed)
		byName[a.Name] = a
	}
	match, ok := platform.FindBestMatch(host, candidates)
	if !ok {
		return wgerr.New(wgerr.NoMatch, "no wenget release asset matches this host's platform")
	}
	asset := byName[match.Asset.RawName]

	downloader := install.NewDownloader()
	downloaded, err := install.Download(ctx, downloader, asset.URL, asset.Name, prefix.DownloadsDir, "", downloadProgress("wenget"))
	if err != nil {
		return err
	}

	ext, err := install.DetectFormat(asset.Name, downloaded)
	if err != nil {
		return err
	}
	newBinary := downloaded
	if ext != platform.UncompressedBinary {
		extractDir := downloaded + ".extracted"
		if err := install.Extract(downloaded, ext, extractDir); err != nil {
			return err
		}
		candidatesFound, err := install.DiscoverExecutables(extractDir, "wenget")
		if err != nil {
			return err
		}
		if len(candidatesFound) == 0 {
			return wgerr.New(wgerr.NoMatch, "no wenget executable found in downloaded release")
		}
		newBinary = extractDir + "/" + candidatesFound[0].Path
	}

	if err := selfupdate.Replace(newBinary, exePath); err != nil {
		return err
	}
	fmt.Printf("updated wenget to %s\n", rel.Tag)
	return nil
}
