package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wenget/wenget/internal/bucket"
	"github.com/wenget/wenget/internal/install"
	"github.com/wenget/wenget/internal/log"
	"github.com/wenget/wenget/internal/platform"
	"github.com/wenget/wenget/internal/registry"
	"github.com/wenget/wenget/internal/release"
	"github.com/wenget/wenget/internal/resolver"
	"github.com/wenget/wenget/internal/wgerr"
)

var (
	addVersion string
	addName    string
)

var addCmd = &cobra.Command{
	Use:   "add <id>...",
	Short: "Install packages or scripts from buckets, URLs, or local paths",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAdd,
}

func init() {
	rootCmd.AddCommand(addCmd)
	addCmd.Flags().StringVar(&addVersion, "ver", "", "install a specific release tag instead of latest")
	addCmd.Flags().StringVar(&addName, "name", "", "override the command name for a single-item install")
}

// runAdd implements §4.4's "add must NOT abort the batch on a single-item
// failure": each id is installed independently, failures are tallied, and
// the command's own exit status reflects whether any sub-operation failed.
func runAdd(cmd *cobra.Command, args []string) error {
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
	ctx := context.Background()
	if err := mgr.EnsureFresh(ctx); err != nil {
		log.Warn("bucket refresh failed, using last-known cache", "error", err)
	}
	host, err := resolveHost()
	if err != nil {
		return err
	}

	pipeline := install.NewPipeline(prefix, reg)
	failures := 0

	for _, id := range args {
		if err := addOne(ctx, pipeline, mgr, reg, host, id); err != nil {
			failures++
			fmt.Fprintf(os.Stderr, "%s: %v\n", id, err)
		} else {
			fmt.Printf("installed %s\n", id)
		}
	}

	if failures > 0 {
		return fmt.Errorf("%d of %d installs failed", failures, len(args))
	}
	return nil
}

func addOne(ctx context.Context, pipeline *install.Pipeline, mgr *bucket.Manager, reg *registry.Registry, host platform.Host, id string) error {
	class := resolver.Classify(id, reg, mgr)

	switch class.Kind {
	case resolver.InstalledKey:
		return fmt.Errorf("%q is already installed (use update)", id)

	case resolver.LocalArchive:
		req := baseRequest(repoNameFromPath(class.Path), registry.Source{Kind: registry.SourceDirectAsset, Name: class.Path})
		req.PlatformKey = platform.PlatformKey(host.OS, host.Arch, host.Compiler)
		_, err := pipeline.InstallLocalArchive(ctx, req, class.Path)
		return err

	case resolver.LocalBinary:
		req := baseRequest(repoNameFromPath(class.Path), registry.Source{Kind: registry.SourceDirectAsset, Name: class.Path})
		req.PlatformKey = platform.PlatformKey(host.OS, host.Arch, host.Compiler)
		_, err := pipeline.InstallLocalBinary(ctx, req, class.Path)
		return err

	case resolver.LocalScript:
		scriptType := scriptTypeForExtension(class.Path)
		req := baseRequest(repoNameFromPath(class.Path), registry.Source{Kind: registry.SourceLocalScript, Name: class.Path})
		_, err := pipeline.InstallScript(ctx, req, scriptType, class.Path)
		return err

	case resolver.DirectAsset:
		req := baseRequest(repoNameFromURL(class.URL), registry.Source{Kind: registry.SourceDirectAsset, Name: class.URL})
		req.AssetURL = class.URL
		req.AssetName = filepath.Base(class.URL)
		req.PlatformKey = platform.PlatformKey(host.OS, host.Arch, host.Compiler)
		_, err := pipeline.InstallFromRelease(ctx, req, downloadProgress(req.RepoName))
		return err

	case resolver.DirectRepo:
		return installFromRepo(ctx, pipeline, host, class.URL)

	case resolver.Glob:
		names := mgr.Glob(id)
		if len(names) == 0 {
			return wgerr.New(wgerr.NotFound, "glob matched no bucket packages").WithItem(id)
		}
		var firstErr error
		for _, name := range names {
			if err := installFromBucket(ctx, pipeline, mgr, host, name); err != nil && firstErr == nil {
				firstErr = err
			}
		}
		return firstErr

	case resolver.BucketName:
		return installFromBucketOrScript(ctx, pipeline, mgr, host, id)
	}
	return fmt.Errorf("unrecognized classification for %q", id)
}

func installFromBucketOrScript(ctx context.Context, p *install.Pipeline, mgr *bucket.Manager, host platform.Host, name string) error {
	if len(mgr.Buckets()) == 0 {
		return wgerr.New(wgerr.Prerequisite, "no buckets configured; run `wenget bucket add`").WithItem(name)
	}
	if _, ok := mgr.Lookup(name); ok {
		return installFromBucket(ctx, p, mgr, host, name)
	}
	if sc, ok := mgr.LookupScript(name); ok {
		req := baseRequest(name, registry.Source{Kind: registry.SourceBucket, Name: sc.SourceBucket})
		req.AssetURL = sc.Entry.URL
		req.Description = sc.Entry.Description
		scriptPath, err := install.Download(ctx, p.Downloader, sc.Entry.URL, filepath.Base(sc.Entry.URL), p.Prefix.DownloadsDir, "", downloadProgress(name))
		if err != nil {
			return err
		}
		_, err = p.InstallScript(ctx, req, sc.Entry.ScriptType, scriptPath)
		return err
	}
	return wgerr.New(wgerr.NotFound, "not installed, not in any bucket, and not a local path or URL").WithItem(name)
}

func installFromBucket(ctx context.Context, p *install.Pipeline, mgr *bucket.Manager, host platform.Host, name string) error {
	owned, ok := mgr.Lookup(name)
	if !ok {
		return wgerr.New(wgerr.NotFound, "package not found in any bucket").WithItem(name)
	}
	recs, fallback, ok := bucket.SelectBinaries(host, owned.Entry.Platforms)
	if !ok || len(recs) == 0 {
		return wgerr.New(wgerr.NoMatch, "no asset matches this host's platform").WithItem(name)
	}
	if fallback == platform.CompatibleConfirm && !autoYes {
		return wgerr.New(wgerr.NeedsConfirm, "only a degraded-compatibility asset is available; re-run with --yes to accept it").WithItem(name)
	}

	var firstErr error
	for i, rec := range recs {
		req := baseRequest(name, registry.Source{Kind: registry.SourceBucket, Name: owned.SourceBucket})
		req.AssetURL = rec.URL
		req.AssetName = rec.AssetName
		req.Checksum = rec.Checksum
		req.Description = owned.Entry.Description
		req.PlatformKey = platform.PlatformKey(host.OS, host.Arch, host.Compiler)
		if len(recs) > 1 {
			req.Variant = variantLabel(rec.AssetName, i)
		}
		if addName != "" {
			req.DesiredCommand = addName
		}
		if _, err := p.InstallFromRelease(ctx, req, downloadProgress(req.RepoName)); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func installFromRepo(ctx context.Context, p *install.Pipeline, host platform.Host, repoURL string) error {
	token := os.Getenv("GITHUB_TOKEN")
	provider := release.NewGitHubProvider(token)

	var rel release.Release
	var err error
	if addVersion != "" {
		rel, err = provider.Tagged(ctx, repoURL, addVersion)
	} else {
		rel, err = provider.Latest(ctx, repoURL)
	}
	if err != nil {
		return err
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
		return wgerr.New(wgerr.NoMatch, "no release asset matches this host's platform").WithItem(repoURL)
	}
	if match.Fallback == platform.CompatibleConfirm && !autoYes {
		return wgerr.New(wgerr.NeedsConfirm, "only a degraded-compatibility asset is available; re-run with --yes to accept it").WithItem(repoURL)
	}

	asset := byName[match.Asset.RawName]
	repoName := repoNameFromURL(repoURL)

	req := baseRequest(repoName, registry.Source{Kind: registry.SourceDirectRepo, Name: repoURL})
	req.AssetURL = asset.URL
	req.AssetName = asset.Name
	req.Version = rel.Tag
	req.PlatformKey = platform.PlatformKey(match.Asset.OS, match.Asset.Arch, match.Asset.Compiler)
	if addName != "" {
		req.DesiredCommand = addName
	}
	_, err = p.InstallFromRelease(ctx, req, downloadProgress(repoName))
	return err
}

func baseRequest(repoName string, source registry.Source) install.Request {
	cmdName := repoName
	if addName != "" {
		cmdName = addName
	}
	return install.Request{
		RepoName:       repoName,
		DesiredCommand: cmdName,
		Source:         source,
		AutoYes:        autoYes,
	}
}

func repoNameFromPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func repoNameFromURL(u string) string {
	trimmed := strings.TrimSuffix(u, "/")
	parts := strings.Split(trimmed, "/")
	name := parts[len(parts)-1]
	name = strings.TrimSuffix(name, ".git")
	return name
}

func scriptTypeForExtension(path string) bucket.ScriptType {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ps1":
		return bucket.PowerShell
	case ".py":
		return bucket.Python
	case ".bat", ".cmd":
		return bucket.Batch
	default:
		return bucket.Bash
	}
}

func variantLabel(assetName string, index int) string {
	parsed := platform.Parse(assetName)
	residue := platform.Variant(parsed, nil)
	if residue != "" {
		return residue
	}
	return fmt.Sprintf("variant-%d", index+1)
}
