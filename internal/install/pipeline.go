package install

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/wenget/wenget/internal/bucket"
	"github.com/wenget/wenget/internal/config"
	"github.com/wenget/wenget/internal/log"
	"github.com/wenget/wenget/internal/platform"
	"github.com/wenget/wenget/internal/registry"
	"github.com/wenget/wenget/internal/wgerr"
)

// Request describes one install/shim pipeline run (§4.4 "Inputs").
type Request struct {
	RepoName       string
	Variant        string
	AssetURL       string
	AssetName      string
	Checksum       string
	Version        string
	PlatformKey    string
	DesiredCommand string
	Source         registry.Source
	Description    string
	AutoYes        bool
}

// Pipeline composes the download/format/extract/discover/place/launcher
// primitives into the full install sequence (§4.4 steps 1-8), finishing
// with a single atomic registry write.
type Pipeline struct {
	Prefix     config.Prefix
	Registry   *registry.Registry
	Downloader *Downloader
}

// NewPipeline wires a Pipeline from an already-resolved prefix and
// registry.
func NewPipeline(prefix config.Prefix, reg *registry.Registry) *Pipeline {
	return &Pipeline{Prefix: prefix, Registry: reg, Downloader: NewDownloader()}
}

// InstallFromRelease runs steps 1-8 against a remotely hosted asset
// (bucket package or direct-repo/direct-asset acquisition).
func (p *Pipeline) InstallFromRelease(ctx context.Context, req Request, onProgress Progress) (*registry.Record, error) {
	// Step 1: download.
	archivePath, err := Download(ctx, p.Downloader, req.AssetURL, req.AssetName, p.Prefix.DownloadsDir, req.Checksum, onProgress)
	if err != nil {
		return nil, err
	}

	// Step 2: determine format.
	ext, err := DetectFormat(req.AssetName, archivePath)
	if err != nil {
		return nil, err
	}

	return p.installFromDownloaded(ctx, req, archivePath, ext)
}

// InstallLocalArchive implements the "universal install path" that skips
// straight to step 3 for a local archive file.
func (p *Pipeline) InstallLocalArchive(ctx context.Context, req Request, localPath string) (*registry.Record, error) {
	ext, err := DetectFormat(filepath.Base(localPath), localPath)
	if err != nil {
		return nil, err
	}
	return p.installFromDownloaded(ctx, req, localPath, ext)
}

// InstallLocalBinary implements the "local path to a plain executable"
// universal install path: skip straight to step 5, a single-file place.
func (p *Pipeline) InstallLocalBinary(ctx context.Context, req Request, localPath string) (*registry.Record, error) {
	installDir := registry.InstallDir(p.Prefix.Root, req.RepoName, req.Variant)
	placedName, err := PlaceSingleFile(localPath, installDir, commandFileName(req))
	if err != nil {
		return nil, err
	}
	return p.finishInstall(req, installDir, []string{placedName})
}

func (p *Pipeline) installFromDownloaded(ctx context.Context, req Request, archivePath string, ext platform.Extension) (*registry.Record, error) {
	installDir := registry.InstallDir(p.Prefix.Root, req.RepoName, req.Variant)

	var placed []string
	var err error

	if ext == platform.UncompressedBinary {
		// Step 3 (uncompressed binary): copy directly, no extraction.
		var singlePath string
		singlePath, err = PlaceSingleFile(archivePath, installDir, commandFileName(req))
		if err != nil {
			return nil, err
		}
		placed = []string{filepath.Base(singlePath)}
	} else {
		extractDir := archivePath + ".extracted"
		if err = Extract(archivePath, ext, extractDir); err != nil {
			return nil, err
		}

		// Step 4: executable discovery.
		candidates, derr := DiscoverExecutables(extractDir, req.RepoName)
		if derr != nil {
			return nil, derr
		}
		if len(candidates) == 0 {
			return nil, wgerr.New(wgerr.NoMatch, "no executable found in extracted archive").WithItem(req.RepoName)
		}
		selected, serr := SelectCandidates(candidates, req.AutoYes)
		if serr != nil {
			if wgErr, ok := serr.(*wgerr.Error); ok {
				return nil, wgErr.WithItem(req.RepoName)
			}
			return nil, serr
		}

		// Step 5: place files. Candidate.Path is already extractDir-relative.
		rel := make([]string, 0, len(selected))
		for _, c := range selected {
			rel = append(rel, c.Path)
		}
		placed, err = PlaceFiles(extractDir, installDir, rel)
		if err != nil {
			return nil, err
		}
	}

	return p.finishInstall(req, installDir, placed)
}

// InstallScript implements the script-installation branch: the script
// file itself is placed at prefix/apps/{name}/<original-filename> and the
// launcher invokes the right interpreter.
func (p *Pipeline) InstallScript(ctx context.Context, req Request, scriptType bucket.ScriptType, scriptPath string) (*registry.Record, error) {
	installDir := registry.InstallDir(p.Prefix.Root, req.RepoName, req.Variant)
	placedPath, err := PlaceSingleFile(scriptPath, installDir, filepath.Base(scriptPath))
	if err != nil {
		return nil, err
	}
	placedPath = filepath.Join(installDir, placedPath)

	plan, ok := PlanScriptLauncher(scriptType)
	if !ok {
		return nil, wgerr.New(wgerr.NotFound, fmt.Sprintf("no interpreter available for script type %q", scriptType)).WithItem(req.RepoName)
	}

	commandName, err := p.Registry.ResolveCommandName(req.DesiredCommand, req.Variant)
	if err != nil {
		return nil, err
	}

	if plan.DirectExecute {
		if err := CreateLauncher(p.Prefix.BinDir, commandName, placedPath, installDir); err != nil {
			return nil, err
		}
	} else {
		if err := createInterpretedLauncher(p.Prefix.BinDir, commandName, plan, placedPath); err != nil {
			return nil, err
		}
	}

	rec := registry.Record{
		RepoName:    req.RepoName,
		Variant:     req.Variant,
		Version:     req.Version,
		Platform:    req.PlatformKey,
		InstallPath: installDir,
		CommandName: commandName,
		Files:       []string{filepath.Base(placedPath)},
		Source:      req.Source,
		Description: req.Description,
		ScriptType:  string(scriptType),
	}
	p.Registry.Put(rec)
	if err := p.Registry.Save(); err != nil {
		return nil, wgerr.Wrap(wgerr.StatePersist, "saving installed registry", err)
	}
	log.Info("installed script", "repo", req.RepoName, "command", commandName)
	return &rec, nil
}

// finishInstall runs steps 6-8 for a placed set of executables: launcher
// creation (one per placed file, §4.4 step 6), command-name conflict
// resolution (step 7), and the atomic registry write (step 8). When an
// archive yields more than one executable (e.g. uv + uvx), each gets its
// own launcher AND its own installed record sharing RepoName with the
// primary, keyed by its own stem as the variant (§8 scenario 3: "two
// installed records written sharing repo_name=uv ... or a second record
// keyed uv::uvx"). Without this, a secondary launcher would have no
// registry entry for CommandNames conflict detection or `del` to find.
func (p *Pipeline) finishInstall(req Request, installDir string, placed []string) (*registry.Record, error) {
	if len(placed) == 0 {
		return nil, wgerr.New(wgerr.NoMatch, "nothing was placed").WithItem(req.RepoName)
	}

	primary := placed[0]
	commandName, err := p.Registry.ResolveCommandName(req.DesiredCommand, req.Variant)
	if err != nil {
		return nil, err
	}
	if err := CreateLauncher(p.Prefix.BinDir, commandName, filepath.Join(installDir, primary), installDir); err != nil {
		return nil, err
	}

	rec := registry.Record{
		RepoName:    req.RepoName,
		Variant:     req.Variant,
		Version:     req.Version,
		Platform:    req.PlatformKey,
		InstallPath: installDir,
		CommandName: commandName,
		Files:       []string{primary},
		Source:      req.Source,
		AssetName:   req.AssetName,
		Description: req.Description,
	}
	p.Registry.Put(rec)

	// Extra executables (e.g. uv + uvx) get their own launcher, named
	// after their own file stem, each independently conflict-resolved,
	// and their own registry record so `del` and conflict detection can
	// see them. Put happens before the primary's Save so ResolveCommandName
	// already sees commandName taken.
	for _, extra := range placed[1:] {
		stem := stemName(extra)
		extraVariant := stem
		if req.Variant != "" {
			extraVariant = req.Variant + "-" + stem
		}
		resolved, rerr := p.Registry.ResolveCommandName(stem, extraVariant)
		if rerr != nil {
			return nil, rerr
		}
		if err := CreateLauncher(p.Prefix.BinDir, resolved, filepath.Join(installDir, extra), installDir); err != nil {
			return nil, err
		}
		extraRec := registry.Record{
			RepoName:      req.RepoName,
			Variant:       extraVariant,
			Version:       req.Version,
			Platform:      req.PlatformKey,
			InstallPath:   installDir,
			CommandName:   resolved,
			Files:         []string{extra},
			Source:        req.Source,
			AssetName:     req.AssetName,
			Description:   req.Description,
			ParentPackage: rec.Key(),
		}
		p.Registry.Put(extraRec)
	}

	if err := p.Registry.Save(); err != nil {
		return nil, wgerr.Wrap(wgerr.StatePersist, "saving installed registry", err)
	}
	log.Info("installed package", "repo", req.RepoName, "variant", req.Variant, "command", commandName)
	return &rec, nil
}

func commandFileName(req Request) string {
	if req.AssetName != "" {
		return req.AssetName
	}
	return req.RepoName
}

func stemName(fileName string) string {
	ext := filepath.Ext(fileName)
	return fileName[:len(fileName)-len(ext)]
}
