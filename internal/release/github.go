package release

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/go-github/v27/github"
	"golang.org/x/oauth2"

	"github.com/wenget/wenget/internal/wgerr"
)

// GitHubProvider implements Provider against the GitHub REST API. An empty
// Token means anonymous (lower) rate limits; GITHUB_TOKEN raises them.
type GitHubProvider struct {
	Token  string
	client *github.Client
}

// NewGitHubProvider builds a provider, wiring an oauth2 static-token
// transport when token is non-empty the same way distri's autobuilder
// authenticates against the GitHub API.
func NewGitHubProvider(token string) *GitHubProvider {
	p := &GitHubProvider{Token: token}
	var hc *http.Client
	if token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		hc = oauth2.NewClient(context.Background(), ts)
	}
	p.client = github.NewClient(hc)
	return p
}

// ParseOwnerRepo splits a GitHub repository URL into owner and repo name,
// matching the resolver's DirectRepo classification (host is a known
// code-forge and the path has exactly two non-empty segments).
func ParseOwnerRepo(repoURL string) (owner, repo string, ok bool) {
	u, err := url.Parse(repoURL)
	if err != nil {
		return "", "", false
	}
	segments := splitNonEmpty(u.Path)
	if len(segments) != 2 {
		return "", "", false
	}
	return segments[0], strings.TrimSuffix(segments[1], ".git"), true
}

func splitNonEmpty(path string) []string {
	var out []string
	for _, s := range strings.Split(path, "/") {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

func (p *GitHubProvider) Latest(ctx context.Context, repoURL string) (Release, error) {
	owner, repo, ok := ParseOwnerRepo(repoURL)
	if !ok {
		return Release{}, wgerr.New(wgerr.NetworkFatal, fmt.Sprintf("not a recognized repository URL: %s", repoURL))
	}
	rel, resp, err := p.client.Repositories.GetLatestRelease(ctx, owner, repo)
	if err != nil {
		return Release{}, translateGitHubError(err, resp)
	}
	return convertRelease(rel), nil
}

func (p *GitHubProvider) Tagged(ctx context.Context, repoURL, tag string) (Release, error) {
	owner, repo, ok := ParseOwnerRepo(repoURL)
	if !ok {
		return Release{}, wgerr.New(wgerr.NetworkFatal, fmt.Sprintf("not a recognized repository URL: %s", repoURL))
	}
	// Tags are accepted with or without a leading "v"; try the form given
	// first, then the other, since forges are inconsistent about which
	// they actually tagged with.
	rel, resp, err := p.client.Repositories.GetReleaseByTag(ctx, owner, repo, tag)
	if err == nil {
		return convertRelease(rel), nil
	}
	alt := "v" + NormalizeTag(tag)
	if alt == tag {
		alt = NormalizeTag(tag)
	}
	rel2, _, err2 := p.client.Repositories.GetReleaseByTag(ctx, owner, repo, alt)
	if err2 == nil {
		return convertRelease(rel2), nil
	}
	return Release{}, translateGitHubError(err, resp)
}

func convertRelease(rel *github.RepositoryRelease) Release {
	r := Release{Tag: rel.GetTagName(), PublishedAt: rel.GetPublishedAt().Time}
	for _, a := range rel.Assets {
		r.Assets = append(r.Assets, Asset{
			Name: a.GetName(),
			URL:  a.GetBrowserDownloadURL(),
			Size: int64(a.GetSize()),
		})
	}
	return r
}

func translateGitHubError(err error, resp *github.Response) error {
	if rle, ok := err.(*github.RateLimitError); ok {
		wait := int(time.Until(rle.Rate.Reset.Time).Seconds())
		if wait < 0 {
			wait = 0
		}
		return &wgerr.Error{
			Kind:       wgerr.RateLimited,
			Msg:        "github rate limit exceeded",
			RetryAfter: wait,
			Err:        err,
		}
	}
	if resp != nil && resp.StatusCode == http.StatusNotFound {
		return wgerr.Wrap(wgerr.NotFound, "release not found", err)
	}
	if resp != nil && resp.StatusCode == http.StatusForbidden {
		return wgerr.Wrap(wgerr.RateLimited, "github API forbidden (likely rate limited)", err)
	}
	if resp != nil && resp.StatusCode >= 500 {
		return wgerr.Wrap(wgerr.NetworkTransient, "github API server error", err)
	}
	return wgerr.Wrap(wgerr.NetworkFatal, "github API request failed", err)
}
