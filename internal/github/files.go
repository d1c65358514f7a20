// Package github retrieves citation files (CITATION.cff, citation.bib) from
// the default branch of a GitHub repository.
package github

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"crate2bib/internal/biblatex"
	"crate2bib/internal/cff"
)

// DefaultRawBaseURL serves raw file contents of public repositories.
const DefaultRawBaseURL = "https://raw.githubusercontent.com"

// DefaultFilenames are searched when the caller does not name any.
var DefaultFilenames = []string{"CITATION.cff", "citation.bib"}

const maxFileBytes = 1 << 20

var tracer = otel.Tracer("crate2bib/internal/github")

// Fetcher downloads citation files from repositories hosted on github.com.
type Fetcher struct {
	rawBase    string
	userAgent  string
	httpClient *http.Client
	log        zerolog.Logger
}

// NewFetcher returns a Fetcher. Empty rawBase selects DefaultRawBaseURL.
func NewFetcher(rawBase, userAgent string, httpClient *http.Client, log zerolog.Logger) *Fetcher {
	rawBase = strings.TrimRight(rawBase, "/")
	if rawBase == "" {
		rawBase = DefaultRawBaseURL
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Fetcher{rawBase: rawBase, userAgent: userAgent, httpClient: httpClient, log: log}
}

// ParseRepo extracts owner and repository name from a github.com URL.
// ok is false for other hosts.
func ParseRepo(repoURL string) (owner, repo string, ok bool) {
	u, err := url.Parse(strings.TrimSpace(repoURL))
	if err != nil {
		return "", "", false
	}
	host := strings.TrimPrefix(strings.ToLower(u.Host), "www.")
	if host != "github.com" {
		return "", "", false
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], strings.TrimSuffix(parts[1], ".git"), true
}

// Search fetches every filename from the repository concurrently and returns
// the results in filename order. Missing files are skipped. An empty branch
// means the repository's default branch.
func (f *Fetcher) Search(ctx context.Context, repoURL, branch string, filenames []string) ([]biblatex.Result, error) {
	owner, repo, ok := ParseRepo(repoURL)
	if !ok {
		f.log.Debug().Str("repository", repoURL).Msg("repository is not on github; skipping citation files")
		return nil, nil
	}
	if branch == "" {
		branch = "HEAD"
	}
	ctx, span := tracer.Start(ctx, "github.Search")
	defer span.End()
	span.SetAttributes(
		attribute.String("repo.owner", owner),
		attribute.String("repo.name", repo),
		attribute.String("repo.branch", branch),
	)

	slots := make([]*biblatex.Result, len(filenames))
	g, gctx := errgroup.WithContext(ctx)
	for i, name := range filenames {
		g.Go(func() error {
			r, err := f.fetchOne(gctx, owner, repo, branch, name)
			if err != nil {
				return err
			}
			slots[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		return nil, err
	}
	var out []biblatex.Result
	for _, r := range slots {
		if r != nil {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *Fetcher) fetchOne(ctx context.Context, owner, repo, branch, name string) (*biblatex.Result, error) {
	name = strings.TrimLeft(strings.TrimSpace(name), "/")
	if name == "" {
		return nil, nil
	}
	src := f.rawBase + "/" + path.Join(url.PathEscape(owner), url.PathEscape(repo), url.PathEscape(branch), name)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return nil, err
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}
	resp, err := f.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("fetch %s: %w", name, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		f.log.Debug().Str("file", name).Str("repo", owner+"/"+repo).Msg("citation file not present")
		return nil, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("fetch %s: github http error: %d", name, resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFileBytes))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}

	switch strings.ToLower(path.Ext(name)) {
	case ".cff":
		file, err := cff.Parse(body)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		e := file.Entry()
		return &biblatex.Result{Origin: biblatex.OriginCitationCff, Source: src, Entry: &e}, nil
	case ".bib":
		raw := strings.TrimSpace(string(body))
		if raw == "" {
			return nil, nil
		}
		return &biblatex.Result{Origin: biblatex.OriginCitationBib, Source: src, Raw: raw}, nil
	default:
		f.log.Warn().Str("file", name).Msg("unsupported citation file type")
		return nil, nil
	}
}
