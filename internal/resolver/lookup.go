package resolver

import (
	"context"
	"time"

	"crate2bib/internal/biblatex"
	"crate2bib/internal/cargover"
	"crate2bib/internal/cratesio"
	"crate2bib/internal/github"
)

// GetBibLaTeX returns the crates.io entry of the selected version followed by
// the entries of citation files found in the crate's repository. Citation
// file lookups are best effort: their failures are logged and skipped.
func (m *Module) GetBibLaTeX(ctx context.Context, q Query) ([]biblatex.Result, error) {
	crates, files, err := m.clients()
	if err != nil {
		return nil, err
	}
	q, err = q.normalized()
	if err != nil {
		return nil, err
	}
	req, err := cargover.ParseReq(q.Version)
	if err != nil {
		return nil, &BadInputError{Msg: err.Error()}
	}

	start := time.Now()
	info, err := crates.GetCrate(ctx, q.Crate)
	if err != nil {
		return nil, err
	}
	entry, err := cratesio.EntryFor(info, q.Crate, q.Version, req)
	if err != nil {
		return nil, err
	}
	results := []biblatex.Result{{
		Origin: biblatex.OriginCratesIO,
		Source: crates.CrateURL(q.Crate),
		Entry:  &entry,
	}}

	if repo := info.Crate.Repository; repo != nil && *repo != "" {
		branch := q.Branch
		if branch == "" {
			branch = m.cfg.Branch
		}
		names := q.Filenames
		if len(names) == 0 {
			names = m.cfg.Filenames
		}
		if len(names) == 0 {
			names = github.DefaultFilenames
		}
		found, err := files.Search(ctx, *repo, branch, names)
		switch {
		case err != nil && ctx.Err() != nil:
			return nil, ctx.Err()
		case err != nil:
			m.log.Warn().Err(err).Str("crate", q.Crate).Str("repository", *repo).Msg("citation file lookup failed")
		default:
			results = append(results, found...)
		}
	}
	m.log.Debug().
		Str("crate", q.Crate).
		Str("version", entry.Version).
		Int("results", len(results)).
		Dur("duration", time.Since(start)).
		Msg("bibliography resolved")
	return results, nil
}

// CreateBibString resolves input and renders every result, separated by a
// blank line. input is a string ("serde", "serde 1.0", "serde@1.0"), a Query,
// a types.BibRequest or a map with the BibRequest JSON keys.
func (m *Module) CreateBibString(ctx context.Context, input any) (string, error) {
	q, err := queryFromInput(input)
	if err != nil {
		return "", err
	}
	results, err := m.GetBibLaTeX(ctx, q)
	if err != nil {
		return "", err
	}
	return biblatex.Join(results), nil
}
