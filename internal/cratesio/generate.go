package cratesio

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"crate2bib/internal/biblatex"
	"crate2bib/internal/cargover"
)

type candidate struct {
	index   int
	version cargover.Version
}

// SelectVersion returns the index into resp.Versions of the highest version
// matching req. Versions that are not valid semver are skipped.
func SelectVersion(resp CrateResponse, req cargover.Req) (int, cargover.Version, bool) {
	cands := make([]candidate, 0, len(resp.Versions))
	for i, v := range resp.Versions {
		parsed, err := cargover.Parse(v.Num)
		if err != nil {
			continue
		}
		cands = append(cands, candidate{index: i, version: parsed})
	}
	sort.SliceStable(cands, func(i, j int) bool {
		return cands[i].version.Compare(cands[j].version) > 0
	})
	for _, c := range cands {
		if req.Matches(c.version) {
			return c.index, c.version, true
		}
	}
	return 0, cargover.Version{}, false
}

// Generate looks up a crate and builds the entry of the newest version that
// satisfies versionReq (the newest release when versionReq is empty).
func (c *Client) Generate(ctx context.Context, crateName, versionReq string) (biblatex.Entry, error) {
	crateName = strings.TrimSpace(crateName)
	versionReq = strings.TrimSpace(versionReq)
	req, err := cargover.ParseReq(versionReq)
	if err != nil {
		return biblatex.Entry{}, err
	}
	info, err := c.GetCrate(ctx, crateName)
	if err != nil {
		return biblatex.Entry{}, err
	}
	return EntryFor(info, crateName, versionReq, req)
}

// EntryFor builds the entry from an already fetched crate document.
func EntryFor(info CrateResponse, crateName, versionReq string, req cargover.Req) (biblatex.Entry, error) {
	idx, ver, ok := SelectVersion(info, req)
	if !ok {
		if versionReq == "" {
			return biblatex.Entry{}, &NotFoundError{Msg: fmt.Sprintf("Could not find crate %s", crateName)}
		}
		return biblatex.Entry{}, &NotFoundError{Msg: fmt.Sprintf("Could not find version %s for crate %s", versionReq, crateName)}
	}
	found := info.Versions[idx]

	keyName := crateName
	author := ""
	if pb := found.PublishedBy; pb != nil {
		author = pb.Login
		if pb.Name != nil && *pb.Name != "" {
			author = *pb.Name
			if words := strings.Split(*pb.Name, " "); len(words) > 1 && words[1] != "" {
				keyName = words[1]
			}
		}
	}

	title := "{" + crateName + "}"
	if d := info.Crate.Description; d != nil {
		title += ": " + *d
	}

	e := biblatex.Entry{
		Key:      biblatex.Key(keyName, info.Crate.UpdatedAt.Year()),
		WorkType: "software",
		Author:   author,
		Title:    title,
		Version:  ver.String(),
	}
	if r := info.Crate.Repository; r != nil {
		e.URL = *r
	}
	if l := found.License; l != nil {
		e.License = *l
	}
	if !found.UpdatedAt.IsZero() {
		d := found.UpdatedAt.UTC()
		e.Date = &d
	}
	return e, nil
}
