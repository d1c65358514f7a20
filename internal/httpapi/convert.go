package httpapi

import (
	"crate2bib/internal/biblatex"
	"crate2bib/pkg/types"
)

func toResults(in []biblatex.Result) []types.Result {
	out := make([]types.Result, 0, len(in))
	for _, r := range in {
		tr := types.Result{Origin: string(r.Origin), Source: r.Source, BibTeX: r.String()}
		if e := r.Entry; e != nil {
			te := &types.Entry{
				Key:      e.Key,
				WorkType: e.WorkType,
				Author:   e.Author,
				Title:    e.Title,
				URL:      e.URL,
				License:  e.License,
				Version:  e.Version,
			}
			if e.Date != nil {
				te.Date = e.Date.Format("2006-01-02")
			}
			tr.Entry = te
		}
		out = append(out, tr)
	}
	return out
}
