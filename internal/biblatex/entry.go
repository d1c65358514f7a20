// Package biblatex holds the BibLaTeX entry model shared by every source
// (crates.io, CITATION.cff, raw .bib files) and renders it as text.
package biblatex

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Origin tells where an entry was obtained from.
type Origin string

const (
	OriginCratesIO    Origin = "crates.io"
	OriginCitationCff Origin = "CITATION.cff"
	OriginCitationBib Origin = "citation.bib"
)

// Entry is a fully specified BibLaTeX record.
type Entry struct {
	// Key is the citation key used in \cite{key}.
	Key string `json:"key"`
	// WorkType is the BibLaTeX entry type, usually "software".
	WorkType string `json:"work_type"`
	Author   string `json:"author"`
	// Title already carries its braces, e.g. "{serde}: description".
	Title   string     `json:"title"`
	URL     string     `json:"url,omitempty"`
	License string     `json:"license,omitempty"`
	Version string     `json:"version,omitempty"`
	Date    *time.Time `json:"date,omitempty"`
}

// String renders the entry. Optional fields are omitted when empty and the
// closing brace is not followed by a newline.
func (e Entry) String() string {
	var b strings.Builder
	workType := e.WorkType
	if workType == "" {
		workType = "software"
	}
	fmt.Fprintf(&b, "@%s {%s,\n", workType, e.Key)
	fmt.Fprintf(&b, "    author = {%s},\n", e.Author)
	fmt.Fprintf(&b, "    title = {%s},\n", e.Title)
	if e.URL != "" {
		fmt.Fprintf(&b, "    url = {%s},\n", e.URL)
	}
	if e.Date != nil {
		d := e.Date.UTC()
		fmt.Fprintf(&b, "    date = {%04d-%02d-%02d},\n", d.Year(), int(d.Month()), d.Day())
	}
	if e.Version != "" {
		fmt.Fprintf(&b, "    version = {%s},\n", e.Version)
	}
	if e.License != "" {
		fmt.Fprintf(&b, "    license = {%s},\n", e.License)
	}
	b.WriteString("}")
	return b.String()
}

// Result is one entry found for a query. Raw is set instead of Entry when the
// source was already BibTeX (a citation.bib file in the repository).
type Result struct {
	Origin Origin `json:"origin"`
	Source string `json:"source,omitempty"`
	Entry  *Entry `json:"entry,omitempty"`
	Raw    string `json:"raw,omitempty"`
}

// String returns the BibTeX text of the result.
func (r Result) String() string {
	if r.Entry != nil {
		return r.Entry.String()
	}
	return strings.TrimRight(r.Raw, "\n")
}

// Join renders results separated by a blank line.
func Join(results []Result) string {
	parts := make([]string, 0, len(results))
	for _, r := range results {
		if s := r.String(); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "\n\n")
}

// Key builds a citation key from a name and a year. Diacritics are folded and
// anything that is not a letter, digit, '-' or '_' is dropped, so that the key
// survives LaTeX unescaped.
func Key(name string, year int) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, name)
	if err != nil {
		folded = name
	}
	var b strings.Builder
	for _, r := range folded {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			b.WriteRune(r)
		case r == '-' || r == '_':
			b.WriteRune(r)
		}
	}
	if year > 0 {
		fmt.Fprintf(&b, "%d", year)
	}
	return b.String()
}
