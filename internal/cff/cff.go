// Package cff parses CITATION.cff files (https://citation-file-format.github.io/)
// and converts them into BibLaTeX entries.
package cff

import (
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"crate2bib/internal/biblatex"
	"crate2bib/internal/cargover"
)

// File holds the CITATION.cff keys this tool reads. Unknown keys are ignored.
type File struct {
	CffVersion         string   `yaml:"cff-version"`
	Message            string   `yaml:"message"`
	Title              string   `yaml:"title"`
	Type               string   `yaml:"type"`
	Version            string   `yaml:"version"`
	Commit             string   `yaml:"commit"`
	DateReleased       *Date    `yaml:"date-released"`
	Abstract           string   `yaml:"abstract"`
	Keywords           []string `yaml:"keywords"`
	URL                string   `yaml:"url"`
	Repository         string   `yaml:"repository"`
	RepositoryCode     string   `yaml:"repository-code"`
	RepositoryArtifact string   `yaml:"repository-artifact"`
	License            License  `yaml:"license"`
	LicenseURL         string   `yaml:"license-url"`
	DOI                string   `yaml:"doi"`
	Authors            []Name   `yaml:"authors"`
}

// Name is either a person or an entity. A record with neither a person name
// nor an entity name is anonymous.
type Name struct {
	FamilyNames  string `yaml:"family-names"`
	GivenNames   string `yaml:"given-names"`
	NameParticle string `yaml:"name-particle"`
	NameSuffix   string `yaml:"name-suffix"`
	Affiliation  string `yaml:"affiliation"`
	ORCID        string `yaml:"orcid"`
	Email        string `yaml:"email"`
	// Name is set for entities (organisations, projects).
	Name string `yaml:"name"`
}

func (n Name) isPerson() bool {
	return n.FamilyNames != "" || n.GivenNames != "" || n.NameParticle != "" || n.NameSuffix != ""
}

func (n Name) isAnonymous() bool {
	return !n.isPerson() && (n.Name == "" || strings.EqualFold(n.Name, "anonymous"))
}

// Display renders the name the way it appears in the author field.
func (n Name) Display() string {
	switch {
	case n.isPerson():
		var b strings.Builder
		for _, part := range []string{n.GivenNames, n.NameParticle, n.FamilyNames} {
			if part != "" {
				b.WriteString(part)
				b.WriteByte(' ')
			}
		}
		b.WriteString(n.NameSuffix)
		return strings.TrimRight(b.String(), " ")
	case n.isAnonymous():
		return "Anonymous"
	default:
		return n.Name
	}
}

// keyName is the name used for the citation key, empty for anonymous authors.
func (n Name) keyName() string {
	switch {
	case n.isPerson():
		return n.FamilyNames
	case n.isAnonymous():
		return ""
	default:
		return n.Name
	}
}

// Date is a calendar date (YYYY-MM-DD), quoted or not.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

func (d *Date) UnmarshalYAML(node *yaml.Node) error {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(node.Value))
	if err != nil {
		return fmt.Errorf("date-released: %w", err)
	}
	d.Year, d.Month, d.Day = t.Date()
	return nil
}

// Time returns midnight UTC of the date.
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// License is a single SPDX expression or a list of alternatives.
type License []string

func (l *License) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		if v := strings.TrimSpace(node.Value); v != "" {
			*l = License{v}
		}
		return nil
	case yaml.SequenceNode:
		var list []string
		if err := node.Decode(&list); err != nil {
			return fmt.Errorf("license: %w", err)
		}
		*l = License(list)
		return nil
	default:
		return fmt.Errorf("license: unexpected yaml node kind %d", node.Kind)
	}
}

// String joins alternatives as "A, B OR C".
func (l License) String() string {
	switch len(l) {
	case 0:
		return ""
	case 1:
		return l[0]
	default:
		return strings.Join(l[:len(l)-1], ", ") + " OR " + l[len(l)-1]
	}
}

// Parse decodes a CITATION.cff document.
func Parse(data []byte) (File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return File{}, fmt.Errorf("parse CITATION.cff: %w", err)
	}
	if strings.TrimSpace(f.Title) == "" {
		return File{}, fmt.Errorf("parse CITATION.cff: title is required")
	}
	return f, nil
}

// Entry converts the file into a BibLaTeX entry.
func (f File) Entry() biblatex.Entry {
	e := biblatex.Entry{WorkType: "software"}
	if strings.EqualFold(f.Type, "dataset") {
		e.WorkType = "dataset"
	}

	keyName := ""
	if len(f.Authors) > 0 {
		keyName = f.Authors[0].keyName()
	}
	if keyName == "" {
		keyName = f.Title
	}
	year := 0
	if f.DateReleased != nil {
		year = f.DateReleased.Year
		t := f.DateReleased.Time()
		e.Date = &t
	}
	e.Key = biblatex.Key(keyName, year)

	names := make([]string, 0, len(f.Authors))
	for _, a := range f.Authors {
		names = append(names, a.Display())
	}
	e.Author = strings.Join(names, ", ")

	e.Title = "{" + f.Title + "}"
	if f.Abstract != "" {
		e.Title += ": " + strings.TrimSpace(f.Abstract)
	}

	for _, u := range []string{f.Repository, f.RepositoryCode, f.RepositoryArtifact} {
		if u != "" {
			e.URL = u
			break
		}
	}
	e.License = f.License.String()
	if v, err := cargover.Parse(f.Version); err == nil {
		e.Version = v.String()
	}
	return e
}
