package types

// Entry is the JSON view of a generated BibLaTeX entry.
type Entry struct {
	// Citation key.
	// example: Tolnay2024
	Key string `json:"key" example:"Tolnay2024"`
	// BibLaTeX entry type.
	// example: software
	WorkType string `json:"work_type" example:"software"`
	// Authors joined by ", ".
	// example: David Tolnay
	Author string `json:"author" example:"David Tolnay"`
	// Title including the braced crate name.
	// example: {serde}: A generic serialization/deserialization framework
	Title string `json:"title" example:"{serde}: A generic serialization/deserialization framework"`
	// Repository URL.
	// example: https://github.com/serde-rs/serde
	URL string `json:"url,omitempty" example:"https://github.com/serde-rs/serde"`
	// SPDX license expression.
	// example: MIT OR Apache-2.0
	License string `json:"license,omitempty" example:"MIT OR Apache-2.0"`
	// Resolved semantic version.
	// example: 1.0.217
	Version string `json:"version,omitempty" example:"1.0.217"`
	// Release date (YYYY-MM-DD).
	// example: 2024-12-27
	Date string `json:"date,omitempty" example:"2024-12-27"`
}

// Result is one citation found for a request.
type Result struct {
	// Where the citation came from: crates.io, CITATION.cff or citation.bib.
	// example: crates.io
	Origin string `json:"origin" example:"crates.io"`
	// URL the citation was read from, when it is a repository file.
	Source string `json:"source,omitempty"`
	// Structured entry; absent for raw .bib files.
	Entry *Entry `json:"entry,omitempty"`
	// Rendered BibTeX text.
	BibTeX string `json:"bibtex"`
}
