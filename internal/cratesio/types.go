package cratesio

import "time"

// CrateResponse is the subset of GET /api/v1/crates/{name} this tool reads.
type CrateResponse struct {
	Crate    CrateData `json:"crate"`
	Versions []Version `json:"versions"`
}

// CrateData describes the crate as a whole.
type CrateData struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	Repository  *string   `json:"repository"`
	Homepage    *string   `json:"homepage"`
	MaxVersion  string    `json:"max_version"`
	UpdatedAt   time.Time `json:"updated_at"`
	CreatedAt   time.Time `json:"created_at"`
}

// Version is one published version of a crate.
type Version struct {
	ID          int64     `json:"id"`
	Crate       string    `json:"crate"`
	Num         string    `json:"num"`
	License     *string   `json:"license"`
	Yanked      bool      `json:"yanked"`
	UpdatedAt   time.Time `json:"updated_at"`
	CreatedAt   time.Time `json:"created_at"`
	PublishedBy *User     `json:"published_by"`
}

// User is the crates.io account that published a version.
type User struct {
	ID    int64   `json:"id"`
	Login string  `json:"login"`
	Name  *string `json:"name"`
	URL   string  `json:"url"`
}
