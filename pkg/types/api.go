package types

// BibRequest asks for the citations of a crate.
type BibRequest struct {
	// Crate name on crates.io.
	// example: serde
	Crate string `json:"crate" example:"serde"`
	// Optional Cargo version requirement. Empty selects the newest release.
	// example: 1.0
	Version string `json:"version,omitempty" example:"1.0"`
	// Optional branch to search for citation files. Empty uses the default branch.
	// example: main
	Branch string `json:"branch,omitempty" example:"main"`
	// Optional repository files to search. Empty uses CITATION.cff and citation.bib.
	// example: ["CITATION.cff"]
	Filenames []string `json:"filenames,omitempty" example:"[\"CITATION.cff\"]"`
}

// BibResponse is returned by the /bib endpoints.
type BibResponse struct {
	// Crate that was looked up.
	// example: serde
	Crate string `json:"crate" example:"serde"`
	// Citations, crates.io first.
	Results []Result `json:"results"`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	// example: invalid JSON body
	Error string `json:"error" example:"invalid JSON body"`
	// HTTP status code.
	// example: 400
	Code int `json:"code" example:"400"`
}

// StatusResponse is returned by GET /status.
type StatusResponse struct {
	// Loader state: not_started, loading, ready or failed.
	// example: ready
	State string `json:"state" example:"ready"`
	// Initialization error when State is failed.
	Error string `json:"error,omitempty"`
	// Calls currently in flight through the adapter.
	// example: 2
	Inflight int64 `json:"inflight" example:"2"`
	// Calls settled successfully since start.
	// example: 40
	Succeeded uint64 `json:"succeeded_total" example:"40"`
	// Calls settled with an error since start.
	// example: 3
	Failed uint64 `json:"failed_total" example:"3"`
	// Uptime of the server in seconds.
	// example: 3600
	UptimeSeconds int64 `json:"uptime_seconds" example:"3600"`
	// Server time in unix seconds.
	// example: 1700000000
	ServerTimeUnix int64 `json:"server_time_unix" example:"1700000000"`
}
