package main

// General API documentation for swaggo. Regenerate internal/httpapi/docs with
// `swag init -g cmd/crate2bib/docs.go -o internal/httpapi/docs`.
//
// @title           crate2bib API
// @version         1.0
// @description     BibLaTeX entries for Rust crates from crates.io and repository citation files.
//
// @contact.name   crate2bib maintainers
// @contact.url    https://github.com/jonaspleyer/crate2bib
//
// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT
//
// @BasePath  /
//
// @schemes http
