// Package docs holds the OpenAPI description of the crate2bib HTTP API in
// the layout produced by swag.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "license": {
            "name": "MIT",
            "url": "https://opensource.org/licenses/MIT"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/bib": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["bib"],
                "summary": "Citations of a crate",
                "parameters": [
                    {
                        "description": "crate and optional version requirement",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/types.BibRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.BibResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
                }
            }
        },
        "/bib/{crate}": {
            "get": {
                "description": "A \".bib\" suffix on the crate name returns all entries as BibTeX text.",
                "produces": ["application/json", "text/plain"],
                "tags": ["bib"],
                "summary": "Citations of a crate",
                "parameters": [
                    {"type": "string", "description": "crate name, optionally followed by .bib", "name": "crate", "in": "path", "required": true},
                    {"type": "string", "description": "Cargo version requirement", "name": "version", "in": "query"},
                    {"type": "string", "description": "repository branch searched for citation files", "name": "branch", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.BibResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
                }
            }
        },
        "/status": {
            "get": {
                "produces": ["application/json"],
                "tags": ["status"],
                "summary": "Loader state and adapter counters",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.StatusResponse"}}
                }
            }
        }
    },
    "definitions": {
        "types.BibRequest": {
            "type": "object",
            "properties": {
                "crate": {"type": "string", "example": "serde"},
                "version": {"type": "string", "example": "1.0"},
                "branch": {"type": "string", "example": "main"},
                "filenames": {"type": "array", "items": {"type": "string"}, "example": ["CITATION.cff"]}
            }
        },
        "types.BibResponse": {
            "type": "object",
            "properties": {
                "crate": {"type": "string", "example": "serde"},
                "results": {"type": "array", "items": {"$ref": "#/definitions/types.Result"}}
            }
        },
        "types.Entry": {
            "type": "object",
            "properties": {
                "key": {"type": "string", "example": "Tolnay2024"},
                "work_type": {"type": "string", "example": "software"},
                "author": {"type": "string", "example": "David Tolnay"},
                "title": {"type": "string", "example": "{serde}: A generic serialization/deserialization framework"},
                "url": {"type": "string", "example": "https://github.com/serde-rs/serde"},
                "license": {"type": "string", "example": "MIT OR Apache-2.0"},
                "version": {"type": "string", "example": "1.0.217"},
                "date": {"type": "string", "example": "2024-12-27"}
            }
        },
        "types.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string", "example": "invalid JSON body"},
                "code": {"type": "integer", "example": 400}
            }
        },
        "types.Result": {
            "type": "object",
            "properties": {
                "origin": {"type": "string", "example": "crates.io"},
                "source": {"type": "string"},
                "entry": {"$ref": "#/definitions/types.Entry"},
                "bibtex": {"type": "string"}
            }
        },
        "types.StatusResponse": {
            "type": "object",
            "properties": {
                "state": {"type": "string", "example": "ready"},
                "error": {"type": "string"},
                "inflight": {"type": "integer", "example": 2},
                "succeeded_total": {"type": "integer", "example": 40},
                "failed_total": {"type": "integer", "example": 3},
                "uptime_seconds": {"type": "integer", "example": 3600},
                "server_time_unix": {"type": "integer", "example": 1700000000}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{"http"},
	Title:            "crate2bib API",
	Description:      "BibLaTeX citations for Rust crates from crates.io and repository citation files.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
