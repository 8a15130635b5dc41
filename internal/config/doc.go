// Package config handles configuration loading for gartrix.
//
// # Overview
//
// A Config is built once at startup by Load and handed to whatever needs it.
// There is no package-level instance.
//
// # Configuration File
//
// The default file is ./config.json. The encoding follows the extension:
//
//   - .json (and anything unrecognised): JSON
//   - .yaml, .yml: YAML
//   - .toml: TOML
//
// A missing file yields defaults. A file that exists but does not parse is an error.
//
// # Environment
//
// Values in the file can reference environment variables:
//
//	{"database_url": "postgres://gartrix:${PGPASSWORD}@db/gartrix"}
//
// After parsing, these variables override the file:
//
//	GARTRIX_BASE_URL
//	GARTRIX_DATABASE_URL
//	GARTRIX_LOG_LEVEL    # debug, info, warn, error
//	GARTRIX_LOG_FORMAT   # text, json
//
// # Persistence
//
// Write saves the effective values, environment overrides included, so the
// entry point can rewrite the file on shutdown.
package config
