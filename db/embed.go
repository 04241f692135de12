// Package db embeds the PostgreSQL schema.
package db

import _ "embed"

// Schema creates the key/value and orders tables. It is idempotent.
//
//go:embed migrations/001_schema.sql
var Schema string
