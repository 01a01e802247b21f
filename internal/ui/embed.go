// Package ui carries the embedded overlay assets served at the HTTP
// root.
package ui

import "embed"

// DistFS holds the static overlay files.
//
//go:embed dist
var DistFS embed.FS
