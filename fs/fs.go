// Package appfs embeds the static assets shipped with the binary:
// database migrations and email templates.
package appfs

import "embed"

// all: is required so the _base.* layout partials get embedded too.
//
//go:embed migrations all:templates
var FS embed.FS
