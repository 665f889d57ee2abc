// Package appfs embeds the static files the app needs at runtime:
// database migrations, email templates and assets.
package appfs

import "embed"

//go:embed migrations templates assets
var FS embed.FS
