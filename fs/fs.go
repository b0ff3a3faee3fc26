package appfs

import "embed"

// FS embeds the app's static assets (email templates) so binaries remain
// self-contained regardless of the working directory.
//go:embed all:assets
var FS embed.FS
