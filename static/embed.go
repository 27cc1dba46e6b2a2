// Package staticfiles embeds the status page stylesheet and script.
package staticfiles

import (
	"embed"
	"io/fs"
)

//go:embed css/*.css js/*.js
var assets embed.FS

// EmbeddedFS serves css/ and js/ from the binary.
func EmbeddedFS() fs.FS {
	return assets
}
