// Package library provides the browser file library: folder navigation,
// upload, rename, delete, favorites and previews over the storage tree.
package library

import (
	"embed"

	"github.com/dalemusser/waffle/pantry/templates"
)

//go:embed templates/*.gohtml
var FS embed.FS

func init() {
	templates.Register(templates.Set{
		Name:     "library",
		FS:       FS,
		Patterns: []string{"templates/*.gohtml"},
	})
}
