// Package web embeds the page templates and the browser assets (widget
// script, playground script, stylesheet) into the polydemo binary.
package web

import (
	"embed"
	"io/fs"
)

//go:embed templates/*.html
var templatesFS embed.FS

//go:embed static
var staticFS embed.FS

// GetTemplatesFS returns the layout and page templates rooted at their
// directory, as handlers.New expects them.
func GetTemplatesFS() fs.FS {
	return mustSub(templatesFS, "templates")
}

// GetStaticFS returns the assets served under /static/
func GetStaticFS() fs.FS {
	return mustSub(staticFS, "static")
}

func mustSub(fsys embed.FS, dir string) fs.FS {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		panic(err)
	}
	return sub
}
