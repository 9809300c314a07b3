// Package web holds the server-rendered page templates.
package web

import (
	"embed"
	"io/fs"
	"net/http"
	"strconv"
	"time"

	"github.com/gofiber/template/html/v2"
)

//go:embed views
var viewsFS embed.FS

// Layout wraps every page.
const Layout = "layouts/main"

// NewEngine returns the template engine over the embedded views.
func NewEngine() *html.Engine {
	sub, err := fs.Sub(viewsFS, "views")
	if err != nil {
		panic(err)
	}
	engine := html.NewFileSystem(http.FS(sub), ".html")
	engine.AddFuncMap(map[string]interface{}{
		"date": func(t time.Time) string { return t.Format("2006-01-02") },
		"kgToLbs": func(kg *float64) string {
			if kg == nil {
				return ""
			}
			return strconv.FormatFloat(*kg*2.20462, 'f', 1, 64)
		},
		"deref": func(s *string) string {
			if s == nil {
				return ""
			}
			return *s
		},
	})
	return engine
}
