// Package web renders the inbox pages from embedded html/template files.
package web

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/welldanyogia/webrana-catchmail/internal/models"
)

// Page template names
const (
	PageList     = "list.html"
	PageDetail   = "detail.html"
	PageEmpty    = "empty.html"
	PageNotFound = "not_found.html"
)

// DisplayLayout is how received_at is shown on the pages
const DisplayLayout = "2006-01-02 15:04:05 MST"

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// ListPage is the data for PageList
type ListPage struct {
	Emails []models.EmailListItem
}

// DetailPage is the data for PageDetail.
// Previous and Next are nil when there is no neighbour.
type DetailPage struct {
	Email    *models.Email
	Previous *models.Email
	Next     *models.Email
}

// Renderer implements echo.Renderer for the inbox pages
type Renderer struct {
	pages       map[string]*template.Template
	displayName string
	location    *time.Location
}

type pageData struct {
	DisplayName string
	Page        interface{}
}

// NewRenderer parses every page against the shared layout
func NewRenderer(displayName string, location *time.Location) (*Renderer, error) {
	if location == nil {
		location = time.UTC
	}

	r := &Renderer{
		pages:       make(map[string]*template.Template),
		displayName: displayName,
		location:    location,
	}

	funcs := template.FuncMap{
		"localTime": r.LocalTime,
	}

	for _, name := range []string{PageList, PageDetail, PageEmpty, PageNotFound} {
		tmpl, err := template.New(name).Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/"+name)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
		}
		r.pages[name] = tmpl
	}

	return r, nil
}

// Render executes the named page inside the layout
func (r *Renderer) Render(w io.Writer, name string, data interface{}, c echo.Context) error {
	tmpl, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("unknown page %q", name)
	}
	return tmpl.ExecuteTemplate(w, "layout", pageData{
		DisplayName: r.displayName,
		Page:        data,
	})
}

// LocalTime formats a received_at value in the display timezone.
// Unparseable values are shown unchanged.
func (r *Renderer) LocalTime(receivedAt string) string {
	t, err := models.ParseReceivedAt(receivedAt)
	if err != nil {
		return receivedAt
	}
	return t.In(r.location).Format(DisplayLayout)
}

// Static returns the embedded static assets rooted at static/
func Static() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return sub
}
