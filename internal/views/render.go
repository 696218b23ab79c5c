// Package views renders the dashboard status page.
package views

import (
	"embed"
	"errors"
	"html/template"
	"io"
	"io/fs"
	"time"

	"github.com/kjstillabower/process-dashboard/internal/config"
	"github.com/kjstillabower/process-dashboard/internal/format"
)

//go:embed templates/*.html
var viewsFS embed.FS

var pageTmpl *template.Template

// loadTemplatesFromFS parses the page templates from fsys/dir with the format helpers bound.
// Tests use it to simulate missing or broken templates.
func loadTemplatesFromFS(fsys fs.FS, dir string) error {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		return err
	}
	tmpl, err := template.New("pages").Funcs(format.FuncMap()).ParseFS(sub, "*.html")
	if err != nil {
		return err
	}
	pageTmpl = tmpl
	return nil
}

// LoadTemplates loads the embedded templates. Call during startup before
// serving requests; if it returns an error, do not start the server.
func LoadTemplates() error {
	return loadTemplatesFromFS(viewsFS, "templates")
}

// IndexData is the view model for index.html.
type IndexData struct {
	APIAvailable bool
	APIEndpoint  string
	CheckedAt    time.Time

	FeedFlow              float64
	FeedConcentrationPct  float64
	FinalConcentrationPct float64
	FeedTemperature       float64
}

// NewIndexData builds the view model, scaling mass fractions to percentages.
func NewIndexData(sim config.SimulationDefaults, apiAvailable bool, endpoint string, checkedAt time.Time) *IndexData {
	return &IndexData{
		APIAvailable:          apiAvailable,
		APIEndpoint:           endpoint,
		CheckedAt:             checkedAt,
		FeedFlow:              sim.FeedFlow,
		FeedConcentrationPct:  sim.FeedConcentration * 100,
		FinalConcentrationPct: sim.FinalConcentration * 100,
		FeedTemperature:       sim.FeedTemperature,
	}
}

func RenderIndex(w io.Writer, data *IndexData) error {
	if pageTmpl == nil {
		return errors.New("page templates not loaded: call views.LoadTemplates during startup")
	}
	return pageTmpl.ExecuteTemplate(w, "index.html", data)
}
