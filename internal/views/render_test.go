package views

import (
	"bytes"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/kjstillabower/process-dashboard/internal/config"
)

var testDefaults = config.SimulationDefaults{
	FeedFlow:           20000,
	FeedConcentration:  0.15,
	FinalConcentration: 0.65,
	FeedTemperature:    85,
}

func TestRenderIndex_NotLoaded(t *testing.T) {
	saved := pageTmpl
	pageTmpl = nil
	defer func() { pageTmpl = saved }()

	var buf bytes.Buffer
	err := RenderIndex(&buf, NewIndexData(testDefaults, true, "http://x/api/test", time.Now()))
	if err == nil {
		t.Fatal("RenderIndex() expected error when templates not loaded")
	}
}

func TestRenderIndex_FormatsDefaults(t *testing.T) {
	if err := LoadTemplates(); err != nil {
		t.Fatalf("LoadTemplates() error = %v", err)
	}

	var buf bytes.Buffer
	checked := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	if err := RenderIndex(&buf, NewIndexData(testDefaults, true, "http://localhost:8080/api/test", checked)); err != nil {
		t.Fatalf("RenderIndex() error = %v", err)
	}
	body := buf.String()

	for _, want := range []string{
		`<td id="feed-flow">20.00 k kg/h</td>`,
		`<td id="feed-concentration">15.00 %</td>`,
		`<td id="final-concentration">65.00 %</td>`,
		`<td id="feed-temperature">85.0 °C</td>`,
		`data-api="available"`,
		"2026-01-02 03:04:05 UTC",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("rendered page missing %q", want)
		}
	}
}

func TestRenderIndex_APIUnavailable(t *testing.T) {
	if err := LoadTemplates(); err != nil {
		t.Fatalf("LoadTemplates() error = %v", err)
	}

	var buf bytes.Buffer
	if err := RenderIndex(&buf, NewIndexData(testDefaults, false, "http://localhost:8080/api/test", time.Now())); err != nil {
		t.Fatalf("RenderIndex() error = %v", err)
	}
	if !strings.Contains(buf.String(), `data-api="unavailable"`) {
		t.Error("expected unavailable banner")
	}
}

func TestLoadTemplatesFromFS_Errors(t *testing.T) {
	saved := pageTmpl
	defer func() { pageTmpl = saved }()

	empty := fstest.MapFS{"templates/readme.txt": {Data: []byte("no html")}}
	if err := loadTemplatesFromFS(empty, "templates"); err == nil {
		t.Error("expected error when no templates match")
	}

	broken := fstest.MapFS{"templates/index.html": {Data: []byte("{{if}}")}}
	if err := loadTemplatesFromFS(broken, "templates"); err == nil {
		t.Error("expected parse error for broken template")
	}

	unknownFunc := fstest.MapFS{"templates/index.html": {Data: []byte("{{checkAPIHealth}}")}}
	if err := loadTemplatesFromFS(unknownFunc, "templates"); err == nil {
		t.Error("expected error for undefined template function")
	}
}

func TestNewIndexData_ScalesFractions(t *testing.T) {
	d := NewIndexData(testDefaults, true, "e", time.Time{})
	if d.FeedConcentrationPct != 15 {
		t.Errorf("FeedConcentrationPct = %v, want 15", d.FeedConcentrationPct)
	}
	if d.FinalConcentrationPct != 65 {
		t.Errorf("FinalConcentrationPct = %v, want 65", d.FinalConcentrationPct)
	}
}
