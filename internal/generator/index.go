package generator

import "github.com/gogetdata/ggd-docs/internal/models"

// IndexTemplate renders the summary table
const IndexTemplate = "recipes.rst_t"

// IndexKeys is the column order of the summary table; every record carries
// these keys
var IndexKeys = []string{"Package", "Version", "Linux", "OSX", "NOARCH"}

// GenerateIndex renders the summary table of all records and reports whether
// the page changed
func (g *Generator) GenerateIndex(records []models.TemplateContext) (bool, error) {
	if records == nil {
		records = []models.TemplateContext{}
	}

	updated, err := g.renderer.RenderToFile(g.cfg.IndexPath, IndexTemplate, map[string]any{
		"recipes":       records,
		"keys":          IndexKeys,
		"noarch_symbol": NoarchSymbol,
		"linux_symbol":  LinuxSymbol,
		"osx_symbol":    OSXSymbol,
		"dot_symbol":    DotSymbol,
	})
	if err != nil {
		return false, err
	}
	g.metrics.IncPage("index", updated)
	if updated {
		g.log.Infof("Updated %s", g.cfg.IndexPath)
	}
	return updated, nil
}
