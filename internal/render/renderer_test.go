package render

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/gogetdata/ggd-docs/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemplate(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0644))
}

func TestRenderUsesFiltersAndCache(t *testing.T) {
	dir := t.TempDir()
	writeTemplate(t, dir, "page.rst_t", "{{ underline .name }}\n{{ escape .summary }}\n")

	r := NewRenderer(dir)
	out, err := r.Render("page.rst_t", map[string]any{"name": "pkg", "summary": "a *b*"})
	require.NoError(t, err)
	assert.Equal(t, "pkg\n===\na \\*b\\*\n", out)

	// Compiled templates are cached: changing the file does not change output
	writeTemplate(t, dir, "page.rst_t", "changed")
	out, err = r.Render("page.rst_t", map[string]any{"name": "x", "summary": ""})
	require.NoError(t, err)
	assert.Equal(t, "x\n=\n\n", out)

	// A fresh renderer sees the new file
	out, err = NewRenderer(dir).Render("page.rst_t", nil)
	require.NoError(t, err)
	assert.Equal(t, "changed", out)
}

func TestRenderTemplateDirOverridesBuiltin(t *testing.T) {
	dir := t.TempDir()
	writeTemplate(t, dir, "recipes.rst_t", "override {{ len .recipes }}")

	out, err := NewRenderer(dir).Render("recipes.rst_t", map[string]any{"recipes": []int{1, 2}})
	require.NoError(t, err)
	assert.Equal(t, "override 2", out)
}

func TestRenderErrors(t *testing.T) {
	dir := t.TempDir()
	writeTemplate(t, dir, "needs.rst_t", "{{ .required }}")
	writeTemplate(t, dir, "broken.rst_t", "{{ .unterminated ")
	writeTemplate(t, dir, "links.rst_t", "{{ range as_extlink .ids }}{{ . }}{{ end }}")

	r := NewRenderer(dir)

	_, err := r.Render("missing.rst_t", map[string]any{})
	assert.True(t, models.IsType(err, models.ErrTemplate), "missing template: %v", err)

	_, err = r.Render("needs.rst_t", map[string]any{"other": 1})
	assert.True(t, models.IsType(err, models.ErrTemplate), "missing variable: %v", err)

	_, err = r.Render("broken.rst_t", map[string]any{})
	assert.True(t, models.IsType(err, models.ErrTemplate), "parse error: %v", err)

	_, err = r.Render("links.rst_t", map[string]any{"ids": []any{"nocolon"}})
	assert.True(t, models.IsType(err, models.ErrContract), "contract violation: %v", err)

	out, err := r.Render("links.rst_t", map[string]any{"ids": []any{"doi:1"}})
	require.NoError(t, err)
	assert.Equal(t, "doi: :doi:`1`", out)
}

func TestRenderToFileIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	writeTemplate(t, dir, "page.rst_t", "{{ .name }}\n")
	target := filepath.Join(t.TempDir(), "out", "pkg", "README.rst")

	r := NewRenderer(dir)
	ctx := map[string]any{"name": "pkg"}

	written, err := r.RenderToFile(target, "page.rst_t", ctx)
	require.NoError(t, err)
	assert.True(t, written)

	written, err = r.RenderToFile(target, "page.rst_t", ctx)
	require.NoError(t, err)
	assert.False(t, written, "unchanged content must not be written again")

	written, err = r.RenderToFile(target, "page.rst_t", map[string]any{"name": "other"})
	require.NoError(t, err)
	assert.True(t, written)

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "other\n", string(data))
}

func TestRenderToFileUncreatableDirectory(t *testing.T) {
	dir := t.TempDir()
	writeTemplate(t, dir, "page.rst_t", "x")
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, nil, 0644))

	_, err := NewRenderer(dir).RenderToFile(filepath.Join(blocker, "README.rst"), "page.rst_t", nil)
	assert.True(t, models.IsType(err, models.ErrFileOp), "got %v", err)
}

func TestConcurrentFirstUse(t *testing.T) {
	r := NewRenderer()
	ctx := map[string]any{
		"recipes":       []models.TemplateContext{},
		"keys":          []string{"Package"},
		"linux_symbol":  "L",
		"osx_symbol":    "O",
		"noarch_symbol": "N",
		"dot_symbol":    "D",
	}

	var wg sync.WaitGroup
	outputs := make([]string, 16)
	for i := range outputs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			out, err := r.Render("recipes.rst_t", ctx)
			assert.NoError(t, err)
			outputs[i] = out
		}(i)
	}
	wg.Wait()

	for _, out := range outputs[1:] {
		assert.Equal(t, outputs[0], out)
	}
	assert.Len(t, r.templates, 1)
}

func TestBuiltinReadmeTemplate(t *testing.T) {
	ctx := models.TemplateContext{
		"name":         "hg19-gaps",
		"about":        map[string]any{"summary": "Gaps *UCSC*", "keywords": []any{"gaps", "region"}, "tags": map[string]any{"ggd-channel": "genomics"}},
		"extra":        map[string]any{"identifiers": []any{"doi:10.1/abc"}},
		"species":      "Homo_sapiens",
		"genome_build": "hg19",
		"ggd_channel":  "genomics",
		"versions":     []string{"1-0", "1-1"},
		"depends":      []models.Dependency{{Name: "gsort"}, {Name: "htslib", Constraint: ">=1.9"}},
		"gh_recipes":   "https://github.com/gogetdata/ggd-recipes/tree/master/recipes/",
		"recipe_path":  "genomics/Homo_sapiens/hg19/hg19-gaps",
		"version_platforms": []models.VersionPlatforms{
			{Version: "1", Platforms: []string{"linux", "noarch", "osx"}},
		},
	}

	out, err := NewRenderer().Render("readme.rst_t", ctx)
	require.NoError(t, err)
	assert.Contains(t, out, "hg19-gaps\n=========\n")
	assert.Contains(t, out, `Gaps \*UCSC\*`)
	assert.Contains(t, out, "gaps, region")
	assert.Contains(t, out, "doi: :doi:`10.1/abc`")
	assert.Contains(t, out, ":ggd-channel: genomics")
	assert.Contains(t, out, "- ``1-1``")
	assert.Contains(t, out, "- ``htslib`` ``>=1.9``")
	assert.Contains(t, out, "- ``gsort``\n")
	assert.Contains(t, out, "ggd install hg19-gaps")
	assert.Contains(t, out, "   * - ``1``\n     - linux, noarch, osx")
}
