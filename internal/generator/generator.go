// Package generator turns a recipe tree and a channel index into README
// pages and a summary table.
package generator

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/gogetdata/ggd-docs/internal/channel"
	"github.com/gogetdata/ggd-docs/internal/metrics"
	"github.com/gogetdata/ggd-docs/internal/models"
	"github.com/gogetdata/ggd-docs/internal/recipe"
	"github.com/gogetdata/ggd-docs/internal/render"
	"github.com/gogetdata/ggd-docs/internal/scanner"
)

// Defaults applied by New when the configuration leaves them empty
const (
	DefaultChannel   = "ggd-genomics"
	DefaultPageExt   = "rst"
	DefaultGHRecipes = "https://github.com/gogetdata/ggd-recipes/tree/master/recipes/"
)

// BuildContext is the handle a build process passes to GenerateRecipes.
// Config, Renderer and Index are required; everything else has a default.
type BuildContext struct {
	Config   *models.GeneratorConfig
	Renderer *render.Renderer
	Index    channel.Index
	Parser   recipe.Parser
	Scanner  scanner.Scanner
	Metrics  metrics.Recorder
	Log      *logrus.Entry
}

// Generator runs the aggregation for one build
type Generator struct {
	cfg      *models.GeneratorConfig
	renderer *render.Renderer
	index    channel.Index
	parser   recipe.Parser
	scanner  scanner.Scanner
	metrics  metrics.Recorder
	log      *logrus.Entry

	// relative link from the index page to the detail pages
	linkPrefix string
}

// Result summarises a finished run
type Result struct {
	Folders      int
	Records      []models.TemplateContext
	IndexChanged bool
}

// New validates the build context and fills in defaults
func New(bc *BuildContext) (*Generator, error) {
	if bc == nil || bc.Config == nil {
		return nil, models.NewError(models.ErrInvalidConfig, "", fmt.Errorf("build context has no configuration"))
	}
	if bc.Renderer == nil {
		return nil, models.NewError(models.ErrInvalidConfig, "", fmt.Errorf("build context has no renderer"))
	}
	if bc.Index == nil {
		return nil, models.NewError(models.ErrInvalidConfig, "", fmt.Errorf("build context has no channel index"))
	}

	cfg := *bc.Config
	if cfg.DescriptionFile == "" {
		cfg.DescriptionFile = scanner.DefaultDescriptionFile
	}
	if cfg.PageExt == "" {
		cfg.PageExt = DefaultPageExt
	}
	if cfg.Channel == "" {
		cfg.Channel = DefaultChannel
	}
	if cfg.GHRecipes == "" {
		cfg.GHRecipes = DefaultGHRecipes
	}
	if cfg.Parallel < 1 {
		cfg.Parallel = 1
	}

	g := &Generator{
		cfg:      &cfg,
		renderer: bc.Renderer,
		index:    bc.Index,
		parser:   bc.Parser,
		scanner:  bc.Scanner,
		metrics:  bc.Metrics,
		log:      bc.Log,
	}
	if g.parser == nil {
		g.parser = recipe.NewYAMLParser()
	}
	if g.scanner == nil {
		g.scanner = scanner.NewFileSystemScanner(cfg.DescriptionFile)
	}
	if g.metrics == nil {
		g.metrics = metrics.NoopRecorder{}
	}
	if g.log == nil {
		g.log = logrus.WithField("run_id", uuid.NewString())
	}

	g.linkPrefix = filepath.Base(cfg.OutputDir)
	if rel, err := filepath.Rel(filepath.Dir(cfg.IndexPath), cfg.OutputDir); err == nil {
		g.linkPrefix = filepath.ToSlash(rel)
	}

	return g, nil
}

// GenerateRecipes is the entry point invoked once at the start of a
// documentation build. Only environment failures are returned; broken
// recipes are logged and skipped.
func GenerateRecipes(ctx context.Context, bc *BuildContext) error {
	g, err := New(bc)
	if err != nil {
		return err
	}
	_, err = g.Run(ctx)
	return err
}
