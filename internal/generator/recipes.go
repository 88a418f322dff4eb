package generator

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/gogetdata/ggd-docs/internal/models"
	"github.com/gogetdata/ggd-docs/internal/utils"
)

// ParallelThreshold is the number of recipe folders above which the worker
// pool is used
const ParallelThreshold = 5

// Run scans the recipe tree, aggregates every folder serially or on the
// worker pool, and writes the index page from the merged records.
func (g *Generator) Run(ctx context.Context) (*Result, error) {
	start := time.Now()

	folders, err := g.scanner.Scan(ctx, g.cfg.RecipeDir)
	if err != nil {
		return nil, models.NewError(models.ErrFileOp, "", err)
	}

	var records []models.TemplateContext
	workers := g.workers(len(folders))
	if workers == 1 {
		g.log.Infof("Generating package READMEs for %d folders...", len(folders))
		records, err = g.processChunk(folders)
	} else {
		chunks := MakeChunks(folders, workers)
		g.log.Infof("Generating package READMEs with %d workers in %d chunks...", workers, len(chunks))
		records, err = runChunks(ctx, chunks, workers, g.processChunk)
		g.log.Debug("All workers finished")
	}
	if err != nil {
		return nil, err
	}

	table := utils.DedupRecords(records)
	g.metrics.AddRecords(len(table))

	changed, err := g.GenerateIndex(table)
	if err != nil {
		return nil, err
	}

	elapsed := time.Since(start)
	g.metrics.ObserveRunDuration(elapsed)
	g.log.WithFields(logrus.Fields{
		"folders":  len(folders),
		"records":  len(table),
		"duration": elapsed.Round(time.Millisecond),
	}).Info("Documentation generation completed")

	return &Result{Folders: len(folders), Records: table, IndexChanged: changed}, nil
}

// workers returns the pool size for n folders; 1 selects serial mode
func (g *Generator) workers(n int) int {
	if g.cfg.Parallel > 1 && n > ParallelThreshold {
		return g.cfg.Parallel
	}
	return 1
}

// processChunk aggregates folders in order into a chunk-local list
func (g *Generator) processChunk(folders []models.RecipeFolder) ([]models.TemplateContext, error) {
	var out []models.TemplateContext
	for _, folder := range folders {
		g.progress(folder)
		recs, err := g.GenerateReadme(folder)
		if err != nil {
			return nil, err
		}
		out = append(out, recs...)
	}
	return out, nil
}

func (g *Generator) progress(folder models.RecipeFolder) {
	if g.cfg.Verbosity > 0 {
		g.log.Infof("Processing %s", folder.RelPath)
		return
	}
	g.log.Debugf("Processing %s", folder.RelPath)
}
