package scanner

import (
	"context"

	"github.com/gogetdata/ggd-docs/internal/models"
)

// DefaultDescriptionFile is the recipe description file name
const DefaultDescriptionFile = "meta.yaml"

// Scanner interface for discovering recipe folders
type Scanner interface {
	// Scan walks the recipe tree and returns every folder holding a description file
	Scan(ctx context.Context, root string) ([]models.RecipeFolder, error)
}
