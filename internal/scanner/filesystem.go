package scanner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gogetdata/ggd-docs/internal/models"
	"github.com/gogetdata/ggd-docs/internal/version"
	"github.com/sirupsen/logrus"
)

// FileSystemScanner implements Scanner interface for recipe trees on disk
type FileSystemScanner struct {
	descriptionFile string
}

// NewFileSystemScanner creates a new filesystem scanner. An empty
// descriptionFile selects DefaultDescriptionFile.
func NewFileSystemScanner(descriptionFile string) *FileSystemScanner {
	if descriptionFile == "" {
		descriptionFile = DefaultDescriptionFile
	}
	return &FileSystemScanner{descriptionFile: descriptionFile}
}

// Scan recursively walks root and collects every recipe folder, in lexical
// walk order. A recipe folder is a directory that directly contains the
// description file, or one whose version-named subdirectories do.
//
// Version-named directories are folded into their collected parent so that
// each package has exactly one folder and one detail page.
func (s *FileSystemScanner) Scan(ctx context.Context, root string) ([]models.RecipeFolder, error) {
	var folders []models.RecipeFolder
	collected := make(map[string]bool)

	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}

		// Check context cancellation
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if !d.IsDir() {
			return nil
		}
		if path != root && d.Name()[0] == '.' {
			return filepath.SkipDir
		}

		if !s.hasDescription(path) && (path == root || !s.hasVersionedDescription(path)) {
			return nil
		}

		parent := filepath.Dir(path)
		if collected[parent] && version.Parse(d.Name()).OK() {
			logrus.Debugf("Folding version folder %s into %s", path, parent)
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}

		collected[path] = true
		folders = append(folders, models.RecipeFolder{
			Name:    filepath.Base(path),
			Path:    path,
			RelPath: rel,
		})
		logrus.Debugf("Found recipe folder: %s", rel)
		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to scan recipe tree: %w", err)
	}

	logrus.Infof("Found %d recipe folders in %s", len(folders), root)
	return folders, nil
}

func (s *FileSystemScanner) hasDescription(dir string) bool {
	info, err := os.Stat(filepath.Join(dir, s.descriptionFile))
	return err == nil && !info.IsDir()
}

// hasVersionedDescription reports whether any version-named subdirectory of
// dir holds the description file
func (s *FileSystemScanner) hasVersionedDescription(dir string) bool {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false
	}
	for _, e := range entries {
		if e.IsDir() && version.Parse(e.Name()).OK() && s.hasDescription(filepath.Join(dir, e.Name())) {
			return true
		}
	}
	return false
}
