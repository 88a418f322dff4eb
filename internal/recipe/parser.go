// Package recipe reads recipe description files (meta.yaml).
package recipe

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gogetdata/ggd-docs/internal/models"
	"github.com/nikolalohinski/gonja/v2"
	"github.com/nikolalohinski/gonja/v2/config"
	"github.com/nikolalohinski/gonja/v2/exec"
	"github.com/nikolalohinski/gonja/v2/loaders"
	"gopkg.in/yaml.v3"
)

// Parser turns a description file into recipe metadata
type Parser interface {
	Parse(path string) (*models.RecipeMetadata, error)
}

var jinjaConfig = func() *config.Config {
	cfg := gonja.DefaultConfig.Inherit()
	cfg.StrictUndefined = true
	cfg.TrimBlocks = true
	cfg.LeftStripBlocks = true
	return cfg
}()

// YAMLParser parses meta.yaml files with yaml.v3
type YAMLParser struct{}

// NewYAMLParser creates a new parser
func NewYAMLParser() *YAMLParser {
	return &YAMLParser{}
}

type document struct {
	Package struct {
		Name    string `yaml:"name"`
		Version string `yaml:"version"`
	} `yaml:"package"`
	Outputs []struct {
		Name string `yaml:"name"`
	} `yaml:"outputs"`
	About map[string]any `yaml:"about"`
	Extra map[string]any `yaml:"extra"`
}

// Parse reads and parses the description file at path
func (p *YAMLParser) Parse(path string) (*models.RecipeMetadata, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, models.NewError(models.ErrRecipeParse, path, err)
	}

	rendered, err := renderJinja(path, raw)
	if err != nil {
		return nil, models.NewError(models.ErrRecipeParse, path, err)
	}

	var doc document
	if err := yaml.Unmarshal(rendered, &doc); err != nil {
		return nil, models.NewError(models.ErrRecipeParse, path, fmt.Errorf("invalid yaml: %w", err))
	}

	name := strings.TrimSpace(doc.Package.Name)
	if name == "" {
		return nil, models.NewError(models.ErrRecipeParse, path, errors.New("package.name is missing"))
	}

	names := map[string]bool{name: true}
	for _, out := range doc.Outputs {
		if n := strings.TrimSpace(out.Name); n != "" {
			names[n] = true
		}
	}
	sortedNames := make([]string, 0, len(names))
	for n := range names {
		sortedNames = append(sortedNames, n)
	}
	sort.Strings(sortedNames)

	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}

	return &models.RecipeMetadata{
		Name:    name,
		Names:   sortedNames,
		Version: strings.TrimSpace(doc.Package.Version),
		About:   doc.About,
		Extra:   doc.Extra,
		Path:    abs,
	}, nil
}

// renderJinja renders the Jinja layer of a description file. Recipes are
// rendered outside of a build, so environ is empty and undefined names fail.
func renderJinja(path string, raw []byte) ([]byte, error) {
	loader, err := loaders.NewShiftedLoader(path, bytes.NewReader(raw), loaders.MustNewFileSystemLoader(""))
	if err != nil {
		return nil, err
	}
	tpl, err := exec.NewTemplate(path, jinjaConfig, loader, gonja.DefaultEnvironment)
	if err != nil {
		return nil, fmt.Errorf("invalid template: %w", err)
	}
	out, err := tpl.ExecuteToBytes(exec.NewContext(map[string]any{
		"environ": map[string]any{},
	}))
	if err != nil {
		return nil, fmt.Errorf("failed to render template: %w", err)
	}
	return out, nil
}
