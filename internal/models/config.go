package models

import "time"

// GeneratorConfig contains configuration for documentation generation
type GeneratorConfig struct {
	// Input/Output
	RecipeDir       string
	OutputDir       string   // detail pages go to <OutputDir>/<name>/README.<PageExt>
	IndexPath       string   // summary table page
	TemplateDirs    []string // searched before the built-in templates
	PageExt         string
	DescriptionFile string

	// Channel index
	Channel        string   // channel queried for versions, e.g. ggd-genomics
	ChannelURL     string   // http(s) URL or local directory holding <subdir>/repodata.json
	Subdirs        []string // noarch, linux-64, osx-64
	ChannelKeyPath string   // armored OpenPGP keyring; enables repodata verification

	// Execution
	Parallel  int // worker hint; 1 forces serial mode
	Verbosity int

	// Links
	GHRecipes string // base URL of the recipe tree on the forge

	// Recipe checkout
	RecipesRepo     string
	RecipesBranch   string
	RecipesCheckout string
	RecipesSubdir   string
	RecipesDepth    int // 0 fetches full history

	// Observability
	MetricsFile string

	// Watch mode
	Debounce time.Duration
}
