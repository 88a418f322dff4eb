package cli

import (
	"fmt"
	"path/filepath"
	"runtime"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/gogetdata/ggd-docs/internal/channel"
	"github.com/gogetdata/ggd-docs/internal/generator"
	"github.com/gogetdata/ggd-docs/internal/models"
	"github.com/gogetdata/ggd-docs/internal/scanner"
	"github.com/gogetdata/ggd-docs/internal/watcher"
)

// Configuration keys shared by flags, config file and environment
const (
	keyRecipeDir       = "recipe-dir"
	keyOutputDir       = "output-dir"
	keyIndexPath       = "index-path"
	keyTemplateDir     = "template-dir"
	keyPageExt         = "page-ext"
	keyDescriptionFile = "description-file"
	keyChannel         = "channel"
	keyChannelURL      = "channel-url"
	keySubdirs         = "subdirs"
	keyChannelKey      = "channel-key"
	keyParallel        = "parallel"
	keyGHRecipes       = "gh-recipes"
	keyRecipesRepo     = "recipes-repo"
	keyRecipesBranch   = "recipes-branch"
	keyRecipesCheckout = "recipes-checkout"
	keyRecipesSubdir   = "recipes-subdir"
	keyRecipesDepth    = "recipes-depth"
	keyMetricsFile     = "metrics-file"
	keyDebounce        = "debounce"
)

const defaultChannelURL = "https://conda.anaconda.org/ggd-genomics"

// addConfigFlags registers the generation flags on cmd
func addConfigFlags(cmd *cobra.Command) {
	// Input/Output flags
	cmd.Flags().StringP(keyRecipeDir, "r", filepath.Join("ggd-recipes", "recipes"), "Recipe tree to document")
	cmd.Flags().StringP(keyOutputDir, "o", filepath.Join("source", "recipes"), "Directory for the package README pages")
	cmd.Flags().String(keyIndexPath, filepath.Join("source", "recipes.rst"), "Path of the summary table page")
	cmd.Flags().StringSlice(keyTemplateDir, nil, "Template directories searched before the built-in templates")
	cmd.Flags().String(keyPageExt, generator.DefaultPageExt, "Extension of generated pages")
	cmd.Flags().String(keyDescriptionFile, scanner.DefaultDescriptionFile, "Recipe description file name")

	// Channel flags
	cmd.Flags().String(keyChannel, generator.DefaultChannel, "Channel queried for published versions")
	cmd.Flags().String(keyChannelURL, defaultChannelURL, "Channel URL or local directory with <subdir>/repodata.json")
	cmd.Flags().StringSlice(keySubdirs, channel.DefaultSubdirs, "Channel subdirs to load")
	cmd.Flags().String(keyChannelKey, "", "OpenPGP public key; when set repodata signatures are verified")

	// Execution flags
	cmd.Flags().IntP(keyParallel, "j", runtime.NumCPU(), "Worker count; 1 forces serial mode")
	cmd.Flags().String(keyGHRecipes, generator.DefaultGHRecipes, "Base URL of the recipe tree for recipe links")

	// Recipe checkout flags
	cmd.Flags().String(keyRecipesRepo, "", "Git URL of the recipe repository; enables checkout")
	cmd.Flags().String(keyRecipesBranch, "master", "Branch of the recipe repository")
	cmd.Flags().String(keyRecipesCheckout, "ggd-recipes", "Local checkout of the recipe repository")
	cmd.Flags().String(keyRecipesSubdir, "recipes", "Recipe tree inside the checkout")
	cmd.Flags().Int(keyRecipesDepth, 1, "Clone depth of the recipe repository; 0 fetches full history")

	cmd.Flags().String(keyMetricsFile, "", "Write run metrics in Prometheus textfile format")
	cmd.Flags().Duration(keyDebounce, watcher.DefaultDebounce, "Quiet period before watch mode regenerates")
}

// loadConfig binds cmd's flags and reads the effective configuration
func loadConfig(cmd *cobra.Command, v *viper.Viper) (*models.GeneratorConfig, error) {
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return nil, models.NewError(models.ErrInvalidConfig, "", fmt.Errorf("failed to bind flags: %w", err))
	}

	verbosity, _ := cmd.Flags().GetCount("verbose")

	config := &models.GeneratorConfig{
		RecipeDir:       v.GetString(keyRecipeDir),
		OutputDir:       v.GetString(keyOutputDir),
		IndexPath:       v.GetString(keyIndexPath),
		TemplateDirs:    v.GetStringSlice(keyTemplateDir),
		PageExt:         v.GetString(keyPageExt),
		DescriptionFile: v.GetString(keyDescriptionFile),
		Channel:         v.GetString(keyChannel),
		ChannelURL:      v.GetString(keyChannelURL),
		Subdirs:         v.GetStringSlice(keySubdirs),
		ChannelKeyPath:  v.GetString(keyChannelKey),
		Parallel:        v.GetInt(keyParallel),
		Verbosity:       verbosity,
		GHRecipes:       v.GetString(keyGHRecipes),
		RecipesRepo:     v.GetString(keyRecipesRepo),
		RecipesBranch:   v.GetString(keyRecipesBranch),
		RecipesCheckout: v.GetString(keyRecipesCheckout),
		RecipesSubdir:   v.GetString(keyRecipesSubdir),
		RecipesDepth:    v.GetInt(keyRecipesDepth),
		MetricsFile:     v.GetString(keyMetricsFile),
		Debounce:        v.GetDuration(keyDebounce),
	}

	if err := validateConfig(config); err != nil {
		return nil, err
	}
	return config, nil
}

func validateConfig(config *models.GeneratorConfig) error {
	if config.RecipesRepo != "" {
		if config.RecipesCheckout == "" {
			return &models.DocGenError{
				Type: models.ErrInvalidConfig,
				Err:  fmt.Errorf("recipes-checkout is required with recipes-repo"),
			}
		}
		config.RecipeDir = filepath.Join(config.RecipesCheckout, config.RecipesSubdir)
	}

	if config.RecipeDir == "" {
		return &models.DocGenError{
			Type: models.ErrInvalidConfig,
			Err:  fmt.Errorf("recipe-dir is required"),
		}
	}

	if config.OutputDir == "" {
		return &models.DocGenError{
			Type: models.ErrInvalidConfig,
			Err:  fmt.Errorf("output-dir is required"),
		}
	}

	if config.ChannelURL == "" {
		return &models.DocGenError{
			Type: models.ErrInvalidConfig,
			Err:  fmt.Errorf("channel-url is required"),
		}
	}

	if config.Parallel < 1 {
		return &models.DocGenError{
			Type: models.ErrInvalidConfig,
			Err:  fmt.Errorf("parallel must be at least 1, got %d", config.Parallel),
		}
	}

	if config.RecipesDepth < 0 {
		return &models.DocGenError{
			Type: models.ErrInvalidConfig,
			Err:  fmt.Errorf("recipes-depth must not be negative"),
		}
	}

	if config.Debounce < 0 {
		return &models.DocGenError{
			Type: models.ErrInvalidConfig,
			Err:  fmt.Errorf("debounce must not be negative"),
		}
	}

	// Fill defaults for values left empty in a config file
	if config.IndexPath == "" {
		config.IndexPath = filepath.Join(filepath.Dir(config.OutputDir), "recipes.rst")
	}
	if config.PageExt == "" {
		config.PageExt = generator.DefaultPageExt
	}
	if config.DescriptionFile == "" {
		config.DescriptionFile = scanner.DefaultDescriptionFile
	}
	if config.Channel == "" {
		config.Channel = generator.DefaultChannel
	}
	if len(config.Subdirs) == 0 {
		config.Subdirs = channel.DefaultSubdirs
	}
	if config.GHRecipes == "" {
		config.GHRecipes = generator.DefaultGHRecipes
	}

	return nil
}
