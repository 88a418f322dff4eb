package cli

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/gogetdata/ggd-docs/internal/channel"
	"github.com/gogetdata/ggd-docs/internal/generator"
	"github.com/gogetdata/ggd-docs/internal/metrics"
	"github.com/gogetdata/ggd-docs/internal/models"
	"github.com/gogetdata/ggd-docs/internal/recipe"
	"github.com/gogetdata/ggd-docs/internal/render"
	"github.com/gogetdata/ggd-docs/internal/signer"
	"github.com/gogetdata/ggd-docs/internal/source"
)

// NewGenerateCmd creates the generate command
func NewGenerateCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate recipe documentation pages",
		Long: `Scans the recipe tree, loads the channel's repodata and renders one
README page per recipe plus the summary table. Recipes that cannot be parsed
are logged and skipped.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := loadConfig(cmd, v)
			if err != nil {
				return err
			}

			logrus.Info("Starting documentation generation...")
			logrus.Debugf("Configuration: %+v", *config)

			// Run generation
			return runGeneration(cmd.Context(), config)
		},
	}

	addConfigFlags(cmd)
	return cmd
}

// runGeneration performs one complete documentation run
func runGeneration(ctx context.Context, config *models.GeneratorConfig) error {
	if ctx == nil {
		ctx = context.Background()
	}
	log := logrus.WithField("run_id", uuid.NewString())

	// Step 1: Update the recipe checkout
	if config.RecipesRepo != "" {
		head, err := source.Sync(ctx, source.Repository{
			URL:    config.RecipesRepo,
			Branch: config.RecipesBranch,
			Dir:    config.RecipesCheckout,
			Depth:  config.RecipesDepth,
		}, log)
		if err != nil {
			return err
		}
		log.Infof("Recipes at commit %.8s", head)
	}

	// Step 2: Load the channel index
	loader := &channel.Loader{Log: log}
	if config.ChannelKeyPath != "" {
		verifier, err := signer.NewGPGVerifier(config.ChannelKeyPath)
		if err != nil {
			return &models.DocGenError{
				Type: models.ErrSignature,
				Err:  fmt.Errorf("failed to initialize verifier: %w", err),
			}
		}
		loader.Verifier = verifier
		log.Info("Repodata signature verification enabled")
	}

	log.Infof("Loading channel %s from %s", config.Channel, config.ChannelURL)
	index, err := loader.Load(ctx, channel.Source{
		Channel:  config.Channel,
		Location: config.ChannelURL,
		Subdirs:  config.Subdirs,
	})
	if err != nil {
		return err
	}

	// Step 3: Generate pages
	var recorder metrics.Recorder = metrics.NoopRecorder{}
	var prom *metrics.PrometheusRecorder
	if config.MetricsFile != "" {
		prom = metrics.NewPrometheusRecorder(nil)
		recorder = prom
	}

	err = generator.GenerateRecipes(ctx, &generator.BuildContext{
		Config:   config,
		Renderer: render.NewRenderer(config.TemplateDirs...),
		Index:    index,
		Parser:   recipe.NewYAMLParser(),
		Metrics:  recorder,
		Log:      log,
	})
	if err != nil {
		return err
	}

	// Step 4: Export metrics
	if prom != nil {
		if err := prom.WriteTextfile(config.MetricsFile); err != nil {
			return models.NewError(models.ErrFileOp, "", err)
		}
		log.Debugf("Wrote metrics to %s", config.MetricsFile)
	}

	return nil
}
