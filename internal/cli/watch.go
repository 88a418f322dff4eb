package cli

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/gogetdata/ggd-docs/internal/models"
	"github.com/gogetdata/ggd-docs/internal/watcher"
)

// NewWatchCmd creates the watch command
func NewWatchCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Regenerate documentation whenever recipes or templates change",
		Long: `Runs one generation, then watches the recipe tree and the template
directories and regenerates after changes settle. Failed regenerations are
logged; watching stops on interrupt.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := loadConfig(cmd, v)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return runWatch(ctx, config)
		},
	}

	addConfigFlags(cmd)
	return cmd
}

func runWatch(ctx context.Context, config *models.GeneratorConfig) error {
	if err := runGeneration(ctx, config); err != nil {
		return err
	}

	w, err := watcher.New(config.Debounce, logrus.StandardLogger())
	if err != nil {
		return models.NewError(models.ErrFileOp, "", err)
	}
	defer w.Close()

	dirs := append([]string{config.RecipeDir}, config.TemplateDirs...)
	for _, dir := range dirs {
		if err := w.AddRecursive(dir); err != nil {
			return models.NewError(models.ErrFileOp, "", err)
		}
	}

	logrus.Infof("Watching %d directories for changes", len(dirs))
	return w.Run(ctx, func(ctx context.Context) error {
		return runGeneration(ctx, config)
	})
}
