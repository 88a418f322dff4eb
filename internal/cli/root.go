package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/gogetdata/ggd-docs/internal/models"
)

const (
	envPrefix         = "GGD_DOCS"
	defaultConfigName = ".ggd-docs"
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	v := viper.New()
	var cfgFile string

	rootCmd := &cobra.Command{
		Use:   "ggd-docs",
		Short: "Generate documentation pages for the ggd recipe catalog",
		Long: `ggd-docs walks a ggd recipe tree, cross-references every recipe with the
packages published in the channel and renders one README page per package
plus a summary table of all packages.

Pages are only rewritten when their content changed, so the documentation
build can run it on every invocation.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Setup logging
			verbose, _ := cmd.Flags().GetCount("verbose")
			if verbose > 0 {
				logrus.SetLevel(logrus.DebugLevel)
			} else {
				logrus.SetLevel(logrus.InfoLevel)
			}
			return initConfig(v, cfgFile)
		},
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default .ggd-docs.yaml, or GGD_DOCS_CONFIG)")
	rootCmd.PersistentFlags().CountP("verbose", "v", "Enable verbose logging (repeat for per-recipe progress)")

	// Add subcommands
	rootCmd.AddCommand(NewGenerateCmd(v))
	rootCmd.AddCommand(NewWatchCmd(v))

	return rootCmd
}

// initConfig loads .env, then the config file, then GGD_DOCS_* variables.
// Flags bound later take precedence over all of them.
func initConfig(v *viper.Viper, cfgFile string) error {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return models.NewError(models.ErrInvalidConfig, "", fmt.Errorf("failed to load .env: %w", err))
		}
	}

	explicit := true
	switch {
	case cfgFile != "":
		v.SetConfigFile(cfgFile)
	case os.Getenv(envPrefix+"_CONFIG") != "":
		v.SetConfigFile(os.Getenv(envPrefix + "_CONFIG"))
	default:
		explicit = false
		v.AddConfigPath(".")
		v.SetConfigType("yaml")
		v.SetConfigName(defaultConfigName)
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !explicit && errors.As(err, &notFound) {
			return nil
		}
		return models.NewError(models.ErrInvalidConfig, "", fmt.Errorf("failed to read config: %w", err))
	}
	logrus.Debugf("Using config file: %s", v.ConfigFileUsed())
	return nil
}
