package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/stelitsyn-sc/zappifest/internal/config"
	"github.com/stelitsyn-sc/zappifest/internal/log"
	"github.com/stelitsyn-sc/zappifest/internal/paths"
	"github.com/stelitsyn-sc/zappifest/internal/ui/styles"
)

func init() {
	// Query the terminal background before any Bubble Tea program starts so
	// the OSC 11 reply does not race the prompt's input loop.
	// See: https://github.com/charmbracelet/bubbletea/issues/1036
	_ = lipgloss.HasDarkBackground()
}

var (
	version = "dev"
	cfgFile string
	cfg     config.Config
	cfgErr  error
)

var rootCmd = &cobra.Command{
	Use:     "zappifest",
	Short:   "Publish plugin manifests to the Zapp registry",
	Long:    `Publish a plugin-manifest.json to the Zapp plugin registry.

The access token is read from --access-token or the ZAPP_TOKEN environment
variable.`,
	Version: version,
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.SilenceUsage = true
	rootCmd.PersistentPreRunE = applyConfig

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: ~/.config/zappifest/config.yaml)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false,
		"write a debug log (see log.file)")
	rootCmd.PersistentFlags().Bool("no-color", false, "disable colored output")

	_ = viper.BindPFlag("log.debug", rootCmd.PersistentFlags().Lookup("debug"))
	_ = viper.BindPFlag("ui.no_color", rootCmd.PersistentFlags().Lookup("no-color"))
}

func initConfig() {
	defaults := config.Defaults()
	viper.SetDefault("manifest", defaults.Manifest)
	viper.SetDefault("registry.admin_url", defaults.Registry.AdminURL)
	viper.SetDefault("registry.accounts_url", defaults.Registry.AccountsURL)
	viper.SetDefault("registry.timeout", defaults.Registry.Timeout)
	viper.SetDefault("log.debug", defaults.Log.Debug)
	viper.SetDefault("log.file", defaults.Log.File)
	viper.SetDefault("tracing.enabled", defaults.Tracing.Enabled)
	viper.SetDefault("tracing.exporter", defaults.Tracing.Exporter)
	viper.SetDefault("tracing.file_path", config.DefaultTracesFilePath())
	viper.SetDefault("tracing.otlp_endpoint", defaults.Tracing.OTLPEndpoint)
	viper.SetDefault("tracing.sample_rate", defaults.Tracing.SampleRate)
	viper.SetDefault("ui.no_color", defaults.UI.NoColor)

	// ZAPPIFEST_REGISTRY_ADMIN_URL overrides registry.admin_url and so on.
	viper.SetEnvPrefix("zappifest")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	_ = viper.BindEnv("access_token", "ZAPP_TOKEN", "ZAPPIFEST_ACCESS_TOKEN")

	cfgErr = nil
	path := paths.ResolveConfigFile(cfgFile, "")
	if path != "" {
		viper.SetConfigFile(path)
		if err := viper.ReadInConfig(); err != nil {
			// Only an explicitly requested file has to exist.
			if cfgFile != "" || !errors.Is(err, fs.ErrNotExist) {
				cfgErr = fmt.Errorf("reading config: %w", err)
				return
			}
		}
	}

	cfg = config.Config{}
	if err := viper.Unmarshal(&cfg); err != nil {
		cfgErr = fmt.Errorf("decoding config: %w", err)
		return
	}
	if err := cfg.Validate(); err != nil {
		cfgErr = fmt.Errorf("invalid configuration: %w", err)
	}
}

// applyConfig fails the command when the configuration could not be loaded
// and applies the settings that affect every command.
func applyConfig(_ *cobra.Command, _ []string) error {
	if cfgErr != nil {
		return cfgErr
	}
	if cfg.UI.NoColor {
		styles.DisableColor()
	}
	return nil
}

// skipConfigCheck lets a command run with a broken configuration file.
func skipConfigCheck(_ *cobra.Command, _ []string) error {
	return nil
}

// initLogging enables the debug log when requested. The returned cleanup
// closes the log file.
func initLogging() (func(), error) {
	if !cfg.Log.Debug {
		return func() {}, nil
	}
	cleanup, err := log.InitWithTeaLog(cfg.Log.File, "zappifest")
	if err != nil {
		return nil, fmt.Errorf("initializing logging: %w", err)
	}
	log.Info(log.CatConfig, "Zappifest starting",
		"version", version,
		"config", viper.ConfigFileUsed(),
		"admin_url", cfg.Registry.AdminURL)
	return cleanup, nil
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version string (called from main with ldflags)
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}
