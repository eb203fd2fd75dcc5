package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/stelitsyn-sc/zappifest/internal/config"
	"github.com/stelitsyn-sc/zappifest/internal/paths"
)

var (
	configInitPath        string
	configInitForce       bool
	configInitAdminURL    string
	configInitAccountsURL string
)

var configCmd = &cobra.Command{
	Use:               "config",
	Short:             "Manage the zappifest configuration file",
	PersistentPreRunE: skipConfigCheck,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default configuration file",
	Long: `Write a commented default configuration file.

The file is written to .zappifest/config.yaml unless --path is given.
--admin-url and --accounts-url are stored in the registry section, which
is useful for staging registries.`,
	Args: cobra.NoArgs,
	RunE: runConfigInit,
}

func init() {
	configInitCmd.Flags().StringVar(&configInitPath, "path", paths.LocalConfigFile, "where to write the config file")
	configInitCmd.Flags().BoolVarP(&configInitForce, "force", "f", false, "overwrite an existing file")
	configInitCmd.Flags().StringVar(&configInitAdminURL, "admin-url", "", "registry admin API base URL")
	configInitCmd.Flags().StringVar(&configInitAccountsURL, "accounts-url", "", "accounts API base URL")
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigInit(cmd *cobra.Command, _ []string) error {
	registry := config.RegistryConfig{
		AdminURL:    configInitAdminURL,
		AccountsURL: configInitAccountsURL,
	}
	if err := config.ValidateRegistry(registry); err != nil {
		return err
	}

	if _, err := os.Stat(configInitPath); err == nil && !configInitForce {
		return fmt.Errorf("%s already exists (use --force to overwrite)", configInitPath)
	}
	if err := config.WriteDefaultConfig(configInitPath); err != nil {
		return err
	}
	if registry.AdminURL != "" || registry.AccountsURL != "" {
		if err := config.SaveRegistry(configInitPath, registry); err != nil {
			return err
		}
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", configInitPath)
	return nil
}
