package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/stelitsyn-sc/zappifest/internal/diff"
	"github.com/stelitsyn-sc/zappifest/internal/log"
	"github.com/stelitsyn-sc/zappifest/internal/manifest"
	"github.com/stelitsyn-sc/zappifest/internal/publish"
	"github.com/stelitsyn-sc/zappifest/internal/tracing"
	"github.com/stelitsyn-sc/zappifest/internal/transport"
	"github.com/stelitsyn-sc/zappifest/internal/ui/confirm"
	"github.com/stelitsyn-sc/zappifest/internal/ui/picker"
	"github.com/stelitsyn-sc/zappifest/internal/ui/status"
)

var (
	publishPluginID    string
	publishManifest    string
	publishAccessToken string
	publishOverrideURL string
	publishNew         bool
	publishYes         bool
)

var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Create or update a plugin from its manifest",
	Long: `Publish plugin-manifest.json to the Zapp plugin registry.

Without --new the plugin is looked up by name and identifier among the
plugins visible to the access token. When several match you are asked to
pick one. The plugin is only updated when a registry field differs from the
manifest.

With --plugin-id the plugin is selected by id and the differences are shown
before anything is written.

Examples:
  # Update the plugin matching ./plugin-manifest.json
  ZAPP_TOKEN=... zappifest publish

  # Create a new plugin
  zappifest publish --new --access-token ...

  # Review and update a known plugin
  zappifest publish --plugin-id 5a7c... -m dist/plugin-manifest.json`,
	Args: cobra.NoArgs,
	RunE: runPublish,
}

func init() {
	publishCmd.Flags().StringVar(&publishPluginID, "plugin-id", "", "id of the plugin to update (shows a diff and asks before writing)")
	publishCmd.Flags().StringVarP(&publishManifest, "manifest", "m", "", "path to the plugin manifest (default: plugin-manifest.json)")
	publishCmd.Flags().StringVarP(&publishAccessToken, "access-token", "t", "", "Zapp access token (default: $ZAPP_TOKEN)")
	publishCmd.Flags().StringVar(&publishOverrideURL, "override-url", "", "admin API base URL to use instead of the configured one; skips token validation")
	publishCmd.Flags().BoolVar(&publishNew, "new", false, "create a new plugin instead of updating an existing one")
	publishCmd.Flags().BoolVarP(&publishYes, "yes", "y", false, "update a --plugin-id plugin without asking")
	publishCmd.MarkFlagsMutuallyExclusive("new", "plugin-id")
	rootCmd.AddCommand(publishCmd)
}

func runPublish(cmd *cobra.Command, _ []string) error {
	cleanup, err := initLogging()
	if err != nil {
		return err
	}
	defer cleanup()

	provider, err := tracing.NewProvider(tracing.Config{
		Enabled:      cfg.Tracing.Enabled,
		Exporter:     cfg.Tracing.Exporter,
		FilePath:     cfg.Tracing.FilePath,
		OTLPEndpoint: cfg.Tracing.OTLPEndpoint,
		SampleRate:   cfg.Tracing.SampleRate,
		ServiceName:  tracing.DefaultServiceName,
	})
	if err != nil {
		return fmt.Errorf("initializing tracing: %w", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := provider.Shutdown(ctx); err != nil {
			log.ErrorErr(log.CatTrace, "Tracing shutdown failed", err)
		}
	}()

	manifestPath := publishManifest
	if manifestPath == "" {
		manifestPath = cfg.Manifest
	}
	doc, err := manifest.Load(manifestPath)
	if err != nil {
		return err
	}

	token := publishAccessToken
	if token == "" {
		token = cfg.AccessToken
	}

	out, errOut := cmd.OutOrStdout(), cmd.ErrOrStderr()
	in := cmd.InOrStdin()

	client := transport.New(
		transport.WithTimeout(cfg.Registry.Timeout),
		transport.WithTracer(provider.Tracer()),
	)
	publisher := publish.New(client,
		publish.WithAdminURL(cfg.Registry.AdminURL),
		publish.WithAccountsURL(cfg.Registry.AccountsURL),
		publish.WithTracer(provider.Tracer()),
		publish.WithSink(status.NewPrinter(out, errOut)),
		publish.WithChooser(func(prompt string, options []string) (int, error) {
			return picker.Run(prompt, options, in, errOut)
		}),
		publish.WithConfirmer(newConfirmer(confirm.Run, publishYes, in, errOut)),
	)

	res, err := publisher.Run(cmd.Context(), publish.Options{
		Manifest:    doc,
		AccessToken: token,
		KnownID:     publishPluginID,
		OverrideURL: publishOverrideURL,
		New:         publishNew,
	})
	if err != nil {
		return err
	}
	log.Info(log.CatPublish, "Publish finished", "action", string(res.Action), "id", res.PluginID, "changes", len(res.Changes))
	return nil
}

// confirmFunc runs the overwrite prompt.
type confirmFunc func(prompt string, rows []diff.Row, in io.Reader, out io.Writer) (bool, error)

// newConfirmer approves without asking when yes is set. Closing the prompt
// without an answer counts as declining.
func newConfirmer(run confirmFunc, yes bool, in io.Reader, out io.Writer) publish.Confirmer {
	return func(prompt string, rows []diff.Row) (bool, error) {
		if yes {
			return true, nil
		}
		ok, err := run(prompt, rows, in, out)
		if errors.Is(err, confirm.ErrCancelled) {
			log.Info(log.CatUI, "Confirmation prompt closed without an answer")
			return false, nil
		}
		return ok, err
	}
}
