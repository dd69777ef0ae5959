package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"spring-boot-operator/internal/app"
)

// runCmd starts the long-running operator loop.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the operator event loop",
	Long: `Starts the reconciliation manager for the unit's pod.

The operator watches config.yaml in the config directory, the relation Secrets
labelled with relations.labelKey, and the readiness of the workload container.
Every change triggers a reconciliation pass that validates the configuration,
classifies the application and applies the Pebble layer. The unit status is
written to annotations on the pod.

A start trigger runs once at startup, or an upgrade trigger when the version
recorded in <appName>-operator-state differs from this binary.

The process stops on SIGINT or SIGTERM.`,
	Args: cobra.NoArgs,
	RunE: runRun,
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg := app.NewConfig(configPath, logLevel, logFormat)
	cfg.Version = GetVersion()

	application, err := app.NewApplication(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return application.Run(ctx)
}

func init() {
	rootCmd.AddCommand(runCmd)
}
