package cmd

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"spring-boot-operator/internal/config"
	"spring-boot-operator/internal/memory"
	"spring-boot-operator/internal/reconciler"
	"spring-boot-operator/internal/workload"
	"spring-boot-operator/pkg/logging"
)

var (
	planRoot        string
	planContainer   string
	planMemoryLimit string
	planOutput      string
)

// PlanResult is the printable result of planning against a local root.
type PlanResult struct {
	Application string            `json:"application"`
	Command     []string          `json:"command"`
	Port        int               `json:"port"`
	JVMOptions  string            `json:"jvmOptions,omitempty"`
	Environment map[string]string `json:"environment,omitempty"`
	Layer       string            `json:"layer"`
}

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Print the Pebble layer for a workload filesystem without applying it",
	Long: `Classifies the application found under --root, resolves the options from
config.yaml and prints the resulting Pebble layer. Nothing is sent to a
supervisor and no cluster access is needed.

--root is a directory laid out like the workload container, for example an
unpacked image with /app/<name>.jar or a buildpack /workspace.

--memory-limit stands in for the container memory limit when jvm-config sets
heap flags (for example 2Gi or 512M). Without it the quota is unconstrained.

With -o yaml the layer document is printed as Pebble reads it.`,
	Args: cobra.NoArgs,
	RunE: runPlan,
}

func runPlan(cmd *cobra.Command, args []string) error {
	level, err := logging.ParseLevel(logLevel)
	if err != nil {
		return err
	}
	logging.InitForCLI(level, cmd.ErrOrStderr())

	quota := memory.Unconstrained()
	if planMemoryLimit != "" {
		limit, err := memory.ParseQuantity(planMemoryLimit)
		if err != nil {
			return fmt.Errorf("invalid --memory-limit: %w", err)
		}
		quota = memory.Limit(limit)
	}

	dir := configPath
	if dir == "" {
		dir = config.DefaultConfigDir
	}

	engine := reconciler.NewEngine(reconciler.EngineConfig{
		Container: workload.NewLocalContainer(planContainer, planRoot),
		Oracle:    memory.Static(quota),
		Options: func(ctx context.Context) (config.Options, error) {
			return config.LoadOptions(dir)
		},
	})

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	plan, err := engine.Resolve(ctx)
	if err != nil {
		re := reconciler.AsError(err)
		return &NotActiveError{Outcome: re.Outcome()}
	}

	layer, err := plan.Layer.Marshal()
	if err != nil {
		return err
	}

	format := OutputFormat(planOutput)
	if format == OutputFormatYAML {
		_, err := cmd.OutOrStdout().Write(layer)
		return err
	}

	result := PlanResult{
		Application: plan.Application.String(),
		Command:     plan.Application.StartCommand(),
		Port:        plan.Port,
		JVMOptions:  plan.JVMOptions,
		Environment: plan.Environment,
		Layer:       string(layer),
	}

	fields := []field{
		{"Application", result.Application},
		{"Command", fmt.Sprint(result.Command)},
		{"Port", strconv.Itoa(result.Port)},
		{"JVM options", result.JVMOptions},
	}
	keys := make([]string, 0, len(result.Environment))
	for k := range result.Environment {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fields = append(fields, field{"env " + k, result.Environment[k]})
	}
	return render(cmd.OutOrStdout(), format, result, fields)
}

func init() {
	rootCmd.AddCommand(planCmd)

	planCmd.Flags().StringVar(&planRoot, "root", "", "Directory laid out like the workload container filesystem")
	planCmd.Flags().StringVar(&planContainer, "container", config.DefaultContainer, "Workload container name")
	planCmd.Flags().StringVar(&planMemoryLimit, "memory-limit", "", "Container memory limit to validate heap flags against")
	planCmd.Flags().StringVarP(&planOutput, "output", "o", "table", "Output format (table, json, yaml)")
	_ = planCmd.MarkFlagRequired("root")
}
