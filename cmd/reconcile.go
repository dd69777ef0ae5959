package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"spring-boot-operator/internal/app"
	"spring-boot-operator/internal/reconciler"
)

var (
	reconcileTrigger  string
	reconcileRelation string
	reconcileOutput   string
)

// NotActiveError reports a reconciliation that did not leave the unit active.
type NotActiveError struct {
	Outcome reconciler.Outcome
}

func (e *NotActiveError) Error() string {
	return fmt.Sprintf("reconciliation finished with %s", e.Outcome)
}

// ReconcileResult is the printable result of a single reconciliation.
type ReconcileResult struct {
	Trigger  string `json:"trigger"`
	Relation string `json:"relation,omitempty"`
	Outcome  string `json:"outcome"`
	Reason   string `json:"reason,omitempty"`
	Retry    bool   `json:"retry"`
	Phase    string `json:"phase"`
	Message  string `json:"message,omitempty"`
}

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Run a single reconciliation pass",
	Long: `Dispatches one trigger through the datasource, ingress and core handlers
and prints the outcome and resulting unit status. No watches are started and a
waiting outcome is not retried.

Triggers: config-changed, workload-ready, start, upgrade, relation-ready,
relation-broken. Relation triggers need --relation.

The command exits with code 2 when the unit is not active afterwards.`,
	Args: cobra.NoArgs,
	RunE: runReconcile,
}

func parseTrigger(name, relation string) (reconciler.EventKind, error) {
	kind := reconciler.EventKind(name)
	switch kind {
	case reconciler.EventConfigChanged, reconciler.EventWorkloadReady, reconciler.EventStart, reconciler.EventUpgrade:
		return kind, nil
	case reconciler.EventRelationReady, reconciler.EventRelationBroken:
		if relation == "" {
			return "", fmt.Errorf("trigger %s requires --relation", name)
		}
		return kind, nil
	default:
		return "", fmt.Errorf("unknown trigger %q", name)
	}
}

func runReconcile(cmd *cobra.Command, args []string) error {
	kind, err := parseTrigger(reconcileTrigger, reconcileRelation)
	if err != nil {
		return err
	}

	cfg := app.NewConfig(configPath, logLevel, logFormat)
	application, err := app.NewApplication(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	outcome := application.ReconcileOnce(ctx, kind, reconcileRelation)
	status, _ := application.Services().Recorder.Current()

	result := ReconcileResult{
		Trigger:  string(kind),
		Relation: reconcileRelation,
		Outcome:  outcome.Kind.String(),
		Reason:   outcome.Reason,
		Retry:    outcome.Retry,
		Phase:    string(status.Phase),
		Message:  status.Message,
	}
	if err := printReconcileResult(cmd, OutputFormat(reconcileOutput), result); err != nil {
		return err
	}

	if !outcome.IsSuccess() {
		return &NotActiveError{Outcome: outcome}
	}
	return nil
}

func printReconcileResult(cmd *cobra.Command, format OutputFormat, result ReconcileResult) error {
	fields := []field{
		{"Trigger", result.Trigger},
		{"Outcome", phaseColor(result.Outcome)},
		{"Reason", result.Reason},
		{"Retry", strconv.FormatBool(result.Retry)},
		{"Status", phaseColor(result.Phase)},
		{"Message", result.Message},
	}
	if result.Relation != "" {
		fields = append(fields[:1], append([]field{{"Relation", result.Relation}}, fields[1:]...)...)
	}
	return render(cmd.OutOrStdout(), format, result, fields)
}

func init() {
	rootCmd.AddCommand(reconcileCmd)

	reconcileCmd.Flags().StringVar(&reconcileTrigger, "trigger", string(reconciler.EventConfigChanged), "Trigger to dispatch")
	reconcileCmd.Flags().StringVar(&reconcileRelation, "relation", "", "Relation name for relation triggers")
	reconcileCmd.Flags().StringVarP(&reconcileOutput, "output", "o", "table", "Output format (table, json, yaml)")
}
