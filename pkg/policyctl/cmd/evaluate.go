package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	corev1 "k8s.io/api/core/v1"
	"sigs.k8s.io/yaml"

	"github.com/telekom/k8s-podsec-admission/pkg/admission"
	"github.com/telekom/k8s-podsec-admission/pkg/authorizer"
	"github.com/telekom/k8s-podsec-admission/pkg/policy"
	"github.com/telekom/k8s-podsec-admission/pkg/request"
)

// NewEvaluateCommand dry-runs a pod manifest against a policy set, showing
// the decision the admission controller would make. Authorization is
// simulated: without --policy every policy is considered usable by the
// given identity.
func NewEvaluateCommand() *cobra.Command {
	var (
		podFile   string
		user      string
		groups    []string
		namespace string
		policies  []string
	)

	cmd := &cobra.Command{
		Use:   "evaluate <file-or-dir> --pod <pod.yaml>",
		Short: "Dry-run a pod against a policy set",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := loadPath(args[0])
			if err != nil {
				return err
			}
			store, err := policy.NewStore(loaded)
			if err != nil {
				return err
			}

			data, err := os.ReadFile(podFile)
			if err != nil {
				return err
			}
			var pod corev1.Pod
			if err := yaml.Unmarshal(data, &pod); err != nil {
				return fmt.Errorf("failed to parse pod manifest %q: %w", podFile, err)
			}

			allowed := policies
			if len(allowed) == 0 {
				allowed = []string{"*"}
			}
			auth := authorizer.NewStaticAuthorizer(map[string][]string{user: allowed})

			log := zap.NewNop().Sugar()
			engine := admission.NewEngine(
				policy.NewProvider(store),
				authorizer.NewResolver(auth, log),
				log,
			)

			proj := request.FromPod(&pod)
			if namespace != "" {
				proj.Namespace = namespace
			}
			if proj.Namespace == "" {
				proj.Namespace = "default"
			}

			id := authorizer.Identity{Name: user, Groups: groups}
			result, err := engine.Admit(cmd.Context(), id, proj.Namespace, proj)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if result.Admitted() {
				fmt.Fprintf(out, "ADMITTED by policy %q\n", result.SelectedPolicy)
				for _, d := range result.Defaults {
					fmt.Fprintf(out, "  default applied: %s = %s\n", d.Field, d.Value)
				}
				return nil
			}

			fmt.Fprintf(out, "DENIED: %s\n", result.Message())
			return fmt.Errorf("pod would be denied")
		},
	}

	cmd.Flags().StringVar(&podFile, "pod", "", "Path to the pod manifest to evaluate")
	cmd.Flags().StringVar(&user, "user", "system:serviceaccount:default:default", "Identity requesting admission")
	cmd.Flags().StringSliceVar(&groups, "groups", nil, "Groups of the identity")
	cmd.Flags().StringVar(&namespace, "namespace", "", "Namespace override for the pod")
	cmd.Flags().StringSliceVar(&policies, "policy", nil, "Restrict the simulated authorization to these policy names")
	_ = cmd.MarkFlagRequired("pod")

	return cmd
}
