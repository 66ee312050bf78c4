package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/telekom/k8s-podsec-admission/pkg/policy"
)

// NewListCommand prints the policies of a policy set in evaluation order,
// the same order the admission controller would try them in.
func NewListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list <file-or-dir>",
		Short: "List policies in evaluation order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			policies, err := loadPath(args[0])
			if err != nil {
				return err
			}
			store, err := policy.NewStore(policies)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ORDER\tNAME\tPRIORITY\tPRIVILEGED")
			for i, p := range store.Ordered() {
				fmt.Fprintf(w, "%d\t%s\t%d\t%t\n", i+1, p.Name, p.Priority, p.Privileged)
			}
			return w.Flush()
		},
	}
	return cmd
}
