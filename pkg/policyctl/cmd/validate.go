package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	podsecv1alpha1 "github.com/telekom/k8s-podsec-admission/api/v1alpha1"
	"github.com/telekom/k8s-podsec-admission/pkg/policy"
)

// NewValidateCommand validates one or more policy manifests or directories.
// It prints every violation it finds and fails when any manifest is invalid.
func NewValidateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <file-or-dir> [...]",
		Short: "Validate policy manifests",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			invalid := 0
			total := 0
			for _, arg := range args {
				policies, err := loadPath(arg)
				if err != nil {
					return err
				}
				for i := range policies {
					total++
					p := &policies[i]
					errs := policy.ValidatePolicy(p)
					if len(errs) == 0 {
						fmt.Fprintf(cmd.OutOrStdout(), "%s: OK\n", p.Name)
						continue
					}
					invalid++
					fmt.Fprintf(cmd.OutOrStdout(), "%s: INVALID\n", p.Name)
					for _, fieldErr := range errs {
						fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", fieldErr.Error())
					}
				}
			}
			if invalid > 0 {
				return fmt.Errorf("%d of %d policies invalid", invalid, total)
			}
			return nil
		},
	}
	return cmd
}

// loadPath loads policies from a file or, recursively via lexical order,
// from a directory.
func loadPath(path string) ([]podsecv1alpha1.PodSecurityPolicy, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return policy.LoadDir(path)
	}
	return policy.LoadFile(path)
}
