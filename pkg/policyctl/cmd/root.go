package cmd

import (
	"io"
	"os"

	"github.com/spf13/cobra"
)

type Config struct {
	OutputWriter io.Writer
}

func DefaultConfig() Config {
	return Config{
		OutputWriter: os.Stdout,
	}
}

func NewRootCommand(cfg Config) *cobra.Command {
	if cfg.OutputWriter == nil {
		cfg.OutputWriter = os.Stdout
	}

	root := &cobra.Command{
		Use:           "policyctl",
		Short:         "Pod security policy CLI",
		Long:          "policyctl validates PodSecurityPolicy manifests and dry-runs pods against them without a running admission controller.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(cfg.OutputWriter)

	root.AddCommand(
		NewValidateCommand(),
		NewListCommand(),
		NewEvaluateCommand(),
		NewVersionCommand(),
	)

	return root
}
