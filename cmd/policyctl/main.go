package main

import (
	"os"

	policyctlcmd "github.com/telekom/k8s-podsec-admission/pkg/policyctl/cmd"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	root := policyctlcmd.NewRootCommand(policyctlcmd.DefaultConfig())
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		return 1
	}
	return 0
}
