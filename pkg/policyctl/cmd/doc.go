// Package cmd implements the cobra command tree for the policyctl CLI,
// including subcommands for validating policy manifests, listing the
// evaluation order of a policy set, and dry-running pods against it.
package cmd
