// Package cli wires the recipebox command tree: one subcommand per service
// role plus database maintenance commands.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var version = "dev"

type rootOptions struct {
	configPaths []string
}

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:           "recipebox",
		Short:         "Recipe backend services",
		Long:          "Runs the recipebox gateway, authorizer, accounts and recipes services, and manages their database.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	addConfigFlags(rootCmd.PersistentFlags(), opts)

	rootCmd.AddCommand(
		newServeCmd(opts, roleGateway),
		newServeCmd(opts, roleAuthorizer),
		newServeCmd(opts, roleAccounts),
		newServeCmd(opts, roleRecipes),
		newMigrateCmd(opts),
		newSeedCmd(opts),
	)

	return rootCmd
}

func addConfigFlags(fs *pflag.FlagSet, opts *rootOptions) {
	fs.StringSliceVar(&opts.configPaths, "config", nil,
		"directory containing config.yaml (repeatable; defaults to ./config and .)")
}
