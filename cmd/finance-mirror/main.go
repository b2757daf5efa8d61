package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// @title School Finance Mirror API
// @version 1.0.0
// @description Read-only finance views over data synced from the school desktop application.
// @BasePath /api/v1
// @schemes http

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "finance-mirror",
		Short:         "Read-only finance mirror for the school desktop application",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newServeCmd(), newOutstandingCmd(), newNotifyCmd(), newVersionCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the build version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	}
}
