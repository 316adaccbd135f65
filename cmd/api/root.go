package main

import (
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:     "parkingcontrol",
		Short:   "Parking spot registration API",
		Version: version,
		// bare invocation serves
		RunE:         runServe,
		SilenceUsage: true,
	}

	root.AddCommand(newServeCmd(), newMigrateCmd())

	return root
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE:  runServe,
	}
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the parking_spot table and constraints, then exit",
		RunE:  runMigrate,
	}
}
