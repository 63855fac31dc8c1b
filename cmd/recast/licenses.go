package main

import (
	"fmt"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/recast-dev/recast/config"
)

func licensesCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "licenses",
		Short: "Inspect and accept the licenses the catalog requires",
	}

	var acceptList []string
	verify := &cobra.Command{
		Use:   "verify",
		Short: "Verify that every required license has been accepted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := buildEnvironment(cmd, opts, acceptList)
			if err != nil {
				return err
			}
			if err := env.VerifyLicenses(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "All required licenses are accepted.")
			return nil
		},
	}
	verify.Flags().StringSliceVar(&acceptList, "accept-license", nil, "license names to accept, e.g. \"Moderne Source Available License\"")

	list := &cobra.Command{
		Use:   "list",
		Short: "List the licenses required by the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := buildEnvironment(cmd, opts, nil)
			if err != nil {
				return err
			}

			table := tablewriter.NewTable(cmd.OutOrStdout())
			table.Header("License", "Required By", "URL")
			for _, req := range env.Requirements() {
				if err := table.Append([]string{req.License.Name(), req.Module, req.License.URL()}); err != nil {
					return err
				}
			}
			return table.Render()
		},
	}

	cmd.AddCommand(verify, list)
	return cmd
}

func schemaCommand() *cobra.Command {
	return &cobra.Command{
		Use:    "schema",
		Short:  "Print the JSON schema for declarative documents",
		Hidden: true,
		Args:   cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := cmd.OutOrStdout().Write(config.Schema())
			return err
		},
	}
}
