package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/recast-dev/recast/pkg/recipe"
)

func recipesCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "recipes",
		Short: "List every recipe in the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := buildEnvironment(cmd, opts, nil)
			if err != nil {
				return err
			}

			descriptors, err := env.Descriptors(opts.profile)
			if err != nil {
				return err
			}

			table := tablewriter.NewTable(cmd.OutOrStdout())
			table.Header("Name", "Display Name", "Options", "Source")
			for _, d := range descriptors {
				source := d.Source
				if source == "" {
					source = "native"
				}
				if err := table.Append([]string{d.Name, d.DisplayName, fmt.Sprint(len(d.Options)), source}); err != nil {
					return err
				}
			}
			return table.Render()
		},
	}
}

func describeCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "describe <name>",
		Short: "Show one recipe's descriptor and composition",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := buildEnvironment(cmd, opts, nil)
			if err != nil {
				return err
			}

			descriptors, err := env.Descriptors(opts.profile)
			if err != nil {
				return err
			}

			for _, d := range descriptors {
				if d.Name == args[0] {
					printDescriptor(cmd, d)
					return nil
				}
			}
			return fmt.Errorf("recipe %s is not in the catalog", args[0])
		},
	}
}

func printDescriptor(cmd *cobra.Command, d recipe.Descriptor) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Name:         %s\n", d.Name)
	if d.DisplayName != "" {
		fmt.Fprintf(out, "Display name: %s\n", d.DisplayName)
	}
	if d.Description != "" {
		fmt.Fprintf(out, "Description:  %s\n", d.Description)
	}
	if len(d.Tags) > 0 {
		fmt.Fprintf(out, "Tags:         %s\n", strings.Join(d.Tags, ", "))
	}
	if d.EstimatedEffort > 0 {
		fmt.Fprintf(out, "Effort:       %s per occurrence\n", d.EstimatedEffort.Round(time.Second))
	}
	if d.Source != "" {
		fmt.Fprintf(out, "Source:       %s\n", d.Source)
	}
	if len(d.Options) > 0 {
		fmt.Fprintln(out, "Options:")
		for _, o := range d.Options {
			line := fmt.Sprintf("  %s (%s)", o.Name, o.Type)
			if o.Required {
				line += " required"
			}
			if o.Value != nil {
				line += fmt.Sprintf(" = %v", o.Value)
			}
			fmt.Fprintln(out, line)
		}
	}
	if len(d.Recipes) > 0 {
		fmt.Fprintln(out, "Recipe list:")
		for _, child := range d.Recipes {
			fmt.Fprintf(out, "  %s\n", child.Name)
		}
	}
}
