package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var projectsCmd = &cobra.Command{
	Use:   "projects",
	Short: "List and create projects",
}

var projectsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the projects you belong to",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ps, err := newClient().ListProjects(cmd.Context())
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tNAME\tOWNER")
		for _, p := range ps {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", p.ID, p.Name, p.OwnerID)
		}
		return tw.Flush()
	},
}

var projectDescription string

var projectsCreateCmd = &cobra.Command{
	Use:   "create NAME",
	Short: "Create a project owned by you",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := newClient().CreateProject(cmd.Context(), args[0], projectDescription)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), p.ID)
		return nil
	},
}

func init() {
	projectsCreateCmd.Flags().StringVarP(&projectDescription, "description", "d", "", "project description")
	projectsCmd.AddCommand(projectsListCmd, projectsCreateCmd)
}
