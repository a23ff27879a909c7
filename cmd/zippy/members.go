package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/zippyboards/backend/pkg/client"
)

var membersCmd = &cobra.Command{
	Use:   "members",
	Short: "Manage project members",
}

var membersListCmd = &cobra.Command{
	Use:   "list PROJECT_ID",
	Short: "List members of a project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ms, err := newClient().ListMembers(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "USER\tROLE\tEMAIL")
		for _, m := range ms {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", m.UserID, m.Role, m.Email)
		}
		return tw.Flush()
	},
}

var membersAddCmd = &cobra.Command{
	Use:   "add PROJECT_ID EMAIL",
	Short: "Add a registered user to a project (owners only)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := newClient().AddMember(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}
		return reportResult(cmd, res, "added "+args[1])
	},
}

var membersRemoveCmd = &cobra.Command{
	Use:   "remove PROJECT_ID USER_ID",
	Short: "Remove a member from a project (owners only)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := newClient().RemoveMember(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}
		return reportResult(cmd, res, "removed "+args[1])
	},
}

func reportResult(cmd *cobra.Command, res client.ActionResult, ok string) error {
	if !res.Success {
		return fmt.Errorf("%s (%s)", res.Error, res.Code)
	}
	fmt.Fprintln(cmd.OutOrStdout(), ok)
	return nil
}

func init() {
	membersCmd.AddCommand(membersListCmd, membersAddCmd, membersRemoveCmd)
}
