// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package cmd

import (
	"fmt"
	"net/http"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/canonical/tenancy-service/internal/types"
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Manage organization members",
}

var listUsersCmd = &cobra.Command{
	Use:   "list [tenant-id]",
	Short: "List members of an organization",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client := newAPIClient()

		var members []*types.Membership
		if err := client.do(cmd.Context(), http.MethodGet, "/api/v0/tenants/"+args[0]+"/users", nil, &members); err != nil {
			return fmt.Errorf("failed to list members: %w", err)
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "USER_ID\tEMAIL\tROLE\tOWNER\tSTATUS")
		for _, m := range members {
			fmt.Fprintf(w, "%s\t%s\t%s\t%v\t%s\n", m.UserID, m.Email, m.Role, m.IsOwner, m.Status)
		}
		w.Flush()
		return nil
	},
}

var inviteUserCmd = &cobra.Command{
	Use:   "invite [tenant-id] [email] [role]",
	Short: "Invite a user to an organization",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		client := newAPIClient()

		var invitation struct {
			types.Invitation
			Token string `json:"token"`
		}
		err := client.do(cmd.Context(), http.MethodPost, "/api/v0/tenants/"+args[0]+"/invitations", map[string]string{
			"email": args[1],
			"role":  args[2],
		}, &invitation)
		if err != nil {
			return fmt.Errorf("failed to invite user: %w", err)
		}

		fmt.Printf("User invited: %s\n", args[1])
		fmt.Printf("Token: %s\n", invitation.Token)
		fmt.Printf("Expires: %s\n", invitation.ExpiresAt)
		return nil
	},
}

var updateUserCmd = &cobra.Command{
	Use:   "update [tenant-id] [user-id] [role]",
	Short: "Update a member role",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		client := newAPIClient()

		var membership types.Membership
		err := client.do(cmd.Context(), http.MethodPatch, "/api/v0/tenants/"+args[0]+"/users/"+args[1], map[string]string{
			"role": args[2],
		}, &membership)
		if err != nil {
			return fmt.Errorf("failed to update member: %w", err)
		}

		fmt.Printf("Member updated: %s\n", membership.UserID)
		fmt.Printf("New Role: %s\n", membership.Role)
		return nil
	},
}

var removeUserCmd = &cobra.Command{
	Use:   "remove [tenant-id] [user-id]",
	Short: "Remove a member from an organization",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		client := newAPIClient()

		if err := client.do(cmd.Context(), http.MethodDelete, "/api/v0/tenants/"+args[0]+"/users/"+args[1], nil, nil); err != nil {
			return fmt.Errorf("failed to remove member: %w", err)
		}

		fmt.Printf("Member removed: %s\n", args[1])
		return nil
	},
}

func init() {
	tenantCmd.AddCommand(usersCmd)
	usersCmd.AddCommand(listUsersCmd)
	usersCmd.AddCommand(inviteUserCmd)
	usersCmd.AddCommand(updateUserCmd)
	usersCmd.AddCommand(removeUserCmd)
}
