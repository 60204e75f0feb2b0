// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package cmd

import (
	"fmt"
	"net/http"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/canonical/tenancy-service/internal/types"
)

var tenantCmd = &cobra.Command{
	Use:   "tenant",
	Short: "Manage organizations",
}

var createTenantCmd = &cobra.Command{
	Use:   "create [name] [slug]",
	Short: "Create a new organization",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		client := newAPIClient()

		var tenant types.Tenant
		err := client.do(cmd.Context(), http.MethodPost, "/api/v0/tenants", map[string]string{
			"name": args[0],
			"slug": args[1],
		}, &tenant)
		if err != nil {
			return fmt.Errorf("failed to create organization: %w", err)
		}

		fmt.Printf("Organization created: %s (ID: %s)\n", tenant.Name, tenant.ID)
		return nil
	},
}

var listTenantsCmd = &cobra.Command{
	Use:   "list",
	Short: "List organizations for the authenticated user",
	RunE: func(cmd *cobra.Command, args []string) error {
		client := newAPIClient()

		var tenants []*types.UserTenant
		if err := client.do(cmd.Context(), http.MethodGet, "/api/v0/tenants", nil, &tenants); err != nil {
			return fmt.Errorf("failed to list organizations: %w", err)
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tSLUG\tROLE\tOWNER\tCREATED_AT")
		for _, t := range tenants {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%v\t%s\n", t.ID, t.Name, t.Slug, t.Role, t.IsOwner, t.CreatedAt.Format(time.RFC3339))
		}
		w.Flush()
		return nil
	},
}

var getTenantCmd = &cobra.Command{
	Use:   "get [id]",
	Short: "Get an organization",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client := newAPIClient()

		var tenant types.Tenant
		if err := client.do(cmd.Context(), http.MethodGet, "/api/v0/tenants/"+args[0], nil, &tenant); err != nil {
			return fmt.Errorf("failed to get organization: %w", err)
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tSLUG\tENABLED\tCREATED_AT")
		fmt.Fprintf(w, "%s\t%s\t%s\t%v\t%s\n", tenant.ID, tenant.Name, tenant.Slug, tenant.Enabled, tenant.CreatedAt.Format(time.RFC3339))
		w.Flush()
		return nil
	},
}

var updateTenantCmd = &cobra.Command{
	Use:   "update [id] [name]",
	Short: "Update an organization name",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		client := newAPIClient()

		var tenant types.Tenant
		err := client.do(cmd.Context(), http.MethodPatch, "/api/v0/tenants/"+args[0], map[string]string{
			"name": args[1],
		}, &tenant)
		if err != nil {
			return fmt.Errorf("failed to update organization: %w", err)
		}

		fmt.Printf("Organization updated: %s\n", tenant.ID)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(tenantCmd)
	tenantCmd.AddCommand(createTenantCmd)
	tenantCmd.AddCommand(listTenantsCmd)
	tenantCmd.AddCommand(getTenantCmd)
	tenantCmd.AddCommand(updateTenantCmd)
}
