// SPDX-License-Identifier: MIT
package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/thatcatcamp/sitebuilder/internal/bundles"
	"github.com/thatcatcamp/sitebuilder/internal/db"
	"github.com/thatcatcamp/sitebuilder/internal/entity"
)

var bundleCmd = &cobra.Command{
	Use:   "bundle",
	Short: "Manage content bundles",
	Long:  "Create, list, and delete bundles of content entity types",
}

var bundleCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a bundle with fields",
	RunE: func(cmd *cobra.Command, args []string) error {
		asker, err := newAsker(cmd)
		if err != nil {
			return err
		}

		entityType, _ := cmd.Flags().GetString("entity-type")
		name, _ := cmd.Flags().GetString("bundle-name")
		label, _ := cmd.Flags().GetString("bundle-label")
		description, _ := cmd.Flags().GetString("bundle-description")
		roles, _ := cmd.Flags().GetStringArray("grant-role")

		req := bundles.Request{GrantRoles: roles}

		if req.EntityType, err = asker.EntityType(entityType); err != nil {
			return err
		}
		if req.Name, err = asker.NewBundleName(req.EntityType, name); err != nil {
			return err
		}
		if req.Label, err = asker.BundleLabel(req.Name, label); err != nil {
			return err
		}
		if req.Description, err = asker.BundleDescription(description); err != nil {
			return err
		}
		if req.Fields, err = asker.Fields(req.EntityType, req.Name); err != nil {
			return err
		}

		bundle, err := bundles.Build(db.GetDB(), req)
		if err != nil {
			return err
		}

		asker.IO().Success(fmt.Sprintf("Bundle %q created.", bundle.Label))
		return nil
	},
}

var bundleDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete a bundle with its fields",
	RunE: func(cmd *cobra.Command, args []string) error {
		asker, err := newAsker(cmd)
		if err != nil {
			return err
		}

		entityType, _ := cmd.Flags().GetString("entity-type")
		name, _ := cmd.Flags().GetString("bundle-name")

		if entityType, err = asker.EntityType(entityType); err != nil {
			return err
		}
		if name, err = asker.ExistingBundle(entityType, name); err != nil {
			return err
		}

		if err := bundles.DeleteBundle(db.GetDB(), entityType, name); err != nil {
			return err
		}

		asker.IO().Success(fmt.Sprintf("Bundle %q deleted.", name))
		return nil
	},
}

var bundleListCmd = &cobra.Command{
	Use:   "list",
	Short: "List bundles",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := initDB(); err != nil {
			return err
		}

		entityType, _ := cmd.Flags().GetString("entity-type")
		if entityType != "" {
			if _, err := entity.BundleDefinition(entityType); err != nil {
				return err
			}
		}

		bundleList, err := bundles.ListBundles(db.GetDB(), entityType)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ENTITY TYPE\tNAME\tLABEL\tDESCRIPTION\tCREATED")
		for _, b := range bundleList {
			description := b.Description
			if description == "" {
				description = "-"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				b.EntityType, b.Name, b.Label, description, b.CreatedAt.Format("2006-01-02"))
		}
		return w.Flush()
	},
}

func init() {
	bundleCreateCmd.Flags().String("entity-type", "", "Content entity type, e.g. node")
	bundleCreateCmd.Flags().String("bundle-name", "", "Bundle machine name")
	bundleCreateCmd.Flags().String("bundle-label", "", "Bundle label")
	bundleCreateCmd.Flags().String("bundle-description", "", "Bundle description")
	bundleCreateCmd.Flags().StringArray("grant-role", nil, "Grant the bundle's permissions to a role (repeatable)")

	bundleDeleteCmd.Flags().String("entity-type", "", "Content entity type, e.g. node")
	bundleDeleteCmd.Flags().String("bundle-name", "", "Bundle machine name")

	bundleListCmd.Flags().String("entity-type", "", "Only list bundles of this entity type")

	bundleCmd.AddCommand(bundleCreateCmd)
	bundleCmd.AddCommand(bundleDeleteCmd)
	bundleCmd.AddCommand(bundleListCmd)
	rootCmd.AddCommand(bundleCmd)
}
