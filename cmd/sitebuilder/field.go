package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/thatcatcamp/sitebuilder/internal/db"
	"github.com/thatcatcamp/sitebuilder/internal/fields"
	"github.com/thatcatcamp/sitebuilder/internal/questions"
)

var fieldCmd = &cobra.Command{
	Use:   "field",
	Short: "Manage bundle fields",
	Long:  "Create, list, and delete fields on content bundles",
}

var fieldCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Add a field to a bundle",
	RunE: func(cmd *cobra.Command, args []string) error {
		asker, err := newAsker(cmd)
		if err != nil {
			return err
		}

		entityType, bundle, err := askBundle(cmd, asker)
		if err != nil {
			return err
		}

		fieldType, _ := cmd.Flags().GetString("field-type")
		fieldName, _ := cmd.Flags().GetString("field-name")

		field, err := asker.Field(entityType, bundle, fieldType, fieldName)
		if err != nil {
			return err
		}

		if err := fields.Save(db.GetDB(), field); err != nil {
			return err
		}

		asker.IO().Success(fmt.Sprintf("Field %q created on %q %q.", field.Name, entityType, bundle))
		return nil
	},
}

var fieldDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Remove a field from a bundle",
	RunE: func(cmd *cobra.Command, args []string) error {
		asker, err := newAsker(cmd)
		if err != nil {
			return err
		}

		entityType, bundle, err := askBundle(cmd, asker)
		if err != nil {
			return err
		}

		fieldName, _ := cmd.Flags().GetString("field-name")
		if fieldName, err = asker.ExistingField(entityType, bundle, fieldName); err != nil {
			return err
		}

		if err := fields.Delete(db.GetDB(), entityType, bundle, fieldName); err != nil {
			return err
		}

		asker.IO().Success(fmt.Sprintf("Field %q deleted from %q %q.", fieldName, entityType, bundle))
		return nil
	},
}

var fieldListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the fields of a bundle",
	RunE: func(cmd *cobra.Command, args []string) error {
		asker, err := newAsker(cmd)
		if err != nil {
			return err
		}

		entityType, bundle, err := askBundle(cmd, asker)
		if err != nil {
			return err
		}

		instances, err := fields.ListConfigurable(db.GetDB(), entityType, bundle)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tTYPE\tLABEL\tREQUIRED\tCARDINALITY")
		for _, instance := range instances {
			cardinality := "?"
			if storage, err := fields.LoadStorage(db.GetDB(), entityType, instance.FieldName); err == nil {
				cardinality = fmt.Sprintf("%d", storage.Cardinality)
				if storage.Cardinality == -1 {
					cardinality = "unlimited"
				}
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%t\t%s\n",
				instance.FieldName, instance.FieldType, instance.Label, instance.Required, cardinality)
		}
		return w.Flush()
	},
}

// askBundle resolves the --entity-type and --bundle-name flags of an existing bundle
func askBundle(cmd *cobra.Command, asker *questions.Asker) (string, string, error) {
	entityType, _ := cmd.Flags().GetString("entity-type")
	bundle, _ := cmd.Flags().GetString("bundle-name")

	entityType, err := asker.EntityType(entityType)
	if err != nil {
		return "", "", err
	}
	bundle, err = asker.ExistingBundle(entityType, bundle)
	if err != nil {
		return "", "", err
	}
	return entityType, bundle, nil
}

func init() {
	for _, c := range []*cobra.Command{fieldCreateCmd, fieldDeleteCmd, fieldListCmd} {
		c.Flags().String("entity-type", "", "Content entity type, e.g. node")
		c.Flags().String("bundle-name", "", "Bundle machine name")
	}
	fieldCreateCmd.Flags().String("field-type", "", "Field type, e.g. string")
	fieldCreateCmd.Flags().String("field-name", "", "Field machine name")
	fieldDeleteCmd.Flags().String("field-name", "", "Field machine name")

	fieldCmd.AddCommand(fieldCreateCmd)
	fieldCmd.AddCommand(fieldDeleteCmd)
	fieldCmd.AddCommand(fieldListCmd)
	rootCmd.AddCommand(fieldCmd)
}
