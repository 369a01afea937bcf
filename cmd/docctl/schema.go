// Schema subcommands: metadata fields, document types, categories.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"docvault/internal/model"
)

var fieldCmd = &cobra.Command{
	Use:   "field",
	Short: "Manage metadata field definitions",
}

var typeCmd = &cobra.Command{
	Use:   "type",
	Short: "Manage document types",
}

var categoryCmd = &cobra.Command{
	Use:   "category",
	Short: "Manage categories",
}

func init() {
	fieldCmd.AddCommand(fieldListCmd)
	fieldCmd.AddCommand(fieldGetCmd)
	typeCmd.AddCommand(typeListCmd)
	typeCmd.AddCommand(typeGetCmd)
	categoryCmd.AddCommand(categoryListCmd)
	categoryCmd.AddCommand(categoryTreeCmd)
}

var fieldListCmd = &cobra.Command{
	Use:   "list",
	Short: "List metadata field definitions",
	RunE: func(cmd *cobra.Command, args []string) error {
		fields, err := metaSvc.ListFields(cmd.Context())
		if err != nil {
			return fmt.Errorf("list fields: %w", err)
		}
		if jsonOutput {
			return printJSON(fields)
		}
		for _, f := range fields {
			multi := ""
			if f.IsMultiValued {
				multi = "\tmulti"
			}
			fmt.Printf("%s\t%s\t%s%s\n", f.ID, f.Name, f.Type, multi)
		}
		return nil
	},
}

var fieldGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Get a metadata field definition",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		field, err := metaSvc.GetField(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("get field: %w", err)
		}
		if jsonOutput {
			return printJSON(field)
		}
		fmt.Printf("ID:     %s\n", field.ID)
		fmt.Printf("Name:   %s\n", field.Name)
		fmt.Printf("Type:   %s\n", field.Type)
		if field.Type == model.FieldTypeEnum {
			fmt.Printf("Values: %s\n", field.EnumValues)
		}
		return nil
	},
}

var typeListCmd = &cobra.Command{
	Use:   "list",
	Short: "List document types",
	RunE: func(cmd *cobra.Command, args []string) error {
		types, err := metaSvc.ListDocumentTypes(cmd.Context())
		if err != nil {
			return fmt.Errorf("list document types: %w", err)
		}
		if jsonOutput {
			return printJSON(types)
		}
		for _, t := range types {
			fmt.Printf("%s\t%s\n", t.ID, t.Name)
		}
		return nil
	},
}

var typeGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Get a document type with its field associations",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dt, err := metaSvc.GetDocumentType(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("get document type: %w", err)
		}
		if jsonOutput {
			return printJSON(dt)
		}
		fmt.Printf("ID:   %s\n", dt.ID)
		fmt.Printf("Name: %s\n", dt.Name)
		for _, assoc := range dt.Fields {
			required := ""
			if assoc.IsRequired {
				required = "\trequired"
			}
			fmt.Printf("  %s\t%s%s\n", assoc.Field.Name, assoc.Field.Type, required)
		}
		return nil
	},
}

var categoryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List categories",
	RunE: func(cmd *cobra.Command, args []string) error {
		cats, err := catSvc.List(cmd.Context())
		if err != nil {
			return fmt.Errorf("list categories: %w", err)
		}
		if jsonOutput {
			return printJSON(cats)
		}
		for _, c := range cats {
			fmt.Printf("%s\t%s\n", c.ID, c.Name)
		}
		return nil
	},
}

var categoryTreeCmd = &cobra.Command{
	Use:   "tree <id>",
	Short: "Print the category subtree rooted at the given category",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		node, err := catSvc.Tree(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("resolve tree: %w", err)
		}
		if jsonOutput {
			return printJSON(node)
		}
		printTree(node, 0)
		return nil
	},
}

func printTree(node *model.CategoryNode, depth int) {
	for i := 0; i < depth; i++ {
		fmt.Print("  ")
	}
	fmt.Println(node.Name)
	for _, child := range node.Children {
		printTree(child, depth+1)
	}
}
