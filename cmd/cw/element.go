package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/alfredjeanlab/cardwall/internal/client"
	"github.com/alfredjeanlab/cardwall/internal/model"
	"github.com/spf13/cobra"
)

var elementCmd = &cobra.Command{
	Use:     "element",
	Short:   "Manage board elements (fields and buttons)",
	GroupID: "boards",
}

// parseShowCondition parses "field:op" or "field:op:value" into a condition.
func parseShowCondition(s string) (*model.Condition, error) {
	parts := strings.SplitN(s, ":", 3)
	if len(parts) < 2 {
		return nil, fmt.Errorf("invalid show condition %q: expected field:op[:value]", s)
	}
	cond := &model.Condition{Field: parts[0], Query: model.QueryOp(parts[1])}
	if !cond.Query.IsValid() {
		return nil, fmt.Errorf("invalid query operator %q", parts[1])
	}
	if len(parts) == 3 {
		cond.Value = parts[2]
	}
	return cond, nil
}

// parseChoices converts --choice flags into choice options. Each flag is
// "id:label", or a bare label whose id is derived by lowercasing.
func parseChoices(flags []string) []model.Choice {
	choices := make([]model.Choice, 0, len(flags))
	for _, f := range flags {
		if id, label, ok := strings.Cut(f, ":"); ok {
			choices = append(choices, model.Choice{ID: id, Label: label})
		} else {
			choices = append(choices, model.Choice{
				ID:    strings.ReplaceAll(strings.ToLower(f), " ", "-"),
				Label: f,
			})
		}
	}
	return choices
}

var elementAddCmd = &cobra.Command{
	Use:   "add <board-id> <name>",
	Short: "Add an element to a board",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		boardID, name := args[0], args[1]

		elementType, _ := cmd.Flags().GetString("type")
		dataType, _ := cmd.Flags().GetString("data-type")
		order, _ := cmd.Flags().GetInt("order")
		readOnly, _ := cmd.Flags().GetBool("read-only")
		showInSummary, _ := cmd.Flags().GetBool("summary")
		multiline, _ := cmd.Flags().GetBool("multiline")
		choiceFlags, _ := cmd.Flags().GetStringArray("choice")
		optionsJSON, _ := cmd.Flags().GetString("options")
		showWhen, _ := cmd.Flags().GetString("show-when")

		req := &client.CreateElementRequest{
			Name:          name,
			ElementType:   model.ElementType(elementType),
			DataType:      model.DataType(dataType),
			DisplayOrder:  order,
			ReadOnly:      readOnly,
			ShowInSummary: showInSummary,
		}
		req.Options.Multiline = multiline
		req.Options.Choices = parseChoices(choiceFlags)

		// Buttons and menus carry their actions in the options JSON.
		if optionsJSON != "" {
			if err := json.Unmarshal([]byte(optionsJSON), &req.Options); err != nil {
				return fmt.Errorf("parsing --options: %w", err)
			}
		}

		if showWhen != "" {
			cond, err := parseShowCondition(showWhen)
			if err != nil {
				return err
			}
			req.ShowCondition = cond
		}

		element, err := cwClient.CreateElement(context.Background(), boardID, req)
		if err != nil {
			return fmt.Errorf("creating element: %w", err)
		}
		if jsonOutput {
			printJSON(element)
		} else {
			printElementTable(element)
		}
		return nil
	},
}

var elementListCmd = &cobra.Command{
	Use:   "list <board-id>",
	Short: "List a board's elements",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		schema, err := cwClient.ListElements(context.Background(), args[0])
		if err != nil {
			return fmt.Errorf("listing elements: %w", err)
		}
		if jsonOutput {
			printJSON(schema)
		} else {
			printElementListTable(schema)
		}
		return nil
	},
}

var elementShowCmd = &cobra.Command{
	Use:   "show <element-id>",
	Short: "Show an element",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		element, err := cwClient.GetElement(context.Background(), args[0])
		if err != nil {
			return fmt.Errorf("fetching element: %w", err)
		}
		if jsonOutput {
			printJSON(element)
		} else {
			printElementTable(element)
		}
		return nil
	},
}

var elementUpdateCmd = &cobra.Command{
	Use:   "update <element-id>",
	Short: "Update an element",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		req := &client.UpdateElementRequest{}

		if cmd.Flags().Changed("name") {
			req.Name, _ = cmd.Flags().GetString("name")
		}
		if cmd.Flags().Changed("order") {
			order, _ := cmd.Flags().GetInt("order")
			req.DisplayOrder = &order
		}
		if cmd.Flags().Changed("read-only") {
			readOnly, _ := cmd.Flags().GetBool("read-only")
			req.ReadOnly = &readOnly
		}
		if cmd.Flags().Changed("summary") {
			showInSummary, _ := cmd.Flags().GetBool("summary")
			req.ShowInSummary = &showInSummary
		}
		if cmd.Flags().Changed("options") {
			optionsJSON, _ := cmd.Flags().GetString("options")
			var opts model.ElementOptions
			if err := json.Unmarshal([]byte(optionsJSON), &opts); err != nil {
				return fmt.Errorf("parsing --options: %w", err)
			}
			req.Options = &opts
		}
		if cmd.Flags().Changed("show-when") {
			showWhen, _ := cmd.Flags().GetString("show-when")
			cond, err := parseShowCondition(showWhen)
			if err != nil {
				return err
			}
			req.ShowCondition = cond
		}

		element, err := cwClient.UpdateElement(context.Background(), args[0], req)
		if err != nil {
			return fmt.Errorf("updating element: %w", err)
		}
		if jsonOutput {
			printJSON(element)
		} else {
			printElementTable(element)
		}
		return nil
	},
}

var elementDeleteCmd = &cobra.Command{
	Use:   "delete <element-id>",
	Short: "Delete an element",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cwClient.DeleteElement(context.Background(), args[0]); err != nil {
			return fmt.Errorf("deleting element: %w", err)
		}
		fmt.Printf("element %s deleted\n", args[0])
		return nil
	},
}

func init() {
	elementAddCmd.Flags().StringP("type", "t", "field", "element type (field, button, button_menu)")
	elementAddCmd.Flags().String("data-type", "text", "field data type (text, number, date, datetime, choice)")
	elementAddCmd.Flags().Int("order", 0, "display order")
	elementAddCmd.Flags().Bool("read-only", false, "reject direct edits to this field")
	elementAddCmd.Flags().Bool("summary", false, "show this field on card summaries")
	elementAddCmd.Flags().Bool("multiline", false, "render as a multiline text box")
	elementAddCmd.Flags().StringArray("choice", nil, "choice option (id:label, repeatable)")
	elementAddCmd.Flags().String("options", "", "element options as JSON (actions, menu items)")
	elementAddCmd.Flags().String("show-when", "", "show condition (field:op[:value])")

	elementUpdateCmd.Flags().String("name", "", "new element name")
	elementUpdateCmd.Flags().Int("order", 0, "new display order")
	elementUpdateCmd.Flags().Bool("read-only", false, "reject direct edits to this field")
	elementUpdateCmd.Flags().Bool("summary", false, "show this field on card summaries")
	elementUpdateCmd.Flags().String("options", "", "replacement options as JSON")
	elementUpdateCmd.Flags().String("show-when", "", "replacement show condition (field:op[:value])")

	elementCmd.AddCommand(elementAddCmd)
	elementCmd.AddCommand(elementListCmd)
	elementCmd.AddCommand(elementShowCmd)
	elementCmd.AddCommand(elementUpdateCmd)
	elementCmd.AddCommand(elementDeleteCmd)
}
