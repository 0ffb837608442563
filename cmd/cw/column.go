package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/alfredjeanlab/cardwall/internal/client"
	"github.com/alfredjeanlab/cardwall/internal/model"
	"github.com/spf13/cobra"
)

var columnCmd = &cobra.Command{
	Use:     "column",
	Short:   "Manage board columns (saved views)",
	GroupID: "boards",
}

// parseSortSpec parses "field" or "field:desc" into a sort spec.
func parseSortSpec(s string) (*model.SortSpec, error) {
	field, dir, _ := strings.Cut(s, ":")
	if field == "" {
		return nil, fmt.Errorf("invalid sort %q: expected field[:asc|desc]", s)
	}
	spec := &model.SortSpec{Field: field, Direction: model.Ascending}
	if dir != "" {
		spec.Direction = model.Direction(dir)
		if !spec.Direction.IsValid() {
			return nil, fmt.Errorf("invalid sort direction %q", dir)
		}
	}
	return spec, nil
}

// parseGroupSpec parses "field" or "field:desc" into a grouping spec.
func parseGroupSpec(s string) (*model.GroupSpec, error) {
	sort, err := parseSortSpec(s)
	if err != nil {
		return nil, err
	}
	return &model.GroupSpec{Field: sort.Field, Direction: sort.Direction}, nil
}

// parseSummarySpec parses "count", "sum:field", or "average:field".
func parseSummarySpec(s string) (*model.SummarySpec, error) {
	fn, field, _ := strings.Cut(s, ":")
	spec := &model.SummarySpec{Function: model.SummaryFunction(fn), Field: field}
	switch spec.Function {
	case model.SummaryCount:
		if field != "" {
			return nil, fmt.Errorf("count takes no field")
		}
	case model.SummarySum, model.SummaryAverage:
		if field == "" {
			return nil, fmt.Errorf("%s requires a field (%s:field)", fn, fn)
		}
	default:
		return nil, fmt.Errorf("invalid summary function %q", fn)
	}
	return spec, nil
}

// parseConditions converts --filter flags into column conditions.
func parseConditions(flags []string) ([]model.Condition, error) {
	conditions := make([]model.Condition, 0, len(flags))
	for _, f := range flags {
		cond, err := parseShowCondition(f)
		if err != nil {
			return nil, err
		}
		conditions = append(conditions, *cond)
	}
	return conditions, nil
}

var columnAddCmd = &cobra.Command{
	Use:   "add <board-id> <name>",
	Short: "Add a column to a board",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		boardID, name := args[0], args[1]

		order, _ := cmd.Flags().GetInt("order")
		filterFlags, _ := cmd.Flags().GetStringArray("filter")
		sortFlag, _ := cmd.Flags().GetString("sort")
		groupFlag, _ := cmd.Flags().GetString("group-by")
		summaryFlag, _ := cmd.Flags().GetString("summary")

		req := &client.CreateColumnRequest{Name: name, DisplayOrder: order}

		var err error
		if req.Conditions, err = parseConditions(filterFlags); err != nil {
			return err
		}
		if sortFlag != "" {
			if req.Sort, err = parseSortSpec(sortFlag); err != nil {
				return err
			}
		}
		if groupFlag != "" {
			if req.Grouping, err = parseGroupSpec(groupFlag); err != nil {
				return err
			}
		}
		if summaryFlag != "" {
			if req.Summary, err = parseSummarySpec(summaryFlag); err != nil {
				return err
			}
		}

		column, err := cwClient.CreateColumn(context.Background(), boardID, req)
		if err != nil {
			return fmt.Errorf("creating column: %w", err)
		}
		if jsonOutput {
			printJSON(column)
		} else {
			printColumnTable(column)
		}
		return nil
	},
}

var columnListCmd = &cobra.Command{
	Use:   "list <board-id>",
	Short: "List a board's columns",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		columns, err := cwClient.ListColumns(context.Background(), args[0])
		if err != nil {
			return fmt.Errorf("listing columns: %w", err)
		}
		if jsonOutput {
			printJSON(columns)
		} else {
			printColumnListTable(columns)
		}
		return nil
	},
}

var columnShowCmd = &cobra.Command{
	Use:   "show <column-id>",
	Short: "Show a column",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		column, err := cwClient.GetColumn(context.Background(), args[0])
		if err != nil {
			return fmt.Errorf("fetching column: %w", err)
		}
		if jsonOutput {
			printJSON(column)
		} else {
			printColumnTable(column)
		}
		return nil
	},
}

var columnUpdateCmd = &cobra.Command{
	Use:   "update <column-id>",
	Short: "Update a column",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		req := &client.UpdateColumnRequest{}

		if cmd.Flags().Changed("name") {
			req.Name, _ = cmd.Flags().GetString("name")
		}
		if cmd.Flags().Changed("order") {
			order, _ := cmd.Flags().GetInt("order")
			req.DisplayOrder = &order
		}
		if cmd.Flags().Changed("filter") {
			filterFlags, _ := cmd.Flags().GetStringArray("filter")
			conditions, err := parseConditions(filterFlags)
			if err != nil {
				return err
			}
			req.Conditions = conditions
		}
		if cmd.Flags().Changed("sort") {
			sortFlag, _ := cmd.Flags().GetString("sort")
			if sortFlag != "" {
				sort, err := parseSortSpec(sortFlag)
				if err != nil {
					return err
				}
				req.Sort = sort
			}
		}
		if cmd.Flags().Changed("group-by") {
			groupFlag, _ := cmd.Flags().GetString("group-by")
			if groupFlag != "" {
				group, err := parseGroupSpec(groupFlag)
				if err != nil {
					return err
				}
				req.Grouping = group
			}
		}
		if cmd.Flags().Changed("summary") {
			summaryFlag, _ := cmd.Flags().GetString("summary")
			if summaryFlag != "" {
				summary, err := parseSummarySpec(summaryFlag)
				if err != nil {
					return err
				}
				req.Summary = summary
			}
		}

		column, err := cwClient.UpdateColumn(context.Background(), args[0], req)
		if err != nil {
			return fmt.Errorf("updating column: %w", err)
		}
		if jsonOutput {
			printJSON(column)
		} else {
			printColumnTable(column)
		}
		return nil
	},
}

var columnDeleteCmd = &cobra.Command{
	Use:   "delete <column-id>",
	Short: "Delete a column",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cwClient.DeleteColumn(context.Background(), args[0]); err != nil {
			return fmt.Errorf("deleting column: %w", err)
		}
		fmt.Printf("column %s deleted\n", args[0])
		return nil
	},
}

func init() {
	columnAddCmd.Flags().Int("order", 0, "display order")
	columnAddCmd.Flags().StringArrayP("filter", "F", nil, "inclusion condition (field:op[:value], repeatable)")
	columnAddCmd.Flags().String("sort", "", "sort spec (field[:asc|desc])")
	columnAddCmd.Flags().String("group-by", "", "grouping spec (field[:asc|desc])")
	columnAddCmd.Flags().String("summary", "", "summary spec (count, sum:field, average:field)")

	columnUpdateCmd.Flags().String("name", "", "new column name")
	columnUpdateCmd.Flags().Int("order", 0, "new display order")
	columnUpdateCmd.Flags().StringArrayP("filter", "F", nil, "replacement conditions (field:op[:value], repeatable)")
	columnUpdateCmd.Flags().String("sort", "", "replacement sort spec (field[:asc|desc])")
	columnUpdateCmd.Flags().String("group-by", "", "replacement grouping spec (field[:asc|desc])")
	columnUpdateCmd.Flags().String("summary", "", "replacement summary spec")

	columnCmd.AddCommand(columnAddCmd)
	columnCmd.AddCommand(columnListCmd)
	columnCmd.AddCommand(columnShowCmd)
	columnCmd.AddCommand(columnUpdateCmd)
	columnCmd.AddCommand(columnDeleteCmd)
}
