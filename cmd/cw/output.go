package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/alfredjeanlab/cardwall/internal/eval"
	"github.com/alfredjeanlab/cardwall/internal/model"
)

func printJSON(v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error marshaling JSON: %v\n", err)
		return
	}
	fmt.Println(string(data))
}

func printBoardTable(b *model.Board) {
	fmt.Printf("ID:          %s\n", b.ID)
	fmt.Printf("Name:        %s\n", b.Name)
	if !b.CreatedAt.IsZero() {
		fmt.Printf("Created At:  %s\n", b.CreatedAt.Format("2006-01-02 15:04:05"))
	}
	if !b.UpdatedAt.IsZero() {
		fmt.Printf("Updated At:  %s\n", b.UpdatedAt.Format("2006-01-02 15:04:05"))
	}
}

func printBoardListTable(boards []*model.Board) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tCREATED")
	for _, b := range boards {
		fmt.Fprintf(w, "%s\t%s\t%s\n", b.ID, b.Name, b.CreatedAt.Format("2006-01-02"))
	}
	w.Flush()
	fmt.Printf("\n%d boards\n", len(boards))
}

// fieldElements returns the schema's field elements in display order.
// Buttons and button menus carry no stored value and are skipped.
func fieldElements(schema model.Schema) []*model.Element {
	var fields []*model.Element
	for _, e := range schema {
		if e.ElementType == model.ElementField {
			fields = append(fields, e)
		}
	}
	sort.SliceStable(fields, func(i, j int) bool {
		return fields[i].DisplayOrder < fields[j].DisplayOrder
	})
	return fields
}

// formatField renders one card value for terminal output. Unknown data
// types render an explicit marker rather than a guess.
func formatField(values model.FieldValues, field *model.Element) string {
	disp, ok := eval.DisplayField(values, field)
	if !ok {
		return "<unknown type>"
	}
	return disp.Formatted
}

func printCardTable(card *model.Card, schema model.Schema) {
	fmt.Printf("ID:          %s\n", card.ID)
	fmt.Printf("Board:       %s\n", card.BoardID)
	for _, field := range fieldElements(schema) {
		label := field.Name + ":"
		if len(label) < 12 {
			label += strings.Repeat(" ", 12-len(label))
		}
		fmt.Printf("%s %s\n", label, formatField(card.FieldValues, field))
	}
	if !card.CreatedAt.IsZero() {
		fmt.Printf("Created At:  %s\n", card.CreatedAt.Format("2006-01-02 15:04:05"))
	}
	if !card.UpdatedAt.IsZero() {
		fmt.Printf("Updated At:  %s\n", card.UpdatedAt.Format("2006-01-02 15:04:05"))
	}
}

func printCardListTable(cards []*model.Card, total int, schema model.Schema) {
	fields := fieldElements(schema)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	headers := []string{"ID"}
	for _, f := range fields {
		headers = append(headers, strings.ToUpper(f.Name))
	}
	fmt.Fprintln(w, strings.Join(headers, "\t"))

	for _, c := range cards {
		row := []string{c.ID}
		for _, f := range fields {
			v := formatField(c.FieldValues, f)
			if len(v) > 40 {
				v = v[:37] + "..."
			}
			row = append(row, v)
		}
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	w.Flush()
	fmt.Printf("\n%d cards (%d total)\n", len(cards), total)
}

func printElementTable(e *model.Element) {
	fmt.Printf("ID:          %s\n", e.ID)
	fmt.Printf("Board:       %s\n", e.BoardID)
	fmt.Printf("Name:        %s\n", e.Name)
	fmt.Printf("Type:        %s\n", e.ElementType)
	if e.ElementType == model.ElementField {
		fmt.Printf("Data Type:   %s\n", e.DataType)
	}
	fmt.Printf("Order:       %d\n", e.DisplayOrder)
	if e.ReadOnly {
		fmt.Printf("Read Only:   true\n")
	}
	if e.ShowInSummary {
		fmt.Printf("In Summary:  true\n")
	}
	if len(e.Options.Choices) > 0 {
		labels := make([]string, len(e.Options.Choices))
		for i, c := range e.Options.Choices {
			labels[i] = c.Label
		}
		fmt.Printf("Choices:     %s\n", strings.Join(labels, ", "))
	}
	if len(e.Options.Actions) > 0 {
		fmt.Printf("Actions:     %d\n", len(e.Options.Actions))
	}
	if len(e.Options.Items) > 0 {
		names := make([]string, len(e.Options.Items))
		for i, it := range e.Options.Items {
			names[i] = it.Name
		}
		fmt.Printf("Items:       %s\n", strings.Join(names, ", "))
	}
	if e.ShowCondition != nil {
		fmt.Printf("Show When:   %s %s\n", e.ShowCondition.Field, e.ShowCondition.Query)
	}
}

func printElementListTable(schema model.Schema) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tTYPE\tDATA TYPE\tORDER\tFLAGS")
	for _, e := range schema {
		var flags []string
		if e.ReadOnly {
			flags = append(flags, "read-only")
		}
		if e.ShowInSummary {
			flags = append(flags, "summary")
		}
		if e.ShowCondition != nil {
			flags = append(flags, "conditional")
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\n",
			e.ID, e.Name, e.ElementType, e.DataType, e.DisplayOrder, strings.Join(flags, ","))
	}
	w.Flush()
	fmt.Printf("\n%d elements\n", len(schema))
}

// describeColumn renders a column's specs as short "what it does" strings.
func describeColumn(c *model.Column) string {
	var parts []string
	if len(c.Conditions) > 0 {
		parts = append(parts, fmt.Sprintf("filter(%d)", len(c.Conditions)))
	}
	if c.Sort != nil {
		parts = append(parts, fmt.Sprintf("sort %s %s", c.Sort.Field, c.Sort.Direction))
	}
	if c.Grouping != nil {
		parts = append(parts, fmt.Sprintf("group %s %s", c.Grouping.Field, c.Grouping.Direction))
	}
	if c.Summary != nil {
		if c.Summary.Field != "" {
			parts = append(parts, fmt.Sprintf("%s(%s)", c.Summary.Function, c.Summary.Field))
		} else {
			parts = append(parts, string(c.Summary.Function))
		}
	}
	return strings.Join(parts, ", ")
}

func printColumnTable(c *model.Column) {
	fmt.Printf("ID:          %s\n", c.ID)
	fmt.Printf("Board:       %s\n", c.BoardID)
	fmt.Printf("Name:        %s\n", c.Name)
	fmt.Printf("Order:       %d\n", c.DisplayOrder)
	if desc := describeColumn(c); desc != "" {
		fmt.Printf("Specs:       %s\n", desc)
	}
}

func printColumnListTable(columns []*model.Column) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tORDER\tSPECS")
	for _, c := range columns {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", c.ID, c.Name, c.DisplayOrder, describeColumn(c))
	}
	w.Flush()
	fmt.Printf("\n%d columns\n", len(columns))
}
