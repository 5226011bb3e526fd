package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/schemadraw/schemadraw/pkg/diagram"
)

// inspectCommand creates the inspect command for examining diagram files.
func (c *CLI) inspectCommand() *cobra.Command {
	var from string

	cmd := &cobra.Command{
		Use:   "inspect <file>",
		Short: "Show the structure of a diagram or dialect file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(args[0], from)
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "source dialect for text input (auto-detect if empty)")

	return cmd
}

func runInspect(input, from string) error {
	d, inconsistencies, err := loadDiagram(input, from)
	if err != nil {
		return err
	}

	fmt.Println(StyleTitle.Render("Diagram"))
	printKeyValue("Type", string(d.Type))
	printKeyValue("ID", d.ID)
	printStats(len(d.Shapes), len(d.Connectors), len(inconsistencies))
	printNewline()

	byType := map[diagram.ShapeType]int{}
	for _, s := range d.Shapes {
		byType[s.Type]++
	}
	types := make([]string, 0, len(byType))
	for t := range byType {
		types = append(types, string(t))
	}
	sort.Strings(types)
	for _, t := range types {
		printKeyValue(t, StyleNumber.Render(fmt.Sprintf("%d", byType[diagram.ShapeType(t)])))
	}

	if len(inconsistencies) > 0 {
		printNewline()
		printWarning("%d inconsistencies", len(inconsistencies))
		for _, msg := range inconsistencies {
			printDetail("%s", msg)
		}
	}

	printNewline()
	printNextStep("Render it", fmt.Sprintf("schemadraw render %s", input))

	return nil
}
