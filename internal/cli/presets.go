package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/polaroid/pkg/layout"
	"github.com/matzehuels/polaroid/pkg/photo"
)

// presetsCommand creates the "presets" command.
func (c *CLI) presetsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "presets",
		Short: "List layout and filter presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println(StyleTitle.Render("Layouts"))
			printTable([]string{"Name", "Mode", "Card", "Per page", "Description"}, layoutRows(c.Config.Preset))
			printNewline()
			fmt.Println(StyleTitle.Render("Filters"))
			printTable([]string{"Name", "CSS"}, filterRows())
			return nil
		},
	}
}

// layoutRows describes every layout preset. The current default is marked.
func layoutRows(current string) [][]string {
	var rows [][]string
	for _, p := range layout.Presets() {
		name := p.Name
		if name == current {
			name += " *"
		}
		rows = append(rows, []string{
			name,
			p.Config.Mode().String(),
			fmt.Sprintf("%gx%gcm", p.Config.ItemWidth, p.Config.ItemHeight),
			perPage(p.Config),
			p.Description,
		})
	}
	return rows
}

// perPage reports how many cards fit on one page.
func perPage(cfg layout.Config) string {
	if cfg.Mode() == layout.ModeGrid {
		return strconv.Itoa(cfg.ItemsPerPage)
	}
	placements, err := layout.Layout(1000, cfg)
	if err != nil || len(placements) == 0 {
		return "-"
	}
	return strconv.Itoa(len(layout.Paginate(placements)[0]))
}

func filterRows() [][]string {
	rows := make([][]string, 0, len(photo.Presets))
	for _, p := range photo.Presets {
		rows = append(rows, []string{p.Name, p.CSS})
	}
	return rows
}
