package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/polaroid/pkg/layout"
	"github.com/matzehuels/polaroid/pkg/pipeline"
)

// layoutCommand creates the layout command for computing card placements.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output string
		preset string
	)

	cmd := &cobra.Command{
		Use:   "layout <album>",
		Short: "Compute card placements without rendering",
		Long: `Compute card placements without rendering.

The layout command runs the page layout engine for an album and writes the
placements (page, x, y in centimetres, album index) as JSON. Use "-o -" to
print to stdout. Nothing is rasterized, so this is instant even for large
albums.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLayout(cmd.Context(), args[0], preset, output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <album>.layout.json)")
	cmd.Flags().StringVarP(&preset, "preset", "p", "", "layout preset (default: the album's)")

	return cmd
}

// runLayout loads the album, computes the layout, and writes output.
func (c *CLI) runLayout(ctx context.Context, album, presetName, output string) error {
	runner, err := c.newRunner(ctx, true)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	preset, placements, err := runner.Layout(ctx, album, presetName, c.Config.Preset)
	if err != nil {
		return err
	}
	data, err := pipeline.MarshalLayout(preset, placements)
	if err != nil {
		return fmt.Errorf("encode layout: %w", err)
	}

	if output == "-" {
		_, err := os.Stdout.Write(append(data, '\n'))
		return err
	}
	if output == "" {
		output = outputBase(album, "") + ".layout.json"
	}
	if err := os.WriteFile(output, data, 0o644); err != nil {
		return fmt.Errorf("write output %s: %w", output, err)
	}

	c.Logger.Debug("wrote layout", "preset", preset.Name, "path", output)
	printSuccess("Layout complete")
	printFile(output)
	printStats(len(placements), layout.PageCount(placements), false)
	printNewline()
	printNextStep("Export", appName+" export "+album)

	return nil
}
