package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/polaroid/pkg/pipeline"
)

// exportOpts holds the command-line flags for the export command that are
// not pipeline options.
type exportOpts struct {
	output  string // output file or base path
	formats string // comma-separated formats
	noCache bool   // disable the card and document cache
}

// exportCommand creates the export command for rendering print pages.
func (c *CLI) exportCommand() *cobra.Command {
	var eo exportOpts
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "export <album>",
		Short: "Render an album as print-ready PDF and/or PNG pages",
		Long: `Render an album as print-ready PDF and/or PNG pages.

Cards are rasterized in parallel and cached by photo content and settings,
so re-exporting after a small edit only re-renders what changed. PDF exports
are a single file; PNG exports write one file per page (<out>-1.png, ...).

Settings not given as flags come from the config file and POLAROID_*
environment variables.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Album = args[0]
			opts.Formats = pipeline.ParseFormats(eo.formats)
			c.applyConfig(cmd, &opts)
			return c.runExport(cmd.Context(), opts, eo)
		},
	}

	cmd.Flags().StringVarP(&eo.output, "output", "o", "", "output file or base path (default: album path without extension)")
	cmd.Flags().StringVarP(&eo.formats, "format", "f", "", "output format(s): pdf (default), png (comma-separated)")
	cmd.Flags().BoolVar(&eo.noCache, "no-cache", false, "disable caching")

	cmd.Flags().StringVarP(&opts.Preset, "preset", "p", "", "layout preset (default: the album's, then config)")
	cmd.Flags().IntVar(&opts.DPI, "dpi", 0, "card and sheet resolution (default: config, 300)")
	cmd.Flags().IntVarP(&opts.Workers, "workers", "w", 0, "parallel card renderers (default: config, CPU count)")
	cmd.Flags().IntVar(&opts.JPEGQuality, "jpeg-quality", 0, "JPEG quality of cards embedded in PDFs (default: config, 92)")
	cmd.Flags().BoolVar(&opts.CropMarks, "crop-marks", false, "draw crop marks around cards (pdf)")
	cmd.Flags().BoolVar(&opts.PageNumbers, "page-numbers", false, "print page numbers (png)")
	cmd.Flags().StringVar(&opts.Title, "title", "", "document title (default: album title)")
	cmd.Flags().StringVar(&opts.Author, "author", "", "document author (pdf)")
	cmd.Flags().StringVar(&opts.FontPath, "font", "", "caption font file, TTF or OTF (default: config, built-in)")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "re-render even if the documents are cached")

	return cmd
}

// applyConfig fills options that were not set by flags from the config. The
// configured preset only applies to albums that do not name one.
func (c *CLI) applyConfig(cmd *cobra.Command, opts *pipeline.Options) {
	flags := cmd.Flags()
	opts.DefaultPreset = c.Config.Preset
	if !flags.Changed("dpi") {
		opts.DPI = c.Config.DPI
	}
	if !flags.Changed("workers") {
		opts.Workers = c.Config.Workers
	}
	if !flags.Changed("jpeg-quality") {
		opts.JPEGQuality = c.Config.JPEGQuality
	}
	if !flags.Changed("font") {
		opts.FontPath = c.Config.FontPath
	}
	opts.Logger = c.Logger
}

// runExport renders the album and writes the documents.
func (c *CLI) runExport(ctx context.Context, opts pipeline.Options, eo exportOpts) error {
	runner, err := c.newRunner(ctx, eo.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	prog := newProgress(loggerFromContext(ctx))
	spinner := newSpinnerWithContext(ctx, "Rendering cards...")
	opts.Progress = func(done, total int) {
		spinner.SetMessage("Rendering cards %d/%d...", done, total)
	}
	spinner.Start()

	result, err := runner.Execute(ctx, opts)
	if err != nil {
		if errors.Is(err, context.Canceled) || ctx.Err() != nil {
			spinner.Stop()
			return context.Canceled
		}
		spinner.StopWithError("Export failed")
		return err
	}
	spinner.Stop()

	paths, err := writeArtifacts(outputBase(opts.Album, eo.output), opts.Formats, result.Artifacts)
	if err != nil {
		return err
	}

	prog.done(fmt.Sprintf("Exported %s as %s", plural(result.Stats.Photos, "card"), strings.Join(opts.Formats, ", ")))
	printSuccess("Export complete")
	for _, p := range paths {
		printFile(p)
	}
	printStats(result.Stats.Photos, result.Stats.Pages, result.CacheInfo.ArtifactHit)
	c.Logger.Debug("export timings",
		"load", result.Stats.LoadTime,
		"layout", result.Stats.LayoutTime,
		"render", result.Stats.RenderTime,
		"compose", result.Stats.ComposeTime,
	)
	return nil
}
