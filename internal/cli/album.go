package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/polaroid/pkg/errors"
	"github.com/matzehuels/polaroid/pkg/layout"
	"github.com/matzehuels/polaroid/pkg/manifest"
	"github.com/matzehuels/polaroid/pkg/photo"
)

// =============================================================================
// Album Commands
// =============================================================================

// newCommand creates the "new" command.
func (c *CLI) newCommand() *cobra.Command {
	var (
		title  string
		preset string
		filter string
		force  bool
	)

	cmd := &cobra.Command{
		Use:   "new <album.toml|album.yaml> [images or directories...]",
		Short: "Create an album manifest",
		Long: `Create an album manifest from image files.

Directories are scanned (not recursively) for supported images, which are
added in name order. The manifest format follows the file extension.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			if _, err := manifest.FormatOf(path); err != nil {
				return err
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}
			if _, err := layout.LookupPreset(preset); err != nil {
				return err
			}

			if title == "" {
				title = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
			}
			album := photo.NewAlbum(title)
			if filter != "" {
				if err := album.ApplyFilterToAll(filter); err != nil {
					return err
				}
			}
			sources, err := collectImages(args[1:])
			if err != nil {
				return err
			}
			if _, err := album.Add(sources...); err != nil {
				return err
			}

			if preset == "" {
				preset = c.Config.Preset
			}
			if err := manifest.Write(path, album, manifest.Meta{Preset: preset}); err != nil {
				return err
			}

			printSuccess("Created album %s", StyleHighlight.Render(title))
			printFile(path)
			printDetail("%s · preset %s", plural(album.Len(), "photo"), preset)
			printNewline()
			printNextStep("Export", appName+" export "+path)
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "album title (default: file name)")
	cmd.Flags().StringVar(&preset, "preset", "", "layout preset (default: from config)")
	cmd.Flags().StringVar(&filter, "filter", "", "filter for all photos: preset name or CSS filter list")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing manifest")

	return cmd
}

// addCommand creates the "add" command.
func (c *CLI) addCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "add <album> <images or directories...>",
		Short: "Add photos to an album",
		Long:  `Add photos to the end of an album. New photos use the album's active filter.`,
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.editAlbum(args[0], func(a *photo.Album) (string, error) {
				sources, err := collectImages(args[1:])
				if err != nil {
					return "", err
				}
				added, err := a.Add(sources...)
				if err != nil {
					return "", err
				}
				return fmt.Sprintf("Added %s", plural(len(added), "photo")), nil
			})
		},
	}
}

// removeCommand creates the "remove" command.
func (c *CLI) removeCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "remove <album> <id>",
		Aliases: []string{"rm"},
		Short:   "Remove a photo from an album",
		Long:    `Remove a photo by id. Any unique prefix of the id is accepted.`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.editAlbum(args[0], func(a *photo.Album) (string, error) {
				p, err := a.Get(args[1])
				if err != nil {
					return "", err
				}
				if err := a.Remove(p.ID); err != nil {
					return "", err
				}
				return fmt.Sprintf("Removed %s", filepath.Base(p.Source)), nil
			})
		},
	}
}

// captionCommand creates the "caption" command.
func (c *CLI) captionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "caption <album> <id> <text>",
		Short: "Set the caption of a photo",
		Long:  `Set the caption printed under a photo. An empty text clears it.`,
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.editAlbum(args[0], func(a *photo.Album) (string, error) {
				if err := a.SetCaption(args[1], args[2]); err != nil {
					return "", err
				}
				if strings.TrimSpace(args[2]) == "" {
					return "Cleared caption", nil
				}
				return fmt.Sprintf("Captioned %q", photo.NormalizeCaption(args[2])), nil
			})
		},
	}
}

// adjustCommand creates the "adjust" command.
func (c *CLI) adjustCommand() *cobra.Command {
	var (
		scale, x, y    float64
		nudgeX, nudgeY float64
	)

	cmd := &cobra.Command{
		Use:   "adjust <album> <id>",
		Short: "Zoom and position a photo inside its card",
		Long: `Zoom and position a photo inside its card.

--scale zooms about the window centre (0.1 to 4). --x and --y set the
object position in percent (0 shows the left/top edge, 100 the right/bottom
edge). --nudge-x and --nudge-y move the photo as if dragged by that many
pixels. Values outside the valid ranges are clamped.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var adj photo.Adjustment
			if cmd.Flags().Changed("scale") {
				adj.Scale = &scale
			}
			if cmd.Flags().Changed("x") {
				adj.PosX = &x
			}
			if cmd.Flags().Changed("y") {
				adj.PosY = &y
			}
			nudge := cmd.Flags().Changed("nudge-x") || cmd.Flags().Changed("nudge-y")
			if adj == (photo.Adjustment{}) && !nudge {
				return errors.New(errors.ErrCodeInvalidInput, "nothing to adjust: set --scale, --x, --y or --nudge-x/--nudge-y")
			}

			return c.editAlbum(args[0], func(a *photo.Album) (string, error) {
				if err := a.Adjust(args[1], adj); err != nil {
					return "", err
				}
				if nudge {
					if err := a.Nudge(args[1], nudgeX, nudgeY); err != nil {
						return "", err
					}
				}
				p, _ := a.Get(args[1])
				return fmt.Sprintf("Framing %s", formatFraming(p)), nil
			})
		},
	}

	cmd.Flags().Float64Var(&scale, "scale", photo.DefaultScale, "zoom factor")
	cmd.Flags().Float64Var(&x, "x", photo.DefaultPos, "horizontal position in percent")
	cmd.Flags().Float64Var(&y, "y", photo.DefaultPos, "vertical position in percent")
	cmd.Flags().Float64Var(&nudgeX, "nudge-x", 0, "horizontal drag in pixels")
	cmd.Flags().Float64Var(&nudgeY, "nudge-y", 0, "vertical drag in pixels")

	return cmd
}

// filterCommand creates the "filter" command.
func (c *CLI) filterCommand() *cobra.Command {
	var id string

	cmd := &cobra.Command{
		Use:   "filter <album> <name|css>",
		Short: "Apply a colour filter",
		Long: `Apply a colour filter to every photo, or to one photo with --photo.

The filter is a preset name (none, vintage, bw, warm, cool) or a CSS filter
list such as "sepia(0.5) contrast(1.1)". Applying to all photos also makes
it the filter for photos added later.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.editAlbum(args[0], func(a *photo.Album) (string, error) {
				if id != "" {
					if err := a.SetFilter(id, args[1]); err != nil {
						return "", err
					}
					p, _ := a.Get(id)
					return fmt.Sprintf("Filter %s on %s", photo.PresetName(p.Filter), filepath.Base(p.Source)), nil
				}
				if err := a.ApplyFilterToAll(args[1]); err != nil {
					return "", err
				}
				return fmt.Sprintf("Filter %s on %s", photo.PresetName(a.Filter), plural(a.Len(), "photo")), nil
			})
		},
	}

	cmd.Flags().StringVar(&id, "photo", "", "only filter the photo with this id")

	return cmd
}

// moveCommand creates the "move" command.
func (c *CLI) moveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "move <album> <id> <position>",
		Short: "Move a photo to another position (1-based)",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			pos, err := strconv.Atoi(args[2])
			if err != nil {
				return errors.New(errors.ErrCodeInvalidInput, "position must be a number, got %q", args[2])
			}
			return c.editAlbum(args[0], func(a *photo.Album) (string, error) {
				if err := a.Move(args[1], pos-1); err != nil {
					return "", err
				}
				return fmt.Sprintf("Moved to position %d", pos), nil
			})
		},
	}
}

// listCommand creates the "list" command.
func (c *CLI) listCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "list <album>",
		Aliases: []string{"ls"},
		Short:   "List the photos of an album",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			album, meta, err := manifest.Read(args[0])
			if err != nil {
				return err
			}
			preset, err := layout.LookupPreset(meta.Preset)
			if err != nil {
				return err
			}

			fmt.Println(StyleTitle.Render(album.Title))
			printDetail("%s · preset %s · filter %s", plural(album.Len(), "photo"), preset.Name, photo.PresetName(album.Filter))
			if album.Len() == 0 {
				return nil
			}
			printTable(photoHeaders, photoRows(album))
			return nil
		},
	}
}

// =============================================================================
// Helpers
// =============================================================================

// editAlbum reads the album at path, applies fn and writes it back. fn
// returns the success message.
func (c *CLI) editAlbum(path string, fn func(*photo.Album) (string, error)) error {
	album, meta, err := manifest.Read(path)
	if err != nil {
		return err
	}
	msg, err := fn(album)
	if err != nil {
		return err
	}
	if err := manifest.Write(path, album, meta); err != nil {
		return err
	}
	c.Logger.Debug("saved album", "path", path, "photos", album.Len())
	printSuccess("%s", msg)
	return nil
}

// collectImages expands directories into their image files and makes every
// path absolute so the manifest can store it relative to its own location.
func collectImages(args []string) ([]string, error) {
	var out []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "%s does not exist", arg)
			}
			return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "stat %s", arg)
		}
		if !info.IsDir() {
			abs, err := filepath.Abs(arg)
			if err != nil {
				return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "resolve %s", arg)
			}
			out = append(out, abs)
			continue
		}

		entries, err := os.ReadDir(arg)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "read directory %s", arg)
		}
		var names []string
		for _, e := range entries {
			if !e.IsDir() && errors.ValidateImageFilename(e.Name()) == nil {
				names = append(names, e.Name())
			}
		}
		sort.Strings(names)
		for _, name := range names {
			abs, err := filepath.Abs(filepath.Join(arg, name))
			if err != nil {
				return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "resolve %s", name)
			}
			out = append(out, abs)
		}
	}
	return out, nil
}

var photoHeaders = []string{"#", "ID", "Photo", "Caption", "Filter", "Framing"}

// shortIDLen is the id prefix shown in tables; any unique prefix is
// accepted by the commands.
const shortIDLen = 8

func photoRows(a *photo.Album) [][]string {
	rows := make([][]string, 0, a.Len())
	for i, p := range a.Photos {
		p = p.Normalized()
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			shortID(p.ID),
			filepath.Base(p.Source),
			p.Caption,
			photo.PresetName(p.Filter),
			formatFraming(p),
		})
	}
	return rows
}

func shortID(id string) string {
	if len(id) > shortIDLen {
		return id[:shortIDLen]
	}
	return id
}

func formatFraming(p photo.Photo) string {
	return fmt.Sprintf("%.2gx @ %.0f%%,%.0f%%", p.Scale, p.PosX, p.PosY)
}
