package layout

import (
	"sort"
	"strings"

	"github.com/matzehuels/polaroid/pkg/errors"
)

// A4 page size in centimetres.
const (
	A4Width  = 21.0
	A4Height = 29.7
)

// Preset is a named page layout.
type Preset struct {
	Name        string
	Description string
	Config      Config
}

// Built-in presets.
var (
	Grid9 = Preset{
		Name:        "grid9",
		Description: "nine 6x8cm cards, 3 columns, A4",
		Config: Config{
			PageWidth: A4Width, PageHeight: A4Height,
			ItemWidth: 6, ItemHeight: 8,
			GapX: 0.5, GapY: 0.5, Margin: 1,
			Columns: 3, ItemsPerPage: 9,
		},
	}
	Grid6 = Preset{
		Name:        "grid6",
		Description: "six 6.5x8.7cm cards, 3 columns, A4",
		Config: Config{
			PageWidth: A4Width, PageHeight: A4Height,
			ItemWidth: 6.5, ItemHeight: 8.7,
			GapX: 0.5, GapY: 0.5, Margin: 1,
			Columns: 3, ItemsPerPage: 6,
		},
	}
	Flow = Preset{
		Name:        "flow",
		Description: "6x8cm cards packed by fit, 1cm margin, A4",
		Config: Config{
			PageWidth: A4Width, PageHeight: A4Height,
			ItemWidth: 6, ItemHeight: 8,
			GapX: 0.5, GapY: 0.5, Margin: 1,
		},
	}
)

// DefaultPreset is used when an album does not name one.
const DefaultPreset = "grid9"

var presets = map[string]Preset{
	Grid9.Name: Grid9,
	Grid6.Name: Grid6,
	Flow.Name:  Flow,
}

// LookupPreset returns the preset with the given name (case-insensitive).
// An empty name selects DefaultPreset.
func LookupPreset(name string) (Preset, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		name = DefaultPreset
	}
	p, ok := presets[name]
	if !ok {
		return Preset{}, errors.New(errors.ErrCodeInvalidPreset,
			"unknown preset %q (available: %s)", name, strings.Join(PresetNames(), ", "))
	}
	return p, nil
}

// PresetNames returns the sorted names of all built-in presets.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Presets returns all built-in presets sorted by name.
func Presets() []Preset {
	names := PresetNames()
	out := make([]Preset, len(names))
	for i, name := range names {
		out[i] = presets[name]
	}
	return out
}
