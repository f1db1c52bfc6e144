package pipeline

import (
	"encoding/json"

	"github.com/matzehuels/polaroid/pkg/layout"
)

// =============================================================================
// Layout Generation
// =============================================================================

// ResolvePreset looks up the first non-empty preset name, typically the
// explicit choice, then the album's preset, then the user's default. With no
// name at all it returns [layout.DefaultPreset].
func ResolvePreset(names ...string) (layout.Preset, error) {
	for _, name := range names {
		if name != "" {
			return layout.LookupPreset(name)
		}
	}
	return layout.LookupPreset("")
}

// GenerateLayout computes placements for n cards with the given preset.
func GenerateLayout(n int, preset layout.Preset) ([]layout.Placement, error) {
	return layout.Layout(n, preset.Config)
}

// LayoutFile is the serialized form of a computed layout.
type LayoutFile struct {
	Preset     string             `json:"preset"`
	Mode       string             `json:"mode"`
	Config     layout.Config      `json:"config"`
	Pages      int                `json:"pages"`
	Placements []layout.Placement `json:"placements"`
}

// MarshalLayout serializes placements computed with preset as indented JSON.
func MarshalLayout(preset layout.Preset, placements []layout.Placement) ([]byte, error) {
	if placements == nil {
		placements = []layout.Placement{}
	}
	return json.MarshalIndent(LayoutFile{
		Preset:     preset.Name,
		Mode:       preset.Config.Mode().String(),
		Config:     preset.Config,
		Pages:      layout.PageCount(placements),
		Placements: placements,
	}, "", "  ")
}
