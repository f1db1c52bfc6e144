// Package manifest reads and writes album manifests.
//
// A manifest is a TOML or YAML file, chosen by extension, that lists the
// photos of an album in order together with their captions, filters and
// framing. Photo sources are stored relative to the manifest's directory
// when possible so that an album folder can be moved as a whole.
//
// Example (TOML):
//
//	title  = "Summer"
//	preset = "grid9"
//	filter = "none"
//
//	[[photos]]
//	id      = "6f1c..."
//	source  = "img/lake.jpg"
//	caption = "At the lake"
//	filter  = "vintage"
//	scale   = 1.2
//	pos_x   = 40.0
//	pos_y   = 50.0
package manifest

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/polaroid/pkg/errors"
	"github.com/matzehuels/polaroid/pkg/layout"
	"github.com/matzehuels/polaroid/pkg/photo"
)

// Format is a manifest encoding.
type Format string

const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
)

// Meta holds album settings that are not part of the photo model.
type Meta struct {
	// Preset is the layout preset used for export when none is given on
	// the command line. Empty means the default preset.
	Preset string
}

type file struct {
	Title  string  `toml:"title" yaml:"title"`
	Preset string  `toml:"preset,omitempty" yaml:"preset,omitempty"`
	Filter string  `toml:"filter,omitempty" yaml:"filter,omitempty"`
	Photos []entry `toml:"photos" yaml:"photos"`
}

type entry struct {
	ID        string    `toml:"id" yaml:"id"`
	Source    string    `toml:"source" yaml:"source"`
	Caption   string    `toml:"caption,omitempty" yaml:"caption,omitempty"`
	Filter    string    `toml:"filter,omitempty" yaml:"filter,omitempty"`
	Scale     *float64  `toml:"scale,omitempty" yaml:"scale,omitempty"`
	PosX      *float64  `toml:"pos_x,omitempty" yaml:"pos_x,omitempty"`
	PosY      *float64  `toml:"pos_y,omitempty" yaml:"pos_y,omitempty"`
	CreatedAt time.Time `toml:"created_at" yaml:"created_at"`
}

// FormatOf returns the manifest format for path based on its extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	}
	return "", errors.New(errors.ErrCodeInvalidFormat, "unsupported manifest %q: use .toml, .yaml or .yml", filepath.Base(path))
}

// Read loads the album stored at path. Relative photo sources are resolved
// against the manifest's directory.
func Read(path string) (*photo.Album, Meta, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, Meta{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, Meta{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "album %s does not exist", path)
		}
		return nil, Meta{}, errors.Wrap(errors.ErrCodeInvalidPath, err, "read album %s", path)
	}
	album, meta, err := Decode(data, format, filepath.Dir(path))
	if err != nil {
		return nil, Meta{}, err
	}
	return album, meta, nil
}

// Decode parses manifest data. Relative sources are joined to baseDir.
func Decode(data []byte, format Format, baseDir string) (*photo.Album, Meta, error) {
	var f file
	switch format {
	case FormatTOML:
		if _, err := toml.Decode(string(data), &f); err != nil {
			return nil, Meta{}, errors.Wrap(errors.ErrCodeInvalidManifest, err, "parse toml manifest")
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &f); err != nil {
			return nil, Meta{}, errors.Wrap(errors.ErrCodeInvalidManifest, err, "parse yaml manifest")
		}
	default:
		return nil, Meta{}, errors.New(errors.ErrCodeInvalidFormat, "unknown manifest format %q", format)
	}
	return f.album(baseDir)
}

func (f file) album(baseDir string) (*photo.Album, Meta, error) {
	meta := Meta{Preset: f.Preset}
	if meta.Preset != "" {
		p, err := layout.LookupPreset(meta.Preset)
		if err != nil {
			return nil, Meta{}, err
		}
		meta.Preset = p.Name
	}

	a := photo.NewAlbum(f.Title)
	if f.Filter != "" {
		css, err := photo.ResolveFilter(f.Filter)
		if err != nil {
			return nil, Meta{}, errors.Wrap(errors.ErrCodeInvalidManifest, err, "album filter")
		}
		a.Filter = css
	}

	seen := make(map[string]bool, len(f.Photos))
	for i, e := range f.Photos {
		p, err := e.photo(baseDir)
		if err != nil {
			return nil, Meta{}, errors.Wrap(errors.ErrCodeInvalidManifest, err, "photo %d", i+1)
		}
		if seen[p.ID] {
			return nil, Meta{}, errors.New(errors.ErrCodeInvalidManifest, "photo %d: duplicate id %s", i+1, p.ID)
		}
		seen[p.ID] = true
		a.Photos = append(a.Photos, p)
	}
	return a, meta, nil
}

func (e entry) photo(baseDir string) (photo.Photo, error) {
	src, err := resolveSource(e.Source, baseDir)
	if err != nil {
		return photo.Photo{}, err
	}
	caption := photo.NormalizeCaption(e.Caption)
	if err := errors.ValidateCaption(caption); err != nil {
		return photo.Photo{}, err
	}
	filter := photo.FilterNone
	if e.Filter != "" {
		if filter, err = photo.ResolveFilter(e.Filter); err != nil {
			return photo.Photo{}, err
		}
	}

	p := photo.Photo{
		ID:        e.ID,
		Source:    src,
		Caption:   caption,
		Filter:    filter,
		Scale:     photo.DefaultScale,
		PosX:      photo.DefaultPos,
		PosY:      photo.DefaultPos,
		CreatedAt: e.CreatedAt.UTC(),
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	p = photo.Adjustment{Scale: e.Scale, PosX: e.PosX, PosY: e.PosY}.Apply(p)
	return p, nil
}

func resolveSource(src, baseDir string) (string, error) {
	if src == "" {
		return "", errors.New(errors.ErrCodeInvalidInput, "source is required")
	}
	if err := errors.ValidateImageFilename(src); err != nil {
		return "", err
	}
	if filepath.IsAbs(src) {
		return filepath.Clean(src), nil
	}
	if err := errors.ValidatePath(filepath.ToSlash(src)); err != nil {
		return "", err
	}
	return filepath.Join(baseDir, filepath.FromSlash(src)), nil
}

// Write stores album at path atomically. The format follows the extension.
// Sources inside the manifest's directory are written as relative paths.
func Write(path string, album *photo.Album, meta Meta) error {
	format, err := FormatOf(path)
	if err != nil {
		return err
	}
	data, err := Encode(album, meta, format, filepath.Dir(path))
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".album-*")
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "write album %s", path)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "write album %s", path)
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "write album %s", path)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "write album %s", path)
	}
	return nil
}

// Encode serializes album. Sources under baseDir become relative paths.
func Encode(album *photo.Album, meta Meta, format Format, baseDir string) ([]byte, error) {
	f := file{
		Title:  album.Title,
		Preset: meta.Preset,
		Filter: photo.NormalizeFilter(album.Filter),
		Photos: make([]entry, 0, len(album.Photos)),
	}
	for _, p := range album.Photos {
		p = p.Normalized()
		scale, px, py := p.Scale, p.PosX, p.PosY
		f.Photos = append(f.Photos, entry{
			ID:        p.ID,
			Source:    relativeSource(p.Source, baseDir),
			Caption:   p.Caption,
			Filter:    p.Filter,
			Scale:     &scale,
			PosX:      &px,
			PosY:      &py,
			CreatedAt: p.CreatedAt,
		})
	}

	var buf bytes.Buffer
	switch format {
	case FormatTOML:
		if err := toml.NewEncoder(&buf).Encode(f); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode toml manifest")
		}
	case FormatYAML:
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(f); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode yaml manifest")
		}
		if err := enc.Close(); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode yaml manifest")
		}
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unknown manifest format %q", format)
	}
	return buf.Bytes(), nil
}

func relativeSource(src, baseDir string) string {
	abs, err := filepath.Abs(src)
	if err != nil {
		return filepath.ToSlash(src)
	}
	base, err := filepath.Abs(baseDir)
	if err != nil {
		return filepath.ToSlash(src)
	}
	rel, err := filepath.Rel(base, abs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return abs
	}
	return filepath.ToSlash(rel)
}
