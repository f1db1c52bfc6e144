package pipeline

import (
	"os"
	"strconv"

	"github.com/matzehuels/polaroid/pkg/cache"
	"github.com/matzehuels/polaroid/pkg/errors"
	"github.com/matzehuels/polaroid/pkg/manifest"
	"github.com/matzehuels/polaroid/pkg/photo"
)

// =============================================================================
// Album Loading
// =============================================================================

// Load reads the album manifest at path.
func Load(path string) (*photo.Album, manifest.Meta, error) {
	return manifest.Read(path)
}

// HashAlbum returns a content hash of the album: its title and active
// filter, every photo's settings in order, and the bytes of every source
// file. Any change that could alter an exported document changes the hash.
func HashAlbum(a *photo.Album) (string, error) {
	parts := []string{a.Title, photo.NormalizeFilter(a.Filter)}
	for _, p := range a.Photos {
		p = p.Normalized()
		sum, err := cache.HashFile(p.Source)
		if err != nil {
			if os.IsNotExist(err) {
				return "", errors.Wrap(errors.ErrCodeFileNotFound, err, "photo %s does not exist", p.Source)
			}
			return "", errors.Wrap(errors.ErrCodeInvalidPath, err, "read photo %s", p.Source)
		}
		parts = append(parts,
			sum,
			p.Caption,
			p.Filter,
			strconv.FormatFloat(p.Scale, 'g', -1, 64),
			strconv.FormatFloat(p.PosX, 'g', -1, 64),
			strconv.FormatFloat(p.PosY, 'g', -1, 64),
		)
	}
	return cache.HashStrings(parts), nil
}
