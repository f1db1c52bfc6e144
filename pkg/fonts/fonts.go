// Package fonts provides caption fonts for card rendering.
//
// The default caption face is Go Medium Italic from golang.org/x/image,
// compiled into the binary so rendering works without system fonts. A
// custom TrueType or OpenType file can be used instead via [Load].
package fonts

import (
	"os"
	"sync"

	"github.com/gogpu/gg/text"
	"golang.org/x/image/font/gofont/gomediumitalic"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/matzehuels/polaroid/pkg/errors"
)

// CaptionTTF returns the default caption font data.
func CaptionTTF() []byte {
	return gomediumitalic.TTF
}

// RegularTTF returns the font used for sheet annotations.
func RegularTTF() []byte {
	return goregular.TTF
}

// Parsed sources are shared (text.FontSource is safe for concurrent use).
var (
	captionOnce sync.Once
	captionSrc  *text.FontSource
	captionErr  error

	regularOnce sync.Once
	regularSrc  *text.FontSource
	regularErr  error
)

// Caption returns the parsed default caption font.
// The result is cached after the first call.
func Caption() (*text.FontSource, error) {
	captionOnce.Do(func() {
		captionSrc, captionErr = text.NewFontSource(CaptionTTF())
	})
	return captionSrc, captionErr
}

// Regular returns the parsed annotation font.
func Regular() (*text.FontSource, error) {
	regularOnce.Do(func() {
		regularSrc, regularErr = text.NewFontSource(RegularTTF())
	})
	return regularSrc, regularErr
}

// Load parses a font file. An empty path returns the default caption font.
func Load(path string) (*text.FontSource, error) {
	if path == "" {
		return Caption()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "font %s does not exist", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "read font %s", path)
	}
	src, err := text.NewFontSource(data)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse font %s", path)
	}
	return src, nil
}
