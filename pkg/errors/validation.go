package errors

import (
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxCaptionLength is the maximum caption length in runes.
const MaxCaptionLength = 120

// imageExtensions lists the file extensions the photo decoder understands.
var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
	".bmp":  true,
	".tif":  true,
	".tiff": true,
}

// ValidatePath validates a photo source path stored in an album manifest.
// Manifest paths are resolved against the manifest directory, so they must
// stay inside it.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No absolute paths (must be relative)
//   - No path traversal sequences (..)
//   - No backslashes (Windows-style paths)
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	if strings.HasPrefix(path, "/") {
		return New(ErrCodeInvalidPath, "path must be relative (cannot start with /)")
	}

	for _, part := range strings.Split(path, "/") {
		if part == ".." {
			return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
		}
	}

	if strings.Contains(path, "\\") {
		return New(ErrCodeInvalidPath, "path cannot contain backslashes")
	}

	return nil
}

// ValidateCaption validates a photo caption.
// Captions are single-line, valid UTF-8 and at most MaxCaptionLength runes.
// An empty caption is allowed.
func ValidateCaption(caption string) error {
	if !utf8.ValidString(caption) {
		return New(ErrCodeInvalidInput, "caption is not valid UTF-8")
	}
	if n := utf8.RuneCountInString(caption); n > MaxCaptionLength {
		return New(ErrCodeInvalidInput, "caption too long (%d characters, max %d)", n, MaxCaptionLength)
	}
	for _, r := range caption {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "caption contains control characters")
		}
	}
	return nil
}

// ValidateImageFilename checks that a file name carries a supported image
// extension. The check is case-insensitive.
func ValidateImageFilename(filename string) error {
	if filename == "" {
		return New(ErrCodeInvalidInput, "image filename cannot be empty")
	}
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		return New(ErrCodeInvalidFormat, "image %q has no file extension", filename)
	}
	if !imageExtensions[ext] {
		return New(ErrCodeInvalidFormat, "unsupported image type %q", ext)
	}
	return nil
}
