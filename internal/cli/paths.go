package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/matzehuels/polaroid/pkg/pipeline"
)

// outputBase returns the path exported files are named after: output with
// any .pdf/.png/.json extension removed, or the album path without its
// extension.
func outputBase(album, output string) string {
	if output == "" {
		return strings.TrimSuffix(album, filepath.Ext(album))
	}
	switch strings.ToLower(filepath.Ext(output)) {
	case ".pdf", ".png", ".json":
		return strings.TrimSuffix(output, filepath.Ext(output))
	}
	return output
}

// artifactPaths names the n files of one format. PDFs and single-page PNG
// exports use base.<format>; multi-page PNG exports are numbered from 1 with
// enough zero padding to sort correctly.
func artifactPaths(base, format string, n int) []string {
	if n == 1 || format == pipeline.FormatPDF {
		return []string{base + "." + format}
	}
	width := len(fmt.Sprint(n))
	paths := make([]string, n)
	for i := range paths {
		paths[i] = fmt.Sprintf("%s-%0*d.%s", base, width, i+1, format)
	}
	return paths
}

// writeArtifacts writes every rendered file and returns the paths in
// format order. Nothing is written unless all formats rendered.
func writeArtifacts(base string, formats []string, artifacts map[string][][]byte) ([]string, error) {
	if dir := filepath.Dir(base); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create output directory: %w", err)
		}
	}
	var written []string
	for _, f := range formats {
		files := artifacts[f]
		for i, path := range artifactPaths(base, f, len(files)) {
			if err := os.WriteFile(path, files[i], 0o644); err != nil {
				return written, fmt.Errorf("write %s: %w", path, err)
			}
			written = append(written, path)
		}
	}
	return written, nil
}
