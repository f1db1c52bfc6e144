package fonts

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/matzehuels/polaroid/pkg/errors"
)

func TestCaption(t *testing.T) {
	a, err := Caption()
	if err != nil {
		t.Fatalf("Caption() error = %v", err)
	}
	b, _ := Caption()
	if a != b {
		t.Error("Caption() is not cached")
	}
	if len(CaptionTTF()) == 0 || len(RegularTTF()) == 0 {
		t.Error("embedded font data is empty")
	}
}

func TestLoad(t *testing.T) {
	src, err := Load("")
	if err != nil || src == nil {
		t.Fatalf("Load(\"\") = %v, %v", src, err)
	}

	dir := t.TempDir()
	good := filepath.Join(dir, "regular.ttf")
	if err := os.WriteFile(good, RegularTTF(), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(good); err != nil {
		t.Errorf("Load(valid) error = %v", err)
	}

	bad := filepath.Join(dir, "bad.ttf")
	if err := os.WriteFile(bad, []byte("not a font"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(bad); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("Load(garbage) error = %v, want %v", err, errors.ErrCodeInvalidFormat)
	}

	if _, err := Load(filepath.Join(dir, "missing.ttf")); !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("Load(missing) error = %v, want %v", err, errors.ErrCodeFileNotFound)
	}
}
