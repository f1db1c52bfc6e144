package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"

	"github.com/matzehuels/polaroid/pkg/cache"
	"github.com/matzehuels/polaroid/pkg/errors"
	"github.com/matzehuels/polaroid/pkg/layout"
	"github.com/matzehuels/polaroid/pkg/manifest"
	"github.com/matzehuels/polaroid/pkg/photo"
)

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"pdf", false},
		{"png", false},
		{"svg", true},
		{"PDF", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
	}
}

func TestParseFormats(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", []string{"pdf"}},
		{"png", []string{"png"}},
		{"PDF, png", []string{"pdf", "png"}},
		{"pdf,pdf,", []string{"pdf"}},
	}
	for _, tt := range tests {
		got := ParseFormats(tt.in)
		if len(got) != len(tt.want) {
			t.Errorf("ParseFormats(%q) = %v, want %v", tt.in, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("ParseFormats(%q) = %v, want %v", tt.in, got, tt.want)
			}
		}
	}
}

func TestOptionsValidate(t *testing.T) {
	opts := Options{Album: "a.toml"}
	if err := opts.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if opts.DPI != DefaultDPI || opts.JPEGQuality != DefaultJPEGQuality || opts.Workers <= 0 {
		t.Errorf("defaults not applied: %+v", opts)
	}
	if len(opts.Formats) != 1 || opts.Formats[0] != FormatPDF {
		t.Errorf("Formats = %v, want [pdf]", opts.Formats)
	}

	bad := []Options{
		{},
		{Album: "a.toml", Formats: []string{"svg"}},
		{Album: "a.toml", JPEGQuality: 120},
		{Album: "a.toml", DPI: -3},
	}
	for _, o := range bad {
		if err := o.Validate(); err == nil {
			t.Errorf("Validate(%+v) should fail", o)
		}
	}
}

func TestArtifactKeyOpts(t *testing.T) {
	opts := Options{DPI: 300, JPEGQuality: 90, CropMarks: true, PageNumbers: true}

	pdf := opts.ArtifactKeyOpts(FormatPDF, "grid9", "t", "")
	if !pdf.CropMarks || pdf.JPEGQuality != 90 || pdf.PageNumbers {
		t.Errorf("pdf key opts = %+v", pdf)
	}
	png := opts.ArtifactKeyOpts(FormatPNG, "grid9", "t", "")
	if png.CropMarks || png.JPEGQuality != 0 || !png.PageNumbers {
		t.Errorf("png key opts = %+v", png)
	}
}

func TestResolvePreset(t *testing.T) {
	tests := []struct {
		explicit, album, fallback, want string
	}{
		{"", "", "", layout.DefaultPreset},
		{"", "", "grid6", "grid6"},
		{"", "flow", "grid6", "flow"},
		{"grid6", "flow", "", "grid6"},
	}
	for _, tt := range tests {
		p, err := ResolvePreset(tt.explicit, tt.album, tt.fallback)
		if err != nil || p.Name != tt.want {
			t.Errorf("ResolvePreset(%q, %q, %q) = %q, %v; want %q", tt.explicit, tt.album, tt.fallback, p.Name, err, tt.want)
		}
	}
	if _, err := ResolvePreset("poster", ""); !errors.Is(err, errors.ErrCodeInvalidPreset) {
		t.Errorf("ResolvePreset(unknown) = %v, want INVALID_PRESET", err)
	}
}

func TestMarshalLayout(t *testing.T) {
	p, _ := layout.LookupPreset("grid9")
	placements, err := GenerateLayout(10, p)
	if err != nil {
		t.Fatal(err)
	}
	data, err := MarshalLayout(p, placements)
	if err != nil {
		t.Fatalf("MarshalLayout() error = %v", err)
	}
	var got LayoutFile
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatal(err)
	}
	if got.Preset != "grid9" || got.Mode != "grid" || got.Pages != 2 || len(got.Placements) != 10 {
		t.Errorf("LayoutFile = %s/%s/%d pages/%d placements", got.Preset, got.Mode, got.Pages, len(got.Placements))
	}

	empty, _ := MarshalLayout(p, nil)
	if !bytes.Contains(empty, []byte(`"placements": []`)) {
		t.Errorf("empty layout should serialize placements as [], got %s", empty)
	}
}

// =============================================================================
// End to end
// =============================================================================

func writeAlbum(t *testing.T, n int) string {
	t.Helper()
	dir := t.TempDir()
	a := photo.NewAlbum("Test album")
	for i := 0; i < n; i++ {
		path := filepath.Join(dir, "p"+string(rune('a'+i))+".png")
		c := color.NRGBA{uint8(20 * i), 100, 200, 255}
		if err := imaging.Save(imaging.New(40, 30, c), path); err != nil {
			t.Fatal(err)
		}
		if _, err := a.Add(path); err != nil {
			t.Fatal(err)
		}
	}
	a.Photos[0].Caption = "first"
	path := filepath.Join(dir, "album.toml")
	if err := manifest.Write(path, a, manifest.Meta{Preset: "grid9"}); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestHashAlbum(t *testing.T) {
	a, _, err := Load(writeAlbum(t, 2))
	if err != nil {
		t.Fatal(err)
	}
	h1, err := HashAlbum(a)
	if err != nil {
		t.Fatalf("HashAlbum() error = %v", err)
	}
	if h2, _ := HashAlbum(a); h1 != h2 {
		t.Error("HashAlbum() is not deterministic")
	}

	if err := a.SetCaption(a.Photos[1].ID, "changed"); err != nil {
		t.Fatal(err)
	}
	if h3, _ := HashAlbum(a); h3 == h1 {
		t.Error("caption change should change the hash")
	}

	if err := os.Remove(a.Photos[0].Source); err != nil {
		t.Fatal(err)
	}
	if _, err := HashAlbum(a); !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("HashAlbum(missing source) = %v, want FILE_NOT_FOUND", err)
	}
}

func TestExecute(t *testing.T) {
	album := writeAlbum(t, 11)
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	runner := NewRunner(fc, nil, nil)
	defer runner.Close()

	opts := Options{
		Album:     album,
		Formats:   []string{FormatPDF, FormatPNG},
		DPI:       20,
		Workers:   3,
		CropMarks: true,
	}

	res, err := runner.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if res.CacheInfo.ArtifactHit {
		t.Error("first run should not hit the artifact cache")
	}
	if res.Stats.Photos != 11 || res.Stats.Pages != 2 || res.Preset.Name != "grid9" {
		t.Errorf("Stats = %+v, preset %s", res.Stats, res.Preset.Name)
	}
	if pdf := res.Artifacts[FormatPDF]; len(pdf) != 1 || !bytes.HasPrefix(pdf[0], []byte("%PDF-")) {
		t.Errorf("pdf artifact missing or invalid")
	}
	if pages := res.Artifacts[FormatPNG]; len(pages) != 2 {
		t.Errorf("png pages = %d, want 2", len(pages))
	}

	again, err := runner.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("second Execute() error = %v", err)
	}
	if !again.CacheInfo.ArtifactHit {
		t.Error("second run should hit the artifact cache")
	}
	if !bytes.Equal(again.Artifacts[FormatPDF][0], res.Artifacts[FormatPDF][0]) {
		t.Error("cached pdf differs from rendered pdf")
	}

	opts.Refresh = true
	fresh, err := runner.Execute(context.Background(), opts)
	if err != nil {
		t.Fatal(err)
	}
	if fresh.CacheInfo.ArtifactHit {
		t.Error("Refresh should bypass the artifact cache")
	}
}

func TestExecuteErrors(t *testing.T) {
	runner := NewRunner(nil, nil, nil)

	if _, err := runner.Execute(context.Background(), Options{Album: filepath.Join(t.TempDir(), "none.toml")}); !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("Execute(missing album) = %v, want FILE_NOT_FOUND", err)
	}

	album := writeAlbum(t, 1)
	if _, err := runner.Execute(context.Background(), Options{Album: album, Preset: "poster"}); !errors.Is(err, errors.ErrCodeInvalidPreset) {
		t.Errorf("Execute(bad preset) = %v, want INVALID_PRESET", err)
	}
}

func TestRunnerLayout(t *testing.T) {
	runner := NewRunner(nil, nil, nil)
	preset, placements, err := runner.Layout(context.Background(), writeAlbum(t, 7), "grid6", "")
	if err != nil {
		t.Fatalf("Layout() error = %v", err)
	}
	if preset.Name != "grid6" || len(placements) != 7 || layout.PageCount(placements) != 2 {
		t.Errorf("Layout() = %s with %d placements on %d pages", preset.Name, len(placements), layout.PageCount(placements))
	}
}
