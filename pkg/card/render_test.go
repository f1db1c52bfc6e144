package card

import (
	"image"
	"image/color"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/disintegration/imaging"

	"github.com/matzehuels/polaroid/pkg/fonts"
	"github.com/matzehuels/polaroid/pkg/photo"
)

// testSpec is a small card so rendering stays fast.
func testSpec() Spec {
	s := DefaultSpec()
	s.DPI = 30
	return s
}

func newTestRenderer(t *testing.T) *Renderer {
	t.Helper()
	src, err := fonts.Caption()
	if err != nil {
		t.Fatalf("fonts.Caption() error = %v", err)
	}
	r, err := NewRenderer(testSpec(), src)
	if err != nil {
		t.Fatalf("NewRenderer() error = %v", err)
	}
	return r
}

var red = color.NRGBA{R: 255, A: 255}

func TestWindowZoomedOut(t *testing.T) {
	r := newTestRenderer(t)
	src := imaging.New(100, 100, red)

	p := photo.New("a.png", "")
	p.Scale = 0.5
	win := r.Window(src, p, photo.Filter{})

	ww, wh := r.Spec().Window()
	if b := win.Bounds(); b.Dx() != ww || b.Dy() != wh {
		t.Fatalf("Window() size = %v, want %dx%d", b, ww, wh)
	}
	if got := win.NRGBAAt(0, 0); !near(got, color.NRGBA{0xf5, 0xf5, 0xf4, 0xff}, 1) {
		t.Errorf("corner = %v, want window background", got)
	}
	if got := win.NRGBAAt(ww/2, wh/2); !near(got, red, 2) {
		t.Errorf("centre = %v, want red", got)
	}
}

func TestWindowFilter(t *testing.T) {
	r := newTestRenderer(t)
	src := imaging.New(40, 40, red)

	f, err := photo.ParseFilter("grayscale(1)")
	if err != nil {
		t.Fatal(err)
	}
	win := r.Window(src, photo.New("a.png", ""), f)

	c := win.NRGBAAt(10, 10)
	if c.R != c.G || c.G != c.B {
		t.Errorf("grayscale pixel = %v, want equal channels", c)
	}
}

func TestRender(t *testing.T) {
	r := newTestRenderer(t)
	src := imaging.New(80, 60, red)

	p := photo.New("a.png", "")
	p.Caption = "Summer at the lake"
	img, err := r.Render(src, p)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	w, h := r.Spec().Size()
	if b := img.Bounds(); b.Dx() != w || b.Dy() != h {
		t.Fatalf("Render() size = %v, want %dx%d", b, w, h)
	}

	pad := r.Spec().Px(r.Spec().PaddingCM)
	if got := rgbaAt(img, pad/2, pad/2); !near(got, color.NRGBA{255, 255, 255, 255}, 2) {
		t.Errorf("border pixel = %v, want white", got)
	}
	ww, wh := r.Spec().Window()
	if got := rgbaAt(img, pad+ww/2, pad+wh/2); !near(got, red, 4) {
		t.Errorf("window centre = %v, want red", got)
	}
	if got := rgbaAt(img, 0, h/2); got.R == 255 && got.G == 255 && got.B == 255 {
		t.Errorf("edge pixel = %v, want stroked border", got)
	}
}

func TestRenderInvalidFilter(t *testing.T) {
	r := newTestRenderer(t)
	p := photo.New("a.png", "")
	p.Filter = "wobble(3)"
	if _, err := r.Render(imaging.New(10, 10, red), p); err == nil {
		t.Error("Render() with unknown filter should fail")
	}
}

func TestNewRendererRequiresFont(t *testing.T) {
	if _, err := NewRenderer(DefaultSpec(), nil); err == nil {
		t.Error("NewRenderer(nil font) should fail")
	}
}

func TestTruncate(t *testing.T) {
	measure := func(s string) float64 { return float64(utf8.RuneCountInString(s)) * 10 }

	tests := []struct {
		name  string
		in    string
		width float64
		want  string
	}{
		{"fits", "hello", 50, "hello"},
		{"empty", "", 0, ""},
		{"truncated", "hello world", 60, "hello" + ellipsis},
		{"runes", "ééééé", 30, "éé" + ellipsis},
		{"nothing fits", "hello", 5, ellipsis},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Truncate(tt.in, tt.width, measure)
			if got != tt.want {
				t.Errorf("Truncate(%q, %v) = %q, want %q", tt.in, tt.width, got, tt.want)
			}
			if got != tt.in && !strings.HasSuffix(got, ellipsis) {
				t.Errorf("Truncate(%q) = %q, missing ellipsis", tt.in, got)
			}
		})
	}
}

func rgbaAt(img image.Image, x, y int) color.NRGBA {
	b := img.Bounds()
	return color.NRGBAModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
}

func near(a, b color.NRGBA, tol int) bool {
	d := func(x, y uint8) bool {
		v := int(x) - int(y)
		return v <= tol && v >= -tol
	}
	return d(a.R, b.R) && d(a.G, b.G) && d(a.B, b.B) && d(a.A, b.A)
}
