package photo

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"strconv"
	"strings"

	"github.com/disintegration/imaging"

	"github.com/matzehuels/polaroid/pkg/errors"
)

// Filter preset CSS values.
const (
	FilterNone    = "none"
	FilterVintage = "sepia(0.6) contrast(1.1) brightness(0.9)"
	FilterBW      = "grayscale(1) contrast(1.2)"
	FilterWarm    = "sepia(0.2) saturate(1.4) brightness(1.1)"
	FilterCool    = "hue-rotate(180deg) saturate(0.8) brightness(1.1)"
)

// Preset is a named filter.
type Preset struct {
	Name string
	CSS  string
}

// Presets lists the built-in filters in display order.
var Presets = []Preset{
	{"none", FilterNone},
	{"vintage", FilterVintage},
	{"bw", FilterBW},
	{"warm", FilterWarm},
	{"cool", FilterCool},
}

// PresetName returns the preset name for a CSS filter string, or "custom".
func PresetName(css string) string {
	css = NormalizeFilter(css)
	for _, p := range Presets {
		if p.CSS == css {
			return p.Name
		}
	}
	return "custom"
}

// NextPreset returns the CSS of the preset after css, wrapping around.
// Custom filters advance to the first preset.
func NextPreset(css string) string {
	css = NormalizeFilter(css)
	for i, p := range Presets {
		if p.CSS == css {
			return Presets[(i+1)%len(Presets)].CSS
		}
	}
	return Presets[0].CSS
}

// NormalizeFilter collapses whitespace and maps the empty filter to "none".
func NormalizeFilter(css string) string {
	css = strings.Join(strings.Fields(css), " ")
	if css == "" {
		return FilterNone
	}
	return css
}

// ResolveFilter accepts a preset name or a CSS filter list and returns the
// CSS form after checking that it parses.
func ResolveFilter(s string) (string, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for _, p := range Presets {
		if p.Name == name {
			return p.CSS, nil
		}
	}
	f, err := ParseFilter(s)
	if err != nil {
		return "", err
	}
	return f.String(), nil
}

// =============================================================================
// Parsing
// =============================================================================

// Op is one CSS filter function.
type Op struct {
	Func   string  // function name, e.g. "sepia"
	Amount float64 // ratio, degrees for hue-rotate, pixels for blur
}

// Filter is a parsed CSS filter list. Ops run in order.
type Filter struct {
	Ops []Op
}

// IsIdentity reports whether the filter leaves images unchanged.
func (f Filter) IsIdentity() bool { return len(f.Ops) == 0 }

// String renders the filter back to CSS.
func (f Filter) String() string {
	if len(f.Ops) == 0 {
		return FilterNone
	}
	parts := make([]string, len(f.Ops))
	for i, op := range f.Ops {
		v := strconv.FormatFloat(op.Amount, 'f', -1, 64)
		switch op.Func {
		case "hue-rotate":
			v += "deg"
		case "blur":
			v += "px"
		}
		parts[i] = fmt.Sprintf("%s(%s)", op.Func, v)
	}
	return strings.Join(parts, " ")
}

// Scaled returns a copy whose blur radii are multiplied by k. Blur amounts
// are CSS pixels; rasterizers use this to convert them to device pixels.
func (f Filter) Scaled(k float64) Filter {
	out := Filter{Ops: make([]Op, len(f.Ops))}
	for i, op := range f.Ops {
		if op.Func == "blur" {
			op.Amount *= k
		}
		out.Ops[i] = op
	}
	return out
}

// defaults holds the value used when a function is written without an
// argument, e.g. "grayscale()".
var defaults = map[string]float64{
	"brightness": 1,
	"contrast":   1,
	"grayscale":  1,
	"sepia":      1,
	"saturate":   1,
	"invert":     1,
	"opacity":    1,
	"hue-rotate": 0,
	"blur":       0,
}

// ParseFilter parses a CSS filter list such as
// "sepia(0.6) contrast(110%) hue-rotate(0.5turn)". "none" and the empty
// string parse to the identity filter.
func ParseFilter(css string) (Filter, error) {
	s := strings.TrimSpace(css)
	if s == "" || strings.EqualFold(s, FilterNone) {
		return Filter{}, nil
	}

	var f Filter
	for s != "" {
		open := strings.IndexByte(s, '(')
		if open <= 0 {
			return Filter{}, errors.New(errors.ErrCodeInvalidFilter, "invalid filter %q: expected name(value)", css)
		}
		closing := strings.IndexByte(s[open:], ')')
		if closing < 0 {
			return Filter{}, errors.New(errors.ErrCodeInvalidFilter, "invalid filter %q: missing ')'", css)
		}
		name := strings.ToLower(strings.TrimSpace(s[:open]))
		arg := strings.TrimSpace(s[open+1 : open+closing])

		op, err := parseOp(name, arg)
		if err != nil {
			return Filter{}, errors.Wrap(errors.ErrCodeInvalidFilter, err, "invalid filter %q", css)
		}
		f.Ops = append(f.Ops, op)
		s = strings.TrimSpace(s[open+closing+1:])
	}
	return f, nil
}

func parseOp(name, arg string) (Op, error) {
	def, ok := defaults[name]
	if !ok {
		return Op{}, fmt.Errorf("unknown function %q", name)
	}
	if arg == "" {
		return Op{Func: name, Amount: def}, nil
	}

	var (
		v   float64
		err error
	)
	switch name {
	case "hue-rotate":
		v, err = parseAngle(arg)
	case "blur":
		v, err = parseLength(arg)
	default:
		v, err = parseAmount(arg)
	}
	if err != nil {
		return Op{}, fmt.Errorf("%s: %w", name, err)
	}
	if name != "hue-rotate" && v < 0 {
		return Op{}, fmt.Errorf("%s: negative value %g", name, v)
	}

	switch name {
	case "grayscale", "sepia", "invert", "opacity":
		v = math.Min(v, 1)
	}
	return Op{Func: name, Amount: v}, nil
}

func parseAmount(s string) (float64, error) {
	if pct, ok := strings.CutSuffix(s, "%"); ok {
		v, err := strconv.ParseFloat(pct, 64)
		return v / 100, err
	}
	return strconv.ParseFloat(s, 64)
}

func parseAngle(s string) (float64, error) {
	units := []struct {
		suffix string
		deg    float64
	}{
		{"deg", 1},
		{"grad", 0.9},
		{"rad", 180 / math.Pi},
		{"turn", 360},
	}
	for _, u := range units {
		if n, ok := strings.CutSuffix(s, u.suffix); ok {
			v, err := strconv.ParseFloat(n, 64)
			return v * u.deg, err
		}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err == nil && v != 0 {
		return 0, fmt.Errorf("angle %q needs a unit", s)
	}
	return v, err
}

func parseLength(s string) (float64, error) {
	n, ok := strings.CutSuffix(s, "px")
	v, err := strconv.ParseFloat(n, 64)
	if err == nil && !ok && v != 0 {
		return 0, fmt.Errorf("length %q needs a px unit", s)
	}
	return v, err
}

// =============================================================================
// Application
// =============================================================================

// Apply runs the filter over img and returns a new image. Colour functions
// use the Filter Effects matrices, each step clamped to [0, 1] like browsers
// do. Blur radius is in image pixels (see [Filter.Scaled]).
func (f Filter) Apply(img image.Image) *image.NRGBA {
	out := imaging.Clone(img)
	var pass []Op
	flush := func() {
		if len(pass) > 0 {
			ops := pass
			out = imaging.AdjustFunc(out, func(c color.NRGBA) color.NRGBA {
				return applyColorOps(ops, c)
			})
			pass = nil
		}
	}
	for _, op := range f.Ops {
		if op.Func == "blur" {
			flush()
			if op.Amount > 0 {
				out = imaging.Blur(out, op.Amount)
			}
			continue
		}
		pass = append(pass, op)
	}
	flush()
	return out
}

func applyColorOps(ops []Op, c color.NRGBA) color.NRGBA {
	r, g, b := float64(c.R)/255, float64(c.G)/255, float64(c.B)/255
	a := float64(c.A) / 255
	for _, op := range ops {
		switch op.Func {
		case "brightness":
			r, g, b = r*op.Amount, g*op.Amount, b*op.Amount
		case "contrast":
			k := op.Amount
			r, g, b = (r-0.5)*k+0.5, (g-0.5)*k+0.5, (b-0.5)*k+0.5
		case "invert":
			k := op.Amount
			r, g, b = r*(1-k)+(1-r)*k, g*(1-k)+(1-g)*k, b*(1-k)+(1-b)*k
		case "opacity":
			a *= op.Amount
		default:
			r, g, b = matrixFor(op).mul(r, g, b)
		}
		r, g, b, a = clamp01(r), clamp01(g), clamp01(b), clamp01(a)
	}
	return color.NRGBA{R: to8(r), G: to8(g), B: to8(b), A: to8(a)}
}

type matrix [3][3]float64

func (m matrix) mul(r, g, b float64) (float64, float64, float64) {
	return m[0][0]*r + m[0][1]*g + m[0][2]*b,
		m[1][0]*r + m[1][1]*g + m[1][2]*b,
		m[2][0]*r + m[2][1]*g + m[2][2]*b
}

func matrixFor(op Op) matrix {
	switch op.Func {
	case "grayscale":
		s := 1 - op.Amount
		return matrix{
			{0.2126 + 0.7874*s, 0.7152 - 0.7152*s, 0.0722 - 0.0722*s},
			{0.2126 - 0.2126*s, 0.7152 + 0.2848*s, 0.0722 - 0.0722*s},
			{0.2126 - 0.2126*s, 0.7152 - 0.7152*s, 0.0722 + 0.9278*s},
		}
	case "sepia":
		s := 1 - op.Amount
		return matrix{
			{0.393 + 0.607*s, 0.769 - 0.769*s, 0.189 - 0.189*s},
			{0.349 - 0.349*s, 0.686 + 0.314*s, 0.168 - 0.168*s},
			{0.272 - 0.272*s, 0.534 - 0.534*s, 0.131 + 0.869*s},
		}
	case "saturate":
		s := op.Amount
		return matrix{
			{0.213 + 0.787*s, 0.715 - 0.715*s, 0.072 - 0.072*s},
			{0.213 - 0.213*s, 0.715 + 0.285*s, 0.072 - 0.072*s},
			{0.213 - 0.213*s, 0.715 - 0.715*s, 0.072 + 0.928*s},
		}
	case "hue-rotate":
		rad := op.Amount * math.Pi / 180
		cos, sin := math.Cos(rad), math.Sin(rad)
		return matrix{
			{0.213 + cos*0.787 - sin*0.213, 0.715 - cos*0.715 - sin*0.715, 0.072 - cos*0.072 + sin*0.928},
			{0.213 - cos*0.213 + sin*0.143, 0.715 + cos*0.285 + sin*0.140, 0.072 - cos*0.072 - sin*0.283},
			{0.213 - cos*0.213 - sin*0.787, 0.715 - cos*0.715 + sin*0.715, 0.072 + cos*0.928 + sin*0.072},
		}
	}
	return matrix{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

func to8(v float64) uint8 {
	return uint8(math.Round(v * 255))
}
