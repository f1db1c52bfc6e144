package card

import (
	"math"
	"testing"

	"github.com/matzehuels/polaroid/pkg/errors"
)

func TestDefaultSpec(t *testing.T) {
	s := DefaultSpec()
	if err := s.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	w, h := s.Size()
	if w != 709 || h != 945 {
		t.Errorf("Size() = %dx%d, want 709x945", w, h)
	}
	ww, wh := s.Window()
	if ww != 614 || wh != 614 {
		t.Errorf("Window() = %dx%d, want 614x614", ww, wh)
	}
	if got := s.CSSScale(); math.Abs(got-3.125) > 1e-9 {
		t.Errorf("CSSScale() = %v, want 3.125", got)
	}
}

func TestSpecFor(t *testing.T) {
	s := SpecFor(6.5, 8.7, 150)
	if err := s.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if math.Abs(s.PaddingCM-0.4*6.5/6) > 1e-9 {
		t.Errorf("PaddingCM = %v, want scaled by width", s.PaddingCM)
	}
	if math.Abs(s.PhotoHeightCM-5.2*8.7/8) > 1e-9 {
		t.Errorf("PhotoHeightCM = %v, want scaled by height", s.PhotoHeightCM)
	}

	if ref := SpecFor(DefaultWidthCM, DefaultHeightCM, DefaultDPI); ref != DefaultSpec() {
		t.Errorf("SpecFor(reference) = %+v, want DefaultSpec()", ref)
	}
}

func TestSpecValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Spec)
	}{
		{"zero dpi", func(s *Spec) { s.DPI = 0 }},
		{"zero width", func(s *Spec) { s.WidthCM = 0 }},
		{"negative height", func(s *Spec) { s.HeightCM = -1 }},
		{"padding too wide", func(s *Spec) { s.PaddingCM = 3 }},
		{"photo too tall", func(s *Spec) { s.PhotoHeightCM = 7.9 }},
		{"no photo", func(s *Spec) { s.PhotoHeightCM = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DefaultSpec()
			tt.mutate(&s)
			if err := s.Validate(); !errors.Is(err, errors.ErrCodeInvalidInput) {
				t.Errorf("Validate() = %v, want INVALID_INPUT", err)
			}
		})
	}
}
