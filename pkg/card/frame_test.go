package card

import (
	"image"
	"math"
	"testing"
)

func TestComputeFrame(t *testing.T) {
	tests := []struct {
		name       string
		srcW, srcH int
		winW, winH float64
		scale      float64
		posX, posY float64
		want       Frame
	}{
		{
			name: "cover centred",
			srcW: 100, srcH: 100, winW: 200, winH: 100,
			scale: 1, posX: 50, posY: 50,
			want: Frame{SrcX0: 0, SrcY0: 25, SrcX1: 100, SrcY1: 75, DstX0: 0, DstY0: 0, DstX1: 200, DstY1: 100},
		},
		{
			name: "cover top left",
			srcW: 100, srcH: 100, winW: 200, winH: 100,
			scale: 1, posX: 0, posY: 0,
			want: Frame{SrcX0: 0, SrcY0: 0, SrcX1: 100, SrcY1: 50, DstX0: 0, DstY0: 0, DstX1: 200, DstY1: 100},
		},
		{
			name: "zoomed out leaves gaps",
			srcW: 100, srcH: 100, winW: 200, winH: 100,
			scale: 0.5, posX: 50, posY: 50,
			want: Frame{SrcX0: 0, SrcY0: 0, SrcX1: 100, SrcY1: 100, DstX0: 50, DstY0: 0, DstX1: 150, DstY1: 100},
		},
		{
			name: "zoomed in crops",
			srcW: 100, srcH: 100, winW: 100, winH: 100,
			scale: 2, posX: 50, posY: 50,
			want: Frame{SrcX0: 25, SrcY0: 25, SrcX1: 75, SrcY1: 75, DstX0: 0, DstY0: 0, DstX1: 100, DstY1: 100},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeFrame(tt.srcW, tt.srcH, tt.winW, tt.winH, tt.scale, tt.posX, tt.posY)
			if !frameNear(got, tt.want) {
				t.Errorf("ComputeFrame() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestComputeFrameDegenerate(t *testing.T) {
	tests := []struct {
		name       string
		srcW, srcH int
		winW, winH float64
		scale      float64
	}{
		{"empty source", 0, 10, 100, 100, 1},
		{"empty window", 10, 10, 0, 100, 1},
		{"zero scale", 10, 10, 100, 100, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := ComputeFrame(tt.srcW, tt.srcH, tt.winW, tt.winH, tt.scale, 50, 50)
			if !f.Empty() {
				t.Errorf("ComputeFrame() = %+v, want empty frame", f)
			}
		})
	}
}

func TestFrameRects(t *testing.T) {
	f := Frame{SrcX0: 0.4, SrcY0: 1.6, SrcX1: 99.2, SrcY1: 120, DstX0: 10.4, DstY0: 0, DstX1: 50.6, DstY1: 40}

	if got, want := f.SrcRect(100, 100), image.Rect(0, 1, 100, 100); got != want {
		t.Errorf("SrcRect() = %v, want %v", got, want)
	}
	if got, want := f.DstRect(), image.Rect(10, 0, 51, 40); got != want {
		t.Errorf("DstRect() = %v, want %v", got, want)
	}
}

func frameNear(a, b Frame) bool {
	av := []float64{a.SrcX0, a.SrcY0, a.SrcX1, a.SrcY1, a.DstX0, a.DstY0, a.DstX1, a.DstY1}
	bv := []float64{b.SrcX0, b.SrcY0, b.SrcX1, b.SrcY1, b.DstX0, b.DstY0, b.DstX1, b.DstY1}
	for i := range av {
		if math.Abs(av[i]-bv[i]) > 1e-9 {
			return false
		}
	}
	return true
}
