package render

import (
	"image"
	"image/color"

	"github.com/borealis-gfx/borealis/comm"
	"github.com/chewxy/math32"
)

// A tile holds one rank's (or the composited) frame contribution: an RGBA
// color plane and a depth plane. Pixels not covered by any geometry keep a
// depth of +Inf and the background color.
type Tile struct {
	W, H int

	// RGBA samples, 4 floats per pixel, row-major.
	Color []float32

	// Hit distance per pixel.
	Depth []float32
}

// Create an empty tile with all pixels at infinite depth.
func NewTile(w, h int) *Tile {
	t := &Tile{
		W:     w,
		H:     h,
		Color: make([]float32, w*h*4),
		Depth: make([]float32, w*h),
	}
	for i := range t.Depth {
		t.Depth[i] = math32.Inf(1)
	}
	return t
}

// Merge composites another rank's tile into this one using a
// nearest-depth-wins test. Depth ties resolve to the componentwise minimum
// color so that the operation stays commutative and rank completion order
// cannot leak into the composited image.
func (t *Tile) Merge(other comm.Payload) error {
	o, ok := other.(*Tile)
	if !ok || o.W != t.W || o.H != t.H {
		return ErrTileMismatch
	}

	for i := range t.Depth {
		switch {
		case o.Depth[i] < t.Depth[i]:
			t.Depth[i] = o.Depth[i]
			copy(t.Color[i*4:i*4+4], o.Color[i*4:i*4+4])
		case o.Depth[i] == t.Depth[i]:
			for c := 0; c < 4; c++ {
				if o.Color[i*4+c] < t.Color[i*4+c] {
					t.Color[i*4+c] = o.Color[i*4+c]
				}
			}
		}
	}
	return nil
}

// Clone returns a deep copy of the tile.
func (t *Tile) Clone() comm.Payload {
	out := &Tile{
		W:     t.W,
		H:     t.H,
		Color: make([]float32, len(t.Color)),
		Depth: make([]float32, len(t.Depth)),
	}
	copy(out.Color, t.Color)
	copy(out.Depth, t.Depth)
	return out
}

// CopyFrom overwrites the tile contents with another tile's planes. Both
// tiles must share the same dimensions.
func (t *Tile) CopyFrom(o *Tile) error {
	if o.W != t.W || o.H != t.H {
		return ErrTileMismatch
	}
	copy(t.Color, o.Color)
	copy(t.Depth, o.Depth)
	return nil
}

// RGBA converts the color plane to an 8-bit image, clamping samples to [0,1].
func (t *Tile) RGBA() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, t.W, t.H))
	for i := 0; i < t.W*t.H; i++ {
		img.SetRGBA(i%t.W, i/t.W, color.RGBA{
			R: clampByte(t.Color[i*4]),
			G: clampByte(t.Color[i*4+1]),
			B: clampByte(t.Color[i*4+2]),
			A: clampByte(t.Color[i*4+3]),
		})
	}
	return img
}

// DepthImage maps the depth plane to an 8-bit grayscale image. Finite depths
// are compressed with d -> 1/(1+d) so near surfaces render bright; uncovered
// pixels come out black.
func (t *Tile) DepthImage() *image.Gray {
	img := image.NewGray(image.Rect(0, 0, t.W, t.H))
	for i, d := range t.Depth {
		var v float32
		if !math32.IsInf(d, 1) {
			v = 1.0 / (1.0 + d)
		}
		img.SetGray(i%t.W, i/t.W, color.Gray{Y: clampByte(v)})
	}
	return img
}

func clampByte(v float32) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(v * 255.0)
}
