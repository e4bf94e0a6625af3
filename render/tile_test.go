package render

import (
	"testing"

	"github.com/chewxy/math32"
)

func TestTileMergeNearestDepthWins(t *testing.T) {
	near := NewTile(2, 1)
	near.Depth[0] = 1.0
	near.Color[0], near.Color[1], near.Color[2], near.Color[3] = 1, 0, 0, 1

	far := NewTile(2, 1)
	far.Depth[0] = 5.0
	far.Color[0], far.Color[1], far.Color[2], far.Color[3] = 0, 1, 0, 1
	far.Depth[1] = 2.0
	far.Color[4], far.Color[5], far.Color[6], far.Color[7] = 0, 0, 1, 1

	merged := near.Clone().(*Tile)
	if err := merged.Merge(far); err != nil {
		t.Fatal(err)
	}

	// Pixel 0: the near tile's surface wins.
	if merged.Depth[0] != 1.0 || merged.Color[0] != 1 || merged.Color[1] != 0 {
		t.Fatalf("expected near surface to win pixel 0; got depth %f color %v", merged.Depth[0], merged.Color[0:4])
	}

	// Pixel 1: only the far tile covered it.
	if merged.Depth[1] != 2.0 || merged.Color[6] != 1 {
		t.Fatalf("expected far surface to cover pixel 1; got depth %f color %v", merged.Depth[1], merged.Color[4:8])
	}
}

// Merging tiles in either order must produce identical planes; this is what
// makes rank completion order invisible in the composited frame.
func TestTileMergeCommutative(t *testing.T) {
	type spec struct {
		depthA, depthB float32
		colorA, colorB [4]float32
	}
	specs := []spec{
		// Distinct depths.
		spec{1, 2, [4]float32{1, 0, 0, 1}, [4]float32{0, 1, 0, 1}},
		// Depth tie with differing colors.
		spec{3, 3, [4]float32{0.8, 0.1, 0.4, 1}, [4]float32{0.2, 0.9, 0.4, 1}},
		// One side uncovered.
		spec{math32.Inf(1), 4, [4]float32{0, 0, 0, 0}, [4]float32{0.5, 0.5, 0.5, 1}},
	}

	for index, s := range specs {
		a := NewTile(1, 1)
		a.Depth[0] = s.depthA
		copy(a.Color, s.colorA[:])

		b := NewTile(1, 1)
		b.Depth[0] = s.depthB
		copy(b.Color, s.colorB[:])

		ab := a.Clone().(*Tile)
		if err := ab.Merge(b); err != nil {
			t.Fatal(err)
		}
		ba := b.Clone().(*Tile)
		if err := ba.Merge(a); err != nil {
			t.Fatal(err)
		}

		if ab.Depth[0] != ba.Depth[0] {
			t.Fatalf("[spec %d] merge order changed depth: %f vs %f", index, ab.Depth[0], ba.Depth[0])
		}
		for c := 0; c < 4; c++ {
			if ab.Color[c] != ba.Color[c] {
				t.Fatalf("[spec %d] merge order changed color channel %d: %f vs %f", index, c, ab.Color[c], ba.Color[c])
			}
		}
	}
}

func TestTileMergeDimensionMismatch(t *testing.T) {
	a := NewTile(2, 2)
	b := NewTile(3, 2)
	if err := a.Merge(b); err != ErrTileMismatch {
		t.Fatalf("expected ErrTileMismatch; got %v", err)
	}
}
