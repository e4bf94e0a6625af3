package sg

import (
	"errors"
	"testing"

	"github.com/borealis-gfx/borealis/types"
)

func TestAddLight(t *testing.T) {
	lm := NewLightsManager()

	ambient, err := lm.AddLight("ambientlight", "ambient")
	if err != nil {
		t.Fatal(err)
	}
	if ambient.Type() != NodeLight || ambient.Subtype() != "ambient" {
		t.Fatalf("expected ambient light node; got %s/%s", ambient.Type(), ambient.Subtype())
	}

	// Lights start white with unit intensity.
	if color, _ := ambient.Param("color"); color.Vec3f() != types.XYZ(1, 1, 1) {
		t.Fatalf("expected default white color; got %v", color.Vec3f())
	}
	if intensity, _ := ambient.Param("intensity"); intensity.Float() != 1 {
		t.Fatalf("expected default unit intensity; got %f", intensity.Float())
	}

	sun, err := lm.AddLight("sun", "distant")
	if err != nil {
		t.Fatal(err)
	}
	if _, exists := sun.Param("direction"); !exists {
		t.Fatal("expected distant light to carry a default direction")
	}

	if _, err = lm.AddLight("plasma", "plasma"); !errors.Is(err, ErrUnknownLightKind) {
		t.Fatalf("expected ErrUnknownLightKind; got %v", err)
	}
	if _, err = lm.AddLight("sun", "ambient"); !errors.Is(err, ErrDuplicateName) {
		t.Fatalf("expected ErrDuplicateName; got %v", err)
	}
}

func TestUpdateWorld(t *testing.T) {
	world := newNode("world", "world", NodeWorld)
	lm := NewLightsManager()
	lm.AddLight("ambientlight", "ambient")
	lm.AddLight("sun", "distant")

	if err := lm.UpdateWorld(world); err != nil {
		t.Fatal(err)
	}
	lights, err := world.Child(worldLightsChild)
	if err != nil {
		t.Fatal(err)
	}
	if got := len(lights.Children()); got != 2 {
		t.Fatalf("expected 2 pushed lights; got %d", got)
	}

	// Pushing again with an unchanged manager replaces the previous set
	// instead of accumulating.
	if err := lm.UpdateWorld(world); err != nil {
		t.Fatal(err)
	}
	lights, _ = world.Child(worldLightsChild)
	if got := len(lights.Children()); got != 2 {
		t.Fatalf("expected push to be idempotent; got %d lights", got)
	}

	// Pushed lights are snapshots; later manager edits need another push.
	sun, _ := lm.Child("sun")
	sun.SetParam("intensity", float32(7))
	pushedSun, _ := lights.Child("sun")
	if intensity, _ := pushedSun.Param("intensity"); intensity.Float() != 1 {
		t.Fatalf("expected pushed light to be a snapshot; got intensity %f", intensity.Float())
	}

	if err := lm.UpdateWorld(nil); !errors.Is(err, ErrIncompleteScene) {
		t.Fatalf("expected ErrIncompleteScene for a nil world; got %v", err)
	}
	if err := lm.UpdateWorld(newNode("cam", "camera", NodeCamera)); !errors.Is(err, ErrIncompleteScene) {
		t.Fatalf("expected ErrIncompleteScene for a non-world node; got %v", err)
	}
}
