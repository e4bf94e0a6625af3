package cmd

import (
	"github.com/borealis-gfx/borealis/sg"
	"github.com/borealis-gfx/borealis/types"
)

// Build the demo scene for one rank: a camera looking down +Z at a strip of
// quads, one quad pair per rank, lit by a single ambient light. Each rank
// only owns its own slice of the geometry; compositing stitches the strips
// back together.
func buildDemoScene(sess *sg.Session, frameW, frameH int) (*sg.Frame, error) {
	rank := float32(sess.Rank())
	worldSize := float32(sess.WorldSize())

	frame, err := sg.NewFrame(sess)
	if err != nil {
		return nil, err
	}
	if _, err = frame.CreateChild("windowSize", "vec2i", types.Vec2i{int32(frameW), int32(frameH)}); err != nil {
		return nil, err
	}
	if _, err = frame.CreateChildAs("renderer", "renderer_mpiRaycast"); err != nil {
		return nil, err
	}

	camera := frame.Camera()
	camera.CreateChild("aspect", "float", float32(frameW)/float32(frameH))
	camera.CreateChild("position", "vec3f", types.XYZ((worldSize+1.0)/2.0, 0.5, -worldSize*0.5))
	camera.CreateChild("direction", "vec3f", types.XYZ(0, 0, 1))
	camera.CreateChild("up", "vec3f", types.XYZ(0, 1, 0))

	vertex := []types.Vec3{
		{rank, 0.0, 3.5},
		{rank, 1.0, 3.0},
		{rank + 1, 0.0, 3.0},
		{rank + 1, 1.0, 2.5},
	}
	shade := rank / worldSize
	color := []types.Vec4{
		{shade, 0.2, 1.0 - shade, 1.0},
		{shade, 0.2, 1.0 - shade, 1.0},
		{shade, 0.2, 1.0 - shade, 1.0},
		{shade, 0.2, 1.0 - shade, 1.0},
	}
	index := [][3]uint32{
		{0, 1, 2}, {1, 2, 3},
	}
	material := []uint32{0}

	world := frame.World()
	transform, err := world.CreateChild("xfm", "transform")
	if err != nil {
		return nil, err
	}
	geom, err := transform.CreateChild("mesh", "geometry_triangles")
	if err != nil {
		return nil, err
	}
	if _, err = geom.CreateChildData("vertex.position", vertex); err != nil {
		return nil, err
	}
	if _, err = geom.CreateChildData("vertex.color", color); err != nil {
		return nil, err
	}
	if _, err = geom.CreateChildData("index", index); err != nil {
		return nil, err
	}
	if _, err = geom.CreateChildData("material", material); err != nil {
		return nil, err
	}

	lightsMan := sg.NewLightsManager()
	if _, err = lightsMan.AddLight("ambientlight", "ambient"); err != nil {
		return nil, err
	}
	if err = lightsMan.UpdateWorld(world); err != nil {
		return nil, err
	}

	return frame, nil
}
