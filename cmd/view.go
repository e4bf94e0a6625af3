package cmd

import (
	"fmt"
	"runtime"

	"github.com/borealis-gfx/borealis/comm"
	"github.com/borealis-gfx/borealis/render"
	"github.com/borealis-gfx/borealis/sg"
	"github.com/go-gl/gl/v2.1/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/urfave/cli"
)

const (
	// Coefficients for converting delta cursor movements to yaw/pitch camera angles.
	mouseSensitivityX float32 = 0.005
	mouseSensitivityY float32 = 0.005

	// Camera movement speed
	cameraMoveSpeed float32 = 0.05
)

// Use opengl to display a continuously updating view of the composited
// frame buffer. Camera moves trigger navigation-resolution frames; once the
// camera settles the next frame renders full size. Single rank only.
func RenderInteractive(ctx *cli.Context) error {
	setupLogging(ctx)

	frameW := ctx.Int("width")
	frameH := ctx.Int("height")

	comms, err := comm.NewLocalGroup(1)
	if err != nil {
		return err
	}

	sess := sg.NewSession(comms[0])
	frame, err := buildDemoScene(sess, frameW, frameH)
	if err != nil {
		return err
	}
	defer frame.Release()
	frame.ImmediatelyWait = true

	// Init opengl
	runtime.LockOSThread()
	if err = glfw.Init(); err != nil {
		return fmt.Errorf("failed to initialize glfw: %v", err)
	}
	defer glfw.Terminate()

	glfw.WindowHint(glfw.Resizable, glfw.False)
	window, err := glfw.CreateWindow(frameW, frameH, "borealis", nil, nil)
	if err != nil {
		return fmt.Errorf("could not create opengl window: %v", err)
	}
	window.MakeContextCurrent()

	if err = gl.Init(); err != nil {
		return fmt.Errorf("could not init opengl: %v", err)
	}

	camera := frame.Camera()
	posNode, _ := camera.Child("position")
	dirNode, _ := camera.Child("direction")
	upNode, _ := camera.Child("up")

	// Keyboard camera movement: each move writes the camera values back
	// into the graph, which flags a scene change and makes the next frame
	// render at navigation resolution.
	window.SetKeyCallback(func(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
		if action != glfw.Press && action != glfw.Repeat {
			return
		}

		var dolly, truck float32
		switch key {
		case glfw.KeyEscape:
			window.SetShouldClose(true)
			return
		case glfw.KeyUp:
			dolly = cameraMoveSpeed
		case glfw.KeyDown:
			dolly = -cameraMoveSpeed
		case glfw.KeyLeft:
			truck = -cameraMoveSpeed
		case glfw.KeyRight:
			truck = cameraMoveSpeed
		default:
			return
		}

		// Double speed if shift is pressed
		if (mods & glfw.ModShift) == glfw.ModShift {
			dolly *= 2
			truck *= 2
		}

		cam := render.Camera{
			Position:  posNode.Value().Vec3f(),
			Direction: dirNode.Value().Vec3f(),
			Up:        upNode.Value().Vec3f(),
		}
		cam.Move(dolly, truck, 0)
		posNode.SetValue(cam.Position)
	})

	var lastCursor [2]float64
	var mousePressed bool
	window.SetMouseButtonCallback(func(w *glfw.Window, button glfw.MouseButton, action glfw.Action, mod glfw.ModifierKey) {
		if button != glfw.MouseButtonLeft {
			return
		}
		if action == glfw.Press {
			lastCursor[0], lastCursor[1] = w.GetCursorPos()
			mousePressed = true
		} else {
			mousePressed = false
		}
	})
	window.SetCursorPosCallback(func(w *glfw.Window, xPos, yPos float64) {
		if !mousePressed {
			return
		}

		yaw := float32(lastCursor[0]-xPos) * mouseSensitivityX
		pitch := float32(lastCursor[1]-yPos) * mouseSensitivityY
		lastCursor[0], lastCursor[1] = xPos, yPos

		cam := render.Camera{
			Position:  posNode.Value().Vec3f(),
			Direction: dirNode.Value().Vec3f(),
			Up:        upNode.Value().Vec3f(),
		}
		cam.Rotate(yaw, pitch)
		dirNode.SetValue(cam.Direction)
	})

	// Enter render loop
	for !window.ShouldClose() {
		if err = frame.StartNewFrame(); err != nil {
			return err
		}

		tile, err := frame.MapFrame()
		if err != nil {
			return err
		}
		img := tile.RGBA()

		// Draw the frame scaled to the window; navigation frames are
		// smaller than the window and get zoomed up.
		gl.ClearColor(0, 0, 0, 1)
		gl.Clear(gl.COLOR_BUFFER_BIT)
		gl.RasterPos2f(-1, 1)
		gl.PixelZoom(float32(frameW)/float32(tile.W), -float32(frameH)/float32(tile.H))
		gl.DrawPixels(int32(tile.W), int32(tile.H), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(img.Pix))

		window.SwapBuffers()
		glfw.PollEvents()
	}

	return nil
}
