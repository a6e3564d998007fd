package renderer

import (
	"fmt"
	"math"
	"sync"
	"unsafe"

	"github.com/charmbracelet/harmonica"
	"github.com/go-gl/gl/v2.1/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/lumen-render/lumen/scene"
	"github.com/lumen-render/lumen/tracer"
	"github.com/lumen-render/lumen/types"
)

const (
	// Coefficients for converting delta cursor movements to yaw/pitch camera angles.
	mouseSensitivityX float32 = 0.005
	mouseSensitivityY float32 = 0.005

	// Camera movement step per key press, in meters.
	cameraMoveStep = 0.05

	// Spring parameters for smoothing camera movement. Critically damped so
	// the viewpoint settles without overshooting past the target.
	moveSpringFrequency = 6.0
	moveSpringDamping   = 1.0

	// Refresh rate assumed by the movement springs.
	interactiveFPS = 60

	// Movement deltas below this threshold do not trigger a camera update.
	moveEpsilon = 1e-5
)

// A spring-tracked movement axis: the axis position chases the target set by
// the key handlers.
type moveSpring struct {
	spring harmonica.Spring

	pos    float64
	vel    float64
	target float64
}

func newMoveSpring() moveSpring {
	return moveSpring{
		spring: harmonica.NewSpring(harmonica.FPS(interactiveFPS), moveSpringFrequency, moveSpringDamping),
	}
}

// Advance the spring one frame and return the position delta.
func (m *moveSpring) update() float64 {
	prev := m.pos
	m.pos, m.vel = m.spring.Update(m.pos, m.vel, m.target)
	return m.pos - prev
}

// An interactive opengl-based renderer.
type interactiveGLRenderer struct {
	*defaultRenderer

	// opengl handles
	window *glfw.Window
	texFbo uint32

	// state
	camera        *scene.Camera
	lastCursorPos types.Vec2
	mousePressed  bool

	// smoothed movement along the camera forward/right axes
	moveForward moveSpring
	moveRight   moveSpring

	// mutex for synchronizing updates
	sync.Mutex
}

// Create a new interactive opengl renderer using the specified block
// scheduler. The caller must have locked the main OS thread.
func NewInteractive(sc *scene.Scene, scheduler tracer.BlockScheduler, opts Options) (Renderer, error) {
	base, err := newDefault(sc, scheduler, opts)
	if err != nil {
		return nil, err
	}

	r := &interactiveGLRenderer{
		defaultRenderer: base,
		camera:          sc.Camera,
		moveForward:     newMoveSpring(),
		moveRight:       newMoveSpring(),
	}

	if err = r.initGL(opts); err != nil {
		r.Close()
		return nil, err
	}

	return r, nil
}

func (r *interactiveGLRenderer) Close() {
	if r.window != nil {
		r.window.SetShouldClose(true)
	}
	r.defaultRenderer.Close()
}

func (r *interactiveGLRenderer) initGL(opts Options) error {
	var err error
	if err = glfw.Init(); err != nil {
		return fmt.Errorf("failed to initialize glfw: %s", err.Error())
	}

	glfw.WindowHint(glfw.Resizable, glfw.False)
	glfw.WindowHint(glfw.ContextVersionMajor, 2)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	r.window, err = glfw.CreateWindow(int(opts.FrameW), int(opts.FrameH), "lumen", nil, nil)
	if err != nil {
		return fmt.Errorf("could not create opengl window: %s", err.Error())
	}
	r.window.MakeContextCurrent()

	if err = gl.Init(); err != nil {
		return fmt.Errorf("could not init opengl: %s", err.Error())
	}

	// Setup texture for image data
	var fbTexture uint32
	gl.GenTextures(1, &fbTexture)
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, fbTexture)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, int32(opts.FrameW), int32(opts.FrameH), 0, gl.RGBA, gl.UNSIGNED_BYTE, nil)

	// Attach texture to FBO
	gl.GenFramebuffers(1, &r.texFbo)
	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, r.texFbo)
	gl.FramebufferTexture2D(gl.READ_FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, fbTexture, 0)
	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, 0)

	// Bind event callbacks
	r.window.SetInputMode(glfw.CursorMode, glfw.CursorNormal)
	r.window.SetKeyCallback(r.onKeyEvent)
	r.window.SetMouseButtonCallback(r.onMouseEvent)
	r.window.SetCursorPosCallback(r.onCursorPosEvent)

	return nil
}

func (r *interactiveGLRenderer) Render() error {
	frameW := int32(r.options.FrameW)
	frameH := int32(r.options.FrameH)

	for !r.window.ShouldClose() {
		glfw.PollEvents()
		r.applyMovement()

		// Render next frame
		r.Lock()
		if err := r.defaultRenderer.Render(); err != nil {
			r.Unlock()
			return err
		}

		// Upload frame data and copy it to the window framebuffer
		frame := r.Frame()
		gl.TexSubImage2D(gl.TEXTURE_2D, 0, 0, 0, frameW, frameH, gl.RGBA, gl.UNSIGNED_BYTE, unsafe.Pointer(&frame.Pix[0]))
		gl.BindFramebuffer(gl.READ_FRAMEBUFFER, r.texFbo)
		gl.BlitFramebuffer(0, 0, frameW, frameH, 0, 0, frameW, frameH, gl.COLOR_BUFFER_BIT, gl.LINEAR)
		gl.BindFramebuffer(gl.READ_FRAMEBUFFER, 0)

		r.window.SwapBuffers()
		r.Unlock()
	}
	return nil
}

// Advance the movement springs and translate the camera along its basis by
// the resulting deltas.
func (r *interactiveGLRenderer) applyMovement() {
	deltaForward := r.moveForward.update()
	deltaRight := r.moveRight.update()
	if math.Abs(deltaForward)+math.Abs(deltaRight) < moveEpsilon {
		return
	}

	r.Lock()
	defer r.Unlock()

	forward, right := r.camera.Basis()
	offset := forward.Mul(float32(deltaForward)).Add(right.Mul(float32(deltaRight)))
	r.camera.Translate(offset)
	r.updateCamera(r.camera)
}

func (r *interactiveGLRenderer) onKeyEvent(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
	if action != glfw.Press && action != glfw.Repeat {
		return
	}

	// Double speed if shift is pressed
	var step float64 = cameraMoveStep
	if (mods & glfw.ModShift) == glfw.ModShift {
		step *= 2.0
	}

	switch key {
	case glfw.KeyEscape:
		r.window.SetShouldClose(true)
	case glfw.KeyUp, glfw.KeyW:
		r.moveForward.target += step
	case glfw.KeyDown, glfw.KeyS:
		r.moveForward.target -= step
	case glfw.KeyLeft, glfw.KeyA:
		r.moveRight.target -= step
	case glfw.KeyRight, glfw.KeyD:
		r.moveRight.target += step
	}
}

func (r *interactiveGLRenderer) onMouseEvent(w *glfw.Window, button glfw.MouseButton, action glfw.Action, mod glfw.ModifierKey) {
	if button != glfw.MouseButtonLeft {
		return
	}

	if action == glfw.Press {
		xPos, yPos := w.GetCursorPos()
		r.lastCursorPos[0], r.lastCursorPos[1] = float32(xPos), float32(yPos)
		r.mousePressed = true
	} else {
		r.mousePressed = false
	}
}

func (r *interactiveGLRenderer) onCursorPosEvent(w *glfw.Window, xPos, yPos float64) {
	if !r.mousePressed {
		return
	}

	// Calculate delta movement and apply mouse sensitivity
	newPos := types.Vec2{float32(xPos), float32(yPos)}
	delta := r.lastCursorPos.Sub(newPos)
	delta[0] *= mouseSensitivityX
	delta[1] *= mouseSensitivityY
	r.lastCursorPos = newPos

	r.Lock()
	defer r.Unlock()

	// The left mouse button rotates lookat around eye
	r.camera.Pitch = delta[1]
	r.camera.Yaw = delta[0]
	r.camera.Update()
	r.updateCamera(r.camera)
}
