package engine

import (
	"github.com/Carmen-Shannon/oxy-glb/engine/camera"
	"github.com/Carmen-Shannon/oxy-glb/engine/window"
)

// installInput routes pointer input to the camera's orbit controller and key presses to the
// debug panel. Left drag orbits, right or middle drag pans and the scroll wheel zooms.
func (e *engine) installInput() {
	e.window.SetMouseDownCallback(func(button window.MouseButton, x, y float64) {
		ctrl := e.camera.Controller()
		if ctrl == nil {
			return
		}
		mode := camera.DragPan
		if button == window.MouseButtonLeft {
			mode = camera.DragOrbit
		}
		ctrl.BeginDrag(mode, x, y)
	})

	e.window.SetMouseUpCallback(func(_ window.MouseButton, _, _ float64) {
		if ctrl := e.camera.Controller(); ctrl != nil {
			ctrl.EndDrag()
		}
	})

	e.window.SetMouseMoveCallback(func(x, y float64) {
		if ctrl := e.camera.Controller(); ctrl != nil {
			ctrl.Drag(x, y)
		}
	})

	e.window.SetScrollCallback(func(delta float32) {
		if ctrl := e.camera.Controller(); ctrl != nil {
			ctrl.Zoom(delta)
		}
	})

	e.window.SetKeyDownCallback(func(keyCode uint32, mods window.Modifier) {
		if e.panel != nil {
			e.panel.HandleKey(keyCode, mods&window.ModShift != 0)
		}
	})
}
