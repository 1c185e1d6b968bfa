package debug

import (
	"github.com/Carmen-Shannon/oxy-glb/engine/camera"
)

// CameraFolderName is the folder BindCameraPosition creates.
const CameraFolderName = "Camera"

// BindCameraPosition adds a "Camera" folder with "position x", "position y" and "position z"
// bound to the controller's world position, each in [-10, 10] with a step of 0.01.
//
// Parameters:
//   - p: the panel to add the folder to
//   - ctrl: the controller whose position is exposed
//
// Returns:
//   - Folder: the camera folder
func BindCameraPosition(p Panel, ctrl camera.CameraController) Folder {
	f := p.AddFolder(CameraFolderName)
	for axis, name := range []string{"position x", "position y", "position z"} {
		f.Add(name,
			func() float32 { return ctrl.Position()[axis] },
			func(v float32) {
				pos := ctrl.Position()
				pos[axis] = v
				ctrl.SetPosition(pos)
			},
			WithRange(-10, 10),
			WithStep(0.01),
		)
	}
	return f
}
