package math

import "github.com/go-gl/mathgl/mgl32"

// Transform is a single-axis rotation followed by a translation, which is all
// a node of the teapot hierarchy needs relative to its parent.
type Transform struct {
	Axis        Axis
	Degrees     float32
	Translation mgl32.Vec3
}

// Local returns T · R: points are rotated about the axis, then moved.
func (t Transform) Local() mgl32.Mat4 {
	return NewMat4Translation(t.Translation).Mul4(NewMat4Rotation(t.Axis, t.Degrees))
}

// Compose returns the global transform of a child: parent · local. The order
// matters; the child's local frame is expressed inside the parent's.
func Compose(parentGlobal, childLocal mgl32.Mat4) mgl32.Mat4 {
	return parentGlobal.Mul4(childLocal)
}
