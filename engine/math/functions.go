package math

import (
	m "math"

	"github.com/go-gl/mathgl/mgl32"
)

/** @brief A multiplier used to convert degrees to radians. */
const K_DEG2RAD_MULTIPLIER float32 = m.Pi / 180.0

/** @brief Default tolerance used when comparing matrices and points. */
const K_FLOAT_EPSILON float32 = 1e-4

// Axis selects one of the three principal rotation axes.
type Axis uint8

const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

func (a Axis) String() string {
	switch a {
	case AxisX:
		return "x"
	case AxisY:
		return "y"
	case AxisZ:
		return "z"
	}
	return "unknown"
}

/**
 * @brief Converts provided degrees to radians.
 */
func DegToRad(degrees float32) float32 {
	return degrees * K_DEG2RAD_MULTIPLIER
}

/**
 * @brief Creates a rotation matrix about a principal axis.
 *
 * @param axis The axis to rotate about.
 * @param degrees The angle, in degrees, counter-clockwise looking down the axis.
 * @return A homogeneous rotation matrix.
 */
func NewMat4Rotation(axis Axis, degrees float32) mgl32.Mat4 {
	rad := DegToRad(degrees)
	switch axis {
	case AxisX:
		return mgl32.HomogRotate3DX(rad)
	case AxisZ:
		return mgl32.HomogRotate3DZ(rad)
	default:
		return mgl32.HomogRotate3DY(rad)
	}
}

/**
 * @brief Creates a translation matrix from the given position.
 */
func NewMat4Translation(position mgl32.Vec3) mgl32.Mat4 {
	return mgl32.Translate3D(position[0], position[1], position[2])
}

/**
 * @brief Creates and returns a perspective matrix. Typically used to render 3d scenes.
 *
 * @param fovDegrees The vertical field of view in degrees.
 * @param aspectRatio The aspect ratio (width / height).
 * @param nearClip The near clipping plane distance.
 * @param farClip The far clipping plane distance.
 */
func NewMat4Perspective(fovDegrees, aspectRatio, nearClip, farClip float32) mgl32.Mat4 {
	return mgl32.Perspective(DegToRad(fovDegrees), aspectRatio, nearClip, farClip)
}

/**
 * @brief Creates and returns an orthographic projection matrix.
 */
func NewMat4Orthographic(left, right, bottom, top, nearClip, farClip float32) mgl32.Mat4 {
	return mgl32.Ortho(left, right, bottom, top, nearClip, farClip)
}

// TransformPoint applies m to p as a point (w = 1).
func TransformPoint(mat mgl32.Mat4, p mgl32.Vec3) mgl32.Vec3 {
	return mat.Mul4x1(p.Vec4(1)).Vec3()
}

// ProjectPoint applies m to p and performs the perspective divide. ok is
// false when the point lies on or behind the eye plane.
func ProjectPoint(mat mgl32.Mat4, p mgl32.Vec3) (ndc mgl32.Vec3, ok bool) {
	clip := mat.Mul4x1(p.Vec4(1))
	if clip[3] <= 0 {
		return mgl32.Vec3{}, false
	}
	return clip.Vec3().Mul(1 / clip[3]), true
}

// IsPureTranslation reports whether m has an identity linear block and no
// projective row, so it only moves points.
func IsPureTranslation(mat mgl32.Mat4, epsilon float32) bool {
	return mat.Mat3().ApproxEqualThreshold(mgl32.Ident3(), epsilon) &&
		mgl32.FloatEqualThreshold(mat[3], 0, epsilon) &&
		mgl32.FloatEqualThreshold(mat[7], 0, epsilon) &&
		mgl32.FloatEqualThreshold(mat[11], 0, epsilon) &&
		mgl32.FloatEqualThreshold(mat[15], 1, epsilon)
}
