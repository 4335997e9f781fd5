package components

import (
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"

	kmath "github.com/spaghettifunk/teapots/engine/math"
)

type ProjectionMode uint8

const (
	ProjectionPerspective ProjectionMode = iota
	ProjectionOrthographic
)

func (p ProjectionMode) String() string {
	if p == ProjectionOrthographic {
		return "orthographic"
	}
	return "perspective"
}

func ParseProjectionMode(s string) (ProjectionMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "perspective":
		return ProjectionPerspective, nil
	case "orthographic", "ortho":
		return ProjectionOrthographic, nil
	}
	return ProjectionPerspective, errors.Errorf("unknown projection mode %q", s)
}

/** @brief Default vertical field of view, in degrees. */
const DEFAULT_FOV float32 = 45.0

/** @brief Default clipping planes. */
const (
	DEFAULT_NEAR_CLIP float32 = 0.1
	DEFAULT_FAR_CLIP  float32 = 180.0
)

/**
 * @brief The orthographic volume spans width/ORTHO_UNITS_DIVISOR scene units
 * horizontally and height/ORTHO_UNITS_DIVISOR vertically, centered on the eye.
 */
const ORTHO_UNITS_DIVISOR float32 = 10.0

/**
 * @brief Represents a camera that can be used for
 * a variety of things, especially rendering. Ideally,
 * these are created and managed by the camera system.
 */
type Camera struct {
	/**
	 * @brief The position of this camera.
	 * NOTE: Do not set this directly, use SetPosition() instead
	 * so the view matrix is recalculated when needed.
	 */
	Position mgl32.Vec3
	/**
	 * @brief The rotation of this camera using Euler angles in degrees (pitch, yaw, roll).
	 * NOTE: Do not set this directly, use SetEulerRotation() instead
	 * so the view matrix is recalculated when needed.
	 */
	EulerRotation mgl32.Vec3
	/** @brief Internal flag used to determine when the view matrix needs to be rebuilt. */
	IsDirty bool
	/**
	 * @brief The view matrix of this camera.
	 * NOTE: IMPORTANT: Do not get this directly, use GetView() instead
	 * so the view matrix is recalculated when needed.
	 */
	ViewMatrix mgl32.Mat4

	Mode   ProjectionMode
	FOV    float32
	Near   float32
	Far    float32
	Width  uint32
	Height uint32
}

type CameraLookup struct {
	ID             uint16
	ReferenceCount uint16
	Camera         *Camera
}

/** @brief The name of the default camera. */
const DEFAULT_CAMERA_NAME string = "default"

func NewCamera() *Camera {
	camera := &Camera{}
	camera.Reset()
	return camera
}

// Reset puts the camera at the origin looking down -Z with the default
// perspective over an 800x600 viewport.
func (c *Camera) Reset() {
	c.EulerRotation = mgl32.Vec3{}
	c.Position = mgl32.Vec3{}
	c.IsDirty = false
	c.ViewMatrix = mgl32.Ident4()
	c.Mode = ProjectionPerspective
	c.FOV = DEFAULT_FOV
	c.Near = DEFAULT_NEAR_CLIP
	c.Far = DEFAULT_FAR_CLIP
	c.Width = 800
	c.Height = 600
}

func (c *Camera) GetPosition() mgl32.Vec3 {
	return c.Position
}

func (c *Camera) SetPosition(position mgl32.Vec3) {
	c.Position = position
	c.IsDirty = true
}

func (c *Camera) GetEulerRotation() mgl32.Vec3 {
	return c.EulerRotation
}

func (c *Camera) SetEulerRotation(rotation mgl32.Vec3) {
	c.EulerRotation = rotation
	c.IsDirty = true
}

// GetView returns the inverse of the camera's world transform.
func (c *Camera) GetView() mgl32.Mat4 {
	if c.IsDirty {
		rotation := kmath.NewMat4Rotation(kmath.AxisX, c.EulerRotation[0]).
			Mul4(kmath.NewMat4Rotation(kmath.AxisY, c.EulerRotation[1])).
			Mul4(kmath.NewMat4Rotation(kmath.AxisZ, c.EulerRotation[2]))
		translation := kmath.NewMat4Translation(c.Position)

		c.ViewMatrix = translation.Mul4(rotation).Inv()
		c.IsDirty = false
	}
	return c.ViewMatrix
}

// SetViewport updates the size the aspect ratio is derived from.
func (c *Camera) SetViewport(width, height uint32) {
	c.Width = width
	c.Height = height
}

func (c *Camera) AspectRatio() float32 {
	if c.Height == 0 {
		return 1
	}
	return float32(c.Width) / float32(c.Height)
}

// GetProjection builds the projection matrix for the current mode and viewport.
func (c *Camera) GetProjection() mgl32.Mat4 {
	if c.Mode == ProjectionOrthographic {
		halfW := float32(c.Width) / ORTHO_UNITS_DIVISOR / 2
		halfH := float32(c.Height) / ORTHO_UNITS_DIVISOR / 2
		return kmath.NewMat4Orthographic(-halfW, halfW, -halfH, halfH, c.Near, c.Far)
	}
	return kmath.NewMat4Perspective(c.FOV, c.AspectRatio(), c.Near, c.Far)
}
