package game

import (
	"math"

	"github.com/taigrr/tunnelrun/pkg/math3d"
	"github.com/taigrr/tunnelrun/pkg/tunnel"
)

// CameraRig is the camera riding a segment's centerline at a steering angle
// and distance from the center.
type CameraRig struct {
	// Placement in world space
	Eye     math3d.Vec3
	Centre  math3d.Vec3 // centerline point under the camera
	Forward math3d.Vec3
	Up      math3d.Vec3

	// Projection parameters
	FOV         float64 // Vertical field of view in radians
	AspectRatio float64 // Width / Height
	Near        float64 // Near clipping plane
	Far         float64 // Far clipping plane

	// Cached matrices (computed on demand)
	viewMatrix     math3d.Mat4
	projMatrix     math3d.Mat4
	viewProjMatrix math3d.Mat4
	viewDirty      bool
	projDirty      bool
	viewProjDirty  bool
}

// NewCameraRig creates a camera with default projection settings.
func NewCameraRig() *CameraRig {
	return &CameraRig{
		Forward:     math3d.V3(0, 0, -1),
		Up:          math3d.V3(0, 1, 0),
		FOV:         45 * math.Pi / 180,
		AspectRatio: 16.0 / 9.0,
		Near:        0.1,
		Far:         1000,
		viewDirty:   true,
		projDirty:   true,
	}
}

// Follow places the camera radius units out from the centerline of seg at
// progress deg, in the direction picked by radial.
func (c *CameraRig) Follow(seg *tunnel.Segment, deg, radial, radius float64) {
	c.Centre = seg.PositionAt(deg)
	c.Up = seg.UpAt(deg, radial)
	c.Forward = seg.ForwardAt(deg)
	c.Eye = c.Centre.Add(c.Up.Scale(radius))
	c.viewDirty = true
}

// SetFOV sets the field of view (in radians).
func (c *CameraRig) SetFOV(fov float64) {
	c.FOV = fov
	c.projDirty = true
}

// SetAspectRatio sets the aspect ratio.
func (c *CameraRig) SetAspectRatio(aspect float64) {
	if aspect == c.AspectRatio {
		return
	}
	c.AspectRatio = aspect
	c.projDirty = true
}

// SetClipPlanes sets the near and far clipping planes.
func (c *CameraRig) SetClipPlanes(near, far float64) {
	c.Near = near
	c.Far = far
	c.projDirty = true
}

// ViewMatrix returns the view matrix.
func (c *CameraRig) ViewMatrix() math3d.Mat4 {
	if c.viewDirty {
		c.viewMatrix = math3d.LookAt(c.Eye, c.Eye.Add(c.Forward), c.Up)
		c.viewDirty = false
		c.viewProjDirty = true
	}
	return c.viewMatrix
}

// ProjectionMatrix returns the projection matrix.
func (c *CameraRig) ProjectionMatrix() math3d.Mat4 {
	if c.projDirty {
		c.projMatrix = math3d.Perspective(c.FOV, c.AspectRatio, c.Near, c.Far)
		c.projDirty = false
		c.viewProjDirty = true
	}
	return c.projMatrix
}

// ViewProjectionMatrix returns the combined view-projection matrix.
func (c *CameraRig) ViewProjectionMatrix() math3d.Mat4 {
	proj, view := c.ProjectionMatrix(), c.ViewMatrix()
	if c.viewProjDirty {
		c.viewProjMatrix = proj.Mul(view)
		c.viewProjDirty = false
	}
	return c.viewProjMatrix
}
