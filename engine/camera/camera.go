package camera

import (
	"math"
	"sync"

	"github.com/Carmen-Shannon/oxy-scene/engine/scene"

	"github.com/go-gl/mathgl/mgl32"
)

type cameraImpl struct {
	mu *sync.Mutex

	up mgl32.Vec3

	fov    float32
	aspect float32
	near   float32
	far    float32

	target    mgl32.Vec3
	radius    float32
	azimuth   float32 // Horizontal angle around Y axis
	elevation float32 // Vertical angle from horizontal plane

	// extent is the radius of the sphere last framed; it sizes the clip planes and zoom range.
	extent float32

	minElevation float32
	maxElevation float32
	orbitSpeed   float32
	zoomSpeed    float32

	viewMatrix           mgl32.Mat4
	projectionMatrix     mgl32.Mat4
	viewProjectionMatrix mgl32.Mat4
}

// Camera is a perspective camera orbiting a target point.
// The eye sits on a sphere around the target given by radius, azimuth and elevation;
// azimuth 0 and elevation 0 look down -Z from the +Z side.
type Camera interface {
	// Fov returns the vertical field of view in radians.
	//
	// Returns:
	//   - float32: field of view in radians
	Fov() float32

	// Aspect returns the aspect ratio (width / height).
	//
	// Returns:
	//   - float32: the aspect ratio
	Aspect() float32

	// Near returns the near clipping plane distance.
	Near() float32

	// Far returns the far clipping plane distance.
	Far() float32

	// Position returns the eye position.
	//
	// Returns:
	//   - mgl32.Vec3: the eye in world space
	Position() mgl32.Vec3

	// Target returns the point the camera orbits and looks at.
	//
	// Returns:
	//   - mgl32.Vec3: the target in world space
	Target() mgl32.Vec3

	// Radius returns the eye distance from the target.
	Radius() float32

	// ViewMatrix returns the current view matrix.
	//
	// Returns:
	//   - mgl32.Mat4: the view matrix
	ViewMatrix() mgl32.Mat4

	// ProjectionMatrix returns the current projection matrix.
	//
	// Returns:
	//   - mgl32.Mat4: the projection matrix
	ProjectionMatrix() mgl32.Mat4

	// ViewProjectionMatrix returns projection * view.
	//
	// Returns:
	//   - mgl32.Mat4: the combined matrix
	ViewProjectionMatrix() mgl32.Mat4

	// Frustum returns the view volume of the current matrices.
	//
	// Returns:
	//   - scene.Frustum: the inward-facing clip planes
	Frustum() scene.Frustum

	// Frame targets the center of a box and moves the eye back along the current orbit
	// direction until the box's bounding sphere fits the narrower field of view.
	//
	// Parameters:
	//   - lo: the box minimum
	//   - hi: the box maximum
	Frame(lo, hi mgl32.Vec3)

	// SetAspect sets the aspect ratio (width / height) and recomputes matrices.
	//
	// Parameters:
	//   - aspect: the aspect ratio, non-positive values are ignored
	SetAspect(aspect float32)

	// SetFov sets the vertical field of view in radians and recomputes matrices.
	//
	// Parameters:
	//   - fov: field of view in radians
	SetFov(fov float32)

	// OrbitLeft turns the eye one orbit step around the target's Y axis.
	OrbitLeft()

	// OrbitRight turns the eye one orbit step the other way.
	OrbitRight()

	// OrbitUp raises the eye one orbit step, clamped to the elevation bounds.
	OrbitUp()

	// OrbitDown lowers the eye one orbit step, clamped to the elevation bounds.
	OrbitDown()

	// Zoom moves the eye toward the target for positive delta and away for negative delta.
	// The radius stays within a tenth and ten times the framed distance.
	//
	// Parameters:
	//   - delta: zoom steps
	Zoom(delta float32)
}

var _ Camera = &cameraImpl{}

// NewCamera creates a new Camera with default perspective settings, looking at the origin
// from 5 units along +Z.
//
// Parameters:
//   - options: functional options to configure the camera
//
// Returns:
//   - Camera: the newly created camera
func NewCamera(options ...CameraBuilderOption) Camera {
	c := &cameraImpl{
		mu:           &sync.Mutex{},
		up:           mgl32.Vec3{0, 1, 0},
		fov:          45.0 * (math.Pi / 180.0), // radians
		aspect:       1.0,
		radius:       5,
		extent:       1,
		minElevation: -1.5,
		maxElevation: 1.5,
		orbitSpeed:   0.05,
		zoomSpeed:    0.1,
	}
	for _, option := range options {
		option(c)
	}
	c.updateMatrices()
	return c
}

func (c *cameraImpl) Fov() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fov
}

func (c *cameraImpl) Aspect() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.aspect
}

func (c *cameraImpl) Near() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.near
}

func (c *cameraImpl) Far() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.far
}

func (c *cameraImpl) Position() mgl32.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.position()
}

func (c *cameraImpl) Target() mgl32.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.target
}

func (c *cameraImpl) Radius() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.radius
}

func (c *cameraImpl) ViewMatrix() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewMatrix
}

func (c *cameraImpl) ProjectionMatrix() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.projectionMatrix
}

func (c *cameraImpl) ViewProjectionMatrix() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewProjectionMatrix
}

func (c *cameraImpl) Frustum() scene.Frustum {
	return scene.NewFrustum(c.ViewProjectionMatrix())
}

func (c *cameraImpl) Frame(lo, hi mgl32.Vec3) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.target = lo.Add(hi).Mul(0.5)
	c.extent = max(hi.Sub(lo).Len()/2, 0.001)

	half := float64(c.fov) / 2
	if c.aspect < 1 {
		half = math.Atan(math.Tan(half) * float64(c.aspect))
	}
	c.radius = c.extent / float32(math.Sin(half))
	c.updateMatrices()
}

func (c *cameraImpl) SetAspect(aspect float32) {
	if aspect <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.aspect = aspect
	c.updateMatrices()
}

func (c *cameraImpl) SetFov(fov float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fov = fov
	c.updateMatrices()
}

func (c *cameraImpl) OrbitLeft() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.azimuth -= c.orbitSpeed
	c.updateMatrices()
}

func (c *cameraImpl) OrbitRight() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.azimuth += c.orbitSpeed
	c.updateMatrices()
}

func (c *cameraImpl) OrbitUp() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.elevation = min(c.elevation+c.orbitSpeed, c.maxElevation)
	c.updateMatrices()
}

func (c *cameraImpl) OrbitDown() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.elevation = max(c.elevation-c.orbitSpeed, c.minElevation)
	c.updateMatrices()
}

func (c *cameraImpl) Zoom(delta float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	framed := c.extent / float32(math.Sin(float64(c.fov)/2))
	c.radius = mgl32.Clamp(c.radius*(1-delta*c.zoomSpeed), framed/10, framed*10)
	c.updateMatrices()
}

// position computes the eye from spherical coordinates. Caller must hold the mutex.
func (c *cameraImpl) position() mgl32.Vec3 {
	cosElev := float32(math.Cos(float64(c.elevation)))
	sinElev := float32(math.Sin(float64(c.elevation)))
	cosAzim := float32(math.Cos(float64(c.azimuth)))
	sinAzim := float32(math.Sin(float64(c.azimuth)))

	return c.target.Add(mgl32.Vec3{
		c.radius * cosElev * sinAzim,
		c.radius * sinElev,
		c.radius * cosElev * cosAzim,
	})
}

// updateMatrices recalculates the clip planes and the view, projection and view-projection
// matrices. The clip planes bracket the framed sphere. Caller must hold the mutex.
func (c *cameraImpl) updateMatrices() {
	c.near = max(c.radius-c.extent, c.radius/100)
	c.far = c.radius + c.extent

	c.viewMatrix = mgl32.LookAtV(c.position(), c.target, c.up)
	c.projectionMatrix = mgl32.Perspective(c.fov, c.aspect, c.near, c.far)
	c.viewProjectionMatrix = c.projectionMatrix.Mul4(c.viewMatrix)
}
