package camera

import "github.com/go-gl/mathgl/mgl32"

type CameraBuilderOption func(*cameraImpl)

// WithFov sets the camera's vertical field of view in radians.
//
// Parameters:
//   - fov: field of view in radians
//
// Returns:
//   - CameraBuilderOption: a function that sets the camera's field of view
func WithFov(fov float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.fov = fov
	}
}

// WithAspect sets the camera's aspect ratio (width / height).
//
// Parameters:
//   - aspect: the aspect ratio to set
//
// Returns:
//   - CameraBuilderOption: a function that sets the camera's aspect ratio
func WithAspect(aspect float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		if aspect > 0 {
			c.aspect = aspect
		}
	}
}

// WithTarget sets the point the camera orbits.
//
// Parameters:
//   - target: the orbit center
//
// Returns:
//   - CameraBuilderOption: a function that sets the target
func WithTarget(target mgl32.Vec3) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.target = target
	}
}

// WithOrbit sets the initial spherical placement of the eye.
//
// Parameters:
//   - radius: distance from the target
//   - azimuth: horizontal angle in radians
//   - elevation: vertical angle in radians
//
// Returns:
//   - CameraBuilderOption: a function that places the eye
func WithOrbit(radius, azimuth, elevation float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.radius = radius
		c.azimuth = azimuth
		c.elevation = elevation
	}
}

// WithOrbitSpeed sets the angle in radians each orbit step turns.
//
// Parameters:
//   - speed: radians per step
//
// Returns:
//   - CameraBuilderOption: a function that sets the orbit speed
func WithOrbitSpeed(speed float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.orbitSpeed = speed
	}
}

// WithElevationBounds clamps the orbit elevation.
//
// Parameters:
//   - min: the lowest elevation in radians
//   - max: the highest elevation in radians
//
// Returns:
//   - CameraBuilderOption: a function that sets the elevation bounds
func WithElevationBounds(min, max float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.minElevation = min
		c.maxElevation = max
	}
}
