package viewport

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// View and projection matrices are kept compatible with mapbox-gl
// (transform.js) so both render the same scene from the same camera
// parameters. With FarZMultiplier = 1 the projection matrix is identical.

const (
	// NearZ is the near clipping plane in altitude units.
	NearZ = 0.1
	// DefaultFarZMultiplier keeps tilted content inside the frustum.
	DefaultFarZMultiplier = 10
)

const degToRad = math.Pi / 180

type ProjectionParams struct {
	Width, Height float64
	// Pitch in degrees.
	Pitch float64
	// Altitude in screen heights.
	Altitude float64
	// FarZMultiplier scales the far plane. 0 means DefaultFarZMultiplier.
	FarZMultiplier float64
}

// ViewParams describe the camera of a view matrix. Angles in degrees.
type ViewParams struct {
	Height   float64
	Pitch    float64
	Bearing  float64
	Altitude float64
	// Center is the world position the camera looks at.
	Center mgl64.Vec3
	// FlipY converts world coordinates (Y down) to camera space (Y up).
	FlipY bool
}

// FieldOfView returns the vertical field of view in radians.
func FieldOfView(height, altitude float64) float64 {
	return 2 * math.Atan((height/2)/altitude)
}

// ClippingPlanes returns the near and far plane distances in altitude units
// for a camera at altitude with pitch degrees tilt.
func ClippingPlanes(altitude, pitch float64) (nearZ, farZ float64) {
	// distance from the center point to the center top in altitude
	// units, using the law of sines
	pitchRadians := pitch * degToRad
	halfFov := math.Atan(0.5 / altitude)
	topHalfSurfaceDistance := math.Sin(halfFov) * altitude / math.Sin(math.Pi/2-pitchRadians-halfFov)

	// z of the farthest fragment that should be rendered
	farZ = math.Cos(math.Pi/2-pitchRadians)*topHalfSurfaceDistance + altitude
	return NearZ, farZ
}

// ProjectionMatrix returns the perspective matrix that projects from camera
// space to clip space.
func ProjectionMatrix(p ProjectionParams) mgl64.Mat4 {
	farZMultiplier := p.FarZMultiplier
	if farZMultiplier == 0 {
		farZMultiplier = DefaultFarZMultiplier
	}
	nearZ, farZ := ClippingPlanes(p.Altitude, p.Pitch)
	return mgl64.Perspective(
		FieldOfView(p.Height, p.Altitude),
		p.Width/p.Height,
		nearZ,
		farZ*farZMultiplier,
	)
}

// UncenteredViewMatrix returns the camera placement without the translation
// to the map center.
//
// Matrix operations read in reverse, since vectors are multiplied from the
// right.
func UncenteredViewMatrix(height, pitch, bearing, altitude float64) mgl64.Mat4 {
	// move camera to altitude
	vm := mgl64.Translate3D(0, 0, -altitude)
	// after rotateX, z values are in pixel units. convert them to
	// altitude units, 1 altitude unit = the screen height.
	vm = vm.Mul4(mgl64.Scale3D(1, 1, 1/height))
	// rotate by bearing, then by pitch (which tilts the view)
	vm = vm.Mul4(mgl64.HomogRotate3DX(-pitch * degToRad))
	vm = vm.Mul4(mgl64.HomogRotate3DZ(bearing * degToRad))
	return vm
}

// ViewMatrix returns the matrix that projects world pixels to camera space.
func ViewMatrix(p ViewParams) mgl64.Mat4 {
	vm := UncenteredViewMatrix(p.Height, p.Pitch, p.Bearing, p.Altitude)
	if p.FlipY {
		vm = vm.Mul4(mgl64.Scale3D(1, -1, 1))
	}
	center := p.Center.Mul(-1)
	return vm.Mul4(mgl64.Translate3D(center[0], center[1], center[2]))
}

// pixelScaleMatrix maps normalized device coordinates to pixels with the
// origin in the bottom left corner.
func pixelScaleMatrix(width, height float64) mgl64.Mat4 {
	m := mgl64.Scale3D(width/2, height/2, 1)
	return m.Mul4(mgl64.Translate3D(1, 1, 0))
}

// transformVector multiplies v with m and divides by w.
func transformVector(m mgl64.Mat4, v mgl64.Vec4) mgl64.Vec4 {
	r := m.Mul4x1(v)
	return r.Mul(1 / r[3])
}

// matEquals compares with a relative tolerance of 1e-6.
func matEquals(a, b mgl64.Mat4) bool {
	for i := range a {
		d := math.Abs(a[i] - b[i])
		if d > 1e-6*math.Max(1, math.Max(math.Abs(a[i]), math.Abs(b[i]))) {
			return false
		}
	}
	return true
}
