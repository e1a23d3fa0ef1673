package viewport

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func TestFieldOfView(t *testing.T) {
	fov := FieldOfView(600, 1.5)
	if math.Abs(fov-2*math.Atan(200)) > 1e-12 {
		t.Errorf("unexpected fov %v", fov)
	}
}

func TestClippingPlanes(t *testing.T) {
	near, far := ClippingPlanes(1.5, 0)
	if near != NearZ {
		t.Errorf("unexpected near plane %v", near)
	}
	// without pitch the farthest fragment is the ground below the camera
	if math.Abs(far-1.5) > 1e-9 {
		t.Errorf("unexpected far plane %v", far)
	}

	prev := far
	for _, pitch := range []float64{15, 30, 45, 60} {
		_, far := ClippingPlanes(1.5, pitch)
		if far <= prev {
			t.Errorf("far plane not growing with pitch %v: %v <= %v", pitch, far, prev)
		}
		prev = far
	}
}

func TestProjectionMatrixFarZMultiplier(t *testing.T) {
	p := ProjectionParams{Width: 800, Height: 600, Pitch: 30, Altitude: 1.5}
	def := ProjectionMatrix(p)
	p.FarZMultiplier = DefaultFarZMultiplier
	if def != ProjectionMatrix(p) {
		t.Error("zero FarZMultiplier is not the default")
	}

	p.FarZMultiplier = 1
	_, farZ := ClippingPlanes(1.5, 30)
	expected := mgl64.Perspective(FieldOfView(600, 1.5), 800.0/600.0, NearZ, farZ)
	if !matEquals(ProjectionMatrix(p), expected) {
		t.Errorf("unexpected matrix %v", ProjectionMatrix(p))
	}
}

func TestViewMatrixCenter(t *testing.T) {
	center := mgl64.Vec3{1234.5, 678.9, 0}
	for _, pitch := range []float64{0, 30, 60} {
		for _, bearing := range []float64{0, 90, -45} {
			for _, flip := range []bool{false, true} {
				vm := ViewMatrix(ViewParams{
					Height: 600, Pitch: pitch, Bearing: bearing, Altitude: 1.5,
					Center: center, FlipY: flip,
				})
				// the camera looks at the center from altitude
				cam := vm.Mul4x1(center.Vec4(1)).Vec3()
				if !cam.ApproxEqualThreshold(mgl64.Vec3{0, 0, -1.5}, 1e-9) {
					t.Errorf("pitch %v bearing %v flip %v: %v", pitch, bearing, flip, cam)
				}
			}
		}
	}
}

func TestViewMatrixFlipY(t *testing.T) {
	vm := ViewMatrix(ViewParams{Height: 600, Altitude: 1.5, FlipY: true})
	p := vm.Mul4x1(mgl64.Vec4{0, 10, 0, 1})
	if math.Abs(p[1]+10) > 1e-12 {
		t.Errorf("y not flipped: %v", p)
	}
}

func TestUncenteredViewMatrixBearing(t *testing.T) {
	vm := UncenteredViewMatrix(600, 0, 90, 1.5)
	p := vm.Mul4x1(mgl64.Vec4{10, 0, 0, 1})
	// rotated by 90° around z
	if !p.Vec3().ApproxEqualThreshold(mgl64.Vec3{0, 10, -1.5}, 1e-9) {
		t.Errorf("unexpected rotation %v", p)
	}
}

func TestMatEquals(t *testing.T) {
	a := mgl64.Translate3D(1e6, 2, 3)
	b := a
	b[12] += 0.1
	if !matEquals(a, b) {
		t.Error("relative tolerance not applied")
	}
	b[13] += 0.1
	if matEquals(a, b) {
		t.Error("matrices should differ")
	}
}
