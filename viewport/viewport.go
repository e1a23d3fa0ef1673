// Package viewport converts between world/geographic coordinates and screen
// pixels for a perspective camera.
//
// A Viewport is immutable. Create a new one whenever the camera changes. All
// methods are safe for concurrent use.
package viewport

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/omniscale/mercview/proj"
	"github.com/pkg/errors"
)

// Viewport manages the transformations between world coordinates and screen
// pixels for a given view and projection matrix.
type Viewport struct {
	width, height float64
	scale         float64
	projection    FlatProjection

	viewMatrix              mgl64.Mat4
	projectionMatrix        mgl64.Mat4
	viewProjectionMatrix    mgl64.Mat4
	pixelProjectionMatrix   mgl64.Mat4
	pixelUnprojectionMatrix mgl64.Mat4
}

// ProjectOptions change the pixel coordinate system. The zero value returns
// top-left coordinates (origin top left, y down) as used by canvas/SVG.
type ProjectOptions struct {
	BottomLeft bool
}

type UnprojectOptions struct {
	// BottomLeft indicates that input pixels have the origin in the bottom
	// left corner.
	BottomLeft bool
	// TargetZ is the world z of the plane a 2D pixel is unprojected onto.
	TargetZ float64
}

// Matrices is the full matrix set of a viewport, for renderers.
type Matrices struct {
	ModelViewProjection mgl64.Mat4
	ViewProjection      mgl64.Mat4
	View                mgl64.Mat4
	Projection          mgl64.Mat4
	PixelProjection     mgl64.Mat4
	PixelUnprojection   mgl64.Mat4

	Width, Height float64
	Scale         float64
	// DistanceScales is only set for Mercator viewports.
	DistanceScales *proj.DistanceScales
}

// New creates a viewport with identity flat projection. Width and height of
// zero are replaced by 1. Returns a MatrixError if the resulting pixel
// projection matrix is singular.
func New(width, height float64, view, projection mgl64.Mat4) (*Viewport, error) {
	return NewWithProjection(width, height, view, projection, Identity, 1)
}

// NewWithProjection creates a viewport that applies the flat projection p at
// scale before the matrix pipeline.
func NewWithProjection(width, height float64, view, projection mgl64.Mat4, p FlatProjection, scale float64) (*Viewport, error) {
	vp, err := newViewport(width, height, view, projection, p, scale)
	if err != nil {
		return nil, err
	}
	return &vp, nil
}

// Default returns a 1x1 viewport with identity matrices.
func Default() *Viewport {
	vp, err := New(1, 1, mgl64.Ident4(), mgl64.Ident4())
	if err != nil {
		panic(err) // identity is always invertible
	}
	return vp
}

func newViewport(width, height float64, view, projection mgl64.Mat4, p FlatProjection, scale float64) (Viewport, error) {
	// silently allow apps to send in 0,0 (e.g. before layout)
	if width == 0 {
		width = 1
	}
	if height == 0 {
		height = 1
	}
	if scale == 0 {
		scale = 1
	}

	vp := Viewport{
		width:            width,
		height:           height,
		scale:            scale,
		projection:       p,
		viewMatrix:       view,
		projectionMatrix: projection,
	}
	vp.viewProjectionMatrix = projection.Mul4(view)
	vp.pixelProjectionMatrix = pixelScaleMatrix(width, height).Mul4(vp.viewProjectionMatrix)

	inv, err := invert(vp.pixelProjectionMatrix)
	if err != nil {
		return Viewport{}, errors.Wrap(err, "creating viewport")
	}
	vp.pixelUnprojectionMatrix = inv
	return vp, nil
}

func (vp *Viewport) Width() float64                      { return vp.width }
func (vp *Viewport) Height() float64                     { return vp.height }
func (vp *Viewport) Scale() float64                      { return vp.scale }
func (vp *Viewport) FlatProjection() FlatProjection      { return vp.projection }
func (vp *Viewport) ViewMatrix() mgl64.Mat4              { return vp.viewMatrix }
func (vp *Viewport) ProjectionMatrix() mgl64.Mat4        { return vp.projectionMatrix }
func (vp *Viewport) ViewProjectionMatrix() mgl64.Mat4    { return vp.viewProjectionMatrix }
func (vp *Viewport) PixelProjectionMatrix() mgl64.Mat4   { return vp.pixelProjectionMatrix }
func (vp *Viewport) PixelUnprojectionMatrix() mgl64.Mat4 { return vp.pixelUnprojectionMatrix }

// Equals returns true if both viewports have identical sizes and
// approximately equal view and projection matrices.
func (vp *Viewport) Equals(other *Viewport) bool {
	if other == nil {
		return false
	}
	if vp == other {
		return true
	}
	return vp.width == other.width &&
		vp.height == other.height &&
		matEquals(vp.projectionMatrix, other.projectionMatrix) &&
		matEquals(vp.viewMatrix, other.viewMatrix)
}

// ProjectFlat applies the flat projection at the viewport scale.
func (vp *Viewport) ProjectFlat(xy mgl64.Vec2) mgl64.Vec2 {
	return vp.projection.Project(xy, vp.scale)
}

// UnprojectFlat applies the inverse flat projection at the viewport scale.
func (vp *Viewport) UnprojectFlat(xy mgl64.Vec2) mgl64.Vec2 {
	return vp.projection.Unproject(xy, vp.scale)
}

// Project projects xyz (e.g. [lng, lat, z]) to screen pixels. The returned z
// is the depth of the point and can be passed to Unproject3.
func (vp *Viewport) Project(xyz mgl64.Vec3, opts ProjectOptions) mgl64.Vec3 {
	flat := vp.ProjectFlat(xyz.Vec2())
	v := transformVector(vp.pixelProjectionMatrix, mgl64.Vec4{flat[0], flat[1], xyz[2], 1})

	y := v[1]
	if !opts.BottomLeft {
		y = vp.height - y
	}
	return mgl64.Vec3{v[0], y, v[2]}
}

// ProjectPoint projects xy (e.g. [lng, lat]) at z=0 to screen pixels.
func (vp *Viewport) ProjectPoint(xy mgl64.Vec2, opts ProjectOptions) mgl64.Vec2 {
	return vp.Project(xy.Vec3(0), opts).Vec2()
}

// ProjectPoints projects all src points and appends the results to dst[:0].
func (vp *Viewport) ProjectPoints(dst, src []mgl64.Vec2, opts ProjectOptions) []mgl64.Vec2 {
	dst = dst[:0]
	for _, p := range src {
		dst = append(dst, vp.ProjectPoint(p, opts))
	}
	return dst
}

// Unproject returns the position under the screen pixel xy.
//
// A pixel corresponds to a ray through the scene. The ray is intersected
// with the plane z = opts.TargetZ. If the ray is parallel to that plane, the
// near point of the ray is used.
func (vp *Viewport) Unproject(xy mgl64.Vec2, opts UnprojectOptions) mgl64.Vec2 {
	y := xy[1]
	if !opts.BottomLeft {
		y = vp.height - y
	}

	// unproject two points on the ray and find the point with z = TargetZ
	coord0 := transformVector(vp.pixelUnprojectionMatrix, mgl64.Vec4{xy[0], y, 0, 1})
	coord1 := transformVector(vp.pixelUnprojectionMatrix, mgl64.Vec4{xy[0], y, 1, 1})

	z0 := coord0[2]
	z1 := coord1[2]

	var t float64
	if z0 != z1 {
		t = (opts.TargetZ - z0) / (z1 - z0)
	}
	flat := lerp(coord0.Vec2(), coord1.Vec2(), t)
	return vp.UnprojectFlat(flat)
}

// Unproject3 is the inverse of Project: xyz contains a screen pixel and the
// depth returned by Project. The result contains the world z.
func (vp *Viewport) Unproject3(xyz mgl64.Vec3, opts UnprojectOptions) mgl64.Vec3 {
	y := xyz[1]
	if !opts.BottomLeft {
		y = vp.height - y
	}
	v := transformVector(vp.pixelUnprojectionMatrix, mgl64.Vec4{xyz[0], y, xyz[2], 1})
	flat := vp.UnprojectFlat(v.Vec2())
	return mgl64.Vec3{flat[0], flat[1], v[2]}
}

// UnprojectPoints unprojects all src pixels and appends the results to
// dst[:0].
func (vp *Viewport) UnprojectPoints(dst, src []mgl64.Vec2, opts UnprojectOptions) []mgl64.Vec2 {
	dst = dst[:0]
	for _, p := range src {
		dst = append(dst, vp.Unproject(p, opts))
	}
	return dst
}

// Matrices returns all matrices of the viewport. If model is not nil, the
// (pixel) projection matrices are multiplied with the model matrix.
func (vp *Viewport) Matrices(model *mgl64.Mat4) (Matrices, error) {
	m := Matrices{
		ModelViewProjection: vp.viewProjectionMatrix,
		ViewProjection:      vp.viewProjectionMatrix,
		View:                vp.viewMatrix,
		Projection:          vp.projectionMatrix,
		PixelProjection:     vp.pixelProjectionMatrix,
		PixelUnprojection:   vp.pixelUnprojectionMatrix,
		Width:               vp.width,
		Height:              vp.height,
		Scale:               vp.scale,
	}
	if model != nil {
		m.ModelViewProjection = vp.viewProjectionMatrix.Mul4(*model)
		m.PixelProjection = vp.pixelProjectionMatrix.Mul4(*model)
		inv, err := invert(m.PixelProjection)
		if err != nil {
			return Matrices{}, errors.Wrap(err, "applying model matrix")
		}
		m.PixelUnprojection = inv
	}
	return m, nil
}

func lerp(a, b mgl64.Vec2, t float64) mgl64.Vec2 {
	return mgl64.Vec2{
		a[0] + t*(b[0]-a[0]),
		a[1] + t*(b[1]-a[1]),
	}
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
