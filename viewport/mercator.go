package viewport

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/omniscale/mercview/proj"
	"github.com/paulmach/orb"
	"github.com/pkg/errors"
)

const (
	DefaultLongitude = -122
	DefaultLatitude  = 37
	DefaultZoom      = 11
	DefaultAltitude  = 1.5
	// MinAltitude keeps the field of view below 180°.
	MinAltitude = 0.75
)

// MercatorParams describe a Web Mercator camera. Nil fields are replaced by
// the Default* values, zero Width/Height by 1.
type MercatorParams struct {
	Width, Height float64

	Longitude *float64
	Latitude  *float64
	Zoom      *float64
	Altitude  *float64

	// Pitch and Bearing in degrees.
	Pitch   float64
	Bearing float64
	// FarZMultiplier scales the far clipping plane, 0 means
	// DefaultFarZMultiplier. Use 1 for mapbox-gl compatible matrices.
	FarZMultiplier float64
}

// Float returns a pointer to v, for the optional MercatorParams fields.
func Float(v float64) *float64 {
	return &v
}

// mercatorParams are MercatorParams with all defaults resolved.
type mercatorParams struct {
	width, height       float64
	longitude, latitude float64
	zoom, altitude      float64
	pitch, bearing      float64
	farZMultiplier      float64
}

func (p MercatorParams) normalize() mercatorParams {
	n := mercatorParams{
		width:          p.Width,
		height:         p.Height,
		longitude:      DefaultLongitude,
		latitude:       DefaultLatitude,
		zoom:           DefaultZoom,
		altitude:       DefaultAltitude,
		pitch:          p.Pitch,
		bearing:        p.Bearing,
		farZMultiplier: p.FarZMultiplier,
	}
	if n.width == 0 {
		n.width = 1
	}
	if n.height == 0 {
		n.height = 1
	}
	if p.Longitude != nil {
		n.longitude = *p.Longitude
	}
	if p.Latitude != nil {
		n.latitude = *p.Latitude
	}
	if p.Zoom != nil {
		n.zoom = *p.Zoom
	}
	if p.Altitude != nil {
		n.altitude = *p.Altitude
	}
	if n.altitude < MinAltitude {
		n.altitude = MinAltitude
	}
	if n.farZMultiplier == 0 {
		n.farZMultiplier = DefaultFarZMultiplier
	}
	return n
}

func (n mercatorParams) public() MercatorParams {
	return MercatorParams{
		Width:          n.width,
		Height:         n.height,
		Longitude:      Float(n.longitude),
		Latitude:       Float(n.latitude),
		Zoom:           Float(n.zoom),
		Altitude:       Float(n.altitude),
		Pitch:          n.pitch,
		Bearing:        n.bearing,
		FarZMultiplier: n.farZMultiplier,
	}
}

// MercatorViewport is a Viewport for longitude/latitude positions. It is
// immutable, use NewMercator to create a viewport with other parameters.
type MercatorViewport struct {
	Viewport

	params         mercatorParams
	center         mgl64.Vec2
	distanceScales proj.DistanceScales
}

// NewMercator creates a viewport from the camera parameters. It returns an
// error if the parameters are not finite or if the resulting matrices are
// singular.
func NewMercator(p MercatorParams) (*MercatorViewport, error) {
	n := p.normalize()
	if err := proj.CheckFinite("NewMercator",
		n.width, n.height, n.longitude, n.latitude, n.zoom,
		n.altitude, n.pitch, n.bearing, n.farZMultiplier,
	); err != nil {
		return nil, err
	}

	scale := proj.ZoomToScale(n.zoom)
	center := proj.ProjectFlat(mgl64.Vec2{n.longitude, n.latitude}, scale)

	distanceScales, err := proj.GetDistanceScales(proj.DistanceScalesOptions{
		Latitude:  n.latitude,
		Longitude: n.longitude,
		Scale:     scale,
	})
	if err != nil {
		return nil, err
	}

	projection := ProjectionMatrix(ProjectionParams{
		Width:          n.width,
		Height:         n.height,
		Pitch:          n.pitch,
		Altitude:       n.altitude,
		FarZMultiplier: n.farZMultiplier,
	})
	view := ViewMatrix(ViewParams{
		Height:   n.height,
		Pitch:    n.pitch,
		Bearing:  n.bearing,
		Altitude: n.altitude,
		Center:   center.Vec3(0),
		FlipY:    true,
	})

	vp, err := newViewport(n.width, n.height, view, projection, WebMercator, scale)
	if err != nil {
		return nil, err
	}
	return &MercatorViewport{
		Viewport:       vp,
		params:         n,
		center:         center,
		distanceScales: distanceScales,
	}, nil
}

func (vp *MercatorViewport) Longitude() float64 { return vp.params.longitude }
func (vp *MercatorViewport) Latitude() float64  { return vp.params.latitude }
func (vp *MercatorViewport) Zoom() float64      { return vp.params.zoom }
func (vp *MercatorViewport) Pitch() float64     { return vp.params.pitch }
func (vp *MercatorViewport) Bearing() float64   { return vp.params.bearing }

// Altitude returns the altitude after clamping to MinAltitude.
func (vp *MercatorViewport) Altitude() float64 { return vp.params.altitude }

// Center returns the world pixel position of the longitude/latitude.
func (vp *MercatorViewport) Center() mgl64.Vec2 { return vp.center }

// DistanceScales returns the scales at the center of the viewport.
func (vp *MercatorViewport) DistanceScales() proj.DistanceScales { return vp.distanceScales }

// Params returns the fully resolved parameters of this viewport. Passing
// them to NewMercator creates an equal viewport.
func (vp *MercatorViewport) Params() MercatorParams {
	return vp.params.public()
}

// MetersToLngLatDelta converts a meter offset to a longitude/latitude
// offset. Z is passed through.
//
// This is a linear approximation around the viewport center. The error
// grows with the offset, roughly 1% per 100km.
func (vp *MercatorViewport) MetersToLngLatDelta(xyz mgl64.Vec3) (mgl64.Vec3, error) {
	if err := proj.CheckFinite("MetersToLngLatDelta", xyz[0], xyz[1], xyz[2]); err != nil {
		return mgl64.Vec3{}, err
	}
	s := vp.distanceScales
	return mgl64.Vec3{
		xyz[0] * s.PixelsPerMeter[0] * s.DegreesPerPixel[0],
		xyz[1] * s.PixelsPerMeter[1] * s.DegreesPerPixel[1],
		xyz[2],
	}, nil
}

// LngLatDeltaToMeters converts a longitude/latitude offset to meters. Z is
// passed through. Same accuracy as MetersToLngLatDelta.
func (vp *MercatorViewport) LngLatDeltaToMeters(delta mgl64.Vec3) (mgl64.Vec3, error) {
	if err := proj.CheckFinite("LngLatDeltaToMeters", delta[0], delta[1], delta[2]); err != nil {
		return mgl64.Vec3{}, err
	}
	s := vp.distanceScales
	return mgl64.Vec3{
		delta[0] * s.PixelsPerDegree[0] * s.MetersPerPixel[0],
		delta[1] * s.PixelsPerDegree[1] * s.MetersPerPixel[1],
		delta[2],
	}, nil
}

// AddMetersToLngLat adds a meter offset to a longitude/latitude/z position.
func (vp *MercatorViewport) AddMetersToLngLat(base, meters mgl64.Vec3) (mgl64.Vec3, error) {
	if err := proj.CheckFinite("AddMetersToLngLat", base[0], base[1], base[2]); err != nil {
		return mgl64.Vec3{}, err
	}
	delta, err := vp.MetersToLngLatDelta(meters)
	if err != nil {
		return mgl64.Vec3{}, err
	}
	return base.Add(delta), nil
}

// LocationAtPoint returns the map center that places lngLat at the
// top-left screen position pos. Used for drag to pan.
func (vp *MercatorViewport) LocationAtPoint(lngLat, pos mgl64.Vec2) mgl64.Vec2 {
	from := vp.ProjectFlat(vp.Unproject(pos, UnprojectOptions{}))
	to := vp.ProjectFlat(lngLat)
	newCenter := vp.center.Add(to.Sub(from))
	return vp.UnprojectFlat(newCenter)
}

// FitBounds returns a new viewport of the same size that shows bounds.
// Pitch and bearing are reset.
func (vp *MercatorViewport) FitBounds(bounds orb.Bound, opts FitBoundsOptions) (*MercatorViewport, error) {
	cam, err := FitBounds(FitBoundsParams{
		Width:            vp.width,
		Height:           vp.height,
		Bounds:           bounds,
		FitBoundsOptions: opts,
	})
	if err != nil {
		return nil, err
	}
	return NewMercator(MercatorParams{
		Width:     vp.width,
		Height:    vp.height,
		Longitude: Float(cam.Longitude),
		Latitude:  Float(cam.Latitude),
		Zoom:      Float(cam.Zoom),
	})
}

// Matrices returns the matrices of the viewport together with the distance
// scales.
func (vp *MercatorViewport) Matrices(model *mgl64.Mat4) (Matrices, error) {
	m, err := vp.Viewport.Matrices(model)
	if err != nil {
		return Matrices{}, errors.Wrap(err, "mercator viewport")
	}
	scales := vp.distanceScales
	m.DistanceScales = &scales
	return m, nil
}
