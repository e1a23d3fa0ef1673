package viewport

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/omniscale/mercview/proj"
	"github.com/paulmach/orb"
)

// DefaultMaxZoom limits the zoom of FitBounds. Bounds without area would
// otherwise result in an infinite zoom.
const DefaultMaxZoom = 22

// Padding in pixels around the bounds.
type Padding struct {
	Top, Bottom, Left, Right float64
}

func UniformPadding(p float64) Padding {
	return Padding{Top: p, Bottom: p, Left: p, Right: p}
}

type FitBoundsOptions struct {
	Padding Padding
	// Offset of the bounds center relative to the map center, in pixels.
	Offset mgl64.Vec2
	// MaxZoom limits the resulting zoom. 0 means DefaultMaxZoom, a limit of
	// zoom 0 is not supported.
	MaxZoom float64
}

type FitBoundsParams struct {
	Width, Height float64
	Bounds        orb.Bound
	FitBoundsOptions
}

// Camera is the center and zoom of a map view.
type Camera struct {
	Longitude float64
	Latitude  float64
	Zoom      float64
}

// FitBounds returns the camera that shows Bounds inside a Width x Height
// viewport. Only supports views without pitch and bearing.
func FitBounds(p FitBoundsParams) (Camera, error) {
	pad := p.Padding
	if err := proj.CheckFinite("FitBounds",
		pad.Top, pad.Bottom, pad.Left, pad.Right, p.Offset[0], p.Offset[1],
	); err != nil {
		return Camera{}, err
	}
	maxZoom := p.MaxZoom
	if maxZoom == 0 {
		maxZoom = DefaultMaxZoom
	}

	ref, err := NewMercator(MercatorParams{
		Width:     p.Width,
		Height:    p.Height,
		Longitude: Float(0),
		Latitude:  Float(0),
		Zoom:      Float(0),
	})
	if err != nil {
		return Camera{}, err
	}

	west, south := p.Bounds.Min.Lon(), p.Bounds.Min.Lat()
	east, north := p.Bounds.Max.Lon(), p.Bounds.Max.Lat()

	nw := ref.ProjectPoint(mgl64.Vec2{west, north}, ProjectOptions{})
	se := ref.ProjectPoint(mgl64.Vec2{east, south}, ProjectOptions{})
	size := mgl64.Vec2{math.Abs(se[0] - nw[0]), math.Abs(se[1] - nw[1])}

	scaleX := (ref.width - pad.Left - pad.Right - math.Abs(p.Offset[0])*2) / size[0]
	scaleY := (ref.height - pad.Top - pad.Bottom - math.Abs(p.Offset[1])*2) / size[1]
	// 0/0 for bounds without width or height, the other axis decides
	if math.IsNaN(scaleX) {
		scaleX = math.Inf(1)
	}
	if math.IsNaN(scaleY) {
		scaleY = math.Inf(1)
	}

	zoom := math.Min(ref.Zoom()+proj.ScaleToZoom(math.Abs(math.Min(scaleX, scaleY))), maxZoom)
	scale := proj.ZoomToScale(zoom)

	// the bounds move away from the larger padding, by half the difference
	// in target zoom pixels converted to the zoom 0 reference viewport
	center := mgl64.Vec2{
		(se[0]+nw[0])/2 + (pad.Right-pad.Left)/2/scale,
		(se[1]+nw[1])/2 + (pad.Bottom-pad.Top)/2/scale,
	}
	lngLat := ref.Unproject(center, UnprojectOptions{})

	return Camera{
		Longitude: lngLat[0],
		Latitude:  lngLat[1],
		Zoom:      zoom,
	}, nil
}
