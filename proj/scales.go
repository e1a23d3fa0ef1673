package proj

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// DistanceScales are local linear conversion factors between pixels, degrees
// and meters around a reference location. X and Y depend on the latitude, Z is
// the isotropic vertical scale.
type DistanceScales struct {
	PixelsPerDegree mgl64.Vec3
	DegreesPerPixel mgl64.Vec3
	PixelsPerMeter  mgl64.Vec3
	MetersPerPixel  mgl64.Vec3

	// Second order terms, only set with HighPrecision.
	HighPrecision    bool
	PixelsPerDegree2 mgl64.Vec3
	PixelsPerMeter2  mgl64.Vec3
}

type DistanceScalesOptions struct {
	Latitude  float64
	Longitude float64
	// Zoom is only used if Scale is <= 0.
	Zoom  float64
	Scale float64
	// HighPrecision adds the first derivative of the 1/cos(latitude) scale
	// factor. The linear scales are off by about 1% per 100km without it.
	HighPrecision bool
}

// GetDistanceScales calculates the distance scales at the given location.
// Y and meter scales diverge towards the poles.
func GetDistanceScales(opts DistanceScalesOptions) (DistanceScales, error) {
	scale := opts.Scale
	if scale <= 0 {
		scale = ZoomToScale(opts.Zoom)
	}
	if !isFinite(opts.Latitude, opts.Longitude, scale) {
		return DistanceScales{}, newArgumentError("GetDistanceScales", opts.Latitude, opts.Longitude, scale)
	}

	worldSize := TileSize * scale
	latCosine := math.Cos(opts.Latitude * degToRad)

	// pixelsPerDegreeX = d(ProjectFlat([lng, lat])[0])/d(lng)
	// pixelsPerDegreeY = d(ProjectFlat([lng, lat])[1])/d(lat), sign dropped
	pixelsPerDegreeX := worldSize / 360
	pixelsPerDegreeY := pixelsPerDegreeX / latCosine

	altPixelsPerMeter := worldSize / EarthCircumference / latCosine

	s := DistanceScales{
		PixelsPerMeter:  mgl64.Vec3{altPixelsPerMeter, altPixelsPerMeter, altPixelsPerMeter},
		MetersPerPixel:  mgl64.Vec3{1 / altPixelsPerMeter, 1 / altPixelsPerMeter, 1 / altPixelsPerMeter},
		PixelsPerDegree: mgl64.Vec3{pixelsPerDegreeX, pixelsPerDegreeY, altPixelsPerMeter},
		DegreesPerPixel: mgl64.Vec3{1 / pixelsPerDegreeX, 1 / pixelsPerDegreeY, 1 / altPixelsPerMeter},
	}

	if opts.HighPrecision {
		// Taylor series 2nd order for 1/latCosine:
		// d(1/cos(lat))/d(lat) * dLat = DEG_TO_RAD * tan(lat) / cos(lat) * dLat
		latCosine2 := degToRad * math.Tan(opts.Latitude*degToRad) / latCosine
		pixelsPerDegreeY2 := pixelsPerDegreeX * latCosine2 / 2
		altPixelsPerDegree2 := worldSize / EarthCircumference * latCosine2
		altPixelsPerMeter2 := altPixelsPerDegree2 / pixelsPerDegreeY * altPixelsPerMeter

		s.HighPrecision = true
		s.PixelsPerDegree2 = mgl64.Vec3{0, pixelsPerDegreeY2, altPixelsPerDegree2}
		s.PixelsPerMeter2 = mgl64.Vec3{altPixelsPerMeter2, 0, altPixelsPerMeter2}
	}
	return s, nil
}

// MetersToPixels converts a meter offset (east, north, up) to a pixel offset.
// With HighPrecision the scale of each axis is corrected for the latitude
// change of the north offset.
func (s DistanceScales) MetersToPixels(meters mgl64.Vec3) mgl64.Vec3 {
	var px mgl64.Vec3
	for i := range px {
		f := s.PixelsPerMeter[i]
		if s.HighPrecision {
			f += s.PixelsPerMeter2[i] * meters[1]
		}
		px[i] = meters[i] * f
	}
	return px
}
