// Package proj implements the nonlinear part of the Web Mercator projection
// between longitude/latitude and world pixel coordinates, and the local distance
// scales derived from it.
package proj

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	osm "github.com/omniscale/go-osm"
)

const (
	// TileSize is the size in pixels of the zoom 0 world.
	TileSize = 512
	// EarthCircumference is the average circumference in meters
	// (40075 km equatorial, 40007 km meridional).
	EarthCircumference = 40.03e6
	// MaxLatitude is the northern bound of the square Web Mercator world
	// (atan(sinh(π))).
	MaxLatitude = 85.051128779806604

	piFourth = math.Pi / 4
	degToRad = math.Pi / 180
	radToDeg = 180 / math.Pi
)

// ProjectFlat projects lngLat onto the world pixel plane of a TileSize*scale
// sized world. Y grows southwards.
//
// Latitudes at or beyond ±90 produce non-finite values. Callers are expected
// to clamp to MaxLatitude.
func ProjectFlat(lngLat mgl64.Vec2, scale float64) mgl64.Vec2 {
	scale *= TileSize
	lambda := lngLat[0] * degToRad
	phi := lngLat[1] * degToRad
	x := scale * (lambda + math.Pi) / (2 * math.Pi)
	y := scale * (math.Pi - math.Log(math.Tan(piFourth+phi*0.5))) / (2 * math.Pi)
	return mgl64.Vec2{x, y}
}

// UnprojectFlat is the inverse of ProjectFlat.
func UnprojectFlat(xy mgl64.Vec2, scale float64) mgl64.Vec2 {
	scale *= TileSize
	lambda := (xy[0]/scale)*(2*math.Pi) - math.Pi
	phi := 2 * (math.Atan(math.Exp(math.Pi-(xy[1]/scale)*(2*math.Pi))) - piFourth)
	return mgl64.Vec2{lambda * radToDeg, phi * radToDeg}
}

// ZoomToScale returns 2^zoom.
func ZoomToScale(zoom float64) float64 {
	return math.Pow(2, zoom)
}

// ScaleToZoom returns log2(scale).
func ScaleToZoom(scale float64) float64 {
	return math.Log2(scale)
}

// MeterZoom returns the zoom level at which one world pixel covers
// one meter at latitude. The zoom refers to the 512 pixel world of
// ProjectFlat, one level below the value for 256 pixel tiles.
func MeterZoom(latitude float64) (float64, error) {
	if !isFinite(latitude) {
		return 0, newArgumentError("MeterZoom", latitude)
	}
	latCosine := math.Cos(latitude * degToRad)
	return math.Log2(EarthCircumference * latCosine / TileSize), nil
}

// WorldPosition returns the world pixel position of lng/lat at zoom. The
// optional meterOffset is added in meters, with positive Y pointing north.
func WorldPosition(lng, lat, zoom float64, meterOffset *mgl64.Vec3) (mgl64.Vec3, error) {
	scale := ZoomToScale(zoom)
	center := ProjectFlat(mgl64.Vec2{lng, lat}, scale).Vec3(0)
	if meterOffset == nil {
		return center, nil
	}

	scales, err := GetDistanceScales(DistanceScalesOptions{
		Latitude:  lat,
		Longitude: lng,
		Scale:     scale,
	})
	if err != nil {
		return mgl64.Vec3{}, err
	}
	offset := mgl64.Vec3{
		meterOffset[0] * scales.PixelsPerMeter[0],
		// world coordinates grow southwards
		-meterOffset[1] * scales.PixelsPerMeter[1],
		meterOffset[2] * scales.PixelsPerMeter[2],
	}
	return center.Add(offset), nil
}

// NodesToWorld projects all nodes into world pixels at scale. Results are
// appended to dst[:0], so a buffer can be reused between calls.
func NodesToWorld(nodes []osm.Node, scale float64, dst []mgl64.Vec2) []mgl64.Vec2 {
	dst = dst[:0]
	for _, nd := range nodes {
		dst = append(dst, ProjectFlat(mgl64.Vec2{nd.Long, nd.Lat}, scale))
	}
	return dst
}

func isFinite(vals ...float64) bool {
	for _, v := range vals {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
