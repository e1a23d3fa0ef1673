package viewport

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/omniscale/mercview/proj"
)

// NormalizeParams returns p adjusted so that the viewport never shows
// anything beyond the north or south edge of the world:
//
// Longitude and bearing are wrapped into [-180, 180]. The zoom is raised
// until the world is at least as high as the viewport. Latitude is clamped
// so that the top and bottom screen edges stay inside the world.
//
// Missing fields are resolved with the NewMercator defaults first.
func NormalizeParams(p MercatorParams) MercatorParams {
	n := p.normalize()

	if n.longitude < -180 || n.longitude > 180 {
		n.longitude = wrap180(n.longitude)
	}
	if n.bearing < -180 || n.bearing > 180 {
		n.bearing = wrap180(n.bearing)
	}

	minZoom := math.Log2(n.height / proj.TileSize)
	if n.zoom <= minZoom {
		n.zoom = minZoom
		n.latitude = 0
	} else {
		// half of the viewport height in zoom 0 world pixels
		halfHeight := n.height / 2 / proj.ZoomToScale(n.zoom)
		maxLatitude := proj.UnprojectFlat(mgl64.Vec2{0, halfHeight}, 1)[1]
		minLatitude := proj.UnprojectFlat(mgl64.Vec2{0, proj.TileSize - halfHeight}, 1)[1]
		if n.latitude < minLatitude {
			n.latitude = minLatitude
		} else if n.latitude > maxLatitude {
			n.latitude = maxLatitude
		}
	}

	return n.public()
}

// wrap180 wraps v into [-180, 180).
func wrap180(v float64) float64 {
	m := math.Mod(v+180, 360)
	if m < 0 {
		m += 360
	}
	return m - 180
}
