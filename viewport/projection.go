package viewport

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/omniscale/mercview/proj"
)

// FlatProjection selects the nonlinear projection a viewport applies before
// (and after, when unprojecting) the linear matrix pipeline.
type FlatProjection uint8

const (
	// Identity passes coordinates through unchanged. Positions are world
	// coordinates.
	Identity FlatProjection = iota
	// WebMercator interprets positions as longitude/latitude.
	WebMercator
)

var flatProjectionNames = [...]string{
	Identity:    "identity",
	WebMercator: "web-mercator",
}

func (p FlatProjection) String() string {
	if int(p) < len(flatProjectionNames) {
		return flatProjectionNames[p]
	}
	return "unknown"
}

// Project applies the forward flat projection at scale.
func (p FlatProjection) Project(xy mgl64.Vec2, scale float64) mgl64.Vec2 {
	switch p {
	case WebMercator:
		return proj.ProjectFlat(xy, scale)
	default:
		return xy
	}
}

// Unproject applies the inverse flat projection at scale.
func (p FlatProjection) Unproject(xy mgl64.Vec2, scale float64) mgl64.Vec2 {
	switch p {
	case WebMercator:
		return proj.UnprojectFlat(xy, scale)
	default:
		return xy
	}
}
