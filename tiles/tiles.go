// Package tiles calculates the slippy map tiles that are visible in a
// viewport.
package tiles

import (
	"math"
	"sort"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/omniscale/mercview/proj"
	"github.com/omniscale/mercview/viewport"
	"github.com/paulmach/orb/maptile"
)

const (
	DefaultTileSize = 512
	DefaultMaxZoom  = 22
)

// Tile coordinates closer than this to a tile edge are snapped to the edge.
const edgeEpsilon = 1e-9

type Options struct {
	// TileSize in pixels, 0 means DefaultTileSize. 256 pixel tiles result
	// in one zoom level more than the viewport zoom.
	TileSize int
	MinZoom  int
	// MaxZoom limits the tile zoom, 0 means DefaultMaxZoom. Use a
	// viewport at zoom 0 to get the world tile only.
	MaxZoom int
}

// Zoom returns the tile zoom level for vp. This is the viewport zoom
// rounded to the nearest integer and adjusted to the tile size.
func Zoom(vp *viewport.MercatorViewport, opts Options) maptile.Zoom {
	tileSize := opts.TileSize
	if tileSize <= 0 {
		tileSize = DefaultTileSize
	}
	maxZoom := opts.MaxZoom
	if maxZoom <= 0 {
		maxZoom = DefaultMaxZoom
	}
	z := int(math.Round(vp.Zoom() + proj.ScaleToZoom(float64(proj.TileSize)/float64(tileSize))))
	if z < opts.MinZoom {
		z = opts.MinZoom
	}
	if z > maxZoom {
		z = maxZoom
	}
	if z < 0 {
		z = 0
	}
	return maptile.Zoom(z)
}

// Visible returns all tiles of the tile zoom level that intersect the
// visible area of vp, sorted along a hilbert curve.
//
// The visible area is the ground quad below the four screen corners. The
// quad is only valid if all corners hit the ground, which is true for
// pitches up to 60°.
func Visible(vp *viewport.MercatorViewport, opts Options) maptile.Tiles {
	z := Zoom(vp, opts)
	n := int64(1) << z
	quad := visibleQuad(vp, float64(n))

	minX, minY := quad[0][0], quad[0][1]
	maxX, maxY := minX, minY
	for _, p := range quad[1:] {
		minX = math.Min(minX, p[0])
		minY = math.Min(minY, p[1])
		maxX = math.Max(maxX, p[0])
		maxY = math.Max(maxY, p[1])
	}

	x0 := int64(math.Floor(minX + edgeEpsilon))
	x1 := int64(math.Ceil(maxX-edgeEpsilon)) - 1
	y0 := int64(math.Floor(minY + edgeEpsilon))
	y1 := int64(math.Ceil(maxY-edgeEpsilon)) - 1
	if y0 < 0 {
		y0 = 0
	}
	if y1 > n-1 {
		y1 = n - 1
	}
	if x1-x0+1 >= n {
		// whole world visible, no need to wrap
		x0, x1 = 0, n-1
	}

	set := make(maptile.Set)
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			if !intersects(quad, float64(x), float64(y)) {
				continue
			}
			wx := ((x % n) + n) % n
			set[maptile.New(uint32(wx), uint32(y), z)] = true
		}
	}

	tiles := make(maptile.Tiles, 0, len(set))
	for t := range set {
		tiles = append(tiles, t)
	}
	sortHilbert(tiles)
	return tiles
}

// visibleQuad returns the ground position of the four screen corners in
// tile coordinates of a world with n*n tiles.
func visibleQuad(vp *viewport.MercatorViewport, n float64) [4]mgl64.Vec2 {
	w, h := vp.Width(), vp.Height()
	corners := [4]mgl64.Vec2{{0, 0}, {w, 0}, {w, h}, {0, h}}

	var quad [4]mgl64.Vec2
	for i, px := range corners {
		ll := vp.Unproject(px, viewport.UnprojectOptions{})
		ll[1] = math.Max(-proj.MaxLatitude, math.Min(proj.MaxLatitude, ll[1]))
		quad[i] = proj.ProjectFlat(ll, n).Mul(1.0 / proj.TileSize)
	}
	return quad
}

// intersects checks whether the tile x/y overlaps the convex quad, using
// the separating axis theorem.
func intersects(quad [4]mgl64.Vec2, x, y float64) bool {
	tile := [4]mgl64.Vec2{{x, y}, {x + 1, y}, {x + 1, y + 1}, {x, y + 1}}

	axes := [6]mgl64.Vec2{{1, 0}, {0, 1}}
	for i := range quad {
		edge := quad[(i+1)%4].Sub(quad[i])
		axes[2+i] = mgl64.Vec2{-edge[1], edge[0]}
	}

	for _, axis := range axes {
		if axis == (mgl64.Vec2{}) {
			continue
		}
		qMin, qMax := projectOnAxis(quad, axis)
		tMin, tMax := projectOnAxis(tile, axis)
		// touching edges do not count as overlap
		eps := edgeEpsilon * axis.Len()
		if qMax <= tMin+eps || tMax <= qMin+eps {
			return false
		}
	}
	return true
}

func projectOnAxis(poly [4]mgl64.Vec2, axis mgl64.Vec2) (float64, float64) {
	min := poly[0].Dot(axis)
	max := min
	for _, p := range poly[1:] {
		d := p.Dot(axis)
		if d < min {
			min = d
		}
		if d > max {
			max = d
		}
	}
	return min, max
}

func sortHilbert(tiles maptile.Tiles) {
	sort.Slice(tiles, func(i, j int) bool {
		return hilbert(tiles[i].X, tiles[i].Y, uint32(tiles[i].Z)) <
			hilbert(tiles[j].X, tiles[j].Y, uint32(tiles[j].Z))
	})
}

// hilbert returns the distance of tile x, y in a hilbert curve of
// level z, where z=0 is 1x1, z=1 is 2x2, etc.
func hilbert(x, y, z uint32) uint64 {
	n := uint64(1) << z
	var d uint64
	for s := n / 2; s > 0; s /= 2 {
		var rx, ry uint64
		if uint64(x)&s > 0 {
			rx = 1
		}
		if uint64(y)&s > 0 {
			ry = 1
		}
		d += s * s * ((3 * rx) ^ ry)
		x, y = rot(uint32(s), x, y, rx, ry)
	}
	return d
}

// rotate/flip a quadrant
func rot(n, x, y uint32, rx, ry uint64) (uint32, uint32) {
	if ry == 0 {
		if rx == 1 {
			x = n - 1 - x
			y = n - 1 - y
		}
		return y, x
	}
	return x, y
}
