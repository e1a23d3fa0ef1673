package tiles

import (
	"bytes"
	"io/ioutil"
	"path/filepath"
	"strings"
	"testing"

	"github.com/omniscale/mercview/viewport"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/maptile"
)

func mustViewport(t *testing.T, p viewport.MercatorParams) *viewport.MercatorViewport {
	t.Helper()
	vp, err := viewport.NewMercator(p)
	if err != nil {
		t.Fatal(err)
	}
	return vp
}

func TestVisibleWorld(t *testing.T) {
	vp := mustViewport(t, viewport.MercatorParams{
		Width: 512, Height: 512,
		Longitude: viewport.Float(0), Latitude: viewport.Float(0), Zoom: viewport.Float(0),
	})
	tiles := Visible(vp, Options{})
	if len(tiles) != 1 || tiles[0] != maptile.New(0, 0, 0) {
		t.Fatal(tiles)
	}
}

func TestVisibleZoom1(t *testing.T) {
	vp := mustViewport(t, viewport.MercatorParams{
		Width: 512, Height: 512,
		Longitude: viewport.Float(0), Latitude: viewport.Float(0), Zoom: viewport.Float(1),
	})
	tiles := Visible(vp, Options{})
	expected := maptile.Tiles{
		maptile.New(0, 0, 1),
		maptile.New(0, 1, 1),
		maptile.New(1, 1, 1),
		maptile.New(1, 0, 1),
	}
	if len(tiles) != len(expected) {
		t.Fatal(tiles)
	}
	for i := range tiles {
		if tiles[i] != expected[i] {
			t.Errorf("%v != %v", tiles, expected)
		}
	}

	// 256 pixel tiles at zoom 0 cover the same area
	vp = mustViewport(t, viewport.MercatorParams{
		Width: 512, Height: 512,
		Longitude: viewport.Float(0), Latitude: viewport.Float(0), Zoom: viewport.Float(0),
	})
	tiles = Visible(vp, Options{TileSize: 256})
	if len(tiles) != 4 || tiles[0].Z != 1 {
		t.Fatal(tiles)
	}
}

func TestVisibleSmallView(t *testing.T) {
	// 100x100 pixels fit into a single tile
	vp := mustViewport(t, viewport.MercatorParams{
		Width: 100, Height: 100,
		Longitude: viewport.Float(8.8), Latitude: viewport.Float(53.08), Zoom: viewport.Float(14),
	})
	tiles := Visible(vp, Options{})
	expected := maptile.At(orb.Point{8.8, 53.08}, 14)
	found := false
	for _, tile := range tiles {
		if tile == expected {
			found = true
		}
	}
	if !found || len(tiles) > 4 {
		t.Fatal(tiles, expected)
	}
}

func TestVisibleAntimeridian(t *testing.T) {
	vp := mustViewport(t, viewport.MercatorParams{
		Width: 512, Height: 512,
		Longitude: viewport.Float(180), Latitude: viewport.Float(0), Zoom: viewport.Float(2),
	})
	tiles := Visible(vp, Options{})
	xs := map[uint32]bool{}
	for _, tile := range tiles {
		if tile.X >= 4 {
			t.Errorf("tile outside of world: %v", tile)
		}
		xs[tile.X] = true
	}
	if !xs[0] || !xs[3] {
		t.Errorf("expected tiles from both sides of the antimeridian: %v", tiles)
	}
}

func TestVisiblePitched(t *testing.T) {
	params := viewport.MercatorParams{
		Width: 800, Height: 600,
		Longitude: viewport.Float(13.4), Latitude: viewport.Float(52.5), Zoom: viewport.Float(12),
	}
	flat := Visible(mustViewport(t, params), Options{})

	params.Pitch = 60
	params.Bearing = 30
	pitched := Visible(mustViewport(t, params), Options{})

	if len(pitched) <= len(flat) {
		t.Errorf("pitched view should show more tiles: %d <= %d", len(pitched), len(flat))
	}
	seen := map[maptile.Tile]bool{}
	for _, tile := range pitched {
		if seen[tile] {
			t.Errorf("duplicate tile %v", tile)
		}
		seen[tile] = true
	}
	center := maptile.At(orb.Point{13.4, 52.5}, 12)
	if !seen[center] {
		t.Errorf("center tile %v missing", center)
	}
}

func TestZoom(t *testing.T) {
	vp := mustViewport(t, viewport.MercatorParams{Zoom: viewport.Float(11.6)})
	for _, tc := range []struct {
		opts     Options
		expected maptile.Zoom
	}{
		{Options{}, 12},
		{Options{TileSize: 256}, 13},
		{Options{MaxZoom: 10}, 10},
		{Options{MinZoom: 14, MaxZoom: 16}, 14},
	} {
		if z := Zoom(vp, tc.opts); z != tc.expected {
			t.Errorf("%+v: %d != %d", tc.opts, z, tc.expected)
		}
	}

	// zero MaxZoom limits to DefaultMaxZoom
	vp = mustViewport(t, viewport.MercatorParams{Zoom: viewport.Float(24)})
	if z := Zoom(vp, Options{}); z != DefaultMaxZoom {
		t.Errorf("%d != %d", z, DefaultMaxZoom)
	}
}

func TestHilbert(t *testing.T) {
	for _, tc := range []struct {
		x, y, z uint32
		d       uint64
	}{
		{0, 0, 0, 0},
		{0, 0, 1, 0},
		{0, 1, 1, 1},
		{1, 1, 1, 2},
		{1, 0, 1, 3},
		{2, 0, 2, 14},
		{1, 3, 3, 12},
	} {
		if d := hilbert(tc.x, tc.y, tc.z); d != tc.d {
			t.Errorf("hilbert(%d, %d, %d) = %d, expected %d", tc.x, tc.y, tc.z, d, tc.d)
		}
	}
}

func TestWrite(t *testing.T) {
	buf := bytes.Buffer{}
	err := Write(&buf, maptile.Tiles{maptile.New(0, 0, 0), maptile.New(8565, 5325, 14)})
	if err != nil {
		t.Fatal(err)
	}
	if buf.String() != "0/0/0\n14/8565/5325\n" {
		t.Error(buf.String())
	}
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	fileName, err := WriteFile(dir, maptile.Tiles{maptile.New(1, 2, 3)})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(fileName, ".tiles") || !strings.HasPrefix(fileName, dir) {
		t.Error(fileName)
	}
	content, err := ioutil.ReadFile(fileName)
	if err != nil {
		t.Fatal(err)
	}
	if string(content) != "3/1/2\n" {
		t.Error(string(content))
	}
	if matches, _ := filepath.Glob(filepath.Join(dir, "*", "*.tiles~")); len(matches) != 0 {
		t.Error("temporary file left", matches)
	}
}
