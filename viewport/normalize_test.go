package viewport

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/omniscale/mercview/proj"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeParams(t *testing.T) {
	tests := []struct {
		name string
		in   MercatorParams

		longitude, latitude, zoom, bearing float64
	}{
		{
			name: "wrap",
			in: MercatorParams{
				Width: 800, Height: 600,
				Longitude: Float(-200), Latitude: Float(0), Zoom: Float(0),
				Pitch: 60, Bearing: 200,
			},
			longitude: 160, latitude: 0, zoom: 0.22881857712872292, bearing: -160,
		},
		{
			name: "min zoom",
			in: MercatorParams{
				Width: 1000, Height: 1000,
				Longitude: Float(80), Latitude: Float(80), Zoom: Float(0),
			},
			longitude: 80, latitude: 0, zoom: 0.9657841712949484, bearing: 0,
		},
		{
			name: "unchanged",
			in: MercatorParams{
				Width: 800, Height: 600,
				Longitude: Float(-122.4), Latitude: Float(37.8), Zoom: Float(12),
				Bearing: -30,
			},
			longitude: -122.4, latitude: 37.8, zoom: 12, bearing: -30,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			out := NormalizeParams(tc.in)
			require.NotNil(t, out.Longitude)
			require.NotNil(t, out.Latitude)
			require.NotNil(t, out.Zoom)
			assert.InDelta(t, tc.longitude, *out.Longitude, 1e-9)
			assert.InDelta(t, tc.latitude, *out.Latitude, 1e-9)
			assert.InDelta(t, tc.zoom, *out.Zoom, 1e-9)
			assert.InDelta(t, tc.bearing, out.Bearing, 1e-9)
			assert.Equal(t, tc.in.Pitch, out.Pitch)
			assert.Equal(t, tc.in.Width, out.Width)
			assert.Equal(t, tc.in.Height, out.Height)
		})
	}
}

func TestNormalizeParamsClampsLatitude(t *testing.T) {
	for _, lat := range []float64{85, -85} {
		out := NormalizeParams(MercatorParams{
			Width: 512, Height: 512,
			Longitude: Float(0), Latitude: Float(lat), Zoom: Float(1),
		})
		vp, err := NewMercator(out)
		require.NoError(t, err)

		// the top and bottom edge are inside the world
		top := vp.Unproject(mgl64.Vec2{256, 0}, UnprojectOptions{})
		bottom := vp.Unproject(mgl64.Vec2{256, 512}, UnprojectOptions{})
		assert.LessOrEqual(t, top[1], proj.MaxLatitude+1e-6)
		assert.GreaterOrEqual(t, bottom[1], -proj.MaxLatitude-1e-6)
		if lat > 0 {
			assert.InDelta(t, proj.MaxLatitude, top[1], 1e-6)
		} else {
			assert.InDelta(t, -proj.MaxLatitude, bottom[1], 1e-6)
		}
	}
}

func TestWrap180(t *testing.T) {
	for _, tc := range [][2]float64{
		{-200, 160},
		{200, -160},
		{540, -180},
		{-180, -180},
		{359, -1},
		{720.5, 0.5},
	} {
		assert.InDelta(t, tc[1], wrap180(tc[0]), 1e-12, "wrap180(%v)", tc[0])
	}
}
