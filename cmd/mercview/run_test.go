package main

import (
	"bytes"
	"context"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omniscale/mercview/config"
)

func runCmd(t *testing.T, cmd string, args ...string) string {
	t.Helper()
	opts, err := config.Parse(cmd, args)
	require.NoError(t, err)
	buf := bytes.Buffer{}
	require.NoError(t, run(context.Background(), &buf, opts))
	return buf.String()
}

var berlin = []string{"--width", "800", "--height", "600", "--longitude", "13.4", "--latitude", "52.5", "--zoom", "10"}

func TestProjectCenter(t *testing.T) {
	out := runCmd(t, "project", append(berlin, "13.4,52.5")...)
	assert.True(t, strings.HasPrefix(out, "400.000000 300.000000 "), out)
}

func TestUnprojectCenter(t *testing.T) {
	out := runCmd(t, "unproject", append(berlin, "400,300")...)
	assert.Equal(t, "13.40000000 52.50000000\n", out)
}

func TestProjectUnprojectDepth(t *testing.T) {
	pitched := append(berlin, "--pitch", "45", "--bearing", "20")
	out := runCmd(t, "project", append(pitched, "13.5,52.55,100")...)
	fields := strings.Fields(out)
	require.Len(t, fields, 3)

	out = runCmd(t, "unproject", append(pitched, strings.Join(fields, ","))...)
	fields = strings.Fields(out)
	require.Len(t, fields, 3)
	lng, _ := strconv.ParseFloat(fields[0], 64)
	lat, _ := strconv.ParseFloat(fields[1], 64)
	z, _ := strconv.ParseFloat(fields[2], 64)
	assert.InDelta(t, 13.5, lng, 1e-6)
	assert.InDelta(t, 52.55, lat, 1e-6)
	assert.InDelta(t, 100, z, 1e-3)
}

func TestFitBoundsCommand(t *testing.T) {
	out := runCmd(t, "fit", "--width", "600", "--height", "400", "--bounds", "-73.9876,40.7661,-72.9876,41.7661")
	assert.Contains(t, out, "longitude: -73.48760000\n")
	assert.Contains(t, out, "zoom: ")
}

func TestTilesCommand(t *testing.T) {
	out := runCmd(t, "tiles", "--width", "512", "--height", "512", "--longitude", "0", "--latitude", "0", "--zoom", "0")
	assert.Equal(t, "0/0/0\n", out)
}

func TestScalesCommand(t *testing.T) {
	out := runCmd(t, "scales", "--latitude", "0", "--zoom", "0")
	assert.Contains(t, out, "pixels_per_meter: ")
	assert.NotContains(t, out, "pixels_per_meter2")

	out = runCmd(t, "scales", "--latitude", "45", "--zoom", "10", "--high-precision")
	assert.Contains(t, out, "pixels_per_meter2: ")
}

func TestProjectInvalidCoordinate(t *testing.T) {
	opts, err := config.Parse("project", []string{"1,2,3,4"})
	require.NoError(t, err)
	assert.Error(t, run(context.Background(), &bytes.Buffer{}, opts))
}
