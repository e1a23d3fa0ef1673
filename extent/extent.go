// Package extent calculates geographic bounds of OSM and shapefile data,
// for use with viewport.FitBounds.
//
// All coordinates are expected in EPSG:4326 (longitude/latitude).
package extent

import (
	"context"
	"encoding/json"
	"io"
	"io/ioutil"
	"math"
	"strings"

	"github.com/jonas-p/go-shp"
	osm "github.com/omniscale/go-osm"
	"github.com/omniscale/go-osm/parser/pbf"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/pkg/errors"
)

// ErrEmpty is returned when the input contains no coordinates.
var ErrEmpty = errors.New("no coordinates found")

// Empty is an inverted bound that contains nothing. Extending it with a
// point results in the bound of that point.
var Empty = orb.Bound{
	Min: orb.Point{math.Inf(1), math.Inf(1)},
	Max: orb.Point{math.Inf(-1), math.Inf(-1)},
}

// Extend returns b extended by all nodes.
func Extend(b orb.Bound, nodes []osm.Node) orb.Bound {
	for _, nd := range nodes {
		b = b.Extend(orb.Point{nd.Long, nd.Lat})
	}
	return b
}

// FromNodes returns the bound of all nodes. Returns a zero bound for no
// nodes.
func FromNodes(nodes []osm.Node) orb.Bound {
	b := Extend(Empty, nodes)
	if b.IsEmpty() {
		return orb.Bound{}
	}
	return b
}

// FromPBF returns the bound of all nodes in an OSM PBF file. The file is
// parsed concurrently. Parsing stops when ctx is canceled.
func FromPBF(ctx context.Context, r io.Reader) (orb.Bound, error) {
	coords := make(chan []osm.Node, 4)
	parser := pbf.New(r, pbf.Config{
		Coords: coords,
	})
	if _, err := parser.Header(); err != nil {
		return orb.Bound{}, errors.Wrap(err, "reading pbf header")
	}

	b := Empty
	done := make(chan struct{})
	go func() {
		for nodes := range coords {
			b = Extend(b, nodes)
		}
		close(done)
	}()

	if err := parser.Parse(ctx); err != nil {
		if ctx.Err() != nil {
			// parser closes coords after cancellation
			<-done
			return orb.Bound{}, ctx.Err()
		}
		return orb.Bound{}, errors.Wrap(err, "parsing pbf")
	}
	<-done

	if b.IsEmpty() {
		return orb.Bound{}, ErrEmpty
	}
	return b, nil
}

// FromShapefile returns the bound stored in the header of a .shp file.
func FromShapefile(path string) (orb.Bound, error) {
	if !strings.HasSuffix(strings.ToLower(path), ".shp") {
		return orb.Bound{}, errors.Errorf("not a shapefile: %s", path)
	}
	r, err := shp.Open(path)
	if err != nil {
		return orb.Bound{}, errors.Wrapf(err, "opening %s", path)
	}
	defer r.Close()

	if !r.Next() {
		return orb.Bound{}, ErrEmpty
	}
	box := r.BBox()
	return orb.Bound{
		Min: orb.Point{box.MinX, box.MinY},
		Max: orb.Point{box.MaxX, box.MaxY},
	}, nil
}

// FromGeoJSON returns the bound of a GeoJSON FeatureCollection, Feature or
// geometry.
func FromGeoJSON(r io.Reader) (orb.Bound, error) {
	data, err := ioutil.ReadAll(r)
	if err != nil {
		return orb.Bound{}, errors.Wrap(err, "reading geojson")
	}
	obj := struct {
		Type string `json:"type"`
	}{}
	if err := json.Unmarshal(data, &obj); err != nil {
		return orb.Bound{}, errors.Wrap(err, "parsing geojson")
	}

	var geoms []orb.Geometry
	switch obj.Type {
	case "FeatureCollection":
		fc, err := geojson.UnmarshalFeatureCollection(data)
		if err != nil {
			return orb.Bound{}, errors.Wrap(err, "parsing geojson")
		}
		for _, f := range fc.Features {
			geoms = append(geoms, f.Geometry)
		}
	case "Feature":
		f, err := geojson.UnmarshalFeature(data)
		if err != nil {
			return orb.Bound{}, errors.Wrap(err, "parsing geojson")
		}
		geoms = append(geoms, f.Geometry)
	default:
		g, err := geojson.UnmarshalGeometry(data)
		if err != nil {
			return orb.Bound{}, errors.Wrap(err, "parsing geojson")
		}
		geoms = append(geoms, g.Geometry())
	}

	b := Empty
	for _, g := range geoms {
		if g == nil {
			continue
		}
		b = b.Union(g.Bound())
	}
	if b.IsEmpty() {
		return orb.Bound{}, ErrEmpty
	}
	return b, nil
}
