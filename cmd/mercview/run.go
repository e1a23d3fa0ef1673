package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/paulmach/orb"
	"github.com/pkg/errors"

	"github.com/omniscale/mercview/config"
	"github.com/omniscale/mercview/extent"
	"github.com/omniscale/mercview/log"
	"github.com/omniscale/mercview/proj"
	"github.com/omniscale/mercview/tiles"
	"github.com/omniscale/mercview/viewport"
)

func run(ctx context.Context, w io.Writer, opts *config.Options) error {
	switch opts.Command {
	case "project":
		return project(w, opts)
	case "unproject":
		return unproject(w, opts)
	case "fit":
		return fit(ctx, w, opts)
	case "tiles":
		return visibleTiles(w, opts)
	case "scales":
		return scales(w, opts)
	}
	return errors.Errorf("unknown command %q", opts.Command)
}

func newViewport(opts *config.Options) (*viewport.MercatorViewport, error) {
	vp, err := viewport.NewMercator(opts.Config.Viewport.MercatorParams())
	if err != nil {
		return nil, err
	}
	log.Printf("[info] viewport %.0fx%.0f at %.6f,%.6f zoom %.2f pitch %.1f bearing %.1f",
		vp.Width(), vp.Height(), vp.Longitude(), vp.Latitude(), vp.Zoom(), vp.Pitch(), vp.Bearing())
	if m, err := vp.Matrices(nil); err == nil {
		log.Dump("matrices", m)
	}
	return vp, nil
}

func project(w io.Writer, opts *config.Options) error {
	vp, err := newViewport(opts)
	if err != nil {
		return err
	}
	popts := viewport.ProjectOptions{BottomLeft: opts.BottomLeft}
	for _, arg := range opts.Args {
		vals, err := config.ParseFloats(arg, 2, 3)
		if err != nil {
			return err
		}
		lngLat := mgl64.Vec3{vals[0], vals[1], 0}
		if len(vals) == 3 {
			lngLat[2] = vals[2]
		}
		px := vp.Project(lngLat, popts)
		fmt.Fprintf(w, "%.6f %.6f %.9f\n", px[0], px[1], px[2])
	}
	return nil
}

func unproject(w io.Writer, opts *config.Options) error {
	vp, err := newViewport(opts)
	if err != nil {
		return err
	}
	uopts := viewport.UnprojectOptions{BottomLeft: opts.BottomLeft}
	for _, arg := range opts.Args {
		vals, err := config.ParseFloats(arg, 2, 3)
		if err != nil {
			return err
		}
		if len(vals) == 3 {
			ll := vp.Unproject3(mgl64.Vec3{vals[0], vals[1], vals[2]}, uopts)
			fmt.Fprintf(w, "%.8f %.8f %.6f\n", ll[0], ll[1], ll[2])
			continue
		}
		ll := vp.Unproject(mgl64.Vec2{vals[0], vals[1]}, uopts)
		fmt.Fprintf(w, "%.8f %.8f\n", ll[0], ll[1])
	}
	return nil
}

func fitBounds(ctx context.Context, opts *config.Options) (orb.Bound, error) {
	switch {
	case opts.Bounds != nil:
		return *opts.Bounds, nil
	case opts.ShapeFile != "":
		return extent.FromShapefile(opts.ShapeFile)
	case opts.GeoJSONFile != "":
		f, err := os.Open(opts.GeoJSONFile)
		if err != nil {
			return orb.Bound{}, errors.WithStack(err)
		}
		defer f.Close()
		return extent.FromGeoJSON(f)
	case opts.OSMFile != "":
		f, err := os.Open(opts.OSMFile)
		if err != nil {
			return orb.Bound{}, errors.WithStack(err)
		}
		defer f.Close()
		defer log.Step("Reading extent of " + opts.OSMFile)()
		return extent.FromPBF(ctx, f)
	}
	return orb.Bound{}, errors.New("missing bounds")
}

func fit(ctx context.Context, w io.Writer, opts *config.Options) error {
	bounds, err := fitBounds(ctx, opts)
	if err != nil {
		return err
	}
	log.Printf("[info] fitting bounds %v,%v %v,%v", bounds.Min.Lon(), bounds.Min.Lat(), bounds.Max.Lon(), bounds.Max.Lat())

	cam, err := viewport.FitBounds(viewport.FitBoundsParams{
		Width:            opts.Config.Viewport.Width,
		Height:           opts.Config.Viewport.Height,
		Bounds:           bounds,
		FitBoundsOptions: opts.Config.Fit.Options(),
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "longitude: %.8f\nlatitude: %.8f\nzoom: %.6f\n", cam.Longitude, cam.Latitude, cam.Zoom)
	return nil
}

func visibleTiles(w io.Writer, opts *config.Options) error {
	vp, err := newViewport(opts)
	if err != nil {
		return err
	}
	topts := opts.Config.Tiles.Options()
	visible := tiles.Visible(vp, topts)
	log.Printf("[info] %d visible tiles at zoom %d", len(visible), tiles.Zoom(vp, topts))

	if opts.OutDir != "" {
		fileName, err := tiles.WriteFile(opts.OutDir, visible)
		if err != nil {
			return err
		}
		log.Printf("[info] wrote %s", fileName)
		return nil
	}
	return tiles.Write(w, visible)
}

func scales(w io.Writer, opts *config.Options) error {
	vp, err := newViewport(opts)
	if err != nil {
		return err
	}
	s, err := proj.GetDistanceScales(proj.DistanceScalesOptions{
		Longitude:     vp.Longitude(),
		Latitude:      vp.Latitude(),
		Zoom:          vp.Zoom(),
		HighPrecision: opts.HighPrecision,
	})
	if err != nil {
		return err
	}
	log.Dump("distance scales", s)

	fmt.Fprintf(w, "pixels_per_meter: %.9g %.9g %.9g\n", s.PixelsPerMeter[0], s.PixelsPerMeter[1], s.PixelsPerMeter[2])
	fmt.Fprintf(w, "meters_per_pixel: %.9g %.9g %.9g\n", s.MetersPerPixel[0], s.MetersPerPixel[1], s.MetersPerPixel[2])
	fmt.Fprintf(w, "pixels_per_degree: %.9g %.9g %.9g\n", s.PixelsPerDegree[0], s.PixelsPerDegree[1], s.PixelsPerDegree[2])
	fmt.Fprintf(w, "degrees_per_pixel: %.9g %.9g %.9g\n", s.DegreesPerPixel[0], s.DegreesPerPixel[1], s.DegreesPerPixel[2])
	if opts.HighPrecision {
		fmt.Fprintf(w, "pixels_per_degree2: %.9g %.9g %.9g\n", s.PixelsPerDegree2[0], s.PixelsPerDegree2[1], s.PixelsPerDegree2[2])
		fmt.Fprintf(w, "pixels_per_meter2: %.9g %.9g %.9g\n", s.PixelsPerMeter2[0], s.PixelsPerMeter2[1], s.PixelsPerMeter2[2])
	}
	return nil
}
