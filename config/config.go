// Package config parses the command line options of the mercview
// sub-commands. Viewport, fit and tile settings can also be loaded from a
// YAML file with --config. Explicit flags override values from the file.
package config

import (
	"fmt"
	"io"
	"io/ioutil"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/hashicorp/go-multierror"
	"github.com/paulmach/orb"
	"github.com/pkg/errors"
	flag "github.com/spf13/pflag"
	"gopkg.in/yaml.v2"

	"github.com/omniscale/mercview/tiles"
	"github.com/omniscale/mercview/viewport"
)

type Config struct {
	Viewport Viewport `yaml:"viewport"`
	Fit      Fit      `yaml:"fit"`
	Tiles    Tiles    `yaml:"tiles"`
}

// Viewport describes a Web Mercator camera. Nil values fall back to the
// viewport defaults.
type Viewport struct {
	Width          float64  `yaml:"width"`
	Height         float64  `yaml:"height"`
	Longitude      *float64 `yaml:"longitude"`
	Latitude       *float64 `yaml:"latitude"`
	Zoom           *float64 `yaml:"zoom"`
	Pitch          float64  `yaml:"pitch"`
	Bearing        float64  `yaml:"bearing"`
	Altitude       *float64 `yaml:"altitude"`
	FarZMultiplier float64  `yaml:"far_z_multiplier"`
}

type Padding struct {
	Top    float64 `yaml:"top"`
	Bottom float64 `yaml:"bottom"`
	Left   float64 `yaml:"left"`
	Right  float64 `yaml:"right"`
}

type Fit struct {
	Padding Padding   `yaml:"padding"`
	Offset  []float64 `yaml:"offset"`
	MaxZoom float64   `yaml:"max_zoom"`
}

type Tiles struct {
	TileSize int `yaml:"tile_size"`
	MinZoom  int `yaml:"min_zoom"`
	MaxZoom  int `yaml:"max_zoom"`
}

const defaultWidth = 800
const defaultHeight = 600

func (v Viewport) MercatorParams() viewport.MercatorParams {
	return viewport.MercatorParams{
		Width:          v.Width,
		Height:         v.Height,
		Longitude:      v.Longitude,
		Latitude:       v.Latitude,
		Zoom:           v.Zoom,
		Altitude:       v.Altitude,
		Pitch:          v.Pitch,
		Bearing:        v.Bearing,
		FarZMultiplier: v.FarZMultiplier,
	}
}

func (f Fit) Options() viewport.FitBoundsOptions {
	opts := viewport.FitBoundsOptions{
		Padding: viewport.Padding{
			Top:    f.Padding.Top,
			Bottom: f.Padding.Bottom,
			Left:   f.Padding.Left,
			Right:  f.Padding.Right,
		},
		MaxZoom: f.MaxZoom,
	}
	if len(f.Offset) == 2 {
		opts.Offset = mgl64.Vec2{f.Offset[0], f.Offset[1]}
	}
	return opts
}

func (t Tiles) Options() tiles.Options {
	return tiles.Options{
		TileSize: t.TileSize,
		MinZoom:  t.MinZoom,
		MaxZoom:  t.MaxZoom,
	}
}

// Load reads a YAML config.
func Load(r io.Reader) (Config, error) {
	conf := Config{}
	b, err := ioutil.ReadAll(r)
	if err != nil {
		return conf, errors.Wrap(err, "reading config")
	}
	if err := yaml.UnmarshalStrict(b, &conf); err != nil {
		return conf, errors.Wrap(err, "parsing config")
	}
	return conf, nil
}

// LoadFile reads a YAML config file.
func LoadFile(fileName string) (Config, error) {
	f, err := os.Open(fileName)
	if err != nil {
		return Config{}, errors.WithStack(err)
	}
	defer f.Close()
	conf, err := Load(f)
	return conf, errors.Wrap(err, fileName)
}

type Options struct {
	Command    string
	ConfigFile string
	Quiet      bool
	Debug      bool

	// project/unproject
	BottomLeft bool
	// fit, nil if --bounds is not set
	Bounds      *orb.Bound
	OSMFile     string
	ShapeFile   string
	GeoJSONFile string
	// tiles
	OutDir string
	// scales
	HighPrecision bool

	Config Config
	// Args are the positional arguments after the flags.
	Args []string
}

// flagValues hold the values of flags that are merged into Config.
type flagValues struct {
	width, height       float64
	lon, lat, zoom, alt float64
	pitch, bearing      float64
	farZ                float64

	bounds  string
	padding float64
	offset  string
	fitZoom float64

	tileSize         int
	minZoom, maxZoom int
}

var Commands = []string{"project", "unproject", "fit", "tiles", "scales"}

func newFlagSet(cmd string, o *Options, v *flagValues) (*flag.FlagSet, error) {
	flags := flag.NewFlagSet(cmd, flag.ContinueOnError)
	flags.StringVar(&o.ConfigFile, "config", "", "config (yaml)")
	flags.BoolVar(&o.Quiet, "quiet", false, "quiet log output")
	flags.BoolVar(&o.Debug, "debug", false, "debug log output")

	addViewportFlags := func() {
		flags.Float64Var(&v.width, "width", defaultWidth, "viewport width in pixels")
		flags.Float64Var(&v.height, "height", defaultHeight, "viewport height in pixels")
		flags.Float64Var(&v.lon, "longitude", viewport.DefaultLongitude, "center longitude")
		flags.Float64Var(&v.lat, "latitude", viewport.DefaultLatitude, "center latitude")
		flags.Float64Var(&v.zoom, "zoom", viewport.DefaultZoom, "zoom level")
		flags.Float64Var(&v.alt, "altitude", viewport.DefaultAltitude, "camera altitude in screen heights")
		flags.Float64Var(&v.pitch, "pitch", 0, "pitch in degrees")
		flags.Float64Var(&v.bearing, "bearing", 0, "bearing in degrees")
		flags.Float64Var(&v.farZ, "far-z-multiplier", viewport.DefaultFarZMultiplier, "far clipping plane multiplier")
	}

	switch cmd {
	case "project", "unproject":
		addViewportFlags()
		flags.BoolVar(&o.BottomLeft, "bottom-left", false, "pixel origin in the bottom left corner")
	case "fit":
		flags.Float64Var(&v.width, "width", defaultWidth, "viewport width in pixels")
		flags.Float64Var(&v.height, "height", defaultHeight, "viewport height in pixels")
		flags.StringVar(&v.bounds, "bounds", "", "bounds as west,south,east,north")
		flags.StringVar(&o.OSMFile, "osm", "", "fit to the nodes of this .osm.pbf file")
		flags.StringVar(&o.ShapeFile, "shp", "", "fit to the extent of this .shp file")
		flags.StringVar(&o.GeoJSONFile, "geojson", "", "fit to the features of this GeoJSON file")
		flags.Float64Var(&v.padding, "padding", 0, "padding in pixels on all sides")
		flags.StringVar(&v.offset, "offset", "", "offset of the bounds center as x,y pixels")
		flags.Float64Var(&v.fitZoom, "max-zoom", viewport.DefaultMaxZoom, "maximum zoom")
	case "tiles":
		addViewportFlags()
		flags.IntVar(&v.tileSize, "tile-size", tiles.DefaultTileSize, "tile size in pixels")
		flags.IntVar(&v.minZoom, "min-zoom", 0, "minimum tile zoom")
		flags.IntVar(&v.maxZoom, "max-zoom", tiles.DefaultMaxZoom, "maximum tile zoom")
		flags.StringVar(&o.OutDir, "out", "", "write tile list into this directory")
	case "scales":
		addViewportFlags()
		flags.BoolVar(&o.HighPrecision, "high-precision", false, "add the per-pixel scale derivatives")
	default:
		return nil, errors.Errorf("unknown command %q", cmd)
	}
	return flags, nil
}

// Usage writes the flag defaults of cmd.
func Usage(w io.Writer, cmd string) {
	flags, err := newFlagSet(cmd, &Options{}, &flagValues{})
	if err != nil {
		fmt.Fprintln(w, err)
		return
	}
	flags.SetOutput(w)
	flags.PrintDefaults()
}

// Parse parses the arguments of cmd and merges them with the config file.
// Errors of all invalid options are returned as a single *multierror.Error.
func Parse(cmd string, args []string) (*Options, error) {
	o := &Options{Command: cmd}
	v := &flagValues{}
	flags, err := newFlagSet(cmd, o, v)
	if err != nil {
		return nil, err
	}
	flags.SetOutput(ioutil.Discard)
	if err := flags.Parse(args); err != nil {
		return nil, err
	}
	o.Args = flags.Args()

	if err := o.updateFromConfig(flags, v); err != nil {
		return nil, err
	}
	if err := o.check(); err != nil {
		return nil, err
	}
	return o, nil
}

func (o *Options) updateFromConfig(flags *flag.FlagSet, v *flagValues) error {
	if o.ConfigFile != "" {
		conf, err := LoadFile(o.ConfigFile)
		if err != nil {
			return err
		}
		o.Config = conf
	}
	conf := &o.Config

	floatOpt := func(name string, dst *float64, val float64) {
		if flags.Changed(name) || (*dst == 0 && flags.Lookup(name) != nil) {
			*dst = val
		}
	}
	ptrOpt := func(name string, dst **float64, val float64) {
		if flags.Changed(name) {
			*dst = &val
		}
	}
	intOpt := func(name string, dst *int, val int) {
		if flags.Changed(name) || (*dst == 0 && flags.Lookup(name) != nil) {
			*dst = val
		}
	}

	floatOpt("width", &conf.Viewport.Width, v.width)
	floatOpt("height", &conf.Viewport.Height, v.height)
	ptrOpt("longitude", &conf.Viewport.Longitude, v.lon)
	ptrOpt("latitude", &conf.Viewport.Latitude, v.lat)
	ptrOpt("zoom", &conf.Viewport.Zoom, v.zoom)
	ptrOpt("altitude", &conf.Viewport.Altitude, v.alt)
	if flags.Changed("pitch") {
		conf.Viewport.Pitch = v.pitch
	}
	if flags.Changed("bearing") {
		conf.Viewport.Bearing = v.bearing
	}
	if flags.Changed("far-z-multiplier") {
		conf.Viewport.FarZMultiplier = v.farZ
	}

	switch o.Command {
	case "fit":
		if flags.Changed("padding") {
			conf.Fit.Padding = Padding{v.padding, v.padding, v.padding, v.padding}
		}
		if flags.Changed("offset") {
			offset, err := ParseFloats(v.offset, 2, 2)
			if err != nil {
				return errors.Wrap(err, "--offset")
			}
			conf.Fit.Offset = offset
		}
		floatOpt("max-zoom", &conf.Fit.MaxZoom, v.fitZoom)
		if v.bounds != "" {
			vals, err := ParseFloats(v.bounds, 4, 4)
			if err != nil {
				return errors.Wrap(err, "--bounds")
			}
			o.Bounds = &orb.Bound{
				Min: orb.Point{vals[0], vals[1]},
				Max: orb.Point{vals[2], vals[3]},
			}
		}
	case "tiles":
		intOpt("tile-size", &conf.Tiles.TileSize, v.tileSize)
		intOpt("min-zoom", &conf.Tiles.MinZoom, v.minZoom)
		intOpt("max-zoom", &conf.Tiles.MaxZoom, v.maxZoom)
	}
	return nil
}

func (o *Options) check() error {
	var errs *multierror.Error
	vp := o.Config.Viewport

	if vp.Width < 0 || vp.Height < 0 {
		errs = multierror.Append(errs, errors.Errorf("negative viewport size %vx%v", vp.Width, vp.Height))
	}
	for _, opt := range []struct {
		name string
		val  *float64
	}{
		{"longitude", vp.Longitude},
		{"latitude", vp.Latitude},
		{"zoom", vp.Zoom},
		{"altitude", vp.Altitude},
	} {
		if opt.val != nil && !isFinite(*opt.val) {
			errs = multierror.Append(errs, errors.Errorf("%s is not a finite number", opt.name))
		}
	}
	if vp.Pitch < 0 || vp.Pitch > 85 {
		errs = multierror.Append(errs, errors.Errorf("pitch %v not in [0, 85]", vp.Pitch))
	}
	if vp.FarZMultiplier < 0 {
		errs = multierror.Append(errs, errors.New("negative far-z-multiplier"))
	}

	switch o.Command {
	case "fit":
		sources := 0
		if o.Bounds != nil {
			sources++
			if o.Bounds.Min.Lon() > o.Bounds.Max.Lon() || o.Bounds.Min.Lat() > o.Bounds.Max.Lat() {
				errs = multierror.Append(errs, errors.New("bounds need to be west,south,east,north"))
			}
		}
		if o.OSMFile != "" {
			sources++
		}
		if o.ShapeFile != "" {
			sources++
		}
		if o.GeoJSONFile != "" {
			sources++
		}
		if sources != 1 {
			errs = multierror.Append(errs, errors.New("need exactly one of --bounds, --osm, --shp or --geojson"))
		}
		if l := len(o.Config.Fit.Offset); l != 0 && l != 2 {
			errs = multierror.Append(errs, errors.New("fit offset needs two values"))
		}
		if o.Config.Fit.MaxZoom < 0 {
			errs = multierror.Append(errs, errors.New("negative fit max zoom"))
		}
	case "tiles":
		t := o.Config.Tiles
		if t.TileSize < 0 || t.TileSize&(t.TileSize-1) != 0 {
			errs = multierror.Append(errs, errors.Errorf("tile size %d is not a power of two", t.TileSize))
		}
		if t.MinZoom < 0 || (t.MaxZoom != 0 && t.MinZoom > t.MaxZoom) {
			errs = multierror.Append(errs, errors.Errorf("invalid zoom range %d-%d", t.MinZoom, t.MaxZoom))
		}
	case "project", "unproject":
		if len(o.Args) == 0 {
			errs = multierror.Append(errs, errors.New("missing coordinates"))
		}
	}
	return errs.ErrorOrNil()
}

// ParseFloats parses comma separated numbers. The number of values needs
// to be within min and max.
func ParseFloats(s string, min, max int) ([]float64, error) {
	parts := strings.Split(s, ",")
	if len(parts) < min || len(parts) > max {
		if min == max {
			return nil, errors.Errorf("expected %d values in %q", min, s)
		}
		return nil, errors.Errorf("expected %d to %d values in %q", min, max, s)
	}
	vals := make([]float64, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid number in %q", s)
		}
		vals[i] = v
	}
	return vals, nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
