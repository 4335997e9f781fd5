package config

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/spaghettifunk/teapots/engine/animation"
	"github.com/spaghettifunk/teapots/engine/core"
)

type Format string

const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
)

// FormatFromPath picks the decoder from the file extension; anything that is
// not .yaml/.yml is read as TOML.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	}
	return FormatTOML
}

type Config struct {
	Application ApplicationConfig `toml:"application" yaml:"application"`
	Engine      EngineConfig      `toml:"engine" yaml:"engine"`
	Animation   AnimationConfig   `toml:"animation" yaml:"animation"`
	Projection  ProjectionConfig  `toml:"projection" yaml:"projection"`
	Input       InputConfig       `toml:"input" yaml:"input"`
	Output      OutputConfig      `toml:"output" yaml:"output"`
	Server      ServerConfig      `toml:"server" yaml:"server"`
}

type ApplicationConfig struct {
	// The application name used in logs and exported files.
	Name string `toml:"name" yaml:"name"`
	// Viewport size, used for the aspect ratio and raster output.
	Width    uint32 `toml:"width" yaml:"width"`
	Height   uint32 `toml:"height" yaml:"height"`
	LogLevel string `toml:"log_level" yaml:"log_level"`
}

type EngineConfig struct {
	TargetFPS   int  `toml:"target_fps" yaml:"target_fps"`
	LimitFrames bool `toml:"limit_frames" yaml:"limit_frames"`
	// Stop after this many frames; 0 runs until interrupted.
	Frames    uint64 `toml:"frames" yaml:"frames"`
	QueueSize int    `toml:"queue_size" yaml:"queue_size"`
	// Reload the config file when it changes on disk.
	WatchConfig bool `toml:"watch_config" yaml:"watch_config"`
}

type AnimationConfig struct {
	RotationStep  float64 `toml:"rotation_step" yaml:"rotation_step"`
	FlipStep      float64 `toml:"flip_step" yaml:"flip_step"`
	FlipBound     float64 `toml:"flip_bound" yaml:"flip_bound"`
	FlipMode      string  `toml:"flip_mode" yaml:"flip_mode"`
	SpinStep      float64 `toml:"spin_step" yaml:"spin_step"`
	TranslateStep float64 `toml:"translate_step" yaml:"translate_step"`
}

type ProjectionConfig struct {
	// "perspective" or "orthographic".
	Mode string  `toml:"mode" yaml:"mode"`
	FOV  float64 `toml:"fov" yaml:"fov"`
	Near float64 `toml:"near" yaml:"near"`
	Far  float64 `toml:"far" yaml:"far"`
}

type InputConfig struct {
	// Direction name -> key names, e.g. increase_x = ["d", "right"].
	Bindings map[string][]string `toml:"bindings" yaml:"bindings"`
	// Keys pressed one per frame from the first frame on.
	Script string `toml:"script" yaml:"script"`
}

type OutputConfig struct {
	// Render backends: log, yaml, toml, png.
	Backends []string `toml:"backends" yaml:"backends"`
	// Directory for png snapshots.
	Dir string `toml:"dir" yaml:"dir"`
	// Destination of the yaml/toml frame stream; "-" is stdout.
	Stream string `toml:"stream" yaml:"stream"`
	// Write a png every N frames; 0 writes only the last frame.
	PNGEvery uint64 `toml:"png_every" yaml:"png_every"`
}

type ServerConfig struct {
	// Listen address of the viewer server; empty disables it.
	Addr string `toml:"addr" yaml:"addr"`
}

func Default() *Config {
	s := animation.DefaultSettings()
	return &Config{
		Application: ApplicationConfig{
			Name:     "Viewport Teapots",
			Width:    800,
			Height:   600,
			LogLevel: "info",
		},
		Engine: EngineConfig{
			TargetFPS:   60,
			LimitFrames: true,
			QueueSize:   64,
		},
		Animation: AnimationConfig{
			RotationStep:  s.RotationStep,
			FlipStep:      s.FlipStep,
			FlipBound:     s.FlipBound,
			FlipMode:      s.FlipMode.String(),
			SpinStep:      s.SpinStep,
			TranslateStep: s.TranslateStep,
		},
		Projection: ProjectionConfig{
			Mode: "perspective",
			FOV:  45,
			Near: 0.1,
			Far:  180,
		},
		Input: InputConfig{
			Bindings: map[string][]string{
				animation.DecreaseX.String(): {"a", "left"},
				animation.IncreaseX.String(): {"d", "right"},
				animation.DecreaseY.String(): {"s", "down"},
				animation.IncreaseY.String(): {"w", "up"},
			},
		},
		Output: OutputConfig{
			Backends: []string{"log"},
			Dir:      ".",
			Stream:   "-",
		},
	}
}

// Load reads a config file on top of the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read config %q", path)
	}
	cfg, err := Decode(data, FormatFromPath(path))
	if err != nil {
		return nil, errors.Wrapf(err, "config %q", path)
	}
	return cfg, nil
}

// Decode parses data on top of the defaults and validates the result.
func Decode(data []byte, format Format) (*Config, error) {
	cfg := Default()
	// Bindings in the file replace the default table as a whole.
	cfg.Input.Bindings = nil

	var err error
	switch format {
	case FormatYAML:
		err = yaml.Unmarshal(data, cfg)
	default:
		err = toml.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to decode")
	}
	if cfg.Input.Bindings == nil {
		cfg.Input.Bindings = Default().Input.Bindings
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Encode writes cfg in the given format.
func (c *Config) Encode(w io.Writer, format Format) error {
	var buf bytes.Buffer
	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(c); err != nil {
			return errors.Wrap(err, "failed to encode yaml config")
		}
		if err := enc.Close(); err != nil {
			return errors.Wrap(err, "failed to encode yaml config")
		}
	default:
		if err := toml.NewEncoder(&buf).Encode(c); err != nil {
			return errors.Wrap(err, "failed to encode toml config")
		}
	}
	_, err := w.Write(buf.Bytes())
	return err
}

func (c *Config) Validate() error {
	fail := func(format string, args ...interface{}) error {
		return errors.Wrapf(core.ErrInvalidConfig, format, args...)
	}
	if c.Application.Width == 0 || c.Application.Height == 0 {
		return fail("application size %dx%d", c.Application.Width, c.Application.Height)
	}
	if _, err := core.ParseLogLevel(c.Application.LogLevel); err != nil {
		return fail("log_level %q", c.Application.LogLevel)
	}
	if c.Engine.TargetFPS < 0 {
		return fail("target_fps %d", c.Engine.TargetFPS)
	}
	if _, err := animation.ParseFlipMode(c.Animation.FlipMode); err != nil {
		return fail("flip_mode %q", c.Animation.FlipMode)
	}
	if c.Animation.FlipBound <= 0 {
		return fail("flip_bound %v must be positive", c.Animation.FlipBound)
	}
	if c.Animation.FlipStep < 0 || c.Animation.TranslateStep < 0 {
		return fail("steps must not be negative")
	}
	switch c.Projection.Mode {
	case "perspective":
		if c.Projection.FOV <= 0 || c.Projection.FOV >= 180 {
			return fail("fov %v", c.Projection.FOV)
		}
	case "orthographic":
	default:
		return fail("projection mode %q", c.Projection.Mode)
	}
	if c.Projection.Near <= 0 || c.Projection.Far <= c.Projection.Near {
		return fail("clip planes near=%v far=%v", c.Projection.Near, c.Projection.Far)
	}
	return nil
}

// AnimationSettings converts the [animation] section. Validate must have passed.
func (c *Config) AnimationSettings() animation.Settings {
	mode, _ := animation.ParseFlipMode(c.Animation.FlipMode)
	return animation.Settings{
		RotationStep:  c.Animation.RotationStep,
		FlipStep:      c.Animation.FlipStep,
		FlipBound:     c.Animation.FlipBound,
		FlipMode:      mode,
		SpinStep:      c.Animation.SpinStep,
		TranslateStep: c.Animation.TranslateStep,
	}
}
