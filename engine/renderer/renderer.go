package renderer

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/spaghettifunk/teapots/engine/core"
	"github.com/spaghettifunk/teapots/engine/renderer/logview"
	"github.com/spaghettifunk/teapots/engine/renderer/metadata"
	"github.com/spaghettifunk/teapots/engine/renderer/raster"
	"github.com/spaghettifunk/teapots/engine/renderer/stream"
)

type RendererType string

const (
	Log  RendererType = "log"
	YAML RendererType = "yaml"
	TOML RendererType = "toml"
	PNG  RendererType = "png"
)

// BackendOptions carries the output settings shared by the built-in backends.
type BackendOptions struct {
	// Destination of the yaml/toml frame stream; "-" or empty is stdout.
	Stream string
	// Directory png snapshots are written to.
	Dir string
	// Write a png every N frames; 0 only writes the last frame.
	PNGEvery uint64
	// Log output, stderr when nil.
	LogOutput io.Writer
}

// NewBackend builds a built-in backend by name.
func NewBackend(name string, opts BackendOptions) (RendererBackend, error) {
	switch RendererType(strings.ToLower(strings.TrimSpace(name))) {
	case Log:
		out := opts.LogOutput
		if out == nil {
			out = os.Stderr
		}
		return logview.New(out), nil
	case YAML:
		w, err := openStream(opts.Stream)
		if err != nil {
			return nil, err
		}
		return stream.New(w, stream.FormatYAML), nil
	case TOML:
		w, err := openStream(opts.Stream)
		if err != nil {
			return nil, err
		}
		return stream.New(w, stream.FormatTOML), nil
	case PNG:
		return raster.New(opts.Dir, opts.PNGEvery), nil
	}
	return nil, errors.Wrapf(core.ErrUnknownBackend, "%q", name)
}

func openStream(path string) (io.Writer, error) {
	if path == "" || path == "-" {
		return os.Stdout, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, errors.Wrapf(err, "failed to create %q", filepath.Dir(path))
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open stream %q", path)
	}
	return f, nil
}

// RendererSystem fans every frame out to its backends.
type RendererSystem struct {
	backends []RendererBackend
}

func NewRendererSystem(backends ...RendererBackend) *RendererSystem {
	return &RendererSystem{backends: backends}
}

func (r *RendererSystem) AddBackend(backend RendererBackend) {
	r.backends = append(r.backends, backend)
}

func (r *RendererSystem) Backends() []RendererBackend {
	return r.backends
}

func (r *RendererSystem) Initialize(appName string, appWidth, appHeight uint32) error {
	for _, b := range r.backends {
		if err := b.Initialize(appName, appWidth, appHeight); err != nil {
			return errors.Wrapf(err, "failed to initialize %T", b)
		}
	}
	core.LogInfo("Renderer initialized with %d backend(s).", len(r.backends))
	return nil
}

// Shutdown shuts down every backend and returns the first error.
func (r *RendererSystem) Shutdown() error {
	var first error
	for _, b := range r.backends {
		if err := b.Shutdown(); err != nil {
			core.LogError("failed to shut down %T: %v", b, err)
			if first == nil {
				first = err
			}
		}
	}
	return first
}

func (r *RendererSystem) OnResize(width, height uint32) error {
	for _, b := range r.backends {
		if err := b.Resized(width, height); err != nil {
			return err
		}
	}
	return nil
}

// DrawFrame submits each geometry of the packet with the packet's projection
// and view, in packet order.
func (r *RendererSystem) DrawFrame(renderPacket *metadata.RenderPacket) error {
	for _, b := range r.backends {
		if err := b.BeginFrame(renderPacket); err != nil {
			core.LogError("BeginFrame failed: %v", err)
			return err
		}
		for _, g := range renderPacket.Geometries {
			if err := b.DrawGeometry(renderPacket.ProjectionMatrix, renderPacket.ViewMatrix, g); err != nil {
				return errors.Wrapf(err, "failed to draw %q", g.Name)
			}
		}
		if err := b.EndFrame(renderPacket); err != nil {
			core.LogError("EndFrame failed. Application shutting down...")
			return err
		}
	}
	return nil
}
