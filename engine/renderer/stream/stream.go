// Package stream is a render backend that serializes every frame to a writer,
// either as a stream of YAML documents or as TOML [[frame]] tables.
package stream

import (
	"bytes"
	"io"
	"os"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	kmath "github.com/spaghettifunk/teapots/engine/math"
	"github.com/spaghettifunk/teapots/engine/renderer/metadata"
)

type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// Frame is the serialized form of one drawn frame.
type Frame struct {
	Number     uint64      `json:"frame" yaml:"frame" toml:"frame"`
	Width      uint32      `json:"width" yaml:"width" toml:"width"`
	Height     uint32      `json:"height" yaml:"height" toml:"height"`
	Projection [16]float32 `json:"projection" yaml:"projection,flow" toml:"projection"`
	View       [16]float32 `json:"view" yaml:"view,flow" toml:"view"`
	Draws      []Draw      `json:"draws" yaml:"draws" toml:"draws"`
}

// Draw is one draw call: the node, its world position and the full MVP.
type Draw struct {
	ID       uint32      `json:"id" yaml:"id" toml:"id"`
	Name     string      `json:"name" yaml:"name" toml:"name"`
	Parent   int         `json:"parent" yaml:"parent" toml:"parent"`
	Position [3]float32  `json:"position" yaml:"position,flow" toml:"position"`
	Model    [16]float32 `json:"model" yaml:"model,flow" toml:"model"`
	MVP      [16]float32 `json:"mvp" yaml:"mvp,flow" toml:"mvp"`
}

// NewFrame starts the serialized form of packet, without draws.
func NewFrame(packet *metadata.RenderPacket) Frame {
	return Frame{
		Number:     packet.FrameNumber,
		Width:      packet.Width,
		Height:     packet.Height,
		Projection: packet.ProjectionMatrix,
		View:       packet.ViewMatrix,
		Draws:      make([]Draw, 0, len(packet.Geometries)),
	}
}

// NewDraw records one draw call.
func NewDraw(projection, view mgl32.Mat4, data *metadata.GeometryRenderData) Draw {
	return Draw{
		ID:       data.UniqueID,
		Name:     data.Name,
		Parent:   data.Parent,
		Position: kmath.TransformPoint(data.Model, mgl32.Vec3{}),
		Model:    data.Model,
		MVP:      projection.Mul4(view).Mul4(data.Model),
	}
}

// Document is the layout of a whole TOML stream.
type Document struct {
	Frames []Frame `toml:"frame"`
}

type Backend struct {
	w       io.Writer
	format  Format
	yamlEnc *yaml.Encoder
	current Frame
	written uint64
}

func New(w io.Writer, format Format) *Backend {
	return &Backend{w: w, format: format}
}

func (b *Backend) Initialize(appName string, appWidth, appHeight uint32) error {
	if b.format == FormatYAML {
		b.yamlEnc = yaml.NewEncoder(b.w)
		b.yamlEnc.SetIndent(2)
	}
	return nil
}

func (b *Backend) Shutdown() error {
	if b.yamlEnc != nil {
		if err := b.yamlEnc.Close(); err != nil {
			return errors.Wrap(err, "failed to flush yaml stream")
		}
	}
	if c, ok := b.w.(io.Closer); ok && b.w != os.Stdout && b.w != os.Stderr {
		return c.Close()
	}
	return nil
}

func (b *Backend) Resized(width, height uint32) error {
	return nil
}

// Written returns the number of frames serialized so far.
func (b *Backend) Written() uint64 {
	return b.written
}

func (b *Backend) BeginFrame(packet *metadata.RenderPacket) error {
	b.current = NewFrame(packet)
	return nil
}

func (b *Backend) DrawGeometry(projection, view mgl32.Mat4, data *metadata.GeometryRenderData) error {
	b.current.Draws = append(b.current.Draws, NewDraw(projection, view, data))
	return nil
}

func (b *Backend) EndFrame(packet *metadata.RenderPacket) error {
	switch b.format {
	case FormatYAML:
		if b.yamlEnc == nil {
			return errors.New("yaml stream not initialized")
		}
		if err := b.yamlEnc.Encode(&b.current); err != nil {
			return errors.Wrapf(err, "failed to write frame %d", b.current.Number)
		}
	case FormatTOML:
		// Each frame is a self-contained [[frame]] table, so the stream stays
		// a valid document after every write.
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(Document{Frames: []Frame{b.current}}); err != nil {
			return errors.Wrapf(err, "failed to encode frame %d", b.current.Number)
		}
		if _, err := b.w.Write(buf.Bytes()); err != nil {
			return errors.Wrapf(err, "failed to write frame %d", b.current.Number)
		}
	default:
		return errors.Errorf("unknown stream format %q", b.format)
	}
	b.written++
	return nil
}
