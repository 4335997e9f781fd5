// Package raster is a software render backend. It projects each node's origin
// and local axes through projection · view · model and draws them into an
// RGBA image, which is saved as PNG.
package raster

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"

	"github.com/spaghettifunk/teapots/engine/core"
	kmath "github.com/spaghettifunk/teapots/engine/math"
	"github.com/spaghettifunk/teapots/engine/renderer/metadata"
)

const (
	// AxisLength is the length of the drawn local axes, in scene units.
	AxisLength = 5
	lineWidth  = 1.5
	dotRadius  = 3
)

var (
	Background = color.RGBA{0x1e, 0x1e, 0x2e, 0xff}
	LinkColor  = color.RGBA{0xcd, 0xd6, 0xf4, 0xff}
	AxisColors = [3]color.RGBA{
		{0xf3, 0x8b, 0xa8, 0xff},
		{0xa6, 0xe3, 0xa1, 0xff},
		{0x89, 0xb4, 0xfa, 0xff},
	}
	LabelColor = color.RGBA{0xf9, 0xe2, 0xaf, 0xff}
)

// Marker is one projected node in window coordinates (origin top left).
type Marker struct {
	ID      int
	Name    string
	Parent  int
	Origin  mgl32.Vec2
	Axes    [3]mgl32.Vec2
	Visible bool
}

type Backend struct {
	dir    string
	every  uint64
	width  uint32
	height uint32

	markers []Marker
	byID    map[int]int // node id -> position in markers
	frame   uint64
	drawn   bool
	saved   []string
}

// New writes a PNG into dir every `every` frames; with every == 0 only the
// last frame is written, on shutdown.
func New(dir string, every uint64) *Backend {
	return &Backend{dir: dir, every: every}
}

func (b *Backend) Initialize(appName string, appWidth, appHeight uint32) error {
	if err := os.MkdirAll(b.dir, 0o755); err != nil {
		return errors.Wrapf(err, "failed to create %q", b.dir)
	}
	b.width, b.height = appWidth, appHeight
	return nil
}

func (b *Backend) Shutdown() error {
	if !b.drawn {
		return nil
	}
	if b.every != 0 && b.frame%b.every == 0 {
		// already saved by EndFrame
		return nil
	}
	_, err := b.save()
	return err
}

func (b *Backend) Resized(width, height uint32) error {
	b.width, b.height = width, height
	return nil
}

// Saved lists the files written so far.
func (b *Backend) Saved() []string {
	return b.saved
}

// Markers returns the projected nodes of the last frame.
func (b *Backend) Markers() []Marker {
	return b.markers
}

func (b *Backend) BeginFrame(packet *metadata.RenderPacket) error {
	b.markers = b.markers[:0]
	b.byID = make(map[int]int, len(packet.Geometries))
	b.frame = packet.FrameNumber
	return nil
}

func (b *Backend) DrawGeometry(projection, view mgl32.Mat4, data *metadata.GeometryRenderData) error {
	mvp := projection.Mul4(view).Mul4(data.Model)
	m := Marker{ID: int(data.UniqueID), Name: data.Name, Parent: data.Parent}

	var ok bool
	if m.Origin, ok = b.toScreen(mvp, mgl32.Vec3{}); ok {
		m.Visible = true
		for i := 0; i < 3; i++ {
			var axis mgl32.Vec3
			axis[i] = AxisLength
			if m.Axes[i], ok = b.toScreen(mvp, axis); !ok {
				m.Axes[i] = m.Origin
			}
		}
	}
	b.byID[m.ID] = len(b.markers)
	b.markers = append(b.markers, m)
	return nil
}

// parent returns the marker of m's parent node, if it was drawn this frame.
func (b *Backend) parent(m Marker) (Marker, bool) {
	if m.Parent < 0 {
		return Marker{}, false
	}
	i, ok := b.byID[m.Parent]
	if !ok {
		return Marker{}, false
	}
	return b.markers[i], true
}

func (b *Backend) EndFrame(packet *metadata.RenderPacket) error {
	b.drawn = true
	if b.every == 0 || packet.FrameNumber%b.every != 0 {
		return nil
	}
	_, err := b.save()
	return err
}

// toScreen maps a model-space point to window pixels.
func (b *Backend) toScreen(mvp mgl32.Mat4, p mgl32.Vec3) (mgl32.Vec2, bool) {
	ndc, ok := kmath.ProjectPoint(mvp, p)
	if !ok {
		return mgl32.Vec2{}, false
	}
	x := (ndc[0] + 1) * 0.5 * float32(b.width)
	y := (1 - ndc[1]) * 0.5 * float32(b.height)
	return mgl32.Vec2{x, y}, true
}

// Render draws the markers of the last frame.
func (b *Backend) Render() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, int(b.width), int(b.height)))
	draw.Draw(img, img.Bounds(), &image.Uniform{Background}, image.Point{}, draw.Src)

	links := vector.NewRasterizer(int(b.width), int(b.height))
	var axes [3]*vector.Rasterizer
	for i := range axes {
		axes[i] = vector.NewRasterizer(int(b.width), int(b.height))
	}
	dots := vector.NewRasterizer(int(b.width), int(b.height))

	for _, m := range b.markers {
		if !m.Visible {
			continue
		}
		if p, ok := b.parent(m); ok && p.Visible {
			segment(links, p.Origin, m.Origin, lineWidth)
		}
		for i, end := range m.Axes {
			segment(axes[i], m.Origin, end, lineWidth)
		}
		square(dots, m.Origin, dotRadius)
	}

	links.Draw(img, img.Bounds(), &image.Uniform{LinkColor}, image.Point{})
	for i, r := range axes {
		r.Draw(img, img.Bounds(), &image.Uniform{AxisColors[i]}, image.Point{})
	}
	dots.Draw(img, img.Bounds(), &image.Uniform{LabelColor}, image.Point{})

	d := &font.Drawer{
		Dst:  img,
		Src:  &image.Uniform{LabelColor},
		Face: basicfont.Face7x13,
	}
	for _, m := range b.markers {
		if !m.Visible {
			continue
		}
		d.Dot = fixed.P(int(m.Origin[0])+dotRadius+2, int(m.Origin[1])-dotRadius)
		d.DrawString(m.Name)
	}
	d.Dot = fixed.P(8, 8+basicfont.Face7x13.Ascent)
	d.DrawString(fmt.Sprintf("frame %d", b.frame))
	return img
}

func (b *Backend) save() (string, error) {
	path := filepath.Join(b.dir, fmt.Sprintf("frame-%06d.png", b.frame))
	f, err := os.Create(path)
	if err != nil {
		return "", errors.Wrapf(err, "failed to create %q", path)
	}
	defer f.Close()

	if err := png.Encode(f, b.Render()); err != nil {
		return "", errors.Wrapf(err, "failed to encode %q", path)
	}
	b.saved = append(b.saved, path)
	core.LogDebug("wrote %s", path)
	return path, nil
}

// segment adds a line from p0 to p1 as a quad of the given width.
func segment(r *vector.Rasterizer, p0, p1 mgl32.Vec2, width float32) {
	d := p1.Sub(p0)
	if d.Len() < 1e-3 {
		return
	}
	n := mgl32.Vec2{-d[1], d[0]}.Normalize().Mul(width / 2)
	r.MoveTo(p0[0]+n[0], p0[1]+n[1])
	r.LineTo(p1[0]+n[0], p1[1]+n[1])
	r.LineTo(p1[0]-n[0], p1[1]-n[1])
	r.LineTo(p0[0]-n[0], p0[1]-n[1])
	r.ClosePath()
}

func square(r *vector.Rasterizer, c mgl32.Vec2, radius float32) {
	r.MoveTo(c[0]-radius, c[1]-radius)
	r.LineTo(c[0]+radius, c[1]-radius)
	r.LineTo(c[0]+radius, c[1]+radius)
	r.LineTo(c[0]-radius, c[1]+radius)
	r.ClosePath()
}
