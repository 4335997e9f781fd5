package renderer

import (
	"bytes"
	"errors"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/spaghettifunk/teapots/engine/core"
	"github.com/spaghettifunk/teapots/engine/renderer/metadata"
)

type recorder struct {
	calls   []string
	mvps    []mgl32.Mat4
	failEnd bool
}

func (r *recorder) Initialize(string, uint32, uint32) error {
	r.calls = append(r.calls, "init")
	return nil
}

func (r *recorder) Shutdown() error {
	r.calls = append(r.calls, "shutdown")
	return nil
}

func (r *recorder) Resized(uint32, uint32) error {
	r.calls = append(r.calls, "resize")
	return nil
}

func (r *recorder) BeginFrame(*metadata.RenderPacket) error {
	r.calls = append(r.calls, "begin")
	return nil
}

func (r *recorder) DrawGeometry(projection, view mgl32.Mat4, data *metadata.GeometryRenderData) error {
	r.calls = append(r.calls, "draw:"+data.Name)
	r.mvps = append(r.mvps, projection.Mul4(view).Mul4(data.Model))
	return nil
}

func (r *recorder) EndFrame(*metadata.RenderPacket) error {
	r.calls = append(r.calls, "end")
	if r.failEnd {
		return errors.New("boom")
	}
	return nil
}

func packet() *metadata.RenderPacket {
	return &metadata.RenderPacket{
		FrameNumber:      1,
		ProjectionMatrix: mgl32.Perspective(mgl32.DegToRad(45), 4.0/3.0, 0.1, 180),
		ViewMatrix:       mgl32.Ident4(),
		Geometries: []*metadata.GeometryRenderData{
			{Name: "a", Parent: -1, Model: mgl32.Translate3D(0, 0, -130)},
			{Name: "b", Parent: 0, Model: mgl32.Translate3D(0, 15, -130)},
		},
	}
}

func TestDrawFrameOrder(t *testing.T) {
	first, second := &recorder{}, &recorder{}
	r := NewRendererSystem(first)
	r.AddBackend(second)

	p := packet()
	if err := r.DrawFrame(p); err != nil {
		t.Fatalf("draw frame: %v", err)
	}
	want := []string{"begin", "draw:a", "draw:b", "end"}
	for _, rec := range []*recorder{first, second} {
		if len(rec.calls) != len(want) {
			t.Fatalf("expected %v, got %v", want, rec.calls)
		}
		for i := range want {
			if rec.calls[i] != want[i] {
				t.Fatalf("expected %v, got %v", want, rec.calls)
			}
		}
		for i, g := range p.Geometries {
			if rec.mvps[i] != p.MVP(g) {
				t.Fatalf("draw %d received the wrong matrices", i)
			}
		}
	}
}

func TestDrawFrameStopsOnError(t *testing.T) {
	failing, after := &recorder{failEnd: true}, &recorder{}
	r := NewRendererSystem(failing, after)
	if err := r.DrawFrame(packet()); err == nil {
		t.Fatalf("expected the backend error")
	}
	if len(after.calls) != 0 {
		t.Fatalf("later backends should not run after a failure, got %v", after.calls)
	}
}

func TestLifecycle(t *testing.T) {
	rec := &recorder{}
	r := NewRendererSystem(rec)
	if err := r.Initialize("test", 800, 600); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if err := r.OnResize(1024, 768); err != nil {
		t.Fatalf("resize: %v", err)
	}
	if err := r.Shutdown(); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
	if len(rec.calls) != 3 || rec.calls[0] != "init" || rec.calls[1] != "resize" || rec.calls[2] != "shutdown" {
		t.Fatalf("unexpected calls %v", rec.calls)
	}
}

func TestNewBackend(t *testing.T) {
	dir := t.TempDir()
	opts := BackendOptions{
		Stream:    filepath.Join(dir, "frames.yaml"),
		Dir:       dir,
		LogOutput: &bytes.Buffer{},
	}
	for _, name := range []string{"log", "YAML", "toml", " png "} {
		b, err := NewBackend(name, opts)
		if err != nil {
			t.Fatalf("%q: %v", name, err)
		}
		if err := b.Initialize("test", 8, 6); err != nil {
			t.Fatalf("%q: initialize: %v", name, err)
		}
		if err := b.Shutdown(); err != nil {
			t.Fatalf("%q: shutdown: %v", name, err)
		}
	}
	if _, err := NewBackend("vulkan", opts); !errors.Is(err, core.ErrUnknownBackend) {
		t.Fatalf("expected ErrUnknownBackend, got %v", err)
	}
}
