package testbed

import (
	"context"
	"io"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/spaghettifunk/teapots/engine"
	"github.com/spaghettifunk/teapots/engine/config"
	"github.com/spaghettifunk/teapots/engine/core"
	kmath "github.com/spaghettifunk/teapots/engine/math"
	"github.com/spaghettifunk/teapots/engine/renderer/metadata"
	"github.com/spaghettifunk/teapots/engine/scene"
)

// lastFrame keeps the most recent packet drawn.
type lastFrame struct {
	packet *metadata.RenderPacket
	frames int
}

func (l *lastFrame) Initialize(string, uint32, uint32) error {
	return nil
}

func (l *lastFrame) Shutdown() error {
	return nil
}

func (l *lastFrame) Resized(uint32, uint32) error {
	return nil
}

func (l *lastFrame) BeginFrame(p *metadata.RenderPacket) error {
	l.packet = p
	return nil
}

func (l *lastFrame) DrawGeometry(mgl32.Mat4, mgl32.Mat4, *metadata.GeometryRenderData) error {
	return nil
}

func (l *lastFrame) EndFrame(*metadata.RenderPacket) error {
	l.frames++
	return nil
}

func run(t *testing.T, cfg *config.Config) (*TeapotGame, *lastFrame) {
	t.Helper()
	core.SetLogOutput(io.Discard)
	cfg.Application.LogLevel = "error"
	cfg.Engine.LimitFrames = false

	g, err := NewTeapotGame(cfg)
	if err != nil {
		t.Fatalf("new game: %v", err)
	}
	sink := &lastFrame{}
	e, err := engine.New(g.Game, sink)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	if err := e.Initialize(); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if err := e.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if err := e.Shutdown(); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
	return g, sink
}

func TestScriptedKeysMoveTheTree(t *testing.T) {
	cfg := config.Default()
	cfg.Engine.Frames = 10
	cfg.Input.Script = "ddw"

	g, sink := run(t, cfg)
	state := g.Snapshot()
	if state.Frame != 10 || sink.frames != 10 {
		t.Fatalf("expected 10 frames, got state %d and %d drawn", state.Frame, sink.frames)
	}
	if state.OffsetX != 1.0 || state.OffsetY != 0.5 {
		t.Fatalf("expected offsets (1, 0.5), got (%v, %v)", state.OffsetX, state.OffsetY)
	}
	root := sink.packet.Geometries[0].Model.Col(3).Vec3()
	if root != (mgl32.Vec3{1, 0.5, -130}) {
		t.Fatalf("root should follow the offsets, got %v", root)
	}
}

func TestPacketCarriesProjectionAndAllNodes(t *testing.T) {
	cfg := config.Default()
	cfg.Engine.Frames = 1

	g, sink := run(t, cfg)
	p := sink.packet
	if len(p.Geometries) != g.Tree().Len() {
		t.Fatalf("expected %d draw calls, got %d", g.Tree().Len(), len(p.Geometries))
	}
	want := kmath.NewMat4Perspective(45, 800.0/600.0, 0.1, 180)
	if p.ProjectionMatrix != want {
		t.Fatalf("unexpected projection %v", p.ProjectionMatrix)
	}
	if p.ViewMatrix != mgl32.Ident4() {
		t.Fatalf("view should be the identity")
	}
	if p.Geometries[0].Name != scene.NodeRoot {
		t.Fatalf("root must be drawn first, got %q", p.Geometries[0].Name)
	}
}

func TestRunsAreDeterministic(t *testing.T) {
	packets := make([]*metadata.RenderPacket, 2)
	for i := range packets {
		cfg := config.Default()
		cfg.Engine.Frames = 250
		cfg.Input.Script = "aawsd"
		_, sink := run(t, cfg)
		packets[i] = sink.packet
	}
	for i, g := range packets[0].Geometries {
		if g.Model != packets[1].Geometries[i].Model {
			t.Fatalf("node %q differs between identical runs", g.Name)
		}
	}
}

func TestRootAtRest(t *testing.T) {
	core.SetLogOutput(io.Discard)
	g, err := NewTeapotGame(config.Default())
	if err != nil {
		t.Fatalf("new game: %v", err)
	}
	if _, err := engine.New(g.Game); err != nil {
		t.Fatalf("new engine: %v", err)
	}
	if err := g.Initialize(); err != nil {
		t.Fatalf("initialize: %v", err)
	}

	p := &metadata.RenderPacket{}
	if err := g.Render(p, 0); err != nil {
		t.Fatalf("render: %v", err)
	}
	root := p.Geometries[0].Model
	if !kmath.IsPureTranslation(root, kmath.K_FLOAT_EPSILON) || root.Col(3).Vec3() != (mgl32.Vec3{0, 0, -130}) {
		t.Fatalf("root at rest should be a pure translation to (0,0,-130), got %v", root)
	}
}

func TestConfigReloadChangesBehaviour(t *testing.T) {
	core.SetLogOutput(io.Discard)
	g, err := NewTeapotGame(config.Default())
	if err != nil {
		t.Fatalf("new game: %v", err)
	}
	if _, err := engine.New(g.Game); err != nil {
		t.Fatalf("new engine: %v", err)
	}
	if err := g.Initialize(); err != nil {
		t.Fatalf("initialize: %v", err)
	}

	cfg := config.Default()
	cfg.Animation.TranslateStep = 2
	cfg.Projection.Mode = "orthographic"
	cfg.Input.Bindings = map[string][]string{"increase_x": {"l"}}
	g.SystemManager.Events.Fire(core.EventContext{Type: core.EVENT_CODE_CONFIG_RELOADED, Data: cfg})

	g.SystemManager.Input.Press(core.KEY_D)
	g.SystemManager.Input.Press(core.KeyCode('L'))
	if err := g.Update(0); err != nil {
		t.Fatalf("update: %v", err)
	}
	if s := g.Snapshot(); s.OffsetX != 2 {
		t.Fatalf("expected only the new binding with the new step, got offset %v", s.OffsetX)
	}
	if g.AcceptsKey(core.KEY_D) || !g.AcceptsKey(core.KeyCode('L')) || g.AcceptsKey(core.KEY_ESCAPE) {
		t.Fatalf("remote key filter does not follow the reloaded bindings")
	}

	p := &metadata.RenderPacket{}
	if err := g.Render(p, 0); err != nil {
		t.Fatalf("render: %v", err)
	}
	if p.ProjectionMatrix != kmath.NewMat4Orthographic(-40, 40, -30, 30, 0.1, 180) {
		t.Fatalf("expected the orthographic projection, got %v", p.ProjectionMatrix)
	}
}

func TestInvalidBindingsRejected(t *testing.T) {
	cfg := config.Default()
	cfg.Input.Bindings = map[string][]string{"increase_x": {"d"}, "decrease_x": {"d"}}
	if _, err := NewTeapotGame(cfg); err == nil {
		t.Fatalf("expected conflicting bindings to be rejected")
	}
}
