package testbed

import (
	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"

	"github.com/spaghettifunk/teapots/engine"
	"github.com/spaghettifunk/teapots/engine/animation"
	"github.com/spaghettifunk/teapots/engine/config"
	"github.com/spaghettifunk/teapots/engine/controls"
	"github.com/spaghettifunk/teapots/engine/core"
	"github.com/spaghettifunk/teapots/engine/export"
	"github.com/spaghettifunk/teapots/engine/renderer/components"
	"github.com/spaghettifunk/teapots/engine/renderer/metadata"
	"github.com/spaghettifunk/teapots/engine/scene"
)

// TeapotGame animates the teapot hierarchy: every frame it applies queued
// key commands, advances the animation and evaluates the tree.
type TeapotGame struct {
	*engine.Game
}

type gameState struct {
	config   *config.Config
	settings animation.Settings
	anim     *animation.State
	tree     *scene.Tree
	queue    *controls.Queue
	handler  *controls.Handler
	camera   *components.Camera
	script   []core.KeyCode
}

func NewTeapotGame(cfg *config.Config) (*TeapotGame, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	keymap, err := controls.ParseKeymap(cfg.Input.Bindings)
	if err != nil {
		return nil, errors.Wrap(core.ErrInvalidConfig, err.Error())
	}
	script, err := controls.ParseScript(cfg.Input.Script)
	if err != nil {
		return nil, err
	}

	queue := controls.NewQueue(cfg.Engine.QueueSize)
	tg := &TeapotGame{
		Game: &engine.Game{
			ApplicationConfig: engine.NewApplicationConfig(cfg),
			State: &gameState{
				config:   cfg,
				settings: cfg.AnimationSettings(),
				anim:     animation.NewState(),
				tree:     scene.NewTeapotTree(metadata.NewTeapotMesh()),
				queue:    queue,
				handler:  controls.NewHandler(keymap, queue),
				script:   script,
			},
		},
	}

	tg.FnInitialize = tg.Initialize
	tg.FnUpdate = tg.Update
	tg.FnRender = tg.Render
	tg.FnOnResize = tg.OnResize
	tg.FnShutdown = tg.Shutdown

	return tg, nil
}

func (g *TeapotGame) state() *gameState {
	return g.State.(*gameState)
}

func (g *TeapotGame) Initialize() error {
	core.LogInfo("initializing teapots...")
	s := g.state()
	events := g.SystemManager.Events

	s.handler.Register(events)
	events.Register(core.EVENT_CODE_CONFIG_RELOADED, g.onConfigReloaded)

	s.camera = g.SystemManager.CameraSystem.GetDefault()
	return applyProjection(s.camera, s.config.Projection)
}

// Update runs on the frame thread: scripted input first, then the queued
// commands, then one animation step.
func (g *TeapotGame) Update(deltaTime float64) error {
	s := g.state()

	if len(s.script) > 0 {
		key := s.script[0]
		s.script = s.script[1:]
		g.SystemManager.Input.Press(key)
	}

	s.queue.Drain(func(cmd animation.Command) {
		s.anim.Apply(cmd, s.settings.TranslateStep)
	})
	s.anim.Update(s.settings)
	return nil
}

func (g *TeapotGame) Render(packet *metadata.RenderPacket, deltaTime float64) error {
	s := g.state()
	packet.ProjectionMatrix = s.camera.GetProjection()
	packet.ViewMatrix = s.camera.GetView()
	packet.Geometries = scene.Evaluate(s.tree, s.anim)
	return nil
}

func (g *TeapotGame) OnResize(width uint32, height uint32) error {
	core.LogDebug("teapots viewport is now %dx%d", width, height)
	return nil
}

func (g *TeapotGame) Shutdown() error {
	s := g.state()
	core.LogInfo("teapots stopped after %d frames (offset %.1f, %.1f, %d commands dropped)",
		s.anim.Frame, s.anim.OffsetX, s.anim.OffsetY, s.queue.Dropped())
	return nil
}

// Snapshot returns a copy of the animation state. It must be called on the
// frame thread.
func (g *TeapotGame) Snapshot() animation.State {
	return g.state().anim.Snapshot()
}

// AcceptsKey reports whether key drives the animation. Safe to call from any
// goroutine.
func (g *TeapotGame) AcceptsKey(key core.KeyCode) bool {
	return g.state().handler.Bound(key)
}

func (g *TeapotGame) Tree() *scene.Tree {
	return g.state().tree
}

// Export builds a glTF document of the current pose.
func (g *TeapotGame) Export() *gltf.Document {
	s := g.state()
	return export.GLTF(s.tree, s.anim)
}

func (g *TeapotGame) onConfigReloaded(context core.EventContext) bool {
	cfg, ok := context.Data.(*config.Config)
	if !ok {
		core.LogError("wrong event associated with the event type `%d`", context.Type)
		return false
	}
	s := g.state()

	keymap, err := controls.ParseKeymap(cfg.Input.Bindings)
	if err != nil {
		core.LogWarn("keeping the previous key bindings: %v", err)
	} else {
		s.handler.SetKeymap(keymap)
	}
	if err := applyProjection(s.camera, cfg.Projection); err != nil {
		core.LogWarn("keeping the previous projection: %v", err)
	}
	s.settings = cfg.AnimationSettings()
	s.config = cfg
	core.LogDebug("animation settings: %s", core.Dump(s.settings))
	return false
}

func applyProjection(camera *components.Camera, p config.ProjectionConfig) error {
	mode, err := components.ParseProjectionMode(p.Mode)
	if err != nil {
		return err
	}
	camera.Mode = mode
	camera.FOV = float32(p.FOV)
	camera.Near = float32(p.Near)
	camera.Far = float32(p.Far)
	return nil
}
