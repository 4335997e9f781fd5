package engine

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"

	"github.com/spaghettifunk/teapots/engine/config"
	"github.com/spaghettifunk/teapots/engine/core"
	"github.com/spaghettifunk/teapots/engine/renderer"
	"github.com/spaghettifunk/teapots/engine/renderer/metadata"
	"github.com/spaghettifunk/teapots/engine/systems"
)

type Stage uint8

const (
	// Engine is in an uninitialized state
	EngineStageUninitialized Stage = iota
	// Engine is currently initializing
	EngineStageInitializing
	// Engine initialization is complete
	EngineStageInitialized
	// Engine is currently running
	EngineStageRunning
	// Engine is in the process of shutting down
	EngineStageShuttingDown
)

func (s Stage) String() string {
	switch s {
	case EngineStageUninitialized:
		return "uninitialized"
	case EngineStageInitializing:
		return "initializing"
	case EngineStageInitialized:
		return "initialized"
	case EngineStageRunning:
		return "running"
	case EngineStageShuttingDown:
		return "shutting down"
	}
	return "unknown"
}

// suspendedPoll is how long a suspended loop waits before checking again.
const suspendedPoll = 10 * time.Millisecond

type Engine struct {
	currentStage  Stage
	gameInstance  *Game
	isRunning     atomic.Bool
	isSuspended   bool
	systemManager *systems.SystemManager
	width         uint32
	height        uint32
	clock         *core.Clock
	lastTime      float64
	frameNumber   uint64
	reloads       <-chan *config.Config
}

// New prepares the engine for g, drawing every frame on the given backends.
func New(g *Game, backends ...renderer.RendererBackend) (*Engine, error) {
	if g == nil || g.ApplicationConfig == nil {
		return nil, errors.Wrap(core.ErrInvalidConfig, "game has no application config")
	}

	sm, err := systems.NewSystemManager(renderer.NewRendererSystem(backends...))
	if err != nil {
		core.LogError(err.Error())
		return nil, err
	}
	g.SystemManager = sm

	return &Engine{
		currentStage:  EngineStageUninitialized,
		gameInstance:  g,
		clock:         core.NewClock(),
		systemManager: sm,
		isSuspended:   false,
		width:         g.ApplicationConfig.StartWidth,
		height:        g.ApplicationConfig.StartHeight,
		lastTime:      0,
	}, nil
}

// Systems exposes the subsystems, e.g. to attach input sources before Run.
func (e *Engine) Systems() *systems.SystemManager {
	return e.systemManager
}

func (e *Engine) Stage() Stage {
	return e.currentStage
}

// FrameNumber is the number of frames drawn so far.
func (e *Engine) FrameNumber() uint64 {
	return e.frameNumber
}

// WatchConfig makes the loop apply configs received on ch at the start of a
// frame. It must be called before Run.
func (e *Engine) WatchConfig(ch <-chan *config.Config) {
	e.reloads = ch
}

func (e *Engine) Initialize() error {
	e.currentStage = EngineStageInitializing
	core.SetLogLevel(e.gameInstance.ApplicationConfig.LogLevel)

	// register some events
	events := e.systemManager.Events
	events.Register(core.EVENT_CODE_APPLICATION_QUIT, e.onEvent)
	events.Register(core.EVENT_CODE_KEY_PRESSED, e.onKey)
	events.Register(core.EVENT_CODE_KEY_RELEASED, e.onKey)
	events.Register(core.EVENT_CODE_RESIZED, e.onResized)

	// initialize subsystems
	if err := e.systemManager.Initialize(e.gameInstance.ApplicationConfig.Name, e.width, e.height); err != nil {
		return err
	}

	if e.gameInstance.FnInitialize != nil {
		if err := e.gameInstance.FnInitialize(); err != nil {
			return errors.Wrap(err, "game initialization failed")
		}
	}

	if e.gameInstance.FnOnResize != nil {
		if err := e.gameInstance.FnOnResize(e.width, e.height); err != nil {
			return err
		}
	}

	e.isRunning.Store(true)
	e.currentStage = EngineStageInitialized
	core.LogInfo("%s initialized (%dx%d).", e.gameInstance.ApplicationConfig.Name, e.width, e.height)
	return nil
}

// Run drives the frame loop until ctx is cancelled, a quit event is fired,
// the configured frame count is reached, or a game hook or backend fails.
func (e *Engine) Run(ctx context.Context) error {
	if e.currentStage != EngineStageInitialized {
		return errors.Wrapf(core.ErrEngineNotRunning, "stage %s", e.currentStage)
	}
	e.currentStage = EngineStageRunning

	e.clock.Start()
	e.clock.Update()
	e.lastTime = e.clock.Elapsed()

	app := e.gameInstance.ApplicationConfig
	var targetFrameSeconds float64
	if app.TargetFPS > 0 {
		targetFrameSeconds = 1.0 / float64(app.TargetFPS)
	}
	var lastReport float64

	for e.isRunning.Load() {
		if ctx.Err() != nil {
			core.LogInfo("Run context done, shutting down.")
			e.isRunning.Store(false)
			break
		}

		e.applyConfigReloads()

		if e.isSuspended {
			sleep(ctx, suspendedPoll)
			continue
		}

		// Update clock and get delta time.
		e.clock.Update()
		currentTime := e.clock.Elapsed()
		delta := currentTime - e.lastTime
		frameStartTime := time.Now()

		if e.gameInstance.FnUpdate != nil {
			if err := e.gameInstance.FnUpdate(delta); err != nil {
				core.LogError("Game update failed, shutting down.")
				return errors.Wrap(err, "game update failed")
			}
		}

		e.frameNumber++
		packet := &metadata.RenderPacket{
			FrameNumber: e.frameNumber,
			DeltaTime:   delta,
			Width:       e.width,
			Height:      e.height,
		}

		// Call the game's render routine.
		if e.gameInstance.FnRender != nil {
			if err := e.gameInstance.FnRender(packet, delta); err != nil {
				core.LogError("Game render failed, shutting down.")
				return errors.Wrap(err, "game render failed")
			}
		}

		// Draw frame
		if err := e.systemManager.DrawFrame(packet); err != nil {
			return errors.Wrapf(err, "frame %d", e.frameNumber)
		}

		e.systemManager.Metrics.Update(delta)
		if currentTime-lastReport >= 1.0 {
			fps, frameTime := e.systemManager.Metrics.Frame()
			core.LogDebug("FPS: %.0f, frame time: %.3fms, frame: %d", fps, frameTime, e.frameNumber)
			lastReport = currentTime
		}

		// Figure out how long the frame took and, if below the target,
		// give the rest back to the OS.
		frameElapsedTime := time.Since(frameStartTime).Seconds()
		if remaining := targetFrameSeconds - frameElapsedTime; remaining > 0 && app.LimitFrames {
			sleep(ctx, time.Duration(remaining*float64(time.Second)))
		}

		// NOTE: Input update/state copying should always be handled
		// after any input should be recorded; I.E. before this line.
		// As a safety, input is the last thing to be updated before
		// this frame ends.
		e.systemManager.Input.Update()

		// Update last time
		e.lastTime = currentTime

		if app.MaxFrames > 0 && e.frameNumber >= app.MaxFrames {
			core.LogInfo("Reached %d frames, shutting down.", e.frameNumber)
			e.isRunning.Store(false)
		}
	}

	return nil
}

func (e *Engine) Shutdown() error {
	e.currentStage = EngineStageShuttingDown
	e.isRunning.Store(false)

	var first error
	if e.gameInstance.FnShutdown != nil {
		if err := e.gameInstance.FnShutdown(); err != nil {
			core.LogError("game shutdown: %v", err)
			first = err
		}
	}
	if err := e.systemManager.Shutdown(); err != nil && first == nil {
		first = err
	}
	e.currentStage = EngineStageUninitialized
	return first
}

// ApplicationGetFramebufferSize returns the width and height (in this order)
// of the application Framebuffer
func (e *Engine) GetFramebufferSize() (uint32, uint32) {
	return e.width, e.height
}

func (e *Engine) applyConfigReloads() {
	if e.reloads == nil {
		return
	}
	for {
		select {
		case cfg, ok := <-e.reloads:
			if !ok {
				e.reloads = nil
				return
			}
			core.LogInfo("Applying reloaded configuration.")
			e.systemManager.Events.Fire(core.EventContext{
				Type: core.EVENT_CODE_CONFIG_RELOADED,
				Data: cfg,
			})
			e.systemManager.Events.Fire(core.EventContext{
				Type: core.EVENT_CODE_RESIZED,
				Data: &core.SystemEvent{
					WindowWidth:  cfg.Application.Width,
					WindowHeight: cfg.Application.Height,
				},
			})
		default:
			return
		}
	}
}

func (e *Engine) onEvent(context core.EventContext) bool {
	switch context.Type {
	case core.EVENT_CODE_APPLICATION_QUIT:
		core.LogInfo("EVENT_CODE_APPLICATION_QUIT received, shutting down.")
		e.isRunning.Store(false)
		return true
	}
	return false
}

func (e *Engine) onKey(context core.EventContext) bool {
	ke, ok := context.Data.(*core.KeyEvent)
	if !ok {
		core.LogError("wrong event associated with the event type `%d`", context.Type)
		return false
	}

	keyCode := ke.KeyCode

	if context.Type == core.EVENT_CODE_KEY_PRESSED {
		if keyCode == core.KEY_ESCAPE {
			// NOTE: Technically firing an event to itself, but there may be other listeners.
			e.systemManager.Events.Fire(core.EventContext{
				Type: core.EVENT_CODE_APPLICATION_QUIT,
			})
			// Block anything else from processing this.
			return true
		}
		core.LogDebug("'%s' key pressed.", keyCode)
	} else if context.Type == core.EVENT_CODE_KEY_RELEASED {
		core.LogDebug("'%s' key released.", keyCode)
	}
	return false
}

func (e *Engine) onResized(context core.EventContext) bool {
	se, ok := context.Data.(*core.SystemEvent)
	if !ok {
		core.LogError("wrong event associated with the event type `%d`", context.Type)
		return false
	}

	width := se.WindowWidth
	height := se.WindowHeight

	// Check if different. If so, trigger a resize event.
	if width == e.width && height == e.height {
		return false
	}
	e.width = width
	e.height = height

	core.LogDebug("Window resize: %d, %d", width, height)

	// Handle minimization
	if width == 0 || height == 0 {
		core.LogInfo("Window minimized, suspending application.")
		e.isSuspended = true
		return true
	}
	if e.isSuspended {
		core.LogInfo("Window restored, resuming application.")
		e.isSuspended = false
	}
	if e.gameInstance.FnOnResize != nil {
		if err := e.gameInstance.FnOnResize(width, height); err != nil {
			core.LogError(err.Error())
		}
	}
	if err := e.systemManager.OnResize(width, height); err != nil {
		core.LogError(err.Error())
	}
	return true
}

func sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
