package systems

import (
	"github.com/spaghettifunk/teapots/engine/core"
	"github.com/spaghettifunk/teapots/engine/renderer"
	"github.com/spaghettifunk/teapots/engine/renderer/metadata"
)

// SystemManager owns the engine subsystems shared between the engine loop
// and the game.
type SystemManager struct {
	Events         *core.EventSystem
	Input          *core.Input
	CameraSystem   *CameraSystem
	RendererSystem *renderer.RendererSystem
	Metrics        *core.Metrics
}

func NewSystemManager(r *renderer.RendererSystem) (*SystemManager, error) {
	cs, err := NewCameraSystem(&CameraSystemConfig{
		MaxCameraCount: 16,
	})
	if err != nil {
		return nil, err
	}
	events := core.NewEventSystem()
	return &SystemManager{
		Events:         events,
		Input:          core.NewInput(events),
		CameraSystem:   cs,
		RendererSystem: r,
		Metrics:        core.NewMetrics(),
	}, nil
}

func (sm *SystemManager) Initialize(appName string, width, height uint32) error {
	sm.CameraSystem.OnResize(width, height)
	return sm.RendererSystem.Initialize(appName, width, height)
}

func (sm *SystemManager) DrawFrame(packet *metadata.RenderPacket) error {
	return sm.RendererSystem.DrawFrame(packet)
}

func (sm *SystemManager) OnResize(width, height uint32) error {
	sm.CameraSystem.OnResize(width, height)
	return sm.RendererSystem.OnResize(width, height)
}

// Shutdown stops every subsystem and returns the first error.
func (sm *SystemManager) Shutdown() error {
	var first error
	for _, fn := range []func() error{
		sm.RendererSystem.Shutdown,
		sm.CameraSystem.Shutdown,
		sm.Events.Shutdown,
	} {
		if err := fn(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
