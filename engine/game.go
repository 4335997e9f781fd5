package engine

import (
	"github.com/spaghettifunk/teapots/engine/renderer/metadata"
	"github.com/spaghettifunk/teapots/engine/systems"
)

// Game is implemented by the application driven by the engine. The engine
// sets SystemManager before calling FnInitialize.
type Game struct {
	ApplicationConfig *ApplicationConfig
	SystemManager     *systems.SystemManager
	State             interface{}
	FnInitialize      Initialize
	FnUpdate          Update
	FnRender          Render
	FnOnResize        OnResize
	FnShutdown        Shutdown
}

type Initialize func() error
type Update func(deltaTime float64) error
type Render func(packet *metadata.RenderPacket, deltaTime float64) error
type OnResize func(width uint32, height uint32) error
type Shutdown func() error
