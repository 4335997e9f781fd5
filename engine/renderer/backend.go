package renderer

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/spaghettifunk/teapots/engine/renderer/metadata"
)

// RendererBackend is the sink for draw calls. For every frame it receives
// BeginFrame, one DrawGeometry per evaluated node in evaluation order, then
// EndFrame.
type RendererBackend interface {
	Initialize(appName string, appWidth, appHeight uint32) error
	Shutdown() error
	Resized(width, height uint32) error
	BeginFrame(packet *metadata.RenderPacket) error
	DrawGeometry(projection, view mgl32.Mat4, data *metadata.GeometryRenderData) error
	EndFrame(packet *metadata.RenderPacket) error
}
