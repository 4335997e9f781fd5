// Package logview is a render backend that reports frames through the logger.
// Draw calls are logged at debug level, frame summaries at info.
package logview

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/spaghettifunk/teapots/engine/renderer/metadata"
)

// SummaryEvery is how often, in frames, a frame summary is logged.
const SummaryEvery = 60

type Backend struct {
	logger *log.Logger
	draws  int
	frames uint64
}

func New(w io.Writer) *Backend {
	return &Backend{
		logger: log.NewWithOptions(w, log.Options{
			ReportTimestamp: true,
			TimeFormat:      time.Kitchen,
			Prefix:          "viewport",
			Level:           log.InfoLevel,
		}),
	}
}

// SetLevel changes the backend's own log level; debug shows every draw call.
func (b *Backend) SetLevel(level log.Level) {
	b.logger.SetLevel(level)
}

func (b *Backend) Initialize(appName string, appWidth, appHeight uint32) error {
	b.logger.Info("viewport ready", "app", appName, "width", appWidth, "height", appHeight)
	return nil
}

func (b *Backend) Shutdown() error {
	b.logger.Info("viewport closed", "frames", b.frames)
	return nil
}

func (b *Backend) Resized(width, height uint32) error {
	b.logger.Info("viewport resized", "width", width, "height", height)
	return nil
}

func (b *Backend) BeginFrame(packet *metadata.RenderPacket) error {
	b.draws = 0
	b.logger.Debug("begin frame", "frame", packet.FrameNumber, "dt", packet.DeltaTime)
	return nil
}

func (b *Backend) DrawGeometry(projection, view mgl32.Mat4, data *metadata.GeometryRenderData) error {
	b.draws++
	pos := data.Model.Col(3).Vec3()
	b.logger.Debug("draw",
		"node", data.Name,
		"parent", data.Parent,
		"x", pos[0], "y", pos[1], "z", pos[2],
	)
	return nil
}

func (b *Backend) EndFrame(packet *metadata.RenderPacket) error {
	b.frames++
	if packet.FrameNumber%SummaryEvery == 0 {
		b.logger.Info("frame", "number", packet.FrameNumber, "draws", b.draws)
	}
	return nil
}
