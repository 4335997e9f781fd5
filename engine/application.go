package engine

import (
	"github.com/spaghettifunk/teapots/engine/config"
	"github.com/spaghettifunk/teapots/engine/core"
)

type ApplicationConfig struct {
	// Viewport starting width.
	StartWidth uint32
	// Viewport starting height.
	StartHeight uint32
	// The application name used in logs and by the backends.
	Name     string
	LogLevel core.LogLevel
	// Frames per second the loop sleeps towards when LimitFrames is set.
	TargetFPS   int
	LimitFrames bool
	// Stop after this many frames; 0 runs until the context is cancelled.
	MaxFrames uint64
}

// NewApplicationConfig takes the application and engine sections of a
// validated config.
func NewApplicationConfig(cfg *config.Config) *ApplicationConfig {
	level, err := core.ParseLogLevel(cfg.Application.LogLevel)
	if err != nil {
		level = core.InfoLevel
	}
	return &ApplicationConfig{
		StartWidth:  cfg.Application.Width,
		StartHeight: cfg.Application.Height,
		Name:        cfg.Application.Name,
		LogLevel:    level,
		TargetFPS:   cfg.Engine.TargetFPS,
		LimitFrames: cfg.Engine.LimitFrames,
		MaxFrames:   cfg.Engine.Frames,
	}
}
