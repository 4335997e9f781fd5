/*
Viewport Teapots drives the teapot hierarchy through the engine loop and
hands every frame to the configured render backends.
*/
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spaghettifunk/teapots/engine"
	"github.com/spaghettifunk/teapots/engine/config"
	"github.com/spaghettifunk/teapots/engine/core"
	"github.com/spaghettifunk/teapots/engine/export"
	"github.com/spaghettifunk/teapots/engine/renderer"
	"github.com/spaghettifunk/teapots/engine/server"
	"github.com/spaghettifunk/teapots/testbed"
)

func main() {
	configPath := flag.String("config", "", "config file (.toml, .yaml or .yml)")
	frames := flag.Uint64("frames", 0, "stop after this many frames, 0 runs until interrupted")
	keys := flag.String("keys", "", "keys pressed one per frame, e.g. \"ddw\" or \"left,left,up\"")
	backends := flag.String("backends", "", "comma separated render backends: log, yaml, toml, png")
	out := flag.String("out", "", "output directory for png snapshots")
	pngEvery := flag.Uint64("png-every", 0, "write a png every N frames, 0 only writes the last one")
	stream := flag.String("stream", "", "destination of the yaml/toml frame stream, - for stdout")
	serve := flag.String("serve", "", "serve the viewer API on this address, e.g. :8080")
	exportPath := flag.String("export", "", "write the final pose as .gltf or .glb")
	logLevel := flag.String("log-level", "", "debug, info, warn or error")
	flipMode := flag.String("flip-mode", "", "clamp or overshoot")
	watch := flag.Bool("watch", false, "reload the config file when it changes")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			core.LogFatal("%v", err)
		}
	}

	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "frames":
			cfg.Engine.Frames = *frames
		case "keys":
			cfg.Input.Script = *keys
		case "backends":
			cfg.Output.Backends = strings.Split(*backends, ",")
		case "out":
			cfg.Output.Dir = *out
		case "png-every":
			cfg.Output.PNGEvery = *pngEvery
		case "stream":
			cfg.Output.Stream = *stream
		case "serve":
			cfg.Server.Addr = *serve
		case "log-level":
			cfg.Application.LogLevel = *logLevel
		case "flip-mode":
			cfg.Animation.FlipMode = *flipMode
		case "watch":
			cfg.Engine.WatchConfig = *watch
		}
	})
	if err := cfg.Validate(); err != nil {
		core.LogFatal("%v", err)
	}
	level, _ := core.ParseLogLevel(cfg.Application.LogLevel)
	core.SetLogLevel(level)

	game, err := testbed.NewTeapotGame(cfg)
	if err != nil {
		core.LogFatal("%v", err)
	}

	var sinks []renderer.RendererBackend
	for _, name := range cfg.Output.Backends {
		if strings.TrimSpace(name) == "" {
			continue
		}
		b, err := renderer.NewBackend(name, renderer.BackendOptions{
			Stream:   cfg.Output.Stream,
			Dir:      cfg.Output.Dir,
			PNGEvery: cfg.Output.PNGEvery,
		})
		if err != nil {
			core.LogFatal("%v", err)
		}
		sinks = append(sinks, b)
	}

	e, err := engine.New(game.Game, sinks...)
	if err != nil {
		core.LogFatal("%v", err)
	}

	if cfg.Server.Addr != "" {
		srv := server.New(server.Options{
			Addr:   cfg.Server.Addr,
			Input:  e.Systems().Input,
			Tree:   game.Tree(),
			State:  game.Snapshot,
			Accept: game.AcceptsKey,
		})
		if err := srv.Start(); err != nil {
			core.LogFatal("%v", err)
		}
		e.Systems().RendererSystem.AddBackend(srv)
	}

	if cfg.Engine.WatchConfig && *configPath != "" {
		w, err := config.NewWatcher(*configPath)
		if err != nil {
			core.LogFatal("%v", err)
		}
		defer w.Close()
		e.WatchConfig(w.Changes())
	}

	if err := e.Initialize(); err != nil {
		core.LogFatal("%v", err)
	}

	// signal context to capture system calls
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)
	defer stop()

	// run engine
	runErr := e.Run(ctx)

	if *exportPath != "" {
		if err := export.SaveFile(*exportPath, game.Export()); err != nil {
			core.LogError("%v", err)
		} else {
			core.LogInfo("pose written to %s", *exportPath)
		}
	}

	if err := e.Shutdown(); err != nil {
		core.LogError("shutdown: %v", err)
	}
	if runErr != nil {
		core.LogError("%v", runErr)
		os.Exit(1)
	}
}
