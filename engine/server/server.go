// Package server exposes the running scene over HTTP: the latest frame, the
// animation state and a glTF export, plus a websocket that streams frames and
// accepts key presses. It is also a render backend, fed by the frame loop.
package server

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"

	"github.com/spaghettifunk/teapots/engine/animation"
	"github.com/spaghettifunk/teapots/engine/core"
	"github.com/spaghettifunk/teapots/engine/export"
	"github.com/spaghettifunk/teapots/engine/renderer/metadata"
	"github.com/spaghettifunk/teapots/engine/renderer/stream"
	"github.com/spaghettifunk/teapots/engine/scene"
)

type Options struct {
	Addr string
	// Key presses from clients are delivered here.
	Input *core.Input
	// Tree is exported by /api/scene.gltf; it must not change after start.
	Tree *scene.Tree
	// State is sampled on the frame thread at the end of every frame.
	State func() animation.State
	// Accept reports whether a remote client may press key. ESCAPE is always
	// refused; nil accepts every other key.
	Accept func(core.KeyCode) bool
}

type Server struct {
	opts     Options
	router   *mux.Router
	hub      *hub
	upgrader websocket.Upgrader

	mu       sync.RWMutex
	frame    *stream.Frame
	current  stream.Frame
	snapshot animation.State

	httpServer *http.Server
	listener   net.Listener
	done       chan error
}

func New(opts Options) *Server {
	s := &Server{
		opts: opts,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
	s.hub = newHub(s.pressKey)

	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/frame", s.handleFrame).Methods(http.MethodGet)
	api.HandleFunc("/state", s.handleState).Methods(http.MethodGet)
	api.HandleFunc("/keys/{key}", s.handleKey).Methods(http.MethodPost)
	api.HandleFunc("/scene.gltf", s.handleExport(false)).Methods(http.MethodGet)
	api.HandleFunc("/scene.glb", s.handleExport(true)).Methods(http.MethodGet)
	r.HandleFunc("/ws", s.handleWebsocket)
	s.router = r
	return s
}

// Handler is the full HTTP stack: CORS, panic recovery and access logging
// around the router.
func (s *Server) Handler() http.Handler {
	var h http.Handler = s.router
	h = handlers.CORS(
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost}),
		handlers.AllowedOrigins([]string{"*"}),
	)(h)
	h = handlers.RecoveryHandler(handlers.PrintRecoveryStack(true))(h)
	return handlers.LoggingHandler(core.LogWriter(core.DebugLevel), h)
}

// Start listens on the configured address and serves in the background.
func (s *Server) Start() error {
	l, err := net.Listen("tcp", s.opts.Addr)
	if err != nil {
		return errors.Wrapf(err, "failed to listen on %q", s.opts.Addr)
	}
	s.listener = l
	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	s.done = make(chan error, 1)
	go func() {
		err := s.httpServer.Serve(l)
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		s.done <- err
	}()
	core.LogInfo("Viewer server listening on http://%s", l.Addr())
	return nil
}

// Addr is the address actually listened on, useful with ":0".
func (s *Server) Addr() string {
	if s.listener == nil {
		return s.opts.Addr
	}
	return s.listener.Addr().String()
}

// Clients returns the number of connected websocket viewers.
func (s *Server) Clients() int {
	return s.hub.count()
}

func (s *Server) pressKey(c *client, name string) error {
	key, err := core.ParseKey(name)
	if err != nil {
		return err
	}
	if key == core.KEY_ESCAPE || (s.opts.Accept != nil && !s.opts.Accept(key)) {
		return errors.Wrapf(core.ErrKeyNotAccepted, "%s", key)
	}
	if s.opts.Input == nil {
		return errors.New("input is not connected")
	}
	if c != nil {
		core.LogDebug("viewer %s pressed %s", c.id, key)
	}
	s.opts.Input.Press(key)
	return nil
}

func (s *Server) Initialize(appName string, appWidth, appHeight uint32) error {
	return nil
}

func (s *Server) Shutdown() error {
	s.hub.close()
	if s.httpServer == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return errors.Wrap(err, "failed to stop viewer server")
	}
	return <-s.done
}

func (s *Server) Resized(width, height uint32) error {
	return nil
}

func (s *Server) BeginFrame(packet *metadata.RenderPacket) error {
	s.current = stream.NewFrame(packet)
	return nil
}

func (s *Server) DrawGeometry(projection, view mgl32.Mat4, data *metadata.GeometryRenderData) error {
	s.current.Draws = append(s.current.Draws, stream.NewDraw(projection, view, data))
	return nil
}

// EndFrame publishes the frame to HTTP readers and websocket viewers.
func (s *Server) EndFrame(packet *metadata.RenderPacket) error {
	frame := s.current
	s.mu.Lock()
	s.frame = &frame
	if s.opts.State != nil {
		s.snapshot = s.opts.State()
	}
	s.mu.Unlock()

	if s.hub.count() == 0 {
		return nil
	}
	msg, err := json.Marshal(Message{Type: "frame", Frame: &frame})
	if err != nil {
		return errors.Wrap(err, "failed to encode frame")
	}
	s.hub.broadcast(msg)
	return nil
}

func (s *Server) handleFrame(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	frame := s.frame
	s.mu.RUnlock()
	if frame == nil {
		writeError(w, http.StatusServiceUnavailable, errors.New("no frame rendered yet"))
		return
	}
	writeJSON(w, http.StatusOK, frame)
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	state := s.snapshot
	s.mu.RUnlock()
	writeJSON(w, http.StatusOK, state)
}

func (s *Server) handleKey(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["key"]
	if err := s.pressKey(nil, name); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusAccepted, Message{Type: "key", Key: name})
}

func (s *Server) handleExport(binary bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.opts.Tree == nil {
			writeError(w, http.StatusNotFound, errors.New("no scene"))
			return
		}
		s.mu.RLock()
		state := s.snapshot
		s.mu.RUnlock()

		doc := export.GLTF(s.opts.Tree, &state)
		if binary {
			w.Header().Set("Content-Type", "model/gltf-binary")
		} else {
			w.Header().Set("Content-Type", "model/gltf+json")
		}
		if err := export.WriteGLTF(w, doc, binary); err != nil {
			core.LogError("gltf export: %v", err)
		}
	}
}

func (s *Server) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		core.LogWarn("websocket upgrade failed: %v", err)
		return
	}
	s.hub.attach(conn)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		core.LogError("failed to write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, Message{Type: "error", Error: err.Error()})
}
