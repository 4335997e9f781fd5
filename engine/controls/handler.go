package controls

import (
	"sync"

	"github.com/spaghettifunk/teapots/engine/core"
)

// Handler turns key-press events into queued commands. It never touches the
// animation state itself.
type Handler struct {
	mu     sync.RWMutex
	keymap Keymap
	queue  *Queue
}

func NewHandler(keymap Keymap, queue *Queue) *Handler {
	return &Handler{keymap: keymap, queue: queue}
}

// Register subscribes the handler to key-pressed events.
func (h *Handler) Register(events *core.EventSystem) {
	events.Register(core.EVENT_CODE_KEY_PRESSED, h.onKey)
}

// SetKeymap replaces the bindings, typically after a config reload.
func (h *Handler) SetKeymap(keymap Keymap) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.keymap = keymap
}

// Bound reports whether key is bound in the current keymap.
func (h *Handler) Bound(key core.KeyCode) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.keymap[key]
	return ok
}

func (h *Handler) onKey(context core.EventContext) bool {
	ke, ok := context.Data.(*core.KeyEvent)
	if !ok {
		core.LogError("wrong event associated with the event type `%d`", context.Type)
		return false
	}

	h.mu.RLock()
	cmd, ok := h.keymap.Lookup(ke.KeyCode)
	h.mu.RUnlock()
	if !ok {
		// Not ours; let other listeners see it.
		return false
	}

	if err := h.queue.Push(cmd); err != nil {
		core.LogWarn("dropping %s for key %s: %s", cmd.Direction, ke.KeyCode, err)
	}
	return true
}
