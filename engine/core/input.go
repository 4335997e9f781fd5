package core

import (
	"fmt"
	"strings"
	"sync"
	"unicode"
)

// Key code definitions
type KeyCode uint16

const (
	KEY_BACKSPACE KeyCode = 0x08
	KEY_TAB       KeyCode = 0x09
	KEY_ENTER     KeyCode = 0x0D
	KEY_ESCAPE    KeyCode = 0x1B
	KEY_SPACE     KeyCode = 0x20
	KEY_LEFT      KeyCode = 0x25
	KEY_UP        KeyCode = 0x26
	KEY_RIGHT     KeyCode = 0x27
	KEY_DOWN      KeyCode = 0x28
	KEY_0         KeyCode = 0x30
	KEY_9         KeyCode = 0x39
	KEY_A         KeyCode = 0x41
	KEY_D         KeyCode = 0x44
	KEY_Q         KeyCode = 0x51
	KEY_R         KeyCode = 0x52
	KEY_S         KeyCode = 0x53
	KEY_W         KeyCode = 0x57
	KEY_Z         KeyCode = 0x5A
	KEYS_MAX_KEYS KeyCode = 0x100
)

var keyNames = map[string]KeyCode{
	"BACKSPACE": KEY_BACKSPACE,
	"TAB":       KEY_TAB,
	"ENTER":     KEY_ENTER,
	"ESCAPE":    KEY_ESCAPE,
	"ESC":       KEY_ESCAPE,
	"SPACE":     KEY_SPACE,
	"LEFT":      KEY_LEFT,
	"UP":        KEY_UP,
	"RIGHT":     KEY_RIGHT,
	"DOWN":      KEY_DOWN,
}

// ParseKey resolves a key name as written in config files and on the wire:
// a named key ("LEFT", "escape") or a single letter/digit ("a", "W").
func ParseKey(name string) (KeyCode, error) {
	n := strings.ToUpper(strings.TrimSpace(name))
	if k, ok := keyNames[n]; ok {
		return k, nil
	}
	if r := []rune(n); len(r) == 1 {
		if k, ok := KeyFromRune(r[0]); ok {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownKey, name)
}

// KeyFromRune maps a typed character to its key code. Letters are case
// insensitive, so 'a' and 'A' are both KEY_A.
func KeyFromRune(r rune) (KeyCode, bool) {
	r = unicode.ToUpper(r)
	switch {
	case r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return KeyCode(r), true
	case r == ' ':
		return KEY_SPACE, true
	}
	return 0, false
}

func (k KeyCode) String() string {
	for name, code := range keyNames {
		if code == k && name != "ESC" {
			return name
		}
	}
	if (k >= KEY_A && k <= KEY_Z) || (k >= KEY_0 && k <= KEY_9) {
		return string(rune(k))
	}
	return fmt.Sprintf("0x%02X", uint16(k))
}

// Keyboard state structure
type KeyboardState struct {
	Keys [KEYS_MAX_KEYS]bool
}

// Input holds current and previous keyboard states. Key changes are published
// on the event system as EVENT_CODE_KEY_PRESSED / EVENT_CODE_KEY_RELEASED.
type Input struct {
	mu       sync.Mutex
	current  KeyboardState
	previous KeyboardState
	events   *EventSystem

	// pressMu serializes Press so concurrent presses of one key all fire.
	pressMu sync.Mutex
}

func NewInput(events *EventSystem) *Input {
	LogDebug("Input subsystem initialized.")
	return &Input{events: events}
}

// Update copies current states to previous states. Call once at the end of a frame.
func (in *Input) Update() {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.previous = in.current
}

func (in *Input) IsKeyDown(key KeyCode) bool {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.current.Keys[key]
}

func (in *Input) IsKeyUp(key KeyCode) bool {
	return !in.IsKeyDown(key)
}

func (in *Input) WasKeyDown(key KeyCode) bool {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.previous.Keys[key]
}

func (in *Input) WasKeyUp(key KeyCode) bool {
	return !in.WasKeyDown(key)
}

func (in *Input) ProcessKey(key KeyCode, pressed bool) {
	if key >= KEYS_MAX_KEYS {
		return
	}
	in.mu.Lock()
	// Only handle this if the state actually changed.
	if in.current.Keys[key] == pressed {
		in.mu.Unlock()
		return
	}
	in.current.Keys[key] = pressed
	in.mu.Unlock()

	code := EVENT_CODE_KEY_RELEASED
	if pressed {
		code = EVENT_CODE_KEY_PRESSED
	}

	// Fire off an event for immediate processing.
	in.events.Fire(EventContext{
		Type: code,
		Data: &KeyEvent{
			KeyCode: key,
		},
	})
}

// Press delivers one discrete key press: down, then up. Sources that only
// report presses (scripts, the viewer server) use this.
func (in *Input) Press(key KeyCode) {
	in.pressMu.Lock()
	defer in.pressMu.Unlock()
	in.ProcessKey(key, true)
	in.ProcessKey(key, false)
}
