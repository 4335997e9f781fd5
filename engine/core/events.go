package core

import "sync"

// System internal event codes. Application should use codes beyond 255.
type EventCode uint16

const (
	// Shuts the application down on the next frame.
	EVENT_CODE_APPLICATION_QUIT EventCode = 0x01

	// Keyboard key pressed.
	/* Context usage:
	 * key := context.Data.(*KeyEvent).KeyCode
	 */
	EVENT_CODE_KEY_PRESSED EventCode = 0x02

	// Keyboard key released.
	/* Context usage:
	 * key := context.Data.(*KeyEvent).KeyCode
	 */
	EVENT_CODE_KEY_RELEASED EventCode = 0x03

	// Resized/resolution changed.
	/* Context usage:
	 * se := context.Data.(*SystemEvent)
	 * se.WindowWidth, se.WindowHeight
	 */
	EVENT_CODE_RESIZED EventCode = 0x08

	// Configuration file changed on disk and was reloaded.
	/* Context usage:
	 * cfg := context.Data.(*config.Config)
	 */
	EVENT_CODE_CONFIG_RELOADED EventCode = 0x09

	MAX_EVENT_CODE EventCode = 0xFF
)

type EventContext struct {
	Type EventCode
	Data interface{}
}

type KeyEvent struct {
	KeyCode KeyCode
}

type SystemEvent struct {
	WindowWidth  uint32
	WindowHeight uint32
}

// FnOnEvent should return true if the event has been handled; handled events
// are not passed on to later listeners.
type FnOnEvent func(context EventContext) bool

// EventSystem dispatches events synchronously, in registration order, on the
// goroutine that fires them.
type EventSystem struct {
	mu         sync.RWMutex
	registered map[EventCode][]FnOnEvent
}

func NewEventSystem() *EventSystem {
	return &EventSystem{
		registered: make(map[EventCode][]FnOnEvent),
	}
}

/**
 * Register to listen for when events are sent with the provided code.
 * @param code The event code to listen for.
 * @param onEvent The callback to be invoked when the event code is fired.
 */
func (es *EventSystem) Register(code EventCode, onEvent FnOnEvent) {
	es.mu.Lock()
	defer es.mu.Unlock()
	es.registered[code] = append(es.registered[code], onEvent)
}

// Unregister drops every listener of the given code.
func (es *EventSystem) Unregister(code EventCode) bool {
	es.mu.Lock()
	defer es.mu.Unlock()
	if len(es.registered[code]) == 0 {
		return false
	}
	delete(es.registered, code)
	return true
}

/**
 * Fires an event to listeners of the given code. If an event handler returns
 * true, the event is considered handled and is not passed on to any more listeners.
 * @returns true if handled, otherwise false.
 */
func (es *EventSystem) Fire(context EventContext) bool {
	es.mu.RLock()
	listeners := es.registered[context.Type]
	es.mu.RUnlock()

	for _, callback := range listeners {
		if callback(context) {
			// Message has been handled, do not send to other listeners.
			return true
		}
	}
	return false
}

func (es *EventSystem) Shutdown() error {
	es.mu.Lock()
	defer es.mu.Unlock()
	es.registered = make(map[EventCode][]FnOnEvent)
	return nil
}
