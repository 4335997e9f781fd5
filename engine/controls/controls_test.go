package controls

import (
	"errors"
	"sync"
	"testing"

	"github.com/spaghettifunk/teapots/engine/animation"
	"github.com/spaghettifunk/teapots/engine/core"
)

func TestHandlerQueuesBoundKeysOnly(t *testing.T) {
	events := core.NewEventSystem()
	input := core.NewInput(events)
	queue := NewQueue(8)
	NewHandler(DefaultKeymap(), queue).Register(events)

	input.Press(core.KEY_D)
	input.Press(core.KEY_Q)
	input.Press(core.KEY_UP)

	var got []animation.Direction
	n := queue.Drain(func(cmd animation.Command) {
		got = append(got, cmd.Direction)
	})
	if n != 2 || len(got) != 2 || got[0] != animation.IncreaseX || got[1] != animation.IncreaseY {
		t.Fatalf("drained %d commands %v, want [increase_x increase_y]", n, got)
	}
	if queue.Len() != 0 {
		t.Fatalf("queue not empty after drain")
	}
}

func TestHandlerBoundFollowsKeymap(t *testing.T) {
	h := NewHandler(DefaultKeymap(), NewQueue(1))
	if !h.Bound(core.KEY_LEFT) || h.Bound(core.KEY_ESCAPE) || h.Bound(core.KeyCode('L')) {
		t.Fatalf("default keymap: unexpected Bound results")
	}
	h.SetKeymap(Keymap{core.KeyCode('L'): animation.IncreaseX})
	if h.Bound(core.KEY_LEFT) || !h.Bound(core.KeyCode('L')) {
		t.Fatalf("replaced keymap: unexpected Bound results")
	}
}

func TestIncreaseXKeyThroughQueue(t *testing.T) {
	events := core.NewEventSystem()
	input := core.NewInput(events)
	queue := NewQueue(8)
	NewHandler(DefaultKeymap(), queue).Register(events)

	state := animation.NewState()
	before := state.Snapshot()

	input.Press(core.KEY_D)
	// Capturing input must not touch the state.
	if state.Snapshot() != before {
		t.Fatalf("state mutated before the queue was drained")
	}

	queue.Drain(func(cmd animation.Command) {
		state.Apply(cmd, animation.DefaultSettings().TranslateStep)
	})
	if state.OffsetX != 0.5 || state.OffsetY != 0 || state.Rotation != 0 || state.Flip != 0 {
		t.Fatalf("state after one increase-X press: %+v", *state)
	}
}

func TestQueueFullDropsNewest(t *testing.T) {
	queue := NewQueue(2)
	for i := 0; i < 2; i++ {
		if err := queue.Push(animation.Command{Direction: animation.DecreaseY}); err != nil {
			t.Fatalf("push %d: %v", i, err)
		}
	}
	if err := queue.Push(animation.Command{Direction: animation.IncreaseY}); !errors.Is(err, core.ErrQueueFull) {
		t.Fatalf("push on full queue err = %v", err)
	}
	if queue.Dropped() != 1 {
		t.Fatalf("dropped = %d, want 1", queue.Dropped())
	}
	queue.Drain(func(cmd animation.Command) {
		if cmd.Direction != animation.DecreaseY {
			t.Fatalf("dropped command was kept: %v", cmd.Direction)
		}
	})
}

func TestQueueConcurrentProducers(t *testing.T) {
	queue := NewQueue(1000)
	var wg sync.WaitGroup
	for p := 0; p < 4; p++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				_ = queue.Push(animation.Command{Direction: animation.IncreaseX})
			}
		}()
	}
	wg.Wait()

	state := animation.NewState()
	n := queue.Drain(func(cmd animation.Command) { state.Apply(cmd, 0.5) })
	if n != 400 || state.OffsetX != 200 {
		t.Fatalf("drained %d, OffsetX %v; want 400 and 200", n, state.OffsetX)
	}
}

func TestParseKeymap(t *testing.T) {
	km, err := ParseKeymap(map[string][]string{
		"increase_x": {"l", "right"},
		"decrease_x": {"h"},
	})
	if err != nil {
		t.Fatalf("ParseKeymap: %v", err)
	}
	if cmd, ok := km.Lookup(core.KeyCode('L')); !ok || cmd.Direction != animation.IncreaseX {
		t.Fatalf("L -> %v, %v", cmd, ok)
	}
	if _, ok := km.Lookup(core.KEY_A); ok {
		t.Fatalf("A should not be bound")
	}

	if _, err := ParseKeymap(map[string][]string{"sideways": {"a"}}); err == nil {
		t.Fatalf("unknown direction accepted")
	}
	if _, err := ParseKeymap(map[string][]string{"increase_x": {"warp"}}); !errors.Is(err, core.ErrUnknownKey) {
		t.Fatalf("unknown key err = %v", err)
	}
	if _, err := ParseKeymap(map[string][]string{"increase_x": {"a"}, "decrease_x": {"a"}}); err == nil {
		t.Fatalf("conflicting binding accepted")
	}
}
