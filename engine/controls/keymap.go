package controls

import (
	"github.com/pkg/errors"

	"github.com/spaghettifunk/teapots/engine/animation"
	"github.com/spaghettifunk/teapots/engine/core"
)

// Keymap binds key codes to translation directions.
type Keymap map[core.KeyCode]animation.Direction

// DefaultKeymap binds WASD plus the arrow keys.
func DefaultKeymap() Keymap {
	return Keymap{
		core.KEY_A:     animation.DecreaseX,
		core.KEY_LEFT:  animation.DecreaseX,
		core.KEY_D:     animation.IncreaseX,
		core.KEY_RIGHT: animation.IncreaseX,
		core.KEY_S:     animation.DecreaseY,
		core.KEY_DOWN:  animation.DecreaseY,
		core.KEY_W:     animation.IncreaseY,
		core.KEY_UP:    animation.IncreaseY,
	}
}

// ParseKeymap builds a keymap from direction names to key names, as found in
// the [input] section of the config file.
func ParseKeymap(bindings map[string][]string) (Keymap, error) {
	km := Keymap{}
	for dirName, keys := range bindings {
		dir, err := animation.ParseDirection(dirName)
		if err != nil {
			return nil, errors.Wrap(err, "input bindings")
		}
		for _, name := range keys {
			key, err := core.ParseKey(name)
			if err != nil {
				return nil, errors.Wrapf(err, "binding for %s", dirName)
			}
			if prev, ok := km[key]; ok && prev != dir {
				return nil, errors.Errorf("key %s bound to both %s and %s", key, prev, dir)
			}
			km[key] = dir
		}
	}
	return km, nil
}

// Lookup returns the command for key, if it is bound.
func (km Keymap) Lookup(key core.KeyCode) (animation.Command, bool) {
	dir, ok := km[key]
	if !ok {
		return animation.Command{}, false
	}
	return animation.Command{Direction: dir}, true
}
