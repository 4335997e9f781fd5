package controls

import (
	"strings"
	"unicode"

	"github.com/pkg/errors"

	"github.com/spaghettifunk/teapots/engine/core"
)

// ParseScript turns a key script into presses, one per frame. Tokens are
// separated by spaces or commas; a token naming a key ("left", "esc") is one
// press, any other token is one press per character ("ddw").
func ParseScript(script string) ([]core.KeyCode, error) {
	tokens := strings.FieldsFunc(script, func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	})

	var keys []core.KeyCode
	for _, tok := range tokens {
		if len([]rune(tok)) > 1 {
			if key, err := core.ParseKey(tok); err == nil {
				keys = append(keys, key)
				continue
			}
		}
		for _, r := range tok {
			key, ok := core.KeyFromRune(r)
			if !ok {
				return nil, errors.Wrapf(core.ErrUnknownKey, "%q in key script", r)
			}
			keys = append(keys, key)
		}
	}
	return keys, nil
}
