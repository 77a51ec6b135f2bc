package keyboard

import (
	"texpand/internal/engine"
)

// Linux input event codes (linux/input-event-codes.h).
const (
	keyEsc        = 1
	key1          = 2
	key2          = 3
	key3          = 4
	key4          = 5
	key5          = 6
	key6          = 7
	key7          = 8
	key8          = 9
	key9          = 10
	key0          = 11
	keyMinus      = 12
	keyEqual      = 13
	keyBackspace  = 14
	keyTab        = 15
	keyQ          = 16
	keyW          = 17
	keyE          = 18
	keyR          = 19
	keyT          = 20
	keyY          = 21
	keyU          = 22
	keyI          = 23
	keyO          = 24
	keyP          = 25
	keyLeftBrace  = 26
	keyRightBrace = 27
	keyEnter      = 28
	keyLeftCtrl   = 29
	keyA          = 30
	keyS          = 31
	keyD          = 32
	keyF          = 33
	keyG          = 34
	keyH          = 35
	keyJ          = 36
	keyK          = 37
	keyL          = 38
	keySemicolon  = 39
	keyApostrophe = 40
	keyGrave      = 41
	keyLeftShift  = 42
	keyBackslash  = 43
	keyZ          = 44
	keyX          = 45
	keyC          = 46
	keyV          = 47
	keyB          = 48
	keyN          = 49
	keyM          = 50
	keyComma      = 51
	keyDot        = 52
	keySlash      = 53
	keyRightShift = 54
	keyLeftAlt    = 56
	keySpace      = 57
	keyCapsLock   = 58
	keyKPEnter    = 96
	keyRightCtrl  = 97
	keyRightAlt   = 100
	keyLeftMeta   = 125
	keyRightMeta  = 126
)

// usLayout maps key codes to their unshifted and shifted runes.
var usLayout = map[uint16][2]rune{
	key1: {'1', '!'}, key2: {'2', '@'}, key3: {'3', '#'}, key4: {'4', '$'}, key5: {'5', '%'},
	key6: {'6', '^'}, key7: {'7', '&'}, key8: {'8', '*'}, key9: {'9', '('}, key0: {'0', ')'},
	keyMinus: {'-', '_'}, keyEqual: {'=', '+'},
	keyQ: {'q', 'Q'}, keyW: {'w', 'W'}, keyE: {'e', 'E'}, keyR: {'r', 'R'}, keyT: {'t', 'T'},
	keyY: {'y', 'Y'}, keyU: {'u', 'U'}, keyI: {'i', 'I'}, keyO: {'o', 'O'}, keyP: {'p', 'P'},
	keyLeftBrace: {'[', '{'}, keyRightBrace: {']', '}'},
	keyA: {'a', 'A'}, keyS: {'s', 'S'}, keyD: {'d', 'D'}, keyF: {'f', 'F'}, keyG: {'g', 'G'},
	keyH: {'h', 'H'}, keyJ: {'j', 'J'}, keyK: {'k', 'K'}, keyL: {'l', 'L'},
	keySemicolon: {';', ':'}, keyApostrophe: {'\'', '"'}, keyGrave: {'`', '~'}, keyBackslash: {'\\', '|'},
	keyZ: {'z', 'Z'}, keyX: {'x', 'X'}, keyC: {'c', 'C'}, keyV: {'v', 'V'}, keyB: {'b', 'B'},
	keyN: {'n', 'N'}, keyM: {'m', 'M'},
	keyComma: {',', '<'}, keyDot: {'.', '>'}, keySlash: {'/', '?'},
}

type keyStroke struct {
	code  int
	shift bool
}

// strokes is the inverse of usLayout plus the whitespace keys.
var strokes = func() map[rune]keyStroke {
	m := make(map[rune]keyStroke, 2*len(usLayout)+3)
	for code, pair := range usLayout {
		m[pair[0]] = keyStroke{code: int(code)}
		m[pair[1]] = keyStroke{code: int(code), shift: true}
	}
	m[' '] = keyStroke{code: keySpace}
	m['\n'] = keyStroke{code: keyEnter}
	m['\t'] = keyStroke{code: keyTab}
	return m
}()

// strokeFor reports how to type r on a US layout.
func strokeFor(r rune) (keyStroke, bool) {
	s, ok := strokes[r]
	return s, ok
}

func isLetter(code uint16) bool {
	pair, ok := usLayout[code]
	return ok && pair[0] >= 'a' && pair[0] <= 'z'
}

// Event values of EV_KEY records.
const (
	keyReleased = 0
	keyPressed  = 1
	keyRepeated = 2
)

// Decoder turns raw key codes into engine events, tracking modifier state.
type Decoder struct {
	shift    int
	chord    int
	capsLock bool
}

// Feed consumes one EV_KEY record. It reports false for records that do
// not produce text: releases, modifiers, chords and unmapped keys.
func (d *Decoder) Feed(code uint16, value int32) (engine.Event, bool) {
	switch code {
	case keyLeftShift, keyRightShift:
		d.shift = adjust(d.shift, value)
		return engine.Event{}, false
	case keyLeftCtrl, keyRightCtrl, keyLeftAlt, keyRightAlt, keyLeftMeta, keyRightMeta:
		d.chord = adjust(d.chord, value)
		return engine.Event{}, false
	case keyCapsLock:
		if value == keyPressed {
			d.capsLock = !d.capsLock
		}
		return engine.Event{}, false
	}

	if value != keyPressed && value != keyRepeated {
		return engine.Event{}, false
	}
	if d.chord > 0 {
		return engine.Event{}, false
	}

	switch code {
	case keyBackspace:
		return engine.Backspace(), true
	case keyEnter, keyKPEnter:
		return engine.Enter(), true
	case keyTab:
		return engine.Tab(), true
	case keySpace:
		return engine.Space(), true
	}

	pair, ok := usLayout[code]
	if !ok {
		return engine.Event{}, false
	}
	shifted := d.shift > 0
	if d.capsLock && isLetter(code) {
		shifted = !shifted
	}
	if shifted {
		return engine.Char(pair[1]), true
	}
	return engine.Char(pair[0]), true
}

func adjust(held int, value int32) int {
	switch value {
	case keyPressed:
		return held + 1
	case keyReleased:
		if held > 0 {
			return held - 1
		}
	}
	return held
}
