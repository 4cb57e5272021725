// Package keyboard enumerates the keys of a piano keyboard.
//
// The standard keyboard has 88 keys from A0 to C8. Key names follow the
// "<letter>-<octave>" convention for white keys and
// "<sharp>-<octave>/<flat>-<octave>" for black keys, with the octave number
// incrementing at C (so A-0, A#-0/Bb-0, B-0, C-1, ...).
package keyboard

import (
	"fmt"
	"math"
)

// StandardSize is the number of keys on a full piano.
const StandardSize = 88

// firstMIDI is the MIDI note number of A0.
const firstMIDI = 21

// Key describes one key. Index is stable and doubles as the filename stem of
// every artifact generated for the key.
type Key struct {
	Index int
	Name  string
	midi  int
}

// MIDI returns the MIDI note number of the key.
func (k Key) MIDI() int {
	return k.midi
}

// Frequency returns the equal-tempered pitch of the key in Hz (A4 = 440 Hz).
func (k Key) Frequency() float64 {
	return 440 * math.Pow(2, float64(k.midi-69)/12)
}

// String returns the key name.
func (k Key) String() string {
	return k.Name
}

// Keyboard is an ordered, immutable sequence of keys.
type Keyboard struct {
	keys []Key
}

var (
	sharps = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}
	flats  = [12]string{"C", "Db", "D", "Eb", "E", "F", "Gb", "G", "Ab", "A", "Bb", "B"}
)

// NoteName returns the key name for a MIDI note number.
func NoteName(midi int) string {
	pc := ((midi % 12) + 12) % 12
	octave := midi/12 - 1
	if sharps[pc] == flats[pc] {
		return fmt.Sprintf("%s-%d", sharps[pc], octave)
	}
	return fmt.Sprintf("%s-%d/%s-%d", sharps[pc], octave, flats[pc], octave)
}

// Standard returns the 88-key keyboard A0..C8 indexed 0..87.
func Standard() Keyboard {
	keys := make([]Key, StandardSize)
	for i := range keys {
		midi := firstMIDI + i
		keys[i] = Key{Index: i, Name: NoteName(midi), midi: midi}
	}
	return Keyboard{keys: keys}
}

// NewKey builds a key for an arbitrary index and name. The MIDI number is
// derived from the index as on the standard keyboard.
func NewKey(index int, name string) Key {
	return Key{Index: index, Name: name, midi: firstMIDI + index}
}

// New builds a keyboard from keys in the given order.
func New(keys ...Key) Keyboard {
	return Keyboard{keys: append([]Key(nil), keys...)}
}

// Keys returns a copy of the ordered keys.
func (kb Keyboard) Keys() []Key {
	return append([]Key(nil), kb.keys...)
}

// Len returns the number of keys.
func (kb Keyboard) Len() int {
	return len(kb.keys)
}

// Lookup returns the key with the given index.
func (kb Keyboard) Lookup(index int) (Key, bool) {
	for _, key := range kb.keys {
		if key.Index == index {
			return key, true
		}
	}
	return Key{}, false
}

// Slice returns the keys whose index lies in [first, last].
func (kb Keyboard) Slice(first, last int) (Keyboard, error) {
	if first > last {
		return Keyboard{}, fmt.Errorf("keyboard slice: first %d after last %d", first, last)
	}
	var keys []Key
	for _, key := range kb.keys {
		if key.Index >= first && key.Index <= last {
			keys = append(keys, key)
		}
	}
	if len(keys) == 0 {
		return Keyboard{}, fmt.Errorf("keyboard slice: no keys in range %d..%d", first, last)
	}
	return Keyboard{keys: keys}, nil
}
