// Package note renders the tone of a single piano key.
//
// Two instruments are available. Synth renders an additive piano-like tone
// in-process. Timidity writes a one-note MIDI file and renders it with the
// timidity binary. Either way the result is fitted to the configured
// recording length and converted to mp3 by the note stage.
package note
