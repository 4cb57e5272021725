// Package speech turns a key name into a spoken label.
//
// Speakable rewrites the note name into words a TTS engine pronounces
// correctly. Three engines synthesize the text to WAV: espeak-ng (default),
// piper, and the OpenAI speech API. The speech stage converts the render to
// mp3 at <speech dir>/<index>.mp3.
package speech
