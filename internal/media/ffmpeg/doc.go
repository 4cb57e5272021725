// Package ffmpeg wraps the two ffmpeg invocations pianoclips needs: encoding
// a PCM WAV render to mp3, and muxing a still image with an audio track into
// an mp4 clip.
//
// Commands run through a CommandRunner so tests can capture arguments or
// fake outputs without a real ffmpeg on PATH.
package ffmpeg
