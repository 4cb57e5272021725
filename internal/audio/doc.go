// Package audio holds the PCM plumbing shared by the note, speech and merge
// stages: decoding wav/mp3 renders into beep buffers at a common sample rate,
// concatenating tracks with a silence gap, fitting a render to an exact
// length, and handing WAV files to ffmpeg for mp3 encoding.
//
// The merge stage itself (note, gap, speech -> merged mp3) lives here as
// MergeStage.
package audio
