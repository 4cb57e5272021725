package config

const (
	defaultConfigPath  = "~/.config/pianoclips/config.toml"
	defaultResultsDir  = "./results"
	defaultNoteDir     = "key_sounds"
	defaultSpeechDir   = "key_speech"
	defaultMergedDir   = "key_full_sounds"
	defaultImageDir    = "key_images"
	defaultVideoDir    = "final"
	defaultLedgerName  = "pianoclips.db"
	defaultLastKey     = 87
	defaultSampleRate  = 44100
	defaultBitrate     = "192k"
	defaultInstrument  = "synth"
	defaultRecordSecs  = 2
	defaultVelocity    = 100
	defaultEngine      = "espeak"
	defaultSpeechRate  = 150
	defaultVolume      = 1.0
	defaultLanguage    = "en"
	defaultOpenAIModel = "tts-1"
	defaultOpenAIVoice = "alloy"
	defaultGapMS       = 1
	defaultWidth       = 1920
	defaultHeight      = 1080
	defaultFontSize    = 100
	defaultBackground  = "#000000"
	defaultTextColor   = "#FFFFFF"
	defaultAnchor      = "origin"
	defaultFPS         = 1
	defaultAudioCodec  = "aac"
	defaultVideoCodec  = "libx264"
	defaultPixelFormat = "yuv420p"
	defaultLogFormat   = "console"
	defaultLogLevel    = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			ResultsDir: defaultResultsDir,
			NoteDir:    defaultNoteDir,
			SpeechDir:  defaultSpeechDir,
			MergedDir:  defaultMergedDir,
			ImageDir:   defaultImageDir,
			VideoDir:   defaultVideoDir,
		},
		Keyboard: Keyboard{
			FirstKey: 0,
			LastKey:  defaultLastKey,
		},
		Audio: Audio{
			SampleRate: defaultSampleRate,
			Bitrate:    defaultBitrate,
		},
		Note: Note{
			Instrument:    defaultInstrument,
			RecordSeconds: defaultRecordSecs,
			Velocity:      defaultVelocity,
			Program:       0,
		},
		Speech: Speech{
			Engine:     defaultEngine,
			VoiceIndex: 0,
			Rate:       defaultSpeechRate,
			Volume:     defaultVolume,
			Language:   defaultLanguage,
		},
		Merge: Merge{
			GapMS: defaultGapMS,
		},
		Image: Image{
			Width:      defaultWidth,
			Height:     defaultHeight,
			FontSize:   defaultFontSize,
			Background: defaultBackground,
			TextColor:  defaultTextColor,
			Anchor:     defaultAnchor,
		},
		Video: Video{
			FPS:         defaultFPS,
			AudioCodec:  defaultAudioCodec,
			VideoCodec:  defaultVideoCodec,
			PixelFormat: defaultPixelFormat,
		},
		Pipeline: Pipeline{
			Workers: 1,
		},
		Tools: Tools{
			FFmpeg:   "ffmpeg",
			FFprobe:  "ffprobe",
			Timidity: "timidity",
			Espeak:   "espeak-ng",
			Piper:    "piper",
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
