package config

const (
	defaultStagingDir        = "~/.local/share/subgen/staging"
	defaultLogDir            = "~/.local/share/subgen/logs"
	defaultProbeTimeout      = 60
	defaultExtractTimeout    = 900
	defaultTranscribeTimeout = 7200
	defaultMuxTimeout        = 900
	defaultAudioFormat       = "wav"
	defaultAudioBitrate      = "192k"
	defaultAudioSampleRate   = 16000
	defaultAudioChannels     = 1
	defaultModel             = "base"
	defaultDevice            = "cpu"
	defaultFallbackLanguage  = "en"
	defaultChunkSeconds      = 600
	defaultMinSegmentMillis  = 500
	defaultMaxMergeGapMillis = 300
	defaultSubtitleCodec     = "mov_text"
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StagingDir: defaultStagingDir,
			LogDir:     defaultLogDir,
		},
		Tools: Tools{
			ProbeTimeout:      defaultProbeTimeout,
			ExtractTimeout:    defaultExtractTimeout,
			TranscribeTimeout: defaultTranscribeTimeout,
			MuxTimeout:        defaultMuxTimeout,
		},
		Audio: Audio{
			Format:     defaultAudioFormat,
			Bitrate:    defaultAudioBitrate,
			SampleRate: defaultAudioSampleRate,
			Channels:   defaultAudioChannels,
		},
		Transcription: Transcription{
			Model:             defaultModel,
			Device:            defaultDevice,
			FallbackLanguage:  defaultFallbackLanguage,
			ChunkSeconds:      defaultChunkSeconds,
			MinSegmentMillis:  defaultMinSegmentMillis,
			MaxMergeGapMillis: defaultMaxMergeGapMillis,
		},
		Subtitles: Subtitles{
			Codec: defaultSubtitleCodec,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
