package config

const (
	defaultOutputDir    = "out"
	defaultReferenceDir = "Reference"
	defaultLogDir       = "~/.local/share/voicetag/logs"
	defaultWorkDir      = "~/.cache/voicetag/work"
	defaultHistoryPath  = "~/.local/share/voicetag/history.db"

	defaultSampleRate = 16000

	defaultClusteringThreshold = 0.7
	defaultEmbeddingThreshold  = 0.65
	defaultFeaturesThreshold   = 0.40
	defaultEmbeddingDim        = 192
	defaultFeatureDim          = 13

	defaultMergeGap     = 0.1
	defaultMinUtterance = 0.5

	defaultWhisperBinary  = "faster-whisper"
	defaultWhisperModel   = "base"
	defaultBeamSize       = 5
	defaultWhisperTimeout = 1800

	defaultExtractorBinary  = "voicetag-features"
	defaultMFCC             = 13
	defaultExtractorTimeout = 600

	defaultBatchWorkers = 2

	defaultLogFormat = "console"
	defaultLogLevel  = "info"
)

func defaultExtensions() []string {
	return []string{".wav", ".mp3", ".flac", ".m4a", ".ogg", ".m4b", ".aac"}
}

func defaultFormats() []string {
	return []string{"json", "txt", "csv", "summary"}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			OutputDir:    defaultOutputDir,
			ReferenceDir: defaultReferenceDir,
			LogDir:       defaultLogDir,
			WorkDir:      defaultWorkDir,
		},
		Audio: Audio{
			Extensions: defaultExtensions(),
			SampleRate: defaultSampleRate,
		},
		Speaker: Speaker{
			ClusteringThreshold: defaultClusteringThreshold,
			EmbeddingThreshold:  defaultEmbeddingThreshold,
			FeaturesThreshold:   defaultFeaturesThreshold,
			EmbeddingDim:        defaultEmbeddingDim,
			FeatureDim:          defaultFeatureDim,
		},
		Alignment: Alignment{
			MergeGap:     defaultMergeGap,
			MinUtterance: defaultMinUtterance,
		},
		Transcription: Transcription{
			Binary:         defaultWhisperBinary,
			Model:          defaultWhisperModel,
			BeamSize:       defaultBeamSize,
			WordTimestamps: true,
			TimeoutSeconds: defaultWhisperTimeout,
		},
		Features: Features{
			Binary:         defaultExtractorBinary,
			MFCC:           defaultMFCC,
			TimeoutSeconds: defaultExtractorTimeout,
		},
		Output: Output{
			Formats: defaultFormats(),
		},
		Batch: Batch{
			Workers: defaultBatchWorkers,
		},
		History: History{
			Enabled: true,
			Path:    defaultHistoryPath,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
