package config

const (
	defaultAssetsDir          = "~/.local/share/brainrot/assets"
	defaultStagingDir         = "~/.local/share/brainrot/staging"
	defaultLibraryDir         = "~/videos"
	defaultLogDir             = "~/.local/share/brainrot/logs"
	defaultLogRetentionDays   = 60
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
	defaultAPIBind            = "127.0.0.1:7817"
	defaultRenderWidth        = 1080
	defaultRenderHeight       = 1920
	defaultRenderFPS          = 24
	defaultRenderCRF          = 23
	defaultRenderPreset       = "medium"
	defaultCaptionBlockSize   = 6
	defaultCaptionFontSize    = 72.0
	defaultCaptionTextColor   = "#FFFFFF"
	defaultCaptionHighlight   = "#FFD200"
	defaultCaptionTailHoldMS  = 1500
	defaultTTSEngine          = "edge-tts"
	defaultTTSVoice           = "en-US-ChristopherNeural"
	defaultTTSTimeoutSeconds  = 300
	defaultTransformBaseURL   = "http://127.0.0.1:11434"
	defaultTransformModel     = "llama3.2"
	defaultTransformTimeout   = 120
	defaultOverlayRenderer    = "mmdc"
	defaultHeartbeatInterval  = 15
	defaultHeartbeatTimeout   = 120
	defaultRetentionHours     = 24
	defaultCleanupSchedule    = "@hourly"
	defaultNotifyTimeout      = 10
	defaultQueuePollInterval  = 5
	defaultErrorRetryInterval = 10
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			AssetsDir:  defaultAssetsDir,
			StagingDir: defaultStagingDir,
			LibraryDir: defaultLibraryDir,
			LogDir:     defaultLogDir,
			APIBind:    defaultAPIBind,
		},
		Render: Render{
			Width:  defaultRenderWidth,
			Height: defaultRenderHeight,
			FPS:    defaultRenderFPS,
			CRF:    defaultRenderCRF,
			Preset: defaultRenderPreset,
		},
		Captions: Captions{
			BlockSize:      defaultCaptionBlockSize,
			FontSize:       defaultCaptionFontSize,
			TextColor:      defaultCaptionTextColor,
			HighlightColor: defaultCaptionHighlight,
			TailHoldMS:     defaultCaptionTailHoldMS,
		},
		TTS: TTS{
			Engine:         defaultTTSEngine,
			Voice:          defaultTTSVoice,
			TimeoutSeconds: defaultTTSTimeoutSeconds,
		},
		Transform: Transform{
			BaseURL:        defaultTransformBaseURL,
			Model:          defaultTransformModel,
			TimeoutSeconds: defaultTransformTimeout,
		},
		Overlays: Overlays{
			RendererBinary: defaultOverlayRenderer,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyTimeout,
			Completion:     true,
			Errors:         true,
		},
		Workflow: Workflow{
			QueuePollInterval:  defaultQueuePollInterval,
			ErrorRetryInterval: defaultErrorRetryInterval,
			HeartbeatInterval:  defaultHeartbeatInterval,
			HeartbeatTimeout:   defaultHeartbeatTimeout,
			RetentionHours:     defaultRetentionHours,
			CleanupSchedule:    defaultCleanupSchedule,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
