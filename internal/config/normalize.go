package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeBackground(); err != nil {
		return err
	}
	c.normalizeRender()
	c.normalizeCaptions()
	c.normalizeTTS()
	c.normalizeTransform()
	c.normalizeNotifications()
	c.normalizeWorkflow()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.AssetsDir) == "" {
		c.Paths.AssetsDir = defaultAssetsDir
	}
	if c.Paths.AssetsDir, err = expandPath(c.Paths.AssetsDir); err != nil {
		return fmt.Errorf("paths.assets_dir: %w", err)
	}
	if c.Paths.StagingDir, err = expandPath(c.Paths.StagingDir); err != nil {
		return fmt.Errorf("paths.staging_dir: %w", err)
	}
	if c.Paths.LibraryDir, err = expandPath(c.Paths.LibraryDir); err != nil {
		return fmt.Errorf("paths.library_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	if c.Paths.APIBind == "" {
		c.Paths.APIBind = defaultAPIBind
	}
	if c.Paths.APIToken == "" {
		if value, ok := os.LookupEnv("BRAINROT_API_TOKEN"); ok {
			c.Paths.APIToken = strings.TrimSpace(value)
		}
	}
	return nil
}

func (c *Config) normalizeBackground() error {
	var err error
	if strings.TrimSpace(c.Background.PoolDir) != "" {
		if c.Background.PoolDir, err = expandPath(c.Background.PoolDir); err != nil {
			return fmt.Errorf("background.pool_dir: %w", err)
		}
	}
	if strings.TrimSpace(c.Background.Clip) != "" {
		if c.Background.Clip, err = expandPath(c.Background.Clip); err != nil {
			return fmt.Errorf("background.clip: %w", err)
		}
	}
	return nil
}

func (c *Config) normalizeRender() {
	if c.Render.Width <= 0 {
		c.Render.Width = defaultRenderWidth
	}
	if c.Render.Height <= 0 {
		c.Render.Height = defaultRenderHeight
	}
	if c.Render.FPS <= 0 {
		c.Render.FPS = defaultRenderFPS
	}
	if c.Render.Workers < 0 {
		c.Render.Workers = 0
	}
	if c.Render.CRF <= 0 {
		c.Render.CRF = defaultRenderCRF
	}
	c.Render.Preset = strings.ToLower(strings.TrimSpace(c.Render.Preset))
	if c.Render.Preset == "" {
		c.Render.Preset = defaultRenderPreset
	}
}

func (c *Config) normalizeCaptions() {
	if c.Captions.BlockSize <= 0 {
		c.Captions.BlockSize = defaultCaptionBlockSize
	}
	if c.Captions.FontSize <= 0 {
		c.Captions.FontSize = defaultCaptionFontSize
	}
	c.Captions.TextColor = strings.TrimSpace(c.Captions.TextColor)
	if c.Captions.TextColor == "" {
		c.Captions.TextColor = defaultCaptionTextColor
	}
	c.Captions.HighlightColor = strings.TrimSpace(c.Captions.HighlightColor)
	if c.Captions.HighlightColor == "" {
		c.Captions.HighlightColor = defaultCaptionHighlight
	}
	if c.Captions.TailHoldMS < 0 {
		c.Captions.TailHoldMS = defaultCaptionTailHoldMS
	}
}

func (c *Config) normalizeTTS() {
	c.TTS.Engine = strings.TrimSpace(c.TTS.Engine)
	if c.TTS.Engine == "" {
		c.TTS.Engine = defaultTTSEngine
	}
	c.TTS.Voice = strings.TrimSpace(c.TTS.Voice)
	if c.TTS.Voice == "" {
		c.TTS.Voice = defaultTTSVoice
	}
	c.TTS.Rate = strings.TrimSpace(c.TTS.Rate)
	if c.TTS.TimeoutSeconds <= 0 {
		c.TTS.TimeoutSeconds = defaultTTSTimeoutSeconds
	}
}

func (c *Config) normalizeTransform() {
	c.Transform.BaseURL = strings.TrimRight(strings.TrimSpace(c.Transform.BaseURL), "/")
	if c.Transform.BaseURL == "" {
		c.Transform.BaseURL = defaultTransformBaseURL
	}
	c.Transform.Model = strings.TrimSpace(c.Transform.Model)
	if c.Transform.Model == "" {
		c.Transform.Model = defaultTransformModel
	}
	if c.Transform.TimeoutSeconds <= 0 {
		c.Transform.TimeoutSeconds = defaultTransformTimeout
	}
}

func (c *Config) normalizeNotifications() {
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.NtfyTopic == "" {
		if value, ok := os.LookupEnv("BRAINROT_NTFY_TOPIC"); ok {
			c.Notifications.NtfyTopic = strings.TrimSpace(value)
		}
	}
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNotifyTimeout
	}
}

func (c *Config) normalizeWorkflow() {
	if c.Workflow.QueuePollInterval <= 0 {
		c.Workflow.QueuePollInterval = defaultQueuePollInterval
	}
	if c.Workflow.ErrorRetryInterval <= 0 {
		c.Workflow.ErrorRetryInterval = defaultErrorRetryInterval
	}
	if c.Workflow.HeartbeatInterval <= 0 {
		c.Workflow.HeartbeatInterval = defaultHeartbeatInterval
	}
	if c.Workflow.HeartbeatTimeout <= 0 {
		c.Workflow.HeartbeatTimeout = defaultHeartbeatTimeout
	}
	if c.Workflow.RetentionHours <= 0 {
		c.Workflow.RetentionHours = defaultRetentionHours
	}
	c.Workflow.CleanupSchedule = strings.TrimSpace(c.Workflow.CleanupSchedule)
	if c.Workflow.CleanupSchedule == "" {
		c.Workflow.CleanupSchedule = defaultCleanupSchedule
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.RetentionDays <= 0 {
		c.Logging.RetentionDays = defaultLogRetentionDays
	}
}
