package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateRender(); err != nil {
		return err
	}
	if err := c.validateCaptions(); err != nil {
		return err
	}
	if err := c.validateTransform(); err != nil {
		return err
	}
	if err := c.validateWorkflow(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.StagingDir) == "" {
		return errors.New("paths.staging_dir must be set")
	}
	if strings.TrimSpace(c.Paths.LibraryDir) == "" {
		return errors.New("paths.library_dir must be set")
	}
	return nil
}

func (c *Config) validateRender() error {
	if c.Render.Width%2 != 0 || c.Render.Height%2 != 0 {
		return fmt.Errorf("render dimensions %dx%d must be even for yuv420p encoding", c.Render.Width, c.Render.Height)
	}
	if c.Render.FPS > 120 {
		return fmt.Errorf("render.fps %d exceeds the supported maximum of 120", c.Render.FPS)
	}
	if c.Render.CRF < 0 || c.Render.CRF > 51 {
		return errors.New("render.crf must be between 0 and 51")
	}
	switch c.Render.Preset {
	case "ultrafast", "superfast", "veryfast", "faster", "fast", "medium", "slow", "slower", "veryslow":
	default:
		return fmt.Errorf("render.preset %q is not a recognized x264 preset", c.Render.Preset)
	}
	return nil
}

func (c *Config) validateCaptions() error {
	if c.Captions.BlockSize > 12 {
		return fmt.Errorf("captions.block_size %d exceeds the supported maximum of 12", c.Captions.BlockSize)
	}
	if _, err := ParseHexColor(c.Captions.TextColor); err != nil {
		return fmt.Errorf("captions.text_color: %w", err)
	}
	if _, err := ParseHexColor(c.Captions.HighlightColor); err != nil {
		return fmt.Errorf("captions.highlight_color: %w", err)
	}
	return nil
}

func (c *Config) validateTransform() error {
	if !c.Transform.Enabled {
		return nil
	}
	if strings.TrimSpace(c.Transform.BaseURL) == "" {
		return errors.New("transform.base_url must be set when transform.enabled is true")
	}
	if strings.TrimSpace(c.Transform.Model) == "" {
		return errors.New("transform.model must be set when transform.enabled is true")
	}
	return nil
}

func (c *Config) validateWorkflow() error {
	if c.Workflow.HeartbeatTimeout <= c.Workflow.HeartbeatInterval {
		return errors.New("workflow.heartbeat_timeout must exceed workflow.heartbeat_interval")
	}
	return nil
}
