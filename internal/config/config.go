package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory and bind address configuration.
type Paths struct {
	AssetsDir  string `toml:"assets_dir"`
	StagingDir string `toml:"staging_dir"`
	LibraryDir string `toml:"library_dir"`
	LogDir     string `toml:"log_dir"`
	APIBind    string `toml:"api_bind"`
	APIToken   string `toml:"api_token"`
}

// Render contains frame geometry and encoder settings for composed output.
type Render struct {
	Width   int    `toml:"width"`
	Height  int    `toml:"height"`
	FPS     int    `toml:"fps"`
	Workers int    `toml:"workers"` // 0 = one worker per CPU
	CRF     int    `toml:"crf"`
	Preset  string `toml:"preset"`
}

// Captions contains caption block layout and color settings.
type Captions struct {
	BlockSize      int     `toml:"block_size"`
	FontSize       float64 `toml:"font_size"`
	TextColor      string  `toml:"text_color"`
	HighlightColor string  `toml:"highlight_color"`
	TailHoldMS     int     `toml:"tail_hold_ms"`
}

// Background contains the clip pool settings for the video backdrop.
type Background struct {
	PoolDir string `toml:"pool_dir"` // empty = <assets_dir>/backgrounds
	Clip    string `toml:"clip"`     // pin a specific clip instead of random choice
	Seed    int64  `toml:"seed"`     // 0 = time-seeded selection
}

// TTS contains narration synthesis settings.
type TTS struct {
	Engine         string `toml:"engine"`
	Voice          string `toml:"voice"`
	Rate           string `toml:"rate"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Transform contains the optional narration rewrite settings.
type Transform struct {
	Enabled        bool   `toml:"enabled"`
	BaseURL        string `toml:"base_url"`
	Model          string `toml:"model"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Overlays contains the optional timed-diagram overlay settings.
type Overlays struct {
	Enabled        bool   `toml:"enabled"`
	RendererBinary string `toml:"renderer_binary"`
	Model          string `toml:"model"`
}

// Notifications contains configuration for ntfy push notifications.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
	Completion     bool   `toml:"completion"`
	Errors         bool   `toml:"errors"`
}

// Workflow contains configuration for daemon timing and retention.
type Workflow struct {
	QueuePollInterval  int    `toml:"queue_poll_interval"`
	ErrorRetryInterval int    `toml:"error_retry_interval"`
	HeartbeatInterval  int    `toml:"heartbeat_interval"`
	HeartbeatTimeout   int    `toml:"heartbeat_timeout"`
	RetentionHours     int    `toml:"retention_hours"`
	CleanupSchedule    string `toml:"cleanup_schedule"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format        string `toml:"format"`
	Level         string `toml:"level"`
	RetentionDays int    `toml:"retention_days"`
}

// Config encapsulates all configuration values for the generator.
//
// Configuration sections by subsystem:
//   - Paths: directories and API bind address
//   - Render: output geometry, frame rate, encoder settings
//   - Captions: block size, font, and highlight colors
//   - Background: backdrop clip pool and selection seed
//   - TTS: narration engine and voice
//   - Transform: optional LLM narration rewrite
//   - Overlays: optional timed diagram overlays
//   - Notifications: ntfy push notification settings
//   - Workflow: daemon polling intervals, heartbeats, retention
//   - Logging: log format, level, and retention
type Config struct {
	Paths         Paths         `toml:"paths"`
	Render        Render        `toml:"render"`
	Captions      Captions      `toml:"captions"`
	Background    Background    `toml:"background"`
	TTS           TTS           `toml:"tts"`
	Transform     Transform     `toml:"transform"`
	Overlays      Overlays      `toml:"overlays"`
	Notifications Notifications `toml:"notifications"`
	Workflow      Workflow      `toml:"workflow"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/brainrot/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

// applyEnvOverrides layers secrets from the environment over file values so
// tokens never have to live in the config file. A .env in the working
// directory is loaded first when present.
func (c *Config) applyEnvOverrides() {
	_ = godotenv.Load()

	if token := strings.TrimSpace(os.Getenv("BRAINROT_API_TOKEN")); token != "" {
		c.Paths.APIToken = token
	}
	if topic := strings.TrimSpace(os.Getenv("BRAINROT_NTFY_TOPIC")); topic != "" {
		c.Notifications.NtfyTopic = topic
	}
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath("~/.config/brainrot/config.toml")
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("brainrot.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates required directories for daemon operation.
// LibraryDir is created on a best-effort basis so the daemon can run when
// external storage is temporarily unavailable.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.StagingDir, c.Paths.LogDir, c.Paths.AssetsDir, c.BackgroundPoolDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	if strings.TrimSpace(c.Paths.LibraryDir) != "" {
		// Best-effort to avoid failing config load when storage is offline.
		_ = os.MkdirAll(c.Paths.LibraryDir, 0o755)
	}
	return nil
}

// BackgroundPoolDir returns the directory scanned for background clips.
func (c *Config) BackgroundPoolDir() string {
	if dir := strings.TrimSpace(c.Background.PoolDir); dir != "" {
		return dir
	}
	return filepath.Join(c.Paths.AssetsDir, "backgrounds")
}

// FFmpegBinary returns the ffmpeg executable name used for encode and mux.
func (c *Config) FFmpegBinary() string {
	return "ffmpeg"
}

// FFprobeBinary returns the ffprobe executable name used for media inspection.
func (c *Config) FFprobeBinary() string {
	return "ffprobe"
}

// TTSBinary returns the narration engine executable name.
func (c *Config) TTSBinary() string {
	if engine := strings.TrimSpace(c.TTS.Engine); engine != "" {
		return engine
	}
	return "edge-tts"
}

// OverlayRendererBinary returns the diagram renderer executable name.
func (c *Config) OverlayRendererBinary() string {
	if bin := strings.TrimSpace(c.Overlays.RendererBinary); bin != "" {
		return bin
	}
	return "mmdc"
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	sample := sampleConfig

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sample), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
