package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	"golang.org/x/sys/unix"

	"github.com/andigenesis/brainrot-generator/internal/config"
	"github.com/andigenesis/brainrot-generator/internal/deps"
	"github.com/andigenesis/brainrot-generator/internal/services/ollama"
)

// CheckOllama verifies that the Ollama API is reachable and the configured
// model is pulled. It uses a 10-second timeout and a single attempt.
func CheckOllama(ctx context.Context, cfg ollama.Config) Result {
	const name = "Ollama"

	checkCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client := ollama.NewClient(cfg, ollama.WithRetryMaxAttempts(1))
	if err := client.HealthCheck(checkCtx); err != nil {
		return Result{Name: name, Detail: summarizeOllamaError(err)}
	}
	return Result{Name: name, Passed: true, Detail: "API reachable"}
}

// CheckOllamaFromConfig evaluates Ollama readiness for the transform and
// overlay features.
func CheckOllamaFromConfig(ctx context.Context, cfg *config.Config) Result {
	return CheckOllama(ctx, ollama.Config{
		BaseURL:        cfg.Transform.BaseURL,
		Model:          cfg.Transform.Model,
		TimeoutSeconds: cfg.Transform.TimeoutSeconds,
	})
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckSystemDeps evaluates all external binary dependencies for the given
// config. Both the daemon and the CLI status command use this to avoid
// duplicating the requirements list.
func CheckSystemDeps(ctx context.Context, cfg *config.Config) []deps.Status {
	return deps.CheckBinaries(deps.Requirements(cfg))
}

// summarizeOllamaError produces a human-readable summary for health check failures.
func summarizeOllamaError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "health check timed out (Ollama unresponsive)"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "health check timed out (Ollama unreachable)"
	}
	return err.Error()
}
