package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/andigenesis/brainrot-generator/internal/config"
)

const userAgent = "Brainrot-Generator/0.1.0"

// Event identifies a workflow milestone that can trigger a notification.
type Event string

const (
	EventJobAccepted    Event = "job_accepted"
	EventVideoCompleted Event = "video_completed"
	EventJobFailed      Event = "job_failed"
	EventTest           Event = "test"
)

// Payload carries event-specific fields used when formatting messages.
type Payload map[string]string

// Service defines the notification surface exposed to workflow components.
type Service interface {
	Publish(ctx context.Context, event Event, payload Payload) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint:         topic,
		client:           &http.Client{Timeout: timeout},
		notifyCompletion: cfg.Notifications.Completion,
		notifyErrors:     cfg.Notifications.Errors,
	}
}

type message struct {
	title    string
	body     string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint         string
	client           *http.Client
	notifyCompletion bool
	notifyErrors     bool
}

func (n *ntfyService) Publish(ctx context.Context, event Event, payload Payload) error {
	msg, ok := n.format(event, payload)
	if !ok {
		return nil
	}
	return n.send(ctx, msg)
}

func (n *ntfyService) format(event Event, payload Payload) (message, bool) {
	get := func(key string) string { return strings.TrimSpace(payload[key]) }

	switch event {
	case EventJobAccepted:
		title := get("title")
		if title == "" {
			title = "untitled"
		}
		return message{
			title: "Brainrot - Job Accepted",
			body:  fmt.Sprintf("Queued video: %s", title),
			tags:  []string{"brainrot", "job", "accepted"},
		}, true
	case EventVideoCompleted:
		if !n.notifyCompletion {
			return message{}, false
		}
		body := fmt.Sprintf("Video ready: %s", get("title"))
		if file := get("finalFile"); file != "" {
			body = fmt.Sprintf("%s\nFile: %s", body, file)
		}
		return message{
			title:    "Brainrot - Video Ready",
			body:     body,
			tags:     []string{"brainrot", "video", "completed"},
			priority: "high",
		}, true
	case EventJobFailed:
		if !n.notifyErrors {
			return message{}, false
		}
		var builder strings.Builder
		builder.WriteString("Job failed")
		if stage := get("stage"); stage != "" {
			builder.WriteString(" during ")
			builder.WriteString(stage)
		}
		builder.WriteString(": ")
		if errText := get("error"); errText != "" {
			builder.WriteString(errText)
		} else {
			builder.WriteString("unknown")
		}
		return message{
			title:    "Brainrot - Error",
			body:     builder.String(),
			tags:     []string{"brainrot", "error", "alert"},
			priority: "high",
		}, true
	case EventTest:
		return message{
			title:    "Brainrot - Test",
			body:     "Notification system test",
			tags:     []string{"brainrot", "test"},
			priority: "low",
		}, true
	}
	return message{}, false
}

func (n *ntfyService) send(ctx context.Context, msg message) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(msg.body))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if msg.title != "" {
		req.Header.Set("Title", msg.title)
	}
	if len(msg.tags) > 0 {
		req.Header.Set("Tags", strings.Join(msg.tags, ","))
	}
	if msg.priority != "" && msg.priority != "default" {
		req.Header.Set("Priority", msg.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) Publish(context.Context, Event, Payload) error { return nil }
