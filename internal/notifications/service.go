package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"substation/internal/config"
)

const (
	userAgent      = "Substation/1.0"
	defaultTimeout = 10 * time.Second
)

// Event identifies an acquisition milestone worth a push notification.
type Event string

const (
	// EventSubtitleAcquired fires after a subtitle lands next to its media file.
	EventSubtitleAcquired Event = "subtitle-acquired"
	// EventError fires when an acquisition run hits a reportable failure.
	EventError Event = "error"
	// EventTest exercises the delivery path from the CLI.
	EventTest Event = "test"
)

// Payload carries the event-specific fields used to compose the message.
type Payload map[string]string

func (p Payload) get(key string) string {
	return strings.TrimSpace(p[key])
}

// Service defines the notification surface exposed to acquisition components.
type Service interface {
	Publish(ctx context.Context, event Event, payload Payload) error
}

// NewService returns the push notifier for cfg. Without an ntfy topic it
// degrades to a no-op implementation.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &ntfyService{
		endpoint: topic,
		client:   &http.Client{Timeout: timeout},
		acquired: cfg.Notifications.Acquired,
		errors:   cfg.Notifications.Errors,
	}
}

type message struct {
	title    string
	body     string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
	acquired bool
	errors   bool
}

// Publish composes and delivers the message for the event. Events suppressed
// by configuration return nil without touching the network.
func (n *ntfyService) Publish(ctx context.Context, event Event, payload Payload) error {
	msg, ok := n.compose(event, payload)
	if !ok {
		return nil
	}
	return n.send(ctx, msg)
}

func (n *ntfyService) compose(event Event, payload Payload) (message, bool) {
	switch event {
	case EventSubtitleAcquired:
		if !n.acquired {
			return message{}, false
		}
		body := fmt.Sprintf("💬 Subtitle downloaded: %s [%s]", payload.get("title"), payload.get("language"))
		if provider := payload.get("provider"); provider != "" {
			body += "\nProvider: " + provider
		}
		return message{
			title: "Substation - Subtitle Acquired",
			body:  body,
			tags:  []string{"substation", "subtitle", "acquired"},
		}, true
	case EventError:
		if !n.errors {
			return message{}, false
		}
		detail := payload.get("error")
		if detail == "" {
			detail = "unknown"
		}
		body := "❌ Error"
		if label := payload.get("context"); label != "" {
			body += " with " + label
		}
		body += ": " + detail
		return message{
			title:    "Substation - Error",
			body:     body,
			tags:     []string{"substation", "error", "alert"},
			priority: "high",
		}, true
	case EventTest:
		return message{
			title:    "Substation - Test",
			body:     "🧪 Notification system test",
			tags:     []string{"substation", "test"},
			priority: "low",
		}, true
	default:
		return message{}, false
	}
}

func (n *ntfyService) send(ctx context.Context, msg message) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(msg.body))
	if err != nil {
		return fmt.Errorf("compose ntfy push: %w", err)
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
		return fmt.Errorf("deliver ntfy push: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy: status %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) Publish(context.Context, Event, Payload) error { return nil }
