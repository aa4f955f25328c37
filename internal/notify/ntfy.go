package notify

import (
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"time"
)

// NtfyNotifier pushes events to an ntfy.sh-compatible server.
type NtfyNotifier struct {
	Server string
	Topic  string
	Token  string
	Events []string // event types to forward; empty forwards everything

	client *http.Client
}

// NewNtfyNotifier creates a notifier for the given ntfy server and topic.
func NewNtfyNotifier(server, topic, token string, events []string) *NtfyNotifier {
	return &NtfyNotifier{
		Server: strings.TrimSuffix(server, "/"),
		Topic:  topic,
		Token:  token,
		Events: events,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// Notify publishes the event as a plain-text ntfy message. Failures are
// logged, never propagated: notifications are best effort.
func (n *NtfyNotifier) Notify(event Event) {
	if len(n.Events) > 0 && !slices.Contains(n.Events, event.Type) {
		return
	}

	url := fmt.Sprintf("%s/%s", n.Server, n.Topic)
	body := event.Message
	if body == "" {
		body = event.TaskName
	}

	req, err := http.NewRequest(http.MethodPost, url, strings.NewReader(body))
	if err != nil {
		slog.Warn("building ntfy request failed", "error", err)
		return
	}
	req.Header.Set("Title", title(event))
	if n.Token != "" {
		req.Header.Set("Authorization", "Bearer "+n.Token)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		slog.Warn("ntfy push failed", "event", event.Type, "error", err)
		return
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 300 {
		slog.Warn("ntfy push rejected", "event", event.Type, "status", resp.StatusCode)
	}
}

func title(event Event) string {
	switch event.Type {
	case "task.completed":
		return "Task completed"
	case "task.activated":
		return "Task activated"
	case "task.removed":
		return "Task removed"
	case "digest.due":
		return "Tasks due today"
	default:
		return event.Type
	}
}
