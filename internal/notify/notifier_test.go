package notify

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingNotifier struct {
	events chan Event
}

func (r *recordingNotifier) Notify(event Event) {
	r.events <- event
}

func TestHub_FansOutToAllNotifiers(t *testing.T) {
	t.Parallel()

	a := &recordingNotifier{events: make(chan Event, 1)}
	b := &recordingNotifier{events: make(chan Event, 1)}
	hub := NewHub(a, b)

	hub.Notify(Event{Type: "task.completed", TaskID: "x"})

	for _, n := range []*recordingNotifier{a, b} {
		select {
		case got := <-n.events:
			assert.Equal(t, "x", got.TaskID)
		case <-time.After(time.Second):
			t.Fatal("notifier never received the event")
		}
	}
}

func TestNtfy_PostsMessageWithTitle(t *testing.T) {
	t.Parallel()

	received := make(chan *http.Request, 1)
	bodies := make(chan string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		bodies <- string(body)
		received <- r
	}))
	t.Cleanup(srv.Close)

	n := NewNtfyNotifier(srv.URL, "cadence", "secret", nil)
	n.Notify(Event{
		Type:     "task.completed",
		TaskName: "Wash dishes",
		Message:  "Wash dishes completed (streak 3)",
	})

	select {
	case r := <-received:
		assert.Equal(t, "/cadence", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.NotEmpty(t, r.Header.Get("Title"))
	case <-time.After(time.Second):
		t.Fatal("ntfy server never received the push")
	}
	require.Equal(t, "Wash dishes completed (streak 3)", <-bodies)
}

func TestNtfy_FiltersByEventType(t *testing.T) {
	t.Parallel()

	hits := make(chan struct{}, 2)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits <- struct{}{}
	}))
	t.Cleanup(srv.Close)

	n := NewNtfyNotifier(srv.URL, "cadence", "", []string{"digest.due"})

	n.Notify(Event{Type: "task.completed", TaskName: "ignored"})
	n.Notify(Event{Type: "digest.due", Message: "2 tasks due"})

	select {
	case <-hits:
	case <-time.After(time.Second):
		t.Fatal("filtered notifier never forwarded the digest event")
	}

	select {
	case <-hits:
		t.Fatal("event outside the filter was forwarded")
	case <-time.After(100 * time.Millisecond):
	}
}
