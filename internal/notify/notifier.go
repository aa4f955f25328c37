package notify

// Event represents a task lifecycle notification.
type Event struct {
	Type     string // "task.completed", "task.activated", "task.removed", "digest.due"
	TaskID   string
	TaskName string
	Message  string
}

// Notifier sends task lifecycle notifications.
type Notifier interface {
	Notify(event Event)
}

// Hub dispatches events to multiple notifiers.
type Hub struct {
	notifiers []Notifier
}

// NewHub creates a Hub with the given notifiers.
func NewHub(notifiers ...Notifier) *Hub {
	return &Hub{notifiers: notifiers}
}

// Notify sends an event to all registered notifiers.
// Delivery is fire-and-forget; a slow notifier never blocks the tracker.
func (h *Hub) Notify(event Event) {
	for _, n := range h.notifiers {
		go n.Notify(event)
	}
}
