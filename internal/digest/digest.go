// Package digest publishes a scheduled summary of everything due today.
package digest

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	cronlib "github.com/robfig/cron/v3"

	"github.com/kolapsis/cadence/internal/notify"
	"github.com/kolapsis/cadence/internal/task"
	"github.com/kolapsis/cadence/internal/tracker"
)

// cronParser parses standard 5-field cron expressions (minute, hour, dom, month, dow).
var cronParser = cronlib.NewParser(
	cronlib.Minute | cronlib.Hour | cronlib.Dom | cronlib.Month | cronlib.Dow,
)

// ParseSchedule validates a digest cron expression.
func ParseSchedule(expr string) (cronlib.Schedule, error) {
	sched, err := cronParser.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("parsing cron expression %q: %w", expr, err)
	}
	return sched, nil
}

// Scheduler fires the daily digest at the configured cron times.
type Scheduler struct {
	tracker  *tracker.Tracker
	hub      *notify.Hub
	schedule cronlib.Schedule

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewScheduler creates a digest scheduler. The cron expression uses the
// standard five fields and is evaluated in local time.
func NewScheduler(tr *tracker.Tracker, hub *notify.Hub, expr string) (*Scheduler, error) {
	sched, err := ParseSchedule(expr)
	if err != nil {
		return nil, err
	}
	return &Scheduler{tracker: tr, hub: hub, schedule: sched}, nil
}

// Start begins the scheduler loop. It runs in a background goroutine
// and respects the provided context for shutdown.
func (s *Scheduler) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)
	s.wg.Add(1)
	go s.loop(ctx)
	slog.Info("digest scheduler started", "next", s.schedule.Next(time.Now()).Format(time.RFC3339))
}

// Stop cancels the scheduler loop and waits for it to exit.
func (s *Scheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
	slog.Info("digest scheduler stopped")
}

func (s *Scheduler) loop(ctx context.Context) {
	defer s.wg.Done()

	for {
		now := time.Now()
		next := s.schedule.Next(now)

		timer := time.NewTimer(next.Sub(now))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
			s.fire()
		}
	}
}

// fire queries today's due tasks and publishes the digest event.
func (s *Scheduler) fire() {
	today := task.Today()

	items, err := s.tracker.DueOn(today)
	if err != nil {
		slog.Error("digest: failed to query due tasks", "error", err)
		return
	}

	message := Summarize(items, today)
	slog.Info("digest fired", "date", today.String(), "top_level", len(items))

	s.hub.Notify(notify.Event{
		Type:    "digest.due",
		Message: message,
	})
}

// Summarize renders the due forest as a short plain-text digest.
func Summarize(items []task.Item, date task.Date) string {
	if len(items) == 0 {
		return fmt.Sprintf("Nothing due on %s.", date)
	}

	total := 0
	var b strings.Builder
	fmt.Fprintf(&b, "Due on %s:\n", date)
	for _, item := range items {
		total++
		fmt.Fprintf(&b, "- %s\n", item.Task.Name)
		for _, child := range item.Children {
			total++
			fmt.Fprintf(&b, "  - %s\n", child.Name)
		}
	}
	fmt.Fprintf(&b, "%d task(s) total", total)
	return b.String()
}
