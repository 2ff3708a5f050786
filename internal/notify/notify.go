package notify

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
)

// Level classifies a notification
type Level string

const (
	Success Level = "success"
	Warning Level = "warning"
	Error   Level = "error"
)

// Notification is a dismissible message shown to the user
type Notification struct {
	Level       Level
	Title       string
	Message     string
	AutoDismiss bool
}

// New creates a notification; only success notifications dismiss themselves
func New(level Level, title, message string) Notification {
	return Notification{
		Level:       level,
		Title:       title,
		Message:     message,
		AutoDismiss: level == Success,
	}
}

// Notifier delivers notifications to the user
type Notifier interface {
	Notify(ctx context.Context, n Notification)
}

// WriterNotifier prints notifications as single lines
type WriterNotifier struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriterNotifier creates a notifier printing to w
func NewWriterNotifier(w io.Writer) *WriterNotifier {
	return &WriterNotifier{w: w}
}

// Notify prints the notification as "[level] Title: Message"
func (n *WriterNotifier) Notify(ctx context.Context, note Notification) {
	n.mu.Lock()
	defer n.mu.Unlock()

	fmt.Fprintf(n.w, "[%s] %s: %s\n", note.Level, note.Title, note.Message)
}

// LogNotifier forwards notifications to a structured logger
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier creates a notifier that logs through logger
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Notify logs the notification at a level matching its severity
func (n *LogNotifier) Notify(ctx context.Context, note Notification) {
	level := slog.LevelInfo
	switch note.Level {
	case Warning:
		level = slog.LevelWarn
	case Error:
		level = slog.LevelError
	}
	n.logger.Log(ctx, level, note.Message, "title", note.Title, "auto_dismiss", note.AutoDismiss)
}

// Multi fans a notification out to several notifiers
func Multi(notifiers ...Notifier) Notifier {
	return multiNotifier(notifiers)
}

type multiNotifier []Notifier

func (m multiNotifier) Notify(ctx context.Context, note Notification) {
	for _, n := range m {
		n.Notify(ctx, note)
	}
}

// Recorder keeps every notification it receives
type Recorder struct {
	mu            sync.Mutex
	notifications []Notification
}

// Notify records the notification
func (r *Recorder) Notify(ctx context.Context, note Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.notifications = append(r.notifications, note)
}

// Notifications returns a copy of the recorded notifications in arrival order
func (r *Recorder) Notifications() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Notification, len(r.notifications))
	copy(out, r.notifications)
	return out
}

// Last returns the most recent notification
func (r *Recorder) Last() (Notification, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.notifications) == 0 {
		return Notification{}, false
	}
	return r.notifications[len(r.notifications)-1], true
}
