// Package notify is the user-notice sink: the equivalent of the
// storefront's toast messages. The API layer pushes notices here so
// failures are never silent.
package notify

import (
	"log/slog"
	"sync"
)

type Level string

const (
	LevelError Level = "error"
	LevelInfo  Level = "info"
)

type Notice struct {
	Level       Level  `json:"level"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Notifier receives user-visible notices.
type Notifier interface {
	Notify(n Notice)
}

// LogNotifier writes notices to the default logger. The HTTP surface
// wraps it to also flash notices to the client.
type LogNotifier struct{}

func (LogNotifier) Notify(n Notice) {
	switch n.Level {
	case LevelError:
		slog.Error("user notice", "title", n.Title, "description", n.Description)
	default:
		slog.Info("user notice", "title", n.Title, "description", n.Description)
	}
}

// Flash queues notices so the HTTP surface can attach them to the
// next error response, the way the storefront flashes toasts. Every
// notice still passes through the wrapped notifier, so nothing stops
// reaching the logs.
type Flash struct {
	next Notifier

	mu      sync.Mutex
	pending []Notice
}

func NewFlash(next Notifier) *Flash {
	if next == nil {
		next = LogNotifier{}
	}
	return &Flash{next: next}
}

func (f *Flash) Notify(n Notice) {
	f.next.Notify(n)
	f.mu.Lock()
	f.pending = append(f.pending, n)
	f.mu.Unlock()
}

// Drain returns the queued notices and clears the queue.
func (f *Flash) Drain() []Notice {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := f.pending
	f.pending = nil
	return out
}

// SessionExpired is the notice shown when a request comes back 401.
func SessionExpired() Notice {
	return Notice{
		Level:       LevelError,
		Title:       "Session expirée",
		Description: "Veuillez vous reconnecter",
	}
}

// GenericError is the notice shown for unclassified API failures.
func GenericError(description string) Notice {
	if description == "" {
		description = "Une erreur est survenue"
	}
	return Notice{
		Level:       LevelError,
		Title:       "Erreur",
		Description: description,
	}
}
