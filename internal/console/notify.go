package console

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Notification levels. Poll failures never produce notifications; only
// explicit user-triggered actions do.
const (
	LevelSuccess = "success"
	LevelError   = "error"
)

// Notification is one transient toast for the operator.
type Notification struct {
	ID          string    `json:"id"`
	Level       string    `json:"level"`
	Message     string    `json:"message"`
	Description string    `json:"description,omitempty"`
	At          time.Time `json:"at"`
}

const notifierCapacity = 32

// Notifier buffers transient notifications until the UI drains them. Bounded;
// the oldest entries are dropped on overflow.
type Notifier struct {
	mu      sync.Mutex
	pending []Notification
}

func NewNotifier() *Notifier {
	return &Notifier{}
}

func (n *Notifier) push(level, message, description string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.pending = append(n.pending, Notification{
		ID:          uuid.New().String(),
		Level:       level,
		Message:     message,
		Description: description,
		At:          time.Now(),
	})
	if len(n.pending) > notifierCapacity {
		n.pending = n.pending[len(n.pending)-notifierCapacity:]
	}
}

// Success queues a success toast.
func (n *Notifier) Success(message, description string) {
	n.push(LevelSuccess, message, description)
}

// Error queues an error toast.
func (n *Notifier) Error(message, description string) {
	n.push(LevelError, message, description)
}

// Drain returns all pending notifications and clears the buffer.
func (n *Notifier) Drain() []Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := n.pending
	n.pending = nil
	return out
}
