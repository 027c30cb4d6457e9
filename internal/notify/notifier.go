package notify

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Outbox collects warnings per user until the host drains them.
// All methods are safe for concurrent use.
type Outbox struct {
	mu    sync.Mutex
	queue map[string][]string
}

// NewOutbox creates an empty Outbox.
func NewOutbox() *Outbox {
	return &Outbox{queue: make(map[string][]string)}
}

// Warn queues msg for userID.
func (o *Outbox) Warn(_ context.Context, userID, msg string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.queue[userID] = append(o.queue[userID], msg)
}

// Drain returns and clears every queued message for userID.
//
// Postcondition: a second Drain with no intervening Warn returns nil.
func (o *Outbox) Drain(userID string) []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	msgs := o.queue[userID]
	delete(o.queue, userID)
	return msgs
}

// warner is the subset of macro.Notifier needed to chain delivery.
type warner interface {
	Warn(ctx context.Context, userID, msg string)
}

// LogNotifier logs every warning and forwards it to next.
type LogNotifier struct {
	logger *zap.Logger
	next   warner
}

// NewLogNotifier wraps next with warn-level logging.
//
// Precondition: logger and next must be non-nil.
func NewLogNotifier(logger *zap.Logger, next warner) *LogNotifier {
	if logger == nil || next == nil {
		panic("notify.NewLogNotifier: precondition violated: logger and next must be non-nil")
	}
	return &LogNotifier{logger: logger, next: next}
}

// Warn logs msg and forwards it.
func (n *LogNotifier) Warn(ctx context.Context, userID, msg string) {
	n.logger.Warn("user notification",
		zap.String("user", userID),
		zap.String("message", msg),
	)
	n.next.Warn(ctx, userID, msg)
}
