// Package notice carries transient user-facing notifications (toasts).
package notice

import "sync"

type Level string

const (
	Success Level = "success"
	Error   Level = "error"
)

type Notice struct {
	Level       Level  `json:"level"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

type Notifier interface {
	Notify(n Notice)
}

// Buffer collects notices until they are drained by the caller that renders them.
type Buffer struct {
	mu    sync.Mutex
	items []Notice
}

func (b *Buffer) Notify(n Notice) {
	b.mu.Lock()
	b.items = append(b.items, n)
	b.mu.Unlock()
}

// Drain returns the pending notices in arrival order and empties the buffer.
func (b *Buffer) Drain() []Notice {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := b.items
	b.items = nil
	if out == nil {
		out = []Notice{}
	}
	return out
}
