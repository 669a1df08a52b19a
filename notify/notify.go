// Package notify carries short user-facing messages out of the state engines.
package notify

import (
	"log"
	"sync"
	"time"
)

type Level string

const (
	Success Level = "success"
	Error   Level = "error"
)

// Notice is one transient message for the user.
type Notice struct {
	Level   Level     `json:"level"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// Notifier receives notices from the engines.
type Notifier interface {
	Notify(level Level, message string)
}

// Discard drops every notice.
type Discard struct{}

func (Discard) Notify(Level, string) {}

// DefaultFeedSize bounds how many undelivered notices a Feed keeps.
const DefaultFeedSize = 50

// Feed logs each notice and buffers the most recent ones until they are drained.
type Feed struct {
	mu      sync.Mutex
	notices []Notice
	size    int
	now     func() time.Time
}

func NewFeed(size int) *Feed {
	if size <= 0 {
		size = DefaultFeedSize
	}
	return &Feed{size: size, now: time.Now}
}

func (f *Feed) Notify(level Level, message string) {
	log.Printf("[notify] %s: %s", level, message)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.notices = append(f.notices, Notice{Level: level, Message: message, At: f.now()})
	if over := len(f.notices) - f.size; over > 0 {
		f.notices = append([]Notice(nil), f.notices[over:]...)
	}
}

// Drain returns the buffered notices oldest first and empties the buffer.
func (f *Feed) Drain() []Notice {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := f.notices
	f.notices = nil
	if out == nil {
		out = []Notice{}
	}
	return out
}
