// Package notice implements transient status banners that clear themselves
// after a fixed delay.
package notice

import (
	"sync"
	"time"
)

const DefaultTTL = 5 * time.Second

// Banner holds one transient message. Setting a message schedules a clear
// after the TTL and cancels any clear scheduled earlier.
type Banner struct {
	mu sync.Mutex
	// notifyMu orders callbacks; each one reports the text current at
	// delivery so the last callback always matches Text.
	notifyMu sync.Mutex
	ttl      time.Duration
	text     string
	timer    *time.Timer
	seq      uint64
	onChange func(string)
}

func NewBanner(ttl time.Duration) *Banner {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Banner{ttl: ttl}
}

// OnChange registers fn to be called with the new text whenever the banner
// changes, including the deferred clear. Callbacks are delivered one at a
// time without the banner lock held; fn must not call back into the banner.
func (b *Banner) OnChange(fn func(string)) {
	b.mu.Lock()
	b.onChange = fn
	b.mu.Unlock()
}

func (b *Banner) Text() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.text
}

func (b *Banner) TTL() time.Duration { return b.ttl }

// Set replaces the message. An empty text clears immediately.
func (b *Banner) Set(text string) {
	b.mu.Lock()
	b.stopLocked()
	b.text = text
	if text != "" {
		seq := b.seq
		b.timer = time.AfterFunc(b.ttl, func() { b.expire(seq) })
	}
	b.mu.Unlock()
	b.notify()
}

func (b *Banner) Clear() { b.Set("") }

// Stop cancels a pending clear without touching the text.
func (b *Banner) Stop() {
	b.mu.Lock()
	b.stopLocked()
	b.mu.Unlock()
}

func (b *Banner) stopLocked() {
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
	b.seq++
}

// expire clears the text unless a newer Set superseded the timer that fired.
func (b *Banner) expire(seq uint64) {
	b.mu.Lock()
	if seq != b.seq || b.text == "" {
		b.mu.Unlock()
		return
	}
	b.text = ""
	b.timer = nil
	b.mu.Unlock()
	b.notify()
}

func (b *Banner) notify() {
	b.notifyMu.Lock()
	defer b.notifyMu.Unlock()
	b.mu.Lock()
	fn, text := b.onChange, b.text
	b.mu.Unlock()
	if fn != nil {
		fn(text)
	}
}
