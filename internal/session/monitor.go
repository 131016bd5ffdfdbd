package session

import (
	"strings"
	"sync"
	"time"
)

// ActivityKind is a qualifying user input that keeps a session alive.
type ActivityKind string

const (
	ActivityPointer    ActivityKind = "pointer"
	ActivityKeyboard   ActivityKind = "keyboard"
	ActivityScroll     ActivityKind = "scroll"
	ActivityTouch      ActivityKind = "touch"
	ActivityNavigation ActivityKind = "navigation"
)

// ParseActivityKind maps browser event names (mousedown, keydown, ...) and
// kind names to an ActivityKind.
func ParseActivityKind(event string) (ActivityKind, bool) {
	switch strings.ToLower(strings.TrimSpace(event)) {
	case "pointer", "mousedown", "mousemove", "click", "pointerdown", "pointermove":
		return ActivityPointer, true
	case "keyboard", "keydown", "keypress":
		return ActivityKeyboard, true
	case "scroll", "wheel":
		return ActivityScroll, true
	case "touch", "touchstart", "touchmove":
		return ActivityTouch, true
	case "navigation":
		return ActivityNavigation, true
	}
	return "", false
}

// ExpireFunc is called, outside any lock, when a session went idle.
type ExpireFunc func(sessionID string)

type watch struct {
	timer Timer
	gen   uint64
}

// Monitor runs one inactivity timer per live session. Any activity re-arms
// the timer; when it fires the session is expired through onExpire.
type Monitor struct {
	clock    Clock
	idle     time.Duration
	onExpire ExpireFunc

	mu      sync.Mutex
	watches map[string]*watch
	gen     uint64
	closed  bool
}

func NewMonitor(clock Clock, idle time.Duration, onExpire ExpireFunc) *Monitor {
	return &Monitor{
		clock:    clock,
		idle:     idle,
		onExpire: onExpire,
		watches:  make(map[string]*watch),
	}
}

// Idle is the inactivity threshold.
func (m *Monitor) Idle() time.Duration { return m.idle }

// Start arms (or re-arms) the timer of sessionID.
func (m *Monitor) Start(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	m.arm(sessionID)
}

// Touch records activity. It reports false when the session is not watched,
// e.g. because it already expired.
func (m *Monitor) Touch(sessionID string, _ ActivityKind) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return false
	}
	if _, ok := m.watches[sessionID]; !ok {
		return false
	}
	m.arm(sessionID)
	return true
}

// arm must be called with mu held.
func (m *Monitor) arm(sessionID string) {
	if w, ok := m.watches[sessionID]; ok {
		w.timer.Stop()
	}
	m.gen++
	gen := m.gen
	w := &watch{gen: gen}
	w.timer = m.clock.AfterFunc(m.idle, func() { m.fire(sessionID, gen) })
	m.watches[sessionID] = w
}

func (m *Monitor) fire(sessionID string, gen uint64) {
	m.mu.Lock()
	w, ok := m.watches[sessionID]
	if !ok || w.gen != gen || m.closed {
		// Re-armed or stopped after this timer was scheduled.
		m.mu.Unlock()
		return
	}
	delete(m.watches, sessionID)
	m.mu.Unlock()

	if m.onExpire != nil {
		m.onExpire(sessionID)
	}
}

// Stop tears down the timer of sessionID, used on logout.
func (m *Monitor) Stop(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if w, ok := m.watches[sessionID]; ok {
		w.timer.Stop()
		delete(m.watches, sessionID)
	}
}

// Active reports whether sessionID is being watched.
func (m *Monitor) Active(sessionID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.watches[sessionID]
	return ok
}

// Len is the number of watched sessions.
func (m *Monitor) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.watches)
}

// Close stops every timer. The monitor ignores calls afterwards.
func (m *Monitor) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, w := range m.watches {
		w.timer.Stop()
		delete(m.watches, id)
	}
	m.closed = true
}
