package services

import (
	"sync"

	"kitchen_control/internal/apperr"
)

// Actions guarded against duplicate submission.
const (
	ActionCheckout       = "checkout"
	ActionDispatch       = "dispatch"
	ActionCreateDelivery = "create_delivery"
	ActionProcure        = "procure"
	ActionDispose        = "dispose"
	ActionStartTrip      = "start_trip"
	ActionCompleteOrder  = "complete_order"
)

// ErrInFlight is returned to a second submission of an action still running
// for the same session.
var ErrInFlight = apperr.New(apperr.KindConflict, apperr.MsgInFlight)

// InFlight is a per-session, per-action try-lock. It never blocks: a
// concurrent attempt fails immediately.
type InFlight struct {
	mu   sync.Mutex
	held map[string]struct{}
}

func NewInFlight() *InFlight {
	return &InFlight{held: make(map[string]struct{})}
}

// Acquire takes the lock for (sessionID, action). The returned release must
// be called once the action finished.
func (f *InFlight) Acquire(sessionID, action string) (func(), error) {
	key := sessionID + "|" + action
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, busy := f.held[key]; busy {
		return nil, ErrInFlight
	}
	f.held[key] = struct{}{}
	return func() {
		f.mu.Lock()
		delete(f.held, key)
		f.mu.Unlock()
	}, nil
}

// Busy reports whether the action is currently running for the session.
func (f *InFlight) Busy(sessionID, action string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, busy := f.held[sessionID+"|"+action]
	return busy
}
