package session

import (
	"context"
	"errors"
	"time"

	"kitchen_control/internal/apperr"
	"kitchen_control/internal/cart"
	"kitchen_control/internal/models"
	"kitchen_control/pkg/utils"

	"github.com/google/uuid"
)

var (
	// ErrSessionExpired is returned for a session idle past the threshold.
	ErrSessionExpired = apperr.New(apperr.KindAuthentication, apperr.MsgSessionExpired)

	// ErrNoSession is returned for a missing, forged or malformed cookie.
	ErrNoSession = apperr.New(apperr.KindAuthentication, "Please sign in to continue.")
)

// ManagerConfig configures a Manager.
type ManagerConfig struct {
	Secret      []byte
	IdleTimeout time.Duration
}

// Manager owns session lifecycle: creation on login, resolution per request,
// activity tracking and teardown. It replaces any process-wide "current
// user": every request resolves its own record from the cookie.
type Manager struct {
	store   Store
	clock   Clock
	secret  []byte
	idle    time.Duration
	monitor *Monitor
	locks   *recordLocks
}

func NewManager(store Store, clock Clock, cfg ManagerConfig) *Manager {
	m := &Manager{
		store:  store,
		clock:  clock,
		secret: cfg.Secret,
		idle:   cfg.IdleTimeout,
		locks:  newRecordLocks(),
	}
	m.monitor = NewMonitor(clock, cfg.IdleTimeout, m.expire)
	return m
}

// Monitor exposes the inactivity monitor.
func (m *Manager) Monitor() *Monitor { return m.monitor }

// IdleTimeout is the inactivity threshold.
func (m *Manager) IdleTimeout() time.Duration { return m.idle }

// Create persists a new session for p and returns it with its cookie value.
func (m *Manager) Create(ctx context.Context, p models.Principal) (*Record, string, error) {
	now := m.clock.Now()
	rec := &Record{
		ID:        uuid.NewString(),
		Principal: p,
		CreatedAt: now,
		LastSeen:  now,
	}
	if p.Role == models.RoleStoreStaff {
		rec.Cart = cart.New()
	}

	token, err := utils.SignSessionToken(m.secret, rec.ID, p.ID, int(p.Role), now)
	if err != nil {
		return nil, "", apperr.Wrap(apperr.KindInternal, "Could not start a session.", err)
	}
	if err := m.store.Save(ctx, rec); err != nil {
		return nil, "", apperr.Wrap(apperr.KindInternal, "Could not start a session.", err)
	}
	m.monitor.Start(rec.ID)
	return rec, token, nil
}

// Resolve returns the live session behind a cookie value. Malformed cookies
// and corrupt records count as no session; corrupt records are discarded.
func (m *Manager) Resolve(ctx context.Context, token string) (*Record, error) {
	if token == "" {
		return nil, ErrNoSession
	}
	claims, err := utils.ParseSessionToken(m.secret, token)
	if err != nil {
		return nil, ErrNoSession
	}

	rec, err := m.store.Load(ctx, claims.SessionID)
	switch {
	case errors.Is(err, ErrSessionNotFound):
		return nil, ErrNoSession
	case errors.Is(err, ErrSessionCorrupt):
		utils.LogWarn(err, "Discarding corrupt session", map[string]interface{}{"session_id": claims.SessionID})
		_ = m.store.Delete(ctx, claims.SessionID)
		return nil, ErrNoSession
	case err != nil:
		return nil, apperr.Wrap(apperr.KindInternal, "Could not read the session.", err)
	}

	if rec.Principal.ID != claims.UserID || int(rec.Principal.Role) != claims.RoleID {
		_ = m.Destroy(ctx, rec.ID)
		return nil, ErrNoSession
	}
	if m.idle > 0 && m.clock.Now().Sub(rec.LastSeen) > m.idle {
		_ = m.Destroy(ctx, rec.ID)
		return nil, ErrSessionExpired
	}
	if !m.monitor.Active(rec.ID) {
		// Loaded from a shared store after a restart or on another instance.
		m.monitor.Start(rec.ID)
	}
	return rec, nil
}

// Touch records qualifying activity on rec. Only last-seen is written, so a
// touch racing a cart change cannot bring back a stale cart.
func (m *Manager) Touch(ctx context.Context, rec *Record, kind ActivityKind) error {
	now := m.clock.Now()
	rec.LastSeen = now
	if !m.monitor.Touch(rec.ID, kind) {
		m.monitor.Start(rec.ID)
	}
	if err := m.store.TouchLastSeen(ctx, rec.ID, now); err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			m.monitor.Stop(rec.ID)
			return ErrNoSession
		}
		return apperr.Wrap(apperr.KindInternal, "Could not save the session.", err)
	}
	return nil
}

// Update applies fn to the stored copy of rec's session under a per-session
// lock and persists the result. Concurrent updates of one session therefore
// see each other's writes. On success rec is refreshed from the saved copy;
// when fn or the save fails, neither the store nor rec changes.
func (m *Manager) Update(ctx context.Context, rec *Record, fn func(fresh *Record) error) error {
	unlock := m.locks.lock(rec.ID)
	defer unlock()

	fresh, err := m.store.Load(ctx, rec.ID)
	switch {
	case errors.Is(err, ErrSessionNotFound), errors.Is(err, ErrSessionCorrupt):
		return ErrNoSession
	case err != nil:
		return apperr.Wrap(apperr.KindInternal, "Could not read the session.", err)
	}
	if err := fn(fresh); err != nil {
		return err
	}
	if err := m.store.Save(ctx, fresh); err != nil {
		return apperr.Wrap(apperr.KindInternal, "Could not save the session.", err)
	}
	*rec = *fresh
	return nil
}

// Destroy ends the session: timer, record and cart.
func (m *Manager) Destroy(ctx context.Context, id string) error {
	m.monitor.Stop(id)
	return m.store.Delete(ctx, id)
}

// expire is the monitor callback for an idle session.
func (m *Manager) expire(id string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := m.store.Delete(ctx, id); err != nil {
		utils.LogError(err, "Failed to delete expired session")
		return
	}
	utils.LogInfo("Session expired after inactivity", map[string]interface{}{"session_id": id})
}

// Close stops all timers.
func (m *Manager) Close() {
	m.monitor.Close()
}
