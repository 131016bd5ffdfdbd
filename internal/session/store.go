package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"kitchen_control/internal/cart"
	"kitchen_control/internal/models"
)

var (
	// ErrSessionNotFound is returned when no record exists for an id.
	ErrSessionNotFound = errors.New("session not found")

	// ErrSessionCorrupt is returned when a stored record cannot be decoded.
	// Callers discard such records.
	ErrSessionCorrupt = errors.New("session data is corrupt")
)

// Record is the server-side state of one browser session.
type Record struct {
	ID        string           `json:"id"`
	Principal models.Principal `json:"principal"`
	// Cart is only present for store staff.
	Cart      *cart.Cart `json:"cart,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	LastSeen  time.Time  `json:"last_seen"`
}

// Store persists session records. Save never moves last-seen backwards, and
// TouchLastSeen changes nothing but last-seen, so an activity ping cannot
// overwrite a cart written by a concurrent request.
type Store interface {
	Save(ctx context.Context, rec *Record) error
	Load(ctx context.Context, id string) (*Record, error)
	Delete(ctx context.Context, id string) error
	TouchLastSeen(ctx context.Context, id string, at time.Time) error
}

// storedRecord is the persisted form. The remote API token lives here and
// not on Principal, which is rendered to the browser.
type storedRecord struct {
	Record
	RemoteToken string `json:"remote_token,omitempty"`
}

func encodeRecord(rec *Record) ([]byte, error) {
	data, err := json.Marshal(storedRecord{Record: *rec, RemoteToken: rec.Principal.SessionToken})
	if err != nil {
		return nil, fmt.Errorf("encoding session %s: %w", rec.ID, err)
	}
	return data, nil
}

// decodeRecord rejects data that does not describe a usable principal.
func decodeRecord(id string, data []byte) (*Record, error) {
	var stored storedRecord
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSessionCorrupt, err)
	}
	rec := stored.Record
	rec.Principal.SessionToken = stored.RemoteToken
	if rec.ID != id || rec.Principal.ID == 0 || !rec.Principal.Role.Valid() {
		return nil, ErrSessionCorrupt
	}
	if rec.Principal.Role == models.RoleStoreStaff && rec.Cart == nil {
		rec.Cart = cart.New()
	}
	if rec.Principal.Role != models.RoleStoreStaff {
		rec.Cart = nil
	}
	return &rec, nil
}
