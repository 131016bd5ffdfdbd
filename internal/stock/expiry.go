package stock

import (
	"time"

	"kitchen_control/internal/models"
)

// ExpiryState classifies a batch by its expiry date.
type ExpiryState string

const (
	ExpiryOK       ExpiryState = "ok"
	ExpiryExpiring ExpiryState = "expiring"
	ExpiryExpired  ExpiryState = "expired"
)

const day = 24 * time.Hour

// DaysUntil is the number of calendar days from now to expiry, negative once
// the date has passed. Both dates are compared in now's location.
func DaysUntil(expiry, now time.Time) int {
	e := dateOf(expiry.In(now.Location()))
	n := dateOf(now)
	return int(e.Sub(n).Round(day) / day)
}

// ExpiresSooner orders expiry dates for first-expired-first-out. A zero date
// means the batch never expires, so it sorts after every dated one.
func ExpiresSooner(a, b time.Time) bool {
	if a.IsZero() != b.IsZero() {
		return b.IsZero()
	}
	return a.Before(b)
}

// Classify reports whether a batch is expired, expires within warnDays, or is fine.
func Classify(expiry, now time.Time, warnDays int) ExpiryState {
	if expiry.IsZero() {
		return ExpiryOK
	}
	switch d := DaysUntil(expiry, now); {
	case d < 0:
		return ExpiryExpired
	case d <= warnDays:
		return ExpiryExpiring
	}
	return ExpiryOK
}

// Expired returns the batches past their expiry date that still hold stock.
func Expired(records []models.InventoryRecord, now time.Time) []models.InventoryRecord {
	out := make([]models.InventoryRecord, 0)
	for _, r := range records {
		if r.Quantity > 0 && Classify(r.ExpiryDate, now, 0) == ExpiryExpired {
			out = append(out, r)
		}
	}
	return out
}

// Expiring returns the batches with stock that expire within warnDays.
func Expiring(records []models.InventoryRecord, now time.Time, warnDays int) []models.InventoryRecord {
	out := make([]models.InventoryRecord, 0)
	for _, r := range records {
		if r.Quantity > 0 && Classify(r.ExpiryDate, now, warnDays) == ExpiryExpiring {
			out = append(out, r)
		}
	}
	return out
}

func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
