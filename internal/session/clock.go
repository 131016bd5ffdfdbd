package session

import "time"

// Timer is the part of *time.Timer the monitor needs.
type Timer interface {
	Stop() bool
}

// Clock abstracts time so the inactivity monitor can be driven by tests.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

// SystemClock is the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

func (SystemClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}
