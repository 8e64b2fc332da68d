// Package clock provides an injectable time source
package clock

import "time"

// Clock is the interface that wraps the Now method.
type Clock interface {
	Now() time.Time
}

// Real returns the system time in UTC
type Real struct{}

// Now returns the current UTC time
func (Real) Now() time.Time {
	return time.Now().UTC()
}

// Fixed always returns the same instant. Used in tests.
type Fixed struct {
	At time.Time
}

// Now returns the fixed instant
func (f Fixed) Now() time.Time {
	return f.At
}
