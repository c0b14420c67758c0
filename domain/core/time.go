package core

import (
	"time"
)

// Timestamp represents a point in time with timezone awareness
type Timestamp time.Time

// Now returns the current timestamp
func Now() Timestamp {
	return Timestamp(time.Now())
}

// String formats the timestamp as RFC3339 in UTC
func (t Timestamp) String() string {
	return time.Time(t).UTC().Format(time.RFC3339)
}
