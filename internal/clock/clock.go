package clock

import "time"

// Clock is the single source of wall-clock time for the fare engine.
// Injecting it keeps stop-interval closing and live waiting projection
// deterministic under test.
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}
