package clock

import "time"

// Clock supplies the current instant. Production code uses Real; tests use
// Fake so timestamps are deterministic.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

// Real returns a Clock backed by time.Now, in UTC.
func Real() Clock {
	return realClock{}
}

func (realClock) Now() time.Time {
	return time.Now().UTC()
}
