package adapter

import "time"

// Clock is the time source for event timestamps, payout retries and the
// relay poll loop
//
//go:generate mockgen -source=clock.go -destination=../mocks/clock.go -package=mocks -mock_names=Clock=MockClock
type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
}

type realClock struct{}

// NewClock returns the wall clock, in UTC
func NewClock() Clock {
	return realClock{}
}

func (realClock) Now() time.Time {
	return time.Now().UTC()
}

func (realClock) After(d time.Duration) <-chan time.Time {
	return time.After(d)
}
