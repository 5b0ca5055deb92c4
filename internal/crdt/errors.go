package crdt

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrClockDrift matches every *ClockDriftError.
	ErrClockDrift = errors.New("clock drift exceeded")

	// ErrCounterOverflow matches every *OverflowError.
	ErrCounterOverflow = errors.New("timestamp counter overflow")
)

// ClockDriftError is returned when the logical time of a generated or
// received timestamp is ahead of the local wall clock by more than the
// allowed drift. The clock is left untouched.
type ClockDriftError struct {
	Logical  int64         // logical millis that was rejected
	Physical int64         // wall-clock millis at the time of the call
	MaxDrift time.Duration // configured bound
}

func (e *ClockDriftError) Error() string {
	return fmt.Sprintf("maximum clock drift exceeded: logical %d ms is %d ms ahead of wall clock %d ms (max %s)",
		e.Logical, e.Logical-e.Physical, e.Physical, e.MaxDrift)
}

// Is lets errors.Is(err, ErrClockDrift) match.
func (e *ClockDriftError) Is(target error) bool {
	return target == ErrClockDrift
}

// OverflowError is returned when more than MaxCounter+1 timestamps would be
// produced within the same logical millisecond. Retrying once the wall clock
// moves on is safe.
type OverflowError struct {
	Millis int64
}

func (e *OverflowError) Error() string {
	return fmt.Sprintf("timestamp counter overflow at %d ms", e.Millis)
}

// Is lets errors.Is(err, ErrCounterOverflow) match.
func (e *OverflowError) Is(target error) bool {
	return target == ErrCounterOverflow
}
