package services

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// IDGenerator produces new entity ids. Injected so tests get deterministic ids
// instead of ambient randomness.
type IDGenerator func() string

// Clock produces the current time. Injected for the same reason.
type Clock func() time.Time

func defaultIDGenerator() string {
	return uuid.NewString()
}

func defaultClock() time.Time {
	return time.Now().UTC()
}

// referenceNumber derives the human-facing claim reference from the
// submission instant, e.g. REF-382910.
func referenceNumber(t time.Time) string {
	return fmt.Sprintf("REF-%06d", t.UnixMilli()%1_000_000)
}
