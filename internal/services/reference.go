package services

import (
	"fmt"
	"math/rand"
	"sync/atomic"
	"time"
)

const (
	referencePrefix     = "IC"
	referenceTimeLayout = "060102150405"

	// referenceMaxRetries bounds the regenerate-and-retry loop on a
	// reference unique-key collision.
	referenceMaxRetries = 3
)

var referenceSeq uint32

// NewBookingReference builds the human-facing booking code: "IC" + UTC
// timestamp + zero-padded suffix. The suffix mixes an in-process sequence
// with a random component so codes minted in the same second stay distinct;
// the unique key on bookings.reference plus the caller's retry loop covers
// collisions across processes.
func NewBookingReference() string {
	seq := atomic.AddUint32(&referenceSeq, 1) % 100000
	return fmt.Sprintf("%s%s%05d%03d",
		referencePrefix,
		time.Now().UTC().Format(referenceTimeLayout),
		seq,
		rand.Intn(1000),
	)
}
