// Package testutils provides generators that are deterministic in test mode and
// real in production, so ids, session tokens and timestamps can be asserted on.
package testutils

import (
	"crypto/rand"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

const alphanumeric = "0123456789abcdefghijklmnopqrstuvwxyz"

// BaseTime is the first instant handed out by a deterministic generator.
var BaseTime = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

// Generators bundles the sources of time and randomness used by mrdoc.
type Generators struct {
	// Now returns the current time.
	Now func() time.Time
	// NewID returns a unique opaque identifier.
	NewID func() string
	// Alphanumeric returns n characters from [0-9a-z].
	Alphanumeric func(n int) string
}

// Production returns generators backed by the wall clock and random UUIDs.
func Production() Generators {
	return Generators{
		Now:          time.Now,
		NewID:        func() string { return uuid.New().String() },
		Alphanumeric: randomAlphanumeric,
	}
}

// For returns Deterministic generators in test mode and Production otherwise.
func For(testMode bool) Generators {
	if testMode {
		return NewDeterministic().Generators()
	}
	return Production()
}

// randomAlphanumeric draws from crypto/rand, rejecting bytes at or above the
// largest multiple of 36 so every character is equally likely.
func randomAlphanumeric(n int) string {
	limit := byte(256 / len(alphanumeric) * len(alphanumeric))
	out := make([]byte, 0, n)
	buf := make([]byte, n)
	for len(out) < n {
		_, _ = rand.Read(buf)
		for _, b := range buf {
			if b >= limit {
				continue
			}
			out = append(out, alphanumeric[int(b)%len(alphanumeric)])
			if len(out) == n {
				break
			}
		}
	}
	return string(out)
}

// Deterministic hands out incrementing ids and times.
// Ids look like 00000001-0000-4000-8000-000000000001, times start at BaseTime
// plus one second and advance one second per call.
type Deterministic struct {
	mu      sync.Mutex
	ids     uint64
	ticks   int64
	randoms uint64
}

// NewDeterministic creates a Deterministic generator with zeroed counters.
func NewDeterministic() *Deterministic {
	return &Deterministic{}
}

// Generators exposes the deterministic sources as a Generators value.
func (d *Deterministic) Generators() Generators {
	return Generators{
		Now:          d.Now,
		NewID:        d.NewID,
		Alphanumeric: d.Alphanumeric,
	}
}

// Now returns the next deterministic time.
func (d *Deterministic) Now() time.Time {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.ticks++
	return BaseTime.Add(time.Duration(d.ticks) * time.Second)
}

// NewID returns the next deterministic UUID-shaped id.
func (d *Deterministic) NewID() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.ids++
	return fmt.Sprintf("%08x-0000-4000-8000-%012x", d.ids, d.ids)
}

// Alphanumeric returns the counter zero-padded to n characters.
func (d *Deterministic) Alphanumeric(n int) string {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.randoms++
	s := fmt.Sprintf("%0*d", n, d.randoms)
	if len(s) > n {
		s = s[len(s)-n:]
	}
	return s
}

// Reset zeroes all counters.
func (d *Deterministic) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.ids = 0
	d.ticks = 0
	d.randoms = 0
}
