// Package directory holds the fixed tables of mock doors, badges and
// badge readers, and draws uniform random picks from them.
package directory

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"sync"
)

// Unknown badge ids are UNKNOWN-<N> with N in [unknownMin, unknownMax].
const (
	unknownPrefix = "UNKNOWN-"
	unknownMin    = 1000
	unknownMax    = 9999
)

var (
	doorIDs   = []string{"door-001", "door-002", "door-003"}
	badgeIDs  = []string{"BADGE-001", "BADGE-002", "BADGE-003", "BADGE-004"}
	readerIDs = []string{"badge-reader-01", "badge-reader-02"}
)

// Directory serves the mock tables. The zero value is not usable; call New.
type Directory struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// Option configures a Directory.
type Option func(*Directory)

// WithRand injects the PRNG, typically a seeded one in tests.
func WithRand(r *rand.Rand) Option {
	return func(d *Directory) {
		if r != nil {
			d.rng = r
		}
	}
}

// New creates a Directory backed by a randomly seeded PRNG.
func New(opts ...Option) *Directory {
	d := &Directory{
		rng: rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// DoorIDs returns the known door ids.
func (d *Directory) DoorIDs() []string { return slices.Clone(doorIDs) }

// BadgeIDs returns the known badge ids.
func (d *Directory) BadgeIDs() []string { return slices.Clone(badgeIDs) }

// DeviceIDs returns the badge reader device ids.
func (d *Directory) DeviceIDs() []string { return slices.Clone(readerIDs) }

// IsKnownDoor reports whether id is one of DoorIDs.
func (d *Directory) IsKnownDoor(id string) bool { return slices.Contains(doorIDs, id) }

// IsKnownBadge reports whether id is one of BadgeIDs.
func (d *Directory) IsKnownBadge(id string) bool { return slices.Contains(badgeIDs, id) }

// RandomDoorID returns a uniformly chosen door id.
func (d *Directory) RandomDoorID() string { return d.pick(doorIDs) }

// RandomBadgeID returns a uniformly chosen known badge id.
func (d *Directory) RandomBadgeID() string { return d.pick(badgeIDs) }

// RandomDeviceID returns a uniformly chosen badge reader id.
func (d *Directory) RandomDeviceID() string { return d.pick(readerIDs) }

// RandomUnknownBadgeID returns a fresh UNKNOWN-<N> badge id.
func (d *Directory) RandomUnknownBadgeID() string {
	d.mu.Lock()
	n := unknownMin + d.rng.IntN(unknownMax-unknownMin+1)
	d.mu.Unlock()
	return fmt.Sprintf("%s%d", unknownPrefix, n)
}

func (d *Directory) pick(table []string) string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return table[d.rng.IntN(len(table))]
}
