// Package user keeps the in-memory directory of mock badge holders.
package user

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
)

// Profile is a badge holder.
type Profile struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	BadgeID   string `json:"badgeID"`
}

// CreateRequest describes a new badge holder.
type CreateRequest struct {
	FirstName string
	LastName  string
	BadgeID   string
}

// SeedProfiles returns the users present at startup, one per known badge.
func SeedProfiles() []Profile {
	return []Profile{
		{ID: "user-001", FirstName: "Ava", LastName: "Turner", BadgeID: "BADGE-001"},
		{ID: "user-002", FirstName: "Noah", LastName: "Reed", BadgeID: "BADGE-002"},
		{ID: "user-003", FirstName: "Mila", LastName: "Scott", BadgeID: "BADGE-003"},
		{ID: "user-004", FirstName: "Ethan", LastName: "Cole", BadgeID: "BADGE-004"},
	}
}

// Directory is the in-memory user store. Id and badge lookups ignore case.
// All methods are safe for concurrent use.
type Directory struct {
	mu    sync.RWMutex
	users []Profile
	seq   int
	rng   *rand.Rand
}

// NewDirectory creates a directory holding the given profiles.
func NewDirectory(seed []Profile) *Directory {
	users := make([]Profile, len(seed))
	copy(users, seed)
	return &Directory{
		users: users,
		seq:   len(users) + 1,
		rng:   rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
}

// SetRand replaces the PRNG used by Sample.
func (d *Directory) SetRand(r *rand.Rand) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if r != nil {
		d.rng = r
	}
}

// List returns all users in creation order.
func (d *Directory) List() []Profile {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make([]Profile, len(d.users))
	copy(out, d.users)
	return out
}

// Get returns the user with the given id.
func (d *Directory) Get(id string) (Profile, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if i := d.indexByID(id); i >= 0 {
		return d.users[i], nil
	}
	return Profile{}, fmt.Errorf("%w: %s", ErrUserNotFound, id)
}

// FindByBadge returns the holder of badgeID.
func (d *Directory) FindByBadge(badgeID string) (Profile, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	for _, u := range d.users {
		if strings.EqualFold(u.BadgeID, strings.TrimSpace(badgeID)) {
			return u, true
		}
	}
	return Profile{}, false
}

// Create adds a user after trimming every field.
func (d *Directory) Create(req CreateRequest) (Profile, error) {
	p := Profile{
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		BadgeID:   strings.TrimSpace(req.BadgeID),
	}
	if p.FirstName == "" || p.LastName == "" || p.BadgeID == "" {
		return Profile{}, ErrInvalidUser
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	for _, u := range d.users {
		if strings.EqualFold(u.BadgeID, p.BadgeID) {
			return Profile{}, fmt.Errorf("%w: %s", ErrBadgeRegistered, p.BadgeID)
		}
	}

	p.ID = d.nextID()
	d.users = append(d.users, p)
	return p, nil
}

// Delete removes the user with the given id.
func (d *Directory) Delete(id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	i := d.indexByID(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrUserNotFound, id)
	}
	d.users = append(d.users[:i], d.users[i+1:]...)
	return nil
}

// Sample returns up to n distinct users in random order.
func (d *Directory) Sample(n int) []Profile {
	d.mu.Lock()
	defer d.mu.Unlock()

	if n <= 0 || len(d.users) == 0 {
		return []Profile{}
	}

	shuffled := make([]Profile, len(d.users))
	copy(shuffled, d.users)
	d.rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	if n > len(shuffled) {
		n = len(shuffled)
	}
	return shuffled[:n]
}

func (d *Directory) indexByID(id string) int {
	id = strings.TrimSpace(id)
	for i, u := range d.users {
		if strings.EqualFold(u.ID, id) {
			return i
		}
	}
	return -1
}

// nextID returns the next unused user-NNN id. Callers hold the write lock.
func (d *Directory) nextID() string {
	for {
		id := fmt.Sprintf("user-%03d", d.seq)
		d.seq++
		if d.indexByID(id) < 0 {
			return id
		}
	}
}
