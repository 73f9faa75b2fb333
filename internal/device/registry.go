package device

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// firstGeneratedSeq is the first sequence number used for generated ids.
const firstGeneratedSeq = 100

// Logger defines the logging interface used by the Registry.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Registry is the in-memory device store.
// Listing order is registration order.
type Registry struct {
	mu      sync.RWMutex
	devices map[string]Record
	order   []string
	seq     int
	now     func() time.Time
	logger  Logger
}

// NewRegistry creates a registry seeded with a builtin door device per id.
func NewRegistry(builtinDoors []string) *Registry {
	r := &Registry{
		devices: make(map[string]Record),
		seq:     firstGeneratedSeq,
		now:     func() time.Time { return time.Now().UTC() },
		logger:  noopLogger{},
	}

	for _, id := range builtinDoors {
		r.insert(Record{
			ID:        id,
			Type:      TypeDoor,
			CreatedAt: r.now(),
			Builtin:   true,
		})
	}
	return r
}

// SetLogger sets the logger for the registry.
func (r *Registry) SetLogger(logger Logger) {
	if logger != nil {
		r.logger = logger
	}
}

// List returns all devices in registration order.
func (r *Registry) List() []Record {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Record, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.devices[id])
	}
	return out
}

// ListByType returns the devices of type t in registration order.
func (r *Registry) ListByType(t string) []Record {
	t = strings.ToLower(strings.TrimSpace(t))

	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []Record
	for _, id := range r.order {
		if d := r.devices[id]; d.Type == t {
			out = append(out, d)
		}
	}
	return out
}

// Get returns the device with the given id.
func (r *Registry) Get(id string) (Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.devices[strings.TrimSpace(id)]
	if !ok {
		return Record{}, fmt.Errorf("%w: %s", ErrDeviceNotFound, id)
	}
	return d, nil
}

// Register adds a device. The type is trimmed and lower-cased; an empty
// ID is generated as "<type>-<NNN>".
func (r *Registry) Register(req RegisterRequest) (Record, error) {
	deviceType := strings.ToLower(strings.TrimSpace(req.Type))
	if deviceType == "" {
		return Record{}, ErrTypeRequired
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	id := strings.TrimSpace(req.ID)
	if id == "" {
		id = r.nextID(deviceType)
	}
	if _, exists := r.devices[id]; exists {
		return Record{}, fmt.Errorf("%w: %s", ErrDeviceExists, id)
	}

	rec := Record{
		ID:        id,
		Type:      deviceType,
		CreatedAt: r.now(),
	}
	r.insert(rec)

	r.logger.Info("device registered", "device_id", id, "type", deviceType)
	return rec, nil
}

// Delete removes a device. Builtin devices may be removed too.
func (r *Registry) Delete(id string) error {
	id = strings.TrimSpace(id)

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.devices[id]; !ok {
		return fmt.Errorf("%w: %s", ErrDeviceNotFound, id)
	}
	delete(r.devices, id)
	for i, v := range r.order {
		if v == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}

	r.logger.Info("device deleted", "device_id", id)
	return nil
}

// insert stores rec. Callers hold the write lock (or own r exclusively).
func (r *Registry) insert(rec Record) {
	if _, exists := r.devices[rec.ID]; !exists {
		r.order = append(r.order, rec.ID)
	}
	r.devices[rec.ID] = rec
}

// nextID returns the next free generated id for deviceType.
func (r *Registry) nextID(deviceType string) string {
	for {
		id := fmt.Sprintf("%s-%03d", deviceType, r.seq)
		r.seq++
		if _, taken := r.devices[id]; !taken {
			return id
		}
	}
}
