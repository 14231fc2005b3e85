package database

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrUnknownDatabase is returned when a database id has no registered driver.
var ErrUnknownDatabase = errors.New("unknown database")

type entry struct {
	target Target
	driver Driver
}

// Registry maps database ids to connected drivers.
type Registry struct {
	mu      sync.RWMutex
	entries map[int64]entry
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[int64]entry)}
}

// Register adds a connected driver under the target's id.
func (r *Registry) Register(target Target, driver Driver) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[target.ID]; ok {
		return fmt.Errorf("database %d already registered", target.ID)
	}
	r.entries[target.ID] = entry{target: target, driver: driver}
	return nil
}

// Driver returns the driver registered for id.
func (r *Registry) Driver(id int64) (Driver, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownDatabase, id)
	}
	return e.driver, nil
}

// RunQuery executes query on the database registered under id.
func (r *Registry) RunQuery(ctx context.Context, id int64, query string, limit int) (*RawResult, error) {
	d, err := r.Driver(id)
	if err != nil {
		return nil, err
	}
	return d.RunQuery(ctx, query, limit)
}

// Targets lists registered databases ordered by id.
func (r *Registry) Targets() []Target {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Target, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e.target)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// PingAll pings every registered database and returns the first failure.
func (r *Registry) PingAll(ctx context.Context) error {
	for _, t := range r.Targets() {
		d, err := r.Driver(t.ID)
		if err != nil {
			return err
		}
		if err := d.Ping(ctx); err != nil {
			return fmt.Errorf("database %d (%s): %w", t.ID, t.Name, err)
		}
	}
	return nil
}

// Close closes all drivers.
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	var errs []error
	for id, e := range r.entries {
		if err := e.driver.Close(); err != nil {
			errs = append(errs, err)
		}
		delete(r.entries, id)
	}
	return errors.Join(errs...)
}
