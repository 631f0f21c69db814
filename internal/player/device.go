package player

import (
	"context"
	"errors"
	"sync"
)

// Device is the one-shot readiness result for a browser playback SDK
// connection attempt. The SDK reports ready or error events; each attempt
// resolves exactly once, and the core only blocks on it at the point playback
// is first requested.
type Device struct {
	once sync.Once
	done chan struct{}
	id   string
	err  error
}

func NewDevice() *Device {
	return &Device{done: make(chan struct{})}
}

// Ready resolves the attempt with a device id. Later calls are ignored.
func (d *Device) Ready(id string) {
	d.once.Do(func() {
		d.id = id
		close(d.done)
	})
}

// Fail rejects the attempt. Later calls are ignored.
func (d *Device) Fail(reason string) {
	d.once.Do(func() {
		d.err = errors.New(reason)
		close(d.done)
	})
}

// Await blocks until the attempt resolves or the context ends.
func (d *Device) Await(ctx context.Context) (string, error) {
	select {
	case <-d.done:
		return d.id, d.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Registry tracks one connection attempt per browser session.
type Registry struct {
	mu      sync.Mutex
	devices map[string]*Device
}

func NewRegistry() *Registry {
	return &Registry{devices: make(map[string]*Device)}
}

// For returns the session's device, creating a pending one on first use.
func (r *Registry) For(sessionID string) *Device {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.devices[sessionID]
	if !ok {
		d = NewDevice()
		r.devices[sessionID] = d
	}
	return d
}

// Reset drops the session's attempt so the SDK can reconnect with a fresh id.
func (r *Registry) Reset(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.devices, sessionID)
}
