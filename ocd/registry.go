package ocd

import (
	"errors"
	"fmt"

	"github.com/puzpuzpuz/xsync/v3"
)

// ErrClientNil indicates that a nil client was passed to a Registry.
var ErrClientNil = errors.New("ocd: client is nil")

// Registry is a concurrency-safe collection of named clients. It is meant
// for tooling that drives several OpenOCD daemons, e.g. a board farm with
// one daemon per probe.
//
// The registry only guards its own bookkeeping; each registered Client
// still executes commands strictly one at a time and must not be shared
// across goroutines without external locking.
type Registry struct {
	clients *xsync.MapOf[string, *Client]
}

// NewRegistry creates an empty client registry.
func NewRegistry() *Registry {
	return &Registry{clients: xsync.NewMapOf[string, *Client]()}
}

// Register adds a client under the given name. It fails if the name is
// already taken.
func (r *Registry) Register(name string, client *Client) error {
	if client == nil {
		return ErrClientNil
	}

	if _, loaded := r.clients.LoadOrStore(name, client); loaded {
		return fmt.Errorf("ocd: client %q is already registered", name)
	}

	return nil
}

// Get returns the client registered under the given name.
func (r *Registry) Get(name string) (*Client, bool) {
	return r.clients.Load(name)
}

// Remove removes the client registered under the given name without
// disconnecting it. It returns the removed client, if any.
func (r *Registry) Remove(name string) (*Client, bool) {
	return r.clients.LoadAndDelete(name)
}

// Names returns the names of all registered clients.
func (r *Registry) Names() []string {
	names := make([]string, 0, r.clients.Size())
	r.clients.Range(func(name string, _ *Client) bool {
		names = append(names, name)
		return true
	})

	return names
}

// Len returns the number of registered clients.
func (r *Registry) Len() int {
	return r.clients.Size()
}

// DisconnectAll disconnects every registered client and empties the
// registry.
func (r *Registry) DisconnectAll() {
	r.clients.Range(func(name string, client *Client) bool {
		client.Disconnect()
		r.clients.Delete(name)

		return true
	})
}
