package presence

import "sync"

// Directory maps a logical user identity to at most one currently connected
// transport endpoint. State lives only in memory and is rebuilt as users
// reconnect after a restart. The zero value is not usable; construct with
// NewDirectory and inject it from the composition root so tests can use a
// fresh instance per case.
type Directory struct {
	mu        sync.RWMutex
	users     map[string]string // userID -> endpointID
	endpoints map[string]string // endpointID -> userID
}

// NewDirectory constructs an empty presence directory.
func NewDirectory() *Directory {
	return &Directory{
		users:     make(map[string]string),
		endpoints: make(map[string]string),
	}
}

// Register records or overwrites the live endpoint for a user. Last
// registration wins: a user reconnecting from a new endpoint displaces the
// old one, so there is never multi-device fan-out.
func (d *Directory) Register(userID, endpointID string) {
	if userID == "" || endpointID == "" {
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if previous, ok := d.users[userID]; ok {
		delete(d.endpoints, previous)
	}
	// An endpoint re-registering under a new user releases its old binding.
	if previousUser, ok := d.endpoints[endpointID]; ok {
		delete(d.users, previousUser)
	}

	d.users[userID] = endpointID
	d.endpoints[endpointID] = userID
}

// Lookup returns the live endpoint for a user. Unknown users yield ok=false,
// never an error.
func (d *Directory) Lookup(userID string) (string, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	endpointID, ok := d.users[userID]
	return endpointID, ok
}

// Unregister removes whatever user entry currently maps to the endpoint.
// Unknown endpoints are a no-op.
func (d *Directory) Unregister(endpointID string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	userID, ok := d.endpoints[endpointID]
	if !ok {
		return
	}

	delete(d.endpoints, endpointID)
	// Only drop the forward entry if it still points at this endpoint; a
	// newer registration for the same user must survive a stale disconnect.
	if current, ok := d.users[userID]; ok && current == endpointID {
		delete(d.users, userID)
	}
}

// Size returns the number of users with a live endpoint.
func (d *Directory) Size() int {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return len(d.users)
}
