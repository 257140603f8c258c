package presence

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDirectoryRegisterLookupUnregister(t *testing.T) {
	dir := NewDirectory()

	_, ok := dir.Lookup("user-1")
	require.False(t, ok)

	dir.Register("user-1", "endpoint-a")
	endpoint, ok := dir.Lookup("user-1")
	require.True(t, ok)
	require.Equal(t, "endpoint-a", endpoint)

	dir.Unregister("endpoint-a")
	_, ok = dir.Lookup("user-1")
	require.False(t, ok)
	require.Zero(t, dir.Size())
}

func TestDirectoryLastRegistrationWins(t *testing.T) {
	dir := NewDirectory()

	dir.Register("user-1", "endpoint-a")
	dir.Register("user-1", "endpoint-b")

	endpoint, ok := dir.Lookup("user-1")
	require.True(t, ok)
	require.Equal(t, "endpoint-b", endpoint)
	require.Equal(t, 1, dir.Size())

	// A stale disconnect for the displaced endpoint must not evict the newer
	// registration.
	dir.Unregister("endpoint-a")
	endpoint, ok = dir.Lookup("user-1")
	require.True(t, ok)
	require.Equal(t, "endpoint-b", endpoint)
}

func TestDirectoryUnknownEndpointUnregisterIsNoop(t *testing.T) {
	dir := NewDirectory()
	dir.Register("user-1", "endpoint-a")

	dir.Unregister("endpoint-unknown")

	endpoint, ok := dir.Lookup("user-1")
	require.True(t, ok)
	require.Equal(t, "endpoint-a", endpoint)
}

func TestDirectoryConcurrentAccess(t *testing.T) {
	dir := NewDirectory()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			user := fmt.Sprintf("user-%d", i%10)
			endpoint := fmt.Sprintf("endpoint-%d", i)
			dir.Register(user, endpoint)
			dir.Lookup(user)
			dir.Unregister(endpoint)
		}(i)
	}
	wg.Wait()

	// Every registration was eventually unregistered or displaced; the maps
	// must stay consistent with each other.
	require.LessOrEqual(t, dir.Size(), 10)
}
