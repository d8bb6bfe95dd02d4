package ocd

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func newRegistryClient(t *testing.T) *Client {
	t.Helper()

	cfg, err := NewConnectionConfig(DefaultHost, DefaultPort)
	require.NoError(t, err)
	c, err := NewClient(cfg)
	require.NoError(t, err)

	return c
}

func TestRegistry_RegisterGetRemove(t *testing.T) {
	require := require.New(t)

	r := NewRegistry()
	c1 := newRegistryClient(t)
	c2 := newRegistryClient(t)

	require.NoError(r.Register("board-a", c1))
	require.NoError(r.Register("board-b", c2))
	require.Equal(2, r.Len())

	got, ok := r.Get("board-a")
	require.True(ok)
	require.Same(c1, got)

	_, ok = r.Get("board-c")
	require.False(ok)

	removed, ok := r.Remove("board-a")
	require.True(ok)
	require.Same(c1, removed)
	require.Equal(1, r.Len())

	_, ok = r.Remove("board-a")
	require.False(ok)
}

func TestRegistry_DuplicateName(t *testing.T) {
	require := require.New(t)

	r := NewRegistry()
	require.NoError(r.Register("board", newRegistryClient(t)))

	err := r.Register("board", newRegistryClient(t))
	require.Error(err)
	require.Contains(err.Error(), "already registered")
}

func TestRegistry_NilClient(t *testing.T) {
	require := require.New(t)

	r := NewRegistry()
	require.ErrorIs(r.Register("board", nil), ErrClientNil)
}

func TestRegistry_Names(t *testing.T) {
	require := require.New(t)

	r := NewRegistry()
	require.Empty(r.Names())

	require.NoError(r.Register("a", newRegistryClient(t)))
	require.NoError(r.Register("b", newRegistryClient(t)))
	require.ElementsMatch([]string{"a", "b"}, r.Names())
}

func TestRegistry_DisconnectAll(t *testing.T) {
	require := require.New(t)

	s := newStubServer(t, echoHandler)

	r := NewRegistry()
	c1 := newTestClient(t, s)
	c2 := newTestClient(t, s)
	require.NoError(r.Register("a", c1))
	require.NoError(r.Register("b", c2))

	r.DisconnectAll()
	require.Zero(r.Len())
	require.False(c1.IsConnected())
	require.False(c2.IsConnected())
}

func TestRegistry_ConcurrentAccess(t *testing.T) {
	require := require.New(t)

	r := NewRegistry()

	clients := make([]*Client, 8)
	for i := range clients {
		clients[i] = newRegistryClient(t)
	}

	var wg sync.WaitGroup
	for i, c := range clients {
		wg.Add(1)
		go func(n int, c *Client) {
			defer wg.Done()
			name := string(rune('a' + n))
			_ = r.Register(name, c)
			_, _ = r.Get(name)
			_ = r.Names()
		}(i, c)
	}
	wg.Wait()

	require.Equal(8, r.Len())
}
