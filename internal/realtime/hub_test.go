package realtime

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recv(t *testing.T, c *Client) map[string]any {
	t.Helper()
	select {
	case b := <-c.Send:
		var m map[string]any
		require.NoError(t, json.Unmarshal(b, &m))
		return m
	default:
		t.Fatal("expected a queued frame")
		return nil
	}
}

func assertEmpty(t *testing.T, c *Client) {
	t.Helper()
	select {
	case b := <-c.Send:
		t.Fatalf("unexpected frame %s", b)
	default:
	}
}

func TestNotifyAnnouncedUser(t *testing.T) {
	hub := NewHub()
	c := NewClient(nil)
	hub.RegisterClient(c)
	uid := uuid.New()
	hub.Announce(uid, c)

	require.NoError(t, hub.Notify(context.Background(), uid, map[string]string{"type": "hired", "gigId": "g1"}))

	m := recv(t, c)
	assert.Equal(t, "hired", m["type"])
	assert.Equal(t, "g1", m["gigId"])
}

func TestNotifyOfflineIsNoop(t *testing.T) {
	hub := NewHub()
	c := NewClient(nil)
	hub.RegisterClient(c)

	assert.NoError(t, hub.Notify(context.Background(), uuid.New(), map[string]string{"type": "hired"}))
	assertEmpty(t, c)
}

func TestAnnounceOverwrites(t *testing.T) {
	hub := NewHub()
	uid := uuid.New()
	oldConn, newConn := NewClient(nil), NewClient(nil)
	hub.RegisterClient(oldConn)
	hub.RegisterClient(newConn)

	hub.Announce(uid, oldConn)
	hub.Announce(uid, newConn)
	require.NoError(t, hub.Notify(context.Background(), uid, map[string]string{"type": "x"}))

	assertEmpty(t, oldConn)
	recv(t, newConn)
}

func TestCloseRemovesOnlyOwnMapping(t *testing.T) {
	hub := NewHub()
	uid := uuid.New()
	oldConn, newConn := NewClient(nil), NewClient(nil)
	hub.Announce(uid, oldConn)
	hub.Announce(uid, newConn)

	// the stale connection closing must not take the user offline
	hub.UnregisterClient(oldConn)
	assert.True(t, hub.Online(uid))

	hub.UnregisterClient(newConn)
	assert.False(t, hub.Online(uid))

	_, open := <-newConn.Send
	assert.False(t, open, "send channel closed on unregister")

	// second unregister is harmless
	hub.UnregisterClient(newConn)
}

func TestReannounceAsOtherUserDropsOldEntry(t *testing.T) {
	hub := NewHub()
	c := NewClient(nil)
	a, b := uuid.New(), uuid.New()

	hub.Announce(a, c)
	hub.Announce(b, c)

	assert.False(t, hub.Online(a))
	assert.True(t, hub.Online(b))
}

func TestFullQueueDropsFrame(t *testing.T) {
	hub := NewHub()
	c := NewClient(nil)
	uid := uuid.New()
	hub.Announce(uid, c)

	for i := 0; i < sendBuffer; i++ {
		require.True(t, hub.Deliver(uid, []byte(`{}`)))
	}
	assert.False(t, hub.Deliver(uid, []byte(`{}`)))
}

func TestConcurrentAnnounceAndClose(t *testing.T) {
	hub := NewHub()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c := NewClient(nil)
			uid := uuid.New()
			hub.RegisterClient(c)
			hub.Announce(uid, c)
			hub.Deliver(uid, []byte(`{}`))
			hub.UnregisterClient(c)
		}()
	}
	wg.Wait()

	hub.mu.RLock()
	defer hub.mu.RUnlock()
	assert.Empty(t, hub.clients)
	assert.Empty(t, hub.presence)
}
