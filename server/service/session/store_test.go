package session

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_CreateAndGet(t *testing.T) {
	store := NewStore(WithMaxDiagnosticTurns(5))

	sess := store.Create()
	require.NotEmpty(t, sess.ID)
	assert.Equal(t, StepVehicleID, sess.CurrentStep)
	assert.Equal(t, 5, sess.MaxDiagnosticTurns)

	got := store.Get(sess.ID)
	require.NotNil(t, got)
	assert.Equal(t, sess.ID, got.ID)

	assert.Nil(t, store.Get("no-such-session"))
	assert.Nil(t, store.Get(""))
}

func TestStore_LazyExpiry(t *testing.T) {
	now := time.Now()
	clock := func() time.Time { return now }
	store := NewStore(WithTTL(time.Hour), WithClock(clock))

	sess := store.Create()

	// just inside the TTL: still alive
	now = now.Add(time.Hour)
	require.NotNil(t, store.Get(sess.ID))

	// updating refreshes the idle window
	fresh := store.Get(sess.ID)
	store.Update(fresh)
	now = now.Add(time.Hour)
	require.NotNil(t, store.Get(sess.ID))

	// past the TTL: evicted on read
	now = now.Add(time.Hour + time.Second)
	assert.Nil(t, store.Get(sess.ID))
	assert.Equal(t, 0, store.Len())
}

func TestStore_CreateEvictsExpired(t *testing.T) {
	now := time.Now()
	store := NewStore(WithTTL(time.Minute), WithClock(func() time.Time { return now }))

	stale := store.Create()
	now = now.Add(2 * time.Minute)

	fresh := store.Create()
	assert.Equal(t, 1, store.Len())
	assert.Nil(t, store.Get(stale.ID))
	assert.NotNil(t, store.Get(fresh.ID))
}

func TestStore_CopyIsolation(t *testing.T) {
	store := NewStore()
	sess := store.Create()
	sess.AppendUserTurn("エンジンから異音がします")
	store.Update(sess)

	// mutating a read copy must not leak into the store
	a := store.Get(sess.ID)
	a.CollectedSymptoms[0] = "tampered"
	a.BookingData["name"] = "tampered"

	b := store.Get(sess.ID)
	assert.Equal(t, "エンジンから異音がします", b.CollectedSymptoms[0])
	assert.Empty(t, b.BookingData["name"])
}

func TestStore_LockSerializesPerSession(t *testing.T) {
	store := NewStore()
	sess := store.Create()

	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := store.Lock(sess.ID)
			defer unlock()
			counter++
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, counter)
}

func TestStore_Delete(t *testing.T) {
	store := NewStore()
	sess := store.Create()
	store.Delete(sess.ID)
	assert.Nil(t, store.Get(sess.ID))
}
