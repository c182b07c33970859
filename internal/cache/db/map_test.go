package db

import (
	"context"
	"sync"
	"testing"

	"github.com/emberline/go-ember-cache/internal/cache/db/model"
	"github.com/stretchr/testify/require"
)

func entry(raw string, payload []byte) (uint64, *model.Entry) {
	k := model.NewKey(raw)
	return k.Sum(), model.NewEntry(k, payload, 0)
}

// TestMap_SetGet_RoundTrip stores and reads a value through the shard route.
func TestMap_SetGet_RoundTrip(t *testing.T) {
	m := NewMap()
	key, e := entry("a", []byte("payload"))

	m.Set(key, e)

	got, ok := m.Get(key)
	require.True(t, ok)
	require.Equal(t, []byte("payload"), got.PayloadBytes())
	require.EqualValues(t, 1, m.Len())
	require.Equal(t, e.Weight(), m.Mem())
}

// TestMap_Set_ReplaceAdjustsCounters keeps length and fixes memory on update.
func TestMap_Set_ReplaceAdjustsCounters(t *testing.T) {
	m := NewMap()
	key, small := entry("a", make([]byte, 8))
	m.Set(key, small)

	_, big := entry("a", make([]byte, 64))
	m.Set(key, big)

	require.EqualValues(t, 1, m.Len())
	require.Equal(t, big.Weight(), m.Mem())
}

// TestMap_Remove_FreesCounters subtracts the removed weight.
func TestMap_Remove_FreesCounters(t *testing.T) {
	m := NewMap()
	key, e := entry("a", []byte("x"))
	m.Set(key, e)

	freed, hit := m.Remove(key)

	require.True(t, hit)
	require.Equal(t, e.Weight(), freed)
	require.Zero(t, m.Len())
	require.Zero(t, m.Mem())

	_, hit = m.Remove(key)
	require.False(t, hit)
}

// TestMap_Clear_ResetsEverything wipes all shards.
func TestMap_Clear_ResetsEverything(t *testing.T) {
	m := NewMap()
	for _, raw := range []string{"a", "b", "c", "d"} {
		key, e := entry(raw, []byte(raw))
		m.Set(key, e)
	}

	m.Clear()

	require.Zero(t, m.Len())
	require.Zero(t, m.Mem())
}

// TestMap_WalkShards_VisitsEveryEntry touches each stored entry once.
func TestMap_WalkShards_VisitsEveryEntry(t *testing.T) {
	m := NewMap()
	want := map[uint64]bool{}
	for _, raw := range []string{"a", "b", "c"} {
		key, e := entry(raw, nil)
		want[key] = true
		m.Set(key, e)
	}

	seen := map[uint64]bool{}
	m.WalkShards(context.Background(), func(_ uint64, sh *Shard) {
		sh.WalkR(context.Background(), func(k uint64, _ *model.Entry) bool {
			seen[k] = true
			return true
		})
	})

	require.Equal(t, want, seen)
}

// TestMap_ConcurrentSetGet survives parallel writers and readers.
func TestMap_ConcurrentSetGet(t *testing.T) {
	m := NewMap()
	var wg sync.WaitGroup
	keys := []string{"a", "b", "c", "d", "e", "f", "g", "h"}

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				raw := keys[(n+j)%len(keys)]
				key, e := entry(raw, []byte(raw))
				m.Set(key, e)
				m.Get(key)
			}
		}(i)
	}
	wg.Wait()

	require.EqualValues(t, len(keys), m.Len())
}
