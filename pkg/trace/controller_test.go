package trace

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestController_DisabledByDefault(t *testing.T) {
	c := NewController(nil, 4)
	require.NoError(t, c.Init(context.Background()))
	require.False(t, c.Enabled())

	c.Record(Entry{Kind: KindRawReceipt, NodeID: "a"})
	require.Zero(t, c.Len())
}

func TestController_RecordsWhenEnabled(t *testing.T) {
	c := NewController(nil, 4)
	c.Enable(context.Background())

	c.Observe("raw_receipt", "a", map[string]any{"text_len": 5})
	c.Observe("display_update", "a", nil)

	entries := c.Entries()
	require.Len(t, entries, 2)
	require.Equal(t, KindRawReceipt, entries[0].Kind)
	require.Equal(t, KindDisplayUpdate, entries[1].Kind)
	require.NotEmpty(t, entries[0].ID)
	require.False(t, entries[0].Timestamp.IsZero())
}

func TestController_RingBufferBound(t *testing.T) {
	c := NewController(nil, 3)
	c.Enable(context.Background())

	for i := 0; i < 10; i++ {
		c.Record(Entry{Kind: KindClassification, NodeID: fmt.Sprintf("n%d", i)})
	}
	entries := c.Entries()
	require.Len(t, entries, 3)
	// oldest evicted first
	require.Equal(t, "n7", entries[0].NodeID)
	require.Equal(t, "n9", entries[2].NodeID)
}

func TestFileFlagStore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "trace.flag")
	s, err := NewFileFlagStore(path)
	require.NoError(t, err)
	ctx := context.Background()

	_, found, err := s.Load(ctx)
	require.NoError(t, err)
	require.False(t, found)

	require.NoError(t, s.Save(ctx, true))

	fresh, err := NewFileFlagStore(path)
	require.NoError(t, err)
	enabled, found, err := fresh.Load(ctx)
	require.NoError(t, err)
	require.True(t, found)
	require.True(t, enabled)

	require.NoError(t, fresh.Save(ctx, false))
	enabled, found, err = fresh.Load(ctx)
	require.NoError(t, err)
	require.True(t, found)
	require.False(t, enabled)
}

func TestController_FlagPersistsAcrossInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace.flag")
	s, err := NewFileFlagStore(path)
	require.NoError(t, err)
	ctx := context.Background()

	first := NewController(s, 8)
	require.NoError(t, first.Init(ctx))
	require.True(t, first.Enable(ctx))

	second := NewController(s, 8)
	require.NoError(t, second.Init(ctx))
	require.True(t, second.Enabled())

	require.False(t, second.Disable(ctx))

	third := NewController(s, 8)
	require.NoError(t, third.Init(ctx))
	require.False(t, third.Enabled())
}
