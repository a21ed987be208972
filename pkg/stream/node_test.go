package stream

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestNodeStore_FirstApplyStartsStreaming(t *testing.T) {
	n := NewNodeStore("n1")
	require.Equal(t, StatusIdle, n.Status())

	snap, err := n.Apply("Hello")
	require.NoError(t, err)
	require.Equal(t, "n1", snap.NodeID)
	require.Equal(t, "Hello", snap.Text)
	require.Equal(t, StatusStreaming, snap.Status)
	require.Equal(t, 1, snap.ChunkCount)
}

func TestNodeStore_CumulativeExtension(t *testing.T) {
	n := NewNodeStore("n1")
	_, err := n.Apply("Hello, I can help")
	require.NoError(t, err)
	snap, err := n.Apply("Hello, I can help you today")
	require.NoError(t, err)
	require.Equal(t, "Hello, I can help you today", snap.Text)
	require.Equal(t, StatusStreaming, snap.Status)
	require.Equal(t, 2, snap.ChunkCount)
}

func TestNodeStore_ShorterResendKeepsText(t *testing.T) {
	n := NewNodeStore("n1")
	_, err := n.Apply("Hello, I can help you today")
	require.NoError(t, err)
	snap, err := n.Apply("Hello, I can help")
	require.NoError(t, err)
	require.Equal(t, "Hello, I can help you today", snap.Text)
	require.Equal(t, 2, snap.ChunkCount)
}

func TestNodeStore_DivergentTailDuplicates(t *testing.T) {
	n := NewNodeStore("n1")
	_, err := n.Apply("The cat sat")
	require.NoError(t, err)
	snap, err := n.Apply("The cat ran")
	require.NoError(t, err)
	require.Equal(t, "The cat satran", snap.Text)
}

func TestNodeStore_FinalizeIsIdempotent(t *testing.T) {
	n := NewNodeStore("n1")
	_, err := n.Apply("done deal")
	require.NoError(t, err)

	first, err := n.Finalize()
	require.NoError(t, err)
	require.Equal(t, StatusDone, first.Status)

	second, err := n.Finalize()
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestNodeStore_ApplyOnTerminalFails(t *testing.T) {
	n := NewNodeStore("n1")
	_, err := n.Apply("frozen")
	require.NoError(t, err)
	_, err = n.Finalize()
	require.NoError(t, err)

	snap, err := n.Apply("more")
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrInvalidStateTransition))
	require.Equal(t, "frozen", snap.Text)
	require.Equal(t, 1, snap.ChunkCount)
}

func TestNodeStore_ErrorPreservesText(t *testing.T) {
	n := NewNodeStore("n1")
	_, err := n.Apply("partial answer")
	require.NoError(t, err)

	snap := n.Error("disconnected")
	require.Equal(t, StatusErrored, snap.Status)
	require.Equal(t, "partial answer", snap.Text)
	require.Equal(t, "disconnected", snap.ErrReason)

	_, err = n.Finalize()
	require.True(t, errors.Is(err, ErrInvalidStateTransition))
}

func TestNodeStore_ErrorOnTerminalIsNoop(t *testing.T) {
	n := NewNodeStore("n1")
	_, err := n.Apply("x")
	require.NoError(t, err)
	done, err := n.Finalize()
	require.NoError(t, err)

	snap := n.Error("late failure")
	require.Equal(t, done, snap)
}

func TestNodeStore_ResetClearsState(t *testing.T) {
	n := NewNodeStore("n1")
	_, err := n.Apply("old turn")
	require.NoError(t, err)
	_, err = n.Finalize()
	require.NoError(t, err)

	n.Reset()
	require.Equal(t, StatusIdle, n.Status())

	snap, err := n.Apply("new turn")
	require.NoError(t, err)
	require.Equal(t, "new turn", snap.Text)
	require.Equal(t, 1, snap.ChunkCount)
}
