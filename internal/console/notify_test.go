package console

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifier_OverflowDropsOldest(t *testing.T) {
	n := NewNotifier()
	for i := 0; i <= notifierCapacity; i++ {
		n.Success(fmt.Sprintf("msg-%d", i), "")
	}

	notes := n.Drain()
	require.Len(t, notes, notifierCapacity)
	assert.Equal(t, "msg-1", notes[0].Message, "oldest entry is dropped on overflow")
	assert.Equal(t, fmt.Sprintf("msg-%d", notifierCapacity), notes[len(notes)-1].Message)
}

func TestNotifier_DrainClears(t *testing.T) {
	n := NewNotifier()
	n.Error("Error", "boom")
	require.Len(t, n.Drain(), 1)
	assert.Empty(t, n.Drain())
}
