package storage

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/voxel-pathlab/internal/solver"
	"github.com/annel0/voxel-pathlab/internal/vec"
)

func sampleRun(i int) Run {
	return Run{
		ID:        fmt.Sprintf("run-%d", i),
		Seq:       uint64(i),
		Time:      time.Unix(int64(1700000000+i), 0).UTC(),
		Scenario:  "maze",
		Algorithm: "astar",
		Options:   "None",
		Start:     vec.New(-18, 1, -18),
		Goal:      vec.New(18, 1, 18),
		Status:    "path_found",
		Stats:     solver.Stats{PathLength: i, NodesExplored: i * 10},
	}
}

func exerciseHistory(t *testing.T, h HistoryRepo) {
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		require.NoError(t, h.Append(ctx, sampleRun(i)))
	}

	n, err := h.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	recent, err := h.Recent(ctx, 3)
	require.NoError(t, err)
	require.Len(t, recent, 3)
	assert.Equal(t, "run-5", recent[0].ID)
	assert.Equal(t, "run-3", recent[2].ID)
	assert.Equal(t, sampleRun(5), recent[0])

	all, err := h.Recent(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 5)

	require.NoError(t, h.Close())
	assert.ErrorIs(t, h.Append(ctx, sampleRun(6)), ErrNotReady)
}

func TestMemoryHistory(t *testing.T) {
	exerciseHistory(t, NewMemoryHistory(0))
}

func TestMemoryHistory_Bounded(t *testing.T) {
	ctx := context.Background()
	h := NewMemoryHistory(2)
	for i := 1; i <= 4; i++ {
		require.NoError(t, h.Append(ctx, sampleRun(i)))
	}
	recent, err := h.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "run-4", recent[0].ID)
	assert.Equal(t, "run-3", recent[1].ID)
}

func TestBadgerHistory(t *testing.T) {
	h, err := NewBadgerHistory(t.TempDir())
	require.NoError(t, err)
	exerciseHistory(t, h)
}

func TestBadgerHistory_Reopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	h, err := NewBadgerHistory(dir)
	require.NoError(t, err)
	require.NoError(t, h.Append(ctx, sampleRun(1)))
	require.NoError(t, h.Close())

	h, err = NewBadgerHistory(dir)
	require.NoError(t, err)
	defer h.Close()
	require.NoError(t, h.Append(ctx, sampleRun(2)))

	recent, err := h.Recent(ctx, 0)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "run-2", recent[0].ID, "новые номера после переоткрытия больше старых")
}

func TestCodecRoundTrip(t *testing.T) {
	payload := []byte(`{"blocks":[` + fmt.Sprint(make([]int, 200)) + `]}`)
	packed, err := Compress(payload)
	require.NoError(t, err)
	assert.Less(t, len(packed), len(payload))

	unpacked, err := Decompress(packed)
	require.NoError(t, err)
	assert.Equal(t, payload, unpacked)

	_, err = Decompress([]byte("not zstd"))
	assert.Error(t, err)
}
