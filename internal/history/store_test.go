package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/shelf-inventory/internal/report"
	"github.com/ginjaninja78/shelf-inventory/internal/types"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func generated(t *testing.T, at time.Time, mode types.ProblemMode) *report.ReportData {
	t.Helper()
	a := report.NewAssembler(report.WithClock(func() time.Time { return at }))
	data, err := a.Generate(report.Parameters{
		Scheme:      types.SchemeLC,
		Library:     "MAIN",
		Locations:   []string{"STACKS", "REF"},
		ProblemMode: mode,
	}, []types.PhysicalItem{
		{Barcode: "1", ExistsInAlma: true, CallNumber: "A1"},
		{Barcode: "2", ExistsInAlma: true, CallNumber: "A3"},
		{Barcode: "3", ExistsInAlma: true, CallNumber: "A2"},
	})
	require.NoError(t, err)
	return data
}

func TestNewRun(t *testing.T) {
	at := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	data := generated(t, at, types.ProblemModeOnlyOrder)

	run := NewRun(data, "/out/report.xlsx")
	assert.Equal(t, data.ID, run.ID)
	assert.Equal(t, at, run.CreatedAt)
	assert.Equal(t, "LC", run.Scheme)
	assert.Equal(t, "onlyOrder", run.ProblemMode)
	assert.Equal(t, 3, run.ItemCount)
	assert.Equal(t, 1, run.ProblemCount)
	assert.Equal(t, "/out/report.xlsx", run.OutputFile)
}

func TestSaveAndGet(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	run := NewRun(generated(t, time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC), types.ProblemModeOnlyOrder), "")
	require.NoError(t, store.Save(ctx, run))

	got, err := store.Get(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, run.CreatedAt, got.CreatedAt)
	assert.Equal(t, []string{"STACKS", "REF"}, got.Locations)
	assert.Empty(t, got.OutputFile)
	assert.Equal(t, run.Counts.Order, got.Counts.Order)
	assert.False(t, got.Counts.Library.Evaluated, "N/A survives the round trip")

	assert.Error(t, store.Save(ctx, run), "duplicate id")
}

func TestGet_NotFound(t *testing.T) {
	_, err := openStore(t).Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestList_NewestFirst(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	var ids []string
	for i := 0; i < 3; i++ {
		run := NewRun(generated(t, base.Add(time.Duration(i)*time.Hour), types.ProblemModeAll), "")
		require.NoError(t, store.Save(ctx, run))
		ids = append(ids, run.ID)
	}
	other := NewRun(generated(t, base.Add(10*time.Hour), types.ProblemModeAll), "")
	other.Library = "LAW"
	require.NoError(t, store.Save(ctx, other))

	runs, err := store.List(ctx, "MAIN", 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, ids[2], runs[0].ID)
	assert.Equal(t, ids[1], runs[1].ID)

	all, err := store.List(ctx, "", 0)
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, other.ID, all[0].ID)
}

func TestList_Empty(t *testing.T) {
	runs, err := openStore(t).List(context.Background(), "", 10)
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestDelete(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	run := NewRun(generated(t, time.Now(), types.ProblemModeAll), "")
	require.NoError(t, store.Save(ctx, run))
	require.NoError(t, store.Delete(ctx, run.ID))

	assert.ErrorIs(t, store.Delete(ctx, run.ID), ErrNotFound)
}

func TestOpen_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")

	store, err := Open(path)
	require.NoError(t, err)
	run := NewRun(generated(t, time.Now(), types.ProblemModeAll), "")
	require.NoError(t, store.Save(context.Background(), run))
	require.NoError(t, store.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	_, err = reopened.Get(context.Background(), run.ID)
	assert.NoError(t, err)
}
