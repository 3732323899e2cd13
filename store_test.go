package prodigyfix

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/felipe-ssantos/prodigyfix/internal/docstore/memstore"
	ierrors "github.com/felipe-ssantos/prodigyfix/internal/errors"
	"github.com/felipe-ssantos/prodigyfix/internal/kv"
)

func tutorialDoc(title, category, createdAt string, views int64) json.RawMessage {
	return json.RawMessage(fmt.Sprintf(
		`{"title":%q,"category":%q,"createdAt":%q,"updatedAt":%q,"views":%d,"difficulty":"Beginner"}`,
		title, category, createdAt, createdAt, views))
}

func categoryDoc(name string) json.RawMessage {
	return json.RawMessage(fmt.Sprintf(`{"name":%q,"description":"","icon":""}`, name))
}

func seedStore(t *testing.T) (*memstore.Store, *Store) {
	t.Helper()
	ms := memstore.New()
	ms.Put("tutorials", "t1", tutorialDoc("Fix boot loop", "cat-linux", "2026-01-01T10:00:00Z", 3))
	ms.Put("tutorials", "t2", tutorialDoc("Partition a disk", "cat-linux", "2026-02-01T10:00:00Z", 0))
	ms.Put("tutorials", "t3", tutorialDoc("Reset BIOS", "cat-hw", "2026-03-01T10:00:00Z", 7))
	ms.Put("categories", "cat-linux", categoryDoc("Linux"))
	ms.Put("categories", "cat-hw", categoryDoc("Hardware"))
	ms.Put("categories", "cat-empty", categoryDoc("Empty"))

	st, err := New(ms, AuthProviderFunc(func() bool { return true }))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	select {
	case <-st.Ready():
	case <-time.After(2 * time.Second):
		t.Fatal("store never became ready")
	}
	return ms, st
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not reached before deadline")
}

func TestSnapshotOrderedNewestFirst(t *testing.T) {
	_, st := seedStore(t)

	snap := st.Snapshot()
	require.Len(t, snap, 3)
	require.Equal(t, "t3", snap[0].ID)
	require.Equal(t, "t2", snap[1].ID)
	require.Equal(t, "t1", snap[2].ID)
}

func TestSnapshotNormalizesSparseDocuments(t *testing.T) {
	ms := memstore.New()
	ms.Put("tutorials", "bare", json.RawMessage(`{}`))

	st, err := New(ms, AuthProviderFunc(func() bool { return true }))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	<-st.Ready()

	got, ok := st.GetByID("bare")
	require.True(t, ok)
	require.Equal(t, "Untitled", got.Title)
	require.Equal(t, DifficultyBeginner, got.Difficulty)
	require.NotNil(t, got.Tags)
	require.Empty(t, got.Tags)
	require.NotNil(t, got.Keywords)
	require.Zero(t, got.Views)
	require.False(t, got.CreatedAt.IsZero())
}

func TestSubscriptionErrorKeepsPreviousSnapshot(t *testing.T) {
	ms, st := seedStore(t)

	before := st.Snapshot()
	ms.EmitError("tutorials", errors.New("stream torn down"))

	waitFor(t, func() bool { return st.Err() != nil })
	require.ErrorIs(t, st.Err(), ErrConnectivity)
	require.Equal(t, before, st.Snapshot(), "degraded connection must not blank the mirror")

	// A successful snapshot clears the error state.
	ms.Put("tutorials", "t4", tutorialDoc("New arrival", "cat-hw", "2026-04-01T10:00:00Z", 0))
	waitFor(t, func() bool { return st.Err() == nil && len(st.Snapshot()) == 4 })
}

func TestSubscriptionErrorsTrackedPerCollection(t *testing.T) {
	ms, st := seedStore(t)

	ms.EmitError("tutorials", errors.New("stream torn down"))
	waitFor(t, func() bool { return st.Err() != nil })

	// A healthy categories snapshot must not clear the tutorials error:
	// that stream is still broken and the mirror is still stale.
	ms.Put("categories", "cat-new", categoryDoc("New"))
	waitFor(t, func() bool { return len(st.Categories()) == 4 })
	require.ErrorIs(t, st.Err(), ErrConnectivity)

	// Only a tutorials snapshot clears it.
	ms.Put("tutorials", "t4", tutorialDoc("Recovered", "cat-hw", "2026-04-01T10:00:00Z", 0))
	waitFor(t, func() bool { return st.Err() == nil })

	// And the other way around: a categories error survives tutorial
	// snapshots.
	ms.EmitError("categories", errors.New("stream torn down"))
	waitFor(t, func() bool { return st.Err() != nil })
	ms.Put("tutorials", "t5", tutorialDoc("Another", "cat-hw", "2026-05-01T10:00:00Z", 0))
	waitFor(t, func() bool { return len(st.Snapshot()) == 5 })
	require.ErrorIs(t, st.Err(), ErrConnectivity)
}

func TestGetAdjacent(t *testing.T) {
	_, st := seedStore(t)

	// Ordering is t3, t2, t1.
	adj := st.GetAdjacent("t2")
	require.NotNil(t, adj.Previous)
	require.NotNil(t, adj.Next)
	require.Equal(t, "t3", adj.Previous.ID)
	require.Equal(t, "t1", adj.Next.ID)

	newest := st.GetAdjacent("t3")
	require.Nil(t, newest.Previous)
	require.Equal(t, "t2", newest.Next.ID)

	oldest := st.GetAdjacent("t1")
	require.Equal(t, "t2", oldest.Previous.ID)
	require.Nil(t, oldest.Next)

	require.Equal(t, Adjacent{}, st.GetAdjacent("missing"))
}

func TestCategoryCountsDerivedFromMirror(t *testing.T) {
	ms, st := seedStore(t)

	counts := func() map[string]int {
		out := make(map[string]int)
		for _, c := range st.Categories() {
			out[c.ID] = c.TutorialCount
		}
		return out
	}
	require.Equal(t, map[string]int{"cat-linux": 2, "cat-hw": 1, "cat-empty": 0}, counts())

	// Counts re-derive when the tutorial mirror changes.
	ms.Put("tutorials", "t4", tutorialDoc("Swap a fan", "cat-hw", "2026-04-01T10:00:00Z", 0))
	waitFor(t, func() bool { return counts()["cat-hw"] == 2 })
	require.Equal(t, 2, counts()["cat-linux"], "unrelated categories unchanged")
}

func TestGetByCategory(t *testing.T) {
	_, st := seedStore(t)

	linux := st.GetByCategory("cat-linux")
	require.Len(t, linux, 2)
	require.Equal(t, "t2", linux[0].ID)
	require.Equal(t, "t1", linux[1].ID)
	require.Empty(t, st.GetByCategory("cat-empty"))
}

func TestMutationsRequireAuth(t *testing.T) {
	ms := memstore.New()
	st, err := New(ms, AuthProviderFunc(func() bool { return false }))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	ctx := context.Background()
	_, err = st.Create(ctx, CreateTutorialRequest{Title: "x"})
	require.ErrorIs(t, err, ErrUnauthorized)
	require.ErrorIs(t, st.Update(ctx, "t1", UpdateTutorialRequest{}), ErrUnauthorized)
	require.ErrorIs(t, st.Delete(ctx, "t1"), ErrUnauthorized)
}

func TestCreateValidatesAndNormalizes(t *testing.T) {
	ms, st := seedStore(t)
	ctx := context.Background()

	_, err := st.Create(ctx, CreateTutorialRequest{Title: "bad", EstimatedMins: -5})
	require.ErrorIs(t, err, ErrValidation)

	id, err := st.Create(ctx, CreateTutorialRequest{
		Title:      "Instalar drivers",
		Category:   "cat-linux",
		Difficulty: "iniciante",
	})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	waitFor(t, func() bool {
		_, ok := st.GetByID(id)
		return ok
	})
	got, _ := st.GetByID(id)
	require.Equal(t, DifficultyBeginner, got.Difficulty, "localized label normalized on write")
	require.Zero(t, got.Views)

	doc, err := ms.GetOne(ctx, "tutorials", id)
	require.NoError(t, err)
	require.Contains(t, string(doc.Data), `"difficulty":"Beginner"`)
}

func TestUpdateIsPartial(t *testing.T) {
	_, st := seedStore(t)
	ctx := context.Background()

	title := "Fix boot loop, revised"
	difficulty := "avançado"
	err := st.Update(ctx, "t1", UpdateTutorialRequest{Title: &title, Difficulty: &difficulty})
	require.NoError(t, err)

	waitFor(t, func() bool {
		got, ok := st.GetByID("t1")
		return ok && got.Title == title
	})
	got, _ := st.GetByID("t1")
	require.Equal(t, DifficultyAdvanced, got.Difficulty)
	require.Equal(t, "cat-linux", got.Category, "untouched fields survive the patch")
}

func TestUpdateMissingTutorial(t *testing.T) {
	_, st := seedStore(t)

	title := "x"
	err := st.Update(context.Background(), "ghost", UpdateTutorialRequest{Title: &title})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteEvictsFavorite(t *testing.T) {
	ms := memstore.New()
	ms.Put("tutorials", "t1", tutorialDoc("Doomed", "cat-x", "2026-01-01T10:00:00Z", 0))

	fav, err := NewFavorites(kv.NewMemory(), "favorites")
	require.NoError(t, err)
	require.NoError(t, fav.Add("t1"))

	st, err := New(ms, AuthProviderFunc(func() bool { return true }), WithFavorites(fav))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	<-st.Ready()

	require.NoError(t, st.Delete(context.Background(), "t1"))
	require.False(t, fav.IsFavorite("t1"))
	require.ErrorIs(t, st.Delete(context.Background(), "t1"), ErrNotFound)
}

func TestIncrementViewsLocalAndRemote(t *testing.T) {
	ms, st := seedStore(t)
	ctx := context.Background()

	// Local bump is visible immediately.
	st.IncrementViews(ctx, "t1")
	got, _ := st.GetByID("t1")
	require.Equal(t, int64(4), got.Views)

	// The remote write lands once the shard drains.
	require.NoError(t, st.AwaitViews(ctx, "t1"))
	doc, err := ms.GetOne(ctx, "tutorials", "t1")
	require.NoError(t, err)
	var raw struct {
		Views int64 `json:"views"`
	}
	require.NoError(t, json.Unmarshal(doc.Data, &raw))
	require.Equal(t, int64(4), raw.Views)
}

// patchRejectingStore fails every Patch so remote view writes never land.
type patchRejectingStore struct {
	*memstore.Store
}

func (p *patchRejectingStore) Patch(context.Context, string, string, json.RawMessage) error {
	return &ierrors.ClassifiedError{Category: ierrors.Irrecoverable, Underlying: errors.New("write rejected")}
}

func TestIncrementViewsKeepsLocalBumpWhenRemoteWriteFails(t *testing.T) {
	ms := memstore.New()
	ms.Put("tutorials", "t1", tutorialDoc("Fix boot loop", "cat-linux", "2026-01-01T10:00:00Z", 5))

	st, err := New(&patchRejectingStore{ms}, AuthProviderFunc(func() bool { return true }))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	<-st.Ready()
	ctx := context.Background()

	st.IncrementViews(ctx, "t1")
	require.NoError(t, st.AwaitViews(ctx, "t1"))

	// The caller-visible count keeps the increment even though the remote
	// write failed.
	got, ok := st.GetByID("t1")
	require.True(t, ok)
	require.Equal(t, int64(6), got.Views)

	// The remote record is untouched; the divergence is accepted.
	doc, err := ms.GetOne(ctx, "tutorials", "t1")
	require.NoError(t, err)
	var raw struct {
		Views int64 `json:"views"`
	}
	require.NoError(t, json.Unmarshal(doc.Data, &raw))
	require.Equal(t, int64(5), raw.Views)
}

func TestIncrementViewsMissingIDIsSilent(t *testing.T) {
	_, st := seedStore(t)
	ctx := context.Background()

	// Never an error from the caller's point of view.
	st.IncrementViews(ctx, "ghost")
	require.NoError(t, st.AwaitViews(ctx, "ghost"))
}

func TestCloseIsIdempotent(t *testing.T) {
	_, st := seedStore(t)
	require.NoError(t, st.Close())
	require.NoError(t, st.Close())
}
