package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type fakeRecord struct {
	Name string
}

type fakeStore struct {
	records map[uuid.UUID]fakeRecord
}

func newFakeStore(ids ...uuid.UUID) *fakeStore {
	s := &fakeStore{records: make(map[uuid.UUID]fakeRecord)}
	for i, id := range ids {
		s.records[id] = fakeRecord{Name: string(rune('a' + i))}
	}
	return s
}

func (s *fakeStore) hooks() ReconcileHooks[fakeRecord] {
	return ReconcileHooks[fakeRecord]{
		Update: func(_ context.Context, id uuid.UUID, fields fakeRecord) error {
			s.records[id] = fields
			return nil
		},
		Insert: func(_ context.Context, fields fakeRecord) (uuid.UUID, error) {
			id := uuid.New()
			s.records[id] = fields
			return id, nil
		},
		Delete: func(_ context.Context, id uuid.UUID) error {
			delete(s.records, id)
			return nil
		},
	}
}

func (s *fakeStore) ids() []uuid.UUID {
	out := make([]uuid.UUID, 0, len(s.records))
	for id := range s.records {
		out = append(out, id)
	}
	return out
}

func TestResolveClientID(t *testing.T) {
	known := uuid.New()
	existing := map[uuid.UUID]struct{}{known: {}}

	resolved := ResolveClientID(known.String(), existing)
	require.True(t, resolved.Existing)
	require.Equal(t, known, resolved.ID)

	require.False(t, ResolveClientID("new-1735689600", existing).Existing, "placeholder routes to insert")
	require.False(t, ResolveClientID("", existing).Existing)
	require.False(t, ResolveClientID(uuid.NewString(), existing).Existing, "unknown uuid routes to insert")
}

func TestReconcileSetCompleteness(t *testing.T) {
	a, b, c := uuid.New(), uuid.New(), uuid.New()
	store := newFakeStore(a, b, c)

	submitted := []SubmittedItem[fakeRecord]{
		{ClientID: a.String(), Fields: fakeRecord{Name: "updated-a"}},
		{ClientID: "new-1", Fields: fakeRecord{Name: "inserted"}},
	}

	outcome, err := ReconcileSet(context.Background(), store.ids(), submitted, store.hooks())
	require.NoError(t, err)

	require.Equal(t, []uuid.UUID{a}, outcome.Kept)
	require.Len(t, outcome.Inserted, 1)
	require.ElementsMatch(t, []uuid.UUID{b, c}, outcome.Deleted)

	require.Len(t, store.records, 2)
	require.Equal(t, "updated-a", store.records[a].Name)
	require.Equal(t, "inserted", store.records[outcome.ClientIDs["new-1"]].Name)
}

func TestReconcileSetIdempotent(t *testing.T) {
	store := newFakeStore()

	first, err := ReconcileSet(context.Background(), nil, []SubmittedItem[fakeRecord]{
		{ClientID: "new-1", Fields: fakeRecord{Name: "anna"}},
		{ClientID: "new-2", Fields: fakeRecord{Name: "minh"}},
	}, store.hooks())
	require.NoError(t, err)
	require.Len(t, first.Inserted, 2)

	// Second pass echoes the durable ids back, exactly as a portal resubmit does.
	echo := []SubmittedItem[fakeRecord]{
		{ClientID: first.ClientIDs["new-1"].String(), Fields: fakeRecord{Name: "anna"}},
		{ClientID: first.ClientIDs["new-2"].String(), Fields: fakeRecord{Name: "minh"}},
	}

	second, err := ReconcileSet(context.Background(), store.ids(), echo, store.hooks())
	require.NoError(t, err)
	require.Empty(t, second.Inserted)
	require.Empty(t, second.Deleted)
	require.Len(t, second.Kept, 2)
	require.Len(t, store.records, 2)
}

func TestReconcileSetOrderInsensitive(t *testing.T) {
	a, b := uuid.New(), uuid.New()

	run := func(submitted []SubmittedItem[fakeRecord]) map[uuid.UUID]fakeRecord {
		store := newFakeStore()
		store.records[a] = fakeRecord{Name: "a"}
		store.records[b] = fakeRecord{Name: "b"}
		_, err := ReconcileSet(context.Background(), []uuid.UUID{a, b}, submitted, store.hooks())
		require.NoError(t, err)
		return store.records
	}

	forward := run([]SubmittedItem[fakeRecord]{
		{ClientID: a.String(), Fields: fakeRecord{Name: "a2"}},
		{ClientID: b.String(), Fields: fakeRecord{Name: "b2"}},
	})
	reversed := run([]SubmittedItem[fakeRecord]{
		{ClientID: b.String(), Fields: fakeRecord{Name: "b2"}},
		{ClientID: a.String(), Fields: fakeRecord{Name: "a2"}},
	})

	require.Equal(t, forward, reversed)
}
