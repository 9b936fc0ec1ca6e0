package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_SaveLoadRoundTrip(t *testing.T) {
	store := NewMemoryStore()

	snap := &Snapshot{
		Version: CurrentVersion,
		Cycle:   42,
		Terms:   []TermRecord{{Canonical: "bird"}, {Canonical: "<robin-->bird>"}},
		Concepts: []ConceptRecord{
			{
				TermCanonical: "bird",
				Activation:    0.5,
				Tasks: []TaskRecord{
					{TermCanonical: "<robin-->bird>", Punctuation: '.', HasTruth: true, Freq: 1, Conf: 0.9, Priority: 0.8, Durability: 0.5, Quality: 0.5, Evidence: []string{"e1"}, IsBelief: true},
				},
				Links: []LinkRecord{{TargetCanonical: "robin", Outgoing: true, Weight: 1}},
			},
		},
	}

	require.NoError(t, store.Save(snap))

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, int64(42), loaded.Cycle)
	assert.Len(t, loaded.Terms, 2)
	require.Len(t, loaded.Concepts, 1)
	assert.Equal(t, "bird", loaded.Concepts[0].TermCanonical)
	require.Len(t, loaded.Concepts[0].Tasks, 1)
	assert.Equal(t, 0.9, loaded.Concepts[0].Tasks[0].Conf)
}

func TestMemoryStore_LoadEmpty(t *testing.T) {
	store := NewMemoryStore()
	snap, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, CurrentVersion, snap.Version)
	assert.Zero(t, snap.Cycle)
}

func TestMemoryStore_VersionMismatch(t *testing.T) {
	store := NewMemoryStore()
	require.NoError(t, store.Save(&Snapshot{Version: "0.0.1"}))

	_, err := store.Load()
	require.Error(t, err)
	var corrupted *ErrCorruptedState
	assert.ErrorAs(t, err, &corrupted)
}

func TestNewStorage_DefaultsToMemory(t *testing.T) {
	s, err := NewStorage(Config{})
	require.NoError(t, err)
	defer CloseStorage(s)

	_, ok := s.(*MemoryStore)
	assert.True(t, ok)
}
