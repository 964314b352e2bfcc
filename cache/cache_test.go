package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	ID   string
	Tags []string
}

func (i item) Clone() item {
	c := i
	c.Tags = append([]string{}, i.Tags...)
	return c
}

func TestStoreDirtyWhenEmpty(t *testing.T) {
	s := New[item](Config{})
	assert.True(t, s.IsDirty("/cal/", "ctag-1"))

	_, ok := s.Get("/cal/")
	assert.False(t, ok)
}

func TestStoreCleanAfterPut(t *testing.T) {
	s := New[item](Config{})
	s.Put("/cal/", "ctag-1", []item{{ID: "a"}})

	assert.False(t, s.IsDirty("/cal/", "ctag-1"))

	got, ok := s.Get("/cal/")
	require.True(t, ok)
	require.Len(t, got, 1)
	assert.Equal(t, "a", got[0].ID)
}

func TestStoreDirtyOnTokenChange(t *testing.T) {
	s := New[item](Config{})
	s.Put("/cal/", "ctag-1", nil)

	assert.True(t, s.IsDirty("/cal/", "ctag-2"))
}

func TestStoreCollectionsIndependent(t *testing.T) {
	s := New[item](Config{})
	s.Put("/cal/", "ctag-1", []item{{ID: "a"}})
	s.Put("/other/", "ctag-9", []item{{ID: "b"}})

	s.Invalidate("/cal/")

	assert.True(t, s.IsDirty("/cal/", "ctag-1"))
	assert.False(t, s.IsDirty("/other/", "ctag-9"))
}

func TestStoreHandsOutClones(t *testing.T) {
	s := New[item](Config{})
	original := []item{{ID: "a", Tags: []string{"work"}}}
	s.Put("/cal/", "ctag-1", original)

	// Mutating the caller's slice after Put must not reach the snapshot.
	original[0].Tags[0] = "corrupted"

	got, ok := s.Get("/cal/")
	require.True(t, ok)
	assert.Equal(t, "work", got[0].Tags[0])

	// Mutating a Get result must not reach the snapshot either.
	got[0].Tags[0] = "also-corrupted"
	again, _ := s.Get("/cal/")
	assert.Equal(t, "work", again[0].Tags[0])
}

func TestStoreAgeExpiry(t *testing.T) {
	s := New[item](Config{MaxAge: time.Minute})
	current := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return current }

	s.Put("/cal/", "ctag-1", nil)
	assert.False(t, s.IsDirty("/cal/", "ctag-1"))

	current = current.Add(59 * time.Second)
	assert.False(t, s.IsDirty("/cal/", "ctag-1"))

	current = current.Add(2 * time.Second)
	assert.True(t, s.IsDirty("/cal/", "ctag-1"), "snapshot older than MaxAge is stale even with a matching token")
}

func TestStoreZeroMaxAgeNeverExpires(t *testing.T) {
	s := New[item](Config{})
	current := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return current }

	s.Put("/cal/", "ctag-1", nil)
	current = current.Add(24 * 365 * time.Hour)
	assert.False(t, s.IsDirty("/cal/", "ctag-1"))
}
