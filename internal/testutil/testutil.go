// Package testutil provides shared test helpers: an in-memory store and
// temporary on-disk stores.
package testutil

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/starford/bptracker/internal/apperr"
	"github.com/starford/bptracker/internal/reading"
	"github.com/starford/bptracker/internal/storage"
)

// MemoryStore is an in-memory storage.Provider with auto-incrementing ids.
type MemoryStore struct {
	mu     sync.Mutex
	nextID int64
	rows   []reading.Reading

	// Err, if set, is returned by every operation.
	Err error
}

// NewMemoryStore returns a store pre-filled with readings.
func NewMemoryStore(readings ...reading.Reading) *MemoryStore {
	m := &MemoryStore{}
	for _, r := range readings {
		_, _ = m.Create(context.Background(), r)
	}
	return m
}

func (m *MemoryStore) List(_ context.Context) ([]reading.Reading, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	return append([]reading.Reading(nil), m.rows...), nil
}

func (m *MemoryStore) Get(_ context.Context, id int64) (reading.Reading, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return reading.Reading{}, m.Err
	}
	for _, r := range m.rows {
		if r.ID == id {
			return r, nil
		}
	}
	return reading.Reading{}, apperr.ErrNotFound
}

func (m *MemoryStore) Create(_ context.Context, r reading.Reading) (reading.Reading, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return reading.Reading{}, m.Err
	}
	m.nextID++
	r.ID = m.nextID
	m.rows = append(m.rows, r)
	return r, nil
}

func (m *MemoryStore) Delete(_ context.Context, id int64) (reading.Reading, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return reading.Reading{}, m.Err
	}
	for i, r := range m.rows {
		if r.ID == id {
			m.rows = append(m.rows[:i], m.rows[i+1:]...)
			return r, nil
		}
	}
	return reading.Reading{}, apperr.ErrNotFound
}

func (m *MemoryStore) Close() error { return nil }

var _ storage.Provider = (*MemoryStore)(nil)

// ErrBoom is a generic failure for error-path tests.
var ErrBoom = errors.New("boom")

// Reading builds a valid reading at a fixed time.
func Reading(sys, dia, hr int) reading.Reading {
	return reading.Reading{
		Timestamp: time.Date(2025, 1, 15, 8, 0, 0, 0, time.UTC),
		Systolic:  sys,
		Diastolic: dia,
		HeartRate: hr,
		Location:  "Home",
	}
}

// TestSQLite opens a temporary SQLite store that is closed on cleanup.
func TestSQLite(t *testing.T) *storage.SQL {
	t.Helper()
	s, err := storage.OpenSQL(storage.DriverSQLite, filepath.Join(t.TempDir(), "bp_tracker.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// TestCSV creates a temporary CSV store.
func TestCSV(t *testing.T) *storage.CSV {
	t.Helper()
	s, err := storage.NewCSV(filepath.Join(t.TempDir(), "bp_data.csv"))
	if err != nil {
		t.Fatal(err)
	}
	return s
}
