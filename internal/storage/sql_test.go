package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/starford/bptracker/internal/apperr"
)

func testSQLite(t *testing.T) *SQL {
	t.Helper()
	s, err := OpenSQL(DriverSQLite, filepath.Join(t.TempDir(), "bp_tracker.db"))
	if err != nil {
		t.Fatalf("OpenSQL: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLite_SchemaCreation(t *testing.T) {
	s := testSQLite(t)
	var count int
	if err := s.conn.QueryRow(`SELECT count(*) FROM entries`).Scan(&count); err != nil {
		t.Fatalf("entries table missing: %v", err)
	}
	// Re-applying the schema is a no-op.
	if err := s.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
}

func TestSQLite_CreateGetDelete(t *testing.T) {
	s := testSQLite(t)
	ctx := context.Background()

	created, err := s.Create(ctx, sampleReading(135, 85, 72))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.ID == 0 {
		t.Fatal("expected assigned id")
	}

	got, err := s.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Systolic != 135 || got.Location != "Home" || !got.Timestamp.Equal(created.Timestamp) {
		t.Errorf("got = %+v", got)
	}

	removed, err := s.Delete(ctx, created.ID)
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if removed.ID != created.ID || removed.Systolic != 135 || removed.Location != "Home" {
		t.Errorf("removed = %+v", removed)
	}
	if _, err := s.Get(ctx, created.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("Get after delete err = %v, want ErrNotFound", err)
	}
	if _, err := s.Delete(ctx, created.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("second delete err = %v, want ErrNotFound", err)
	}
}

func TestSQLite_ListNewestFirst(t *testing.T) {
	s := testSQLite(t)
	ctx := context.Background()
	base := time.Date(2025, 5, 1, 8, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		r := sampleReading(120+i, 80, 70)
		r.Timestamp = base.Add(time.Duration(i) * time.Hour)
		if _, err := s.Create(ctx, r); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}
	all, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("len = %d", len(all))
	}
	if all[0].Systolic != 122 || all[2].Systolic != 120 {
		t.Errorf("order = %d, %d, %d", all[0].Systolic, all[1].Systolic, all[2].Systolic)
	}
}

func TestSQLite_NullOptionalColumns(t *testing.T) {
	s := testSQLite(t)
	_, err := s.conn.Exec(`INSERT INTO entries (date_time, systolic, diastolic, heart_rate) VALUES ('2025-01-01 08:00:00', 120, 80, 70)`)
	if err != nil {
		t.Fatal(err)
	}
	all, err := s.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 1 || all[0].Location != "" || all[0].Notes != "" {
		t.Errorf("readings = %+v", all)
	}
}

func TestOpen_Backends(t *testing.T) {
	dir := t.TempDir()
	p, err := Open(BackendCSV, filepath.Join(dir, "data.csv"))
	if err != nil {
		t.Fatalf("csv: %v", err)
	}
	if _, ok := p.(*CSV); !ok {
		t.Errorf("csv backend = %T", p)
	}

	p, err = Open(BackendSQLite, filepath.Join(dir, "data.db"))
	if err != nil {
		t.Fatalf("sqlite: %v", err)
	}
	defer p.Close()
	if _, ok := p.(*SQL); !ok {
		t.Errorf("sqlite backend = %T", p)
	}

	if _, err := Open("mongo", "x"); err == nil {
		t.Error("expected error for unknown backend")
	}
	if _, err := OpenSQL("oracle", "x"); err == nil {
		t.Error("expected error for unknown driver")
	}
}
