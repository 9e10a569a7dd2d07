package storage

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/starford/bptracker/internal/apperr"
	"github.com/starford/bptracker/internal/reading"
)

// CSVHeader is the first line of every data file.
var CSVHeader = []string{"DateTime", "Systolic", "Diastolic", "HeartRate", "Location", "Notes"}

// CSV implements Provider backed by a single CSV file. Reading ids are their
// 1-based row positions below the header, so deleting a row renumbers the
// rows after it.
type CSV struct {
	mu   sync.Mutex
	path string // absolute path to the data file
}

// NewCSV opens the data file at path, creating it (and its directory) with a
// header line when it does not exist.
func NewCSV(path string) (*CSV, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve csv path: %w", err)
	}
	c := &CSV{path: abs}

	info, err := os.Stat(abs)
	switch {
	case errors.Is(err, os.ErrNotExist):
		if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
			return nil, fmt.Errorf("storage: mkdir: %w", err)
		}
		if err := c.rewrite(nil); err != nil {
			return nil, err
		}
	case err != nil:
		return nil, fmt.Errorf("storage: stat csv: %w", err)
	case info.IsDir():
		return nil, fmt.Errorf("storage: csv path is a directory: %s", abs)
	}
	return c, nil
}

// Path returns the absolute path of the data file.
func (c *CSV) Path() string { return c.path }

// List returns all readings in file order.
func (c *CSV) List(_ context.Context) ([]reading.Reading, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.load()
}

// Get returns the reading at 1-based position id.
func (c *CSV) Get(_ context.Context, id int64) (reading.Reading, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	all, err := c.load()
	if err != nil {
		return reading.Reading{}, err
	}
	if id < 1 || id > int64(len(all)) {
		return reading.Reading{}, apperr.ErrNotFound
	}
	return all[id-1], nil
}

// Create appends r as a new row.
func (c *CSV) Create(_ context.Context, r reading.Reading) (reading.Reading, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	all, err := c.load()
	if err != nil {
		return reading.Reading{}, err
	}

	f, err := os.OpenFile(c.path, os.O_RDWR|os.O_APPEND, 0o644)
	if err != nil {
		return reading.Reading{}, fmt.Errorf("storage: open csv: %w", err)
	}
	defer f.Close()

	// A hand-edited file may lack the final newline.
	if err := ensureTrailingNewline(f); err != nil {
		return reading.Reading{}, err
	}

	w := csv.NewWriter(f)
	if err := w.Write(toRecord(r)); err != nil {
		return reading.Reading{}, fmt.Errorf("storage: append csv: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return reading.Reading{}, fmt.Errorf("storage: append csv: %w", err)
	}
	if err := f.Sync(); err != nil {
		return reading.Reading{}, fmt.Errorf("storage: fsync: %w", err)
	}

	r.ID = int64(len(all) + 1)
	return r, nil
}

// Delete removes the row at position id by atomically rewriting the file.
// The row is resolved under the same lock, so concurrent deletes of one
// position each report the row they actually removed.
func (c *CSV) Delete(_ context.Context, id int64) (reading.Reading, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	all, err := c.load()
	if err != nil {
		return reading.Reading{}, err
	}
	if id < 1 || id > int64(len(all)) {
		return reading.Reading{}, apperr.ErrNotFound
	}
	removed := all[id-1]
	kept := append(all[:id-1:id-1], all[id:]...)
	if err := c.rewrite(kept); err != nil {
		return reading.Reading{}, err
	}
	return removed, nil
}

// Close is a no-op; the file is opened per operation.
func (c *CSV) Close() error { return nil }

func (c *CSV) load() ([]reading.Reading, error) {
	f, err := os.Open(c.path)
	if err != nil {
		return nil, fmt.Errorf("storage: open csv: %w", err)
	}
	defer f.Close()

	cr := csv.NewReader(f)
	cr.FieldsPerRecord = -1

	var out []reading.Reading
	for first := true; ; first = false {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("storage: read csv: %w", err)
		}
		if first && len(rec) > 0 && rec[0] == CSVHeader[0] {
			continue
		}
		// Hand edits leave whitespace-only lines behind.
		if blankRecord(rec) {
			continue
		}
		line, _ := cr.FieldPos(0)
		r, err := fromRecord(rec)
		if err != nil {
			return nil, fmt.Errorf("storage: csv line %d: %w", line, err)
		}
		r.ID = int64(len(out) + 1)
		out = append(out, r)
	}
	return out, nil
}

// rewrite atomically replaces the file: tmp file → fsync → rename.
func (c *CSV) rewrite(rows []reading.Reading) error {
	dir := filepath.Dir(c.path)
	tmp, err := os.CreateTemp(dir, ".bptracker-tmp-*")
	if err != nil {
		return fmt.Errorf("storage: create temp: %w", err)
	}
	tmpName := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	w := csv.NewWriter(tmp)
	if err := w.Write(CSVHeader); err != nil {
		return fmt.Errorf("storage: write temp: %w", err)
	}
	for _, r := range rows {
		if err := w.Write(toRecord(r)); err != nil {
			return fmt.Errorf("storage: write temp: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("storage: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("storage: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("storage: close temp: %w", err)
	}
	if err := os.Rename(tmpName, c.path); err != nil {
		return fmt.Errorf("storage: rename: %w", err)
	}
	success = true
	return nil
}

func ensureTrailingNewline(f *os.File) error {
	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("storage: stat csv: %w", err)
	}
	if info.Size() == 0 {
		return nil
	}
	last := make([]byte, 1)
	if _, err := f.ReadAt(last, info.Size()-1); err != nil {
		return fmt.Errorf("storage: read csv tail: %w", err)
	}
	if last[0] == '\n' {
		return nil
	}
	if _, err := f.Write([]byte("\n")); err != nil {
		return fmt.Errorf("storage: append csv: %w", err)
	}
	return nil
}

func blankRecord(rec []string) bool {
	for _, f := range rec {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

func toRecord(r reading.Reading) []string {
	return []string{
		r.DateTime(),
		strconv.Itoa(r.Systolic),
		strconv.Itoa(r.Diastolic),
		strconv.Itoa(r.HeartRate),
		r.Location,
		r.Notes,
	}
}

func fromRecord(rec []string) (reading.Reading, error) {
	if len(rec) < 4 {
		return reading.Reading{}, fmt.Errorf("want at least 4 fields, got %d", len(rec))
	}
	ts, err := reading.ParseTimestamp(rec[0])
	if err != nil {
		return reading.Reading{}, fmt.Errorf("date/time: %w", err)
	}
	var nums [3]int
	for i := range nums {
		if nums[i], err = strconv.Atoi(rec[i+1]); err != nil {
			return reading.Reading{}, fmt.Errorf("%s: %w", CSVHeader[i+1], err)
		}
	}
	r := reading.Reading{
		Timestamp: ts,
		Systolic:  nums[0],
		Diastolic: nums[1],
		HeartRate: nums[2],
	}
	if len(rec) > 4 {
		r.Location = rec[4]
	}
	if len(rec) > 5 {
		r.Notes = rec[5]
	}
	return r, nil
}
