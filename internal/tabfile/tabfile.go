// Package tabfile is the whole-file read-modify-write table used by the
// catalog and ledger backing stores. It deliberately offers nothing beyond
// "load the table" and "rewrite the table": the stores are small,
// single-writer by convention, and last write wins. Serialization stays with
// the caller; this package only moves header+rows through encoding/csv.
package tabfile

import (
	"encoding/csv"
	"fmt"
	"os"
)

type Table struct {
	path string
}

func New(path string) *Table {
	return &Table{path: path}
}

func (t *Table) Path() string { return t.path }

// Exists reports whether the backing file is present. Load treats an absent
// file as an empty table; callers that need to distinguish can ask first.
func (t *Table) Exists() bool {
	_, err := os.Stat(t.path)
	return err == nil
}

// Load reads the whole table. An absent backing file yields a nil header and
// no rows, not an error. The first record is the header; every other record
// is returned as-is, including columns Load knows nothing about.
func (t *Table) Load() (header []string, rows [][]string, err error) {
	f, err := os.Open(t.path)
	if os.IsNotExist(err) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", t.path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	all, err := r.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("read %s: %w", t.path, err)
	}
	if len(all) == 0 {
		return nil, nil, nil
	}
	return all[0], all[1:], nil
}

// Rewrite replaces the whole backing file with header+rows. No locking and
// no write-ahead anything: concurrent writers race and the last overwrite
// wins, which is the stated contract of these stores.
func (t *Table) Rewrite(header []string, rows [][]string) error {
	f, err := os.Create(t.path)
	if err != nil {
		return fmt.Errorf("create %s: %w", t.path, err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", t.path, err)
	}
	if err := w.WriteAll(rows); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", t.path, err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return fmt.Errorf("flush %s: %w", t.path, err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", t.path, err)
	}
	return nil
}

// ColumnIndex maps header names to positions for by-name cell access.
func ColumnIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[name] = i
	}
	return idx
}
