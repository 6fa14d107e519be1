// Copyright 2025 The apipoll Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package storage

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/tidwall/gjson"
)

// A CSV appends result records as rows of a CSV file with a fixed
// column list.
type CSV struct {
	Path    string
	Columns []string
}

// EnsureHeader writes the header row if the file is missing or empty.
func (c *CSV) EnsureHeader() error {
	if fi, err := os.Stat(c.Path); err == nil && fi.Size() > 0 {
		return nil
	}
	f, err := c.open()
	if err != nil {
		return err
	}
	defer func() {
		_ = f.Close()
	}()

	return withLock(f, func() error {
		// Recheck under the lock, another writer may have won the race.
		fi, err := f.Stat()
		if err != nil {
			return err
		}
		if fi.Size() > 0 {
			return nil
		}
		w := csv.NewWriter(f)
		if err := w.Write(c.Columns); err != nil {
			return err
		}
		w.Flush()
		return w.Error()
	})
}

// Append writes one row per record, holding an exclusive lock for the
// whole append. Each record should be a JSON object; for anything else
// the row is all empty cells. It returns the number of rows written.
func (c *CSV) Append(records []gjson.Result) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}
	f, err := c.open()
	if err != nil {
		return 0, err
	}
	defer func() {
		_ = f.Close()
	}()

	n := 0
	err = withLock(f, func() error {
		w := csv.NewWriter(f)
		for _, r := range records {
			if err := w.Write(c.Row(r)); err != nil {
				return err
			}
			n++
		}
		w.Flush()
		return w.Error()
	})
	return n, err
}

// Row maps a record onto the columns.
func (c *CSV) Row(r gjson.Result) []string {
	row := make([]string, len(c.Columns))
	if !r.IsObject() {
		return row
	}
	for i, col := range c.Columns {
		row[i] = Cell(r.Get(gjson.Escape(col)))
	}
	return row
}

// Cell renders one value: missing and null become empty, strings,
// numbers and booleans are written as is, and objects and arrays are
// written as compact JSON.
func Cell(v gjson.Result) string {
	switch v.Type {
	case gjson.Null:
		return ""
	case gjson.String:
		return v.Str
	case gjson.Number:
		return v.Raw
	case gjson.True:
		return "true"
	case gjson.False:
		return "false"
	default:
		var buf bytes.Buffer
		if err := json.Compact(&buf, []byte(v.Raw)); err != nil {
			return v.Raw
		}
		return buf.String()
	}
}

func (c *CSV) open() (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(c.Path), dirPerm); err != nil {
		return nil, err
	}
	return os.OpenFile(c.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, filePerm)
}
