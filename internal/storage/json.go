// Copyright 2025 The apipoll Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const (
	dirPerm  = 0o755
	filePerm = 0o644
)

// StampLayout formats the timestamp in timestamped snapshot names.
const StampLayout = "20060102_150405"

// WriteSnapshot encodes v as compact JSON and overwrites path with it,
// creating parent directories as needed. No lock is taken: concurrent
// writers race and the last write wins.
func WriteSnapshot(path string, v interface{}) (int, error) {
	b, err := encode(v, "")
	if err != nil {
		return 0, err
	}
	if err = os.MkdirAll(filepath.Dir(path), dirPerm); err != nil {
		return 0, err
	}
	if err = os.WriteFile(path, b, filePerm); err != nil {
		return 0, err
	}
	return len(b), nil
}

// Timestamped writes pretty-printed JSON snapshots named
// <Prefix>_<YYYYMMDD_HHMMSS>.json under Dir.
type Timestamped struct {
	Dir    string
	Prefix string
	// Now supplies the timestamp. Nil means time.Now.
	Now func() time.Time
}

// Path returns the file name a snapshot taken at t would get.
func (ts *Timestamped) Path(t time.Time) string {
	return filepath.Join(ts.Dir, ts.Prefix+"_"+t.Format(StampLayout)+".json")
}

// Write encodes v and writes it to a new timestamped file under an
// exclusive lock. It returns the path written and its size.
func (ts *Timestamped) Write(v interface{}) (string, int, error) {
	now := time.Now
	if ts.Now != nil {
		now = ts.Now
	}
	b, err := encode(v, "    ")
	if err != nil {
		return "", 0, err
	}
	if err = os.MkdirAll(ts.Dir, dirPerm); err != nil {
		return "", 0, err
	}

	path := ts.Path(now())
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY, filePerm)
	if err != nil {
		return "", 0, err
	}
	defer func() {
		_ = f.Close()
	}()

	err = withLock(f, func() error {
		if err := f.Truncate(0); err != nil {
			return err
		}
		_, err := f.Write(b)
		return err
	})
	if err != nil {
		return "", 0, fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, len(b), nil
}

// encode marshals v without escaping HTML characters, so that URLs and
// slashes are kept readable, and without a trailing newline.
func encode(v interface{}, indent string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if indent != "" {
		enc.SetIndent("", indent)
	}
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
