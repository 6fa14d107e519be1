// Copyright 2025 The apipoll Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package poller

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/gogama/apipoll/internal/storage"
	"github.com/gogama/apipoll/response"
)

// A Sink persists a successful response.
type Sink interface {
	Save(log zerolog.Logger, resp *response.Response) error
}

// A Preparer is a Sink with setup to do before its job sends the
// request, whatever the outcome of the request.
type Preparer interface {
	Prepare() error
}

// Snapshot overwrites a single JSON file with the latest response.
type Snapshot struct {
	Path string
}

func (s *Snapshot) Save(log zerolog.Logger, resp *response.Response) error {
	v, err := resp.JSON()
	if err != nil {
		return err
	}
	n, err := storage.WriteSnapshot(s.Path, v)
	if err != nil {
		return fmt.Errorf("failed to write snapshot %s: %w", s.Path, err)
	}
	log.Info().Str("file", s.Path).Int("bytes", n).Msgf("Saved results to %s (%d bytes)", s.Path, n)
	return nil
}

// History writes every response to its own timestamped JSON file.
type History struct {
	Files *storage.Timestamped
}

func (h *History) Save(log zerolog.Logger, resp *response.Response) error {
	v, err := resp.JSON()
	if err != nil {
		return err
	}
	path, n, err := h.Files.Write(v)
	if err != nil {
		return err
	}
	log.Info().Str("file", path).Int("bytes", n).Msgf("Saved results to %s (%d bytes)", path, n)
	return nil
}

// Rows appends the array at Field of a JSON response to a CSV file, one
// row per element. A response without such an array appends nothing.
type Rows struct {
	CSV   *storage.CSV
	Field string
}

// Prepare creates the CSV file with its header row if it does not
// exist yet.
func (r *Rows) Prepare() error {
	if err := r.CSV.EnsureHeader(); err != nil {
		return fmt.Errorf("failed to create CSV file %s: %w", r.CSV.Path, err)
	}
	return nil
}

func (r *Rows) Save(log zerolog.Logger, resp *response.Response) error {
	if err := r.Prepare(); err != nil {
		return err
	}
	records := resp.Get(r.Field)
	if !records.IsArray() {
		return nil
	}
	n, err := r.CSV.Append(records.Array())
	if err != nil {
		return fmt.Errorf("failed to append to CSV file %s: %w", r.CSV.Path, err)
	}
	if n > 0 {
		log.Info().Str("file", r.CSV.Path).Int("rows", n).Msgf("Appended %d result(s) to CSV: %s", n, r.CSV.Path)
	}
	return nil
}
