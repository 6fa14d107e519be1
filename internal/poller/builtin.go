// Copyright 2025 The apipoll Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package poller

import (
	"fmt"
	"net/http"
	"path/filepath"
	"sort"

	"github.com/gogama/apipoll/header"
	"github.com/gogama/apipoll/internal/config"
	"github.com/gogama/apipoll/internal/storage"
	"github.com/gogama/apipoll/request"
)

// Names of the built-in jobs.
const (
	Latest       = "latest"
	Timeseries   = "timeseries"
	Hierarchical = "hierarchical"
)

// TimeseriesColumns are the CSV columns of the timeseries job.
var TimeseriesColumns = []string{
	"id",
	"component_id",
	"component_category",
	"pass_pass_id",
	"pass_online_timestamp",
	"pass_direction",
	"pass_avg_speed",
	"values",
	"details",
}

// TimeseriesSearch is the body of a timeseries search request.
type TimeseriesSearch struct {
	ComponentQueries ComponentQueries `json:"component_queries"`
	Query            SearchQuery      `json:"query"`
	Sort             []string         `json:"sort"`
	Limit            int              `json:"limit"`
	Offset           int              `json:"offset,omitempty"`
	Total            bool             `json:"total"`
}

type ComponentQueries struct {
	ComponentCategory []string `json:"component_category"`
}

type SearchQuery struct {
	Range map[string]Range `json:"range"`
}

type Range struct {
	GreaterThanEquals int64 `json:"greater_than_equals,omitempty"`
	LessThan          int64 `json:"less_than,omitempty"`
}

// CanonicalSearch is the search the timeseries job sends: guide tyre
// results since 2022-07-26 10:33 UTC, newest first.
var CanonicalSearch = TimeseriesSearch{
	ComponentQueries: ComponentQueries{ComponentCategory: []string{"GuideTyre"}},
	Query: SearchQuery{Range: map[string]Range{
		"pass_online_timestamp": {GreaterThanEquals: 1658831580000},
	}},
	Sort:  []string{"-pass_online_timestamp"},
	Limit: 500,
	Total: true,
}

func acceptJSON() header.Headers {
	return header.Headers{}.Add("Accept", request.ContentTypeJSON)
}

// Builtin returns the built-in jobs keyed by name, with storage under
// the configured directory.
func Builtin(cfg *config.Config) map[string]Job {
	dir := cfg.Storage.Dir
	return map[string]Job{
		Latest: {
			Name:    Latest,
			Method:  http.MethodGet,
			BaseURL: cfg.API.Base,
			Path:    "api/results",
			Options: request.Options{
				Query:   request.Values{}.Add("sensor", "temp"),
				Headers: acceptJSON(),
			},
			Sinks: []Sink{
				&Snapshot{Path: filepath.Join(dir, "latest.json")},
			},
		},
		Timeseries: {
			Name:    Timeseries,
			Method:  http.MethodPost,
			BaseURL: cfg.API.Base,
			Path:    "results/timeseries/search",
			Options: request.Options{
				JSON:    CanonicalSearch,
				Headers: acceptJSON(),
			},
			Sinks: []Sink{
				&History{Files: &storage.Timestamped{Dir: dir, Prefix: "results_timeseries_search"}},
				&Rows{
					CSV: &storage.CSV{
						Path:    filepath.Join(dir, "results_timeseries_search.csv"),
						Columns: TimeseriesColumns,
					},
					Field: "results",
				},
			},
		},
		Hierarchical: {
			Name:    Hierarchical,
			Method:  http.MethodGet,
			BaseURL: cfg.API.MyJSONServer,
			Path:    "results",
			Options: request.Options{
				Query:   request.Values{}.Add("sensor", "temp"),
				Headers: acceptJSON(),
			},
			Sinks: []Sink{
				&History{Files: &storage.Timestamped{
					Dir:    filepath.Join(dir, "my_json_server"),
					Prefix: "hierarchical_search",
				}},
			},
		},
	}
}

// Select picks jobs by name from all, in the order given. No names
// selects every job, sorted by name.
func Select(all map[string]Job, names ...string) ([]Job, error) {
	if len(names) == 0 {
		for name := range all {
			names = append(names, name)
		}
		sort.Strings(names)
	}

	jobs := make([]Job, 0, len(names))
	for _, name := range names {
		job, ok := all[name]
		if !ok {
			return nil, fmt.Errorf("poller: unknown job %q", name)
		}
		jobs = append(jobs, job)
	}
	return jobs, nil
}
