// Copyright 2025 The apipoll Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package storage

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

var columns = []string{"id", "component_id", "values", "details", "flag", "missing"}

func readCSV(t *testing.T, path string) [][]string {
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestCSV_EnsureHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "results.csv")
	c := &CSV{Path: path, Columns: columns}
	require.NoError(t, c.EnsureHeader())
	require.NoError(t, c.EnsureHeader())
	assert.Equal(t, [][]string{columns}, readCSV(t, path))

	empty := filepath.Join(t.TempDir(), "empty.csv")
	require.NoError(t, os.WriteFile(empty, nil, 0o644))
	c = &CSV{Path: empty, Columns: columns}
	require.NoError(t, c.EnsureHeader())
	assert.Equal(t, [][]string{columns}, readCSV(t, empty))
}

func TestCSV_Append(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.csv")
	c := &CSV{Path: path, Columns: columns}
	require.NoError(t, c.EnsureHeader())

	body := `{"results":[
		{"id":"res_001","component_id":"cmp_1","values":[1, 2.5],"details":{"a": "x/y"},"flag":true,"missing":null},
		{"id":"res_002","component_id":1658831580000,"values":[],"details":{},"flag":false},
		"not an object"
	]}`
	n, err := c.Append(gjson.Get(body, "results").Array())
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	n, err = c.Append(nil)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	assert.Equal(t, [][]string{
		columns,
		{"res_001", "cmp_1", "[1,2.5]", `{"a":"x/y"}`, "true", ""},
		{"res_002", "1658831580000", "[]", "{}", "false", ""},
		{"", "", "", "", "", ""},
	}, readCSV(t, path))
}

func TestCSV_ConcurrentAppend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.csv")
	c := &CSV{Path: path, Columns: []string{"id"}}
	require.NoError(t, c.EnsureHeader())
	records := gjson.Parse(`[{"id":"a"},{"id":"b"},{"id":"c"}]`).Array()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.Append(records)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	rows := readCSV(t, path)
	require.Len(t, rows, 1+8*3)
	for i := 1; i < len(rows); i += 3 {
		assert.Equal(t, [][]string{{"a"}, {"b"}, {"c"}}, rows[i:i+3])
	}
}

func TestCell(t *testing.T) {
	assert.Equal(t, "", Cell(gjson.Get(`{}`, "x")))
	assert.Equal(t, "", Cell(gjson.Get(`{"x":null}`, "x")))
	assert.Equal(t, "a,b", Cell(gjson.Get(`{"x":"a,b"}`, "x")))
	assert.Equal(t, "1e3", Cell(gjson.Get(`{"x":1e3}`, "x")))
	assert.Equal(t, `{"k":[1,2]}`, Cell(gjson.Get(`{"x":{ "k" : [ 1, 2 ] }}`, "x")))
}
