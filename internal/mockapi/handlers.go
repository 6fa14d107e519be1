// Copyright 2025 The apipoll Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package mockapi

import (
	"encoding/json"
	"io"
	"math"
	"math/rand/v2"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/tidwall/gjson"
)

const (
	defaultLimit  = 100
	defaultOffset = 0
)

type reading struct {
	Sensor string  `json:"sensor"`
	Value  float64 `json:"value"`
	TS     int64   `json:"ts"`
}

type point struct {
	Timestamp int64   `json:"timestamp"`
	Value     float64 `json:"value"`
}

type details struct {
	ThresholdValue     json.Number `json:"threshold_value"`
	ComparisonOperator string      `json:"comparison_operator"`
}

type result struct {
	ID                  string  `json:"id"`
	ComponentID         string  `json:"component_id"`
	ComponentCategory   string  `json:"component_category"`
	PassPassID          string  `json:"pass_pass_id"`
	PassOnlineTimestamp int64   `json:"pass_online_timestamp"`
	PassDirection       string  `json:"pass_direction"`
	PassAvgSpeed        float64 `json:"pass_avg_speed"`
	Values              []point `json:"values"`
	Details             details `json:"details"`
}

type searchResponse struct {
	Limit   int64    `json:"limit"`
	Offset  int64    `json:"offset"`
	Results []result `json:"results"`
	Total   *int64   `json:"total,omitempty"`
}

// cannedResults is returned by every timeseries search.
var cannedResults = []result{
	{
		ID:                  "res_001",
		ComponentID:         "comp_GT_001",
		ComponentCategory:   "GuideTyre",
		PassPassID:          "pass_1001",
		PassOnlineTimestamp: 1658831600000,
		PassDirection:       "Forward",
		PassAvgSpeed:        85.3,
		Values: []point{
			{Timestamp: 1658831600000, Value: 12.34},
			{Timestamp: 1658831610000, Value: 12.56},
		},
		Details: details{ThresholdValue: "15.0", ComparisonOperator: "LessThan"},
	},
	{
		ID:                  "res_002",
		ComponentID:         "comp_GT_002",
		ComponentCategory:   "GuideTyre",
		PassPassID:          "pass_1002",
		PassOnlineTimestamp: 1658831700000,
		PassDirection:       "Backward",
		PassAvgSpeed:        80.1,
		Values: []point{
			{Timestamp: 1658831700000, Value: 14.01},
			{Timestamp: 1658831710000, Value: 13.88},
		},
		Details: details{ThresholdValue: "15.0", ComparisonOperator: "LessThan"},
	},
}

var errInvalidJSON = map[string]string{"error": "invalid_json"}

func randomReading() float64 {
	return math.Round((20+rand.Float64()*10)*100) / 100
}

func (s *Server) results(c echo.Context) error {
	return c.JSON(http.StatusOK, reading{
		Sensor: "temp",
		Value:  s.reading(),
		TS:     s.now().Unix(),
	})
}

func (s *Server) set(c echo.Context) error {
	body, ok, err := jsonBody(c)
	if err != nil {
		return err
	}
	if !ok {
		return c.JSON(http.StatusBadRequest, errInvalidJSON)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"ok":       true,
		"received": json.RawMessage(body),
	})
}

func (s *Server) search(c echo.Context) error {
	body, ok, err := jsonBody(c)
	if err != nil {
		return err
	}
	if !ok {
		return c.JSON(http.StatusBadRequest, errInvalidJSON)
	}

	req := gjson.ParseBytes(body)
	resp := searchResponse{
		Limit:   intOr(req.Get("limit"), defaultLimit),
		Offset:  intOr(req.Get("offset"), defaultOffset),
		Results: cannedResults,
	}
	if truthy(req.Get("total")) {
		total := resp.Offset + int64(len(resp.Results))
		resp.Total = &total
	}
	return c.JSON(http.StatusOK, resp)
}

// jsonBody reads the request body and reports whether it is valid JSON.
func jsonBody(c echo.Context) ([]byte, bool, error) {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return nil, false, err
	}
	return body, gjson.ValidBytes(body), nil
}

// intOr returns r as an integer, truncating fractions and parsing
// numeric strings, or def when r is absent or null.
func intOr(r gjson.Result, def int64) int64 {
	if !r.Exists() || r.Type == gjson.Null {
		return def
	}
	return r.Int()
}

// truthy reports whether a request flag is set. Absent, null, false,
// zero, "", "0" and empty containers are all unset.
func truthy(r gjson.Result) bool {
	switch r.Type {
	case gjson.Null:
		return false
	case gjson.False:
		return false
	case gjson.True:
		return true
	case gjson.Number:
		return r.Float() != 0
	case gjson.String:
		return r.Str != "" && r.Str != "0"
	default:
		if r.IsArray() {
			return len(r.Array()) > 0
		}
		return len(r.Map()) > 0
	}
}
