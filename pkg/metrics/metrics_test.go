/*
 * Licensed to the Apache Software Foundation (ASF) under one or more
 * contributor license agreements.  See the NOTICE file distributed with
 * this work for additional information regarding copyright ownership.
 * The ASF licenses this file to You under the Apache License, Version 2.0
 * (the "License"); you may not use this file except in compliance with
 * the License.  You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCache struct {
	size         int
	hits, misses uint64
}

func (f fakeCache) Len() int       { return f.size }
func (f fakeCache) Hits() uint64   { return f.hits }
func (f fakeCache) Misses() uint64 { return f.misses }

func TestCollector_ObserveCompile(t *testing.T) {
	c, err := NewCollector(nil)
	require.NoError(t, err)

	c.ObserveCompile(ResultOK, time.Millisecond)
	c.ObserveCompile(ResultOK, 2*time.Millisecond)
	c.ObserveCompile(ResultRejected, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.compileTotal.WithLabelValues(ResultOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.compileTotal.WithLabelValues(ResultRejected)))
	assert.Equal(t, 0.0, testutil.ToFloat64(c.compileTotal.WithLabelValues(ResultError)))

	n, err := testutil.GatherAndCount(c.Registry(), "formula_compile_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestCollector_Nil(t *testing.T) {
	var c *Collector
	assert.NotPanics(t, func() {
		c.ObserveCompile(ResultOK, time.Second)
	})
}

func TestCollector_DuplicatedRegister(t *testing.T) {
	r := prometheus.NewRegistry()
	_, err := NewCollector(r)
	require.NoError(t, err)

	_, err = NewCollector(r)
	assert.Error(t, err)
	assert.Panics(t, func() {
		MustNewCollector(r)
	})
}

func TestCacheCollector(t *testing.T) {
	c := MustNewCollector(nil)
	require.NoError(t, c.RegisterCache(fakeCache{size: 3, hits: 5, misses: 2}))

	expected := `
		# HELP formula_plan_cache_size Number of cached plans
		# TYPE formula_plan_cache_size gauge
		formula_plan_cache_size 3
		# HELP formula_plan_cache_total Number of plan cache lookups by outcome
		# TYPE formula_plan_cache_total counter
		formula_plan_cache_total{outcome="hit"} 5
		formula_plan_cache_total{outcome="miss"} 2
	`
	err := testutil.GatherAndCompare(c.Registry(), strings.NewReader(expected),
		"formula_plan_cache_size", "formula_plan_cache_total")
	assert.NoError(t, err)
}

func TestCollector_Handler(t *testing.T) {
	c := MustNewCollector(nil)
	c.ObserveCompile(ResultOK, time.Millisecond)

	srv := httptest.NewServer(c.Handler())
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(b), `formula_compile_total{result="ok"} 1`)
}
