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

package compile

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
)

import (
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

import (
	"github.com/arana-db/formula/testdata"
)

func TestRun(t *testing.T) {
	var stdout, stderr bytes.Buffer
	err := run(context.Background(), &stdout, &stderr, &options{
		catalog:    testdata.Path("fake_catalog.yaml"),
		table:      "orders",
		dimensions: []string{"region"},
		partitions: []string{"day"},
		filter:     "status = 'paid'",
	})
	require.NoError(t, err)
	assert.Empty(t, stderr.String())

	output := stdout.String()
	for _, it := range []string{"METRIC", "revenue", "avg_price", "p_avg_discount", "approx_users", "postgres", "mysql"} {
		assert.Contains(t, output, it)
	}
	assert.Contains(t, output, "-- revenue\nSELECT region, SUM(")
	assert.Contains(t, output, "FROM orders WHERE status = 'paid' GROUP BY region, day) AS partial GROUP BY region;")
	assert.Contains(t, output, "-- approx_users: ")
}

func TestRun_SelectMetrics(t *testing.T) {
	var stdout, stderr bytes.Buffer
	err := run(context.Background(), &stdout, &stderr, &options{
		catalog: testdata.Path("fake_catalog.yaml"),
		names:   []string{"REVENUE"},
	})
	require.NoError(t, err)
	assert.Contains(t, stdout.String(), "revenue")
	assert.NotContains(t, stdout.String(), "avg_price")
	assert.NotContains(t, stdout.String(), "-- revenue")

	err = run(context.Background(), &stdout, &stderr, &options{
		catalog: testdata.Path("fake_catalog.yaml"),
		names:   []string{"nothing"},
	})
	assert.EqualError(t, err, "no such metric 'nothing'")
}

func TestRun_Stats(t *testing.T) {
	var stdout, stderr bytes.Buffer
	err := run(context.Background(), &stdout, &stderr, &options{
		catalog: testdata.Path("fake_catalog.yaml"),
		stats:   true,
	})
	require.NoError(t, err)
	assert.Contains(t, stdout.String(), "formula_compile_total")
	assert.Contains(t, stdout.String(), "result=ok")
	assert.Contains(t, stdout.String(), "formula_plan_cache_size")
}

func TestRun_Rejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
dialect: mysql
metrics:
  - name: ok
    formula: SUM(amount)
  - name: bad
    formula: FOO(amount)
`), 0o644))

	var stdout, stderr bytes.Buffer
	err := run(context.Background(), &stdout, &stderr, &options{catalog: path})
	assert.EqualError(t, err, "1 of 2 metrics cannot be compiled")
	assert.Contains(t, stdout.String(), "REJECTED")
	assert.Contains(t, stderr.String(), "metric 'bad': Unknown operator: FOO")
}

func TestRun_InvalidCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte("dialect: oracle\nmetrics:\n  - name: x\n    formula: SUM(x)\n"), 0o644))

	var stdout, stderr bytes.Buffer
	err := run(context.Background(), &stdout, &stderr, &options{catalog: path})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid catalog")

	err = run(context.Background(), &stdout, &stderr, &options{catalog: filepath.Join(t.TempDir(), "missing.yaml")})
	assert.Error(t, err)
}

func TestRun_Trace(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
trace:
  type: jaeger
  address: http://127.0.0.1:1/api/traces
metrics:
  - name: gmv
    formula: SUM(amount)
`), 0o644))

	var stdout, stderr bytes.Buffer
	err := run(context.Background(), &stdout, &stderr, &options{
		catalog:     path,
		traceparent: "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01",
	})
	require.NoError(t, err)
	assert.Contains(t, stdout.String(), "gmv")
}
