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

package config_test

import (
	"strings"
	"testing"
)

import (
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

import (
	"github.com/arana-db/formula/pkg/config"
	"github.com/arana-db/formula/pkg/dialect"
	"github.com/arana-db/formula/pkg/metric"
	"github.com/arana-db/formula/testdata"
)

var FakeCatalogPath = testdata.Path("fake_catalog.yaml")

func TestLoad(t *testing.T) {
	conf, err := config.Load(FakeCatalogPath)
	require.NoError(t, err)
	require.NotNil(t, conf)

	assert.Equal(t, config.KindMetricCatalog, conf.Kind)
	assert.Equal(t, "1.0", conf.APIVersion)
	assert.Equal(t, map[string]interface{}{"name": "sales-metrics"}, conf.Metadata)
	assert.Equal(t, "postgres", conf.Dialect)
	assert.Equal(t, 256, conf.CacheSize)
	assert.Equal(t, -1, conf.Logging.LogLevel)
	assert.Equal(t, "formula.log", conf.Logging.LogName)
	require.Len(t, conf.Metrics, 4)
	assert.Equal(t, "total paid amount", conf.Metrics[0].Description)

	d, err := conf.DefaultDialect()
	require.NoError(t, err)
	assert.Same(t, dialect.Postgres, d)

	assert.NoError(t, config.Validate(conf))
}

func TestLoad_NotExist(t *testing.T) {
	_, err := config.Load(testdata.Path("not_exist.yaml"))
	assert.Error(t, err)
}

func TestDefinitions(t *testing.T) {
	conf, err := config.Load(FakeCatalogPath)
	require.NoError(t, err)

	defs := conf.Definitions()
	require.Len(t, defs, 4)
	assert.Equal(t, metric.Definition{Name: "revenue", Formula: "SUM(amount)"}, defs[0])
	assert.Equal(t, "mysql", defs[2].Dialect)
	assert.Equal(t, []string{"APPROX_COUNT_DISTINCT"}, defs[3].CustomAggregations)

	m, ok := conf.Lookup("AVG_PRICE")
	assert.True(t, ok)
	assert.Equal(t, "SUM(price) / COUNT(*)", m.Formula)

	_, ok = conf.Lookup("nothing")
	assert.False(t, ok)
}

func TestDecode_Defaults(t *testing.T) {
	var conf config.Catalog
	err := config.NewDecoder(strings.NewReader(`
metrics:
  - name: total
    formula: SUM(amount)
`)).Decode(&conf)
	require.NoError(t, err)

	assert.Equal(t, config.KindMetricCatalog, conf.Kind)
	assert.Equal(t, "mysql", conf.Dialect)
	assert.Equal(t, 10, conf.Logging.LogMaxSize)
	assert.Equal(t, "compile.log", conf.Logging.CompileLogName)
	assert.Nil(t, conf.Trace)
	assert.NoError(t, config.Validate(&conf))
}

func TestDecode_Trace(t *testing.T) {
	var conf config.Catalog
	err := config.NewDecoder(strings.NewReader(`
trace:
  address: http://localhost:14268/api/traces
metrics:
  - name: total
    formula: SUM(amount)
`)).Decode(&conf)
	require.NoError(t, err)

	require.NotNil(t, conf.Trace)
	assert.Equal(t, "jaeger", conf.Trace.Type)
	assert.Equal(t, "http://localhost:14268/api/traces", conf.Trace.Address)
	assert.NoError(t, config.Validate(&conf))
}

func TestValidate(t *testing.T) {
	type tt struct {
		name string
		yaml string
	}

	for _, it := range []tt{
		{"no metrics", "dialect: mysql"},
		{"unknown dialect", "dialect: oracle\nmetrics:\n  - {name: a, formula: SUM(a)}"},
		{"unknown metric dialect", "metrics:\n  - {name: a, formula: SUM(a), dialect: db2}"},
		{"no formula", "metrics:\n  - {name: a}"},
		{"no name", "metrics:\n  - {formula: SUM(a)}"},
		{"wrong kind", "kind: ConfigMap\nmetrics:\n  - {name: a, formula: SUM(a)}"},
		{"duplicated", "metrics:\n  - {name: a, formula: SUM(a)}\n  - {name: A, formula: SUM(b)}"},
		{"blank custom aggregation", "metrics:\n  - {name: a, formula: SUM(a), custom_aggregations: ['']}"},
		{"unknown trace type", "trace: {type: zipkin, address: 'http://localhost:9411'}\nmetrics:\n  - {name: a, formula: SUM(a)}"},
		{"no trace address", "trace: {type: jaeger}\nmetrics:\n  - {name: a, formula: SUM(a)}"},
	} {
		t.Run(it.name, func(t *testing.T) {
			var conf config.Catalog
			require.NoError(t, config.NewDecoder(strings.NewReader(it.yaml)).Decode(&conf))
			assert.Error(t, config.Validate(&conf))
		})
	}
}

func TestDecode_Malformed(t *testing.T) {
	var conf config.Catalog
	err := config.NewDecoder(strings.NewReader("metrics: [")).Decode(&conf)
	assert.Error(t, err)
}
