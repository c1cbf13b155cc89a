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

package metric

import (
	"context"
	"testing"
)

import (
	sq "github.com/Masterminds/squirrel"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

import (
	"github.com/arana-db/formula/pkg/dialect"
)

func compile(t *testing.T, def Definition) *Plan {
	plan, err := newCompiler(t).Compile(context.Background(), def)
	require.NoError(t, err)
	return plan
}

func TestQuery(t *testing.T) {
	plan := compile(t, Definition{Name: "avg_amount", Formula: "SUM(amount) / COUNT(*)"})

	query, args, err := plan.Query("orders",
		WithDimensions("region"),
		WithPartitions("day"),
		WithFilter("status = ?", "paid"),
	)
	require.NoError(t, err)

	m1, m2 := alias("_m", 1, "SUM(amount)"), alias("_m", 2, "COUNT(*)")
	expect := "SELECT region, SUM(" + m1 + ") / SUM(" + m2 + ") AS avg_amount FROM (" +
		"SELECT region, SUM(amount) AS " + m1 + ", COUNT(*) AS " + m2 + " FROM orders WHERE status = ? GROUP BY region, day" +
		") AS partial GROUP BY region"
	assert.Equal(t, expect, query)
	assert.Equal(t, []interface{}{"paid"}, args)
}

func TestQuery_Postgres(t *testing.T) {
	plan := compile(t, Definition{Name: "avg_price", Formula: "AVG(price)", Dialect: dialect.NamePostgres})

	query, args, err := plan.Query("sales.orders",
		WithPartitions("shard_id"),
		WithFilter(sq.Eq{"status": "paid"}),
		WithFilter("price > ?", 0),
	)
	require.NoError(t, err)

	m1, m2 := alias("_m", 1, "SUM(price)"), alias("_m", 2, "COUNT(price)")
	expect := "SELECT SUM(" + m1 + ") * 1.0 / SUM(" + m2 + ") AS avg_price FROM (" +
		"SELECT SUM(price) AS " + m1 + ", COUNT(price) AS " + m2 + " FROM sales.orders WHERE status = $1 AND price > $2 GROUP BY shard_id" +
		") AS partial"
	assert.Equal(t, expect, query)
	assert.Equal(t, []interface{}{"paid", 0}, args)
}

func TestQuery_QuotedColumns(t *testing.T) {
	plan := compile(t, Definition{Name: "order", Formula: "SUM(`order`.amount) + AVG(`order`.amount)"})

	query, _, err := plan.Query("order", WithDimensions("o.group"))
	require.NoError(t, err)

	m1, m2 := alias("_m", 1, "SUM(`order`.amount)"), alias("_m", 2, "COUNT(`order`.amount)")
	expect := "SELECT `group`, SUM(" + m1 + ") + SUM(" + m1 + ") * 1.0 / SUM(" + m2 + ") AS `order` FROM (" +
		"SELECT o.`group`, SUM(`order`.amount) AS " + m1 + ", COUNT(`order`.amount) AS " + m2 + " FROM `order` GROUP BY o.`group`" +
		") AS partial GROUP BY `group`"
	assert.Equal(t, expect, query)
}

func TestQuery_NotMergeable(t *testing.T) {
	for _, def := range []Definition{
		{Name: "users", Formula: "COUNT(DISTINCT user_id)"},
		{Name: "median", Formula: "MEDIAN(price)", CustomAggregations: []string{"median"}},
		{Name: "double", Formula: "amount * 2"},
		{Name: "nested", Formula: "SUM(COUNT(amount))"},
	} {
		t.Run(def.Name, func(t *testing.T) {
			plan := compile(t, def)
			assert.ErrorIs(t, plan.Mergeable(), ErrNotMergeable)

			_, _, err := plan.Query("orders")
			assert.ErrorIs(t, err, ErrNotMergeable)
		})
	}
}

func TestQuery_NoTable(t *testing.T) {
	plan := compile(t, Definition{Formula: "SUM(amount)"})
	_, _, err := plan.Query(" ")
	assert.Error(t, err)

	query, _, err := plan.Query("orders")
	require.NoError(t, err)
	m1 := alias("_m", 1, "SUM(amount)")
	assert.Equal(t, "SELECT SUM("+m1+") AS value FROM (SELECT SUM(amount) AS "+m1+" FROM orders) AS partial", query)
}
