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
	"strings"
)

import (
	sq "github.com/Masterminds/squirrel"

	"github.com/pkg/errors"
)

import (
	"github.com/arana-db/formula/pkg/dialect"
)

const (
	_partialAlias = "partial"
	_defaultName  = "value"
)

type (
	// QueryOption configures the query of a plan.
	QueryOption func(*queryOptions)

	queryOptions struct {
		dimensions []string
		partitions []string
		filters    []filter
	}

	filter struct {
		pred interface{}
		args []interface{}
	}
)

// WithDimensions groups the metric by the columns.
func WithDimensions(columns ...string) QueryOption {
	return func(o *queryOptions) {
		o.dimensions = append(o.dimensions, columns...)
	}
}

// WithPartitions sets the extra columns the partials are computed by, eg: a
// shard key or a day.
func WithPartitions(columns ...string) QueryOption {
	return func(o *queryOptions) {
		o.partitions = append(o.partitions, columns...)
	}
}

// WithFilter filters the rows of the table, pred is anything squirrel accepts
// as a WHERE clause, eg: "status = ?" with args, or sq.Eq.
func WithFilter(pred interface{}, args ...interface{}) QueryOption {
	return func(o *queryOptions) {
		o.filters = append(o.filters, filter{pred: pred, args: args})
	}
}

// Query builds the SQL which computes the metric from the table:
//
//	SELECT dims, merged AS name FROM (
//	  SELECT dims, partials FROM table WHERE filters GROUP BY dims, partitions
//	) AS partial GROUP BY dims
func (p *Plan) Query(table string, opts ...QueryOption) (string, []interface{}, error) {
	if p.mergeErr != nil {
		return "", nil, errors.Wrapf(p.mergeErr, "metric '%s'", p.Name)
	}
	if len(strings.TrimSpace(table)) < 1 {
		return "", nil, errors.New("metric: no table to query")
	}

	var o queryOptions
	for _, it := range opts {
		it(&o)
	}

	d := p.Dialect
	innerDims := make([]string, 0, len(o.dimensions))
	outerDims := make([]string, 0, len(o.dimensions))
	for _, it := range o.dimensions {
		innerDims = append(innerDims, quoteColumn(d, it))
		outerDims = append(outerDims, d.QuoteIdentifier(lastName(it)))
	}

	columns := make([]string, 0, len(innerDims)+len(p.merged.partials))
	columns = append(columns, innerDims...)
	for _, it := range p.merged.partials {
		columns = append(columns, it.String())
	}

	inner := sq.Select(columns...).From(quoteColumn(d, table))
	for _, it := range o.filters {
		inner = inner.Where(it.pred, it.args...)
	}
	if groups := len(innerDims) + len(o.partitions); groups > 0 {
		groupBy := make([]string, 0, groups)
		groupBy = append(groupBy, innerDims...)
		for _, it := range o.partitions {
			groupBy = append(groupBy, quoteColumn(d, it))
		}
		inner = inner.GroupBy(groupBy...)
	}

	name := p.Name
	if len(name) < 1 {
		name = _defaultName
	}
	outer := sq.Select(append(outerDims, p.merged.outer+" AS "+d.QuoteIdentifier(name))...).
		FromSelect(inner, _partialAlias).
		PlaceholderFormat(d.PlaceholderFormat())
	if len(outerDims) > 0 {
		outer = outer.GroupBy(outerDims...)
	}

	query, args, err := outer.ToSql()
	if err != nil {
		return "", nil, errors.Wrapf(err, "cannot build query of metric '%s'", p.Name)
	}
	return query, args, nil
}

func quoteColumn(d *dialect.Dialect, column string) string {
	return d.QuoteIdentifier(strings.Split(column, ".")...)
}

func lastName(column string) string {
	if i := strings.LastIndexByte(column, '.'); i >= 0 {
		return column[i+1:]
	}
	return column
}
