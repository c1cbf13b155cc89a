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
	"github.com/pkg/errors"
)

import (
	"github.com/arana-db/formula/pkg/dialect"
	"github.com/arana-db/formula/pkg/formula"
	"github.com/arana-db/formula/pkg/formula/ast"
)

// planMerge expands every aggregation into its partial columns and replaces
// the call by the merge of those columns, eg:
//
//	AVG(price) => partials [SUM(price) AS _m1, COUNT(price) AS _m2], outer SUM(_m1) * 1.0 / SUM(_m2)
//
// Identical partials are computed once.
func planMerge(node ast.Node, d *dialect.Dialect, custom formula.CustomAggregations) (*merged, error) {
	m := merger{
		d:      d,
		custom: custom,
		index:  make(map[string]string),
	}
	outer := m.visit(ast.Clone(node))
	if m.err != nil {
		return nil, m.err
	}
	if len(m.partials) < 1 {
		return nil, errors.Wrap(ErrNotMergeable, "no aggregation in formula")
	}
	return &merged{
		partials: m.partials,
		outer:    d.Render(outer),
	}, nil
}

type merger struct {
	d        *dialect.Dialect
	custom   formula.CustomAggregations
	partials []Projection
	index    map[string]string
	err      error
}

func (m *merger) visit(node ast.Node) ast.Node {
	f, ok := node.(*ast.FunctionCall)
	if !ok || m.err != nil {
		return node
	}

	if m.d.IsAggregation(f.Operator) || m.custom.Contains(f.Operator) {
		ret, err := m.merge(f)
		if err != nil {
			m.err = err
			return f
		}
		if c, ok := ret.(*ast.FunctionCall); ok && f.Grouped {
			c.Grouped = true
		}
		return ret
	}

	for i := range f.Operands {
		f.Operands[i] = m.visit(f.Operands[i])
	}
	return f
}

func (m *merger) merge(f *ast.FunctionCall) (ast.Node, error) {
	if f.Distinct {
		return nil, errors.Wrapf(ErrNotMergeable, "%s(DISTINCT ...)", f.Operator)
	}
	rule, ok := m.d.Aggregation(f.Operator)
	if !ok {
		return nil, errors.Wrapf(ErrNotMergeable, "custom aggregation %s", f.Operator)
	}
	merge, ok := m.d.Merge(f.Operator)
	if !ok {
		return nil, errors.Wrapf(ErrNotMergeable, "no merge rule of %s in dialect %s", f.Operator, m.d)
	}

	operands := make([]string, 0, len(f.Operands))
	for _, it := range f.Operands {
		if len(formula.Extract(it, m.d, m.custom)) > 0 {
			return nil, errors.Wrapf(ErrNotMergeable, "nested aggregation in %s", f.Operator)
		}
		operands = append(operands, m.d.Render(it))
	}

	exprs := rule(operands)
	columns := make([]ast.Node, 0, len(exprs))
	for _, expr := range exprs {
		columns = append(columns, ast.NewIdentifier(m.column(expr)))
	}
	return merge(columns), nil
}

func (m *merger) column(expr string) string {
	if name, ok := m.index[expr]; ok {
		return name
	}
	name := alias("_m", len(m.partials)+1, expr)
	m.index[expr] = name
	m.partials = append(m.partials, Projection{Alias: name, Expression: expr})
	return name
}
