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

package formula

import (
	"github.com/arana-db/formula/pkg/dialect"
	"github.com/arana-db/formula/pkg/formula/ast"
)

// Extract returns the text of every aggregation call, in the order they appear.
//
// The operands of a matched call are not visited, so the COUNT(x) of
// SUM(COUNT(x)) is not extracted. Duplicated calls are kept.
func Extract(node ast.Node, d *dialect.Dialect, custom CustomAggregations) []string {
	switch n := node.(type) {
	case *ast.FunctionCall:
		if isAggregation(n.Operator, d, custom) {
			return []string{d.Render(n)}
		}
		var ret []string
		for _, it := range n.Operands {
			ret = append(ret, Extract(it, d, custom)...)
		}
		return ret
	default:
		return nil
	}
}

// ExpandInner is Extract, except a call with a dialect rule is replaced by the
// inner expressions of the rule, eg: AVG(x) => SUM(x), COUNT(x).
//
// A custom aggregation has no rule and a DISTINCT aggregation cannot be
// split into partials, both keep the text of the call.
func ExpandInner(node ast.Node, d *dialect.Dialect, custom CustomAggregations) []string {
	switch n := node.(type) {
	case *ast.FunctionCall:
		if rule, ok := d.Aggregation(n.Operator); ok {
			if n.Distinct {
				return []string{d.Render(n)}
			}
			operands := make([]string, 0, len(n.Operands))
			for _, it := range n.Operands {
				operands = append(operands, d.Render(it))
			}
			return rule(operands)
		}
		if custom.Contains(n.Operator) {
			return []string{d.Render(n)}
		}
		var ret []string
		for _, it := range n.Operands {
			ret = append(ret, ExpandInner(it, d, custom)...)
		}
		return ret
	default:
		return nil
	}
}
