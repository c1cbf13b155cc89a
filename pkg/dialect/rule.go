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

package dialect

import (
	"strings"
)

import (
	"github.com/arana-db/formula/pkg/formula/ast"
)

const (
	AggrSum   = "SUM"
	AggrCount = "COUNT"
	AggrMin   = "MIN"
	AggrMax   = "MAX"
	AggrAvg   = "AVG"
)

// StandardAggregations are the aggregations every built-in dialect supports.
// The outer rewrite has no dialect at hand and recognizes these names only,
// others have to be passed as custom aggregations.
var StandardAggregations = []string{AggrSum, AggrCount, AggrMin, AggrMax, AggrAvg}

var _standardAggregations = func() map[string]struct{} {
	m := make(map[string]struct{}, len(StandardAggregations))
	for _, it := range StandardAggregations {
		m[it] = struct{}{}
	}
	return m
}()

// IsStandardAggregation returns true if the name is one of StandardAggregations.
func IsStandardAggregation(name string) bool {
	_, ok := _standardAggregations[strings.ToUpper(name)]
	return ok
}

// AggregationRule expands the operands of an aggregation call into the
// inner expressions which are computed per partition.
// A rule must be pure, it is shared by concurrent compilations.
type AggregationRule func(operands []string) []string

// Identity returns a rule which keeps the call as it is, eg: SUM(x) => [SUM(x)].
func Identity(name string) AggregationRule {
	name = strings.ToUpper(name)
	return func(operands []string) []string {
		return []string{call(name, operands...)}
	}
}

// Avg splits AVG(x) into [SUM(x), COUNT(x)].
func Avg(operands []string) []string {
	return []string{
		call(AggrSum, operands...),
		call(AggrCount, operands...),
	}
}

// Variance splits the variance family, eg: STDDEV(x) => [SUM(x), SUM((x) * (x)), COUNT(x)].
func Variance(operands []string) []string {
	squares := make([]string, 0, len(operands))
	for _, it := range operands {
		squares = append(squares, "("+it+") * ("+it+")")
	}
	return []string{
		call(AggrSum, operands...),
		call(AggrSum, squares...),
		call(AggrCount, operands...),
	}
}

// MergeRule combines the partial columns produced by an AggregationRule into
// the final value, eg: the partials [s, c] of AVG merge into SUM(s) / SUM(c).
type MergeRule func(partials []ast.Node) ast.Node

// Reaggregate returns a rule which applies the aggregation again on the partial.
func Reaggregate(name string) MergeRule {
	name = strings.ToUpper(name)
	return func(partials []ast.Node) ast.Node {
		return ast.NewCall(name, partials...)
	}
}

// MergeAvg merges the partials of Avg.
func MergeAvg(partials []ast.Node) ast.Node {
	return ratio(sum(partials[0]), sum(partials[1]))
}

// MergeVariance returns the merge of the partials of Variance, the sample or
// the population variance, and its square root when sqrt.
func MergeVariance(sample, sqrt bool) MergeRule {
	return func(partials []ast.Node) ast.Node {
		s := func() ast.Node { return sum(partials[0]) }
		s2 := func() ast.Node { return sum(partials[1]) }
		c := func() ast.Node { return sum(partials[2]) }

		var ret ast.Node
		if sample {
			// (s2 - s*s/c) / (c-1)
			ret = ratio(
				ast.NewInfix("-", s2(), ratio(ast.NewInfix("*", s(), s()), c())),
				ast.NewInfix("-", c(), ast.NewLiteral(1)),
			)
		} else {
			// s2/c - (s/c)^2
			ret = ast.NewInfix("-", ratio(s2(), c()), ast.NewInfix("*", ratio(s(), c()), ratio(s(), c())))
		}
		if sqrt {
			ret = ast.NewCall("SQRT", ret)
		}
		return ret
	}
}

func sum(partial ast.Node) ast.Node {
	return ast.NewCall(AggrSum, ast.Clone(partial))
}

// ratio divides as decimals, integer division truncates on some databases.
func ratio(num, den ast.Node) ast.Node {
	return ast.NewInfix("/", ast.NewInfix("*", num, &ast.Literal{Value: 1.0, Text: "1.0"}), den)
}

func call(name string, operands ...string) string {
	var sb strings.Builder
	sb.WriteString(name)
	sb.WriteByte('(')
	for i, it := range operands {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(it)
	}
	sb.WriteByte(')')
	return sb.String()
}
