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
	"github.com/arana-db/formula/pkg/formula/ast"
)

// RewriteOuter replaces every operand of every aggregation call by the next
// placeholder, eg: SUM(a) + COUNT(b) with [x1, x2] => SUM(x1) + COUNT(x2).
//
// Aggregations are dialect.StandardAggregations plus the custom ones.
// The tree is modified in place and returned, use ast.Clone to keep the
// original. If the substitutions run out, it panics with an *ExhaustedError.
func RewriteOuter(node ast.Node, custom CustomAggregations, subs Substitutions) ast.Node {
	rw := rewriter{
		custom: custom,
		subs:   subs,
	}
	return rw.visit(node)
}

type rewriter struct {
	custom CustomAggregations
	subs   Substitutions
	slot   int
}

func (rw *rewriter) visit(node ast.Node) ast.Node {
	f, ok := node.(*ast.FunctionCall)
	if !ok {
		return node
	}

	if isStandardAggregation(f.Operator, rw.custom) {
		for i := range f.Operands {
			next, ok := rw.subs.Next()
			if !ok {
				panic(&ExhaustedError{Operator: f.Operator, Slot: rw.slot})
			}
			f.Operands[i] = ast.NewIdentifier(next)
			rw.slot++
		}
		return f
	}

	for i := range f.Operands {
		f.Operands[i] = rw.visit(f.Operands[i])
	}
	return f
}

// CountOperandSlots returns how many substitutions RewriteOuter consumes for the tree.
func CountOperandSlots(node ast.Node, custom CustomAggregations) int {
	f, ok := node.(*ast.FunctionCall)
	if !ok {
		return 0
	}
	if isStandardAggregation(f.Operator, custom) {
		return len(f.Operands)
	}
	var n int
	for _, it := range f.Operands {
		n += CountOperandSlots(it, custom)
	}
	return n
}
