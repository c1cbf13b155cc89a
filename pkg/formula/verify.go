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
	"github.com/pkg/errors"
)

import (
	"github.com/arana-db/formula/pkg/dialect"
	"github.com/arana-db/formula/pkg/formula/ast"
)

// Verify parses the formula and checks that every operator is known by the dialect.
//
// A parse failure returns false with the error of the parser, an unknown
// operator returns false with an *UnknownOperatorError. A blank formula is valid.
func Verify(formula string, d *dialect.Dialect, custom CustomAggregations) (bool, error) {
	return VerifyWith(DefaultParser, formula, d, custom)
}

// VerifyWith is Verify with a specified parser.
func VerifyWith(p Parser, formula string, d *dialect.Dialect, custom CustomAggregations) (bool, error) {
	node, err := p.Parse(formula)
	if err != nil {
		return false, err
	}
	return VerifyNode(node, d, custom)
}

// VerifyNode checks that every operator of the tree is known by the dialect.
// Nested aggregations like SUM(COUNT(x)) are accepted.
func VerifyNode(node ast.Node, d *dialect.Dialect, custom CustomAggregations) (bool, error) {
	v := verifier{
		d:      d,
		custom: custom,
	}
	if !v.visit(node) {
		return false, v.err
	}
	return true, nil
}

type verifier struct {
	d      *dialect.Dialect
	custom CustomAggregations
	err    error
}

func (v *verifier) visit(node ast.Node) bool {
	switch n := node.(type) {
	case nil, *ast.Literal, *ast.Identifier:
		return true
	case *ast.FunctionCall:
		if !v.known(n.Operator) {
			v.err = &UnknownOperatorError{Operator: n.Operator}
			return false
		}
		// operands are never trusted because of their parent, stop at the first failure
		ok := true
		for _, it := range n.Operands {
			ok = ok && v.visit(it)
		}
		return ok
	default:
		v.err = errors.Errorf("unknown formula node type %T", n)
		return false
	}
}

func (v *verifier) known(operator string) bool {
	return isAggregation(operator, v.d, v.custom) || v.d.IsScalarOperator(operator)
}
