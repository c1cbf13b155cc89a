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

package parser

import (
	"strings"
)

import (
	past "github.com/arana-db/parser/ast"
	"github.com/arana-db/parser/format"
	"github.com/arana-db/parser/opcode"
	"github.com/arana-db/parser/test_driver"

	"github.com/pkg/errors"

	"github.com/shopspring/decimal"
)

import (
	"github.com/arana-db/formula/pkg/formula/ast"
)

var _binaryOperators = map[opcode.Op]string{
	opcode.LogicAnd:   "AND",
	opcode.LogicOr:    "OR",
	opcode.LogicXor:   "XOR",
	opcode.EQ:         "=",
	opcode.NE:         "<>",
	opcode.LT:         "<",
	opcode.LE:         "<=",
	opcode.GT:         ">",
	opcode.GE:         ">=",
	opcode.NullEQ:     "<=>",
	opcode.Plus:       "+",
	opcode.Minus:      "-",
	opcode.Mul:        "*",
	opcode.Div:        "/",
	opcode.IntDiv:     "DIV",
	opcode.Mod:        "%",
	opcode.And:        "&",
	opcode.Or:         "|",
	opcode.Xor:        "^",
	opcode.LeftShift:  "<<",
	opcode.RightShift: ">>",
}

// the grammar reuses the binary opcodes for unary '-' and '+'
var _unaryOperators = map[opcode.Op]string{
	opcode.Minus:  "-",
	opcode.Plus:   "+",
	opcode.Not:    "NOT",
	opcode.BitNeg: "~",
}

type convCtx struct{}

func (cc *convCtx) convExpr(expr past.ExprNode) (ast.Node, error) {
	switch node := expr.(type) {
	case *past.BinaryOperationExpr:
		return cc.convBinaryOperationExpr(node)
	case *past.UnaryOperationExpr:
		return cc.convUnaryExpr(node)
	case *past.ParenthesesExpr:
		return cc.convParenthesesExpr(node)
	case *past.ColumnNameExpr:
		return convColumnNameExpr(node), nil
	case *past.AggregateFuncExpr:
		return cc.convAggregateFuncExpr(node)
	case *past.FuncCallExpr:
		return cc.convFuncCallExpr(node)
	case *past.FuncCastExpr:
		return cc.convCastExpr(node)
	case *past.CaseExpr:
		return cc.convCaseExpr(node)
	case *past.IsNullExpr:
		return cc.convIsNullExpr(node)
	case *past.BetweenExpr:
		return cc.convBetweenExpr(node)
	case *past.PatternInExpr:
		return cc.convPatternInExpr(node)
	case *past.PatternLikeExpr:
		return cc.convPatternLikeExpr(node)
	case *past.PatternRegexpExpr:
		return cc.convRegexpExpr(node)
	case *test_driver.ParamMarkerExpr:
		return nil, errors.New("bind variable '?' is not supported in a formula")
	case past.ValueExpr:
		return cc.convValueExpr(node)
	default:
		return nil, errors.Errorf("unsupported expression type %T", node)
	}
}

func (cc *convCtx) convList(exprs []past.ExprNode) ([]ast.Node, error) {
	ret := make([]ast.Node, 0, len(exprs))
	for _, it := range exprs {
		next, err := cc.convExpr(it)
		if err != nil {
			return nil, err
		}
		ret = append(ret, next)
	}
	return ret, nil
}

func (cc *convCtx) convBinaryOperationExpr(expr *past.BinaryOperationExpr) (ast.Node, error) {
	op, ok := _binaryOperators[expr.Op]
	if !ok {
		return nil, errors.Errorf("unsupported operator '%s'", expr.Op.String())
	}

	left, err := cc.convExpr(expr.L)
	if err != nil {
		return nil, err
	}
	right, err := cc.convExpr(expr.R)
	if err != nil {
		return nil, err
	}

	return ast.NewInfix(op, left, right), nil
}

func (cc *convCtx) convUnaryExpr(expr *past.UnaryOperationExpr) (ast.Node, error) {
	op, ok := _unaryOperators[expr.Op]
	if !ok {
		return nil, errors.Errorf("unsupported unary operator '%s'", expr.Op.String())
	}

	inner, err := cc.convExpr(expr.V)
	if err != nil {
		return nil, err
	}

	return ast.NewPrefix(op, inner), nil
}

func (cc *convCtx) convParenthesesExpr(expr *past.ParenthesesExpr) (ast.Node, error) {
	inner, err := cc.convExpr(expr.Expr)
	if err != nil {
		return nil, err
	}
	// only calls remember their parentheses, a grouped leaf is returned bare
	if f, ok := inner.(*ast.FunctionCall); ok {
		f.Grouped = true
	}
	return inner, nil
}

func convColumnNameExpr(expr *past.ColumnNameExpr) ast.Node {
	var (
		name = expr.Name
		path = make([]string, 0, 3)
	)
	if schema := name.Schema.O; len(schema) > 0 {
		path = append(path, schema)
	}
	if table := name.Table.O; len(table) > 0 {
		path = append(path, table)
	}
	path = append(path, name.Name.O)
	return ast.NewIdentifier(path...)
}

func (cc *convCtx) convAggregateFuncExpr(expr *past.AggregateFuncExpr) (ast.Node, error) {
	f := ast.NewCall(expr.F)
	f.Distinct = expr.Distinct

	// COUNT(*) arrives as the escaped column `*`, see escapeReferences
	args, err := cc.convList(expr.Args)
	if err != nil {
		return nil, err
	}
	f.Operands = args
	return f, nil
}

func (cc *convCtx) convFuncCallExpr(expr *past.FuncCallExpr) (ast.Node, error) {
	args, err := cc.convList(expr.Args)
	if err != nil {
		return nil, err
	}
	return ast.NewCall(expr.FnName.O, args...), nil
}

func (cc *convCtx) convCastExpr(expr *past.FuncCastExpr) (ast.Node, error) {
	if expr.FunctionType == past.CastBinaryOperator {
		return nil, errors.New("unsupported cast operator 'BINARY'")
	}

	src, err := cc.convExpr(expr.Expr)
	if err != nil {
		return nil, err
	}

	var cast strings.Builder
	expr.Tp.FormatAsCastType(&cast, true)

	return &ast.FunctionCall{
		Operator: "CAST",
		Operands: []ast.Node{src},
		Notation: ast.NotationCast,
		CastType: strings.ToUpper(cast.String()),
	}, nil
}

func (cc *convCtx) convCaseExpr(expr *past.CaseExpr) (ast.Node, error) {
	f := &ast.FunctionCall{
		Operator: "CASE",
		Notation: ast.NotationCase,
	}

	if expr.Value != nil {
		value, err := cc.convExpr(expr.Value)
		if err != nil {
			return nil, err
		}
		f.HasValue = true
		f.Operands = append(f.Operands, value)
	}

	for _, it := range expr.WhenClauses {
		when, err := cc.convExpr(it.Expr)
		if err != nil {
			return nil, err
		}
		then, err := cc.convExpr(it.Result)
		if err != nil {
			return nil, err
		}
		f.Operands = append(f.Operands, when, then)
	}

	if expr.ElseClause != nil {
		elseBlock, err := cc.convExpr(expr.ElseClause)
		if err != nil {
			return nil, err
		}
		f.HasElse = true
		f.Operands = append(f.Operands, elseBlock)
	}

	return f, nil
}

func (cc *convCtx) convIsNullExpr(expr *past.IsNullExpr) (ast.Node, error) {
	inner, err := cc.convExpr(expr.Expr)
	if err != nil {
		return nil, err
	}
	op := "IS NULL"
	if expr.Not {
		op = "IS NOT NULL"
	}
	return &ast.FunctionCall{
		Operator: op,
		Operands: []ast.Node{inner},
		Notation: ast.NotationPostfix,
	}, nil
}

func (cc *convCtx) convBetweenExpr(expr *past.BetweenExpr) (ast.Node, error) {
	operands, err := cc.convList([]past.ExprNode{expr.Expr, expr.Left, expr.Right})
	if err != nil {
		return nil, err
	}
	op := "BETWEEN"
	if expr.Not {
		op = "NOT BETWEEN"
	}
	return &ast.FunctionCall{
		Operator: op,
		Operands: operands,
		Notation: ast.NotationBetween,
	}, nil
}

func (cc *convCtx) convPatternInExpr(expr *past.PatternInExpr) (ast.Node, error) {
	if expr.Sel != nil {
		return nil, errors.New("subquery is not supported in a formula")
	}
	operands, err := cc.convList(append([]past.ExprNode{expr.Expr}, expr.List...))
	if err != nil {
		return nil, err
	}
	op := "IN"
	if expr.Not {
		op = "NOT IN"
	}
	return &ast.FunctionCall{
		Operator: op,
		Operands: operands,
		Notation: ast.NotationIn,
	}, nil
}

func (cc *convCtx) convPatternLikeExpr(expr *past.PatternLikeExpr) (ast.Node, error) {
	operands, err := cc.convList([]past.ExprNode{expr.Expr, expr.Pattern})
	if err != nil {
		return nil, err
	}
	op := "LIKE"
	if expr.Not {
		op = "NOT LIKE"
	}
	return &ast.FunctionCall{
		Operator: op,
		Operands: operands,
		Notation: ast.NotationInfix,
	}, nil
}

func (cc *convCtx) convRegexpExpr(expr *past.PatternRegexpExpr) (ast.Node, error) {
	operands, err := cc.convList([]past.ExprNode{expr.Expr, expr.Pattern})
	if err != nil {
		return nil, err
	}
	op := "REGEXP"
	if expr.Not {
		op = "NOT REGEXP"
	}
	return &ast.FunctionCall{
		Operator: op,
		Operands: operands,
		Notation: ast.NotationInfix,
	}, nil
}

func (cc *convCtx) convValueExpr(expr past.ValueExpr) (ast.Node, error) {
	switch val := expr.GetValue().(type) {
	case nil, int64, uint64, float32, float64, string:
		return ast.NewLiteral(val), nil
	case *test_driver.MyDecimal:
		text := val.String()
		d, err := decimal.NewFromString(text)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid decimal '%s'", text)
		}
		return &ast.Literal{Value: d, Text: text}, nil
	default:
		// hex, bit and other literals keep the text of the underlying parser
		var sb strings.Builder
		if err := expr.Restore(format.NewRestoreCtx(format.DefaultRestoreFlags, &sb)); err != nil {
			return nil, errors.WithStack(err)
		}
		return &ast.Literal{Value: val, Text: sb.String()}, nil
	}
}
