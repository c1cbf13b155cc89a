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

package ast

import (
	"strings"
	"testing"
)

import (
	"github.com/stretchr/testify/assert"
)

type backQuoter struct{}

func (backQuoter) WriteIdentifier(sb *strings.Builder, name string) {
	sb.WriteByte('`')
	sb.WriteString(name)
	sb.WriteByte('`')
}

func (backQuoter) FunctionName(name string) string {
	return strings.ToLower(name)
}

func (backQuoter) WriteString(sb *strings.Builder, value string) {
	WriteQuotedString(sb, value, true)
}

func TestRender(t *testing.T) {
	var (
		amount = NewIdentifier("amount")
		price  = NewIdentifier("t", "price")
	)

	type tt struct {
		name   string
		node   Node
		expect string
	}

	for _, it := range []tt{
		{"nil", nil, ""},
		{"literal", NewLiteral(int64(100)), "100"},
		{"string", NewLiteral("it's"), "'it''s'"},
		{"null", NewLiteral(nil), "NULL"},
		{"identifier", price, "t.price"},
		{"star", NewCall("count", NewIdentifier(Star)), "COUNT(*)"},
		{"reference", NewInfix("*", NewIdentifier("{%1}"), NewIdentifier("{%2}")), "{%1} * {%2}"},
		{"call", NewCall("sum", amount), "SUM(amount)"},
		{"distinct", &FunctionCall{Operator: "COUNT", Operands: []Node{amount}, Distinct: true}, "COUNT(DISTINCT amount)"},
		{"precedence", NewInfix("*", NewInfix("+", amount, price), NewLiteral(2)), "(amount + t.price) * 2"},
		{"no redundant parentheses", NewInfix("+", NewInfix("*", amount, price), NewLiteral(2)), "amount * t.price + 2"},
		{"right associativity", NewInfix("-", amount, NewInfix("-", price, NewLiteral(1))), "amount - (t.price - 1)"},
		{"grouped", &FunctionCall{Operator: "/", Operands: []Node{amount, price}, Notation: NotationInfix, Grouped: true}, "(amount / t.price)"},
		{"negative", NewPrefix("-", NewLiteral(-1)), "- -1"},
		{"not", NewPrefix("not", NewInfix("=", amount, NewLiteral(1))), "NOT amount = 1"},
		{"is null", &FunctionCall{Operator: "IS NULL", Operands: []Node{amount}, Notation: NotationPostfix}, "amount IS NULL"},
		{"between", &FunctionCall{Operator: "BETWEEN", Operands: []Node{amount, NewLiteral(1), NewLiteral(5)}, Notation: NotationBetween}, "amount BETWEEN 1 AND 5"},
		{"in", &FunctionCall{Operator: "NOT IN", Operands: []Node{amount, NewLiteral(1), NewLiteral(2)}, Notation: NotationIn}, "amount NOT IN (1, 2)"},
		{"cast", &FunctionCall{Operator: "CAST", Operands: []Node{amount}, Notation: NotationCast, CastType: "DECIMAL(10,2)"}, "CAST(amount AS DECIMAL(10,2))"},
		{
			"case",
			&FunctionCall{
				Operator: "CASE",
				Operands: []Node{NewInfix(">", amount, NewLiteral(0)), amount, NewLiteral(0)},
				Notation: NotationCase,
				HasElse:  true,
			},
			"CASE WHEN amount > 0 THEN amount ELSE 0 END",
		},
		{
			"case value",
			&FunctionCall{
				Operator: "CASE",
				Operands: []Node{amount, NewLiteral(1), NewLiteral("one")},
				Notation: NotationCase,
				HasValue: true,
			},
			"CASE amount WHEN 1 THEN 'one' END",
		},
		{"malformed infix", &FunctionCall{Operator: "+", Operands: []Node{amount}, Notation: NotationInfix}, "+(amount)"},
	} {
		t.Run(it.name, func(t *testing.T) {
			assert.Equal(t, it.expect, Render(it.node, Plain))
		})
	}
}

func TestRenderWithQuoter(t *testing.T) {
	node := NewInfix("/", NewCall("SUM", NewIdentifier("t", "amount")), NewCall("COUNT", NewIdentifier(Star)))
	assert.Equal(t, "sum(`t`.`amount`) / count(*)", Render(node, backQuoter{}))

	ref := NewCall("MAX", NewIdentifier("{%3}"))
	assert.Equal(t, "max({%3})", Render(ref, backQuoter{}))
}

func TestRenderStringLiteral(t *testing.T) {
	node := NewInfix("=", NewIdentifier("path"), NewLiteral(`C:\it's`))
	assert.Equal(t, `path = 'C:\it''s'`, Render(node, Plain))
	assert.Equal(t, "`path` = 'C:\\\\it''s'", Render(node, backQuoter{}))
}

func TestIsReference(t *testing.T) {
	assert.True(t, IsReference("{%1}"))
	assert.True(t, IsReference("{%12}"))
	assert.False(t, IsReference("{%}"))
	assert.False(t, IsReference("{1}"))
	assert.False(t, IsReference("amount"))
}

func TestClone(t *testing.T) {
	origin := NewInfix("+", NewCall("SUM", NewIdentifier("amount")), NewLiteral(1))
	cloned := Clone(origin).(*FunctionCall)

	cloned.Operands[0].(*FunctionCall).Operands[0] = NewIdentifier("x1")
	cloned.Operands[1].(*Literal).Text = "2"

	assert.Equal(t, "SUM(amount) + 1", Render(origin, Plain))
	assert.Equal(t, "SUM(x1) + 2", Render(cloned, Plain))
	assert.Nil(t, Clone(nil))
}

func TestNotation(t *testing.T) {
	assert.Equal(t, "infix", NotationInfix.String())
	assert.Equal(t, "unknown", Notation(99).String())
}
