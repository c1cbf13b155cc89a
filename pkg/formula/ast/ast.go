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

// Package ast defines the tree of a metric formula.
//
// The node set is closed: every Node is one of *Literal, *Identifier or
// *FunctionCall. Scalar operators such as '+' and aggregations such as SUM
// are both represented by FunctionCall, the Notation field only decides how
// the call is written back as text.
package ast

import (
	"regexp"
	"strings"
)

var (
	_ Node = (*Literal)(nil)
	_ Node = (*Identifier)(nil)
	_ Node = (*FunctionCall)(nil)
)

// Star is the path element of the '*' operand, eg: COUNT(*).
const Star = "*"

var _referenceRegexp = regexp.MustCompile(`^\{%[0-9]+}$`)

// Node represents a formula ast node.
type Node interface {
	phantom() nodePhantom
}

type nodePhantom struct{}

// Notation describes how a FunctionCall is written.
type Notation uint8

const (
	// NotationCall is the default function form: NAME(a, b).
	NotationCall Notation = iota
	// NotationInfix is a binary operator: a + b.
	NotationInfix
	// NotationPrefix is an unary operator: -a, NOT a.
	NotationPrefix
	// NotationPostfix is an unary suffix operator: a IS NULL.
	NotationPostfix
	// NotationBetween is: a BETWEEN b AND c.
	NotationBetween
	// NotationIn is: a IN (b, c, ...).
	NotationIn
	// NotationCase is: CASE [v] WHEN a THEN b ... [ELSE c] END.
	NotationCase
	// NotationCast is: CAST(a AS TYPE).
	NotationCast
)

var _notationNames = [...]string{
	NotationCall:    "call",
	NotationInfix:   "infix",
	NotationPrefix:  "prefix",
	NotationPostfix: "postfix",
	NotationBetween: "between",
	NotationIn:      "in",
	NotationCase:    "case",
	NotationCast:    "cast",
}

func (n Notation) String() string {
	if int(n) < len(_notationNames) {
		return _notationNames[n]
	}
	return "unknown"
}

// Literal is an opaque constant, eg: 100, 'foo', NULL.
type Literal struct {
	// Value is the constant converted from the source text.
	Value interface{}
	// Text is how the literal is written back, computed from Value when empty.
	Text string
}

// NewLiteral creates a literal from a value.
func NewLiteral(value interface{}) *Literal {
	return &Literal{
		Value: value,
		Text:  literal2string(value),
	}
}

func (l *Literal) String() string {
	if len(l.Text) > 0 {
		return l.Text
	}
	return literal2string(l.Value)
}

func (l *Literal) phantom() nodePhantom {
	return nodePhantom{}
}

// Identifier is a column or variable reference, eg: amount, t.amount, {%1}.
type Identifier struct {
	Path []string
}

// NewIdentifier creates an identifier from its path elements.
func NewIdentifier(path ...string) *Identifier {
	return &Identifier{Path: path}
}

// Name returns the last element of the path.
func (id *Identifier) Name() string {
	if len(id.Path) < 1 {
		return ""
	}
	return id.Path[len(id.Path)-1]
}

// IsStar returns true if the identifier is the '*' operand.
func (id *Identifier) IsStar() bool {
	return len(id.Path) == 1 && id.Path[0] == Star
}

func (id *Identifier) String() string {
	return strings.Join(id.Path, ".")
}

func (id *Identifier) phantom() nodePhantom {
	return nodePhantom{}
}

// IsReference returns true if the name is a positional formula reference, eg: {%1}.
func IsReference(name string) bool {
	return _referenceRegexp.MatchString(name)
}

// FunctionCall is an operator or a function applied to its operands.
type FunctionCall struct {
	// Operator is the upper-case operator name, eg: "+", "SUM", "IS NULL".
	Operator string
	// Operands keeps the source order, rewrites replace elements in place.
	Operands []Node
	Notation Notation
	// Distinct is set for aggregations like COUNT(DISTINCT x).
	Distinct bool
	// Grouped is set when the call was wrapped by parentheses in the source.
	Grouped bool
	// CastType is the target type of NotationCast.
	CastType string
	// HasValue and HasElse describe the operand layout of NotationCase:
	// [value] (when then)... [else].
	HasValue bool
	HasElse  bool
}

// NewCall creates a function call written as NAME(args...).
func NewCall(name string, operands ...Node) *FunctionCall {
	return &FunctionCall{
		Operator: strings.ToUpper(name),
		Operands: operands,
		Notation: NotationCall,
	}
}

// NewInfix creates a binary operator call.
func NewInfix(op string, left, right Node) *FunctionCall {
	return &FunctionCall{
		Operator: strings.ToUpper(op),
		Operands: []Node{left, right},
		Notation: NotationInfix,
	}
}

// NewPrefix creates an unary operator call.
func NewPrefix(op string, inner Node) *FunctionCall {
	return &FunctionCall{
		Operator: strings.ToUpper(op),
		Operands: []Node{inner},
		Notation: NotationPrefix,
	}
}

func (f *FunctionCall) phantom() nodePhantom {
	return nodePhantom{}
}

// Clone returns a deep copy of the node.
func Clone(node Node) Node {
	switch n := node.(type) {
	case *Literal:
		ret := *n
		return &ret
	case *Identifier:
		path := make([]string, len(n.Path))
		copy(path, n.Path)
		return &Identifier{Path: path}
	case *FunctionCall:
		ret := *n
		ret.Operands = make([]Node, len(n.Operands))
		for i := range n.Operands {
			ret.Operands[i] = Clone(n.Operands[i])
		}
		return &ret
	default:
		return node
	}
}
