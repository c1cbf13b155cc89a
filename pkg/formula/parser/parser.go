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

// Package parser turns the text of a formula into a formula ast.
//
// The grammar is the MySQL expression grammar of github.com/arana-db/parser,
// a formula is parsed as the single field of 'SELECT <formula>'. Positional
// references like {%1} are accepted and kept as identifiers.
package parser

import (
	"strings"
)

import (
	"github.com/arana-db/parser"
	past "github.com/arana-db/parser/ast"

	"github.com/pkg/errors"
)

import (
	"github.com/arana-db/formula/pkg/formula/ast"
)

type (
	parseOption struct {
		charset   string
		collation string
	}

	// ParseOption customizes the parser.
	ParseOption func(*parseOption)
)

// WithCharset sets the charset.
func WithCharset(charset string) ParseOption {
	return func(option *parseOption) {
		option.charset = charset
	}
}

// WithCollation sets the collation.
func WithCollation(collation string) ParseOption {
	return func(option *parseOption) {
		option.collation = collation
	}
}

// Error is a parse failure of a formula, the message is the one of the underlying parser.
type Error struct {
	Formula string
	cause   error
}

func newError(formula string, cause error) *Error {
	return &Error{
		Formula: formula,
		cause:   cause,
	}
}

func (e *Error) Error() string {
	return e.cause.Error()
}

// Cause returns the underlying error.
func (e *Error) Cause() error {
	return e.cause
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Parser parses formulas, it is safe for concurrent use.
type Parser struct {
	o parseOption
}

// New creates a Parser.
func New(options ...ParseOption) *Parser {
	var p Parser
	for _, it := range options {
		it(&p.o)
	}
	return &p
}

// Parse parses the formula with default options.
func Parse(formula string) (ast.Node, error) {
	return New().Parse(formula)
}

// MustParse parses the formula, panic if failed.
func MustParse(formula string) ast.Node {
	node, err := Parse(formula)
	if err != nil {
		panic(err.Error())
	}
	return node
}

// Parse parses the formula. A blank formula returns a nil node without error.
func (p *Parser) Parse(formula string) (ast.Node, error) {
	if len(strings.TrimSpace(formula)) < 1 {
		return nil, nil
	}

	// the underlying parser is stateful, a new one for each call
	stmt, err := parser.New().ParseOneStmt("SELECT "+escapeReferences(formula), p.o.charset, p.o.collation)
	if err != nil {
		return nil, newError(formula, err)
	}

	expr, err := selectExpr(stmt)
	if err != nil {
		return nil, newError(formula, err)
	}

	var cc convCtx
	node, err := cc.convExpr(expr)
	if err != nil {
		return nil, newError(formula, err)
	}
	return node, nil
}

func selectExpr(stmt past.StmtNode) (past.ExprNode, error) {
	sel, ok := stmt.(*past.SelectStmt)
	if !ok {
		return nil, errors.Errorf("incorrect statement type: expect=%T, actual=%T", (*past.SelectStmt)(nil), stmt)
	}

	switch {
	case sel.From != nil, sel.Where != nil, sel.GroupBy != nil, sel.Having != nil, sel.OrderBy != nil, sel.Limit != nil:
		return nil, errors.New("a formula must be a single expression")
	case sel.Fields == nil || len(sel.Fields.Fields) != 1:
		return nil, errors.New("a formula must be a single expression")
	}

	field := sel.Fields.Fields[0]
	if field.WildCard != nil || field.Expr == nil {
		return nil, errors.New("a formula must be a single expression")
	}
	if len(field.AsName.O) > 0 {
		return nil, errors.Errorf("a formula cannot be aliased as '%s'", field.AsName.O)
	}

	return field.Expr, nil
}

// escapeReferences wraps the {%N} references and the '*' of COUNT(*) out of string
// literals by back quotes, then the underlying parser takes them as column names.
// The grammar turns a bare COUNT(*) into COUNT(1), which cannot be told apart from
// a written COUNT(1) afterwards.
func escapeReferences(formula string) string {
	var (
		sb    strings.Builder
		quote byte
	)
	sb.Grow(len(formula) + 8)

	for i := 0; i < len(formula); i++ {
		c := formula[i]

		if quote != 0 {
			sb.WriteByte(c)
			if c == '\\' && quote != '`' && i+1 < len(formula) {
				i++
				sb.WriteByte(formula[i])
				continue
			}
			if c == quote {
				quote = 0
			}
			continue
		}

		switch c {
		case '\'', '"', '`':
			quote = c
		case '{':
			if n := matchReference(formula[i:]); n > 0 {
				sb.WriteByte('`')
				sb.WriteString(formula[i : i+n])
				sb.WriteByte('`')
				i += n - 1
				continue
			}
		case '*':
			if isCountStar(formula, i) {
				sb.WriteString("`*`")
				continue
			}
		}
		sb.WriteByte(c)
	}

	return sb.String()
}

// isCountStar returns true if the '*' at pos is the only argument of COUNT, eg: count ( * ).
func isCountStar(s string, pos int) bool {
	j := pos + 1
	for j < len(s) && isSpace(s[j]) {
		j++
	}
	if j >= len(s) || s[j] != ')' {
		return false
	}

	k := pos - 1
	for k >= 0 && isSpace(s[k]) {
		k--
	}
	if k < 0 || s[k] != '(' {
		return false
	}
	k--
	for k >= 0 && isSpace(s[k]) {
		k--
	}
	end := k + 1
	for k >= 0 && isWordChar(s[k]) {
		k--
	}
	return strings.EqualFold(s[k+1:end], "COUNT")
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func isWordChar(c byte) bool {
	return c == '_' || c == '$' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

// matchReference returns the length of the {%N} reference at the start of s, or 0.
func matchReference(s string) int {
	if len(s) < 4 || s[0] != '{' || s[1] != '%' {
		return 0
	}
	i := 2
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i == 2 || i >= len(s) || s[i] != '}' {
		return 0
	}
	return i + 1
}
