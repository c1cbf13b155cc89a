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
	"fmt"
	"strconv"
	"strings"
)

// Quoter writes the dialect specific parts of a formula.
type Quoter interface {
	// WriteIdentifier writes a single identifier part, quoting it if necessary.
	WriteIdentifier(sb *strings.Builder, name string)
	// FunctionName returns the function name in the casing of the dialect.
	FunctionName(name string) string
	// WriteString writes a string literal with the quotes and escapes of the dialect.
	WriteString(sb *strings.Builder, value string)
}

// Plain is a Quoter which writes everything as is.
var Plain Quoter = plainQuoter{}

type plainQuoter struct{}

func (plainQuoter) WriteIdentifier(sb *strings.Builder, name string) {
	sb.WriteString(name)
}

func (plainQuoter) FunctionName(name string) string {
	return name
}

func (plainQuoter) WriteString(sb *strings.Builder, value string) {
	WriteQuotedString(sb, value, false)
}

// WriteQuotedString writes the value between single quotes, doubling the quotes inside.
// With backslashEscapes, backslashes are doubled too, as MySQL reads them as escapes.
func WriteQuotedString(sb *strings.Builder, value string, backslashEscapes bool) {
	sb.Grow(len(value) + 2)
	sb.WriteByte('\'')
	for i := 0; i < len(value); i++ {
		switch c := value[i]; {
		case c == '\'':
			sb.WriteString("''")
		case c == '\\' && backslashEscapes:
			sb.WriteString("\\\\")
		default:
			sb.WriteByte(c)
		}
	}
	sb.WriteByte('\'')
}

const _precedenceAtom = 1000

var _infixPrecedence = map[string]int{
	"OR":   10,
	"||":   65,
	"XOR":  20,
	"AND":  30,
	"&&":   30,
	"=":    60,
	"<=>":  60,
	">=":   60,
	">":    60,
	"<=":   60,
	"<":    60,
	"<>":   60,
	"!=":   60,
	"LIKE": 60,
	"|":    70,
	"&":    80,
	"<<":   90,
	">>":   90,
	"+":    100,
	"-":    100,
	"*":    110,
	"/":    110,
	"DIV":  110,
	"%":    110,
	"MOD":  110,
	"^":    120,
}

func precedenceOf(f *FunctionCall) int {
	switch f.Notation {
	case NotationInfix:
		if len(f.Operands) != 2 {
			return _precedenceAtom
		}
		if p, ok := _infixPrecedence[f.Operator]; ok {
			return p
		}
		// NOT LIKE, REGEXP and the other comparisons
		return 60
	case NotationPrefix:
		if f.Operator == "NOT" {
			return 40
		}
		return 130
	case NotationBetween:
		return 50
	case NotationPostfix, NotationIn:
		return 60
	default:
		return _precedenceAtom
	}
}

// Render returns the text of the node.
func Render(node Node, q Quoter) string {
	var sb strings.Builder
	Restore(&sb, q, node)
	return sb.String()
}

// Restore writes the text of the node into the builder.
// A nil node writes nothing.
func Restore(sb *strings.Builder, q Quoter, node Node) {
	if q == nil {
		q = Plain
	}
	switch n := node.(type) {
	case *Literal:
		restoreLiteral(sb, q, n)
	case *Identifier:
		restoreIdentifier(sb, q, n)
	case *FunctionCall:
		if n.Grouped {
			sb.WriteByte('(')
			restoreCall(sb, q, n)
			sb.WriteByte(')')
			return
		}
		restoreCall(sb, q, n)
	}
}

func restoreLiteral(sb *strings.Builder, q Quoter, l *Literal) {
	switch v := l.Value.(type) {
	case string:
		q.WriteString(sb, v)
	case []byte:
		q.WriteString(sb, string(v))
	default:
		sb.WriteString(l.String())
	}
}

func restoreIdentifier(sb *strings.Builder, q Quoter, id *Identifier) {
	for i, name := range id.Path {
		if i > 0 {
			sb.WriteByte('.')
		}
		if name == Star || IsReference(name) {
			sb.WriteString(name)
			continue
		}
		q.WriteIdentifier(sb, name)
	}
}

// restoreOperand wraps the child with parentheses when it binds weaker than its parent.
// If strict, equal precedence is also wrapped, which keeps 'a - (b - c)' intact.
func restoreOperand(sb *strings.Builder, q Quoter, child Node, parent int, strict bool) {
	if c, ok := child.(*FunctionCall); ok && !c.Grouped {
		p := precedenceOf(c)
		if p < parent || (strict && p == parent) {
			sb.WriteByte('(')
			restoreCall(sb, q, c)
			sb.WriteByte(')')
			return
		}
	}
	Restore(sb, q, child)
}

func restoreCall(sb *strings.Builder, q Quoter, f *FunctionCall) {
	p := precedenceOf(f)
	switch f.Notation {
	case NotationInfix:
		if len(f.Operands) != 2 {
			break
		}
		restoreOperand(sb, q, f.Operands[0], p, false)
		sb.WriteByte(' ')
		sb.WriteString(f.Operator)
		sb.WriteByte(' ')
		restoreOperand(sb, q, f.Operands[1], p, true)
		return
	case NotationPrefix:
		if len(f.Operands) != 1 {
			break
		}
		var inner strings.Builder
		restoreOperand(&inner, q, f.Operands[0], p, true)
		sb.WriteString(f.Operator)
		if isWord(f.Operator) || strings.HasPrefix(inner.String(), f.Operator) {
			// avoid NOTa and '--' which starts a comment
			sb.WriteByte(' ')
		}
		sb.WriteString(inner.String())
		return
	case NotationPostfix:
		if len(f.Operands) != 1 {
			break
		}
		restoreOperand(sb, q, f.Operands[0], p, false)
		sb.WriteByte(' ')
		sb.WriteString(f.Operator)
		return
	case NotationBetween:
		if len(f.Operands) != 3 {
			break
		}
		restoreOperand(sb, q, f.Operands[0], p, false)
		sb.WriteByte(' ')
		sb.WriteString(f.Operator)
		sb.WriteByte(' ')
		restoreOperand(sb, q, f.Operands[1], p, true)
		sb.WriteString(" AND ")
		restoreOperand(sb, q, f.Operands[2], p, true)
		return
	case NotationIn:
		if len(f.Operands) < 2 {
			break
		}
		restoreOperand(sb, q, f.Operands[0], p, false)
		sb.WriteByte(' ')
		sb.WriteString(f.Operator)
		sb.WriteString(" (")
		restoreList(sb, q, f.Operands[1:])
		sb.WriteByte(')')
		return
	case NotationCase:
		restoreCase(sb, q, f)
		return
	case NotationCast:
		if len(f.Operands) != 1 {
			break
		}
		sb.WriteString(q.FunctionName("CAST"))
		sb.WriteByte('(')
		Restore(sb, q, f.Operands[0])
		sb.WriteString(" AS ")
		sb.WriteString(f.CastType)
		sb.WriteByte(')')
		return
	}

	sb.WriteString(q.FunctionName(f.Operator))
	sb.WriteByte('(')
	if f.Distinct {
		sb.WriteString("DISTINCT ")
	}
	restoreList(sb, q, f.Operands)
	sb.WriteByte(')')
}

func restoreList(sb *strings.Builder, q Quoter, nodes []Node) {
	for i, it := range nodes {
		if i > 0 {
			sb.WriteString(", ")
		}
		Restore(sb, q, it)
	}
}

func restoreCase(sb *strings.Builder, q Quoter, f *FunctionCall) {
	operands := f.Operands
	sb.WriteString("CASE")
	if f.HasValue && len(operands) > 0 {
		sb.WriteByte(' ')
		Restore(sb, q, operands[0])
		operands = operands[1:]
	}
	var elseBlock Node
	if f.HasElse && len(operands) > 0 {
		elseBlock = operands[len(operands)-1]
		operands = operands[:len(operands)-1]
	}
	for i := 0; i+1 < len(operands); i += 2 {
		sb.WriteString(" WHEN ")
		Restore(sb, q, operands[i])
		sb.WriteString(" THEN ")
		Restore(sb, q, operands[i+1])
	}
	if elseBlock != nil {
		sb.WriteString(" ELSE ")
		Restore(sb, q, elseBlock)
	}
	sb.WriteString(" END")
}

func isWord(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') {
			return true
		}
	}
	return false
}

func literal2string(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return "NULL"
	case string:
		return quoteString(v)
	case []byte:
		return quoteString(string(v))
	case bool:
		if v {
			return "TRUE"
		}
		return "FALSE"
	case int:
		return strconv.FormatInt(int64(v), 10)
	case int8:
		return strconv.FormatInt(int64(v), 10)
	case int16:
		return strconv.FormatInt(int64(v), 10)
	case int32:
		return strconv.FormatInt(int64(v), 10)
	case int64:
		return strconv.FormatInt(v, 10)
	case uint:
		return strconv.FormatUint(uint64(v), 10)
	case uint8:
		return strconv.FormatUint(uint64(v), 10)
	case uint16:
		return strconv.FormatUint(uint64(v), 10)
	case uint32:
		return strconv.FormatUint(uint64(v), 10)
	case uint64:
		return strconv.FormatUint(v, 10)
	case float32:
		return strconv.FormatFloat(float64(v), 'g', -1, 32)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

func quoteString(s string) string {
	var sb strings.Builder
	WriteQuotedString(&sb, s, false)
	return sb.String()
}
