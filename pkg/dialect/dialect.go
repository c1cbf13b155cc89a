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

// Package dialect describes the operators, aggregations and text
// conventions of a target database.
package dialect

import (
	"strings"
)

import (
	sq "github.com/Masterminds/squirrel"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

import (
	"github.com/arana-db/formula/pkg/formula/ast"
)

var _ ast.Quoter = (*Dialect)(nil)

// Casing is the casing convention of rendered function names.
type Casing uint8

const (
	CasingUpper Casing = iota
	CasingLower
	CasingPreserve
)

// Dialect is the immutable catalog of a target database.
// A Dialect must not be modified after Build, it is shared by all compilations.
type Dialect struct {
	name             string
	quoteOpen        string
	quoteClose       string
	backslashEscapes bool
	casing           Casing
	placeholder      sq.PlaceholderFormat
	operators        map[string]struct{}
	aggregations     map[string]AggregationRule
	merges           map[string]MergeRule
	reserved         map[string]struct{}
}

// Name returns the name of the dialect.
func (d *Dialect) Name() string {
	return d.name
}

// IsScalarOperator returns true if the name is a supported scalar operator or function.
func (d *Dialect) IsScalarOperator(name string) bool {
	_, ok := d.operators[strings.ToUpper(name)]
	return ok
}

// Aggregation returns the rule of a supported aggregation.
func (d *Dialect) Aggregation(name string) (AggregationRule, bool) {
	rule, ok := d.aggregations[strings.ToUpper(name)]
	return rule, ok
}

// Merge returns how the partials of an aggregation are combined, false if
// the aggregation cannot be computed from its partials.
func (d *Dialect) Merge(name string) (MergeRule, bool) {
	merge, ok := d.merges[strings.ToUpper(name)]
	return merge, ok
}

// IsAggregation returns true if the name is a supported aggregation.
func (d *Dialect) IsAggregation(name string) bool {
	_, ok := d.Aggregation(name)
	return ok
}

// ScalarOperators returns the sorted names of all scalar operators.
func (d *Dialect) ScalarOperators() []string {
	keys := maps.Keys(d.operators)
	slices.Sort(keys)
	return keys
}

// Aggregations returns the sorted names of all aggregations.
func (d *Dialect) Aggregations() []string {
	keys := maps.Keys(d.aggregations)
	slices.Sort(keys)
	return keys
}

// PlaceholderFormat returns the bind variable format of the dialect.
func (d *Dialect) PlaceholderFormat() sq.PlaceholderFormat {
	return d.placeholder
}

// WriteIdentifier writes the name, quoted when it is not a plain word or is reserved.
func (d *Dialect) WriteIdentifier(sb *strings.Builder, name string) {
	if !d.needQuote(name) {
		sb.WriteString(name)
		return
	}
	sb.WriteString(d.quoteOpen)
	sb.WriteString(strings.ReplaceAll(name, d.quoteClose, d.quoteClose+d.quoteClose))
	sb.WriteString(d.quoteClose)
}

// WriteString writes a string literal, backslashes are escaped if the dialect reads them as escapes.
func (d *Dialect) WriteString(sb *strings.Builder, value string) {
	ast.WriteQuotedString(sb, value, d.backslashEscapes)
}

// QuoteIdentifier returns the dotted path written by WriteIdentifier.
func (d *Dialect) QuoteIdentifier(path ...string) string {
	var sb strings.Builder
	for i, it := range path {
		if i > 0 {
			sb.WriteByte('.')
		}
		d.WriteIdentifier(&sb, it)
	}
	return sb.String()
}

// FunctionName applies the casing convention.
func (d *Dialect) FunctionName(name string) string {
	switch d.casing {
	case CasingLower:
		return cases.Lower(language.Und).String(name)
	case CasingPreserve:
		return name
	default:
		return cases.Upper(language.Und).String(name)
	}
}

// Render renders the node with the conventions of the dialect.
func (d *Dialect) Render(node ast.Node) string {
	return ast.Render(node, d)
}

func (d *Dialect) String() string {
	return d.name
}

func (d *Dialect) needQuote(name string) bool {
	if len(name) < 1 {
		return true
	}
	if _, ok := d.reserved[strings.ToLower(name)]; ok {
		return true
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c == '_', c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9':
			if i == 0 {
				return true
			}
		default:
			return true
		}
	}
	return false
}

// Builder builds a Dialect.
type Builder struct {
	d *Dialect
}

// New starts the definition of a dialect.
func New(name string) *Builder {
	return &Builder{
		d: &Dialect{
			name:         name,
			quoteOpen:    `"`,
			quoteClose:   `"`,
			placeholder:  sq.Question,
			operators:    make(map[string]struct{}),
			aggregations: make(map[string]AggregationRule),
			merges:       make(map[string]MergeRule),
			reserved:     make(map[string]struct{}),
		},
	}
}

// Quote sets the identifier quote characters.
func (b *Builder) Quote(open, close string) *Builder {
	b.d.quoteOpen, b.d.quoteClose = open, close
	return b
}

// BackslashEscapes marks backslash as an escape character in string literals.
func (b *Builder) BackslashEscapes() *Builder {
	b.d.backslashEscapes = true
	return b
}

// Casing sets the casing of rendered function names.
func (b *Builder) Casing(c Casing) *Builder {
	b.d.casing = c
	return b
}

// Placeholder sets the bind variable format.
func (b *Builder) Placeholder(f sq.PlaceholderFormat) *Builder {
	b.d.placeholder = f
	return b
}

// Operators registers scalar operators and functions.
func (b *Builder) Operators(names ...string) *Builder {
	for _, it := range names {
		b.d.operators[strings.ToUpper(it)] = struct{}{}
	}
	return b
}

// Aggregate registers an aggregation with its rule, and optionally how its partials are merged.
func (b *Builder) Aggregate(name string, rule AggregationRule, merge ...MergeRule) *Builder {
	name = strings.ToUpper(name)
	b.d.aggregations[name] = rule
	if len(merge) > 0 {
		b.d.merges[name] = merge[0]
	}
	return b
}

// Identities registers aggregations whose partial is the aggregation itself.
// Counts are merged by summing the partial counts, others by aggregating again.
func (b *Builder) Identities(names ...string) *Builder {
	for _, it := range names {
		merge := Reaggregate(it)
		switch strings.ToUpper(it) {
		case AggrCount, "COUNT_BIG":
			merge = Reaggregate(AggrSum)
		}
		b.Aggregate(it, Identity(it), merge)
	}
	return b
}

// Reserved registers reserved words which are always quoted.
func (b *Builder) Reserved(words ...string) *Builder {
	for _, it := range words {
		b.d.reserved[strings.ToLower(it)] = struct{}{}
	}
	return b
}

// Build returns the dialect, the builder must not be used anymore.
func (b *Builder) Build() *Dialect {
	d := b.d
	b.d = nil
	return d
}
