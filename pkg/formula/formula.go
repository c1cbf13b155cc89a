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

// Package formula compiles metric formulas into two aggregation levels.
//
// An inner level computes partial aggregations per partition, an outer level
// recombines them. Verify checks the operators of a formula against a
// dialect, Extract and ExpandInner produce the inner projections, and
// RewriteOuter replaces the operands of every aggregation call by the
// placeholders of those projections.
//
// All walkers are pure and synchronous. They may run concurrently as long as
// RewriteOuter, which modifies operands in place, is given its own tree.
package formula

import (
	"strings"
)

import (
	"github.com/arana-db/formula/pkg/dialect"
	"github.com/arana-db/formula/pkg/formula/ast"
	"github.com/arana-db/formula/pkg/formula/parser"
)

var _ Parser = (*parser.Parser)(nil)

//go:generate mockgen -destination=../../testdata/mock_parser.go -package=testdata . Parser

// Parser turns the text of a formula into an ast.
type Parser interface {
	Parse(formula string) (ast.Node, error)
}

// DefaultParser is used by Verify.
var DefaultParser Parser = parser.New()

// CustomAggregations is a set of extra aggregation names recognized for a
// single compilation, without touching the shared dialect. A nil set is empty.
type CustomAggregations map[string]struct{}

// NewCustomAggregations creates a set from names, case-insensitive.
func NewCustomAggregations(names ...string) CustomAggregations {
	ret := make(CustomAggregations, len(names))
	for _, it := range names {
		ret[strings.ToUpper(it)] = struct{}{}
	}
	return ret
}

// Contains returns true if the name is in the set.
func (c CustomAggregations) Contains(name string) bool {
	if len(c) < 1 {
		return false
	}
	_, ok := c[strings.ToUpper(name)]
	return ok
}

// Union returns a new set with names of both sets.
func (c CustomAggregations) Union(names ...string) CustomAggregations {
	ret := make(CustomAggregations, len(c)+len(names))
	for k := range c {
		ret[k] = struct{}{}
	}
	for _, it := range names {
		ret[strings.ToUpper(it)] = struct{}{}
	}
	return ret
}

// WithDialect returns the custom set extended by all aggregations of the dialect.
// RewriteOuter only knows dialect.StandardAggregations, feeding it this set makes
// it agree with Extract on which calls are aggregations.
func (c CustomAggregations) WithDialect(d *dialect.Dialect) CustomAggregations {
	return c.Union(d.Aggregations()...)
}

func isAggregation(name string, d *dialect.Dialect, custom CustomAggregations) bool {
	return d.IsAggregation(name) || custom.Contains(name)
}

func isStandardAggregation(name string, custom CustomAggregations) bool {
	return dialect.IsStandardAggregation(name) || custom.Contains(name)
}
