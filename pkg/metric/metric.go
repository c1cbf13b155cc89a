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

// Package metric compiles named metric definitions into two-level aggregation
// plans, and builds the SQL which computes them over partitions.
package metric

import (
	"fmt"
	"strconv"
)

import (
	"github.com/cespare/xxhash/v2"

	"github.com/pkg/errors"
)

import (
	"github.com/arana-db/formula/pkg/dialect"
)

// errors group
var (
	ErrInvalidFormula          = errors.New("metric: invalid formula")
	ErrEmptyFormula            = errors.New("metric: empty formula")
	ErrUnknownDialect          = errors.New("metric: unknown dialect")
	ErrMultiOperandAggregation = errors.New("metric: aggregation with more than one operand")
	ErrNotMergeable            = errors.New("metric: cannot be merged from partials")
)

// Definition is a named metric formula.
type Definition struct {
	Name    string
	Formula string
	// Dialect is the name of a registered dialect, the compiler default if empty.
	Dialect string
	// CustomAggregations are extra aggregation names of this metric only.
	CustomAggregations []string
}

// Projection is a computed column.
type Projection struct {
	Alias      string
	Expression string
}

func (p Projection) String() string {
	return p.Expression + " AS " + p.Alias
}

// Plan is a compiled metric. A plan is immutable and may be shared.
type Plan struct {
	Name    string
	Formula string
	Dialect *dialect.Dialect

	// Inner are the aggregation calls of the formula, computed per partition.
	Inner []Projection
	// Outer is the formula where every aggregation operand is replaced by the
	// alias of its inner projection.
	Outer string
	// Partials are the inner expressions after the aggregation rules of the dialect.
	Partials []string

	merged   *merged
	mergeErr error
}

// merged is the plan of Query, where partial columns are combined by the
// merge rules of the dialect.
type merged struct {
	partials []Projection
	outer    string
}

// Mergeable returns nil if Query can compute the metric, the reason otherwise.
func (p *Plan) Mergeable() error {
	return p.mergeErr
}

// MergedOuter returns the outer expression used by Query.
func (p *Plan) MergedOuter() (string, []Projection, bool) {
	if p.merged == nil {
		return "", nil, false
	}
	return p.merged.outer, p.merged.partials, true
}

// FormulaError is returned when the formula of a metric is rejected.
type FormulaError struct {
	Metric  string
	Formula string
	Cause   error
}

func (e *FormulaError) Error() string {
	return fmt.Sprintf("metric '%s': %s", e.Metric, e.Cause)
}

func (e *FormulaError) Unwrap() error {
	return e.Cause
}

// Is makes errors.Is(err, ErrInvalidFormula) true for all formula errors.
func (e *FormulaError) Is(target error) bool {
	return target == ErrInvalidFormula
}

// IsInvalidFormulaErr returns true if target error is caused by a rejected formula.
func IsInvalidFormulaErr(err error) bool {
	return errors.Is(err, ErrInvalidFormula)
}

// alias names a computed column after its ordinal and expression, eg: _p1_3k9x0a.
func alias(prefix string, ordinal int, expr string) string {
	h := strconv.FormatUint(xxhash.Sum64String(expr), 36)
	if len(h) > 6 {
		h = h[:6]
	}
	return prefix + strconv.Itoa(ordinal) + "_" + h
}
