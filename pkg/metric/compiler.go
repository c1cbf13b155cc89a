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

package metric

import (
	"context"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"
)

import (
	"github.com/cespare/xxhash/v2"

	lru "github.com/hashicorp/golang-lru"

	"github.com/pkg/errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"go.uber.org/atomic"
	"go.uber.org/multierr"

	"golang.org/x/sync/errgroup"
)

import (
	"github.com/arana-db/formula/pkg/dialect"
	"github.com/arana-db/formula/pkg/formula"
	"github.com/arana-db/formula/pkg/formula/ast"
	"github.com/arana-db/formula/pkg/metrics"
	"github.com/arana-db/formula/pkg/util/log"
)

const DefaultCacheSize = 256

var Tracer = otel.Tracer("metric")

var _ metrics.CacheSource = (*Compiler)(nil)

type (
	// Option configures a Compiler.
	Option func(*options)

	options struct {
		parser    formula.Parser
		dialect   *dialect.Dialect
		cacheSize int
		collector *metrics.Collector
		tracer    trace.Tracer
	}
)

// WithParser sets the parser of formulas.
func WithParser(p formula.Parser) Option {
	return func(o *options) {
		o.parser = p
	}
}

// WithDialect sets the dialect of definitions which don't specify one.
func WithDialect(d *dialect.Dialect) Option {
	return func(o *options) {
		o.dialect = d
	}
}

// WithCacheSize sets how many plans are memoized.
func WithCacheSize(size int) Option {
	return func(o *options) {
		o.cacheSize = size
	}
}

// WithMetrics records compilations and the plan cache into the collector.
func WithMetrics(c *metrics.Collector) Option {
	return func(o *options) {
		o.collector = c
	}
}

// WithTracer sets the tracer of compilations.
func WithTracer(t trace.Tracer) Option {
	return func(o *options) {
		o.tracer = t
	}
}

// Compiler compiles metric definitions, it is safe for concurrent use.
type Compiler struct {
	o      options
	cache  *lru.Cache
	hits   atomic.Uint64
	misses atomic.Uint64
}

// Stats is a snapshot of the plan cache.
type Stats struct {
	Size   int
	Hits   uint64
	Misses uint64
}

// NewCompiler creates a compiler.
func NewCompiler(opts ...Option) (*Compiler, error) {
	o := options{
		parser:    formula.DefaultParser,
		dialect:   dialect.MySQL,
		cacheSize: DefaultCacheSize,
		tracer:    Tracer,
	}
	for _, it := range opts {
		it(&o)
	}

	cache, err := lru.New(o.cacheSize)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot create plan cache of size %d", o.cacheSize)
	}

	c := &Compiler{
		o:     o,
		cache: cache,
	}
	if o.collector != nil {
		if err = o.collector.RegisterCache(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Compile compiles the definition into a plan.
func (c *Compiler) Compile(ctx context.Context, def Definition) (*Plan, error) {
	start := time.Now()
	plan, err := c.compile(ctx, def)

	result := metrics.ResultOK
	switch {
	case err == nil:
		log.CompileDebugf("compiled metric %s: inner=%v outer=%s", def.Name, plan.Inner, plan.Outer)
	case IsInvalidFormulaErr(err):
		result = metrics.ResultRejected
		log.CompileWarnf("rejected metric %s: %v", def.Name, err)
	default:
		result = metrics.ResultError
		log.CompileWarnf("cannot compile metric %s: %v", def.Name, err)
	}
	c.o.collector.ObserveCompile(result, time.Since(start))

	return plan, err
}

func (c *Compiler) compile(ctx context.Context, def Definition) (*Plan, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.WithStack(err)
	}

	d := c.o.dialect
	if len(def.Dialect) > 0 {
		var ok bool
		if d, ok = dialect.Lookup(def.Dialect); !ok {
			return nil, errors.Wrapf(ErrUnknownDialect, "metric '%s': %s", def.Name, def.Dialect)
		}
	}
	custom := formula.NewCustomAggregations(def.CustomAggregations...)

	_, span := c.o.tracer.Start(ctx, "Compile")
	defer span.End()
	span.SetAttributes(
		attribute.String("metric.name", def.Name),
		attribute.String("metric.dialect", d.Name()),
	)

	key := cacheKey(d, def.Formula, custom)
	if cached, ok := c.cache.Get(key); ok {
		c.hits.Inc()
		span.SetAttributes(attribute.Bool("metric.cached", true))
		plan := *cached.(*Plan)
		plan.Name = def.Name
		return &plan, nil
	}
	c.misses.Inc()

	plan, err := build(c.o.parser, d, def, custom)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	c.cache.Add(key, plan)
	return plan, nil
}

// CompileAll compiles definitions in parallel. Plans are in the order of the
// definitions, nil where the compilation failed; all failures are combined.
func (c *Compiler) CompileAll(ctx context.Context, defs []Definition) ([]*Plan, error) {
	var (
		plans = make([]*Plan, len(defs))
		mu    sync.Mutex
		errs  error
		g     errgroup.Group
	)

	g.SetLimit(runtime.NumCPU())
	for i := range defs {
		i := i
		g.Go(func() error {
			plan, err := c.Compile(ctx, defs[i])
			if err != nil {
				mu.Lock()
				errs = multierr.Append(errs, err)
				mu.Unlock()
				return nil
			}
			plans[i] = plan
			return nil
		})
	}
	_ = g.Wait()

	return plans, errs
}

// Stats returns the statistics of the plan cache.
func (c *Compiler) Stats() Stats {
	return Stats{
		Size:   c.cache.Len(),
		Hits:   c.hits.Load(),
		Misses: c.misses.Load(),
	}
}

func (c *Compiler) Len() int {
	return c.cache.Len()
}

func (c *Compiler) Hits() uint64 {
	return c.hits.Load()
}

func (c *Compiler) Misses() uint64 {
	return c.misses.Load()
}

// Purge drops all cached plans.
func (c *Compiler) Purge() {
	c.cache.Purge()
}

func build(p formula.Parser, d *dialect.Dialect, def Definition, custom formula.CustomAggregations) (*Plan, error) {
	reject := func(cause error) error {
		return &FormulaError{Metric: def.Name, Formula: def.Formula, Cause: cause}
	}

	node, err := p.Parse(def.Formula)
	if err != nil {
		return nil, reject(err)
	}
	if node == nil {
		return nil, reject(ErrEmptyFormula)
	}
	if ok, err := formula.VerifyNode(node, d, custom); !ok {
		return nil, reject(err)
	}

	// the rewrite has to agree with the extraction on which calls are aggregations
	all := custom.WithDialect(d)
	if name, ok := multiOperand(node, all); ok {
		return nil, reject(errors.Wrapf(ErrMultiOperandAggregation, "%s", name))
	}

	inner := formula.Extract(node, d, custom)
	aliases := make([]string, 0, len(inner))
	projections := make([]Projection, 0, len(inner))
	for i, it := range inner {
		name := alias("_p", i+1, it)
		aliases = append(aliases, name)
		projections = append(projections, Projection{Alias: name, Expression: it})
	}

	outer := formula.RewriteOuter(ast.Clone(node), all, formula.Slice(aliases...))

	plan := &Plan{
		Name:     def.Name,
		Formula:  def.Formula,
		Dialect:  d,
		Inner:    projections,
		Outer:    d.Render(outer),
		Partials: formula.ExpandInner(node, d, custom),
	}
	plan.merged, plan.mergeErr = planMerge(node, d, custom)

	return plan, nil
}

// multiOperand finds an aggregation call which hasn't exactly one operand.
func multiOperand(node ast.Node, aggregations formula.CustomAggregations) (string, bool) {
	f, ok := node.(*ast.FunctionCall)
	if !ok {
		return "", false
	}
	if aggregations.Contains(f.Operator) {
		return f.Operator, len(f.Operands) != 1
	}
	for _, it := range f.Operands {
		if name, ok := multiOperand(it, aggregations); ok {
			return name, true
		}
	}
	return "", false
}

func cacheKey(d *dialect.Dialect, text string, custom formula.CustomAggregations) uint64 {
	names := make([]string, 0, len(custom))
	for k := range custom {
		names = append(names, k)
	}
	sort.Strings(names)

	h := xxhash.New()
	_, _ = h.WriteString(d.Name())
	_, _ = h.WriteString("\x00")
	_, _ = h.WriteString(text)
	_, _ = h.WriteString("\x00")
	_, _ = h.WriteString(strings.Join(names, ","))
	return h.Sum64()
}
