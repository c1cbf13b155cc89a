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

// Package compile provides the command which compiles a metric catalog.
package compile

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
)

import (
	"github.com/pkg/errors"

	"github.com/spf13/cobra"

	"go.uber.org/multierr"
)

import (
	"github.com/arana-db/formula/cmd/cmds"
	"github.com/arana-db/formula/pkg/config"
	"github.com/arana-db/formula/pkg/constants"
	"github.com/arana-db/formula/pkg/metric"
	"github.com/arana-db/formula/pkg/metrics"
	"github.com/arana-db/formula/pkg/trace"
	_ "github.com/arana-db/formula/pkg/trace/jaeger"
	"github.com/arana-db/formula/pkg/util/log"
	utils "github.com/arana-db/formula/pkg/util/tableprint"
)

type options struct {
	catalog     string
	names       []string
	table       string
	dimensions  []string
	partitions  []string
	filter      string
	color       bool
	stats       bool
	traceparent string
}

func init() {
	cmds.Handle(func(root *cobra.Command) {
		root.AddCommand(newCommand())
	})
}

func newCommand() *cobra.Command {
	var o options
	cmd := &cobra.Command{
		Use:   "compile",
		Short: "compile the metrics of a catalog, and optionally build their queries",
		Example: "  formula compile -c ./conf/catalog.yaml\n" +
			"  formula compile -c ./conf/catalog.yaml --table orders --dim region --partition day",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), &o)
		},
	}
	cmd.Flags().StringVarP(&o.catalog, "config", "c", os.Getenv(constants.EnvCatalogPath), "catalog file path")
	cmd.Flags().StringSliceVarP(&o.names, "metric", "m", nil, "names of the metrics to compile, all if not set")
	cmd.Flags().StringVar(&o.table, "table", "", "table to build the queries from")
	cmd.Flags().StringSliceVar(&o.dimensions, "dim", nil, "columns the metrics are grouped by")
	cmd.Flags().StringSliceVar(&o.partitions, "partition", nil, "extra columns the partials are computed by")
	cmd.Flags().StringVar(&o.filter, "filter", "", "condition of the rows, eg: \"status = 'paid'\"")
	cmd.Flags().BoolVar(&o.color, "color", false, "colorful table header")
	cmd.Flags().BoolVar(&o.stats, "stats", false, "print the compile metrics at the end")
	cmd.Flags().StringVar(&o.traceparent, "traceparent", os.Getenv("TRACEPARENT"), "W3C trace context of the caller, used when the catalog enables tracing")
	return cmd
}

func run(ctx context.Context, stdout, stderr io.Writer, o *options) error {
	if ctx == nil {
		ctx = context.Background()
	}

	path := o.catalog
	if len(path) < 1 {
		var ok bool
		if path, ok = constants.FindCatalog(); !ok {
			return errors.Errorf("no catalog given, and no %s found", constants.DefaultCatalogName)
		}
	}

	catalog, err := config.Load(path)
	if err != nil {
		return err
	}
	if err = config.Validate(catalog); err != nil {
		return errors.Wrapf(err, "invalid catalog %s", path)
	}

	log.Init(&catalog.Logging)
	defer func() {
		_ = log.Sync()
	}()

	if catalog.Trace != nil {
		shutdown, err := trace.Initialize(ctx, catalog.Trace)
		if err != nil {
			return err
		}
		defer func() {
			_ = shutdown(context.Background())
		}()
		ctx = trace.Extract(ctx, o.traceparent)
	}

	ctx, span := metric.Tracer.Start(ctx, "CompileCatalog")
	defer span.End()

	d, err := catalog.DefaultDialect()
	if err != nil {
		return err
	}

	defs, err := selectDefinitions(catalog, o.names)
	if err != nil {
		return err
	}

	collector := metrics.MustNewCollector(nil)
	c, err := metric.NewCompiler(
		metric.WithDialect(d),
		metric.WithCacheSize(catalog.CacheSize),
		metric.WithMetrics(collector),
	)
	if err != nil {
		return err
	}

	log.Infof("compiling %d metrics from %s", len(defs), path)
	plans, compileErr := c.CompileAll(ctx, defs)

	rows := make([][]interface{}, 0, len(defs))
	for i, plan := range plans {
		if plan == nil {
			rows = append(rows, []interface{}{defs[i].Name, defs[i].Formula, "REJECTED", nil, nil})
			continue
		}
		inner := make([]string, 0, len(plan.Inner))
		for _, it := range plan.Inner {
			inner = append(inner, it.String())
		}
		rows = append(rows, []interface{}{plan.Name, plan.Formula, plan.Dialect.Name(), strings.Join(inner, ", "), plan.Outer})
	}

	header := []string{"METRIC", "FORMULA", "DIALECT", "INNER", "OUTER"}
	if o.color {
		utils.WriteTableColor(stdout, header, rows)
	} else {
		utils.WriteTable(stdout, header, rows)
	}

	if len(o.table) > 0 {
		writeQueries(stdout, plans, o)
	}

	if o.stats {
		if err = writeStats(stdout, collector, o.color); err != nil {
			return err
		}
	}

	if compileErr != nil {
		failures := multierr.Errors(compileErr)
		for _, it := range failures {
			_, _ = fmt.Fprintln(stderr, it)
		}
		return errors.Errorf("%d of %d metrics cannot be compiled", len(failures), len(defs))
	}
	return nil
}

func writeStats(w io.Writer, collector *metrics.Collector, color bool) error {
	samples, err := collector.Samples()
	if err != nil {
		return err
	}
	rows := make([][]interface{}, 0, len(samples))
	for _, it := range samples {
		rows = append(rows, []interface{}{it.Name, it.Labels, it.Value})
	}
	header := []string{"NAME", "LABELS", "VALUE"}
	if color {
		utils.WriteTableColor(w, header, rows)
	} else {
		utils.WriteTable(w, header, rows)
	}
	return nil
}

func selectDefinitions(catalog *config.Catalog, names []string) ([]metric.Definition, error) {
	if len(names) < 1 {
		return catalog.Definitions(), nil
	}
	defs := make([]metric.Definition, 0, len(names))
	for _, name := range names {
		m, ok := catalog.Lookup(name)
		if !ok {
			return nil, errors.Errorf("no such metric '%s'", name)
		}
		defs = append(defs, m.Definition())
	}
	return defs, nil
}

func writeQueries(w io.Writer, plans []*metric.Plan, o *options) {
	opts := []metric.QueryOption{
		metric.WithDimensions(o.dimensions...),
		metric.WithPartitions(o.partitions...),
	}
	if len(o.filter) > 0 {
		opts = append(opts, metric.WithFilter(o.filter))
	}

	for _, plan := range plans {
		if plan == nil {
			continue
		}
		query, args, err := plan.Query(o.table, opts...)
		if err != nil {
			_, _ = fmt.Fprintf(w, "-- %s: %v\n", plan.Name, err)
			continue
		}
		_, _ = fmt.Fprintf(w, "-- %s\n%s;\n", plan.Name, query)
		if len(args) > 0 {
			_, _ = fmt.Fprintf(w, "-- args: %v\n", args)
		}
	}
}
