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

// Package inspect provides the commands which run a single formula through
// one step of the compiler.
package inspect

import (
	"fmt"
	"strings"
)

import (
	"github.com/pkg/errors"

	"github.com/spf13/cobra"
)

import (
	"github.com/arana-db/formula/cmd/cmds"
	"github.com/arana-db/formula/pkg/dialect"
	"github.com/arana-db/formula/pkg/formula"
	"github.com/arana-db/formula/pkg/formula/ast"
	utils "github.com/arana-db/formula/pkg/util/tableprint"
)

func init() {
	cmds.Handle(func(root *cobra.Command) {
		root.AddCommand(
			newVerifyCommand(),
			newExtractCommand(),
			newExpandCommand(),
			newRewriteCommand(),
			newDialectsCommand(),
		)
	})
}

type options struct {
	dialect string
	custom  []string
}

func (o *options) bind(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.dialect, "dialect", "d", cmds.DefaultDialect(), "sql dialect of the formula")
	cmd.Flags().StringSliceVar(&o.custom, "custom", nil, "extra aggregation names, eg: --custom MEDIAN,P95")
}

func (o *options) resolve() (*dialect.Dialect, formula.CustomAggregations, error) {
	d, ok := dialect.Lookup(o.dialect)
	if !ok {
		return nil, nil, errors.Errorf("unknown dialect '%s', available: %s", o.dialect, strings.Join(dialect.Names(), ", "))
	}
	return d, formula.NewCustomAggregations(o.custom...), nil
}

func (o *options) parse(text string) (ast.Node, *dialect.Dialect, formula.CustomAggregations, error) {
	d, custom, err := o.resolve()
	if err != nil {
		return nil, nil, nil, err
	}
	node, err := formula.DefaultParser.Parse(text)
	if err != nil {
		return nil, nil, nil, err
	}
	if _, err = formula.VerifyNode(node, d, custom); err != nil {
		return nil, nil, nil, err
	}
	return node, d, custom, nil
}

func newVerifyCommand() *cobra.Command {
	var o options
	cmd := &cobra.Command{
		Use:   "verify <formula>",
		Short: "check that all operators of the formula are known",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, custom, err := o.resolve()
			if err != nil {
				return err
			}
			if _, err = formula.Verify(args[0], d, custom); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "ok")
			return nil
		},
	}
	o.bind(cmd)
	return cmd
}

func newExtractCommand() *cobra.Command {
	var o options
	cmd := &cobra.Command{
		Use:   "extract <formula>",
		Short: "list the aggregation calls of the formula",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			node, d, custom, err := o.parse(args[0])
			if err != nil {
				return err
			}
			printLines(cmd, formula.Extract(node, d, custom))
			return nil
		},
	}
	o.bind(cmd)
	return cmd
}

func newExpandCommand() *cobra.Command {
	var o options
	cmd := &cobra.Command{
		Use:   "expand <formula>",
		Short: "list the partial expressions computed per partition",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			node, d, custom, err := o.parse(args[0])
			if err != nil {
				return err
			}
			printLines(cmd, formula.ExpandInner(node, d, custom))
			return nil
		},
	}
	o.bind(cmd)
	return cmd
}

func newRewriteCommand() *cobra.Command {
	var (
		o      options
		subs   []string
		prefix string
	)
	cmd := &cobra.Command{
		Use:   "rewrite <formula>",
		Short: "replace the operands of the aggregation calls by placeholders",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			node, d, custom, err := o.parse(args[0])
			if err != nil {
				return err
			}
			custom = custom.WithDialect(d)

			next := formula.Sequence(prefix)
			if len(subs) > 0 {
				if slots := formula.CountOperandSlots(node, custom); slots > len(subs) {
					return errors.Errorf("%d substitutions required, got %d", slots, len(subs))
				}
				next = formula.Slice(subs...)
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), d.Render(formula.RewriteOuter(node, custom, next)))
			return nil
		},
	}
	o.bind(cmd)
	cmd.Flags().StringSliceVar(&subs, "sub", nil, "placeholders in order, eg: --sub x1,x2")
	cmd.Flags().StringVar(&prefix, "prefix", "_p", "prefix of the generated placeholders when no --sub is given")
	return cmd
}

func newDialectsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "dialects",
		Short: "list the registered dialects and their aggregations",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			names := dialect.Names()
			rows := make([][]interface{}, 0, len(names))
			for _, name := range names {
				d := dialect.MustLookup(name)
				rows = append(rows, []interface{}{d.Name(), strings.Join(d.Aggregations(), ",")})
			}
			utils.WriteTable(cmd.OutOrStdout(), []string{"DIALECT", "AGGREGATIONS"}, rows)
		},
	}
}

func printLines(cmd *cobra.Command, lines []string) {
	for _, it := range lines {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), it)
	}
}
