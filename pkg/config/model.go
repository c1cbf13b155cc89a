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

// Package config loads the metric catalog.
package config

import (
	"io"
	"os"
	"strings"
)

import (
	"github.com/creasty/defaults"

	"github.com/go-playground/validator/v10"

	"github.com/pkg/errors"

	"gopkg.in/yaml.v3"
)

import (
	"github.com/arana-db/formula/pkg/dialect"
	"github.com/arana-db/formula/pkg/metric"
	"github.com/arana-db/formula/pkg/util/log"
)

const KindMetricCatalog = "MetricCatalog"

type (
	// Catalog represents a catalog of metrics.
	Catalog struct {
		Kind       string                 `default:"MetricCatalog" validate:"eq=MetricCatalog" yaml:"kind" json:"kind,omitempty"`
		APIVersion string                 `default:"1.0" yaml:"apiVersion" json:"apiVersion,omitempty"`
		Metadata   map[string]interface{} `yaml:"metadata" json:"metadata"`
		Dialect    string                 `default:"mysql" validate:"dialect" yaml:"dialect" json:"dialect"`
		CacheSize  int                    `default:"256" validate:"gt=0" yaml:"cache_size" json:"cache_size"`
		Logging    log.LoggingConfig      `yaml:"logging" json:"logging"`
		Trace      *Trace                 `yaml:"trace" json:"trace,omitempty"`
		Metrics    []*Metric              `validate:"required,min=1,dive" yaml:"metrics" json:"metrics"`
	}

	// Trace configures the exporter of the compile spans.
	Trace struct {
		Type    string `default:"jaeger" validate:"oneof=jaeger" yaml:"type" json:"type"`
		Address string `validate:"required" yaml:"address" json:"address"`
	}

	// Metric is a named formula.
	Metric struct {
		Name               string   `validate:"required" yaml:"name" json:"name"`
		Description        string   `yaml:"description" json:"description,omitempty"`
		Formula            string   `validate:"required" yaml:"formula" json:"formula"`
		Dialect            string   `validate:"omitempty,dialect" yaml:"dialect" json:"dialect,omitempty"`
		CustomAggregations []string `validate:"dive,required" yaml:"custom_aggregations" json:"custom_aggregations,omitempty"`
	}
)

// Definition converts the metric for compilation.
func (m *Metric) Definition() metric.Definition {
	return metric.Definition{
		Name:               m.Name,
		Formula:            m.Formula,
		Dialect:            m.Dialect,
		CustomAggregations: m.CustomAggregations,
	}
}

// Definitions returns the definitions of all metrics, in order.
func (c *Catalog) Definitions() []metric.Definition {
	ret := make([]metric.Definition, 0, len(c.Metrics))
	for _, it := range c.Metrics {
		ret = append(ret, it.Definition())
	}
	return ret
}

// Lookup finds a metric by name, case-insensitive.
func (c *Catalog) Lookup(name string) (*Metric, bool) {
	for _, it := range c.Metrics {
		if strings.EqualFold(it.Name, name) {
			return it, true
		}
	}
	return nil, false
}

// DefaultDialect returns the dialect of the catalog.
func (c *Catalog) DefaultDialect() (*dialect.Dialect, error) {
	d, ok := dialect.Lookup(c.Dialect)
	if !ok {
		return nil, errors.Wrapf(metric.ErrUnknownDialect, "catalog: %s", c.Dialect)
	}
	return d, nil
}

// Decoder decodes configuration.
type Decoder struct {
	reader io.Reader
}

// Decode decodes the yaml, then fills the defaults.
func (d *Decoder) Decode(v interface{}) error {
	if err := yaml.NewDecoder(d.reader).Decode(v); err != nil {
		return errors.WithStack(err)
	}
	if err := defaults.Set(v); err != nil {
		return errors.WithStack(err)
	}
	return nil
}

// NewDecoder creates a Decoder from a reader.
func NewDecoder(reader io.Reader) *Decoder {
	return &Decoder{reader: reader}
}

// Load loads the catalog from file path.
func Load(path string) (*Catalog, error) {
	var (
		f   *os.File
		err error
	)

	if f, err = os.Open(path); err != nil {
		return nil, errors.Wrap(err, "failed to load catalog file")
	}
	defer func() {
		_ = f.Close()
	}()

	var cfg Catalog
	if err = NewDecoder(f).Decode(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal catalog")
	}
	return &cfg, nil
}

// Validate validates the input catalog.
func Validate(cfg *Catalog) error {
	v := validator.New()
	if err := v.RegisterValidation("dialect", validateDialect); err != nil {
		return errors.WithStack(err)
	}
	if err := v.Struct(cfg); err != nil {
		return err
	}

	seen := make(map[string]struct{}, len(cfg.Metrics))
	for _, it := range cfg.Metrics {
		key := strings.ToLower(it.Name)
		if _, ok := seen[key]; ok {
			return errors.Errorf("duplicated metric '%s'", it.Name)
		}
		seen[key] = struct{}{}
	}
	return nil
}

func validateDialect(fl validator.FieldLevel) bool {
	_, ok := dialect.Lookup(fl.Field().String())
	return ok
}
