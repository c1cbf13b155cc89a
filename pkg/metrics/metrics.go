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

// Package metrics exposes the prometheus metrics of formula compilation.
package metrics

import (
	"net/http"
	"time"
)

import (
	"github.com/pkg/errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const _namespace = "formula"

// compile results
const (
	ResultOK       = "ok"
	ResultRejected = "rejected"
	ResultError    = "error"
)

// Registry is where metrics are registered and gathered from.
type Registry interface {
	prometheus.Registerer
	prometheus.Gatherer
}

type Counter interface {
	Inc()
	Add(float64)
}

type Histogram interface {
	Observe(float64)
}

// Collector records compilations.
type Collector struct {
	registry Registry

	compileTotal    *prometheus.CounterVec
	compileDuration Histogram
}

// NewCollector creates a collector registered into the registry,
// a private registry is created if nil.
func NewCollector(r Registry) (*Collector, error) {
	if r == nil {
		r = prometheus.NewRegistry()
	}

	c := &Collector{
		registry: r,
		compileTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: _namespace,
			Name:      "compile_total",
			Help:      "Number of compiled metric formulas by result",
		}, []string{"result"}),
	}

	duration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: _namespace,
		Name:      "compile_duration_seconds",
		Help:      "Duration of a metric formula compilation",
		Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
	})
	c.compileDuration = duration

	for _, it := range []prometheus.Collector{c.compileTotal, duration} {
		if err := r.Register(it); err != nil {
			return nil, errors.Wrap(err, "cannot register formula metrics")
		}
	}
	return c, nil
}

// MustNewCollector is NewCollector, panic if failed.
func MustNewCollector(r Registry) *Collector {
	c, err := NewCollector(r)
	if err != nil {
		panic(err.Error())
	}
	return c
}

// ObserveCompile records a finished compilation.
func (c *Collector) ObserveCompile(result string, elapsed time.Duration) {
	if c == nil {
		return
	}
	c.counter(result).Inc()
	c.compileDuration.Observe(elapsed.Seconds())
}

// RegisterCache exposes the statistics of a plan cache.
func (c *Collector) RegisterCache(source CacheSource) error {
	return errors.WithStack(c.registry.Register(NewCacheCollector(source)))
}

// Registry returns the underlying registry.
func (c *Collector) Registry() Registry {
	return c.registry
}

// Handler returns the http handler which serves the metrics for scraping.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

func (c *Collector) counter(result string) Counter {
	return c.compileTotal.WithLabelValues(result)
}
