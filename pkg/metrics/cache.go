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

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// CacheSource provides the statistics of a plan cache.
type CacheSource interface {
	Len() int
	Hits() uint64
	Misses() uint64
}

type cacheCollector struct {
	source   CacheSource
	sizeDesc *prometheus.Desc
	hitsDesc *prometheus.Desc
}

// NewCacheCollector creates a collector which reads the cache statistics on scraping.
func NewCacheCollector(source CacheSource) prometheus.Collector {
	return &cacheCollector{
		source: source,
		sizeDesc: prometheus.NewDesc(prometheus.BuildFQName(_namespace, "plan_cache", "size"),
			"Number of cached plans", nil, nil),
		hitsDesc: prometheus.NewDesc(prometheus.BuildFQName(_namespace, "plan_cache", "total"),
			"Number of plan cache lookups by outcome", []string{"outcome"}, nil),
	}
}

func (c *cacheCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.sizeDesc
	ch <- c.hitsDesc
}

func (c *cacheCollector) Collect(ch chan<- prometheus.Metric) {
	ch <- prometheus.MustNewConstMetric(c.sizeDesc, prometheus.GaugeValue, float64(c.source.Len()))
	ch <- prometheus.MustNewConstMetric(c.hitsDesc, prometheus.CounterValue, float64(c.source.Hits()), "hit")
	ch <- prometheus.MustNewConstMetric(c.hitsDesc, prometheus.CounterValue, float64(c.source.Misses()), "miss")
}
