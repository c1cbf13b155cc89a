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
	"strings"
)

import (
	"github.com/pkg/errors"

	dto "github.com/prometheus/client_model/go"
)

// Sample is the current value of a gathered counter, gauge or histogram count.
type Sample struct {
	Name   string
	Labels string
	Value  float64
}

// Samples gathers the registry, eg: for printing a summary when a command exits.
func (c *Collector) Samples() ([]Sample, error) {
	families, err := c.registry.Gather()
	if err != nil {
		return nil, errors.Wrap(err, "cannot gather formula metrics")
	}

	var ret []Sample
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			s := Sample{
				Name:   mf.GetName(),
				Labels: joinLabels(m.GetLabel()),
			}
			switch mf.GetType() {
			case dto.MetricType_COUNTER:
				s.Value = m.GetCounter().GetValue()
			case dto.MetricType_GAUGE:
				s.Value = m.GetGauge().GetValue()
			case dto.MetricType_HISTOGRAM:
				s.Name += "_count"
				s.Value = float64(m.GetHistogram().GetSampleCount())
			default:
				continue
			}
			ret = append(ret, s)
		}
	}
	return ret, nil
}

func joinLabels(pairs []*dto.LabelPair) string {
	var sb strings.Builder
	for i, it := range pairs {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(it.GetName())
		sb.WriteByte('=')
		sb.WriteString(it.GetValue())
	}
	return sb.String()
}
