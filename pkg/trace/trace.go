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

package trace

import (
	"context"
	"sync"
)

import (
	"github.com/pkg/errors"
)

import (
	"github.com/arana-db/formula/pkg/config"
)

const (
	Service              = "formula"
	Jaeger  ProviderType = "jaeger"
)

type ProviderType string

// Shutdown flushes the spans and stops the provider.
type Shutdown func(ctx context.Context) error

var (
	lock            sync.RWMutex
	providers       = make(map[ProviderType]Provider, 8)
	currentProvider Provider
)

func RegisterProviders(pType ProviderType, p Provider) {
	lock.Lock()
	defer lock.Unlock()
	providers[pType] = p
}

// Initialize installs the provider of the configured type as the global tracer provider.
func Initialize(ctx context.Context, traceCfg *config.Trace) (Shutdown, error) {
	lock.Lock()
	defer lock.Unlock()

	v, ok := providers[ProviderType(traceCfg.Type)]
	if !ok {
		return nil, errors.Errorf("not supported %s trace provider", traceCfg.Type)
	}
	shutdown, err := v.Initialize(ctx, traceCfg)
	if err != nil {
		return nil, err
	}
	currentProvider = v
	return shutdown, nil
}

// Extract continues the trace of a W3C traceparent, eg: the one of the job
// running the command. The context is returned as is without an initialized provider.
func Extract(ctx context.Context, traceparent string) context.Context {
	lock.RLock()
	p := currentProvider
	lock.RUnlock()

	if p == nil || len(traceparent) < 1 {
		return ctx
	}
	return p.Extract(ctx, traceparent)
}

type Provider interface {
	Initialize(ctx context.Context, traceCfg *config.Trace) (Shutdown, error)
	Extract(ctx context.Context, traceparent string) context.Context
}
