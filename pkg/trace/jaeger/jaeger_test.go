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

package jaeger

import (
	"context"
	"testing"
)

import (
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.opentelemetry.io/otel"
	oteltrace "go.opentelemetry.io/otel/trace"
)

import (
	"github.com/arana-db/formula/pkg/config"
	"github.com/arana-db/formula/pkg/trace"
)

func TestJaegerProvider(t *testing.T) {
	tCtx := context.Background()
	tTraceCfg := &config.Trace{
		Type:    "jaeger",
		Address: "http://localhost:14268/api/traces",
	}

	// registered on init
	shutdown, err := trace.Initialize(tCtx, tTraceCfg)
	require.NoError(t, err)
	defer func() {
		_ = shutdown(tCtx)
	}()

	// test get provider from jaeger
	assert.NotNil(t, otel.GetTracerProvider())

	// test extracted content to ctx
	extracted := trace.Extract(tCtx, "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01")
	sc := oteltrace.SpanContextFromContext(extracted)
	assert.True(t, sc.IsValid())
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", sc.TraceID().String())
	assert.True(t, sc.IsRemote())

	// a broken traceparent is ignored
	sc = oteltrace.SpanContextFromContext((&Jaeger{}).Extract(tCtx, "broken"))
	assert.False(t, sc.IsValid())
}
