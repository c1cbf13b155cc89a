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

// Package cmds collects the sub commands, which register themselves on init.
package cmds

import (
	"os"
	"sync"
)

import (
	"github.com/spf13/cobra"
)

import (
	"github.com/arana-db/formula/pkg/constants"
	"github.com/arana-db/formula/pkg/dialect"
)

var (
	_handlersLock sync.Mutex
	_handlers     []func(root *cobra.Command)
)

// Handle registers a hook which adds commands to the root command.
func Handle(handler func(root *cobra.Command)) {
	_handlersLock.Lock()
	defer _handlersLock.Unlock()
	_handlers = append(_handlers, handler)
}

// Init applies all registered hooks on the root command.
func Init(root *cobra.Command) {
	_handlersLock.Lock()
	defer _handlersLock.Unlock()
	for _, it := range _handlers {
		it(root)
	}
}

// DefaultDialect returns the dialect from the environment, mysql if not set.
func DefaultDialect() string {
	if d := os.Getenv(constants.EnvDialect); len(d) > 0 {
		return d
	}
	return dialect.NameMySQL
}
