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

package dialect

import (
	"strings"
	"sync"
)

import (
	"github.com/pkg/errors"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

var (
	_registryLock sync.RWMutex
	_registry     = make(map[string]*Dialect)
)

// Register registers a dialect, a dialect with the same name is replaced.
func Register(d *Dialect) {
	_registryLock.Lock()
	defer _registryLock.Unlock()
	_registry[strings.ToLower(d.Name())] = d
}

// Lookup finds a registered dialect by name, case-insensitive.
func Lookup(name string) (*Dialect, bool) {
	_registryLock.RLock()
	defer _registryLock.RUnlock()
	d, ok := _registry[strings.ToLower(name)]
	return d, ok
}

// MustLookup finds a registered dialect, panic if not exists.
func MustLookup(name string) *Dialect {
	d, ok := Lookup(name)
	if !ok {
		panic(errors.Errorf("no such dialect '%s'", name))
	}
	return d
}

// Names returns the sorted names of all registered dialects.
func Names() []string {
	_registryLock.RLock()
	defer _registryLock.RUnlock()
	keys := maps.Keys(_registry)
	slices.Sort(keys)
	return keys
}
