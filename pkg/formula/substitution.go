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

package formula

import (
	"strconv"
)

// Substitutions is a cursor over placeholder names, consumed once per
// aggregation operand by RewriteOuter.
type Substitutions interface {
	// Next returns the next placeholder, false if exhausted.
	Next() (string, bool)
}

type sliceSubstitutions struct {
	items []string
	pos   int
}

// Slice returns the substitutions of the given placeholders.
func Slice(items ...string) Substitutions {
	return &sliceSubstitutions{items: items}
}

func (s *sliceSubstitutions) Next() (string, bool) {
	if s.pos >= len(s.items) {
		return "", false
	}
	next := s.items[s.pos]
	s.pos++
	return next, true
}

type sequenceSubstitutions struct {
	prefix string
	n      int
}

// Sequence returns the endless substitutions prefix1, prefix2, ...
func Sequence(prefix string) Substitutions {
	return &sequenceSubstitutions{prefix: prefix}
}

func (s *sequenceSubstitutions) Next() (string, bool) {
	s.n++
	return s.prefix + strconv.Itoa(s.n), true
}

// SubstitutionsFunc adapts a function to Substitutions.
type SubstitutionsFunc func() (string, bool)

func (f SubstitutionsFunc) Next() (string, bool) {
	return f()
}
