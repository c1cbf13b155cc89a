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
	"fmt"
)

// UnknownOperatorError reports an operator which is neither a scalar
// operator nor an aggregation of the dialect.
type UnknownOperatorError struct {
	Operator string
}

func (e *UnknownOperatorError) Error() string {
	return "Unknown operator: " + e.Operator
}

// ExhaustedError is raised by RewriteOuter, as a panic, when the substitutions
// run out before every aggregation operand is replaced.
// It means the caller sized the substitutions wrong, the compilation must be aborted.
type ExhaustedError struct {
	// Operator is the aggregation being rewritten.
	Operator string
	// Slot is the zero-based position of the operand slot overall.
	Slot int
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("substitutions exhausted at operand slot %d of %s", e.Slot, e.Operator)
}
