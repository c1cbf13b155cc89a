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

package main

import (
	"os"
)

import (
	"github.com/spf13/cobra"
)

import (
	"github.com/arana-db/formula/cmd/cmds"
	_ "github.com/arana-db/formula/cmd/compile"
	_ "github.com/arana-db/formula/cmd/inspect"
)

var Version = "0.1.0"

func main() {
	root := &cobra.Command{
		Use:          "formula",
		Short:        "formula compiles metric formulas into two-level aggregations",
		Version:      Version,
		SilenceUsage: true,
	}
	cmds.Init(root)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
