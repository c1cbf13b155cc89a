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

package utils

import (
	"fmt"
	"io"
	"os"
	"strconv"
)

import (
	"github.com/olekukonko/tablewriter"
)

// PrintTable prints all rows as table format.
func PrintTable(header []string, rows [][]interface{}) [][]string {
	return writeTable(os.Stdout, header, rows, true)
}

// WriteTable writes table into writer.
func WriteTable(w io.Writer, header []string, rows [][]interface{}) [][]string {
	return writeTable(w, header, rows, false)
}

// WriteTableColor writes colorful table into writer.
func WriteTableColor(w io.Writer, header []string, rows [][]interface{}) [][]string {
	return writeTable(w, header, rows, true)
}

// Cell converts a value into its text in a table.
func Cell(t interface{}) (r string) {
	r = "\\N"
	switch v := t.(type) {
	case nil:
	case string:
		r = v
	case bool:
		r = strconv.FormatBool(v)
	case int:
		r = strconv.Itoa(v)
	case int64:
		r = strconv.FormatInt(v, 10)
	case uint64:
		r = strconv.FormatUint(v, 10)
	case float64:
		r = fmt.Sprintf("%.2f", v)
	case []string:
		r = fmt.Sprint(v)
	case error:
		r = v.Error()
	case fmt.Stringer:
		r = v.String()
	default:
		r = fmt.Sprintf("%#v", t)
	}
	return
}

func writeTable(w io.Writer, columns []string, rows [][]interface{}, color bool) [][]string {
	header := make([]string, 0, len(columns))
	for _, it := range columns {
		h := it
		if color {
			h = fmt.Sprintf("\033[32m%s\033[0m", h)
		}
		header = append(header, h)
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)

	converts := make([][]string, 0, len(rows))
	for _, it := range rows {
		row := make([]string, 0, len(it))
		for _, v := range it {
			row = append(row, Cell(v))
		}
		converts = append(converts, row)
		table.Append(row)
	}

	table.Render()

	return converts
}
