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
	sq "github.com/Masterminds/squirrel"
)

const (
	NameMySQL    = "mysql"
	NamePostgres = "postgres"
	NameSQLite   = "sqlite"
	NameMSSQL    = "mssql"
)

// operators written with symbols or keywords by the parser, shared by all dialects.
var _commonOperators = []string{
	"+", "-", "*", "/", "%",
	"=", "<>", "<", "<=", ">", ">=",
	"AND", "OR", "NOT",
	"IS NULL", "IS NOT NULL",
	"BETWEEN", "NOT BETWEEN",
	"IN", "NOT IN",
	"LIKE", "NOT LIKE",
	"CASE", "CAST",
}

var _commonFunctions = []string{
	"ABS", "CEIL", "FLOOR", "ROUND", "SQRT", "EXP", "LN", "LOG", "SIGN", "POWER",
	"COALESCE", "NULLIF", "GREATEST", "LEAST",
	"LOWER", "UPPER", "LENGTH", "SUBSTR", "REPLACE", "TRIM",
}

var _reservedWords = []string{
	"all", "and", "as", "asc", "between", "by", "case", "cast", "check", "column",
	"create", "default", "desc", "distinct", "else", "end", "false", "from", "group",
	"having", "in", "is", "join", "like", "limit", "not", "null", "on", "or", "order",
	"select", "table", "then", "true", "union", "user", "when", "where",
}

var (
	_stddevPop  = MergeVariance(false, true)
	_stddevSamp = MergeVariance(true, true)
	_varPop     = MergeVariance(false, false)
	_varSamp    = MergeVariance(true, false)
)

var (
	MySQL = New(NameMySQL).
		Quote("`", "`").
		BackslashEscapes().
		Placeholder(sq.Question).
		Operators(_commonOperators...).
		Operators("DIV", "MOD", "XOR", "<=>", "!=", "&", "|", "^", "~", "<<", ">>").
		Operators(_commonFunctions...).
		Operators("CEILING", "POW", "LOG2", "LOG10", "TRUNCATE", "IF", "IFNULL", "CONCAT", "CONCAT_WS",
			"SUBSTRING", "CHAR_LENGTH", "DATE", "YEAR", "MONTH", "DAY", "DATEDIFF", "NOW", "UNIX_TIMESTAMP").
		Identities(AggrSum, AggrCount, AggrMin, AggrMax, "BIT_AND", "BIT_OR", "BIT_XOR").
		Aggregate(AggrAvg, Avg, MergeAvg).
		Aggregate("STD", Variance, _stddevPop).
		Aggregate("STDDEV", Variance, _stddevPop).
		Aggregate("STDDEV_POP", Variance, _stddevPop).
		Aggregate("STDDEV_SAMP", Variance, _stddevSamp).
		Aggregate("VARIANCE", Variance, _varPop).
		Aggregate("VAR_POP", Variance, _varPop).
		Aggregate("VAR_SAMP", Variance, _varSamp).
		Reserved(_reservedWords...).
		Reserved("div", "mod", "xor", "key", "index").
		Build()

	Postgres = New(NamePostgres).
		Quote(`"`, `"`).
		Placeholder(sq.Dollar).
		Operators(_commonOperators...).
		Operators("!=", "||", "&", "|", "#", "~", "<<", ">>", "^").
		Operators(_commonFunctions...).
		Operators("CEILING", "TRUNC", "LOG10", "MOD", "DIV", "CONCAT", "SUBSTRING", "DATE_TRUNC", "DATE_PART", "NOW", "TO_CHAR").
		Identities(AggrSum, AggrCount, AggrMin, AggrMax, "BIT_AND", "BIT_OR", "BOOL_AND", "BOOL_OR", "EVERY").
		Aggregate(AggrAvg, Avg, MergeAvg).
		Aggregate("STDDEV", Variance, _stddevSamp).
		Aggregate("STDDEV_POP", Variance, _stddevPop).
		Aggregate("STDDEV_SAMP", Variance, _stddevSamp).
		Aggregate("VARIANCE", Variance, _varSamp).
		Aggregate("VAR_POP", Variance, _varPop).
		Aggregate("VAR_SAMP", Variance, _varSamp).
		Reserved(_reservedWords...).
		Reserved("analyse", "analyze", "array", "only", "window").
		Build()

	SQLite = New(NameSQLite).
		Quote(`"`, `"`).
		Placeholder(sq.Question).
		Operators(_commonOperators...).
		Operators("!=", "==", "||", "&", "|", "~", "<<", ">>").
		Operators(_commonFunctions...).
		Operators("IFNULL", "IIF", "INSTR", "SUBSTRING", "DATE", "STRFTIME", "JULIANDAY").
		Identities(AggrSum, AggrCount, AggrMin, AggrMax, "TOTAL").
		Aggregate(AggrAvg, Avg, MergeAvg).
		Reserved(_reservedWords...).
		Build()

	MSSQL = New(NameMSSQL).
		Quote("[", "]").
		Placeholder(sq.AtP).
		Operators(_commonOperators...).
		Operators("!=", "&", "|", "^", "~").
		Operators(_commonFunctions...).
		Operators("CEILING", "LOG10", "SQUARE", "ISNULL", "IIF", "LEN", "SUBSTRING", "CONCAT",
			"DATEADD", "DATEDIFF", "DATEPART", "GETDATE", "CONVERT").
		Identities(AggrSum, AggrCount, AggrMin, AggrMax, "COUNT_BIG").
		Aggregate(AggrAvg, Avg, MergeAvg).
		Aggregate("STDEV", Variance, _stddevSamp).
		Aggregate("STDEVP", Variance, _stddevPop).
		Aggregate("VAR", Variance, _varSamp).
		Aggregate("VARP", Variance, _varPop).
		Reserved(_reservedWords...).
		Reserved("top", "identity", "key", "index").
		Build()
)

func init() {
	for _, it := range []*Dialect{MySQL, Postgres, SQLite, MSSQL} {
		Register(it)
	}
}
