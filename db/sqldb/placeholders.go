package sqldb

import (
	"strconv"
	"strings"
)

var PlaceholderPrefixForDBType = map[string]byte{
	"mysql":  '?',
	"pgsql":  '$',
	"duckdb": '?',
	"mssql":  '@',
	"oracle": ':',
	"sqlite": 0, // NOTE: sqlite supports all of them
}

// PlaceholderPrefix returns the placeholder prefix for dbType, '?' when unknown.
func PlaceholderPrefix(dbType string) byte {
	if prefix, ok := PlaceholderPrefixForDBType[dbType]; ok && prefix != 0 {
		return prefix
	}
	return '?'
}

// ReplaceStaticPlaceholders rewrites every `?` to the ordinal form of prefix ($1, $2, ...).
// Quoted literals are copied untouched.
func ReplaceStaticPlaceholders(sql string, prefix byte) string {
	if prefix == '?' || prefix == 0 {
		return sql
	}
	var builder strings.Builder
	builder.Grow(len(sql) + 8)
	cnt := 1
	var quote byte
	for i := 0; i < len(sql); i++ {
		c := sql[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
			builder.WriteByte(c)
		case c == '\'' || c == '"':
			quote = c
			builder.WriteByte(c)
		case c == '?':
			builder.WriteByte(prefix)
			builder.WriteString(strconv.Itoa(cnt))
			cnt++
		default:
			builder.WriteByte(c)
		}
	}
	return builder.String()
}
