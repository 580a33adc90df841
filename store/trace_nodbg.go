//go:build !debug

package store

import "github.com/zeptools/gw-dataops/query"

func traceStatement(query.Statement) {}
