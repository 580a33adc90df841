//go:build debug

package store

import (
	"log"

	"github.com/zeptools/gw-dataops/query"
)

func traceStatement(stmt query.Statement) {
	log.Printf("[DEBUG] sql: %s args=%v", stmt.SQL, stmt.Args)
}
