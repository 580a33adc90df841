package sqldb

import "fmt"

// ScanRowToItem scans the current row into a new M.
// It does not advance rows.
func ScanRowToItem[
	M any, // Model struct
	MP Scannable[M], // *Model Implementing Scannable[M]
](rows Rows) (M, error) {
	var item M     // struct with zero values for the fields
	p := MP(&item) // p is *M, which satisfies targetFieldsProvider interface
	if err := rows.Scan(p.TargetFields()...); err != nil {
		return item, fmt.Errorf("scan failed: %w", err)
	}
	return item, nil
}
