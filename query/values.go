package query

// Values is an ordered column → value set for INSERT and UPDATE.
// The zero value is empty and ready to use.
type Values struct {
	columns []string
	args    []any
}

// Put sets column to value, replacing an earlier value for the same column.
func (v *Values) Put(column string, value any) *Values {
	for i, c := range v.columns {
		if c == column {
			v.args[i] = value
			return v
		}
	}
	v.columns = append(v.columns, column)
	v.args = append(v.args, value)
	return v
}

func (v Values) Get(column string) (any, bool) {
	for i, c := range v.columns {
		if c == column {
			return v.args[i], true
		}
	}
	return nil, false
}

func (v Values) Len() int { return len(v.columns) }

func (v Values) Columns() []string { return append([]string(nil), v.columns...) }

func (v Values) Args() []any { return append([]any(nil), v.args...) }
